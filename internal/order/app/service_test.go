package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dwikikusuma/shopdemo/internal/order/domain"
	"github.com/dwikikusuma/shopdemo/pkg/apperr"
)

type fakeRepo struct {
	orders []domain.Order
	err    error
}

func (f *fakeRepo) Create(ctx context.Context, o domain.Order) (domain.Order, error) {
	if f.err != nil {
		return domain.Order{}, f.err
	}
	f.orders = append(f.orders, o)
	return o, nil
}

func (f *fakeRepo) Get(ctx context.Context, id string) (domain.Order, error) {
	for _, o := range f.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return domain.Order{}, apperr.NotFound("Order not found", nil)
}

func (f *fakeRepo) List(ctx context.Context) ([]domain.Order, error) { return f.orders, nil }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCreateOrder(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := &fakeRepo{}
	svc := NewService(repo).WithClock(func() time.Time { return now })

	t.Run("computes subtotals and total", func(t *testing.T) {
		o, err := svc.CreateOrder(context.Background(), domain.CreateOrderRequest{
			SessionID:    "s1",
			CustomerInfo: domain.CustomerInfo{Name: " Ana ", Email: "ANA@example.com"},
			Payment:      domain.Payment{Method: "credit_card", TransactionID: "txn_1"},
			Items: []domain.OrderItemRequest{
				{ProductID: "p1", Name: "Cable", Price: dec("25.99"), Quantity: 3},
				{ProductID: "p2", Name: "Hub", Price: dec("50.00"), Quantity: 2},
			},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !o.Items[0].Subtotal.Equal(dec("77.97")) || !o.Total.Equal(dec("177.97")) {
			t.Fatalf("unexpected amounts: %+v", o)
		}
		if o.Status != domain.StatusCompleted || !o.CreatedAt.Equal(now) || o.ID == "" {
			t.Fatalf("unexpected header: %+v", o)
		}
		if o.CustomerInfo.Email != "ana@example.com" || o.CustomerInfo.Name != "Ana" {
			t.Fatalf("customer not normalized: %+v", o.CustomerInfo)
		}
	})

	t.Run("rejects empty and bad lines", func(t *testing.T) {
		_, err := svc.CreateOrder(context.Background(), domain.CreateOrderRequest{})
		if !errors.Is(err, apperr.ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
		_, err = svc.CreateOrder(context.Background(), domain.CreateOrderRequest{
			Items: []domain.OrderItemRequest{{ProductID: "p1", Price: dec("1"), Quantity: 0}},
		})
		if !errors.Is(err, apperr.ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("wraps repo errors", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := NewService(&fakeRepo{err: boom}).CreateOrder(context.Background(), domain.CreateOrderRequest{
			Items: []domain.OrderItemRequest{{ProductID: "p1", Price: dec("1"), Quantity: 1}},
		})
		if !errors.Is(err, boom) {
			t.Fatalf("expected wrapped repo error, got %v", err)
		}
	})
}

func TestListSummaries(t *testing.T) {
	repo := &fakeRepo{orders: []domain.Order{
		{ID: "o1", CustomerInfo: domain.CustomerInfo{Email: "a@b.co"}, Total: dec("10"), Status: "completed",
			Items: []domain.OrderItem{{ProductID: "p1"}, {ProductID: "p2"}}},
	}}

	sums, err := NewService(repo).ListSummaries(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sums) != 1 || sums[0].ItemCount != 2 || sums[0].CustomerEmail != "a@b.co" {
		t.Fatalf("unexpected summaries: %+v", sums)
	}

	if _, err := NewService(repo).GetOrder(context.Background(), "missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
