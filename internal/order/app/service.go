package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dwikikusuma/shopdemo/internal/order/domain"
	"github.com/dwikikusuma/shopdemo/pkg/apperr"
	"github.com/dwikikusuma/shopdemo/pkg/money"
)

type Service struct {
	repo OrderRepo
	now  func() time.Time
}

func NewService(repo OrderRepo) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) CreateOrder(ctx context.Context, req domain.CreateOrderRequest) (domain.Order, error) {
	if len(req.Items) == 0 {
		return domain.Order{}, apperr.Validation("order must contain at least one item", nil)
	}

	items := make([]domain.OrderItem, 0, len(req.Items))
	total := decimal.Zero

	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return domain.Order{}, apperr.Validation(fmt.Sprintf("item %d: quantity must be positive, got %d", i, item.Quantity), nil)
		}
		if item.Price.IsNegative() {
			return domain.Order{}, apperr.Validation(fmt.Sprintf("item %d: price cannot be negative, got %s", i, item.Price), nil)
		}

		subtotal := money.Line(item.Price, item.Quantity)
		items = append(items, domain.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
			Subtotal:  subtotal,
		})
		total = total.Add(subtotal)
	}

	order := domain.Order{
		ID: uuid.NewString(),
		CustomerInfo: domain.CustomerInfo{
			Name:    strings.TrimSpace(req.CustomerInfo.Name),
			Email:   strings.ToLower(strings.TrimSpace(req.CustomerInfo.Email)),
			Address: req.CustomerInfo.Address,
			Phone:   req.CustomerInfo.Phone,
		},
		Items:     items,
		Total:     total,
		Payment:   req.Payment,
		SessionID: req.SessionID,
		Status:    domain.StatusCompleted,
		CreatedAt: s.now().UTC(),
	}

	created, err := s.repo.Create(ctx, order)
	if err != nil {
		return domain.Order{}, fmt.Errorf("create order: %w", err)
	}
	return created, nil
}

func (s *Service) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) ListOrders(ctx context.Context) ([]domain.Order, error) {
	return s.repo.List(ctx)
}

func (s *Service) ListSummaries(ctx context.Context) ([]domain.Summary, error) {
	orders, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Summary, 0, len(orders))
	for _, o := range orders {
		out = append(out, o.Summary())
	}
	return out, nil
}
