package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dwikikusuma/shopdemo/internal/catalog/domain"
	"github.com/dwikikusuma/shopdemo/pkg/apperr"
)

type fakeRepo struct {
	created []domain.Product
	err     error
}

func (f *fakeRepo) Create(ctx context.Context, p domain.Product) (domain.Product, error) {
	if f.err != nil {
		return domain.Product{}, f.err
	}
	f.created = append(f.created, p)
	return p, nil
}
func (f *fakeRepo) Get(ctx context.Context, id string) (domain.Product, error) {
	for _, p := range f.created {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Product{}, apperr.NotFound("Product not found", nil)
}
func (f *fakeRepo) List(ctx context.Context) ([]domain.Product, error) { return f.created, nil }
func (f *fakeRepo) DecrementStock(ctx context.Context, id string, quantity int) (domain.Product, error) {
	return domain.Product{}, nil
}

func price(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCreateProductValidation(t *testing.T) {
	svc := NewService(&fakeRepo{})

	t.Run("empty name -> invalid", func(t *testing.T) {
		_, err := svc.CreateProduct(context.Background(), domain.NewProduct{Name: "   ", Price: price("10"), Stock: 1})
		if !errors.Is(err, apperr.ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("zero price -> invalid", func(t *testing.T) {
		_, err := svc.CreateProduct(context.Background(), domain.NewProduct{Name: "Keyboard", Price: decimal.Zero, Stock: 1})
		if !errors.Is(err, apperr.ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("negative stock -> invalid", func(t *testing.T) {
		_, err := svc.CreateProduct(context.Background(), domain.NewProduct{Name: "Keyboard", Price: price("10"), Stock: -1})
		if !errors.Is(err, apperr.ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
	})
}

func TestCreateProductNormalizes(t *testing.T) {
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	repo := &fakeRepo{}
	svc := NewService(repo).WithClock(func() time.Time { return fixed })

	p, err := svc.CreateProduct(context.Background(), domain.NewProduct{
		Name:        "  Keyboard ",
		Description: " mechanical ",
		Price:       price("49.90"),
		Stock:       0,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID == "" {
		t.Fatal("expected generated id")
	}
	if p.Name != "Keyboard" || p.Description != "mechanical" {
		t.Fatalf("expected trimmed fields, got %+v", p)
	}
	if p.Category != domain.DefaultCategory {
		t.Fatalf("expected default category, got %q", p.Category)
	}
	if !p.CreatedAt.Equal(fixed) {
		t.Fatalf("expected createdAt %v, got %v", fixed, p.CreatedAt)
	}
}

func TestCreateProductWrapsRepoError(t *testing.T) {
	boom := errors.New("disk full")
	svc := NewService(&fakeRepo{err: boom})

	_, err := svc.CreateProduct(context.Background(), domain.NewProduct{Name: "Mouse", Price: price("5"), Stock: 1})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped repo error, got %v", err)
	}
}

func TestSeedStopsAtFirstFailure(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)

	out, err := svc.Seed(context.Background(), []domain.NewProduct{
		{Name: "A", Price: price("1"), Stock: 1},
		{Name: "", Price: price("1"), Stock: 1},
		{Name: "C", Price: price("1"), Stock: 1},
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if len(out) != 1 || len(repo.created) != 1 {
		t.Fatalf("expected exactly one product created, got %d", len(repo.created))
	}
}

func TestDecrementStockRejectsNonPositive(t *testing.T) {
	svc := NewService(&fakeRepo{})
	if _, err := svc.DecrementStock(context.Background(), "p1", 0); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
