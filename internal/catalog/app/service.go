package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dwikikusuma/shopdemo/internal/catalog/domain"
	"github.com/dwikikusuma/shopdemo/pkg/apperr"
)

type Service struct {
	repo ProductRepo
	now  func() time.Time
}

func NewService(repo ProductRepo) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

// WithClock replaces the time source; used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) CreateProduct(ctx context.Context, in domain.NewProduct) (domain.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Product{}, apperr.Validation("Name, price, and stock are required fields", apperr.Fields{
			"received": apperr.Fields{"name": in.Name, "price": in.Price, "stock": in.Stock},
		})
	}
	if !in.Price.IsPositive() {
		return domain.Product{}, apperr.Validation("Price must be a number greater than 0", apperr.Fields{
			"received": apperr.Fields{"price": in.Price},
		})
	}
	if in.Stock < 0 {
		return domain.Product{}, apperr.Validation("Stock must be a number greater than or equal to 0", apperr.Fields{
			"received": apperr.Fields{"stock": in.Stock},
		})
	}

	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = domain.DefaultCategory
	}

	p := domain.Product{
		ID:          uuid.NewString(),
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price,
		Stock:       in.Stock,
		Category:    category,
		CreatedAt:   s.now().UTC(),
	}

	product, err := s.repo.Create(ctx, p)
	if err != nil {
		return domain.Product{}, fmt.Errorf("create product: %w", err)
	}

	return product, nil
}

func (s *Service) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Product{}, apperr.Validation("Product ID is required", nil)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.repo.List(ctx)
}

// DecrementStock subtracts quantity from the product's stock. It does not
// check the floor; callers validate availability first.
func (s *Service) DecrementStock(ctx context.Context, id string, quantity int) (domain.Product, error) {
	if quantity <= 0 {
		return domain.Product{}, apperr.Validation("Quantity must be a positive integer", apperr.Fields{"quantity": quantity})
	}
	return s.repo.DecrementStock(ctx, id, quantity)
}

// Seed creates every product in order and stops at the first failure.
func (s *Service) Seed(ctx context.Context, products []domain.NewProduct) ([]domain.Product, error) {
	out := make([]domain.Product, 0, len(products))
	for i, in := range products {
		p, err := s.CreateProduct(ctx, in)
		if err != nil {
			return out, fmt.Errorf("seed product %d (%q): %w", i, in.Name, err)
		}
		out = append(out, p)
	}
	return out, nil
}
