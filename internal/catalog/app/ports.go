package app

import (
	"context"

	"github.com/dwikikusuma/shopdemo/internal/catalog/domain"
)

// ProductRepo is the Catalog Store. Get and DecrementStock return
// apperr.ErrNotFound for unknown ids; List keeps insertion order.
type ProductRepo interface {
	Create(ctx context.Context, p domain.Product) (domain.Product, error)
	Get(ctx context.Context, id string) (domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
	DecrementStock(ctx context.Context, id string, quantity int) (domain.Product, error)
}
