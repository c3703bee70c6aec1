package app

import (
	"context"

	"github.com/dwikikusuma/shopdemo/internal/order/domain"
)

// OrderRepo is the Order Store. Get returns apperr.ErrNotFound for unknown
// ids; List keeps insertion order.
type OrderRepo interface {
	Create(ctx context.Context, order domain.Order) (domain.Order, error)
	Get(ctx context.Context, id string) (domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
}
