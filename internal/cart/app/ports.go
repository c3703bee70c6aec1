package app

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/dwikikusuma/shopdemo/internal/cart/domain"
)

// CartRepo is the Cart Store, one cart per session id. Get and Delete return
// apperr.ErrNotFound when the session has no stored cart.
type CartRepo interface {
	Get(ctx context.Context, sessionID string) (domain.Cart, error)
	Save(ctx context.Context, sessionID string, cart domain.Cart) (domain.Cart, error)
	Delete(ctx context.Context, sessionID string) error
	Count(ctx context.Context) (int, error)
}

type ProductReader interface {
	GetProduct(ctx context.Context, productID string) (Product, error)
}

type Product struct {
	ID    string
	Name  string
	Price decimal.Decimal
	Stock int
}
