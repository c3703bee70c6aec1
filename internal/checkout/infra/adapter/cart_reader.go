package adapter

import (
	"context"

	"github.com/shopspring/decimal"

	cartapp "github.com/dwikikusuma/shopdemo/internal/cart/app"
	"github.com/dwikikusuma/shopdemo/internal/checkout/domain"
)

type CartServiceReader struct {
	svc *cartapp.Service
}

func NewCartServiceReader(svc *cartapp.Service) *CartServiceReader {
	return &CartServiceReader{svc: svc}
}

func (r *CartServiceReader) GetCart(ctx context.Context, sessionID string) ([]domain.Line, decimal.Decimal, error) {
	cart, err := r.svc.GetCart(ctx, sessionID)
	if err != nil {
		return nil, decimal.Zero, err
	}

	lines := make([]domain.Line, 0, len(cart.Items))
	for _, it := range cart.Items {
		lines = append(lines, domain.Line{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price,
			Quantity:  it.Quantity,
		})
	}
	return lines, cart.Total, nil
}

// DropCart deletes the cart without taking the session lock; checkout
// already holds it.
func (r *CartServiceReader) DropCart(ctx context.Context, sessionID string) error {
	return r.svc.Drop(ctx, sessionID)
}
