package adapter

import (
	"context"

	"github.com/dwikikusuma/shopdemo/internal/checkout/domain"
	orderapp "github.com/dwikikusuma/shopdemo/internal/order/app"
	orderdomain "github.com/dwikikusuma/shopdemo/internal/order/domain"
)

type OrderServiceWriter struct {
	svc *orderapp.Service
}

func NewOrderServiceWriter(svc *orderapp.Service) *OrderServiceWriter {
	return &OrderServiceWriter{svc: svc}
}

func (w *OrderServiceWriter) CreateOrder(ctx context.Context, draft domain.OrderDraft) (domain.PlacedOrder, error) {
	items := make([]orderdomain.OrderItemRequest, 0, len(draft.Lines))
	for _, l := range draft.Lines {
		items = append(items, orderdomain.OrderItemRequest{
			ProductID: l.ProductID,
			Name:      l.Name,
			Price:     l.Price,
			Quantity:  l.Quantity,
		})
	}

	o, err := w.svc.CreateOrder(ctx, orderdomain.CreateOrderRequest{
		SessionID: draft.SessionID,
		CustomerInfo: orderdomain.CustomerInfo{
			Name:    draft.Customer.Name,
			Email:   draft.Customer.Email,
			Address: draft.Customer.Address,
			Phone:   draft.Customer.Phone,
		},
		Payment: orderdomain.Payment{
			Method:        draft.PaymentMethod,
			TransactionID: draft.TransactionID,
			ProcessedAt:   draft.ProcessedAt,
		},
		Items: items,
	})
	if err != nil {
		return domain.PlacedOrder{}, err
	}

	return domain.PlacedOrder{
		ID:            o.ID,
		Total:         o.Total,
		Status:        o.Status,
		CreatedAt:     o.CreatedAt,
		CustomerEmail: o.CustomerInfo.Email,
	}, nil
}
