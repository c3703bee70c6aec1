package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const StatusCompleted = "completed"

type CustomerInfo struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

type Payment struct {
	Method        string    `json:"method"`
	TransactionID string    `json:"transactionId"`
	ProcessedAt   time.Time `json:"processedAt"`
}

// Order is immutable once stored.
type Order struct {
	ID           string          `json:"id"`
	CustomerInfo CustomerInfo    `json:"customerInfo"`
	Items        []OrderItem     `json:"items"`
	Total        decimal.Decimal `json:"total"`
	Payment      Payment         `json:"payment"`
	SessionID    string          `json:"sessionId"`
	Status       string          `json:"status"`
	CreatedAt    time.Time       `json:"createdAt"`
}

type OrderItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

func (o Order) Clone() Order {
	out := o
	out.Items = make([]OrderItem, len(o.Items))
	copy(out.Items, o.Items)
	return out
}

type CreateOrderRequest struct {
	SessionID    string
	CustomerInfo CustomerInfo
	Payment      Payment
	Items        []OrderItemRequest
}

type OrderItemRequest struct {
	ProductID string
	Name      string
	Price     decimal.Decimal
	Quantity  int
}

// Summary is the list view of an order.
type Summary struct {
	ID            string          `json:"id"`
	CustomerEmail string          `json:"customerEmail"`
	Total         decimal.Decimal `json:"total"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"createdAt"`
	ItemCount     int             `json:"itemCount"`
}

func (o Order) Summary() Summary {
	return Summary{
		ID:            o.ID,
		CustomerEmail: o.CustomerInfo.Email,
		Total:         o.Total,
		Status:        o.Status,
		CreatedAt:     o.CreatedAt,
		ItemCount:     len(o.Items),
	}
}
