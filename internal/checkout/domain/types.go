package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const DefaultPaymentMethod = "credit_card"

type CustomerInfo struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

// Line is one cart line as seen at checkout time.
type Line struct {
	ProductID string
	Name      string
	Price     decimal.Decimal
	Quantity  int
}

// PaymentResult is what the payment processor reports. TransactionID is nil
// when the charge failed.
type PaymentResult struct {
	Success       bool            `json:"success"`
	TransactionID *string         `json:"transactionId"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"paymentMethod"`
	ProcessedAt   time.Time       `json:"processedAt"`
	Message       string          `json:"message"`
}

// Receipt is the trimmed order summary returned by a successful checkout.
type Receipt struct {
	ID            string          `json:"id"`
	Total         decimal.Decimal `json:"total"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"createdAt"`
	TransactionID string          `json:"transactionId"`
	CustomerEmail string          `json:"customerEmail"`
}

// OrderDraft is handed to the order writer once payment succeeded.
type OrderDraft struct {
	SessionID     string
	Customer      CustomerInfo
	Lines         []Line
	PaymentMethod string
	TransactionID string
	ProcessedAt   time.Time
}

type PlacedOrder struct {
	ID            string
	Total         decimal.Decimal
	Status        string
	CreatedAt     time.Time
	CustomerEmail string
}
