package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/dwikikusuma/shopdemo/pkg/money"
)

// CartItem keeps the name and price the product had when it was first added.
type CartItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	AddedAt   time.Time       `json:"addedAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

func (it CartItem) Subtotal() decimal.Decimal { return money.Line(it.Price, it.Quantity) }

type Cart struct {
	Items     []CartItem      `json:"items"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

func New(now time.Time) Cart {
	return Cart{Items: []CartItem{}, Total: decimal.Zero, CreatedAt: now, UpdatedAt: now}
}

func (c Cart) IsEmpty() bool { return len(c.Items) == 0 }

// Recalculate restores Total == sum(price * quantity).
func (c *Cart) Recalculate() {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.Subtotal())
	}
	c.Total = total
}

func (c Cart) Find(productID string) int {
	for i, it := range c.Items {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}

// Clone returns a copy that shares no item storage with c.
func (c Cart) Clone() Cart {
	out := c
	out.Items = make([]CartItem, len(c.Items))
	copy(out.Items, c.Items)
	return out
}
