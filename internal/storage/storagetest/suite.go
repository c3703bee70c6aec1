// Package storagetest holds the behaviour every store backend must share.
package storagetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartapp "github.com/dwikikusuma/shopdemo/internal/cart/app"
	cartdomain "github.com/dwikikusuma/shopdemo/internal/cart/domain"
	catalogapp "github.com/dwikikusuma/shopdemo/internal/catalog/app"
	catalogdomain "github.com/dwikikusuma/shopdemo/internal/catalog/domain"
	orderapp "github.com/dwikikusuma/shopdemo/internal/order/app"
	orderdomain "github.com/dwikikusuma/shopdemo/internal/order/domain"
	"github.com/dwikikusuma/shopdemo/pkg/apperr"
)

type Repos struct {
	Products catalogapp.ProductRepo
	Carts    cartapp.CartRepo
	Orders   orderapp.OrderRepo
}

// Open must return repos over empty state.
type Open func(t *testing.T) Repos

var stamp = time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)

func Run(t *testing.T, open Open) {
	t.Run("products", func(t *testing.T) { testProducts(t, open(t)) })
	t.Run("decrement", func(t *testing.T) { testDecrement(t, open(t)) })
	t.Run("carts", func(t *testing.T) { testCarts(t, open(t)) })
	t.Run("orders", func(t *testing.T) { testOrders(t, open(t)) })
}

func Product(name, price string, stock int) catalogdomain.Product {
	return catalogdomain.Product{
		ID:          uuid.NewString(),
		Name:        name,
		Description: name + " description",
		Price:       decimal.RequireFromString(price),
		Stock:       stock,
		Category:    catalogdomain.DefaultCategory,
		CreatedAt:   stamp,
	}
}

func testProducts(t *testing.T, r Repos) {
	ctx := context.Background()

	var ids []string
	for i := range 5 {
		p, err := r.Products.Create(ctx, Product(fmt.Sprintf("P%d", i), "25.99", i))
		require.NoError(t, err)
		ids = append(ids, p.ID)
	}

	got, err := r.Products.Get(ctx, ids[2])
	require.NoError(t, err)
	assert.Equal(t, "P2", got.Name)
	assert.Equal(t, "P2 description", got.Description)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("25.99")), got.Price.String())
	assert.Equal(t, 2, got.Stock)
	assert.True(t, got.CreatedAt.Equal(stamp), got.CreatedAt.String())

	list, err := r.Products.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 5)
	for i, p := range list {
		assert.Equal(t, ids[i], p.ID, "insertion order")
	}

	_, err = r.Products.Get(ctx, "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func testDecrement(t *testing.T, r Repos) {
	ctx := context.Background()

	p, err := r.Products.Create(ctx, Product("Mouse", "10.00", 5))
	require.NoError(t, err)

	updated, err := r.Products.DecrementStock(ctx, p.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Stock)

	got, err := r.Products.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Stock)

	_, err = r.Products.DecrementStock(ctx, "missing", 1)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func Cart(lines ...cartdomain.CartItem) cartdomain.Cart {
	c := cartdomain.New(stamp)
	c.Items = append(c.Items, lines...)
	c.Recalculate()
	return c
}

func Line(productID, price string, qty int) cartdomain.CartItem {
	return cartdomain.CartItem{
		ProductID: productID,
		Name:      "item " + productID,
		Price:     decimal.RequireFromString(price),
		Quantity:  qty,
		AddedAt:   stamp,
		UpdatedAt: stamp,
	}
}

func testCarts(t *testing.T, r Repos) {
	ctx := context.Background()

	_, err := r.Carts.Get(ctx, "s1")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	saved, err := r.Carts.Save(ctx, "s1", Cart(Line("a", "25.99", 3)))
	require.NoError(t, err)
	assert.Equal(t, "77.97", saved.Total.StringFixed(2))

	// Returned values are copies.
	saved.Items[0].Quantity = 99

	got, err := r.Carts.Get(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 3, got.Items[0].Quantity)
	assert.True(t, got.Total.Equal(decimal.RequireFromString("77.97")))
	assert.True(t, got.Items[0].AddedAt.Equal(stamp))

	got.Items = append(got.Items, Line("b", "1.50", 2))
	got.Recalculate()
	_, err = r.Carts.Save(ctx, "s1", got)
	require.NoError(t, err)

	got, err = r.Carts.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, got.Items, 2)

	_, err = r.Carts.Save(ctx, "s2", Cart(Line("a", "1", 1)))
	require.NoError(t, err)
	n, err := r.Carts.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, r.Carts.Delete(ctx, "s1"))
	assert.ErrorIs(t, r.Carts.Delete(ctx, "s1"), apperr.ErrNotFound)
	_, err = r.Carts.Get(ctx, "s1")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func Order(total string, at time.Time) orderdomain.Order {
	amount := decimal.RequireFromString(total)
	return orderdomain.Order{
		ID:           uuid.NewString(),
		CustomerInfo: orderdomain.CustomerInfo{Name: "Ana", Email: "ana@example.com"},
		Items: []orderdomain.OrderItem{
			{ProductID: "p1", Name: "Thing", Price: amount, Quantity: 1, Subtotal: amount},
		},
		Total:     amount,
		Payment:   orderdomain.Payment{Method: "credit_card", TransactionID: "txn_1", ProcessedAt: at},
		SessionID: "s1",
		Status:    orderdomain.StatusCompleted,
		CreatedAt: at,
	}
}

func testOrders(t *testing.T, r Repos) {
	ctx := context.Background()

	var ids []string
	for i := range 3 {
		o, err := r.Orders.Create(ctx, Order(fmt.Sprintf("%d.25", i+1), stamp.Add(time.Duration(i)*time.Minute)))
		require.NoError(t, err)
		ids = append(ids, o.ID)
	}

	got, err := r.Orders.Get(ctx, ids[1])
	require.NoError(t, err)
	assert.Equal(t, "2.25", got.Total.StringFixed(2))
	assert.Equal(t, "ana@example.com", got.CustomerInfo.Email)
	assert.Equal(t, "credit_card", got.Payment.Method)
	require.Len(t, got.Items, 1)
	assert.True(t, got.CreatedAt.Equal(stamp.Add(time.Minute)))

	list, err := r.Orders.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	for i, o := range list {
		assert.Equal(t, ids[i], o.ID, "insertion order")
	}

	_, err = r.Orders.Get(ctx, "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
