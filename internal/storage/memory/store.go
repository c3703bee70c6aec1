// Package memory keeps the shop state in process maps. It only guards its own
// data structures; read-modify-write sequences spanning several calls are not
// serialized here.
package memory

import (
	"context"
	"sync"

	cartdomain "github.com/dwikikusuma/shopdemo/internal/cart/domain"
	catalogdomain "github.com/dwikikusuma/shopdemo/internal/catalog/domain"
	orderdomain "github.com/dwikikusuma/shopdemo/internal/order/domain"
	"github.com/dwikikusuma/shopdemo/pkg/apperr"
)

type Store struct {
	mu sync.RWMutex

	products     map[string]catalogdomain.Product
	productOrder []string

	carts map[string]cartdomain.Cart

	orders     map[string]orderdomain.Order
	orderOrder []string
}

func New() *Store {
	return &Store{
		products: make(map[string]catalogdomain.Product),
		carts:    make(map[string]cartdomain.Cart),
		orders:   make(map[string]orderdomain.Order),
	}
}

func (s *Store) Products() *ProductRepo { return &ProductRepo{s: s} }
func (s *Store) Carts() *CartRepo       { return &CartRepo{s: s} }
func (s *Store) Orders() *OrderRepo     { return &OrderRepo{s: s} }

func (s *Store) Close() error { return nil }

type ProductRepo struct{ s *Store }

func (r *ProductRepo) Create(ctx context.Context, p catalogdomain.Product) (catalogdomain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.products[p.ID]; !exists {
		r.s.productOrder = append(r.s.productOrder, p.ID)
	}
	r.s.products[p.ID] = p
	return p, nil
}

func (r *ProductRepo) Get(ctx context.Context, id string) (catalogdomain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.products[id]
	if !ok {
		return catalogdomain.Product{}, apperr.NotFound("Product not found", apperr.Fields{"productId": id})
	}
	return p, nil
}

func (r *ProductRepo) List(ctx context.Context) ([]catalogdomain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]catalogdomain.Product, 0, len(r.s.productOrder))
	for _, id := range r.s.productOrder {
		out = append(out, r.s.products[id])
	}
	return out, nil
}

func (r *ProductRepo) DecrementStock(ctx context.Context, id string, quantity int) (catalogdomain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.products[id]
	if !ok {
		return catalogdomain.Product{}, apperr.NotFound("Product not found", apperr.Fields{"productId": id})
	}
	p.Stock -= quantity
	r.s.products[id] = p
	return p, nil
}

type CartRepo struct{ s *Store }

func (r *CartRepo) Get(ctx context.Context, sessionID string) (cartdomain.Cart, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.carts[sessionID]
	if !ok {
		return cartdomain.Cart{}, apperr.NotFound("Cart not found", apperr.Fields{"sessionId": sessionID})
	}
	return c.Clone(), nil
}

func (r *CartRepo) Save(ctx context.Context, sessionID string, cart cartdomain.Cart) (cartdomain.Cart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.carts[sessionID] = cart.Clone()
	return cart.Clone(), nil
}

func (r *CartRepo) Delete(ctx context.Context, sessionID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.carts[sessionID]; !ok {
		return apperr.NotFound("Cart not found", apperr.Fields{"sessionId": sessionID})
	}
	delete(r.s.carts, sessionID)
	return nil
}

func (r *CartRepo) Count(ctx context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.carts), nil
}

type OrderRepo struct{ s *Store }

func (r *OrderRepo) Create(ctx context.Context, o orderdomain.Order) (orderdomain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.orders[o.ID]; !exists {
		r.s.orderOrder = append(r.s.orderOrder, o.ID)
	}
	r.s.orders[o.ID] = o.Clone()
	return o.Clone(), nil
}

func (r *OrderRepo) Get(ctx context.Context, id string) (orderdomain.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	o, ok := r.s.orders[id]
	if !ok {
		return orderdomain.Order{}, apperr.NotFound("Order not found", apperr.Fields{"orderId": id})
	}
	return o.Clone(), nil
}

func (r *OrderRepo) List(ctx context.Context) ([]orderdomain.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]orderdomain.Order, 0, len(r.s.orderOrder))
	for _, id := range r.s.orderOrder {
		out = append(out, r.s.orders[id].Clone())
	}
	return out, nil
}
