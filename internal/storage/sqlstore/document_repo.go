package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	cartdomain "github.com/dwikikusuma/shopdemo/internal/cart/domain"
	orderdomain "github.com/dwikikusuma/shopdemo/internal/order/domain"
	"github.com/dwikikusuma/shopdemo/pkg/apperr"
)

type CartRepo struct{ s *Store }

func (r *CartRepo) Get(ctx context.Context, sessionID string) (cartdomain.Cart, error) {
	var data []byte
	err := r.s.db.GetContext(ctx, &data, r.s.db.Rebind(`SELECT data FROM carts WHERE session_id = ?`), sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return cartdomain.Cart{}, apperr.NotFound("Cart not found", apperr.Fields{"sessionId": sessionID})
	}
	if err != nil {
		return cartdomain.Cart{}, fmt.Errorf("select cart: %w", err)
	}

	var c cartdomain.Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return cartdomain.Cart{}, fmt.Errorf("decode cart %s: %w", sessionID, err)
	}
	return c, nil
}

func (r *CartRepo) Save(ctx context.Context, sessionID string, cart cartdomain.Cart) (cartdomain.Cart, error) {
	data, err := json.Marshal(cart)
	if err != nil {
		return cartdomain.Cart{}, fmt.Errorf("encode cart: %w", err)
	}

	_, err = r.s.db.ExecContext(ctx, r.s.db.Rebind(
		`INSERT INTO carts (session_id, data) VALUES (?, ?)
		 ON CONFLICT (session_id) DO UPDATE SET data = excluded.data`),
		sessionID, string(data),
	)
	if err != nil {
		return cartdomain.Cart{}, fmt.Errorf("upsert cart: %w", err)
	}
	return cart.Clone(), nil
}

func (r *CartRepo) Delete(ctx context.Context, sessionID string) error {
	res, err := r.s.db.ExecContext(ctx, r.s.db.Rebind(`DELETE FROM carts WHERE session_id = ?`), sessionID)
	if err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	if n == 0 {
		return apperr.NotFound("Cart not found", apperr.Fields{"sessionId": sessionID})
	}
	return nil
}

func (r *CartRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM carts`); err != nil {
		return 0, fmt.Errorf("count carts: %w", err)
	}
	return n, nil
}

type OrderRepo struct{ s *Store }

func (r *OrderRepo) Create(ctx context.Context, o orderdomain.Order) (orderdomain.Order, error) {
	data, err := json.Marshal(o)
	if err != nil {
		return orderdomain.Order{}, fmt.Errorf("encode order: %w", err)
	}

	_, err = r.s.db.ExecContext(ctx, r.s.db.Rebind(`INSERT INTO orders (id, data) VALUES (?, ?)`), o.ID, string(data))
	if err != nil {
		return orderdomain.Order{}, fmt.Errorf("insert order: %w", err)
	}
	return o.Clone(), nil
}

func (r *OrderRepo) Get(ctx context.Context, id string) (orderdomain.Order, error) {
	var data []byte
	err := r.s.db.GetContext(ctx, &data, r.s.db.Rebind(`SELECT data FROM orders WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return orderdomain.Order{}, apperr.NotFound("Order not found", apperr.Fields{"orderId": id})
	}
	if err != nil {
		return orderdomain.Order{}, fmt.Errorf("select order: %w", err)
	}

	var o orderdomain.Order
	if err := json.Unmarshal(data, &o); err != nil {
		return orderdomain.Order{}, fmt.Errorf("decode order %s: %w", id, err)
	}
	return o, nil
}

func (r *OrderRepo) List(ctx context.Context) ([]orderdomain.Order, error) {
	var docs [][]byte
	err := r.s.db.SelectContext(ctx, &docs, `SELECT data FROM orders ORDER BY `+r.s.insertionOrder())
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	out := make([]orderdomain.Order, 0, len(docs))
	for _, data := range docs {
		var o orderdomain.Order
		if err := json.Unmarshal(data, &o); err != nil {
			return nil, fmt.Errorf("decode order: %w", err)
		}
		out = append(out, o)
	}
	return out, nil
}
