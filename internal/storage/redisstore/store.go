// Package redisstore keeps the shop state in Redis. Each entity is a JSON
// value under its own key; lists of ids keep insertion order.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	cartdomain "github.com/dwikikusuma/shopdemo/internal/cart/domain"
	catalogdomain "github.com/dwikikusuma/shopdemo/internal/catalog/domain"
	orderdomain "github.com/dwikikusuma/shopdemo/internal/order/domain"
	"github.com/dwikikusuma/shopdemo/pkg/apperr"
)

const (
	DefaultPrefix = "shop:"

	maxTxRetries = 16
)

type Store struct {
	client *redis.Client
	prefix string
}

func Open(ctx context.Context, redisURL, prefix string) (*Store, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return New(client, prefix), nil
}

func New(client *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{client: client, prefix: prefix}
}

func (s *Store) Close() error { return s.client.Close() }

func (s *Store) Products() *ProductRepo { return &ProductRepo{s: s} }
func (s *Store) Carts() *CartRepo       { return &CartRepo{s: s} }
func (s *Store) Orders() *OrderRepo     { return &OrderRepo{s: s} }

func (s *Store) productKey(id string) string { return s.prefix + "product:" + id }
func (s *Store) productsKey() string         { return s.prefix + "products" }
func (s *Store) cartKey(sid string) string   { return s.prefix + "cart:" + sid }
func (s *Store) cartsKey() string            { return s.prefix + "carts" }
func (s *Store) orderKey(id string) string   { return s.prefix + "order:" + id }
func (s *Store) ordersKey() string           { return s.prefix + "orders" }

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func getJSON[T any](ctx context.Context, c getter, key string, notFound error) (T, error) {
	var out T
	raw, err := c.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return out, notFound
	}
	if err != nil {
		return out, fmt.Errorf("get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decode %s: %w", key, err)
	}
	return out, nil
}

// listJSON loads every key named by the ids stored in listKey, in list order.
func listJSON[T any](ctx context.Context, c *redis.Client, listKey string, key func(string) string) ([]T, error) {
	ids, err := c.LRange(ctx, listKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange %s: %w", listKey, err)
	}
	out := make([]T, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = key(id)
	}
	vals, err := c.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("mget: %w", err)
	}
	for i, v := range vals {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var item T
		if err := json.Unmarshal([]byte(str), &item); err != nil {
			return nil, fmt.Errorf("decode %s: %w", keys[i], err)
		}
		out = append(out, item)
	}
	return out, nil
}

type ProductRepo struct{ s *Store }

func (r *ProductRepo) Create(ctx context.Context, p catalogdomain.Product) (catalogdomain.Product, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return catalogdomain.Product{}, fmt.Errorf("encode product: %w", err)
	}

	_, err = r.s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.s.productKey(p.ID), data, 0)
		pipe.RPush(ctx, r.s.productsKey(), p.ID)
		return nil
	})
	if err != nil {
		return catalogdomain.Product{}, fmt.Errorf("create product: %w", err)
	}
	return p, nil
}

func (r *ProductRepo) Get(ctx context.Context, id string) (catalogdomain.Product, error) {
	return getJSON[catalogdomain.Product](ctx, r.s.client, r.s.productKey(id),
		apperr.NotFound("Product not found", apperr.Fields{"productId": id}))
}

func (r *ProductRepo) List(ctx context.Context) ([]catalogdomain.Product, error) {
	return listJSON[catalogdomain.Product](ctx, r.s.client, r.s.productsKey(), r.s.productKey)
}

// DecrementStock runs an optimistic WATCH/MULTI cycle on the product key and
// retries when another writer got there first.
func (r *ProductRepo) DecrementStock(ctx context.Context, id string, quantity int) (catalogdomain.Product, error) {
	key := r.s.productKey(id)
	var updated catalogdomain.Product

	txf := func(tx *redis.Tx) error {
		p, err := getJSON[catalogdomain.Product](ctx, tx, key,
			apperr.NotFound("Product not found", apperr.Fields{"productId": id}))
		if err != nil {
			return err
		}
		p.Stock -= quantity

		data, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("encode product: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		if err == nil {
			updated = p
		}
		return err
	}

	for range maxTxRetries {
		err := r.s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return catalogdomain.Product{}, err
		}
		return updated, nil
	}
	return catalogdomain.Product{}, fmt.Errorf("decrement stock for %s: too much contention", id)
}

type CartRepo struct{ s *Store }

func (r *CartRepo) Get(ctx context.Context, sessionID string) (cartdomain.Cart, error) {
	return getJSON[cartdomain.Cart](ctx, r.s.client, r.s.cartKey(sessionID),
		apperr.NotFound("Cart not found", apperr.Fields{"sessionId": sessionID}))
}

func (r *CartRepo) Save(ctx context.Context, sessionID string, cart cartdomain.Cart) (cartdomain.Cart, error) {
	data, err := json.Marshal(cart)
	if err != nil {
		return cartdomain.Cart{}, fmt.Errorf("encode cart: %w", err)
	}

	_, err = r.s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.s.cartKey(sessionID), data, 0)
		pipe.SAdd(ctx, r.s.cartsKey(), sessionID)
		return nil
	})
	if err != nil {
		return cartdomain.Cart{}, fmt.Errorf("save cart: %w", err)
	}
	return cart.Clone(), nil
}

func (r *CartRepo) Delete(ctx context.Context, sessionID string) error {
	var del *redis.IntCmd
	_, err := r.s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, r.s.cartKey(sessionID))
		pipe.SRem(ctx, r.s.cartsKey(), sessionID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	if del.Val() == 0 {
		return apperr.NotFound("Cart not found", apperr.Fields{"sessionId": sessionID})
	}
	return nil
}

func (r *CartRepo) Count(ctx context.Context) (int, error) {
	n, err := r.s.client.SCard(ctx, r.s.cartsKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("count carts: %w", err)
	}
	return int(n), nil
}

type OrderRepo struct{ s *Store }

func (r *OrderRepo) Create(ctx context.Context, o orderdomain.Order) (orderdomain.Order, error) {
	data, err := json.Marshal(o)
	if err != nil {
		return orderdomain.Order{}, fmt.Errorf("encode order: %w", err)
	}

	_, err = r.s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.s.orderKey(o.ID), data, 0)
		pipe.RPush(ctx, r.s.ordersKey(), o.ID)
		return nil
	})
	if err != nil {
		return orderdomain.Order{}, fmt.Errorf("create order: %w", err)
	}
	return o.Clone(), nil
}

func (r *OrderRepo) Get(ctx context.Context, id string) (orderdomain.Order, error) {
	return getJSON[orderdomain.Order](ctx, r.s.client, r.s.orderKey(id),
		apperr.NotFound("Order not found", apperr.Fields{"orderId": id}))
}

func (r *OrderRepo) List(ctx context.Context) ([]orderdomain.Order, error) {
	return listJSON[orderdomain.Order](ctx, r.s.client, r.s.ordersKey(), r.s.orderKey)
}
