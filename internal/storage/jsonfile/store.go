// Package jsonfile keeps the whole shop state in one JSON document on disk:
// {"products": [...], "carts": {...}, "orders": [...]}. Every call reads the
// file, and every mutation rewrites it through a temp file and rename.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	cartdomain "github.com/dwikikusuma/shopdemo/internal/cart/domain"
	catalogdomain "github.com/dwikikusuma/shopdemo/internal/catalog/domain"
	orderdomain "github.com/dwikikusuma/shopdemo/internal/order/domain"
	"github.com/dwikikusuma/shopdemo/pkg/apperr"
)

type document struct {
	Products []catalogdomain.Product    `json:"products"`
	Carts    map[string]cartdomain.Cart `json:"carts"`
	Orders   []orderdomain.Order        `json:"orders"`
}

func emptyDocument() document {
	return document{
		Products: []catalogdomain.Product{},
		Carts:    map[string]cartdomain.Cart{},
		Orders:   []orderdomain.Order{},
	}
}

type Store struct {
	path string
	mu   sync.Mutex
}

// Open creates the file with an empty document when it does not exist.
func Open(path string) (*Store, error) {
	s := &Store{path: path}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	_, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := s.write(emptyDocument()); err != nil {
			return nil, err
		}
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if _, err := s.read(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) Path() string { return s.path }

func (s *Store) Close() error { return nil }

func (s *Store) Products() *ProductRepo { return &ProductRepo{s: s} }
func (s *Store) Carts() *CartRepo       { return &CartRepo{s: s} }
func (s *Store) Orders() *OrderRepo     { return &OrderRepo{s: s} }

func (s *Store) read() (document, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return document{}, fmt.Errorf("read %s: %w", s.path, err)
	}
	doc := emptyDocument()
	if err := json.Unmarshal(raw, &doc); err != nil {
		return document{}, fmt.Errorf("decode %s: %w", s.path, err)
	}
	if doc.Carts == nil {
		doc.Carts = map[string]cartdomain.Cart{}
	}
	return doc, nil
}

func (s *Store) write(doc document) error {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}

func (s *Store) view(fn func(doc document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	return fn(doc)
}

func (s *Store) update(fn func(doc *document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	if err := fn(&doc); err != nil {
		return err
	}
	return s.write(doc)
}

type ProductRepo struct{ s *Store }

func (r *ProductRepo) Create(ctx context.Context, p catalogdomain.Product) (catalogdomain.Product, error) {
	err := r.s.update(func(doc *document) error {
		doc.Products = append(doc.Products, p)
		return nil
	})
	if err != nil {
		return catalogdomain.Product{}, err
	}
	return p, nil
}

func (r *ProductRepo) Get(ctx context.Context, id string) (catalogdomain.Product, error) {
	var out catalogdomain.Product
	err := r.s.view(func(doc document) error {
		for _, p := range doc.Products {
			if p.ID == id {
				out = p
				return nil
			}
		}
		return apperr.NotFound("Product not found", apperr.Fields{"productId": id})
	})
	return out, err
}

func (r *ProductRepo) List(ctx context.Context) ([]catalogdomain.Product, error) {
	var out []catalogdomain.Product
	err := r.s.view(func(doc document) error {
		out = doc.Products
		return nil
	})
	return out, err
}

func (r *ProductRepo) DecrementStock(ctx context.Context, id string, quantity int) (catalogdomain.Product, error) {
	var out catalogdomain.Product
	err := r.s.update(func(doc *document) error {
		for i := range doc.Products {
			if doc.Products[i].ID == id {
				doc.Products[i].Stock -= quantity
				out = doc.Products[i]
				return nil
			}
		}
		return apperr.NotFound("Product not found", apperr.Fields{"productId": id})
	})
	return out, err
}

type CartRepo struct{ s *Store }

func (r *CartRepo) Get(ctx context.Context, sessionID string) (cartdomain.Cart, error) {
	var out cartdomain.Cart
	err := r.s.view(func(doc document) error {
		c, ok := doc.Carts[sessionID]
		if !ok {
			return apperr.NotFound("Cart not found", apperr.Fields{"sessionId": sessionID})
		}
		out = c
		return nil
	})
	return out, err
}

func (r *CartRepo) Save(ctx context.Context, sessionID string, cart cartdomain.Cart) (cartdomain.Cart, error) {
	err := r.s.update(func(doc *document) error {
		doc.Carts[sessionID] = cart
		return nil
	})
	if err != nil {
		return cartdomain.Cart{}, err
	}
	return cart.Clone(), nil
}

func (r *CartRepo) Delete(ctx context.Context, sessionID string) error {
	return r.s.update(func(doc *document) error {
		if _, ok := doc.Carts[sessionID]; !ok {
			return apperr.NotFound("Cart not found", apperr.Fields{"sessionId": sessionID})
		}
		delete(doc.Carts, sessionID)
		return nil
	})
}

func (r *CartRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.s.view(func(doc document) error {
		n = len(doc.Carts)
		return nil
	})
	return n, err
}

type OrderRepo struct{ s *Store }

func (r *OrderRepo) Create(ctx context.Context, o orderdomain.Order) (orderdomain.Order, error) {
	err := r.s.update(func(doc *document) error {
		doc.Orders = append(doc.Orders, o)
		return nil
	})
	if err != nil {
		return orderdomain.Order{}, err
	}
	return o.Clone(), nil
}

func (r *OrderRepo) Get(ctx context.Context, id string) (orderdomain.Order, error) {
	var out orderdomain.Order
	err := r.s.view(func(doc document) error {
		for _, o := range doc.Orders {
			if o.ID == id {
				out = o
				return nil
			}
		}
		return apperr.NotFound("Order not found", apperr.Fields{"orderId": id})
	})
	return out, err
}

func (r *OrderRepo) List(ctx context.Context) ([]orderdomain.Order, error) {
	var out []orderdomain.Order
	err := r.s.view(func(doc document) error {
		out = doc.Orders
		return nil
	})
	return out, err
}
