package app

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dwikikusuma/shopdemo/internal/cart/domain"
	"github.com/dwikikusuma/shopdemo/pkg/apperr"
	"github.com/dwikikusuma/shopdemo/pkg/keylock"
)

type Service struct {
	repo     CartRepo
	products ProductReader
	locks    keylock.Locker
	now      func() time.Time
}

type Option func(*Service)

// WithLocker serializes mutations per session id.
func WithLocker(l keylock.Locker) Option {
	return func(s *Service) { s.locks = l }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo CartRepo, products ProductReader, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		products: products,
		locks:    keylock.Noop{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetCart returns the stored cart, or an empty one that is not persisted.
func (s *Service) GetCart(ctx context.Context, sessionID string) (domain.Cart, error) {
	cart, err := s.repo.Get(ctx, sessionID)
	if errors.Is(err, apperr.ErrNotFound) {
		return domain.New(s.now().UTC()), nil
	}
	if err != nil {
		return domain.Cart{}, fmt.Errorf("load cart: %w", err)
	}
	if cart.Items == nil {
		cart.Items = []domain.CartItem{}
	}
	return cart, nil
}

// AddItem merges quantity into the cart line for productID, creating the line
// when absent. merged reports whether an existing line was increased.
func (s *Service) AddItem(ctx context.Context, sessionID, productID string, quantity int) (cart domain.Cart, merged bool, err error) {
	if strings.TrimSpace(productID) == "" {
		return domain.Cart{}, false, apperr.Validation("Product ID is required", apperr.Fields{
			"received": apperr.Fields{"productId": productID},
		})
	}
	if quantity <= 0 {
		return domain.Cart{}, false, apperr.Validation("Quantity must be a positive integer", apperr.Fields{
			"received": apperr.Fields{"quantity": quantity},
		})
	}

	unlock := s.locks.Lock(keylock.CartKey(sessionID))
	defer unlock()

	product, err := s.lookup(ctx, productID)
	if err != nil {
		return domain.Cart{}, false, err
	}

	cart, err = s.GetCart(ctx, sessionID)
	if err != nil {
		return domain.Cart{}, false, err
	}

	idx := cart.Find(productID)
	inCart := 0
	if idx >= 0 {
		inCart = cart.Items[idx].Quantity
	}
	// Compared before adding so a huge quantity cannot overflow the merge.
	if quantity > product.Stock-inCart {
		requested := inCart + quantity
		if requested < 0 {
			requested = math.MaxInt
		}
		return domain.Cart{}, false, &apperr.InsufficientStockError{
			ProductID: product.ID,
			Name:      product.Name,
			Available: product.Stock,
			Requested: requested,
			InCart:    inCart,
		}
	}
	newQuantity := inCart + quantity

	now := s.now().UTC()
	if idx >= 0 {
		cart.Items[idx].Quantity = newQuantity
		cart.Items[idx].UpdatedAt = now
	} else {
		cart.Items = append(cart.Items, domain.CartItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  quantity,
			AddedAt:   now,
			UpdatedAt: now,
		})
	}

	saved, err := s.persist(ctx, sessionID, cart, now)
	if err != nil {
		return domain.Cart{}, false, err
	}
	return saved, idx >= 0, nil
}

// SetItemQuantity overwrites the quantity of an existing line. Zero removes it.
func (s *Service) SetItemQuantity(ctx context.Context, sessionID, productID string, quantity int) (domain.Cart, error) {
	if quantity < 0 {
		return domain.Cart{}, apperr.Validation("Quantity must be a non-negative integer", apperr.Fields{
			"received": apperr.Fields{"quantity": quantity},
		})
	}

	unlock := s.locks.Lock(keylock.CartKey(sessionID))
	defer unlock()

	product, err := s.lookup(ctx, productID)
	if err != nil {
		return domain.Cart{}, err
	}

	cart, err := s.GetCart(ctx, sessionID)
	if err != nil {
		return domain.Cart{}, err
	}

	idx := cart.Find(productID)
	if idx < 0 {
		return domain.Cart{}, apperr.NotFound("Product not found in cart", apperr.Fields{"productId": productID})
	}

	now := s.now().UTC()
	if quantity == 0 {
		cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
	} else {
		if product.Stock < quantity {
			return domain.Cart{}, &apperr.InsufficientStockError{
				ProductID: product.ID,
				Name:      product.Name,
				Available: product.Stock,
				Requested: quantity,
				InCart:    -1,
			}
		}
		cart.Items[idx].Quantity = quantity
		cart.Items[idx].UpdatedAt = now
	}

	return s.persist(ctx, sessionID, cart, now)
}

// RemoveItem deletes the line for productID and returns it with the updated cart.
func (s *Service) RemoveItem(ctx context.Context, sessionID, productID string) (domain.Cart, domain.CartItem, error) {
	unlock := s.locks.Lock(keylock.CartKey(sessionID))
	defer unlock()

	cart, err := s.GetCart(ctx, sessionID)
	if err != nil {
		return domain.Cart{}, domain.CartItem{}, err
	}

	idx := cart.Find(productID)
	if idx < 0 {
		return domain.Cart{}, domain.CartItem{}, apperr.NotFound("Product not found in cart", apperr.Fields{"productId": productID})
	}

	removed := cart.Items[idx]
	cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)

	saved, err := s.persist(ctx, sessionID, cart, s.now().UTC())
	if err != nil {
		return domain.Cart{}, domain.CartItem{}, err
	}
	return saved, removed, nil
}

// Clear deletes the session's cart. A session without a stored cart fails
// with not found, so a second Clear in a row is an error.
func (s *Service) Clear(ctx context.Context, sessionID string) error {
	unlock := s.locks.Lock(keylock.CartKey(sessionID))
	defer unlock()

	return s.Drop(ctx, sessionID)
}

// Drop deletes the cart without taking the session lock. The caller must
// already hold it when locking is enabled.
func (s *Service) Drop(ctx context.Context, sessionID string) error {
	err := s.repo.Delete(ctx, sessionID)
	if errors.Is(err, apperr.ErrNotFound) {
		return apperr.NotFound("Cart not found or already empty", apperr.Fields{"sessionId": sessionID})
	}
	if err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	return nil
}

func (s *Service) CountCarts(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

func (s *Service) lookup(ctx context.Context, productID string) (Product, error) {
	product, err := s.products.GetProduct(ctx, productID)
	if errors.Is(err, apperr.ErrNotFound) {
		return Product{}, apperr.NotFound("Product not found", apperr.Fields{"productId": productID})
	}
	if err != nil {
		return Product{}, fmt.Errorf("lookup product %s: %w", productID, err)
	}
	return product, nil
}

func (s *Service) persist(ctx context.Context, sessionID string, cart domain.Cart, now time.Time) (domain.Cart, error) {
	cart.Recalculate()
	cart.UpdatedAt = now
	saved, err := s.repo.Save(ctx, sessionID, cart)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("save cart: %w", err)
	}
	return saved, nil
}
