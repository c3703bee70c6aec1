package app

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/dwikikusuma/shopdemo/internal/checkout/domain"
	"github.com/dwikikusuma/shopdemo/pkg/apperr"
	"github.com/dwikikusuma/shopdemo/pkg/keylock"
)

type CartReader interface {
	// GetCart returns the session's lines and total. A session without a
	// cart yields no lines.
	GetCart(ctx context.Context, sessionID string) ([]domain.Line, decimal.Decimal, error)
	DropCart(ctx context.Context, sessionID string) error
}

type CatalogReader interface {
	GetProduct(ctx context.Context, productID string) (Product, error)
	DecrementStock(ctx context.Context, productID string, quantity int) error
}

type Product struct {
	ID    string
	Name  string
	Stock int
}

type OrderWriter interface {
	CreateOrder(ctx context.Context, draft domain.OrderDraft) (domain.PlacedOrder, error)
}

type PaymentProcessor interface {
	Charge(ctx context.Context, amount decimal.Decimal, method string) domain.PaymentResult
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type Service struct {
	Cart    CartReader
	Catalog CatalogReader
	Orders  OrderWriter
	Payment PaymentProcessor

	locks         keylock.Locker
	maxConcurrent int
}

func NewService(cart CartReader, catalog CatalogReader, orders OrderWriter, payment PaymentProcessor, maxConcurrent int) *Service {
	if maxConcurrent <= 0 {
		maxConcurrent = 10
	}

	return &Service{
		Cart:          cart,
		Catalog:       catalog,
		Orders:        orders,
		Payment:       payment,
		locks:         keylock.Noop{},
		maxConcurrent: maxConcurrent,
	}
}

// WithLocker serializes checkouts per session and per purchased product.
func (s *Service) WithLocker(l keylock.Locker) *Service {
	s.locks = l
	return s
}

// ProcessCheckout turns the session's cart into an order. Nothing is changed
// unless payment succeeds; after that the order is stored, stock is
// decremented product by product and the cart is deleted. The decrement loop
// is not atomic across products.
func (s *Service) ProcessCheckout(ctx context.Context, sessionID string, customer domain.CustomerInfo, paymentMethod string) (domain.Receipt, error) {
	rawEmail := customer.Email
	customer.Name = strings.TrimSpace(customer.Name)
	customer.Email = strings.TrimSpace(customer.Email)

	if customer.Name == "" || customer.Email == "" {
		return domain.Receipt{}, apperr.Validation("Customer information is required", apperr.Fields{
			"required": []string{"name", "email"},
			"received": customer,
		})
	}
	// The pattern sees the email as sent; trimming is only for storage.
	if !emailPattern.MatchString(rawEmail) {
		return domain.Receipt{}, apperr.Validation("Invalid email format", apperr.Fields{"email": rawEmail})
	}
	if strings.TrimSpace(paymentMethod) == "" {
		paymentMethod = domain.DefaultPaymentMethod
	}

	unlockCart := s.locks.Lock(keylock.CartKey(sessionID))
	defer unlockCart()

	lines, total, err := s.Cart.GetCart(ctx, sessionID)
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("load cart: %w", err)
	}
	if len(lines) == 0 {
		return domain.Receipt{}, apperr.EmptyCart(apperr.Fields{"sessionId": sessionID})
	}

	productKeys := make([]string, 0, len(lines))
	for _, l := range lines {
		productKeys = append(productKeys, keylock.ProductKey(l.ProductID))
	}
	unlockProducts := s.locks.Lock(productKeys...)
	defer unlockProducts()

	if err := s.verifyStock(ctx, lines); err != nil {
		return domain.Receipt{}, err
	}

	payment := s.Payment.Charge(ctx, total, paymentMethod)
	if !payment.Success {
		return domain.Receipt{}, apperr.Payment("Payment processing failed", apperr.Fields{
			"message": "Please check your payment information and try again",
			"details": payment,
		})
	}
	txnID := ""
	if payment.TransactionID != nil {
		txnID = *payment.TransactionID
	}

	order, err := s.Orders.CreateOrder(ctx, domain.OrderDraft{
		SessionID:     sessionID,
		Customer:      customer,
		Lines:         lines,
		PaymentMethod: paymentMethod,
		TransactionID: txnID,
		ProcessedAt:   payment.ProcessedAt,
	})
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("create order: %w", err)
	}

	for _, l := range lines {
		if err := s.Catalog.DecrementStock(ctx, l.ProductID, l.Quantity); err != nil {
			return domain.Receipt{}, &StockUpdateError{OrderID: order.ID, ProductID: l.ProductID, Err: err}
		}
	}

	if err := s.Cart.DropCart(ctx, sessionID); err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return domain.Receipt{}, fmt.Errorf("order %s: delete cart: %w", order.ID, err)
	}

	return domain.Receipt{
		ID:            order.ID,
		Total:         order.Total,
		Status:        order.Status,
		CreatedAt:     order.CreatedAt,
		TransactionID: txnID,
		CustomerEmail: order.CustomerEmail,
	}, nil
}

// verifyStock resolves every product concurrently, then reports the first
// violation in cart order.
func (s *Service) verifyStock(ctx context.Context, lines []domain.Line) error {
	type lookup struct {
		product Product
		err     error
	}
	results := make([]lookup, len(lines))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)

	for idx := range lines {
		g.Go(func() error {
			p, err := s.Catalog.GetProduct(gctx, lines[idx].ProductID)
			if err != nil && !errors.Is(err, apperr.ErrNotFound) {
				return fmt.Errorf("failed to get product %s: %w", lines[idx].ProductID, err)
			}
			results[idx] = lookup{product: p, err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	for idx, l := range lines {
		r := results[idx]
		if r.err != nil {
			return apperr.NotFound(fmt.Sprintf("Product %s not found", l.Name), apperr.Fields{"productId": l.ProductID})
		}
		if r.product.Stock < l.Quantity {
			return &apperr.InsufficientStockError{
				ProductID: l.ProductID,
				Name:      l.Name,
				Available: r.product.Stock,
				Requested: l.Quantity,
				InCart:    -1,
			}
		}
	}
	return nil
}

// StockUpdateError means the order was stored but a stock decrement failed
// afterwards. Decrements before ProductID were applied.
type StockUpdateError struct {
	OrderID   string
	ProductID string
	Err       error
}

func (e *StockUpdateError) Error() string {
	return fmt.Sprintf("order %s: decrement stock for %s: %v", e.OrderID, e.ProductID, e.Err)
}

func (e *StockUpdateError) Unwrap() error { return e.Err }
