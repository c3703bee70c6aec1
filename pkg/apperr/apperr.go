// Package apperr defines the error taxonomy shared by the shop services. Each
// failure carries one of the sentinel kinds below so the HTTP boundary can map
// it to a status code with errors.Is.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrPayment           = errors.New("payment failed")
)

// Fields is extra context rendered next to the error message.
type Fields map[string]any

type Error struct {
	Kind    error
	Message string
	Fields  Fields
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Kind }

func Validation(msg string, fields Fields) error {
	return &Error{Kind: ErrValidation, Message: msg, Fields: fields}
}

func NotFound(msg string, fields Fields) error {
	return &Error{Kind: ErrNotFound, Message: msg, Fields: fields}
}

func EmptyCart(fields Fields) error {
	return &Error{Kind: ErrEmptyCart, Message: "Cart is empty", Fields: fields}
}

func Payment(msg string, fields Fields) error {
	return &Error{Kind: ErrPayment, Message: msg, Fields: fields}
}

// InsufficientStockError reports a requested quantity above the live stock.
// InCart is the quantity already in the cart before the request, or -1 when
// it is not relevant.
type InsufficientStockError struct {
	ProductID string
	Name      string
	Available int
	Requested int
	InCart    int
}

func (e *InsufficientStockError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("Insufficient stock for %s", e.Name)
	}
	return "Insufficient stock"
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// FieldsOf returns the context attached to err, if any.
func FieldsOf(err error) Fields {
	var ae *Error
	if errors.As(err, &ae) && ae.Fields != nil {
		return ae.Fields
	}
	var se *InsufficientStockError
	if errors.As(err, &se) {
		f := Fields{"available": se.Available, "requested": se.Requested}
		if se.ProductID != "" {
			f["productId"] = se.ProductID
		}
		if se.InCart >= 0 {
			f["inCart"] = se.InCart
		}
		return f
	}
	return nil
}
