package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dwikikusuma/shopdemo/pkg/apperr"
	"github.com/dwikikusuma/shopdemo/pkg/metrics"
	"github.com/dwikikusuma/shopdemo/pkg/money"
)

type addToCartRequest struct {
	ProductID string          `json:"productId"`
	Quantity  json.RawMessage `json:"quantity"`
}

type updateCartRequest struct {
	Quantity json.RawMessage `json:"quantity"`
}

func (a *API) getCart(w http.ResponseWriter, r *http.Request) {
	sid := SessionID(r)

	cart, err := a.svc.Cart.GetCart(r.Context(), sid)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"cart":      cart,
		"sessionId": sid,
		"isEmpty":   cart.IsEmpty(),
	})
}

func (a *API) addToCart(w http.ResponseWriter, r *http.Request) {
	var req addToCartRequest
	if err := decode(w, r, &req); err != nil && err != errEmptyBody {
		badRequest(w, "Invalid JSON body", nil)
		return
	}
	if req.ProductID == "" {
		badRequest(w, "Product ID is required", apperr.Fields{
			"received": apperr.Fields{"productId": nil},
		})
		return
	}

	quantity := 1
	if len(req.Quantity) > 0 && string(req.Quantity) != "null" {
		q, err := money.IntFromNumber(req.Quantity)
		if err != nil || q <= 0 {
			badRequest(w, "Quantity must be a positive integer", apperr.Fields{
				"received": apperr.Fields{"quantity": rawValue(req.Quantity), "type": jsonType(req.Quantity)},
			})
			return
		}
		quantity = q
	}

	sid := SessionID(r)
	cart, merged, err := a.svc.Cart.AddItem(r.Context(), sid, req.ProductID, quantity)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	metrics.RecordCartMutation("add")

	msg := "Product added to cart"
	if merged {
		msg = "Product updated in cart"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   msg,
		"cart":      cart,
		"sessionId": sid,
	})
}

func (a *API) updateCartItem(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")

	var req updateCartRequest
	if err := decode(w, r, &req); err != nil && err != errEmptyBody {
		badRequest(w, "Invalid JSON body", nil)
		return
	}

	quantity, err := money.IntFromNumber(req.Quantity)
	if err != nil || quantity < 0 {
		badRequest(w, "Quantity must be a non-negative integer", apperr.Fields{
			"received": apperr.Fields{"quantity": rawValue(req.Quantity), "type": jsonType(req.Quantity)},
		})
		return
	}

	sid := SessionID(r)
	cart, err := a.svc.Cart.SetItemQuantity(r.Context(), sid, productID, quantity)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	msg := "Cart item updated"
	op := "update"
	if quantity == 0 {
		msg = "Product removed from cart"
		op = "remove"
	}
	metrics.RecordCartMutation(op)

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   msg,
		"cart":      cart,
		"sessionId": sid,
	})
}

func (a *API) removeFromCart(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")
	sid := SessionID(r)

	cart, removed, err := a.svc.Cart.RemoveItem(r.Context(), sid, productID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	metrics.RecordCartMutation("remove")

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"message":     "Product removed from cart",
		"removedItem": removed,
		"cart":        cart,
		"sessionId":   sid,
	})
}

func (a *API) clearCart(w http.ResponseWriter, r *http.Request) {
	sid := SessionID(r)

	if err := a.svc.Cart.Clear(r.Context(), sid); err != nil {
		a.fail(w, r, err)
		return
	}
	metrics.RecordCartMutation("clear")

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "Cart cleared successfully",
		"sessionId": sid,
	})
}
