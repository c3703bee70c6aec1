package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	checkoutapp "github.com/dwikikusuma/shopdemo/internal/checkout/app"
	checkoutdomain "github.com/dwikikusuma/shopdemo/internal/checkout/domain"
	orderdomain "github.com/dwikikusuma/shopdemo/internal/order/domain"
	"github.com/dwikikusuma/shopdemo/pkg/apperr"
	"github.com/dwikikusuma/shopdemo/pkg/metrics"
)

type checkoutRequest struct {
	CustomerInfo  checkoutdomain.CustomerInfo `json:"customerInfo"`
	PaymentMethod string                      `json:"paymentMethod"`
}

func (a *API) checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := decode(w, r, &req); err != nil && err != errEmptyBody {
		badRequest(w, "Invalid JSON body", nil)
		return
	}

	sid := SessionID(r)
	receipt, err := a.svc.Checkout.ProcessCheckout(r.Context(), sid, req.CustomerInfo, req.PaymentMethod)
	metrics.RecordCheckout(checkoutOutcome(err))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	metrics.RecordRevenue(receipt.Total)

	a.log.Info("order placed",
		"order_id", receipt.ID,
		"session_id", sid,
		"total", receipt.Total.StringFixed(2),
	)

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Order processed successfully",
		"order":   receipt,
	})
}

func checkoutOutcome(err error) string {
	var stockErr *checkoutapp.StockUpdateError
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &stockErr):
		return "partial"
	case errors.Is(err, apperr.ErrValidation):
		return "invalid"
	case errors.Is(err, apperr.ErrEmptyCart):
		return "empty_cart"
	case errors.Is(err, apperr.ErrInsufficientStock), errors.Is(err, apperr.ErrNotFound):
		return "stock"
	case errors.Is(err, apperr.ErrPayment):
		return "declined"
	default:
		return "error"
	}
}

func (a *API) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := a.svc.Orders.ListSummaries(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if orders == nil {
		orders = []orderdomain.Summary{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"count":   len(orders),
		"orders":  orders,
	})
}

func (a *API) getOrder(w http.ResponseWriter, r *http.Request) {
	order, err := a.svc.Orders.GetOrder(r.Context(), chi.URLParam(r, "orderId"))
	if err != nil {
		a.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "order": order})
}
