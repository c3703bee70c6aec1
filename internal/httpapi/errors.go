package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	checkoutapp "github.com/dwikikusuma/shopdemo/internal/checkout/app"
	"github.com/dwikikusuma/shopdemo/pkg/apperr"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrInsufficientStock):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrEmptyCart):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrPayment):
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}

// fail writes {success:false, error, ...context} for a domain error, or a
// generic 500 for anything else.
func (a *API) fail(w http.ResponseWriter, r *http.Request, err error) {
	var stockErr *checkoutapp.StockUpdateError
	if errors.As(err, &stockErr) {
		a.internalError(w, r, err, "orderId", stockErr.OrderID)
		return
	}

	status := statusFor(err)
	if status == http.StatusInternalServerError {
		a.internalError(w, r, err)
		return
	}

	body := map[string]any{}
	for k, v := range apperr.FieldsOf(err) {
		body[k] = v
	}
	body["success"] = false
	body["error"] = err.Error()

	writeJSON(w, status, body)
}

// internalError logs err and hides its detail in production.
func (a *API) internalError(w http.ResponseWriter, r *http.Request, err error, extra ...any) {
	reqID := middleware.GetReqID(r.Context())
	a.log.Error("request failed",
		slog.Any("err", err),
		slog.String("path", r.URL.Path),
		slog.String("method", r.Method),
		slog.String("request_id", reqID),
		slog.String("session_id", SessionID(r)),
	)

	body := map[string]any{
		"success":   false,
		"error":     "Internal server error",
		"message":   "Something went wrong on the server",
		"requestId": reqID,
	}
	if !a.opts.Production {
		body["message"] = err.Error()
	}
	for i := 0; i+1 < len(extra); i += 2 {
		if k, ok := extra[i].(string); ok {
			body[k] = extra[i+1]
		}
	}

	writeJSON(w, http.StatusInternalServerError, body)
}

func badRequest(w http.ResponseWriter, msg string, fields apperr.Fields) {
	body := map[string]any{}
	for k, v := range fields {
		body[k] = v
	}
	body["success"] = false
	body["error"] = msg
	writeJSON(w, http.StatusBadRequest, body)
}
