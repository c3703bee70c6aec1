package httpapi_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	cartapp "github.com/dwikikusuma/shopdemo/internal/cart/app"
	cartadapter "github.com/dwikikusuma/shopdemo/internal/cart/infra/adapter"
	catalogapp "github.com/dwikikusuma/shopdemo/internal/catalog/app"
	checkoutapp "github.com/dwikikusuma/shopdemo/internal/checkout/app"
	checkoutadapter "github.com/dwikikusuma/shopdemo/internal/checkout/infra/adapter"
	"github.com/dwikikusuma/shopdemo/internal/checkout/infra/payment"
	"github.com/dwikikusuma/shopdemo/internal/httpapi"
	orderapp "github.com/dwikikusuma/shopdemo/internal/order/app"
	statsapp "github.com/dwikikusuma/shopdemo/internal/stats/app"
	"github.com/dwikikusuma/shopdemo/internal/storage/memory"
	"github.com/dwikikusuma/shopdemo/pkg/keylock"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type harness struct {
	t       *testing.T
	handler http.Handler
}

func newHarness(t *testing.T, paymentMode string, opts httpapi.Options) *harness {
	t.Helper()

	store := memory.New()
	locks := keylock.New()
	catalog := catalogapp.NewService(store.Products())
	cart := cartapp.NewService(store.Carts(), cartadapter.NewCatalogServiceReader(catalog), cartapp.WithLocker(locks))
	orders := orderapp.NewService(store.Orders())
	checkout := checkoutapp.NewService(
		checkoutadapter.NewCartServiceReader(cart),
		checkoutadapter.NewCatalogServiceReader(catalog),
		checkoutadapter.NewOrderServiceWriter(orders),
		payment.NewSimulator(paymentMode, 1),
		4,
	).WithLocker(locks)

	api := httpapi.New(slog.New(slog.NewTextHandler(io.Discard, nil)), httpapi.Services{
		Catalog:  catalog,
		Cart:     cart,
		Checkout: checkout,
		Orders:   orders,
		Stats:    statsapp.NewService(catalog, orders, cart),
	}, opts)

	return &harness{t: t, handler: api.Routes()}
}

type response struct {
	Code   int
	Header http.Header
	Body   map[string]any
}

func (h *harness) do(method, path, session string, body any) response {
	h.t.Helper()

	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(h.t, err)
		rdr = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	if session != "" {
		req.Header.Set("session-id", session)
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)

	out := response{Code: rec.Code, Header: rec.Header()}
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		dec := json.NewDecoder(rec.Body)
		dec.UseNumber()
		require.NoError(h.t, dec.Decode(&out.Body))
	}
	return out
}

func (h *harness) createProduct(name string, price string, stock int) string {
	h.t.Helper()
	res := h.do(http.MethodPost, "/api/products", "", json.RawMessage(
		`{"name":"`+name+`","price":`+price+`,"stock":`+jsonInt(stock)+`,"category":"electronics"}`,
	))
	require.Equal(h.t, http.StatusCreated, res.Code, res.Body)
	return res.Body["product"].(map[string]any)["id"].(string)
}

func jsonInt(n int) string {
	raw, _ := json.Marshal(n)
	return string(raw)
}

func obj(t *testing.T, v any) map[string]any {
	t.Helper()
	m, ok := v.(map[string]any)
	require.True(t, ok, "expected object, got %T", v)
	return m
}

func TestProducts(t *testing.T) {
	h := newHarness(t, payment.ModeAlways, httpapi.Options{})

	t.Run("create and fetch", func(t *testing.T) {
		id := h.createProduct("Laptop", "999.99", 10)

		res := h.do(http.MethodGet, "/api/products/"+id, "", nil)
		require.Equal(t, http.StatusOK, res.Code)
		product := obj(t, res.Body["product"])
		assert.Equal(t, "Laptop", product["name"])
		assert.Equal(t, json.Number("999.99"), product["price"])

		list := h.do(http.MethodGet, "/api/products", "", nil)
		assert.Equal(t, json.Number("1"), list.Body["count"])
	})

	t.Run("missing fields", func(t *testing.T) {
		res := h.do(http.MethodPost, "/api/products", "", map[string]any{"name": "Mouse"})
		assert.Equal(t, http.StatusBadRequest, res.Code)
		assert.Equal(t, false, res.Body["success"])
		assert.Equal(t, "Name, price, and stock are required fields", res.Body["error"])
		assert.Contains(t, res.Body, "received")
	})

	t.Run("price as string", func(t *testing.T) {
		res := h.do(http.MethodPost, "/api/products", "", map[string]any{"name": "Mouse", "price": "25.99", "stock": 3})
		assert.Equal(t, http.StatusBadRequest, res.Code)
		assert.Equal(t, "Price must be a number greater than 0", res.Body["error"])
		assert.Equal(t, "string", obj(t, res.Body["received"])["type"])
	})

	t.Run("negative stock", func(t *testing.T) {
		res := h.do(http.MethodPost, "/api/products", "", map[string]any{"name": "Mouse", "price": 5, "stock": -1})
		assert.Equal(t, http.StatusBadRequest, res.Code)
		assert.Equal(t, "Stock must be a number greater than or equal to 0", res.Body["error"])
	})

	t.Run("invalid json", func(t *testing.T) {
		res := h.do(http.MethodPost, "/api/products", "", "{not json")
		assert.Equal(t, http.StatusBadRequest, res.Code)
		assert.Equal(t, "Invalid JSON body", res.Body["error"])
	})

	t.Run("unknown id", func(t *testing.T) {
		res := h.do(http.MethodGet, "/api/products/nope", "", nil)
		assert.Equal(t, http.StatusNotFound, res.Code)
		assert.Equal(t, "nope", res.Body["productId"])
	})
}

func TestCartFlow(t *testing.T) {
	h := newHarness(t, payment.ModeAlways, httpapi.Options{})
	id := h.createProduct("Mouse", "25.99", 5)
	const sid = "user-1"

	res := h.do(http.MethodGet, "/api/cart", sid, nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, true, res.Body["isEmpty"])
	assert.Equal(t, sid, res.Body["sessionId"])

	res = h.do(http.MethodPost, "/api/cart", sid, map[string]any{"productId": id, "quantity": 2})
	require.Equal(t, http.StatusOK, res.Code, res.Body)
	assert.Equal(t, "Product added to cart", res.Body["message"])
	assert.Equal(t, json.Number("51.98"), obj(t, res.Body["cart"])["total"])

	res = h.do(http.MethodPost, "/api/cart", sid, map[string]any{"productId": id, "quantity": 1})
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "Product updated in cart", res.Body["message"])
	cart := obj(t, res.Body["cart"])
	items := cart["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, json.Number("3"), obj(t, items[0])["quantity"])
	assert.Equal(t, json.Number("77.97"), cart["total"])

	t.Run("quantity defaults to one", func(t *testing.T) {
		res := h.do(http.MethodPost, "/api/cart", "user-2", map[string]any{"productId": id})
		require.Equal(t, http.StatusOK, res.Code)
		assert.Equal(t, json.Number("25.99"), obj(t, res.Body["cart"])["total"])
	})

	t.Run("quantity must be a number", func(t *testing.T) {
		res := h.do(http.MethodPost, "/api/cart", sid, map[string]any{"productId": id, "quantity": "2"})
		assert.Equal(t, http.StatusBadRequest, res.Code)
		assert.Equal(t, "Quantity must be a positive integer", res.Body["error"])
	})

	t.Run("quantity out of range", func(t *testing.T) {
		for _, q := range []string{"18446744073709551617", "9223372036854775807"} {
			res := h.do(http.MethodPost, "/api/cart", sid, json.RawMessage(`{"productId":"`+id+`","quantity":`+q+`}`))
			assert.Equal(t, http.StatusBadRequest, res.Code, q)
		}
		res := h.do(http.MethodGet, "/api/cart", sid, nil)
		assert.Equal(t, json.Number("77.97"), obj(t, res.Body["cart"])["total"])
	})

	t.Run("over stock", func(t *testing.T) {
		res := h.do(http.MethodPost, "/api/cart", sid, map[string]any{"productId": id, "quantity": 3})
		assert.Equal(t, http.StatusBadRequest, res.Code)
		assert.Equal(t, json.Number("5"), res.Body["available"])
		assert.Equal(t, json.Number("6"), res.Body["requested"])
		assert.Equal(t, json.Number("3"), res.Body["inCart"])
	})

	t.Run("unknown product", func(t *testing.T) {
		res := h.do(http.MethodPost, "/api/cart", sid, map[string]any{"productId": "ghost"})
		assert.Equal(t, http.StatusNotFound, res.Code)
	})

	t.Run("set quantity", func(t *testing.T) {
		res := h.do(http.MethodPut, "/api/cart/"+id, sid, map[string]any{"quantity": 1})
		require.Equal(t, http.StatusOK, res.Code)
		assert.Equal(t, "Cart item updated", res.Body["message"])
		assert.Equal(t, json.Number("25.99"), obj(t, res.Body["cart"])["total"])
	})

	t.Run("negative quantity", func(t *testing.T) {
		res := h.do(http.MethodPut, "/api/cart/"+id, sid, map[string]any{"quantity": -1})
		assert.Equal(t, http.StatusBadRequest, res.Code)
		assert.Equal(t, "Quantity must be a non-negative integer", res.Body["error"])
	})

	t.Run("zero removes", func(t *testing.T) {
		res := h.do(http.MethodPut, "/api/cart/"+id, sid, map[string]any{"quantity": 0})
		require.Equal(t, http.StatusOK, res.Code)
		assert.Equal(t, "Product removed from cart", res.Body["message"])
		assert.Empty(t, obj(t, res.Body["cart"])["items"])
	})

	t.Run("remove missing item", func(t *testing.T) {
		res := h.do(http.MethodDelete, "/api/cart/"+id, sid, nil)
		assert.Equal(t, http.StatusNotFound, res.Code)
	})

	t.Run("remove returns item", func(t *testing.T) {
		h.do(http.MethodPost, "/api/cart", sid, map[string]any{"productId": id, "quantity": 2})
		res := h.do(http.MethodDelete, "/api/cart/"+id, sid, nil)
		require.Equal(t, http.StatusOK, res.Code)
		assert.Equal(t, id, obj(t, res.Body["removedItem"])["productId"])
		assert.Equal(t, json.Number("0"), obj(t, res.Body["cart"])["total"])
	})

	t.Run("clear twice", func(t *testing.T) {
		res := h.do(http.MethodDelete, "/api/cart", sid, nil)
		assert.Equal(t, http.StatusOK, res.Code)
		assert.Equal(t, "Cart cleared successfully", res.Body["message"])

		res = h.do(http.MethodDelete, "/api/cart", sid, nil)
		assert.Equal(t, http.StatusNotFound, res.Code)
	})
}

func TestSessionHeaders(t *testing.T) {
	h := newHarness(t, payment.ModeAlways, httpapi.Options{})

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.Header.Set("x-session-id", "alt")
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)

	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "alt", body["sessionId"])

	res := h.do(http.MethodGet, "/api/cart", "", nil)
	assert.Equal(t, httpapi.DefaultSessionID, res.Body["sessionId"])
}

func TestCheckoutFlow(t *testing.T) {
	h := newHarness(t, payment.ModeAlways, httpapi.Options{})
	mouse := h.createProduct("Mouse", "25.99", 5)
	keyboard := h.createProduct("Keyboard", "48.02", 2)
	const sid = "buyer"
	customer := map[string]any{"name": "Ana", "email": "ana@example.com"}

	t.Run("empty cart", func(t *testing.T) {
		res := h.do(http.MethodPost, "/api/checkout", sid, map[string]any{"customerInfo": customer})
		assert.Equal(t, http.StatusBadRequest, res.Code)
		assert.Equal(t, "Cart is empty", res.Body["error"])
	})

	h.do(http.MethodPost, "/api/cart", sid, map[string]any{"productId": mouse, "quantity": 2})
	h.do(http.MethodPost, "/api/cart", sid, map[string]any{"productId": keyboard, "quantity": 1})

	t.Run("missing customer", func(t *testing.T) {
		res := h.do(http.MethodPost, "/api/checkout", sid, map[string]any{})
		assert.Equal(t, http.StatusBadRequest, res.Code)
		assert.Equal(t, "Customer information is required", res.Body["error"])
	})

	t.Run("bad email", func(t *testing.T) {
		res := h.do(http.MethodPost, "/api/checkout", sid, map[string]any{
			"customerInfo": map[string]any{"name": "Ana", "email": "not-an-email"},
		})
		assert.Equal(t, http.StatusBadRequest, res.Code)
		assert.Equal(t, "Invalid email format", res.Body["error"])
	})

	res := h.do(http.MethodPost, "/api/checkout", sid, map[string]any{"customerInfo": customer, "paymentMethod": "paypal"})
	require.Equal(t, http.StatusOK, res.Code, res.Body)
	assert.Equal(t, "Order processed successfully", res.Body["message"])
	order := obj(t, res.Body["order"])
	assert.Equal(t, json.Number("100"), order["total"])
	assert.Equal(t, "completed", order["status"])
	assert.Equal(t, "ana@example.com", order["customerEmail"])
	assert.NotEmpty(t, order["transactionId"])
	orderID := order["id"].(string)

	cart := h.do(http.MethodGet, "/api/cart", sid, nil)
	assert.Equal(t, true, cart.Body["isEmpty"])

	p := h.do(http.MethodGet, "/api/products/"+mouse, "", nil)
	assert.Equal(t, json.Number("3"), obj(t, p.Body["product"])["stock"])
	p = h.do(http.MethodGet, "/api/products/"+keyboard, "", nil)
	assert.Equal(t, json.Number("1"), obj(t, p.Body["product"])["stock"])

	list := h.do(http.MethodGet, "/api/orders", "", nil)
	require.Equal(t, http.StatusOK, list.Code)
	assert.Equal(t, json.Number("1"), list.Body["count"])

	got := h.do(http.MethodGet, "/api/orders/"+orderID, "", nil)
	require.Equal(t, http.StatusOK, got.Code)
	full := obj(t, got.Body["order"])
	assert.Equal(t, sid, full["sessionId"])
	assert.Equal(t, "paypal", obj(t, full["payment"])["method"])
	assert.Len(t, full["items"], 2)

	missing := h.do(http.MethodGet, "/api/orders/unknown", "", nil)
	assert.Equal(t, http.StatusNotFound, missing.Code)

	t.Run("stats reflect the order", func(t *testing.T) {
		res := h.do(http.MethodGet, "/api/stats", "", nil)
		require.Equal(t, http.StatusOK, res.Code)
		stats := obj(t, res.Body["stats"])
		assert.Equal(t, json.Number("2"), stats["totalProducts"])
		assert.Equal(t, json.Number("1"), stats["totalOrders"])
		assert.Equal(t, "100.00", stats["totalRevenue"])
		assert.Equal(t, json.Number("2"), stats["lowStockProducts"])
		assert.Equal(t, json.Number("1"), obj(t, stats["salesByPaymentMethod"])["paypal"])
		assert.Equal(t, "Mouse", obj(t, stats["topProduct"])["name"])
	})

	t.Run("stats by date", func(t *testing.T) {
		res := h.do(http.MethodGet, "/api/stats/date?startDate=2000-01-01", "", nil)
		require.Equal(t, http.StatusOK, res.Code)
		stats := obj(t, res.Body["stats"])
		assert.Equal(t, json.Number("1"), stats["totalOrders"])
		assert.Nil(t, obj(t, stats["period"])["endDate"])

		res = h.do(http.MethodGet, "/api/stats/date?endDate=yesterday", "", nil)
		assert.Equal(t, http.StatusBadRequest, res.Code)
	})
}

func TestCheckoutInsufficientStock(t *testing.T) {
	h := newHarness(t, payment.ModeAlways, httpapi.Options{})
	id := h.createProduct("Lamp", "10", 2)

	h.do(http.MethodPost, "/api/cart", "a", map[string]any{"productId": id, "quantity": 2})
	h.do(http.MethodPost, "/api/cart", "b", map[string]any{"productId": id, "quantity": 1})

	customer := map[string]any{"customerInfo": map[string]any{"name": "A", "email": "a@example.com"}}
	require.Equal(t, http.StatusOK, h.do(http.MethodPost, "/api/checkout", "a", customer).Code)

	res := h.do(http.MethodPost, "/api/checkout", "b", customer)
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, "Insufficient stock for Lamp", res.Body["error"])
	assert.Equal(t, json.Number("0"), res.Body["available"])
	assert.Equal(t, json.Number("1"), res.Body["requested"])

	orders := h.do(http.MethodGet, "/api/orders", "", nil)
	assert.Equal(t, json.Number("1"), orders.Body["count"])
}

func TestCheckoutPaymentDeclined(t *testing.T) {
	h := newHarness(t, payment.ModeNever, httpapi.Options{})
	id := h.createProduct("Lamp", "10", 2)
	h.do(http.MethodPost, "/api/cart", "s", map[string]any{"productId": id, "quantity": 1})

	res := h.do(http.MethodPost, "/api/checkout", "s", map[string]any{
		"customerInfo": map[string]any{"name": "A", "email": "a@example.com"},
	})
	assert.Equal(t, http.StatusPaymentRequired, res.Code)
	assert.Equal(t, "Payment processing failed", res.Body["error"])
	details := obj(t, res.Body["details"])
	assert.Equal(t, false, details["success"])
	assert.Nil(t, details["transactionId"])

	cart := h.do(http.MethodGet, "/api/cart", "s", nil)
	assert.Equal(t, false, cart.Body["isEmpty"])
	p := h.do(http.MethodGet, "/api/products/"+id, "", nil)
	assert.Equal(t, json.Number("2"), obj(t, p.Body["product"])["stock"])
}

func TestNotFound(t *testing.T) {
	h := newHarness(t, payment.ModeAlways, httpapi.Options{})

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/nope"},
		{http.MethodPatch, "/api/cart"},
	} {
		res := h.do(tc.method, tc.path, "", nil)
		assert.Equal(t, http.StatusNotFound, res.Code, tc.path)
		assert.Equal(t, "Endpoint not found", res.Body["error"])
		assert.Equal(t, tc.path, res.Body["path"])
		assert.Equal(t, tc.method, res.Body["method"])
		assert.NotEmpty(t, res.Body["suggestions"])
		assert.Contains(t, res.Body, "availableEndpoints")
	}
}

func TestStaticFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>shop</h1>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0o644))
	h := newHarness(t, payment.ModeAlways, httpapi.Options{StaticDir: dir})

	req := httptest.NewRequest(http.MethodGet, "/app.js", nil)
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "console.log(1)", rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept", "text/html")
	rec = httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<h1>shop</h1>")

	res := h.do(http.MethodGet, "/", "", nil)
	assert.Equal(t, httpapi.Version, res.Body["version"])
}

func TestSystemEndpoints(t *testing.T) {
	h := newHarness(t, payment.ModeAlways, httpapi.Options{Env: "test"})

	res := h.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "OK", res.Body["status"])
	assert.Equal(t, "test", res.Body["environment"])
	assert.Contains(t, obj(t, res.Body["memory"]), "used")

	res = h.do(http.MethodGet, "/api", "", nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, obj(t, res.Body["endpoints"]), "cart")

	h.do(http.MethodGet, "/api/products", "", nil)
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `shop_http_requests_total{method="GET",route="/api/products`)
}
