package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstrumentHandlerUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(InstrumentHandler)
	r.Get("/api/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/products/{id}", "404"))

	req := httptest.NewRequest(http.MethodGet, "/api/products/abc", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	after := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/products/{id}", "404"))
	assert.Equal(t, before+1, after)
}

func TestDomainCountersAreExposed(t *testing.T) {
	RecordCheckout("success")
	RecordCartMutation("add")
	RecordRevenue(decimal.RequireFromString("10.50"))

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	for _, name := range []string{"shop_checkouts_total", "shop_cart_mutations_total", "shop_order_revenue_total"} {
		assert.True(t, strings.Contains(body, name), "missing %s", name)
	}
}
