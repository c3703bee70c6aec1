// Package httpapi is the HTTP/JSON boundary of the shop.
package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	cartapp "github.com/dwikikusuma/shopdemo/internal/cart/app"
	catalogapp "github.com/dwikikusuma/shopdemo/internal/catalog/app"
	checkoutapp "github.com/dwikikusuma/shopdemo/internal/checkout/app"
	orderapp "github.com/dwikikusuma/shopdemo/internal/order/app"
	statsapp "github.com/dwikikusuma/shopdemo/internal/stats/app"
	"github.com/dwikikusuma/shopdemo/pkg/metrics"
)

const (
	ServiceName = "Ecommerce API"
	Version     = "1.0.0"
)

type Services struct {
	Catalog  *catalogapp.Service
	Cart     *cartapp.Service
	Checkout *checkoutapp.Service
	Orders   *orderapp.Service
	Stats    *statsapp.Service
}

type Options struct {
	Env            string
	Production     bool
	CORSOrigins    []string
	RateLimitRPS   int
	RateLimitBurst int
	StaticDir      string
	StartedAt      time.Time
}

type API struct {
	log     *slog.Logger
	svc     Services
	opts    Options
	limiter *RateLimiter
}

func New(log *slog.Logger, svc Services, opts Options) *API {
	if opts.StartedAt.IsZero() {
		opts.StartedAt = time.Now()
	}
	a := &API{log: log, svc: svc, opts: opts}
	if opts.RateLimitRPS > 0 {
		a.limiter = NewRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst)
	}
	return a
}

// Limiter is nil when rate limiting is disabled.
func (a *API) Limiter() *RateLimiter { return a.limiter }

func (a *API) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(Session)
	r.Use(RequestLogger(a.log))
	r.Use(metrics.InstrumentHandler)
	r.Use(a.Recoverer)
	r.Use(CORS(a.opts.CORSOrigins))
	if a.limiter != nil {
		r.Use(a.limiter.Handler)
	}

	r.NotFound(a.notFound)
	r.MethodNotAllowed(a.notFound)

	r.Get("/", a.root)
	r.Get("/health", a.health)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/", a.apiDocs)

		r.Route("/products", func(r chi.Router) {
			r.Post("/", a.createProduct)
			r.Get("/", a.listProducts)
			r.Get("/{id}", a.getProduct)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", a.getCart)
			r.Post("/", a.addToCart)
			r.Delete("/", a.clearCart)
			r.Put("/{productId}", a.updateCartItem)
			r.Delete("/{productId}", a.removeFromCart)
		})

		r.Post("/checkout", a.checkout)
		r.Get("/orders", a.listOrders)
		r.Get("/orders/{orderId}", a.getOrder)

		r.Get("/stats", a.stats)
		r.Get("/stats/date", a.statsByDate)
	})

	return r
}
