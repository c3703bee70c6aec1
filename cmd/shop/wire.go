package main

import (
	cartapp "github.com/dwikikusuma/shopdemo/internal/cart/app"
	cartadapter "github.com/dwikikusuma/shopdemo/internal/cart/infra/adapter"
	catalogapp "github.com/dwikikusuma/shopdemo/internal/catalog/app"
	checkoutapp "github.com/dwikikusuma/shopdemo/internal/checkout/app"
	checkoutadapter "github.com/dwikikusuma/shopdemo/internal/checkout/infra/adapter"
	"github.com/dwikikusuma/shopdemo/internal/checkout/infra/payment"
	"github.com/dwikikusuma/shopdemo/internal/httpapi"
	orderapp "github.com/dwikikusuma/shopdemo/internal/order/app"
	statsapp "github.com/dwikikusuma/shopdemo/internal/stats/app"
	"github.com/dwikikusuma/shopdemo/internal/storage"
	"github.com/dwikikusuma/shopdemo/pkg/config"
	"github.com/dwikikusuma/shopdemo/pkg/keylock"
)

func buildServices(cfg config.Config, repos storage.Repos) httpapi.Services {
	var locks keylock.Locker = keylock.Noop{}
	if cfg.StrictLocking {
		locks = keylock.New()
	}

	// Catalog
	catalogSvc := catalogapp.NewService(repos.Products)

	// Cart
	cartSvc := cartapp.NewService(repos.Carts, cartadapter.NewCatalogServiceReader(catalogSvc), cartapp.WithLocker(locks))

	// Orders
	orderSvc := orderapp.NewService(repos.Orders)

	// Checkout (adapters)
	paymentMode := cfg.PaymentMode
	if cfg.IsTest() {
		paymentMode = payment.ModeAlways
	}
	checkoutSvc := checkoutapp.NewService(
		checkoutadapter.NewCartServiceReader(cartSvc),
		checkoutadapter.NewCatalogServiceReader(catalogSvc),
		checkoutadapter.NewOrderServiceWriter(orderSvc),
		payment.NewSimulator(paymentMode, cfg.PaymentSuccessRate),
		cfg.CheckoutConcurrency,
	).WithLocker(locks)

	return httpapi.Services{
		Catalog:  catalogSvc,
		Cart:     cartSvc,
		Checkout: checkoutSvc,
		Orders:   orderSvc,
		Stats:    statsapp.NewService(catalogSvc, orderSvc, cartSvc),
	}
}
