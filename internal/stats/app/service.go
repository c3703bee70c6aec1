package app

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	catalogdomain "github.com/dwikikusuma/shopdemo/internal/catalog/domain"
	orderdomain "github.com/dwikikusuma/shopdemo/internal/order/domain"
	"github.com/dwikikusuma/shopdemo/internal/stats/domain"
)

type ProductLister interface {
	ListProducts(ctx context.Context) ([]catalogdomain.Product, error)
}

type OrderLister interface {
	ListOrders(ctx context.Context) ([]orderdomain.Order, error)
}

type CartCounter interface {
	CountCarts(ctx context.Context) (int, error)
}

// Service aggregates over the stores on every call. Nothing is cached.
type Service struct {
	products ProductLister
	orders   OrderLister
	carts    CartCounter
	now      func() time.Time
}

func NewService(products ProductLister, orders OrderLister, carts CartCounter) *Service {
	return &Service{products: products, orders: orders, carts: carts, now: time.Now}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	products, err := s.products.ListProducts(ctx)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("list products: %w", err)
	}
	orders, err := s.orders.ListOrders(ctx)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("list orders: %w", err)
	}
	carts, err := s.carts.CountCarts(ctx)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("count carts: %w", err)
	}

	out := domain.Snapshot{
		TotalProducts:        len(products),
		TotalOrders:          len(orders),
		TotalRevenue:         domain.Revenue(revenue(orders)),
		ProductsByCategory:   map[string]int{},
		SalesByPaymentMethod: map[string]int{},
		ActiveCarts:          carts,
		LastUpdated:          s.now().UTC(),
		SystemStatus:         domain.StatusOperational,
	}

	names := make(map[string]string, len(products))
	for _, p := range products {
		names[p.ID] = p.Name
		if p.Stock < domain.LowStockThreshold {
			out.LowStockProducts++
		}
		if p.Stock == 0 {
			out.OutOfStockProducts++
		}
		category := p.Category
		if category == "" {
			category = catalogdomain.DefaultCategory
		}
		out.ProductsByCategory[category]++
	}

	for _, o := range orders {
		method := o.Payment.Method
		if method == "" {
			method = domain.UnknownMethod
		}
		out.SalesByPaymentMethod[method]++
	}

	newest := newestFirst(orders)
	out.TopProduct = topProduct(newest, names)
	out.RecentOrders = recent(newest, domain.RecentOrdersLimit)
	return out, nil
}

// ByDateRange counts orders created within [start, end]. A nil bound is open.
func (s *Service) ByDateRange(ctx context.Context, start, end *time.Time) (domain.RangeStats, error) {
	orders, err := s.orders.ListOrders(ctx)
	if err != nil {
		return domain.RangeStats{}, fmt.Errorf("list orders: %w", err)
	}

	var picked []orderdomain.Order
	for _, o := range orders {
		if start != nil && o.CreatedAt.Before(*start) {
			continue
		}
		if end != nil && o.CreatedAt.After(*end) {
			continue
		}
		picked = append(picked, o)
	}

	return domain.RangeStats{
		Period:       domain.Period{StartDate: start, EndDate: end},
		TotalOrders:  len(picked),
		TotalRevenue: domain.Revenue(revenue(picked)),
	}, nil
}

func revenue(orders []orderdomain.Order) decimal.Decimal {
	total := decimal.Zero
	for _, o := range orders {
		total = total.Add(o.Total)
	}
	return total
}

// topProduct sums quantities per product id. Ties go to the product seen
// first while walking the orders, which Snapshot passes newest first.
func topProduct(orders []orderdomain.Order, names map[string]string) *domain.TopProduct {
	sold := map[string]int{}
	var seen []string
	for _, o := range orders {
		for _, it := range o.Items {
			if _, ok := sold[it.ProductID]; !ok {
				seen = append(seen, it.ProductID)
			}
			sold[it.ProductID] += it.Quantity
		}
	}
	if len(seen) == 0 {
		return nil
	}

	best := seen[0]
	for _, id := range seen[1:] {
		if sold[id] > sold[best] {
			best = id
		}
	}

	name, ok := names[best]
	if !ok {
		name = domain.DeletedProductName
	}
	return &domain.TopProduct{ID: best, Name: name, QuantitySold: sold[best]}
}

// newestFirst returns a copy sorted by createdAt descending. Equal times keep
// insertion order.
func newestFirst(orders []orderdomain.Order) []orderdomain.Order {
	sorted := make([]orderdomain.Order, len(orders))
	copy(sorted, orders)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	return sorted
}

// recent expects orders sorted newest first.
func recent(orders []orderdomain.Order, limit int) []orderdomain.Summary {
	if len(orders) > limit {
		orders = orders[:limit]
	}

	out := make([]orderdomain.Summary, 0, len(orders))
	for _, o := range orders {
		out = append(out, o.Summary())
	}
	return out
}
