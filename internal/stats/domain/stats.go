package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	orderdomain "github.com/dwikikusuma/shopdemo/internal/order/domain"
	"github.com/dwikikusuma/shopdemo/pkg/money"
)

const (
	LowStockThreshold  = 5
	RecentOrdersLimit  = 10
	UnknownMethod      = "unknown"
	DeletedProductName = "Deleted product"
	StatusOperational  = "operational"
)

// Revenue is rendered with exactly two decimals, as a JSON string.
type Revenue decimal.Decimal

func (r Revenue) Decimal() decimal.Decimal { return decimal.Decimal(r) }

func (r Revenue) MarshalJSON() ([]byte, error) {
	return json.Marshal(money.Fixed(decimal.Decimal(r)))
}

type TopProduct struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	QuantitySold int    `json:"quantitySold"`
}

type Snapshot struct {
	TotalProducts        int                   `json:"totalProducts"`
	TotalOrders          int                   `json:"totalOrders"`
	TotalRevenue         Revenue               `json:"totalRevenue"`
	LowStockProducts     int                   `json:"lowStockProducts"`
	OutOfStockProducts   int                   `json:"outOfStockProducts"`
	ProductsByCategory   map[string]int        `json:"productsByCategory"`
	SalesByPaymentMethod map[string]int        `json:"salesByPaymentMethod"`
	TopProduct           *TopProduct           `json:"topProduct"`
	RecentOrders         []orderdomain.Summary `json:"recentOrders"`
	ActiveCarts          int                   `json:"activeCarts"`
	LastUpdated          time.Time             `json:"lastUpdated"`
	SystemStatus         string                `json:"systemStatus"`
}

type Period struct {
	StartDate *time.Time `json:"startDate"`
	EndDate   *time.Time `json:"endDate"`
}

type RangeStats struct {
	Period       Period  `json:"period"`
	TotalOrders  int     `json:"totalOrders"`
	TotalRevenue Revenue `json:"totalRevenue"`
}
