// Package storage selects and opens the configured store backend.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	cartapp "github.com/dwikikusuma/shopdemo/internal/cart/app"
	catalogapp "github.com/dwikikusuma/shopdemo/internal/catalog/app"
	orderapp "github.com/dwikikusuma/shopdemo/internal/order/app"
	"github.com/dwikikusuma/shopdemo/internal/storage/jsonfile"
	"github.com/dwikikusuma/shopdemo/internal/storage/memory"
	"github.com/dwikikusuma/shopdemo/internal/storage/redisstore"
	"github.com/dwikikusuma/shopdemo/internal/storage/sqlstore"
	"github.com/dwikikusuma/shopdemo/pkg/config"
)

const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

var (
	_ catalogapp.ProductRepo = (*memory.ProductRepo)(nil)
	_ cartapp.CartRepo       = (*memory.CartRepo)(nil)
	_ orderapp.OrderRepo     = (*memory.OrderRepo)(nil)

	_ catalogapp.ProductRepo = (*jsonfile.ProductRepo)(nil)
	_ cartapp.CartRepo       = (*jsonfile.CartRepo)(nil)
	_ orderapp.OrderRepo     = (*jsonfile.OrderRepo)(nil)

	_ catalogapp.ProductRepo = (*sqlstore.ProductRepo)(nil)
	_ cartapp.CartRepo       = (*sqlstore.CartRepo)(nil)
	_ orderapp.OrderRepo     = (*sqlstore.OrderRepo)(nil)

	_ catalogapp.ProductRepo = (*redisstore.ProductRepo)(nil)
	_ cartapp.CartRepo       = (*redisstore.CartRepo)(nil)
	_ orderapp.OrderRepo     = (*redisstore.OrderRepo)(nil)
)

// Repos is one backend's view of the three stores. Close releases the
// backend's connections.
type Repos struct {
	Driver   string
	Products catalogapp.ProductRepo
	Carts    cartapp.CartRepo
	Orders   orderapp.OrderRepo
	Close    func() error
}

func Open(ctx context.Context, cfg config.Config, log *slog.Logger) (Repos, error) {
	switch cfg.StoreDriver {
	case DriverMemory, "":
		s := memory.New()
		log.Info("store opened", slog.String("driver", DriverMemory))
		return Repos{Driver: DriverMemory, Products: s.Products(), Carts: s.Carts(), Orders: s.Orders(), Close: s.Close}, nil

	case DriverFile:
		s, err := jsonfile.Open(cfg.DataFile)
		if err != nil {
			return Repos{}, fmt.Errorf("open file store: %w", err)
		}
		log.Info("store opened", slog.String("driver", DriverFile), slog.String("path", s.Path()))
		return Repos{Driver: DriverFile, Products: s.Products(), Carts: s.Carts(), Orders: s.Orders(), Close: s.Close}, nil

	case DriverSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
			return Repos{}, fmt.Errorf("create sqlite dir: %w", err)
		}
		s, err := sqlstore.Open(ctx, sqlstore.SQLite, cfg.SQLitePath)
		if err != nil {
			return Repos{}, fmt.Errorf("open sqlite store: %w", err)
		}
		log.Info("store opened", slog.String("driver", DriverSQLite), slog.String("path", cfg.SQLitePath))
		return Repos{Driver: DriverSQLite, Products: s.Products(), Carts: s.Carts(), Orders: s.Orders(), Close: s.Close}, nil

	case DriverPostgres:
		s, err := sqlstore.Open(ctx, sqlstore.Postgres, cfg.DatabaseURL)
		if err != nil {
			return Repos{}, fmt.Errorf("open postgres store: %w", err)
		}
		log.Info("store opened", slog.String("driver", DriverPostgres))
		return Repos{Driver: DriverPostgres, Products: s.Products(), Carts: s.Carts(), Orders: s.Orders(), Close: s.Close}, nil

	case DriverRedis:
		s, err := redisstore.Open(ctx, cfg.RedisURL, redisstore.DefaultPrefix)
		if err != nil {
			return Repos{}, fmt.Errorf("open redis store: %w", err)
		}
		log.Info("store opened", slog.String("driver", DriverRedis))
		return Repos{Driver: DriverRedis, Products: s.Products(), Carts: s.Carts(), Orders: s.Orders(), Close: s.Close}, nil
	}

	return Repos{}, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
}
