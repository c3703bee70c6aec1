package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	catalogapp "github.com/dwikikusuma/shopdemo/internal/catalog/app"
	"github.com/dwikikusuma/shopdemo/internal/catalog/infra/seed"
	"github.com/dwikikusuma/shopdemo/internal/storage"
	"github.com/dwikikusuma/shopdemo/pkg/config"
	"github.com/dwikikusuma/shopdemo/pkg/logger"
)

func newSeedCommand() *cobra.Command {
	var (
		file  string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load catalog products from a YAML file into the configured store",
		Example: `  shop seed --file configs/seed-catalog.yaml
  STORE_DRIVER=sqlite shop seed --file configs/seed-catalog.yaml --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			log := logger.New(logger.Options{Service: "shop-seed", Env: cfg.AppEnv, Level: cfg.LogLevel})

			repos, err := storage.Open(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer repos.Close()

			n, err := seedCatalog(cmd.Context(), catalogapp.NewService(repos.Products), file, force, log)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d products into %s store\n", n, repos.Driver)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "configs/seed-catalog.yaml", "path to the YAML seed file")
	cmd.Flags().BoolVar(&force, "force", false, "seed even when the catalog already has products")

	return cmd
}

// seedCatalog loads path into the catalog. A non-empty catalog is left alone
// unless force is set.
func seedCatalog(ctx context.Context, catalog *catalogapp.Service, path string, force bool, log *slog.Logger) (int, error) {
	if !force {
		existing, err := catalog.ListProducts(ctx)
		if err != nil {
			return 0, fmt.Errorf("list products: %w", err)
		}
		if len(existing) > 0 {
			log.Info("catalog not empty, skipping seed", slog.Int("products", len(existing)))
			return 0, nil
		}
	}

	products, err := seed.LoadFile(path)
	if err != nil {
		return 0, fmt.Errorf("load seed %s: %w", path, err)
	}

	created, err := catalog.Seed(ctx, products)
	if err != nil {
		return len(created), err
	}
	log.Info("catalog seeded", slog.String("file", path), slog.Int("products", len(created)))
	return len(created), nil
}
