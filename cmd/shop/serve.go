package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/dwikikusuma/shopdemo/internal/httpapi"
	"github.com/dwikikusuma/shopdemo/internal/storage"
	"github.com/dwikikusuma/shopdemo/pkg/config"
	"github.com/dwikikusuma/shopdemo/pkg/healthcheck"
	"github.com/dwikikusuma/shopdemo/pkg/logger"
	"github.com/dwikikusuma/shopdemo/pkg/shutdown"
)

const (
	shutdownTimeout = 10 * time.Second
	limiterMaxIdle  = 10 * time.Minute
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), config.Load())
		},
	}
}

func serve(parent context.Context, cfg config.Config) error {
	startedAt := time.Now()
	log := logger.New(logger.Options{
		Service:   "shop",
		Env:       cfg.AppEnv,
		Level:     cfg.LogLevel,
		AddSource: true,
	})

	ctx, cancel := shutdown.WithSignals(parent)
	defer cancel()

	repos, err := storage.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := repos.Close(); err != nil {
			log.Error("store close error", slog.Any("err", err))
		}
	}()

	services := buildServices(cfg, repos)

	if cfg.SeedFile != "" {
		if _, err := seedCatalog(ctx, services.Catalog, cfg.SeedFile, false, log); err != nil {
			return err
		}
	}

	api := httpapi.New(log, services, httpapi.Options{
		Env:            cfg.AppEnv,
		Production:     cfg.IsProduction(),
		CORSOrigins:    cfg.CORSOrigins,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		StaticDir:      cfg.StaticDir,
		StartedAt:      startedAt,
	})

	sched := cron.New()
	if limiter := api.Limiter(); limiter != nil {
		_, err := sched.AddFunc("@every 1m", func() {
			if n := limiter.Cleanup(limiterMaxIdle); n > 0 {
				log.Debug("rate limiter buckets evicted", slog.Int("removed", n), slog.Int("remaining", limiter.Len()))
			}
		})
		if err != nil {
			return fmt.Errorf("schedule limiter cleanup: %w", err)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	server := &http.Server{
		Addr:              addr,
		Handler:           api.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("http server starting",
			slog.String("addr", addr),
			slog.String("store", repos.Driver),
			slog.Bool("strict_locking", cfg.StrictLocking),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", slog.Any("err", err))
			cancel()
		}
	}()

	var health *healthcheck.Server
	if cfg.GRPCPort > 0 {
		health, err = healthcheck.Listen(fmt.Sprintf(":%d", cfg.GRPCPort), log, "shop.v1.Shop")
		if err != nil {
			log.Error("grpc health listen failed", slog.Any("err", err))
			cancel()
		} else {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := health.Serve(); err != nil {
					log.Error("grpc health serve error", slog.Any("err", err))
					cancel()
				}
			}()
		}
	}

	sched.Start()

	<-ctx.Done()
	log.Info("shutdown requested", slog.Any("cause", context.Cause(ctx)))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	<-sched.Stop().Done()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown error", slog.Any("err", err))
	}
	if health != nil {
		health.Stop(shutdownCtx)
	}

	wg.Wait()
	log.Info("bye")
	return nil
}
