// Package main implements the catalog web front: it serves the catalog page
// and the htmx fragments that update it, backed by the catalog API.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/WessleyAI/wessley-catalog/engine/catalog"
	"github.com/WessleyAI/wessley-catalog/pkg/catalogapi"
	"github.com/WessleyAI/wessley-catalog/pkg/config"
	"github.com/WessleyAI/wessley-catalog/pkg/metrics"
	"github.com/WessleyAI/wessley-catalog/pkg/prefs"
	"github.com/WessleyAI/wessley-catalog/pkg/resilience"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := config.New()
	var file string
	cmd := &cobra.Command{
		Use:           "catalog-web",
		Short:         "Serve the vehicle catalog page",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v, file)
			if err != nil {
				return err
			}
			logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Log.SlogLevel()}))
			slog.SetDefault(logger)
			if err := run(cmd.Context(), cfg, logger); err != nil {
				logger.Error("server exited with error", "err", err)
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "config", "", "config file (default ./"+config.DefaultFile+")")
	cmd.Flags().String("addr", "", "listen address")
	cmd.Flags().String("api", "", "catalog API base URL")
	v.BindPFlag("web.addr", cmd.Flags().Lookup("addr"))
	v.BindPFlag("api.base_url", cmd.Flags().Lookup("api"))
	return cmd
}

func run(parent context.Context, cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := metrics.New()
	api := catalogapi.New(cfg.API.BaseURL, clientOptions(cfg, reg, logger)...)

	store, closeStore, err := prefs.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore(context.Background())
	logger.Info("preferences backend ready", "backend", cfg.Prefs.Backend)

	sess := newSessions(cfg.Web.SessionTTL, func(id string) *catalog.Controller {
		return catalog.New(api, prefs.Scoped(store, id), catalog.Options{
			Logger:  logger.With("session", id),
			Metrics: reg,
		})
	}, logger)
	go sess.janitor(ctx, cfg.Web.SessionTTL/2)

	srv, err := newServer(api, sess, reg, logger)
	if err != nil {
		return fmt.Errorf("image proxy: %w", err)
	}

	httpSrv := &http.Server{
		Addr:         cfg.Web.Addr,
		Handler:      srv.routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("catalog web starting", "addr", cfg.Web.Addr, "api", api.BaseURL())
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutCtx)
}

func clientOptions(cfg *config.Config, reg *metrics.Registry, logger *slog.Logger) []catalogapi.Option {
	opts := []catalogapi.Option{
		catalogapi.WithRateLimit(cfg.API.RateLimit, cfg.API.Burst),
		catalogapi.WithMetrics(reg),
	}
	if cfg.API.BreakerThreshold > 0 {
		opts = append(opts, catalogapi.WithBreaker(resilience.NewBreaker(resilience.BreakerOpts{
			FailThreshold: cfg.API.BreakerThreshold,
			Timeout:       cfg.API.BreakerTimeout,
			IsFailure:     catalogapi.Trips,
			OnStateChange: func(from, to resilience.State) {
				logger.Warn("catalog api breaker changed state", "from", from.String(), "to", to.String())
			},
		})))
	}
	return opts
}
