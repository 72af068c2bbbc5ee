// Package main implements catalogctl, a terminal client for the catalog API
// that drives the same view operations as the web front.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/WessleyAI/wessley-catalog/engine/catalog"
	"github.com/WessleyAI/wessley-catalog/pkg/catalogapi"
	"github.com/WessleyAI/wessley-catalog/pkg/config"
	"github.com/WessleyAI/wessley-catalog/pkg/prefs"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	a := &app{v: config.New()}
	if err := execute(a, newRootCmd(a)); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// execute runs root and releases the preference store afterwards, including
// when the subcommand failed.
func execute(a *app, root *cobra.Command) error {
	defer a.shutdown()
	return root.Execute()
}

// app is the state shared by every subcommand once config is loaded.
type app struct {
	v     *viper.Viper
	file  string
	ctl   *catalog.Controller
	close func(context.Context)
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "catalogctl",
		Short: "Browse the vehicle catalog from the terminal",
		Long: `Browse the vehicle catalog from the terminal.

The preferred manufacturer written by "details" and read by "recommend" only
outlives a single invocation with a durable backend: pass --prefs nats or
--prefs neo4j (or set prefs.backend). The default memory backend forgets it
when the process exits.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd.Context(), cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().StringVarP(&a.file, "config", "c", "", "config file (default ./"+config.DefaultFile+")")
	root.PersistentFlags().String("api", "", "catalog API base URL")
	root.PersistentFlags().String("prefs", "", "preference backend: memory, nats or neo4j")
	a.v.BindPFlag("api.base_url", root.PersistentFlags().Lookup("api"))
	a.v.BindPFlag("prefs.backend", root.PersistentFlags().Lookup("prefs"))

	root.AddCommand(
		newFiltersCmd(a),
		newModelsCmd(a),
		newDetailsCmd(a),
		newCompareCmd(a),
		newRecommendCmd(a),
	)
	return root
}

func (a *app) open(ctx context.Context, logOut io.Writer) error {
	cfg, err := config.Load(a.v, a.file)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: cfg.Log.SlogLevel()}))

	store, closeStore, err := prefs.Open(ctx, cfg)
	if err != nil {
		return err
	}
	api := catalogapi.New(cfg.API.BaseURL, catalogapi.WithRateLimit(cfg.API.RateLimit, cfg.API.Burst))
	a.ctl = catalog.New(api, store, catalog.Options{Logger: logger})
	a.close = closeStore
	return nil
}

// shutdown releases the preference store opened by open, if any.
func (a *app) shutdown() {
	if a.close == nil {
		return
	}
	a.close(context.Background())
	a.close = nil
}
