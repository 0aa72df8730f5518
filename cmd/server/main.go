package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ui-kit-catalog/internal/bundle"
	"ui-kit-catalog/internal/catalog"
	"ui-kit-catalog/internal/config"
	"ui-kit-catalog/internal/logging"
	"ui-kit-catalog/internal/metrics"
	"ui-kit-catalog/internal/session"
	"ui-kit-catalog/internal/storage"
	"ui-kit-catalog/internal/templating"
	"ui-kit-catalog/web"
)

// sweepInterval is how often idle pages are dropped.
const sweepInterval = time.Minute

// application holds the application-wide dependencies.
type application struct {
	logger    *slog.Logger
	cfg       *config.Config
	loader    *catalog.Loader
	pages     *session.Manager
	requester *bundle.Requester
	engine    *templating.Engine
	metrics   *metrics.Metrics
	registry  *prometheus.Registry
}

// newApplication wires the catalog loader, page manager and bundle
// requester against cfg.Service.
func newApplication(cfg *config.Config, logger *slog.Logger) (*application, error) {
	engine, err := templating.NewEngine(web.Templates())
	if err != nil {
		return nil, fmt.Errorf("failed to create template engine: %w", err)
	}

	app := &application{
		logger: logger,
		cfg:    cfg,
		engine: engine,
	}

	if cfg.Metrics.Enabled {
		app.registry = prometheus.NewRegistry()
		app.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		app.metrics = metrics.New(metrics.WithRegistry(app.registry))
	}

	client := &http.Client{Timeout: cfg.Service.Timeout}

	loaderOpts := []catalog.Option{
		catalog.WithLogger(logger),
		catalog.WithMetrics(app.metrics),
	}
	if cfg.Catalog.FallbackFile != "" {
		file, err := storage.NewCatalogFile(cfg.Catalog.FallbackFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open fallback catalog: %w", err)
		}
		fallback, err := file.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("failed to read fallback catalog: %w", err)
		}
		logger.Info("Using fallback catalog file", "path", file.Location(), "templates", len(fallback))
		loaderOpts = append(loaderOpts, catalog.WithFallback(fallback))
	}

	app.loader = catalog.NewLoader(catalog.NewHTTPSource(cfg.Service.BaseURL, client), loaderOpts...)
	app.pages = session.NewManager(cfg.Server.PageTTL, logger, app.metrics)
	app.requester = bundle.NewRequester(bundle.NewHTTPClient(cfg.Service.BaseURL, client), logger, app.metrics)
	return app, nil
}

func newRootCmd() *cobra.Command {
	v := config.New()
	var configFile string

	cmd := &cobra.Command{
		Use:           "server",
		Short:         "Serve the UI kit template catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v, configFile)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configFile, "config", "", "config file (yaml, toml or json)")
	flags.String("port", "8080", "port to listen on")
	flags.String("base-url", config.DefaultBaseURL, "template service base URL")
	flags.Bool("csrf", true, "require CSRF tokens on form posts")
	flags.String("fallback-file", "", "catalog file used when the service returns nothing usable")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "text", "log format (text, json)")
	bindFlags(v, cmd, map[string]string{
		"server.port":           "port",
		"service.base_url":      "base-url",
		"server.csrf":           "csrf",
		"catalog.fallback_file": "fallback-file",
		"log.level":             "log-level",
		"log.format":            "log-format",
	})
	return cmd
}

func bindFlags(v *viper.Viper, cmd *cobra.Command, keys map[string]string) {
	for key, flag := range keys {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			panic(err) // flag names are fixed above
		}
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stdout)
	if err != nil {
		return err
	}

	app, err := newApplication(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go app.pages.Run(ctx, sweepInterval)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           app.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "address", fmt.Sprintf("http://localhost%s", srv.Addr), "service", cfg.Service.BaseURL)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("Server exited", "error", err)
		os.Exit(1)
	}
}
