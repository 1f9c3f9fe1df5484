package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/okian/gradecard/internal/adapters/assets"
	"github.com/okian/gradecard/internal/adapters/http/api"
	"github.com/okian/gradecard/internal/adapters/http/site"
	"github.com/okian/gradecard/internal/adapters/http/swagger"
	"github.com/okian/gradecard/internal/adapters/preference"
	app "github.com/okian/gradecard/internal/app"
	"github.com/okian/gradecard/internal/config"
	"github.com/okian/gradecard/internal/domain/presenter"
	"github.com/okian/gradecard/pkg/logger"
	"github.com/okian/gradecard/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	if err := run(); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

func run() error {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// .env is optional; real environment variables win over it.
	envErr := godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.LogFormat != "text" {
		if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}
	}
	log := logger.Get()
	if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		log.Warn(ctx, "failed to load .env file", logger.Error(envErr))
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc := newService(cfg, log)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}
	defer svc.Stop()

	if err := svc.LoadError(); err != nil {
		log.Error(ctx, "serving without data; every lookup will report the load failure", logger.Error(err))
	}

	go startSystemMetricsUpdater(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newRouter(cfg, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for shutdown signal or a listener failure
	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
	}
	log.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
	return nil
}

// newService maps configuration onto service options.
func newService(cfg *config.Config, log logger.Logger) *app.Service {
	locale, _ := presenter.ParseLocale(cfg.DefaultLocale)
	return app.New(
		app.WithLogger(log),
		app.WithDataset(cfg.Dataset),
		app.WithDatasetTimeout(time.Duration(cfg.DatasetTimeoutMS)*time.Millisecond),
		app.WithIDLength(cfg.IDLength),
		app.WithCohortSize(cfg.CohortSize),
		app.WithLookupDelay(time.Duration(cfg.LookupDelayMS)*time.Millisecond),
		app.WithBackgrounds(cfg.Backgrounds),
		app.WithAssetsDir(cfg.AssetsDir),
		app.WithPreferenceDriver(preference.Driver(cfg.PrefDriver), cfg.PrefDSN),
		app.WithDefaultLocale(locale),
	)
}

// newRouter mounts the API, docs and page. The page is registered last so
// its catch-all does not shadow the other routes.
func newRouter(cfg *config.Config, svc *app.Service) http.Handler {
	r := chi.NewRouter()
	r.Use(api.RequestID, middleware.RealIP, middleware.Recoverer)

	api.NewServer(svc, svc,
		api.WithCORSOrigins(cfg.CORSOrigins),
		api.WithAssets(assets.NewDirProber(cfg.AssetsDir).FS()),
	).Register(r)
	swagger.Register(r)
	site.Register(r)
	return r
}

// startSystemMetricsUpdater periodically records process metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	var avgPauseMs float64
	if m.NumGC > 0 {
		avgPauseMs = float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
	}
	metrics.UpdateSystem(m.Alloc, runtime.NumGoroutine(), avgPauseMs)
}
