package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"smartraise/internal/domain/auth"
	"smartraise/internal/domain/employee"
	"smartraise/internal/domain/importer"
	"smartraise/internal/domain/performance"
	"smartraise/internal/domain/reports"
	"smartraise/internal/platform/cache"
	"smartraise/internal/platform/config"
	"smartraise/internal/platform/db"
	"smartraise/internal/platform/jobs"
	"smartraise/internal/platform/memstore"
	"smartraise/internal/platform/metrics"
)

const shutdownTimeout = 15 * time.Second

type App struct {
	Config config.Config
	Router http.Handler

	closers []func()
}

// Close releases the storage pool and cache client.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

type stores struct {
	employees   employee.StoreAPI
	performance performance.StoreAPI
	reports     reports.StoreAPI
	users       auth.StoreAPI
	ping        Pinger
}

// Build connects storage and the optional cache, seeds the admin account and
// assembles the router.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	app := &App{Config: cfg}

	st, err := app.openStores(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}
	checks := map[string]Pinger{"storage": st.ping}

	var summaries performance.SummaryCache
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		summaryCache := cache.NewSummaryCache(client, cfg.SummaryCacheTTL)
		app.closers = append(app.closers, func() { _ = summaryCache.Close() })
		summaries = summaryCache
		checks["redis"] = summaryCache
	}

	collector := metrics.New()

	employees := employee.NewService(st.employees, summaries)
	perf := performance.NewService(st.performance, employees, summaries)
	authSvc := auth.NewService(st.users, cfg.JWTSecret, cfg.TokenTTL)
	if err := authSvc.EnsureAdmin(ctx, cfg.SeedAdminEmail, cfg.SeedAdminPassword); err != nil {
		app.Close()
		return nil, fmt.Errorf("seed admin: %w", err)
	}

	app.Router = NewRouter(cfg, Services{
		Auth:        authSvc,
		Employees:   employees,
		Performance: perf,
		Reports:     reports.NewService(st.reports, perf),
		Importer:    importer.NewReconciler(employees, perf).WithRecorder(collector),
	}, collector, checks)
	return app, nil
}

func (a *App) openStores(ctx context.Context) (stores, error) {
	if a.Config.StorageDriver == config.StorageMemory {
		slog.Warn("using in-memory storage; data is lost on restart")
		mem := memstore.New()
		return stores{employees: mem, performance: mem, reports: mem, users: mem, ping: mem}, nil
	}

	pool, err := db.Connect(ctx, a.Config.DatabaseURL, a.Config.DBConnectAttempts)
	if err != nil {
		return stores{}, fmt.Errorf("db connect: %w", err)
	}
	a.closers = append(a.closers, pool.Close)
	if err := db.Migrate(ctx, pool); err != nil {
		return stores{}, fmt.Errorf("migrate: %w", err)
	}
	return stores{
		employees:   employee.NewStore(pool),
		performance: performance.NewStore(pool),
		reports:     reports.NewStore(pool),
		users:       auth.NewStore(pool),
		ping:        pool,
	}, nil
}

// Run loads configuration, serves HTTP and shuts down on SIGINT or SIGTERM.
func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)})))
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := Build(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	jobs.New(cfg.UploadDir, cfg.UploadSweepEvery).Start(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("smartraise server listening", "addr", cfg.Addr, "storage", cfg.StorageDriver)
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

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func parseLevel(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
