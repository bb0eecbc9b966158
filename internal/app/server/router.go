package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"smartraise/internal/domain/auth"
	"smartraise/internal/domain/employee"
	"smartraise/internal/domain/importer"
	"smartraise/internal/domain/performance"
	"smartraise/internal/domain/reports"
	"smartraise/internal/platform/apperr"
	"smartraise/internal/platform/config"
	"smartraise/internal/platform/metrics"
	authhandler "smartraise/internal/transport/http/handlers/auth"
	employeehandler "smartraise/internal/transport/http/handlers/employees"
	importhandler "smartraise/internal/transport/http/handlers/imports"
	performancehandler "smartraise/internal/transport/http/handlers/performance"
	"smartraise/internal/transport/http/middleware"
	"smartraise/internal/transport/http/shared"
)

// Pinger is a dependency checked by /readyz.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Services struct {
	Auth        *auth.Service
	Employees   *employee.Service
	Performance *performance.Service
	Reports     *reports.Service
	Importer    *importer.Reconciler
}

// NewRouter mounts every route on a chi router. metrics may be nil.
func NewRouter(cfg config.Config, svc Services, collector *metrics.Collector, checks map[string]Pinger) http.Handler {
	var recorder middleware.RequestRecorder
	if collector != nil {
		recorder = collector
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(recorder))
	router.Use(chimw.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORSOrigins))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(svc.Auth))

	live := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
	router.Get("/health", live)
	router.Get("/healthz", live)

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		for name, check := range checks {
			if err := check.Ping(ctx); err != nil {
				http.Error(w, name+" not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if collector != nil && cfg.MetricsEnabled {
		router.Method(http.MethodGet, "/metrics", collector.Handler())
	}

	router.Route("/api", func(r chi.Router) {
		authHandler := authhandler.NewHandler(svc.Auth)
		r.With(
			middleware.RateLimit(cfg.LoginRatePerMinute, time.Minute),
			middleware.RateLimit(cfg.LoginRatePerMinute, time.Minute, middleware.WithKeyFunc(middleware.AuthEmailOrIPKey("email"))),
		).Post("/auth/login", authHandler.HandleLogin)
		r.With(middleware.RequireAuth).Get("/auth/me", authHandler.HandleMe)

		// Template downloads stay public so the sample link works before login.
		importHandler := importhandler.NewHandler(svc.Importer, cfg.UploadDir, cfg.ImportMaxBytes)
		importHandler.RegisterRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			employeeHandler := employeehandler.NewHandler(svc.Employees)
			employeeHandler.RegisterRoutes(r)

			performanceHandler := performancehandler.NewHandler(svc.Performance, svc.Reports)
			performanceHandler.RegisterRoutes(r)
		})
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		shared.Respond(w, r, apperr.NotFound("route not found"))
	})
	return router
}
