package router

import (
	"encoding/json"
	"net/http"

	"github.com/evcrm/charger-crm/internal/auth"
	"github.com/evcrm/charger-crm/internal/config"
	"github.com/evcrm/charger-crm/internal/database"
	"github.com/evcrm/charger-crm/internal/http/handler"
	"github.com/evcrm/charger-crm/internal/http/middleware"
	"github.com/evcrm/charger-crm/internal/metrics"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/evcrm/charger-crm/docs" // registers the swagger docs
)

type Router struct {
	cfg              *config.Config
	logger           *zap.Logger
	db               *gorm.DB
	metrics          *metrics.Metrics
	gatherer         prometheus.Gatherer
	authMiddleware   *auth.Middleware
	rateLimiter      *middleware.RateLimiter
	authHandler      *handler.AuthHandler
	customerHandler  *handler.CustomerHandler
	progressHandler  *handler.ProgressHandler
	proposalHandler  *handler.ProposalHandler
	chargerHandler   *handler.ChargerHandler
	userHandler      *handler.UserHandler
	dashboardHandler *handler.DashboardHandler
}

// NewRouter wires the handlers. db may be nil when snapshots are not kept in a database;
// gatherer may be nil when metrics are disabled.
func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	m *metrics.Metrics,
	gatherer prometheus.Gatherer,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	authHandler *handler.AuthHandler,
	customerHandler *handler.CustomerHandler,
	progressHandler *handler.ProgressHandler,
	proposalHandler *handler.ProposalHandler,
	chargerHandler *handler.ChargerHandler,
	userHandler *handler.UserHandler,
	dashboardHandler *handler.DashboardHandler,
) *Router {
	return &Router{
		cfg:              cfg,
		logger:           logger,
		db:               db,
		metrics:          m,
		gatherer:         gatherer,
		authMiddleware:   authMiddleware,
		rateLimiter:      rateLimiter,
		authHandler:      authHandler,
		customerHandler:  customerHandler,
		progressHandler:  progressHandler,
		proposalHandler:  proposalHandler,
		chargerHandler:   chargerHandler,
		userHandler:      userHandler,
		dashboardHandler: dashboardHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.Metrics(rt.metrics))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.Limit)

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Get("/health/db", rt.databaseHealth)
	r.Get("/health/ready", rt.readiness)

	if rt.cfg.Metrics.Enabled && rt.gatherer != nil {
		r.Handle(rt.cfg.Metrics.Path, promhttp.HandlerFor(rt.gatherer, promhttp.HandlerOpts{}))
	}

	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	r.Route("/api/v1", func(r chi.Router) {
		if timeout := rt.cfg.Server.RequestTimeoutDuration(); timeout > 0 {
			r.Use(chimw.Timeout(timeout))
		}

		// Public: clients pick an acting user from this list
		r.Get("/session/users", rt.authHandler.SessionUsers)

		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.Identify)

			r.Get("/auth/me", rt.authHandler.Me)

			r.Route("/customers", func(r chi.Router) {
				r.Get("/", rt.customerHandler.List)
				r.Post("/", rt.customerHandler.Create)
				r.Get("/{id}", rt.customerHandler.GetByID)
				r.Put("/{id}", rt.customerHandler.Update)
				r.Delete("/{id}", rt.customerHandler.Delete)

				// Lifecycle
				r.Post("/{id}/status", rt.progressHandler.SetStatus)
				r.Get("/{id}/notes", rt.progressHandler.History)
				r.Post("/{id}/notes", rt.progressHandler.AddNote)

				// Consultation
				r.Get("/{id}/proposals", rt.proposalHandler.List)
				r.Post("/{id}/proposals", rt.proposalHandler.Create)
				r.Put("/{id}/proposals/{proposalId}", rt.proposalHandler.Update)
				r.Delete("/{id}/proposals/{proposalId}", rt.proposalHandler.Delete)
				r.Post("/{id}/advice", rt.proposalHandler.Advise)
			})

			r.Get("/progress", rt.progressHandler.Board)
			r.Get("/consultations", rt.customerHandler.Consultations)

			r.Route("/chargers", func(r chi.Router) {
				r.Get("/", rt.chargerHandler.List)
				r.Post("/", rt.chargerHandler.Create)
				r.Get("/{id}", rt.chargerHandler.GetByID)
				r.Put("/{id}", rt.chargerHandler.Update)
				r.Delete("/{id}", rt.chargerHandler.Delete)
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/", rt.userHandler.List)
				r.Post("/", rt.userHandler.Create)
				r.Post("/{id}/toggle-status", rt.userHandler.ToggleStatus)
				r.Delete("/{id}", rt.userHandler.Delete)
			})

			r.Get("/dashboard/metrics", rt.dashboardHandler.GetMetrics)
			r.Get("/dashboard/map", rt.dashboardHandler.GetMapPins)
		})
	})

	return r
}

// databaseHealth reports pool statistics of the snapshot database
func (rt *Router) databaseHealth(w http.ResponseWriter, r *http.Request) {
	if rt.db == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":  "not_configured",
			"service": "database",
		})
		return
	}

	stats, err := database.HealthCheckWithStats(rt.db)
	if err != nil {
		rt.logger.Error("Database health check failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":  "unhealthy",
			"error":   err.Error(),
			"service": "database",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": "database",
		"stats":   stats,
	})
}

// readiness checks every configured dependency
func (rt *Router) readiness(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]interface{})
	allHealthy := true

	if rt.db != nil {
		if err := database.HealthCheck(rt.db); err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			checks["database"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
			allHealthy = false
		} else {
			checks["database"] = map[string]interface{}{"status": "healthy"}
		}
	}

	status, code := "healthy", http.StatusOK
	if !allHealthy {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]interface{}{
		"status": status,
		"checks": checks,
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
