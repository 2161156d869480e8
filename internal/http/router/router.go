package router

import (
	"encoding/json"
	"net/http"

	"github.com/fenstra-as/jobflow-api/internal/auth"
	"github.com/fenstra-as/jobflow-api/internal/config"
	"github.com/fenstra-as/jobflow-api/internal/database"
	"github.com/fenstra-as/jobflow-api/internal/erp"
	"github.com/fenstra-as/jobflow-api/internal/http/handler"
	"github.com/fenstra-as/jobflow-api/internal/http/middleware"
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/fenstra-as/jobflow-api/docs" // Import generated swagger docs
)

type Router struct {
	cfg                 *config.Config
	logger              *zap.Logger
	db                  *gorm.DB
	erpClient           *erp.Client
	authMiddleware      *auth.Middleware
	rateLimiter         *middleware.RateLimiter
	jobHandler          *handler.JobHandler
	stockHandler        *handler.StockHandler
	documentHandler     *handler.DocumentHandler
	notificationHandler *handler.NotificationHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	erpClient *erp.Client,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	jobHandler *handler.JobHandler,
	stockHandler *handler.StockHandler,
	documentHandler *handler.DocumentHandler,
	notificationHandler *handler.NotificationHandler,
) *Router {
	return &Router{
		cfg:                 cfg,
		logger:              logger,
		db:                  db,
		erpClient:           erpClient,
		authMiddleware:      authMiddleware,
		rateLimiter:         rateLimiter,
		jobHandler:          jobHandler,
		stockHandler:        stockHandler,
		documentHandler:     documentHandler,
		notificationHandler: notificationHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP)

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Database health check (readiness probe with detailed stats)
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		stats, err := database.HealthCheckWithStats(rt.db)
		if err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "database",
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"service": "database",
			"stats": map[string]interface{}{
				"max_open_connections": stats.MaxOpenConnections,
				"open_connections":     stats.OpenConnections,
				"in_use":               stats.InUse,
				"idle":                 stats.Idle,
				"wait_count":           stats.WaitCount,
				"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
				"max_idle_closed":      stats.MaxIdleClosed,
				"max_lifetime_closed":  stats.MaxLifetimeClosed,
			},
		})
	})

	// Combined readiness check (checks all dependencies)
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]interface{})
		allHealthy := true

		if err := database.HealthCheck(rt.db); err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			checks["database"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
			allHealthy = false
		} else {
			checks["database"] = map[string]interface{}{
				"status": "healthy",
			}
		}

		// The ERP link is optional; a broken link degrades stock sync but
		// does not make the API unhealthy.
		if rt.erpClient != nil && rt.erpClient.IsEnabled() {
			checks["erp"] = rt.erpClient.HealthCheck(r.Context())
		}

		w.Header().Set("Content-Type", "application/json")
		if allHealthy {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": map[bool]string{true: "healthy", false: "unhealthy"}[allHealthy],
			"checks": checks,
		})
	})

	// Swagger documentation
	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.Authenticate)

			// Jobs
			r.Route("/jobs", func(r chi.Router) {
				r.Get("/", rt.jobHandler.List)
				r.Post("/", rt.jobHandler.Create)
				r.Get("/{id}", rt.jobHandler.GetByID)
				r.Put("/{id}", rt.jobHandler.Update)
				r.Get("/{id}/stage-view", rt.jobHandler.StageView)
				r.Get("/{id}/logs", rt.jobHandler.Logs)

				// Fabrication lifecycle
				r.Put("/{id}/measure", rt.jobHandler.UpdateMeasure)
				r.Post("/{id}/price", rt.jobHandler.Price)
				r.Post("/{id}/offer/approve", rt.jobHandler.ApproveOffer)
				r.Post("/{id}/negotiate", rt.jobHandler.Negotiate)
				r.Post("/{id}/approve", rt.jobHandler.ApproveAgreement)
				r.Post("/{id}/reject", rt.jobHandler.Reject)
				r.Post("/{id}/reactivate", rt.jobHandler.Reactivate)
				r.Post("/{id}/stock", rt.jobHandler.ReserveStock)
				r.Post("/{id}/production", rt.jobHandler.UpdateProduction)
				r.Post("/{id}/assembly/schedule", rt.jobHandler.ScheduleAssembly)
				r.Post("/{id}/assembly/complete", rt.jobHandler.CompleteAssembly)
				r.Post("/{id}/finance/close", rt.jobHandler.CloseFinance)
				r.Post("/{id}/transition", rt.jobHandler.Transition)

				// Service lifecycle
				r.Post("/{id}/service/schedule", rt.jobHandler.ScheduleService)
				r.Post("/{id}/service/visits/start", rt.jobHandler.StartVisit)
				r.Post("/{id}/service/visits/complete", rt.jobHandler.CompleteVisit)
				r.Post("/{id}/service/finalize", rt.jobHandler.FinalizeService)
				r.Post("/{id}/service/continue", rt.jobHandler.ContinueService)
				r.Post("/{id}/service/close", rt.jobHandler.CloseService)

				// Sub-resources
				r.Get("/{id}/purchase-orders", rt.stockHandler.ListPurchaseOrdersByJob)
				r.Get("/{id}/documents", rt.documentHandler.ListByJob)
				r.Post("/{id}/documents", rt.documentHandler.Upload)
			})

			// Stock
			r.Route("/stock", func(r chi.Router) {
				r.Get("/", rt.stockHandler.List)
				r.Post("/", rt.stockHandler.Create)
				r.Get("/health", rt.stockHandler.HealthOverview)
				r.Get("/{id}", rt.stockHandler.GetByID)
				r.Put("/{id}", rt.stockHandler.Update)
				r.Post("/{id}/adjust", rt.stockHandler.Adjust)
			})

			// Purchase orders
			r.Post("/purchase-orders/{id}/receive", rt.stockHandler.ReceivePurchaseOrder)

			// Documents
			r.Route("/documents", func(r chi.Router) {
				r.Get("/{docId}/download", rt.documentHandler.Download)
				r.Delete("/{docId}", rt.documentHandler.Delete)
			})

			// Notifications
			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", rt.notificationHandler.List)
				r.Get("/count", rt.notificationHandler.GetUnreadCount)
				r.Post("/{id}/read", rt.notificationHandler.MarkAsRead)
			})
		})
	})

	return r
}
