package api

import (
	"log/slog"
	"net/http"
	"time"

	"loan-monitor/internal/api/handler"
	mw "loan-monitor/internal/api/middleware"
	"loan-monitor/internal/config"
	"loan-monitor/internal/domain/branch"
	"loan-monitor/internal/domain/customer"
	"loan-monitor/internal/domain/loan"
	"loan-monitor/internal/report"

	_ "loan-monitor/docs"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/traceid"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

func SetupRouter(loanService loan.Service, customerService customer.Service, branchService branch.Service, reportJob *report.Job, cfg *config.Config, logger *slog.Logger) *chi.Mux {
	router := chi.NewRouter()

	setupMiddleware(router, cfg, logger)
	setupMetricsEndpoint(router, cfg, logger)
	setupAuthRoutes(router, cfg, logger)
	setupLoanRoutes(router, loanService, cfg, logger)
	setupCustomerRoutes(router, customerService, cfg, logger)
	setupBranchRoutes(router, branchService, cfg, logger)
	setupReportRoutes(router, reportJob, cfg, logger)
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	setupSwaggerEndpoint(router, logger)

	return router
}

func setupMiddleware(router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(traceid.Middleware)
	router.Use(mw.StructuredLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(middleware.Timeout(60 * time.Second))
	router.Use(mw.NewRateLimiterMiddleware(cfg.Server.RateLimit, logger).Middleware)
	router.Use(mw.MetricsMiddleware())
}

func setupMetricsEndpoint(router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	metricsPath := cfg.Metrics.Path
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	logger.Info("Setting up Prometheus metrics endpoint", "path", metricsPath)
	router.Handle(metricsPath, promhttp.Handler())
}

func setupSwaggerEndpoint(router *chi.Mux, logger *slog.Logger) {
	logger.Info("Setting up Swagger UI endpoint", "path", "/swagger/")
	router.Get("/swagger/*", httpSwagger.WrapHandler)
	router.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/index.html", http.StatusMovedPermanently)
	})
}

func setupAuthRoutes(router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	authHandler := handler.NewAuthHandler(*cfg, logger)
	router.Route("/auth", func(r chi.Router) {
		r.Post("/token", authHandler.GenerateBearerToken)
	})
}

func setupLoanRoutes(router *chi.Mux, svc loan.Service, cfg *config.Config, logger *slog.Logger) {
	h := handler.NewLoanHandler(svc, logger)

	router.Route("/loans", func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.Server.Auth, logger))
		r.Post("/", h.CreateLoan)
		r.Get("/", h.ListLoans)
		// registered before /{loanID} so the literal segment wins
		r.Get("/due", h.ListLoansDue)
		r.Route("/{loanID}", func(r chi.Router) {
			r.Get("/", h.GetLoan)
			r.Put("/balance", h.UpdateLoanBalance)
			r.Post("/payments", h.RecordPayment)
		})
	})
}

func setupCustomerRoutes(router *chi.Mux, svc customer.Service, cfg *config.Config, logger *slog.Logger) {
	h := handler.NewCustomerHandler(svc, logger)

	router.Route("/customers", func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.Server.Auth, logger))
		r.Post("/", h.CreateCustomer)
		r.Get("/", h.ListCustomers)
		r.Get("/{customerID}", h.GetCustomer)
	})
}

func setupBranchRoutes(router *chi.Mux, svc branch.Service, cfg *config.Config, logger *slog.Logger) {
	h := handler.NewBranchHandler(svc, logger)

	router.Route("/branches", func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.Server.Auth, logger))
		r.Post("/", h.CreateBranch)
		r.Get("/", h.ListBranches)
		r.Route("/{branchID}", func(r chi.Router) {
			r.Get("/", h.GetBranch)
			r.Delete("/", h.DeleteBranch)
		})
	})
}

func setupReportRoutes(router *chi.Mux, job *report.Job, cfg *config.Config, logger *slog.Logger) {
	if job == nil {
		logger.Warn("Report job not configured, skipping report routes")
		return
	}
	h := handler.NewReportHandler(job, logger)

	router.Route("/reports", func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.Server.Auth, logger))
		r.Post("/due", h.TriggerDueReport)
	})
}
