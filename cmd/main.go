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

	_ "loan-monitor/docs"
	"loan-monitor/internal/api"
	"loan-monitor/internal/batch"
	"loan-monitor/internal/config"
	"loan-monitor/internal/domain/branch"
	"loan-monitor/internal/domain/customer"
	"loan-monitor/internal/domain/loan"
	"loan-monitor/internal/event"
	"loan-monitor/internal/infrastructure/database/postgres"
	"loan-monitor/internal/infrastructure/logging"
	"loan-monitor/internal/report"

	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// @title Loan Monitor API
// @version 1.0
// @description This is the API documentation for the Loan Monitor service.

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, logger := initializeApp()

	dbPool := initializeDatabase(cfg, logger)
	defer closeDatabase(dbPool, logger)

	publisher, amqpConn := initializePublisher(cfg, logger)
	if amqpConn != nil {
		defer amqpConn.Close()
	}

	loanService, customerService, branchService, loanRepo := initializeServices(dbPool, publisher, logger)

	mailer := initializeMailer(cfg, logger)
	reportJob := report.NewJob(loanService, mailer, cfg.Report, logger)
	overdueJob := batch.NewOverdueJob(loanRepo, loanService, logger)

	cronScheduler := startBatchJobs(cfg, logger, overdueJob, reportJob)
	router := api.SetupRouter(loanService, customerService, branchService, reportJob, cfg, logger)

	srv, serverErrors, shutdownChan := startServer(cfg, router, logger)
	handleShutdown(srv, cronScheduler, shutdownChan, serverErrors, logger)
}

func initializeApp() (*config.Config, *slog.Logger) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg.Logger)
	slog.SetDefault(logger)
	logger.Info("Application starting...", "config_source", viper.ConfigFileUsed())

	return cfg, logger
}

func initializeDatabase(cfg *config.Config, logger *slog.Logger) *pgxpool.Pool {
	logger.Info("Initializing database connection pool...")
	dbPool, err := postgres.NewConnectionPool(context.Background(), cfg.Database, logger)
	if err != nil {
		logger.Error("Failed to initialize database connection pool", "error", err)
		os.Exit(1)
	}

	if err := postgres.BootstrapSchema(context.Background(), dbPool, logger); err != nil {
		logger.Error("Failed to bootstrap database schema", "error", err)
		os.Exit(1)
	}
	if cfg.Database.SeedDemoData {
		if err := postgres.SeedDemoData(context.Background(), dbPool, logger); err != nil {
			logger.Error("Failed to seed demo data", "error", err)
			os.Exit(1)
		}
	}
	return dbPool
}

func closeDatabase(dbPool *pgxpool.Pool, logger *slog.Logger) {
	logger.Info("Closing database connection pool...")
	dbPool.Close()
}

func initializePublisher(cfg *config.Config, logger *slog.Logger) (event.Publisher, *amqp.Connection) {
	if !cfg.RabbitMQ.Enabled {
		logger.Info("RabbitMQ disabled, loan events will not be published")
		return event.NewNopPublisher(logger), nil
	}

	conn, err := amqp.Dial(cfg.RabbitMQ.URL)
	if err != nil {
		logger.Error("Failed to connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	publisher, err := event.NewRabbitMQPublisher(conn, cfg.RabbitMQ.ExchangeName, logger)
	if err != nil {
		logger.Error("Failed to initialize RabbitMQ publisher", "error", err)
		os.Exit(1)
	}
	logger.Info("RabbitMQ publisher initialized", "exchange", cfg.RabbitMQ.ExchangeName)
	return publisher, conn
}

func initializeServices(dbPool *pgxpool.Pool, publisher event.Publisher, logger *slog.Logger) (loan.Service, customer.Service, branch.Service, loan.Repository) {
	logger.Info("Initializing application components...")
	loanRepo := postgres.NewLoanRepository(dbPool, logger)
	customerRepo := postgres.NewCustomerRepository(dbPool, logger)
	branchRepo := postgres.NewBranchRepository(dbPool, logger)

	customerService := customer.NewService(customerRepo, logger)
	branchService := branch.NewService(branchRepo, logger)
	loanService := loan.NewService(loanRepo, customerService, branchService, publisher, logger)

	return loanService, customerService, branchService, loanRepo
}

func initializeMailer(cfg *config.Config, logger *slog.Logger) report.Mailer {
	if !cfg.SMTP.Enabled {
		logger.Info("SMTP disabled, due reports will not be emailed")
		return report.NewNopMailer(logger)
	}
	return report.NewSMTPMailer(cfg.SMTP, cfg.Report.CompanyName, logger)
}

func startServer(cfg *config.Config, router http.Handler, logger *slog.Logger) (*http.Server, <-chan error, <-chan os.Signal) {
	logger.Info("Setting up HTTP server...", "port", cfg.Server.Port)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info(fmt.Sprintf("Server listening on port %d", cfg.Server.Port))
		err := srv.ListenAndServe()
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", "error", err)
			serverErrors <- err
		} else {
			logger.Info("Server closed gracefully.")
			serverErrors <- nil
		}
	}()
	return srv, serverErrors, shutdownChan
}

func handleShutdown(srv *http.Server, cronScheduler *cron.Cron, shutdownChan <-chan os.Signal, serverErrors <-chan error, logger *slog.Logger) {
	logger.Info("Shutdown handler started. Waiting for signal or server error...")

	var triggerReason string
	select {
	case sig := <-shutdownChan:
		triggerReason = "signal: " + sig.String()
		logger.Info("Shutdown signal received.", "signal", sig.String())
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server exited unexpectedly before signal", "error", err)
			os.Exit(1)
		}
		triggerReason = "server exited"
		logger.Info("Server goroutine finished before signal.", "error", err)
	}

	logger.Info("Starting graceful shutdown...", "trigger", triggerReason)

	logger.Info("Stopping cron scheduler...")
	cronCtx := cronScheduler.Stop()
	select {
	case <-cronCtx.Done():
		logger.Info("Cron scheduler stopped gracefully.")
	case <-time.After(15 * time.Second):
		logger.Warn("Cron scheduler shutdown timed out.")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	logger.Info("Shutting down HTTP server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server graceful shutdown failed", "error", err)
		} else {
			logger.Info("HTTP server shutdown initiated.")
		}
		if err := srv.Close(); err != nil {
			logger.Error("HTTP server forced close failed", "error", err)
		}
	} else {
		logger.Info("HTTP server gracefully stopped.")
	}

	logger.Info("Waiting for server goroutine to confirm exit...")
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("Server goroutine exited with unexpected error after shutdown", "error", err)
		} else {
			logger.Info("Server goroutine confirmed exit.")
		}
	case <-time.After(5 * time.Second):
		logger.Warn("Timed out waiting for server goroutine confirmation.")
	}

	logger.Info("Application shutdown process complete.")
}

func startBatchJobs(cfg *config.Config, logger *slog.Logger, overdueJob *batch.OverdueJob, reportJob *report.Job) *cron.Cron {
	logger.Info("Initializing batch job scheduler...")
	c := cron.New()

	scheduleOverdueJob(c, cfg, logger, overdueJob)
	scheduleReportJob(c, cfg, logger, reportJob)

	c.Start()
	logger.Info("Cron scheduler started.")
	return c
}

func scheduleOverdueJob(c *cron.Cron, cfg *config.Config, logger *slog.Logger, overdueJob *batch.OverdueJob) {
	scheduleSpec := cfg.Batch.OverdueUpdateSchedule
	if scheduleSpec == "" {
		scheduleSpec = "0 2 * * *"
		logger.Warn("Batch overdue update schedule not configured, using default", "schedule", scheduleSpec)
	}
	jobTimeout := cfg.Batch.OverdueUpdateTimeout
	if jobTimeout <= 0 {
		jobTimeout = 1 * time.Hour
	}

	jobID, err := c.AddJob(scheduleSpec, cron.FuncJob(func() {
		jobLogger := logger.With("job_name", "OverdueUpdate")
		jobLogger.Info("Cron triggered: Running overdue update job.")

		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		if runErr := overdueJob.Run(ctx); runErr != nil {
			jobLogger.Error("Overdue update job finished with error", slog.Any("error", runErr))
		} else {
			jobLogger.Info("Overdue update job finished successfully.")
		}
	}))
	if err != nil {
		logger.Error("Failed to schedule overdue update job", "schedule", scheduleSpec, slog.Any("error", err))
	} else {
		logger.Info("Scheduled overdue update job", "schedule", scheduleSpec, "job_id", jobID)
	}
}

func scheduleReportJob(c *cron.Cron, cfg *config.Config, logger *slog.Logger, reportJob *report.Job) {
	scheduleSpec := cfg.Report.Schedule
	if scheduleSpec == "" {
		scheduleSpec = "0 7 * * *"
		logger.Warn("Due report schedule not configured, using default", "schedule", scheduleSpec)
	}

	jobID, err := c.AddJob(scheduleSpec, cron.FuncJob(func() {
		jobLogger := logger.With("job_name", "DueReport")
		jobLogger.Info("Cron triggered: Running due loans report job.")

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
		defer cancel()

		if _, runErr := reportJob.Run(ctx); runErr != nil {
			jobLogger.Error("Due loans report job finished with error", slog.Any("error", runErr))
		} else {
			jobLogger.Info("Due loans report job finished successfully.")
		}
	}))
	if err != nil {
		logger.Error("Failed to schedule due loans report job", "schedule", scheduleSpec, slog.Any("error", err))
	} else {
		logger.Info("Scheduled due loans report job", "schedule", scheduleSpec, "job_id", jobID)
	}
}
