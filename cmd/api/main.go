package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/evcrm/charger-crm/docs"
	"github.com/evcrm/charger-crm/internal/app"
	"github.com/evcrm/charger-crm/internal/auth"
	"github.com/evcrm/charger-crm/internal/config"
	"github.com/evcrm/charger-crm/internal/http/handler"
	"github.com/evcrm/charger-crm/internal/http/middleware"
	"github.com/evcrm/charger-crm/internal/http/router"
	"github.com/evcrm/charger-crm/internal/jobs"
	"github.com/evcrm/charger-crm/internal/logger"
	"github.com/evcrm/charger-crm/internal/metrics"
	"github.com/evcrm/charger-crm/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// @title EV Charger CRM API
// @version 1.0
// @description Sales CRM for EV charger installations: customers, installation progress, proposals and the charger catalog
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@evcrm.vn

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey UserID
// @in header
// @name X-User-ID
// @description Identifier of the acting user (pick one from /session/users)
// @Security UserID

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	if host := os.Getenv("SWAGGER_HOST"); host != "" {
		docs.SwaggerInfo.Host = host
	} else {
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	}

	// In staging/production secrets come from Azure Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	store, db, err := app.OpenSnapshotStore(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to open snapshot store: %w", err)
	}
	defer app.CloseDatabase(db, log)
	log.Info("Snapshot store initialized", zap.String("store", cfg.Snapshot.Store))

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	state, err := app.OpenState(ctx, store, m, log)
	if err != nil {
		return fmt.Errorf("failed to restore state: %w", err)
	}

	svc := app.NewServices(state, cfg, m, log)

	authHandler := handler.NewAuthHandler(svc.Users, log)
	customerHandler := handler.NewCustomerHandler(svc.Customers, log)
	progressHandler := handler.NewProgressHandler(svc.Lifecycle, log)
	proposalHandler := handler.NewProposalHandler(svc.Proposals, svc.Advisor, log)
	chargerHandler := handler.NewChargerHandler(svc.Chargers, log)
	userHandler := handler.NewUserHandler(svc.Users, log)
	dashboardHandler := handler.NewDashboardHandler(svc.Dashboard, log)

	authMiddleware := auth.NewMiddleware(svc.Users, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	rt := router.NewRouter(
		cfg,
		log,
		db,
		m,
		registry,
		authMiddleware,
		rateLimiter,
		authHandler,
		customerHandler,
		progressHandler,
		proposalHandler,
		chargerHandler,
		userHandler,
		dashboardHandler,
	)

	var scheduler *jobs.Scheduler
	if cfg.Backup.Enabled {
		storageCfg := cfg.Storage
		storageCfg.Mode = cfg.Backup.Mode
		target, err := storage.NewStorage(&storageCfg, log)
		if err != nil {
			return fmt.Errorf("failed to initialize backup storage: %w", err)
		}

		scheduler = jobs.NewScheduler(log)
		backup := jobs.NewSnapshotBackupJob(state, target, cfg.Backup.Prefix, cfg.Snapshot.FlushTimeoutDuration(), m, log)
		if err := scheduler.AddJob(jobs.SnapshotBackupJobName, cfg.Backup.Cron, backup.Run); err != nil {
			log.Error("Failed to register snapshot backup job", zap.Error(err))
			scheduler = nil
		} else {
			if cfg.Backup.RunOnStart {
				_ = scheduler.RunNow(jobs.SnapshotBackupJobName)
			}
			scheduler.Start()
			next, _ := scheduler.NextRun(jobs.SnapshotBackupJobName)
			log.Info("Scheduler started with snapshot backup job",
				zap.String("cron_expr", cfg.Backup.Cron),
				zap.String("mode", cfg.Backup.Mode),
				zap.Time("next_run", next),
			)
		}
	} else {
		log.Info("Snapshot backups disabled")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	var serveErr error
	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr = fmt.Errorf("server error: %w", err)
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))
	}

	var background app.Stopper
	if scheduler != nil {
		background = scheduler
	}
	if err := app.Shutdown(srv, background, state, 30*time.Second, cfg.Snapshot.FlushTimeoutDuration(), log); err != nil {
		log.Error("Failed to shutdown gracefully", zap.Error(err))
		if serveErr == nil {
			return err
		}
	}
	if serveErr != nil {
		return serveErr
	}

	log.Info("Server stopped gracefully")
	return nil
}
