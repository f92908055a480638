package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/rxdesk/rxdesk/internal/config"
	v1 "github.com/rxdesk/rxdesk/internal/handler/v1"
	"github.com/rxdesk/rxdesk/internal/repository"
	"github.com/rxdesk/rxdesk/internal/service"
	"github.com/rxdesk/rxdesk/pkg/auth"
	"github.com/rxdesk/rxdesk/pkg/database"
	"github.com/rxdesk/rxdesk/pkg/logger"
	"github.com/rxdesk/rxdesk/pkg/metrics"
	"github.com/rxdesk/rxdesk/pkg/tracer"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	log.Info("starting",
		zap.String("app", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	tp, err := tracer.Init(cfg.Tracing)
	if err != nil {
		return fmt.Errorf("initializing tracer: %w", err)
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Warn("tracer shutdown", zap.Error(err))
		}
	}()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	if err := database.Migrate(db, log); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}

	collector := metrics.NewCollector("rxdesk")
	jwtManager := auth.NewJWTManager(cfg.JWT)

	auditSvc := service.NewAuditService(repository.NewAuditRepository(db), log)
	defer auditSvc.Shutdown()

	svcs := v1.Services{
		Auth:          service.NewAuthService(repository.NewUserRepository(db), jwtManager, auditSvc, log),
		Prescriptions: service.NewPrescriptionService(repository.NewPrescriptionRepository(db), repository.NewReminderRepository(db), auditSvc, log),
		Orders:        service.NewOrderService(repository.NewOrderRepository(db), auditSvc, log),
		Stock:         service.NewStockService(repository.NewStockRepository(db), auditSvc, log),
		Settings:      service.NewSettingsService(repository.NewSettingsRepository(db), auditSvc, log),
	}

	engine := v1.NewRouter(cfg, svcs, jwtManager, collector, log)

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case sig := <-stop:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}

	log.Info("stopped")
	return nil
}
