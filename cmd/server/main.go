package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/careops/clinicflow/internal/config"
	v1 "github.com/careops/clinicflow/internal/handler/v1"
	"github.com/careops/clinicflow/internal/repository"
	"github.com/careops/clinicflow/internal/seed"
	"github.com/careops/clinicflow/internal/service"
	"github.com/careops/clinicflow/pkg/auth"
	"github.com/careops/clinicflow/pkg/clock"
	"github.com/careops/clinicflow/pkg/database"
	"github.com/careops/clinicflow/pkg/logger"
	"github.com/careops/clinicflow/pkg/metrics"
	"github.com/careops/clinicflow/pkg/tracer"
)

func main() {
	seedDemo := flag.Bool("seed", false, "load demo staff, drugs and a sample patient, then exit")
	flag.Parse()

	if err := run(*seedDemo); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run(seedDemo bool) error {
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

	if cfg.Tracing.Enabled {
		tp, err := tracer.Init(cfg.Tracing)
		if err != nil {
			return fmt.Errorf("initializing tracer: %w", err)
		}
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				log.Warn("tracer shutdown", zap.Error(err))
			}
		}()
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	if err := database.Migrate(db, log); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}

	collector := metrics.NewCollector("clinicflow")
	jwtManager := auth.NewJWTManager(cfg.JWT)
	clk := clock.System()

	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	patientRepo := repository.NewPatientRepository(db)
	staffRepo := repository.NewStaffRepository(db)
	visitRepo := repository.NewVisitRepository(db)
	drugRepo := repository.NewDrugRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	prescriptionRepo := repository.NewPrescriptionRepository(db)
	billingRepo := repository.NewBillingRepository(db)

	if seedDemo {
		if err := seed.Demo(context.Background(), db, log); err != nil {
			return fmt.Errorf("seeding demo data: %w", err)
		}
		log.Info("demo data loaded")
		return nil
	}

	auditSvc := service.NewAuditService(auditRepo, collector, log)
	defer auditSvc.Shutdown()

	gate := service.NewGate(collector)
	identitySvc := service.NewIdentityService(staffRepo, log)
	authSvc := service.NewAuthService(userRepo, jwtManager, log)
	patientSvc := service.NewPatientService(patientRepo, gate, auditSvc, clk, log)
	staffSvc := service.NewStaffService(staffRepo, userRepo, gate, auditSvc, log)
	visitSvc := service.NewVisitService(visitRepo, patientRepo, staffRepo, gate, auditSvc, clk, collector, log)
	prescriptionSvc := service.NewPrescriptionService(prescriptionRepo, drugRepo, visitRepo, gate, auditSvc, clk, collector, log)
	drugSvc := service.NewDrugService(drugRepo, gate, auditSvc, log)
	inventorySvc := service.NewInventoryService(inventoryRepo, drugRepo, gate, auditSvc, collector, log)
	billingSvc := service.NewBillingService(billingRepo, visitRepo, prescriptionRepo, gate, auditSvc, clk, collector, log)

	router := v1.NewRouter(v1.Dependencies{
		Config:        cfg,
		Log:           log,
		JWTManager:    jwtManager,
		Collector:     collector,
		Identity:      identitySvc,
		Auth:          authSvc,
		Patients:      patientSvc,
		Staff:         staffSvc,
		Visits:        visitSvc,
		Prescriptions: prescriptionSvc,
		Drugs:         drugSvc,
		Inventory:     inventorySvc,
		Billing:       billingSvc,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
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

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	log.Info("stopped")
	return nil
}
