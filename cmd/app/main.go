package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"mirrorcaps/configs"
	"mirrorcaps/internal/database"
	delivery "mirrorcaps/internal/delivery/http"
	"mirrorcaps/internal/infra"
	"mirrorcaps/internal/repository"
	"mirrorcaps/internal/service"
	"mirrorcaps/internal/usecase"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found, using environment variables")
	}

	// Load configuration
	cfg, err := configs.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Server.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx := context.Background()

	// Initialize database
	db, err := infra.NewDatabase(ctx, cfg.Database.URL, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := database.RunMigrations(ctx, db, logger); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	traderRepo := repository.NewTraderRepository(db)
	txRepo := repository.NewTransactionRepository(db)
	demoTradeRepo := repository.NewDemoTradeRepository(db)
	activityLogRepo := repository.NewActivityLogRepository(db)
	ledgerStore := repository.NewLedgerStore(db)

	// Initialize services
	mailer := service.NewSMTPMailer(service.SMTPConfig{
		Host:       cfg.SMTP.Host,
		Port:       cfg.SMTP.Port,
		Username:   cfg.SMTP.Username,
		Password:   cfg.SMTP.Password,
		From:       cfg.SMTP.From,
		AdminEmail: cfg.SMTP.AdminEmail,
	}, logger)
	auditService := service.NewAuditService(activityLogRepo, logger)
	demoTradeService := service.NewDemoTradeService(demoTradeRepo, userRepo, nil, logger)
	settlementService := usecase.NewSettlementService(ledgerStore, auditService, mailer, logger)

	// Start the stale pending sweep
	scheduler := infra.NewScheduler(txRepo, mailer, cfg.Settlement.StalePendingAfter, logger)
	if err := scheduler.Start(); err != nil {
		logger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer scheduler.Stop()

	// Initialize API server
	e := echo.New()
	e.HideBanner = true
	e.Validator = delivery.NewValidator()

	delivery.SetupRoutes(e, &delivery.RouterConfig{
		AuthHandler:        delivery.NewAuthHandler(userRepo),
		UserHandler:        delivery.NewUserHandler(userRepo, traderRepo, auditService),
		TraderHandler:      delivery.NewTraderHandler(traderRepo),
		TransactionHandler: delivery.NewTransactionHandler(txRepo),
		DepositHandler:     delivery.NewDepositHandler(txRepo, userRepo, settlementService, mailer, auditService, logger),
		WithdrawalHandler:  delivery.NewWithdrawalHandler(txRepo, userRepo, settlementService, mailer, auditService, logger),
		TradeHandler:       delivery.NewTradeHandler(txRepo, userRepo, traderRepo, settlementService, auditService),
		DemoTradeHandler:   delivery.NewDemoTradeHandler(demoTradeService),
	})

	// Ops server: health and liveness on a separate port
	opsSrv := &http.Server{
		Addr:         ":" + cfg.Server.OpsPort,
		Handler:      newOpsRouter(db),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("ops server starting", zap.String("port", cfg.Server.OpsPort))
		if err := opsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("ops server failed", zap.Error(err))
		}
	}()

	go func() {
		logger.Info("API server starting",
			zap.String("port", cfg.Server.Port),
			zap.String("env", cfg.Server.Env))
		if err := e.Start(":" + cfg.Server.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("API server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down servers")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("API server forced to shutdown", zap.Error(err))
	}
	if err := opsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("ops server forced to shutdown", zap.Error(err))
	}

	logger.Info("servers exited gracefully")
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// newOpsRouter serves the operational endpoints kept off the public API port
func newOpsRouter(db interface{ Ping(context.Context) error }) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"service": "mirrorcaps-api", "endpoints": {"health": "GET /health"}}`))
	})

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()

		dbStatus := "healthy"
		status := http.StatusOK
		if err := db.Ping(ctx); err != nil {
			dbStatus = "unhealthy"
			status = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprintf(w, `{"status": "%s", "database": "%s", "timestamp": "%s"}`,
			dbStatus, dbStatus, time.Now().Format(time.RFC3339))
	})

	return r
}
