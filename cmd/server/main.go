package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/mandibooks/backend/internal/application/catalog"
	crateapp "github.com/mandibooks/backend/internal/application/crate"
	financeapp "github.com/mandibooks/backend/internal/application/finance"
	identityapp "github.com/mandibooks/backend/internal/application/identity"
	inventoryapp "github.com/mandibooks/backend/internal/application/inventory"
	partnerapp "github.com/mandibooks/backend/internal/application/partner"
	tradeapp "github.com/mandibooks/backend/internal/application/trade"
	"github.com/mandibooks/backend/internal/domain/shared"
	"github.com/mandibooks/backend/internal/infrastructure/auth"
	"github.com/mandibooks/backend/internal/infrastructure/cache"
	"github.com/mandibooks/backend/internal/infrastructure/config"
	"github.com/mandibooks/backend/internal/infrastructure/logger"
	"github.com/mandibooks/backend/internal/infrastructure/persistence"
	"github.com/mandibooks/backend/internal/infrastructure/telemetry"
	"github.com/mandibooks/backend/internal/interfaces/http/handler"
	"github.com/mandibooks/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

const meterName = "github.com/mandibooks/backend"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	baseLog, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = baseLog.Sync()
	}()

	ctx := context.Background()
	serviceName := cfg.Telemetry.ServiceName

	logProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       serviceName,
		ServiceVersion:    cfg.App.Version,
		Insecure:          cfg.Telemetry.Insecure,
	}, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize log exporter", zap.Error(err))
	}
	log := logProvider.Bridge(baseLog, logger.ParseLevel(cfg.Log.Level))

	log.Info("Starting mandibooks",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", cfg.App.Version),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       serviceName,
		Insecure:          cfg.Telemetry.Insecure,
		ServiceVersion:    cfg.App.Version,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       serviceName,
		ServiceVersion:    cfg.App.Version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	meter := meterProvider.Meter(meterName)

	db, err := persistence.NewDatabase(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}

	dbTracing := telemetry.DefaultDBTracingConfig()
	dbTracing.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled
	dbTracing.LogFullSQL = cfg.Telemetry.DBLogFullSQL
	if cfg.Telemetry.DBSlowQueryThresh > 0 {
		dbTracing.SlowQueryThresh = cfg.Telemetry.DBSlowQueryThresh
	}
	if db.Driver() == config.DriverSQLite {
		dbTracing.DBSystem = "sqlite"
	}
	if err := telemetry.RegisterDBTracing(db.DB, dbTracing, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	if cfg.Database.AutoMigrate {
		if err := persistence.AutoMigrate(db.DB); err != nil {
			log.Fatal("Failed to create schema", zap.Error(err))
		}
		log.Info("Schema created from entity definitions")
	}

	backends, err := cache.NewFactory(cfg.Redis, cache.WithLogger(log)).Create(ctx)
	if err != nil {
		log.Fatal("Failed to initialize idempotency backends", zap.Error(err))
	}

	ledgerMetrics, err := telemetry.NewLedgerMetrics(meter)
	if err != nil {
		log.Fatal("Failed to create ledger metrics", zap.Error(err))
	}

	// Application services share one transaction scope
	scope := persistence.NewGormTransactionScope(db.DB)
	recorder := financeapp.NewBookRecorder(log)

	tenantService := identityapp.NewTenantService(scope, log)
	itemService := catalogapp.NewItemService(scope, log)
	partyService := partnerapp.NewPartyService(scope, log)
	stockService := inventoryapp.NewStockLedgerService(scope, log)
	crateService := crateapp.NewCrateService(scope, recorder, crateapp.Config{
		AllowNegativeBalance: cfg.Crate.AllowNegativeBalance,
	}, log)
	invoiceService := tradeapp.NewInvoiceService(scope, stockService, crateService, log)
	paymentService := financeapp.NewPaymentService(scope, recorder, backends.Idempotency, backends.Locker, financeapp.PaymentConfig{
		Idempotency: shared.IdempotencyConfig{
			Enabled: cfg.Ledger.IdempotencyEnabled,
			TTL:     cfg.Ledger.IdempotencyTTL,
		},
		LockTTL: cfg.Ledger.InvoiceLockTTL,
	}, log)
	accountService := financeapp.NewAccountService(scope, recorder, log)
	ledgerService := financeapp.NewLedgerService(scope, recorder, log)
	expenseService := financeapp.NewExpenseService(scope, recorder, log)

	handlers := router.Handlers{
		System:   handler.NewSystemHandler(db, cfg.App.Version),
		Tenants:  handler.NewTenantHandler(tenantService),
		Parties:  handler.NewPartyHandler(partyService, crateService),
		Items:    handler.NewItemHandler(itemService),
		Invoices: handler.NewInvoiceHandler(invoiceService, paymentService, ledgerMetrics),
		Crates:   handler.NewCrateHandler(crateService, ledgerMetrics),
		Stock:    handler.NewStockHandler(stockService),
		Books:    handler.NewBookHandler(ledgerService, accountService),
		Expenses: handler.NewExpenseHandler(expenseService),
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine, err := router.New(router.Options{
		ServiceName:    serviceName,
		HTTP:           cfg.HTTP,
		TracingEnabled: cfg.Telemetry.Enabled,
		Meter:          meter,
		Tokens:         auth.NewJWTService(cfg.JWT),
		Tenants:        tenantService,
		Logger:         log,
	}, handlers)
	if err != nil {
		log.Fatal("Failed to build router", zap.Error(err))
	}

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := backends.Close(); err != nil {
		log.Error("Error closing idempotency backends", zap.Error(err))
	}
	if err := db.Close(); err != nil {
		log.Error("Error closing database", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}
	if err := logProvider.Shutdown(shutdownCtx); err != nil {
		baseLog.Error("Error shutting down log exporter", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
