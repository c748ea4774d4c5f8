// Command server runs the Shopify connector: webhook receiver, admin API and
// the periodic queue drain.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	app "github.com/erp/shopify-connector/internal/application/integration"
	"github.com/erp/shopify-connector/internal/infrastructure/auth"
	"github.com/erp/shopify-connector/internal/infrastructure/cache"
	"github.com/erp/shopify-connector/internal/infrastructure/config"
	"github.com/erp/shopify-connector/internal/infrastructure/ecommerce"
	"github.com/erp/shopify-connector/internal/infrastructure/logger"
	"github.com/erp/shopify-connector/internal/infrastructure/migration"
	"github.com/erp/shopify-connector/internal/infrastructure/persistence"
	"github.com/erp/shopify-connector/internal/infrastructure/scheduler"
	"github.com/erp/shopify-connector/internal/infrastructure/secret"
	"github.com/erp/shopify-connector/internal/infrastructure/storage"
	"github.com/erp/shopify-connector/internal/infrastructure/telemetry"
	"github.com/erp/shopify-connector/internal/interfaces/http/handler"
	"github.com/erp/shopify-connector/internal/interfaces/http/router"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

var (
	_ app.SyncMetrics              = (*telemetry.Metrics)(nil)
	_ ecommerce.RequestObserver    = (*telemetry.Metrics)(nil)
	_ scheduler.RunObserver        = (*telemetry.Metrics)(nil)
	_ persistence.CredentialSealer = (*secret.Sealer)(nil)
)

//	@title			Shopify Connector API
//	@version		1.0
//	@description	Admin API of the Shopify connector: connections, webhooks, imports, sync queues, stock export and order automation.

//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(logger.FromAppConfig(cfg))
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting Shopify connector",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	ctx := context.Background()

	// Tracing
	tp, err := telemetry.NewTracerProvider(ctx, telemetry.ConfigFromApp(cfg.Telemetry, version), log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh),
		logger.WithSQL(cfg.Telemetry.DBLogFullSQL),
	)
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if cfg.Database.MigrateOnStart {
		if err := migrate(cfg.Database.DSN(), log); err != nil {
			log.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}

	if cfg.Telemetry.DBTraceEnabled {
		plugin := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfigFromApp(cfg.Telemetry, cfg.Database.DBName), log)
		if err := plugin.Register(db.DB); err != nil {
			log.Fatal("Failed to register database tracing", zap.Error(err))
		}
	}

	// Repositories
	connectionRepo := persistence.NewGormConnectionRepository(db.DB)
	if cfg.Security.SecretKey != "" {
		sealer, err := secret.NewSealer(cfg.Security.SecretKey)
		if err != nil {
			log.Fatal("Failed to initialize credential sealer", zap.Error(err))
		}
		connectionRepo = connectionRepo.WithSealer(sealer)
	} else if cfg.IsProduction() {
		log.Warn("Connection credentials are stored unsealed; set CONNECTOR_SECURITY_SECRET_KEY")
	}
	webhookRepo := persistence.NewGormWebhookRepository(db.DB)
	queueRepo := persistence.NewGormQueueRepository(db.DB)
	queueScope := persistence.NewGormQueueTransactionScope(db.DB)
	sequences := persistence.NewGormSequenceGenerator(db.DB)
	processLogRepo := persistence.NewGormProcessLogRepository(db.DB)
	gatewayRepo := persistence.NewGormPaymentGatewayRepository(db.DB)
	processConfigRepo := persistence.NewGormProcessConfigRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	countryRepo := persistence.NewGormCountryRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	stockRepo := persistence.NewGormStockRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	attributeRepo := persistence.NewGormAttributeRepository(db.DB)
	salesOrderRepo := persistence.NewGormSalesOrderRepository(db.DB)
	taxRepo := persistence.NewGormTaxRepository(db.DB)
	deliveryRepo := persistence.NewGormDeliveryRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)

	// Infrastructure
	metrics := telemetry.NewMetrics()

	clientCfg := ecommerce.DefaultShopifyClientConfig()
	if cfg.Shopify.RequestTimeout > 0 {
		clientCfg.Timeout = cfg.Shopify.RequestTimeout
	}
	clientCfg.MaxResponseBytes = cfg.Shopify.MaxResponseBytes
	clientCfg.RateLimit = cfg.Shopify.RateLimit
	clientCfg.RateBurst = cfg.Shopify.RateBurst
	clientCfg.UserAgent = cfg.App.Name + "/" + version
	shopify, err := ecommerce.NewShopifyClient(clientCfg, ecommerce.WithRequestObserver(metrics))
	if err != nil {
		log.Fatal("Failed to create Shopify client", zap.Error(err))
	}

	idempotency, err := cache.NewIdempotencyStore(ctx, cfg.Redis, cfg.IsProduction(), log)
	if err != nil {
		log.Fatal("Failed to initialize idempotency store", zap.Error(err))
	}

	revoked, redisClient := revocationList(ctx, cfg.Redis, log)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}
	jwtService := auth.NewJWTService(cfg.JWT)
	authenticator := auth.NewAuthenticator(jwtService, revoked)

	// Application services
	validator, err := app.NewPayloadValidator()
	if err != nil {
		log.Fatal("Failed to compile payload schemas", zap.Error(err))
	}
	auditor := app.NewAuditor(processLogRepo, sequences, log)

	customerMapper := app.NewCustomerMapper(customerRepo, countryRepo, auditor, metrics, log)
	productMapper := app.NewProductMapper(productRepo, categoryRepo, attributeRepo, auditor, metrics, log)
	if cfg.Shopify.ImageFetch {
		store, err := storage.NewImageStore(ctx, cfg.Storage, log)
		if err != nil {
			log.Fatal("Failed to initialize image storage", zap.Error(err))
		}
		fetcher := ecommerce.NewHTTPImageFetcher(clientCfg.Timeout, cfg.Shopify.ImageMaxBytes)
		productMapper = productMapper.WithImages(fetcher, store)
	}
	resolver := app.NewReferenceResolver(shopify, customerRepo, productRepo, customerMapper, productMapper, log)
	automation := app.NewAutomationEngine(salesOrderRepo, deliveryRepo, taxRepo, invoiceRepo, paymentRepo, metrics, log)
	orderMapper := app.NewOrderMapper(app.OrderMapperConfig{
		Orders:     salesOrderRepo,
		Taxes:      taxRepo,
		Gateways:   gatewayRepo,
		Configs:    processConfigRepo,
		Resolver:   resolver,
		Automation: automation,
		Auditor:    auditor,
		Metrics:    metrics,
		Logger:     log,
	})
	dispatcher := app.NewDispatcher(
		app.NewCustomerHandler(customerMapper),
		app.NewProductHandler(productMapper),
		app.NewOrderHandler(orderMapper),
	)

	queueService := app.NewSyncQueueService(app.SyncQueueServiceConfig{
		Scope:       queueScope,
		Queues:      queueRepo,
		Connections: connectionRepo,
		Dispatcher:  dispatcher,
		Validator:   validator,
		Auditor:     auditor,
		Metrics:     metrics,
		Logger:      log,
		ChunkSize:   cfg.Queue.ChunkSize,
		MaxAttempts: cfg.Queue.MaxAttempts,
	})
	connectionService := app.NewConnectionService(connectionRepo, gatewayRepo, shopify, auditor, log).
		WithDefaultAPIVersion(cfg.Shopify.APIVersion)
	registrationService := app.NewWebhookRegistrationService(connectionRepo, webhookRepo, shopify, auditor, cfg.Webhook.PublicBaseURL, log)
	importService := app.NewImportService(shopify, queueService, dispatcher, validator, gatewayRepo, auditor, log)
	stockExportService := app.NewStockExportService(shopify, productRepo, stockRepo, auditor, log)
	processConfigService := app.NewProcessConfigService(processConfigRepo, gatewayRepo, connectionRepo, log)
	webhookService := app.NewWebhookService(app.WebhookServiceConfig{
		Connections:     connectionRepo,
		Webhooks:        webhookRepo,
		Dispatcher:      dispatcher,
		Validator:       validator,
		Idempotency:     idempotency,
		Queue:           queueService,
		Auditor:         auditor,
		Metrics:         metrics,
		Logger:          log,
		VerifySignature: cfg.Webhook.VerifySignature,
		IdempotencyTTL:  cfg.Webhook.IdempotencyTTL,
	})

	// Drain trigger; manual runs share its no-overlap guard even when the
	// schedule is off
	triggerCfg := scheduler.DefaultDrainTriggerConfig()
	if cfg.Queue.DrainInterval > 0 {
		triggerCfg.Interval = cfg.Queue.DrainInterval
	}
	trigger, err := scheduler.NewDrainTrigger(triggerCfg, queueService, log)
	if err != nil {
		log.Fatal("Failed to create drain trigger", zap.Error(err))
	}
	trigger.SetObserver(metrics)
	if cfg.Queue.DrainEnabled {
		if err := trigger.Start(ctx); err != nil {
			log.Fatal("Failed to start drain trigger", zap.Error(err))
		}
	}

	// HTTP
	checks := map[string]handler.Pinger{
		"database": handler.PingFunc(func(ctx context.Context) error {
			sqlDB, err := db.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}),
	}
	if redisClient != nil {
		checks["redis"] = handler.PingFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}

	ginMode := "release"
	if !cfg.IsProduction() {
		ginMode = "debug"
	}
	engine, err := router.NewEngine(router.Config{
		Mode:           ginMode,
		ServiceName:    cfg.Telemetry.ServiceName,
		TracingEnabled: tp.IsEnabled(),
		TrustedProxies: cfg.HTTP.TrustedProxies,
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		WebhookMaxBody: cfg.Webhook.MaxBodySize,
		RateLimit:      cfg.HTTP.RateLimit,
		RateBurst:      cfg.HTTP.RateBurst,
		MetricsEnabled: cfg.Metrics.Enabled,
		MetricsPath:    cfg.Metrics.Path,
		SwaggerEnabled: cfg.HTTP.SwaggerEnabled,
	}, router.Handlers{
		System:         handler.NewSystemHandler(version, checks),
		Webhooks:       handler.NewWebhookHandler(webhookService),
		Connections:    handler.NewConnectionHandler(connectionService, registrationService),
		Imports:        handler.NewImportHandler(connectionService, importService),
		Exports:        handler.NewExportHandler(connectionService, stockExportService),
		ProcessConfigs: handler.NewProcessConfigHandler(processConfigService),
		Queues:         handler.NewQueueHandler(queueService, trigger),
		Auth:           handler.NewAuthHandler(authenticator),
	}, authenticator, metrics, log)
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if cfg.Queue.DrainEnabled {
		if err := trigger.Stop(shutdownCtx); err != nil {
			log.Warn("Drain trigger did not stop cleanly", zap.Error(err))
		}
	}
	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Warn("Tracer provider shutdown failed", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// migrate applies the embedded migrations over a dedicated connection
func migrate(databaseURL string, log *zap.Logger) error {
	m, err := migration.NewFromURL(databaseURL, migration.Source{}, log)
	if err != nil {
		return err
	}
	defer m.Close()
	return m.Up()
}

// revocationList returns the Redis backed list when Redis is reachable and the
// in-memory one otherwise. The client is returned so it can be health checked.
func revocationList(ctx context.Context, cfg config.RedisConfig, log *zap.Logger) (auth.RevocationList, *redis.Client) {
	if cfg.Host == "" {
		return auth.NewInMemoryRevocationList(), nil
	}
	client, err := cache.NewRedisClient(ctx, cfg)
	if err != nil {
		log.Warn("Redis unavailable, revoked tokens are tracked per replica", zap.Error(err))
		return auth.NewInMemoryRevocationList(), nil
	}
	return auth.NewRedisRevocationList(client), client
}
