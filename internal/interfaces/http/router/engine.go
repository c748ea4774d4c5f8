package router

import (
	"net/http"

	_ "github.com/erp/shopify-connector/docs"
	"github.com/erp/shopify-connector/internal/infrastructure/auth"
	"github.com/erp/shopify-connector/internal/infrastructure/logger"
	"github.com/erp/shopify-connector/internal/interfaces/http/handler"
	"github.com/erp/shopify-connector/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// MetricsExporter records HTTP requests and serves the scrape endpoint
type MetricsExporter interface {
	middleware.HTTPObserver
	Handler() http.Handler
}

// Config holds the engine switches
type Config struct {
	Mode           string // gin mode: debug, release or test
	ServiceName    string
	TracingEnabled bool
	TrustedProxies []string
	MaxBodySize    int64
	WebhookMaxBody int64
	RateLimit      float64
	RateBurst      int
	MetricsEnabled bool
	MetricsPath    string
	SwaggerEnabled bool
}

// Handlers are the HTTP handlers mounted by the engine
type Handlers struct {
	System         *handler.SystemHandler
	Webhooks       *handler.WebhookHandler
	Connections    *handler.ConnectionHandler
	Imports        *handler.ImportHandler
	Exports        *handler.ExportHandler
	ProcessConfigs *handler.ProcessConfigHandler
	Queues         *handler.QueueHandler
	Auth           *handler.AuthHandler
}

// NewEngine builds the gin engine: health checks and metrics at the root, Shopify
// webhooks under /webhooks/shopify, and the token protected admin API
// under /api/v1
func NewEngine(cfg Config, h Handlers, authn middleware.TokenAuthenticator, metrics MetricsExporter, log *zap.Logger) (*gin.Engine, error) {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	handler.UseJSONFieldNames()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}

	engine.Use(
		middleware.RequestID(),
		middleware.Tracing(middleware.TracingConfig{ServiceName: cfg.ServiceName, Enabled: cfg.TracingEnabled}),
		middleware.SpanEnricher(),
		logger.GinMiddleware(log),
	)
	if metrics != nil {
		engine.Use(middleware.Metrics(metrics))
	}
	engine.Use(logger.Recovery(log))

	if metrics != nil && cfg.MetricsEnabled {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		engine.GET(path, gin.WrapH(metrics.Handler()))
	}

	engine.GET("/healthz", h.System.Live)
	engine.GET("/readyz", h.System.Ready)

	if cfg.SwaggerEnabled {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	webhookLimit := cfg.WebhookMaxBody
	if webhookLimit <= 0 {
		webhookLimit = cfg.MaxBodySize
	}
	h.Webhooks.WithBodyLimit(webhookLimit).RegisterRoutes(engine.Group(""))

	apiMiddleware := []gin.HandlerFunc{
		middleware.Secure(),
		middleware.BodyLimit(cfg.MaxBodySize),
		middleware.Authenticate(authn),
	}
	if cfg.RateLimit > 0 {
		apiMiddleware = append(apiMiddleware, middleware.RateLimit(middleware.NewRateLimiter(cfg.RateLimit, cfg.RateBurst)))
	}

	r := NewRouter(engine, WithAPIMiddleware(apiMiddleware...))
	for _, g := range apiGroups(h) {
		r.Register(g)
	}
	r.Setup()
	return engine, nil
}

func apiGroups(h Handlers) []*DomainGroup {
	read := middleware.RequireScope(auth.ScopeRead)
	write := middleware.RequireScope(auth.ScopeWrite)

	system := NewDomainGroup("system", "/system").
		GET("/info", read, h.System.Info)

	authGroup := NewDomainGroup("auth", "/auth").
		GET("/me", h.Auth.Me).
		POST("/revoke", h.Auth.Revoke)

	connections := NewDomainGroup("connections", "/connections").
		GET("", read, h.Connections.List).
		POST("", write, h.Connections.Create).
		GET("/:id", read, h.Connections.Get).
		POST("/:id/test", write, h.Connections.Test).
		POST("/:id/reset", write, h.Connections.Reset).
		GET("/:id/webhooks", read, h.Connections.ListWebhooks).
		POST("/:id/webhooks", write, h.Connections.RegisterWebhook).
		GET("/:id/queues", read, h.Queues.ListByConnection).
		POST("/:id/import/customers", write, h.Imports.ImportCustomers).
		POST("/:id/import/products", write, h.Imports.ImportProducts).
		POST("/:id/import/orders", write, h.Imports.ImportOrders).
		POST("/:id/import/gateways", write, h.Imports.ImportPaymentGateways).
		POST("/:id/export/stock", write, h.Exports.ExportStock).
		GET("/:id/process-configs", read, h.ProcessConfigs.ListConfigs).
		POST("/:id/process-configs", write, h.ProcessConfigs.CreateConfig)

	webhooks := NewDomainGroup("webhooks", "/webhooks").
		DELETE("/:webhook_id", write, h.Connections.DeleteWebhook)

	queues := NewDomainGroup("queues", "/queues").
		GET("/:queue_id", read, h.Queues.Get).
		POST("/:queue_id/drain", write, h.Queues.Drain)

	drainRuns := NewDomainGroup("drain-runs", "/drain-runs").
		POST("", write, h.Queues.DrainPending).
		GET("/last", read, h.Queues.DrainStatus)

	workflows := NewDomainGroup("workflows", "/workflows").
		GET("", read, h.ProcessConfigs.ListWorkflows).
		POST("", write, h.ProcessConfigs.CreateWorkflow).
		POST("/:workflow_id/deactivate", write, h.ProcessConfigs.DeactivateWorkflow)

	processConfigs := NewDomainGroup("process-configs", "/process-configs").
		POST("/:config_id/deactivate", write, h.ProcessConfigs.DeactivateConfig)

	return []*DomainGroup{system, authGroup, connections, webhooks, queues, drainRuns, workflows, processConfigs}
}
