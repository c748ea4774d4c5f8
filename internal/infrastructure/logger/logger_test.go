package logger

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/erp/shopify-connector/internal/infrastructure/config"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestNew(t *testing.T) {
	t.Run("stdout console logger", func(t *testing.T) {
		l, err := New(DefaultConfig())
		require.NoError(t, err)
		assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
		assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("file output", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "connector.log")
		l, err := New(&Config{Level: "debug", Format: "json", Output: path})
		require.NoError(t, err)
		assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("unwritable file output fails", func(t *testing.T) {
		_, err := New(&Config{Output: filepath.Join(t.TempDir(), "missing", "x.log")})
		assert.Error(t, err)
	})
}

func TestFromAppConfig(t *testing.T) {
	cfg := &config.Config{
		App: config.AppConfig{Name: "shopify-connector", Env: "production"},
		Log: config.LogConfig{Level: "warn", Format: "console", Output: "stderr"},
	}
	lc := FromAppConfig(cfg)
	assert.Equal(t, "json", lc.Format)
	assert.Equal(t, "warn", lc.Level)
	assert.Equal(t, "shopify-connector", lc.Service)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("loud"))
}

func TestContextFields(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, Fields(ctx))

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx = trace.ContextWithSpanContext(ctx, trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled,
	}))
	ctx = WithRequestID(ctx, "req-1")
	ctx = WithConnectionID(ctx, "conn-1")
	ctx = WithWebhookID(ctx, "wh-1")

	core, recorded := observer.New(zapcore.InfoLevel)
	Enrich(ctx, zap.New(core)).Info("hello")

	entry := recorded.All()[0].ContextMap()
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", entry["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", entry["span_id"])
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "conn-1", entry["connection_id"])
	assert.Equal(t, "wh-1", entry["webhook_id"])
}

func TestFromContext(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))

	core, recorded := observer.New(zapcore.InfoLevel)
	ctx := WithContext(context.Background(), zap.New(core))
	L(WithRequestID(ctx, "r")).Info("via context")
	require.Len(t, recorded.All(), 1)
	assert.Equal(t, "r", recorded.All()[0].ContextMap()["request_id"])
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	core, recorded := observer.New(zapcore.InfoLevel)
	router := gin.New()
	router.Use(func(c *gin.Context) { c.Set("request_id", "req-42") })
	router.Use(GinMiddleware(zap.New(core)))
	router.POST("/webhooks/shopify/orders/create", func(c *gin.Context) {
		FromContext(c.Request.Context()).Info("inside handler")
		c.String(http.StatusOK, "received")
	})
	router.GET("/boom", func(c *gin.Context) { c.Status(http.StatusBadGateway) })

	req := httptest.NewRequest(http.MethodPost, "/webhooks/shopify/orders/create", nil)
	req.Header.Set("X-Shopify-Topic", "orders/create")
	req.Header.Set("X-Shopify-Shop-Domain", "test-store.myshopify.com")
	req.Header.Set("X-Shopify-Webhook-Id", "wh-9")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	logs := recorded.FilterMessage("inside handler").All()
	require.Len(t, logs, 1)
	fields := logs[0].ContextMap()
	assert.Equal(t, "req-42", fields["request_id"])
	assert.Equal(t, "wh-9", fields["webhook_id"])
	assert.Equal(t, "orders/create", fields["topic"])

	reqLogs := recorded.FilterMessage("HTTP Request").All()
	require.Len(t, reqLogs, 1)
	assert.Equal(t, zapcore.InfoLevel, reqLogs[0].Level)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	reqLogs = recorded.FilterMessage("HTTP Request").All()
	require.Len(t, reqLogs, 2)
	assert.Equal(t, zapcore.ErrorLevel, reqLogs[1].Level)
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	core, recorded := observer.New(zapcore.ErrorLevel)
	router := gin.New()
	router.Use(Recovery(zap.New(core)))
	router.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Len(t, recorded.FilterMessage("Panic recovered").All(), 1)
}

type sqlStateError struct{ code string }

func (e sqlStateError) Error() string    { return "pq: " + e.code }
func (e sqlStateError) SQLState() string { return e.code }

func TestGormLogger_Trace(t *testing.T) {
	sql := func() (string, int64) { return `SELECT * FROM "customers"`, 1 }

	t.Run("expected upsert errors are not logged", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		gl := NewGormLogger(zap.New(core), gormlogger.Warn)

		gl.Trace(context.Background(), time.Now(), sql, gormlogger.ErrRecordNotFound)
		gl.Trace(context.Background(), time.Now(), sql, sqlStateError{"23505"})
		assert.Zero(t, recorded.Len())
	})

	t.Run("other errors are logged with the statement", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		gl := NewGormLogger(zap.New(core), gormlogger.Warn)

		gl.Trace(WithConnectionID(context.Background(), "c1"), time.Now(), sql, errors.New("connection reset"))
		require.Equal(t, 1, recorded.Len())
		entry := recorded.All()[0]
		assert.Equal(t, "SQL Error", entry.Message)
		assert.Equal(t, `SELECT * FROM "customers"`, entry.ContextMap()["sql"])
		assert.Equal(t, "c1", entry.ContextMap()["connection_id"])
	})

	t.Run("slow queries warn without sql unless enabled", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		gl := NewGormLogger(zap.New(core), gormlogger.Warn, WithSlowThreshold(time.Millisecond))

		gl.Trace(context.Background(), time.Now().Add(-time.Second), sql, nil)
		require.Equal(t, 1, recorded.Len())
		assert.Equal(t, "Slow SQL", recorded.All()[0].Message)
		assert.NotContains(t, recorded.All()[0].ContextMap(), "sql")
	})

	t.Run("silent logs nothing", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		gl := NewGormLogger(zap.New(core), gormlogger.Warn).LogMode(gormlogger.Silent)

		gl.Trace(context.Background(), time.Now(), sql, errors.New("x"))
		assert.Zero(t, recorded.Len())
	})
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel(""))
}
