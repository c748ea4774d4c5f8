package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	app "github.com/erp/shopify-connector/internal/application/integration"
	"github.com/erp/shopify-connector/internal/domain/integration"
	"github.com/erp/shopify-connector/internal/infrastructure/scheduler"
	"github.com/erp/shopify-connector/internal/interfaces/http/dto"
	"github.com/erp/shopify-connector/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	UseJSONFieldNames()
}

// MockConnectionService implements ConnectionService for testing
type MockConnectionService struct {
	mock.Mock
}

func (m *MockConnectionService) Create(ctx context.Context, req app.CreateConnectionRequest) (*app.ConnectionResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*app.ConnectionResponse), args.Error(1)
}

func (m *MockConnectionService) Get(ctx context.Context, id uuid.UUID) (*integration.Connection, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.Connection), args.Error(1)
}

func (m *MockConnectionService) List(ctx context.Context) ([]app.ConnectionResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]app.ConnectionResponse), args.Error(1)
}

func (m *MockConnectionService) Test(ctx context.Context, id uuid.UUID) (*app.ConnectionTestResult, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*app.ConnectionTestResult), args.Error(1)
}

func (m *MockConnectionService) ResetToDraft(ctx context.Context, id uuid.UUID) (*app.ConnectionResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*app.ConnectionResponse), args.Error(1)
}

// MockWebhookRegistrar implements WebhookRegistrar for testing
type MockWebhookRegistrar struct {
	mock.Mock
}

func (m *MockWebhookRegistrar) Register(ctx context.Context, connectionID uuid.UUID, topic integration.WebhookTopic) (*app.WebhookResponse, error) {
	args := m.Called(ctx, connectionID, topic)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*app.WebhookResponse), args.Error(1)
}

func (m *MockWebhookRegistrar) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockWebhookRegistrar) List(ctx context.Context, connectionID uuid.UUID) ([]app.WebhookResponse, error) {
	args := m.Called(ctx, connectionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]app.WebhookResponse), args.Error(1)
}

// MockImporter implements Importer for testing
type MockImporter struct {
	mock.Mock
}

func (m *MockImporter) ImportCustomers(ctx context.Context, conn *integration.Connection, ids []string) (*app.ImportResult, error) {
	args := m.Called(ctx, conn, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*app.ImportResult), args.Error(1)
}

func (m *MockImporter) ImportProducts(ctx context.Context, conn *integration.Connection, ids []string) (*app.ImportResult, error) {
	args := m.Called(ctx, conn, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*app.ImportResult), args.Error(1)
}

func (m *MockImporter) ImportOrders(ctx context.Context, conn *integration.Connection, req app.OrderImportRequest) (*app.ImportResult, error) {
	args := m.Called(ctx, conn, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*app.ImportResult), args.Error(1)
}

func (m *MockImporter) ImportPaymentGateways(ctx context.Context, conn *integration.Connection, from, to time.Time) (*app.GatewayImportResult, error) {
	args := m.Called(ctx, conn, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*app.GatewayImportResult), args.Error(1)
}

// MockStockExporter implements StockExporter for testing
type MockStockExporter struct {
	mock.Mock
}

func (m *MockStockExporter) ExportStock(ctx context.Context, conn *integration.Connection) (*app.StockExportResult, error) {
	args := m.Called(ctx, conn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*app.StockExportResult), args.Error(1)
}

// MockProcessConfigService implements ProcessConfigService for testing
type MockProcessConfigService struct {
	mock.Mock
}

func (m *MockProcessConfigService) CreateWorkflow(ctx context.Context, req app.CreateWorkflowRequest) (*app.WorkflowResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*app.WorkflowResponse), args.Error(1)
}

func (m *MockProcessConfigService) ListWorkflows(ctx context.Context) ([]app.WorkflowResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]app.WorkflowResponse), args.Error(1)
}

func (m *MockProcessConfigService) DeactivateWorkflow(ctx context.Context, id uuid.UUID) (*app.WorkflowResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*app.WorkflowResponse), args.Error(1)
}

func (m *MockProcessConfigService) CreateConfig(ctx context.Context, connectionID uuid.UUID, req app.CreateProcessConfigRequest) (*app.ProcessConfigResponse, error) {
	args := m.Called(ctx, connectionID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*app.ProcessConfigResponse), args.Error(1)
}

func (m *MockProcessConfigService) ListConfigs(ctx context.Context, connectionID uuid.UUID) ([]app.ProcessConfigResponse, error) {
	args := m.Called(ctx, connectionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]app.ProcessConfigResponse), args.Error(1)
}

func (m *MockProcessConfigService) DeactivateConfig(ctx context.Context, id uuid.UUID) (*app.ProcessConfigResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*app.ProcessConfigResponse), args.Error(1)
}

// MockQueueService implements QueueService for testing
type MockQueueService struct {
	mock.Mock
}

func (m *MockQueueService) Drain(ctx context.Context, queueID uuid.UUID) (*app.DrainResult, error) {
	args := m.Called(ctx, queueID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*app.DrainResult), args.Error(1)
}

func (m *MockQueueService) List(ctx context.Context, connectionID uuid.UUID) ([]app.QueueResponse, error) {
	args := m.Called(ctx, connectionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]app.QueueResponse), args.Error(1)
}

func (m *MockQueueService) Get(ctx context.Context, queueID uuid.UUID) (*app.QueueDetailResponse, error) {
	args := m.Called(ctx, queueID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*app.QueueDetailResponse), args.Error(1)
}

// MockPendingDrainer implements PendingDrainer for testing
type MockPendingDrainer struct {
	mock.Mock
}

func (m *MockPendingDrainer) RunOnce(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockPendingDrainer) Last() scheduler.Snapshot {
	return m.Called().Get(0).(scheduler.Snapshot)
}

// MockWebhookReceiver implements WebhookReceiver for testing
type MockWebhookReceiver struct {
	mock.Mock
}

func (m *MockWebhookReceiver) Receive(ctx context.Context, d app.WebhookDelivery) app.WebhookOutcome {
	return m.Called(ctx, d).Get(0).(app.WebhookOutcome)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func newTestEngine() *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID())
	return r
}

func perform(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}
