package integration

import (
	"net/url"
	"testing"

	"github.com/erp/shopify-connector/internal/domain/integration"
	"github.com/erp/shopify-connector/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newConnectionService(h *testHarness) *ConnectionService {
	return NewConnectionService(h.connections, h.gateways, h.remote, h.auditor, nil)
}

func gatewayQuery() any {
	return mock.MatchedBy(func(v url.Values) bool { return v.Get("fields") == "payment_gateway_names" })
}

func TestConnectionService_Create(t *testing.T) {
	h := newTestHarness(t)
	svc := newConnectionService(h)
	warehouse := uuid.New()

	resp, err := svc.Create(t.Context(), CreateConnectionRequest{
		Name:        "Second Store",
		Host:        "second.myshopify.com/",
		AccessToken: "shpat_x",
		APISecret:   "s3cret",
		APIVersion:  " 2024-04 ",
		CompanyID:   testCompanyID,
		WarehouseID: &warehouse,
	})
	require.NoError(t, err)
	assert.Equal(t, integration.ConnectionStateDraft, resp.State)
	assert.Equal(t, "2024-04", resp.APIVersion)

	stored, err := svc.Get(t.Context(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", stored.APISecret)
	assert.Equal(t, &warehouse, stored.WarehouseID)

	all, err := svc.List(t.Context())
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = svc.Create(t.Context(), CreateConnectionRequest{Name: "x", Host: "", AccessToken: "t", CompanyID: testCompanyID})
	assert.ErrorIs(t, err, integration.ErrConnectionInvalidHost)
}

func TestConnectionService_Create_DefaultAPIVersion(t *testing.T) {
	h := newTestHarness(t)
	svc := newConnectionService(h).WithDefaultAPIVersion("2025-01")

	resp, err := svc.Create(t.Context(), CreateConnectionRequest{
		Name:        "Third Store",
		Host:        "third.myshopify.com",
		AccessToken: "shpat_y",
		CompanyID:   testCompanyID,
	})
	require.NoError(t, err)
	assert.Equal(t, "2025-01", resp.APIVersion)

	resp, err = svc.Create(t.Context(), CreateConnectionRequest{
		Name:        "Fourth Store",
		Host:        "fourth.myshopify.com",
		AccessToken: "shpat_z",
		APIVersion:  "2024-07",
		CompanyID:   testCompanyID,
	})
	require.NoError(t, err)
	assert.Equal(t, "2024-07", resp.APIVersion)
}

func TestConnectionService_Test(t *testing.T) {
	t.Run("success integrates and syncs gateways", func(t *testing.T) {
		h := newTestHarness(t)
		h.conn.ResetToDraft()
		svc := newConnectionService(h)
		h.remote.On("Fetch", mock.Anything, h.conn, "shop", mock.Anything).
			Return(okResponse(`{"shop": {"iana_timezone": "Europe/Berlin", "currency": "EUR", "primary_location_id": 4411}}`), nil).Once()
		h.remote.On("Fetch", mock.Anything, h.conn, "orders", gatewayQuery()).
			Return(okResponse(`{"orders": [{"payment_gateway_names": ["paypal"]}]}`), nil).Once()

		result, err := svc.Test(t.Context(), h.conn.ID)
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, "Connection successful", result.Message)
		assert.Equal(t, 1, result.GatewaysCreated)
		assert.Equal(t, integration.ConnectionStateIntegrated, result.Connection.State)
		assert.Equal(t, "Europe/Berlin", h.conn.TimeZone)
		assert.Equal(t, "EUR", h.conn.CurrencyCode)
		assert.Equal(t, shared.ExternalID("4411"), h.conn.RemoteLocationID)
		h.remote.AssertExpectations(t)
	})

	t.Run("rejected credentials mark the connection errored", func(t *testing.T) {
		h := newTestHarness(t)
		svc := newConnectionService(h)
		h.remote.On("Fetch", mock.Anything, h.conn, "shop", mock.Anything).
			Return(nil, &integration.RemoteStatusError{StatusCode: 401, Body: "Invalid API key"}).Once()

		result, err := svc.Test(t.Context(), h.conn.ID)
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Contains(t, result.Message, "401")
		assert.Equal(t, integration.ConnectionStateError, h.conn.State)
		assert.NotEmpty(t, h.conn.LastError)
		require.Len(t, h.logs.all(), 1)
		h.remote.AssertNotCalled(t, "Fetch", mock.Anything, h.conn, "orders", mock.Anything)
	})

	t.Run("gateway sync failure does not fail the test", func(t *testing.T) {
		h := newTestHarness(t)
		svc := newConnectionService(h)
		h.remote.On("Fetch", mock.Anything, h.conn, "shop", mock.Anything).
			Return(okResponse(`{"shop": {"iana_timezone": "UTC", "currency": "USD"}}`), nil).Once()
		h.remote.On("Fetch", mock.Anything, h.conn, "orders", gatewayQuery()).
			Return(nil, integration.ErrRemoteUnavailable).Once()

		result, err := svc.Test(t.Context(), h.conn.ID)
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Zero(t, result.GatewaysCreated)
	})

	t.Run("unknown connection", func(t *testing.T) {
		h := newTestHarness(t)
		_, err := newConnectionService(h).Test(t.Context(), uuid.New())
		assert.ErrorIs(t, err, integration.ErrConnectionNotFound)
	})
}

func TestConnectionService_ResetToDraft(t *testing.T) {
	h := newTestHarness(t)
	resp, err := newConnectionService(h).ResetToDraft(t.Context(), h.conn.ID)
	require.NoError(t, err)
	assert.Equal(t, integration.ConnectionStateDraft, resp.State)
	assert.False(t, h.conn.IsOperational())
}
