package integration

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/erp/shopify-connector/internal/domain/integration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func customerListBody(n int) string {
	items := make([]string, n)
	for i, raw := range customerPayloads(n) {
		items[i] = string(raw)
	}
	return `{"customers": [` + strings.Join(items, ",") + `]}`
}

func TestImportService_ImportCustomers(t *testing.T) {
	t.Run("single object is applied at once", func(t *testing.T) {
		h := newTestHarness(t)
		h.remote.On("Fetch", mock.Anything, h.conn, "customers", url.Values{"ids": {"555"}}).
			Return(okResponse(`{"customer": {"id": 555, "first_name": "A", "last_name": "B"}}`), nil).Once()

		result, err := h.imports.ImportCustomers(t.Context(), h.conn, []string{" 555 ", ""})
		require.NoError(t, err)
		assert.Equal(t, "555", result.ExternalID)
		assert.Equal(t, 1, result.Lines)
		assert.Empty(t, result.Queues)
		assert.Equal(t, 1, h.customers.count())
		h.remote.AssertExpectations(t)
	})

	t.Run("list is enqueued, not applied", func(t *testing.T) {
		h := newTestHarness(t)
		h.remote.On("Fetch", mock.Anything, h.conn, "customers", url.Values{"limit": {"250"}}).
			Return(okResponse(customerListBody(3)), nil).Once()

		result, err := h.imports.ImportCustomers(t.Context(), h.conn, nil)
		require.NoError(t, err)
		require.Len(t, result.Queues, 1)
		assert.Equal(t, 3, result.Lines)
		assert.Equal(t, 0, h.customers.count())
	})

	t.Run("empty list creates nothing", func(t *testing.T) {
		h := newTestHarness(t)
		h.remote.On("Fetch", mock.Anything, h.conn, "customers", mock.Anything).
			Return(okResponse(`{"customers": []}`), nil).Once()

		result, err := h.imports.ImportCustomers(t.Context(), h.conn, nil)
		require.NoError(t, err)
		assert.Zero(t, result.Lines)
		assert.Zero(t, h.queues.totalLines())
	})

	t.Run("remote failure is audited", func(t *testing.T) {
		h := newTestHarness(t)
		h.remote.On("Fetch", mock.Anything, h.conn, "customers", mock.Anything).
			Return(nil, integration.ErrRemoteUnavailable).Once()

		_, err := h.imports.ImportCustomers(t.Context(), h.conn, nil)
		assert.ErrorIs(t, err, integration.ErrRemoteUnavailable)
		require.Len(t, h.logs.all(), 1)
		assert.True(t, h.logs.all()[0].HasErrors())
	})

	t.Run("unexpected body shape is an invalid payload", func(t *testing.T) {
		h := newTestHarness(t)
		h.remote.On("Fetch", mock.Anything, h.conn, "customers", mock.Anything).
			Return(okResponse(`{"errors": "Not Found"}`), nil).Once()

		_, err := h.imports.ImportCustomers(t.Context(), h.conn, nil)
		assert.ErrorIs(t, err, integration.ErrRemoteInvalidPayload)
	})

	t.Run("connection must be integrated", func(t *testing.T) {
		h := newTestHarness(t)
		h.conn.ResetToDraft()

		_, err := h.imports.ImportCustomers(t.Context(), h.conn, nil)
		assert.ErrorIs(t, err, integration.ErrConnectionNotIntegrated)
		h.remote.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestImportService_ImportOrders(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		mode OrderImportMode
		key  string
		val  string
	}{
		{"unshipped", OrderImportUnshipped, "fulfillment_status", "unshipped"},
		{"shipped", OrderImportShipped, "fulfillment_status", "shipped"},
		{"all", OrderImportAll, "status", "any"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newTestHarness(t)
			want := url.Values{
				"created_at_min": {"2024-01-01T00:00:00Z"},
				"created_at_max": {"2024-01-31T00:00:00Z"},
				tc.key:           {tc.val},
			}
			h.remote.On("Fetch", mock.Anything, h.conn, "orders", want).
				Return(okResponse(`{"orders": [{"id": 1}, {"id": 2}]}`), nil).Once()

			result, err := h.imports.ImportOrders(t.Context(), h.conn, OrderImportRequest{Mode: tc.mode, From: from, To: to})
			require.NoError(t, err)
			assert.Equal(t, 2, result.Lines)
			h.remote.AssertExpectations(t)
		})
	}

	t.Run("explicit ids win over the window", func(t *testing.T) {
		h := newTestHarness(t)
		h.remote.On("Fetch", mock.Anything, h.conn, "orders", url.Values{"ids": {"1,2"}}).
			Return(okResponse(`{"orders": [{"id": 1}, {"id": 2}]}`), nil).Once()

		_, err := h.imports.ImportOrders(t.Context(), h.conn, OrderImportRequest{IDs: []string{"1", "2"}, From: to, To: from})
		require.NoError(t, err)
		h.remote.AssertExpectations(t)
	})

	t.Run("reversed window is rejected", func(t *testing.T) {
		h := newTestHarness(t)
		_, err := h.imports.ImportOrders(t.Context(), h.conn, OrderImportRequest{From: to, To: from})
		assert.ErrorIs(t, err, integration.ErrInvalidDateRange)
	})

	t.Run("unknown mode is rejected", func(t *testing.T) {
		h := newTestHarness(t)
		_, err := h.imports.ImportOrders(t.Context(), h.conn, OrderImportRequest{Mode: "returned"})
		assert.Error(t, err)
	})
}

func TestImportService_ImportPaymentGateways(t *testing.T) {
	h := newTestHarness(t)
	h.gatewayFor(t, "manual")
	h.remote.On("Fetch", mock.Anything, h.conn, "orders", mock.MatchedBy(func(v url.Values) bool {
		return v.Get("fields") == "payment_gateway_names" && v.Get("status") == "any" && v.Get("limit") == "250"
	})).Return(okResponse(`{"orders": [
		{"payment_gateway_names": ["manual", "razorpay"]},
		{"payment_gateway_names": ["razorpay", " "]},
		{"payment_gateway_names": []}
	]}`), nil).Once()

	result, err := h.imports.ImportPaymentGateways(t.Context(), h.conn, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, []string{"manual", "razorpay"}, result.Codes)
	assert.Equal(t, 1, result.Created)
	assert.Len(t, h.gateways.rows, 2)
}
