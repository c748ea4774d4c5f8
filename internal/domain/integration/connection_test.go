package integration

import (
	"net/url"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConnection(t *testing.T) {
	companyID := uuid.New()

	t.Run("Valid connection is a draft with normalized host", func(t *testing.T) {
		conn, err := NewConnection("Main store", "demo.myshopify.com/", "shpat_123", companyID)
		require.NoError(t, err)
		assert.Equal(t, "https://demo.myshopify.com", conn.Host)
		assert.Equal(t, ConnectionStateDraft, conn.State)
		assert.Equal(t, DefaultAPIVersion, conn.APIVersion)
		assert.True(t, conn.Active)
		assert.False(t, conn.IsOperational())
	})

	t.Run("Missing name", func(t *testing.T) {
		_, err := NewConnection("  ", "demo.myshopify.com", "tok", companyID)
		assert.ErrorIs(t, err, ErrConnectionInvalidName)
	})

	t.Run("Missing host", func(t *testing.T) {
		_, err := NewConnection("Main", " / ", "tok", companyID)
		assert.ErrorIs(t, err, ErrConnectionInvalidHost)
	})

	t.Run("Missing token", func(t *testing.T) {
		_, err := NewConnection("Main", "demo.myshopify.com", "", companyID)
		assert.ErrorIs(t, err, ErrConnectionInvalidToken)
	})
}

func TestNormalizeHost(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"demo.myshopify.com", "https://demo.myshopify.com"},
		{"demo.myshopify.com///", "https://demo.myshopify.com"},
		{"http://demo.myshopify.com/", "http://demo.myshopify.com"},
		{"https://demo.myshopify.com", "https://demo.myshopify.com"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeHost(tt.in))
		})
	}
}

func TestConnection_MatchesDomain(t *testing.T) {
	conn, err := NewConnection("Main", "https://Demo.myshopify.com", "tok", uuid.New())
	require.NoError(t, err)

	assert.True(t, conn.MatchesDomain("demo.myshopify.com"))
	assert.True(t, conn.MatchesDomain("DEMO.MYSHOPIFY.COM"))
	assert.True(t, conn.MatchesDomain("https://demo.myshopify.com/"))
	assert.False(t, conn.MatchesDomain("other.myshopify.com"))
	assert.False(t, conn.MatchesDomain(""))
}

func TestConnection_ResourceURL(t *testing.T) {
	conn, err := NewConnection("Main", "demo.myshopify.com", "tok", uuid.New())
	require.NoError(t, err)

	assert.Equal(t, "https://demo.myshopify.com/admin/api/2024-04/shop.json", conn.ResourceURL("shop", nil))

	q := url.Values{}
	q.Set("limit", "250")
	assert.Equal(t, "https://demo.myshopify.com/admin/api/2024-04/customers.json?limit=250", conn.ResourceURL("/customers", q))

	conn.APIVersion = "2025-01"
	assert.Equal(t, "https://demo.myshopify.com/admin/api/2025-01/webhooks/42.json", conn.ResourceURL("webhooks/42", nil))
}

func TestConnection_Lifecycle(t *testing.T) {
	conn, err := NewConnection("Main", "demo.myshopify.com", "tok", uuid.New())
	require.NoError(t, err)

	conn.MarkIntegrated("Asia/Kolkata", "INR", "6884")
	assert.Equal(t, ConnectionStateIntegrated, conn.State)
	assert.Equal(t, "Asia/Kolkata", conn.TimeZone)
	assert.Equal(t, "INR", conn.CurrencyCode)
	assert.EqualValues(t, "6884", conn.RemoteLocationID)
	assert.NotNil(t, conn.LastTestedAt)
	assert.True(t, conn.IsOperational())

	conn.Active = false
	assert.False(t, conn.IsOperational())
	conn.Active = true

	conn.MarkError("401 Unauthorized")
	assert.Equal(t, ConnectionStateError, conn.State)
	assert.Equal(t, "401 Unauthorized", conn.LastError)
	assert.False(t, conn.IsOperational())

	conn.ResetToDraft()
	assert.Equal(t, ConnectionStateDraft, conn.State)
	assert.Empty(t, conn.LastError)
}
