package integration

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/erp/shopify-connector/internal/domain/shared"
	"github.com/google/uuid"
)

// DefaultAPIVersion is the Admin API version used when a connection does not pin one
const DefaultAPIVersion = "2024-04"

// ---------------------------------------------------------------------------
// ConnectionState
// ---------------------------------------------------------------------------

// ConnectionState is the lifecycle state of a Connection
type ConnectionState string

const (
	// ConnectionStateDraft is a configured but untested connection
	ConnectionStateDraft ConnectionState = "draft"
	// ConnectionStateIntegrated is a connection whose credentials were verified
	ConnectionStateIntegrated ConnectionState = "integrated"
	// ConnectionStateError is a connection whose last test failed
	ConnectionStateError ConnectionState = "error"
)

// IsValid returns true if the state is valid
func (s ConnectionState) IsValid() bool {
	switch s {
	case ConnectionStateDraft, ConnectionStateIntegrated, ConnectionStateError:
		return true
	default:
		return false
	}
}

// String returns the string representation of ConnectionState
func (s ConnectionState) String() string {
	return string(s)
}

// ---------------------------------------------------------------------------
// Connection
// ---------------------------------------------------------------------------

// Connection is a configured link to one remote Shopify store.
// It owns WebhookRegistrations and OrderProcessConfigs.
type Connection struct {
	shared.BaseEntity
	// Name is a human-readable label
	Name string
	// Host is the store base URL, always with scheme and without trailing slash
	Host string
	// APIKey is the app API key
	APIKey string
	// AccessToken is the Admin API access token sent on every request
	AccessToken string
	// APISecret is the shared secret used to sign webhook deliveries
	APISecret string
	// APIVersion is the Admin API version, e.g. "2024-04"
	APIVersion string
	// TimeZone is the store IANA time zone reported by shop.json
	TimeZone string
	// CurrencyCode is the store currency reported by shop.json
	CurrencyCode string
	// CompanyID is the local company records are created for
	CompanyID uuid.UUID
	// WarehouseID is the default local warehouse for orders
	WarehouseID *uuid.UUID
	// LocationID is the default local stock location
	LocationID *uuid.UUID
	// RemoteLocationID is the store's primary location id
	RemoteLocationID shared.ExternalID
	// State is the lifecycle state
	State ConnectionState
	// LastError holds the last connection test failure
	LastError string
	// LastTestedAt is when the connection was last tested
	LastTestedAt *time.Time
	// Active allows disabling a connection without deleting it
	Active bool
}

// NewConnection creates a draft connection
func NewConnection(name, host, accessToken string, companyID uuid.UUID) (*Connection, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrConnectionInvalidName
	}
	host = NormalizeHost(host)
	if host == "" {
		return nil, ErrConnectionInvalidHost
	}
	if strings.TrimSpace(accessToken) == "" {
		return nil, ErrConnectionInvalidToken
	}

	return &Connection{
		BaseEntity:  shared.NewBaseEntity(),
		Name:        name,
		Host:        host,
		AccessToken: accessToken,
		APIVersion:  DefaultAPIVersion,
		CompanyID:   companyID,
		State:       ConnectionStateDraft,
		Active:      true,
	}, nil
}

// NormalizeHost strips surrounding space and trailing slashes and adds the
// https scheme when none is given. Returns "" for an empty host.
func NormalizeHost(host string) string {
	host = strings.TrimRight(strings.TrimSpace(host), "/")
	if host == "" {
		return ""
	}
	if !strings.Contains(host, "://") {
		host = "https://" + host
	}
	return host
}

// Domain returns the host without scheme, lower-cased
func (c *Connection) Domain() string {
	return hostDomain(c.Host)
}

// MatchesDomain reports whether a shop domain (as sent in X-Shopify-Shop-Domain)
// belongs to this connection. The comparison ignores case and scheme.
func (c *Connection) MatchesDomain(domain string) bool {
	d := hostDomain(domain)
	return d != "" && d == c.Domain()
}

func hostDomain(host string) string {
	host = strings.ToLower(strings.TrimRight(strings.TrimSpace(host), "/"))
	if i := strings.Index(host, "://"); i >= 0 {
		host = host[i+3:]
	}
	return host
}

// IsOperational reports whether inbound events may be processed
func (c *Connection) IsOperational() bool {
	return c.Active && c.State == ConnectionStateIntegrated
}

// ResourceURL builds {host}/admin/api/{version}/{resource}.json
func (c *Connection) ResourceURL(resource string, query url.Values) string {
	version := c.APIVersion
	if version == "" {
		version = DefaultAPIVersion
	}
	u := fmt.Sprintf("%s/admin/api/%s/%s.json", c.Host, version, strings.Trim(resource, "/"))
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// MarkIntegrated records a successful connection test
func (c *Connection) MarkIntegrated(timeZone, currency string, remoteLocationID shared.ExternalID) {
	now := time.Now()
	c.State = ConnectionStateIntegrated
	c.TimeZone = timeZone
	c.CurrencyCode = currency
	c.RemoteLocationID = remoteLocationID
	c.LastError = ""
	c.LastTestedAt = &now
	c.Touch()
}

// MarkError records a failed connection test
func (c *Connection) MarkError(reason string) {
	now := time.Now()
	c.State = ConnectionStateError
	c.LastError = reason
	c.LastTestedAt = &now
	c.Touch()
}

// ResetToDraft moves the connection back to draft
func (c *Connection) ResetToDraft() {
	c.State = ConnectionStateDraft
	c.LastError = ""
	c.Touch()
}
