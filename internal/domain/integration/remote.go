package integration

import (
	"context"
	"net/url"

	"github.com/erp/shopify-connector/internal/domain/shared"
)

// RemoteResponse is a successful (2xx) response from the remote platform
type RemoteResponse struct {
	StatusCode int
	Body       []byte
}

// RemoteClient is the outbound port to the remote platform.
// Transport failures wrap ErrRemoteUnavailable; non-2xx responses are
// returned as *RemoteStatusError, which unwraps to ErrRemoteRequestFailed.
type RemoteClient interface {
	// Fetch GETs a resource with query filters, e.g. ("customers", ids=1,2)
	Fetch(ctx context.Context, conn *Connection, resource string, filters url.Values) (*RemoteResponse, error)

	// FetchByID GETs a single entity, e.g. ("customers", 555) -> customers/555.json
	FetchByID(ctx context.Context, conn *Connection, resource string, id shared.ExternalID) (*RemoteResponse, error)

	// Post POSTs a JSON body to a resource
	Post(ctx context.Context, conn *Connection, resource string, body any) (*RemoteResponse, error)

	// Delete DELETEs a resource, e.g. "webhooks/123"
	Delete(ctx context.Context, conn *Connection, resource string) (*RemoteResponse, error)
}

// ImageFetcher downloads a public image (no platform authentication)
type ImageFetcher interface {
	FetchImage(ctx context.Context, src string) (data []byte, contentType string, err error)
}

// ImageStore persists product images and returns the stored key
type ImageStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}
