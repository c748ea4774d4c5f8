package ecommerce

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/erp/shopify-connector/internal/domain/integration"
)

// HTTPImageFetcher downloads public product images from the platform CDN
type HTTPImageFetcher struct {
	httpClient *http.Client
	maxBytes   int64
}

// NewHTTPImageFetcher creates an image fetcher. maxBytes <= 0 uses 5MB.
func NewHTTPImageFetcher(timeout time.Duration, maxBytes int64) *HTTPImageFetcher {
	if maxBytes <= 0 {
		maxBytes = 5 * 1024 * 1024
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPImageFetcher{
		httpClient: &http.Client{Timeout: timeout},
		maxBytes:   maxBytes,
	}
}

// FetchImage GETs src and returns its bytes and media type. Only http(s)
// sources serving an image/* content type are accepted.
func (f *HTTPImageFetcher) FetchImage(ctx context.Context, src string) ([]byte, string, error) {
	u, err := url.Parse(strings.TrimSpace(src))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, "", fmt.Errorf("%w: invalid image url %q", integration.ErrRemoteInvalidPayload, src)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, "", fmt.Errorf("shopify: failed to create image request: %w", err)
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", integration.ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", &integration.RemoteStatusError{StatusCode: resp.StatusCode}
	}

	mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil || !strings.HasPrefix(mediaType, "image/") {
		return nil, "", fmt.Errorf("%w: unexpected content type %q", integration.ErrRemoteInvalidPayload, resp.Header.Get("Content-Type"))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("%w: read image: %v", integration.ErrRemoteUnavailable, err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, "", fmt.Errorf("%w: image exceeds %d bytes", integration.ErrRemoteInvalidPayload, f.maxBytes)
	}
	return data, mediaType, nil
}

var _ integration.ImageFetcher = (*HTTPImageFetcher)(nil)
