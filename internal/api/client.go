//go:generate mockgen -source=client.go -destination=../mocks/gateway.go -package=mocks

package api

import (
	"context"
	"net/url"
)

// Gateway issues authenticated GET requests against a platform REST API and
// returns raw response bodies. It holds no business logic.
// Implementations must be safe for concurrent use.
type Gateway interface {
	// Get requests path (relative to BaseURL) with the given query parameters.
	Get(ctx context.Context, path string, query url.Values) ([]byte, error)

	// GetURL requests an absolute URL.
	GetURL(ctx context.Context, rawURL string) ([]byte, error)

	// BaseURL returns the API root used to build absolute URLs.
	BaseURL() string
}

// ClientConfig holds common configuration for API clients.
type ClientConfig struct {
	BaseURL string
	Token   string
}
