package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrTransport marks failures to reach the API at all (DNS, connection,
// timeout, cancelled context).
var ErrTransport = errors.New("transport error")

// StatusError is returned when the API answers with a non-200 status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API returned status %d: %s", e.StatusCode, e.Body)
}

// HTTPClient interface for HTTP operations (allows mocking in tests).
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// BaseClient contains the request plumbing shared by platform clients.
type BaseClient struct {
	HTTPClient HTTPClient
	// Authorize sets credentials on an outgoing request.
	Authorize func(req *http.Request)
}

// NewBaseClient creates a base client that authorizes requests with authorize.
func NewBaseClient(httpClient HTTPClient, authorize func(req *http.Request)) *BaseClient {
	return &BaseClient{
		HTTPClient: httpClient,
		Authorize:  authorize,
	}
}

// DoGet performs an authenticated GET and returns the response body.
func (c *BaseClient) DoGet(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if c.Authorize != nil {
		c.Authorize(req)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", ErrTransport, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}
