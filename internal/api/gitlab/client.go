package gitlab

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/vilaca/mr-monitor/internal/api"
)

const apiPrefix = "/api/v4"

// Client implements api.Gateway for the GitLab REST API v4.
// Only handles transport and authentication; payloads are returned raw.
type Client struct {
	baseURL string
	base    *api.BaseClient
}

// NewClient creates a new GitLab client.
// config.BaseURL is the instance root (e.g. https://gitlab.com); a URL that
// already ends in /api/v4 is used unchanged.
func NewClient(config api.ClientConfig, httpClient api.HTTPClient) *Client {
	token := config.Token
	return &Client{
		baseURL: apiRoot(config.BaseURL),
		base: api.NewBaseClient(httpClient, func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer "+token)
		}),
	}
}

// BaseURL returns the API v4 root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get requests path relative to the API root with query parameters.
func (c *Client) Get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return c.base.DoGet(ctx, u)
}

// GetURL requests an absolute URL.
func (c *Client) GetURL(ctx context.Context, rawURL string) ([]byte, error) {
	return c.base.DoGet(ctx, rawURL)
}

func apiRoot(baseURL string) string {
	root := strings.TrimRight(baseURL, "/")
	if strings.HasSuffix(root, apiPrefix) {
		return root
	}
	return root + apiPrefix
}
