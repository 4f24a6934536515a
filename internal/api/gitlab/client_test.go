package gitlab

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vilaca/mr-monitor/internal/api"
)

// mockHTTPClient is a test double for api.HTTPClient.
type mockHTTPClient struct {
	doFunc func(req *http.Request) (*http.Response, error)
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return m.doFunc(req)
}

func respond(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
	}
}

// TestGet tests that Get builds the URL and sets authentication headers.
// Follows AAA (Arrange, Act, Assert) pattern.
func TestGet(t *testing.T) {
	// Arrange
	var captured *http.Request
	mockHTTP := &mockHTTPClient{
		doFunc: func(req *http.Request) (*http.Response, error) {
			captured = req
			return respond(http.StatusOK, `[]`), nil
		},
	}

	client := NewClient(api.ClientConfig{
		BaseURL: "https://gitlab.example.com/",
		Token:   "test-token",
	}, mockHTTP)

	query := url.Values{}
	query.Set("state", "opened")
	query.Set("target_branch", "main")

	// Act
	body, err := client.Get(context.Background(), "/projects/42/merge_requests", query)

	// Assert
	require.NoError(t, err)
	require.Equal(t, "[]", string(body))
	require.Equal(t, http.MethodGet, captured.Method)
	require.Equal(t, "gitlab.example.com", captured.URL.Host)
	require.Equal(t, "/api/v4/projects/42/merge_requests", captured.URL.Path)
	require.Equal(t, "opened", captured.URL.Query().Get("state"))
	require.Equal(t, "main", captured.URL.Query().Get("target_branch"))
	require.Equal(t, "Bearer test-token", captured.Header.Get("Authorization"))
	require.Equal(t, "application/json", captured.Header.Get("Accept"))
}

// TestGetURL tests requesting an absolute URL built from BaseURL.
func TestGetURL(t *testing.T) {
	// Arrange
	var requested string
	mockHTTP := &mockHTTPClient{
		doFunc: func(req *http.Request) (*http.Response, error) {
			requested = req.URL.String()
			if req.Header.Get("Authorization") != "Bearer t" {
				t.Error("expected bearer token to be set")
			}
			return respond(http.StatusOK, `{"approvals_left": 1}`), nil
		},
	}

	client := NewClient(api.ClientConfig{BaseURL: "https://gitlab.example.com/api/v4", Token: "t"}, mockHTTP)

	// Act
	body, err := client.GetURL(context.Background(), client.BaseURL()+"/projects/1/merge_requests/3/approvals")

	// Assert
	require.NoError(t, err)
	require.JSONEq(t, `{"approvals_left": 1}`, string(body))
	require.Equal(t, "https://gitlab.example.com/api/v4/projects/1/merge_requests/3/approvals", requested)
}

// TestGet_APIError tests error handling when API returns error.
func TestGet_APIError(t *testing.T) {
	// Arrange
	mockHTTP := &mockHTTPClient{
		doFunc: func(req *http.Request) (*http.Response, error) {
			return respond(http.StatusUnauthorized, `{"message":"401 Unauthorized"}`), nil
		},
	}

	client := NewClient(api.ClientConfig{BaseURL: "https://gitlab.com", Token: "invalid-token"}, mockHTTP)

	// Act
	body, err := client.Get(context.Background(), "/projects/1/merge_requests", nil)

	// Assert
	require.Error(t, err)
	require.Nil(t, body)

	var statusErr *api.StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
	require.Contains(t, err.Error(), "401")
}

// TestGet_TransportError tests that connection failures are marked as transport errors.
func TestGet_TransportError(t *testing.T) {
	// Arrange
	mockHTTP := &mockHTTPClient{
		doFunc: func(req *http.Request) (*http.Response, error) {
			return nil, errors.New("connection refused")
		},
	}

	client := NewClient(api.ClientConfig{BaseURL: "https://gitlab.com", Token: "t"}, mockHTTP)

	// Act
	_, err := client.GetURL(context.Background(), "https://gitlab.com/api/v4/projects/1")

	// Assert
	require.ErrorIs(t, err, api.ErrTransport)
	require.Contains(t, err.Error(), "connection refused")
}

// TestAPIRoot tests API root normalisation.
func TestAPIRoot(t *testing.T) {
	tests := []struct {
		name     string
		baseURL  string
		expected string
	}{
		{"instance root", "https://gitlab.com", "https://gitlab.com/api/v4"},
		{"trailing slash", "https://gitlab.com/", "https://gitlab.com/api/v4"},
		{"already api root", "https://gitlab.com/api/v4", "https://gitlab.com/api/v4"},
		{"api root with slash", "https://gitlab.com/api/v4/", "https://gitlab.com/api/v4"},
		{"sub path", "https://example.com/gitlab", "https://example.com/gitlab/api/v4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, apiRoot(tt.baseURL))
		})
	}
}
