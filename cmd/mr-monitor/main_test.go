package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vilaca/mr-monitor/internal/config"
)

const listResponse = `[
	{"iid": 1, "title": "Ready one", "author": {"id": 10, "name": "A", "username": "a"},
	 "source_branch": "f1", "web_url": "https://gl/1", "labels": [], "state": "opened",
	 "draft": false, "work_in_progress": false, "blocking_discussions_resolved": true,
	 "has_conflicts": false, "merge_status": "can_be_merged"},
	{"iid": 2, "title": "Someone else", "author": {"id": 99, "name": "Z", "username": "z"},
	 "source_branch": "f2", "web_url": "https://gl/2", "labels": [], "state": "opened",
	 "draft": false, "work_in_progress": false, "blocking_discussions_resolved": true,
	 "has_conflicts": false, "merge_status": "can_be_merged"},
	{"iid": 3, "title": "Needs review", "author": {"id": 11, "name": "B", "username": "b"},
	 "source_branch": "f3", "web_url": "https://gl/3", "labels": ["ui"], "state": "opened",
	 "draft": false, "work_in_progress": false, "blocking_discussions_resolved": true,
	 "has_conflicts": false, "merge_status": "can_be_merged"}
]`

func newGitLabServer(t *testing.T, approvals map[string]string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v4/projects/9/merge_requests", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Query().Get("target_branch") != "main" || r.URL.Query().Get("state") != "opened" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		fmt.Fprint(w, listResponse)
	})
	for iid, body := range approvals {
		mux.HandleFunc("/api/v4/projects/9/merge_requests/"+iid+"/approvals", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, body)
		})
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		GitLabURL:      baseURL,
		APIToken:       "token",
		ProjectID:      9,
		AuthorIDs:      []int64{10, 11},
		TargetBranch:   "main",
		Format:         "slack",
		RequestTimeout: 5 * time.Second,
	}
}

// TestRun tests the full pipeline against a fake GitLab.
// Follows AAA (Arrange, Act, Assert) pattern.
func TestRun(t *testing.T) {
	// Arrange
	srv := newGitLabServer(t, map[string]string{
		"1": `{"approvals_left": 0}`,
		"3": `{"approvals_left": 1}`,
	})
	var out bytes.Buffer

	// Act
	err := run(context.Background(), testConfig(srv.URL), zap.NewNop(), &out)

	// Assert
	require.NoError(t, err)
	expected := "*Open MRs against main:*\n\n" +
		"* *Ready to Merge*\n" +
		"    * [Ready one](https://gl/1) (a)\n" +
		"* *Blocked*\n" +
		"    * [Needs review](https://gl/3) (b)\n" +
		"        * Labels: ui\n" +
		"        * requires approval (1)\n"
	require.Equal(t, expected, out.String())
}

// TestRun_ApprovalFailure tests that a single failed approvals request
// produces no report.
func TestRun_ApprovalFailure(t *testing.T) {
	// Arrange
	srv := newGitLabServer(t, map[string]string{
		"1": `{"approvals_left": 0}`,
		"3": `{"message": "forbidden"}`,
	})
	var out bytes.Buffer

	// Act
	err := run(context.Background(), testConfig(srv.URL), zap.NewNop(), &out)

	// Assert
	require.Error(t, err)
	require.Contains(t, err.Error(), "no approval data")
	require.Empty(t, out.String())
}

// TestRun_UnknownFormat tests that an unsupported format fails before any request.
func TestRun_UnknownFormat(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:0")
	cfg.Format = "html"

	err := run(context.Background(), cfg, zap.NewNop(), &bytes.Buffer{})

	require.Error(t, err)
}
