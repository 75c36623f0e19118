package server_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/devhost/internal/metrics"
	"github.com/sakif/devhost/internal/repository/memory"
	"github.com/sakif/devhost/internal/server"
	"github.com/sakif/devhost/internal/service"
	"github.com/sakif/devhost/internal/store"
	"github.com/sakif/devhost/internal/tree"
)

func newTestServer(t *testing.T, m *metrics.Metrics) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	var repo store.Repository = store.New(memory.New(), logger)
	if m != nil {
		repo = metrics.NewRepository(repo, m)
	}

	srv, err := server.New(server.Config{Port: 0}, server.Deps{
		Directory: service.NewDirectory(repo, logger),
		Project:   tree.DefaultProject(),
		Metrics:   m,
	}, logger)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestRoutes(t *testing.T) {
	ts := newTestServer(t, nil)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/", http.StatusOK},
		{http.MethodGet, "/snippets/1", http.StatusOK},
		{http.MethodGet, "/snippets/unknown", http.StatusNotFound},
		{http.MethodGet, "/api/languages", http.StatusOK},
		{http.MethodGet, "/api/snippets", http.StatusOK},
		{http.MethodGet, "/api/snippets/2", http.StatusOK},
		{http.MethodGet, "/api/snippets/2/download", http.StatusOK},
		{http.MethodGet, "/api/structure", http.StatusOK},
		{http.MethodGet, "/api/structure.zip", http.StatusOK},
		{http.MethodPut, "/api/snippets/1", http.StatusMethodNotAllowed},
		{http.MethodGet, "/metrics", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, ts.URL+tt.path, nil)
			require.NoError(t, err)
			resp, err := ts.Client().Do(req)
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestFilterWithoutMatches(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, body := get(t, ts.URL+"/api/snippets?q=python")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "[]\n", body)
}

func TestCreateThenFetch(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, err := http.Post(ts.URL+"/api/snippets", "application/json",
		strings.NewReader(`{"title":"Test","language":"python","code":"x=1","author":"Bob"}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	_, body := get(t, ts.URL+"/api/snippets?q=PYTHON")
	assert.Contains(t, body, `"title":"Test"`)
	assert.Contains(t, body, `"likes":0`)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, metrics.New())

	resp, _ := get(t, ts.URL+"/api/snippets")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = get(t, ts.URL+"/api/snippets/2")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = get(t, ts.URL+"/api/snippets/missing")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body := get(t, ts.URL+"/metrics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `devhost_store_operations_total{op="list",status="success"} 1`)
	assert.Contains(t, body, `devhost_store_operations_total{op="get",status="success"} 1`)
	assert.Contains(t, body, `devhost_store_operations_total{op="get",status="rejected"} 1`)
	assert.Contains(t, body, "go_goroutines")
}

func TestRunStopsWhenContextIsCancelled(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv, err := server.New(server.Config{Port: 0}, server.Deps{
		Directory: service.NewDirectory(store.New(memory.New(), logger), logger),
		Project:   tree.DefaultProject(),
	}, logger)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, srv.Run(ctx))
}
