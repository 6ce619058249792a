package proxy

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProxyForwardsWithCredential(t *testing.T) {
	var gotAuth, gotPath, gotQuery string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"page":1,"results":[]}`))
	}))
	defer upstream.Close()

	app := fiber.New()
	app.Get("/api/tmdb/*", NewCatalogProxy(upstream.URL+"/3", "server-token", 5*time.Second).Handler())

	req := httptest.NewRequest(http.MethodGet, "/api/tmdb/movie/popular?language=en-US&page=1", nil)
	req.Header.Set("Authorization", "Bearer client-supplied")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Bearer server-token", gotAuth)
	assert.Equal(t, "/3/movie/popular", gotPath)
	assert.Equal(t, "language=en-US&page=1", gotQuery)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"page":1,"results":[]}`, string(body))
}

func TestProxyPassesUpstreamStatus(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"status_message":"not found"}`, http.StatusNotFound)
	}))
	defer upstream.Close()

	app := fiber.New()
	app.Get("/api/tmdb/*", NewCatalogProxy(upstream.URL, "t", 5*time.Second).Handler())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/tmdb/movie/0", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestProxyUnavailableUpstream(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := upstream.URL
	upstream.Close()

	app := fiber.New()
	app.Get("/api/tmdb/*", NewCatalogProxy(url, "t", time.Second).Handler())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/tmdb/movie/popular", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestMountedProxyRejectsNonGet(t *testing.T) {
	var hits int
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(`{}`))
	}))
	defer upstream.Close()

	app := fiber.New()
	NewCatalogProxy(upstream.URL, "t", time.Second).Mount(app.Group("/api/tmdb"))

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		resp, err := app.Test(httptest.NewRequest(method, "/api/tmdb/movie/popular", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode, method)
	}
	assert.Zero(t, hits)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/tmdb/movie/popular", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, hits)
}
