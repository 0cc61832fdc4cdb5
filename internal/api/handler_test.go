package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/georgeshao/results-proxy/internal/relay"
	"github.com/georgeshao/results-proxy/internal/upstream"
)

const twoRows = `{"results":[{"Status":"Done","Timestamp":"2024-01-01"},{"Status":"Pending","Timestamp":"2024-06-01"}]}`

func setupTestApp(t *testing.T, upstreamHandler http.HandlerFunc) *fiber.App {
	t.Helper()

	srv := httptest.NewServer(upstreamHandler)
	t.Cleanup(srv.Close)

	client := upstream.NewClient(upstream.Config{URL: srv.URL, MaxRedirects: 5})
	r := relay.New(client, zaptest.NewLogger(t))

	return NewApp(r, AppConfig{})
}

func serveJSON(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}

func doGet(t *testing.T, app *fiber.App, target string) (*http.Response, string) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, target, nil)
	resp, err := app.Test(req, 5000)
	require.NoError(t, err)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestHealthEndpoint(t *testing.T) {
	app := setupTestApp(t, serveJSON(`{}`))

	resp, body := doGet(t, app, "/health")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, body)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestGetResultsNewestFirst(t *testing.T) {
	app := setupTestApp(t, serveJSON(twoRows))

	for _, path := range []string{"/", "/results", "/.netlify/functions/proxy"} {
		resp, body := doGet(t, app, path)

		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"), path)
		assert.True(t, strings.HasPrefix(resp.Header.Get(HeaderInvocationID), "inv_"), path)
		assert.Equal(t,
			`{"success":true,"results":[{"Status":"Pending","Timestamp":"2024-06-01"},{"Status":"Done","Timestamp":"2024-01-01"}]}`,
			body, path)
	}
}

func TestGetResultsStatusFilter(t *testing.T) {
	app := setupTestApp(t, serveJSON(twoRows))

	resp, body := doGet(t, app, "/results?status=done")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `{"success":true,"results":[{"Status":"Done","Timestamp":"2024-01-01"}]}`, body)
}

func TestGetResultsBlankFilter(t *testing.T) {
	app := setupTestApp(t, serveJSON(twoRows))

	_, body := doGet(t, app, "/results?status=%20%20")

	var out struct {
		Success bool              `json:"success"`
		Results []json.RawMessage `json:"results"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	assert.True(t, out.Success)
	assert.Len(t, out.Results, 2)
}

func TestGetResultsEmpty(t *testing.T) {
	app := setupTestApp(t, serveJSON(`{"results":[]}`))

	resp, body := doGet(t, app, "/results?status=done")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `{"success":true,"results":[]}`, body)
}

func TestGetResultsUpstreamError(t *testing.T) {
	app := setupTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("Internal error"))
	})

	resp, body := doGet(t, app, "/results")

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	assert.Equal(t, false, out["success"])
	assert.True(t, strings.HasPrefix(out["error"].(string), "Upstream returned 500"), out["error"])
	assert.NotContains(t, out, "results")
}

func TestGetResultsNonJSONUpstream(t *testing.T) {
	app := setupTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>Sign in</html>"))
	})

	resp, body := doGet(t, app, "/results")

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t,
		`{"success":false,"error":"Invalid response from upstream. Expected JSON but got: <html>Sign in</html>"}`,
		body)
}

func TestGetResultsUnreachableUpstream(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	r := relay.New(upstream.NewClient(upstream.Config{URL: url}), zaptest.NewLogger(t))
	app := NewApp(r, AppConfig{})

	resp, body := doGet(t, app, "/results")

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, body, `"success":false`)
}

func TestUnknownRouteUsesEnvelope(t *testing.T) {
	app := setupTestApp(t, serveJSON(`{}`))

	resp, body := doGet(t, app, "/nope")

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, body, `"success":false`)
}

func TestPanicUsesEnvelope(t *testing.T) {
	app := setupTestApp(t, serveJSON(`{}`))
	app.Get("/panic", func(c *fiber.Ctx) error {
		panic("handler exploded")
	})

	resp, body := doGet(t, app, "/panic")

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, `{"success":false,"error":"handler exploded"}`, body)
}

func TestPreflight(t *testing.T) {
	app := setupTestApp(t, serveJSON(`{}`))

	req := httptest.NewRequest(http.MethodOptions, "/results", nil)
	req.Header.Set("Origin", "https://example.org")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
