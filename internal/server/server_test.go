package server

import (
	"compress/gzip"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"bigform/internal/logger"
)

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec := newBrowser(t, srv.Handler()).do(httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var h Health
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&h))
	assert.Equal(t, HealthStatusHealthy, h.Status)
	assert.Equal(t, "test", h.Version)
	assert.Equal(t, ComponentStatusUp, h.Components["flash_store"].Status)
}

func TestHealth_FlashDown(t *testing.T) {
	srv, _ := newTestServer(t, func(c *Config) { c.Flash = failingFlashStore{} })
	rec := newBrowser(t, srv.Handler()).do(httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var h Health
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&h))
	assert.Equal(t, HealthStatusUnhealthy, h.Status)
	assert.Equal(t, ComponentStatusDown, h.Components["flash_store"].Status)
	assert.Equal(t, "flash down", h.Components["flash_store"].Message)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	b := newBrowser(t, srv.Handler())

	body, ct := multipartBody(t, append(scenarioFields, [2]string{"extra", "1"}))
	b.post(body, ct)

	rec := b.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	out := rec.Body.String()
	assert.Contains(t, out, `bigform_submissions_total{result="accepted"}`)
	assert.Contains(t, out, "bigform_unknown_fields_total")
	assert.Contains(t, out, `bigform_http_requests_total{code="303",method="POST"}`)
}

func TestSecurityHeaders(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec := newBrowser(t, srv.Handler()).get()

	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "https://cdn.jsdelivr.net")
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestRequestIDPropagated(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "client-rid")
	rec := newBrowser(t, srv.Handler()).do(req)
	assert.Equal(t, "client-rid", rec.Header().Get("X-Request-Id"))
}

func TestCompression(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	b := newBrowser(t, srv.Handler())

	plain := b.get().Body.String()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := b.do(req)
	require.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	zr, err := gzip.NewReader(rec.Body)
	require.NoError(t, err)
	unzipped, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, plain, string(unzipped))
}

func TestCompression_SkipsPost(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	body, ct := multipartBody(t, scenarioFields)
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("Accept-Encoding", "gzip")

	rec := newBrowser(t, srv.Handler()).do(req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Empty(t, rec.Header().Get("Content-Encoding"))
}

func TestLogSink_Record(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	srv, _ := newTestServer(t, func(c *Config) {
		c.Sink = NewLogSink(logger.NewZapAdapter(zap.New(core)))
	})
	b := newBrowser(t, srv.Handler())

	body, ct := multipartBody(t, scenarioFields)
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("X-Request-Id", "rid-42")
	require.Equal(t, http.StatusSeeOther, b.do(req).Code)

	entries := logs.FilterMessage("form_submitted").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()

	assert.Equal(t, "Ali", fields["first_name"])
	assert.Equal(t, "Vali", fields["last_name"])
	assert.Equal(t, "ali@example.com", fields["email"])
	assert.Equal(t, []interface{}{"A", "B"}, fields["companies"])
	assert.Equal(t, []interface{}{"Dev", "Lead"}, fields["positions"])
	assert.Equal(t, []interface{}{"2019-2020", "2021-2022"}, fields["years"])
	assert.Contains(t, fields, "resume_filename")
	assert.Nil(t, fields["resume_filename"])
	assert.NotContains(t, fields, "resume_size")
	assert.Equal(t, "rid-42", fields["request_id"])
}
