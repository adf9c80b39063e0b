package server

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func spanAttr(span sdktrace.ReadOnlySpan, key string) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestTracing_SubmissionSpans(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	srv, _ := newTestServer(t, func(c *Config) { c.TracerProvider = tp })
	b := newBrowser(t, srv.Handler())

	body, ct := multipartBody(t, scenarioFields, filePart{field: "resume", filename: "cv.txt", content: []byte("hello")})
	require.Equal(t, http.StatusSeeOther, b.post(body, ct).Code)

	spans := sr.Ended()
	require.Len(t, spans, 2)

	byName := map[string]sdktrace.ReadOnlySpan{}
	for _, s := range spans {
		byName[s.Name()] = s
	}
	req, decode := byName["http.request"], byName["form.decode"]
	require.NotNil(t, req)
	require.NotNil(t, decode)

	assert.Equal(t, req.SpanContext().SpanID(), decode.Parent().SpanID())

	v, ok := spanAttr(req, "http.status_code")
	require.True(t, ok)
	assert.Equal(t, int64(http.StatusSeeOther), v.AsInt64())

	v, ok = spanAttr(decode, "form.job_rows")
	require.True(t, ok)
	assert.Equal(t, int64(2), v.AsInt64())

	v, ok = spanAttr(decode, "form.resume_size")
	require.True(t, ok)
	assert.Equal(t, int64(5), v.AsInt64())
}

func TestTracing_GetHasSingleSpan(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	srv, _ := newTestServer(t, func(c *Config) { c.TracerProvider = tp })

	newBrowser(t, srv.Handler()).get()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "http.request", spans[0].Name())
	v, ok := spanAttr(spans[0], "request.id")
	require.True(t, ok)
	assert.NotEmpty(t, v.AsString())
}
