package server

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"bigform/internal/logger"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

// recordingSink keeps every submission it receives.
type recordingSink struct {
	mu   sync.Mutex
	subs []*SubmittedForm
	err  error
}

func (s *recordingSink) Record(_ context.Context, sub *SubmittedForm) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, sub)
	return s.err
}

func (s *recordingSink) all() []*SubmittedForm {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*SubmittedForm(nil), s.subs...)
}

// failingFlashStore errors on every call.
type failingFlashStore struct{}

func (failingFlashStore) Set(context.Context, string, string) error { return errors.New("flash down") }
func (failingFlashStore) Consume(context.Context, string) (string, bool, error) {
	return "", false, errors.New("flash down")
}
func (failingFlashStore) Ping(context.Context) error { return errors.New("flash down") }

func newTestServer(t *testing.T, mutate func(*Config)) (*Server, *recordingSink) {
	t.Helper()
	sink := &recordingSink{}
	cfg := Config{
		Addr:    "127.0.0.1:0",
		Build:   BuildInfo{Version: "test", Commit: "abc123"},
		Session: SessionConfig{Secret: testSecret},
		Flash:   NewMemoryFlashStore(0),
		Sink:    sink,
		Logger:  logger.NewTestLogger(t),
	}
	if mutate != nil {
		mutate(&cfg)
	}
	srv, err := New(cfg)
	require.NoError(t, err)
	return srv, sink
}

// browser replays cookies between requests like a real client would.
type browser struct {
	t       *testing.T
	h       http.Handler
	cookies map[string]*http.Cookie
}

func newBrowser(t *testing.T, h http.Handler) *browser {
	return &browser{t: t, h: h, cookies: make(map[string]*http.Cookie)}
}

func (b *browser) do(req *http.Request) *httptest.ResponseRecorder {
	for _, c := range b.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	b.h.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		b.cookies[c.Name] = c
	}
	return rec
}

func (b *browser) get() *httptest.ResponseRecorder {
	return b.do(httptest.NewRequest(http.MethodGet, "/", nil))
}

func (b *browser) post(body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", contentType)
	return b.do(req)
}

type filePart struct {
	field    string
	filename string
	content  []byte
}

// multipartBody encodes fields in the given order followed by files.
func multipartBody(t *testing.T, fields [][2]string, files ...filePart) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for _, f := range fields {
		require.NoError(t, w.WriteField(f[0], f[1]))
	}
	for _, f := range files {
		part, err := w.CreateFormFile(f.field, f.filename)
		require.NoError(t, err)
		_, err = part.Write(f.content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func urlencodedBody(fields [][2]string) *strings.Reader {
	v := url.Values{}
	for _, f := range fields {
		v.Add(f[0], f[1])
	}
	return strings.NewReader(v.Encode())
}
