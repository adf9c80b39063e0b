package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"bigform/internal/logger"
)

// BuildInfo is reported by /health.
type BuildInfo struct {
	Version string
	Commit  string
}

// Config wires the server's collaborators. Flash, Sink and TracerProvider
// fall back to an in-memory store, a LogSink and the global provider.
type Config struct {
	Addr           string // e.g. "127.0.0.1:5000"
	Build          BuildInfo
	Session        SessionConfig
	Flash          FlashStore
	Sink           SubmissionSink
	Logger         logger.Logger
	TracerProvider trace.TracerProvider
	MaxUploadBytes int64
}

type Server struct {
	httpServer *http.Server
	handler    http.Handler
	flash      FlashStore
	build      BuildInfo
	log        logger.Logger
}

const defaultMaxUploadBytes = 10 << 20

func New(cfg Config) (*Server, error) {
	if len(cfg.Session.Secret) == 0 {
		return nil, errors.New("server: session secret is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNoOpLogger()
	}
	if cfg.Flash == nil {
		cfg.Flash = NewMemoryFlashStore(0)
	}
	if cfg.Sink == nil {
		cfg.Sink = NewLogSink(cfg.Logger)
	}
	if cfg.TracerProvider == nil {
		cfg.TracerProvider = otel.GetTracerProvider()
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = defaultMaxUploadBytes
	}

	tmpl, err := parseFormTemplate()
	if err != nil {
		return nil, err
	}
	tracer := cfg.TracerProvider.Tracer(tracerName)

	s := &Server{
		flash: cfg.Flash,
		build: cfg.Build,
		log:   cfg.Logger,
	}

	form := &formHandler{
		tmpl:     tmpl,
		flash:    cfg.Flash,
		sink:     cfg.Sink,
		log:      cfg.Logger,
		tracer:   tracer,
		maxBytes: cfg.MaxUploadBytes,
	}

	mux := http.NewServeMux()
	mux.Handle("/{$}", cfg.Session.sessionMiddleware(form))
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())

	// requestID -> tracing -> logging -> security headers -> gzip -> mux
	var handler http.Handler = mux
	handler = compressionMiddleware(handler)
	handler = securityHeadersMiddleware(handler)
	handler = loggingMiddleware(cfg.Logger)(handler)
	handler = tracingMiddleware(tracer)(handler)
	handler = requestIDMiddleware(handler)

	s.handler = handler
	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s, nil
}

// Handler exposes the full middleware chain for httptest.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Listen binds the configured address. Splitting it from Serve lets the
// caller know the port is open before launching the browser.
func (s *Server) Listen() (net.Listener, error) {
	return net.Listen("tcp", s.httpServer.Addr)
}

// Serve blocks serving on ln until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Start() error {
	ln, err := s.Listen()
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
