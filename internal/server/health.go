package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// HealthStatus is the overall service state.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// ComponentStatus is the state of one dependency.
type ComponentStatus string

const (
	ComponentStatusUp   ComponentStatus = "up"
	ComponentStatusDown ComponentStatus = "down"
)

// Health is the /health response body.
type Health struct {
	Status     HealthStatus               `json:"status"`
	Timestamp  time.Time                  `json:"timestamp"`
	Version    string                     `json:"version,omitempty"`
	Commit     string                     `json:"commit,omitempty"`
	Components map[string]ComponentHealth `json:"components"`
}

// ComponentHealth reports one dependency check.
type ComponentHealth struct {
	Status    ComponentStatus `json:"status"`
	Message   string          `json:"message,omitempty"`
	LatencyMs float64         `json:"latency_ms"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	health := s.checkHealth(r.Context())

	status := http.StatusOK
	if health.Status != HealthStatusHealthy {
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(health)
}

func (s *Server) checkHealth(ctx context.Context) Health {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	h := Health{
		Status:     HealthStatusHealthy,
		Timestamp:  time.Now().UTC(),
		Version:    s.build.Version,
		Commit:     s.build.Commit,
		Components: make(map[string]ComponentHealth),
	}

	start := time.Now()
	flash := ComponentHealth{Status: ComponentStatusUp}
	if err := s.flash.Ping(ctx); err != nil {
		flash.Status = ComponentStatusDown
		flash.Message = err.Error()
		h.Status = HealthStatusUnhealthy
	}
	flash.LatencyMs = float64(time.Since(start).Microseconds()) / 1000
	h.Components["flash_store"] = flash

	return h
}
