// Package server exposes the engine over HTTP: a webhook endpoint for
// inbound messages plus health and metrics surfaces.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dev-abubakarsharif/chatdotfun/internal/engine"
	"github.com/dev-abubakarsharif/chatdotfun/internal/health"
	"github.com/dev-abubakarsharif/chatdotfun/internal/ratelimit"
	"github.com/dev-abubakarsharif/chatdotfun/pkg/logger"
)

// RateLimitSettings carries the per-sender throttle parameters. A nil limiter
// or Enabled=false disables throttling entirely.
type RateLimitSettings struct {
	Enabled bool
	Limit   int
	Window  time.Duration
}

// Server handles the webhook transport.
type Server struct {
	engine    *engine.Engine
	limiter   ratelimit.Limiter
	rateLimit RateLimitSettings
	checker   *health.Checker
	log       *slog.Logger
}

// New constructs a Server. The limiter and checker may be nil.
func New(eng *engine.Engine, limiter ratelimit.Limiter, rl RateLimitSettings, checker *health.Checker, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		engine:    eng,
		limiter:   limiter,
		rateLimit: rl,
		checker:   checker,
		log:       log,
	}
}

// Handler builds the full HTTP handler with routing and middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /webhook", s.handleWebhook)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.Handle("GET /metrics", promhttp.Handler())

	return logger.Middleware(httpLogging(s.log)(mux))
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	results := map[string]string{}

	if s.checker != nil {
		results = s.checker.Check(r.Context())
		for _, v := range results {
			if v != "OK" {
				status = http.StatusServiceUnavailable
				break
			}
		}
	}

	writeJSON(w, status, map[string]any{
		"status": http.StatusText(status),
		"checks": results,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
