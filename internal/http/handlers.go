package http

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// handleHealth is the liveness probe.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": s.now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady checks the store and reports optional integrations.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status, code := "ready", http.StatusOK
	checks := map[string]string{}
	if s.store == nil {
		checks["store"] = "not_configured"
	} else if err := s.store.Ping(ctx); err != nil {
		checks["store"] = fmt.Sprintf("failed: %v", err)
		status, code = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["store"] = "ok"
	}
	if s.calendar != nil {
		checks["google"] = "configured"
	} else {
		checks["google"] = "disabled"
	}
	writeJSON(w, code, map[string]any{"status": status, "checks": checks})
}

// handleMetrics writes counters in the Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	tm := s.tracer.GetMetrics()
	rl := s.limiter.GetMetrics()
	sec := s.detector.GetMetrics()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	metric := func(name, kind, help string, value any) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n%s %v\n\n", name, help, name, kind, name, value)
	}
	metric("http_requests_total", "counter", "Total number of HTTP requests", tm.TotalRequests)
	metric("http_server_errors_total", "counter", "Responses with a 5xx status", tm.ServerErrors)
	metric("http_response_time_avg_microseconds", "gauge", "Average response time", tm.AverageResponseTime)
	metric("rate_limit_hits_total", "counter", "Total rate limit hits", rl.TotalHits)
	metric("active_rate_limit_clients", "gauge", "Currently tracked rate limit clients", rl.ClientCount)
	metric("suspicious_requests_total", "counter", "Total suspicious requests detected", sec.SuspiciousRequests)
	metric("invalid_ip_attempts_total", "counter", "Forwarded headers carrying invalid addresses", sec.InvalidIPAttempts)
	if s.summaries != nil {
		st := s.summaries.Stats()
		metric("cache_hits_total", "counter", "Analytics cache hits", st.Hits)
		metric("cache_misses_total", "counter", "Analytics cache misses", st.Misses)
		metric("cache_entries", "gauge", "Current analytics cache entries", st.Size)
	}
	fmt.Fprintf(w, "# HELP uptime_seconds Application uptime in seconds\n# TYPE uptime_seconds gauge\nuptime_seconds %.0f\n", time.Since(s.started).Seconds())
}
