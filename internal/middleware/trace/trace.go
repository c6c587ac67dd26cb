package trace

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"financaszen/internal/log"
)

type contextKey string

// RequestIDKey is the context key for the request id.
const RequestIDKey contextKey = "request_id"

// RequestIDHeader echoes the id back to the client.
const RequestIDHeader = "X-Request-ID"

// Middleware assigns request ids and logs each request's start and completion.
type Middleware struct {
	extractIP func(*http.Request) string
	logger    *log.StructuredLogger

	total        atomic.Int64
	errors       atomic.Int64
	totalMicros  atomic.Int64
	lastDuration atomic.Int64
}

// Metrics is a snapshot of request counters.
type Metrics struct {
	TotalRequests       int64
	ServerErrors        int64
	AverageResponseTime int64 // microseconds
	LastResponseTime    int64 // microseconds
}

func NewMiddleware(logger *log.Logger, extractIP func(*http.Request) string) *Middleware {
	if logger == nil {
		logger = log.Discard()
	}
	return &Middleware{extractIP: extractIP, logger: log.NewStructuredLogger(logger)}
}

func (m *Middleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := ""
		if m.extractIP != nil {
			clientIP = m.extractIP(r)
		}

		requestID := GenerateRequestID()
		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
		r = r.WithContext(ctx)
		w.Header().Set(RequestIDHeader, requestID)

		m.logger.LogHTTPStart(ctx, r, clientIP)

		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		duration := time.Since(start)
		m.record(status, duration)
		m.logger.LogHTTPEnd(ctx, r, status, duration.Milliseconds(), clientIP)
	})
}

func (m *Middleware) record(status int, d time.Duration) {
	m.total.Add(1)
	m.totalMicros.Add(d.Microseconds())
	m.lastDuration.Store(d.Microseconds())
	if status >= 500 {
		m.errors.Add(1)
	}
}

// GenerateRequestID returns "req_" followed by 16 hex characters.
func GenerateRequestID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(b)
}

// GetRequestID extracts the request id from ctx.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// RequestID adapts GetRequestID for log.Middleware.
func RequestID(r *http.Request) string { return GetRequestID(r.Context()) }

func (m *Middleware) GetMetrics() Metrics {
	total := m.total.Load()
	avg := int64(0)
	if total > 0 {
		avg = m.totalMicros.Load() / total
	}
	return Metrics{
		TotalRequests:       total,
		ServerErrors:        m.errors.Load(),
		AverageResponseTime: avg,
		LastResponseTime:    m.lastDuration.Load(),
	}
}
