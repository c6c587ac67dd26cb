// Package http serves the finance API: one JSON resource per feature area,
// analytics, calculators, toll estimates and the Google Calendar connection.
package http

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/oauth2"

	"financaszen/internal/cache"
	"financaszen/internal/core"
	"financaszen/internal/google"
	"financaszen/internal/log"
	"financaszen/internal/middleware/ratelimit"
	"financaszen/internal/middleware/security"
	"financaszen/internal/middleware/trace"
	"financaszen/internal/services"
	"financaszen/internal/tolls"
)

// CalendarService connects users to Google Calendar and creates events.
type CalendarService interface {
	Connected(ctx context.Context, userID string) (bool, error)
	Connect(ctx context.Context, userID string, tok *oauth2.Token) error
	Disconnect(ctx context.Context, userID string) error
	Schedule(ctx context.Context, userID string, in google.EventInput) (google.CreatedEvent, error)
}

// Pinger reports backend health for /readyz.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Config struct {
	Addr             string
	RateLimitRPM     int
	TrustedProxies   []string
	SecureCookies    bool
	SessionSecret    string
	GoogleSuccessURL string
	TimeZone         string
	DueWindowDays    int
}

// Deps are the collaborators the handlers call. OAuth and Calendar are nil
// when Google is not configured.
type Deps struct {
	Services  *services.Services
	Tolls     *tolls.Estimator
	Store     Pinger
	OAuth     google.CodeFlow
	Calendar  CalendarService
	Summaries *cache.LRUCache[services.MonthSummary]
	Logger    *log.Logger
}

type Server struct {
	http.Server

	svc       *services.Services
	tolls     *tolls.Estimator
	store     Pinger
	oauth     google.CodeFlow
	calendar  CalendarService
	summaries *cache.LRUCache[services.MonthSummary]

	cfg      Config
	loc      *time.Location
	logger   *log.Logger
	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware
	sessions *Sessions

	started      time.Time
	now          func() time.Time
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(cfg Config, deps Deps) (*Server, error) {
	if deps.Services == nil {
		return nil, fmt.Errorf("http server needs services")
	}
	logger := deps.Logger
	if logger == nil {
		logger = log.Discard()
	}
	if cfg.TimeZone == "" {
		cfg.TimeZone = google.DefaultTimeZone
	}
	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("load time zone %s: %w", cfg.TimeZone, err)
	}
	if cfg.DueWindowDays <= 0 {
		cfg.DueWindowDays = 30
	}
	detector, err := security.NewDetector(cfg.TrustedProxies...)
	if err != nil {
		return nil, err
	}
	if deps.Tolls == nil {
		if deps.Tolls, err = tolls.Default(); err != nil {
			return nil, err
		}
	}

	s := &Server{
		svc:       deps.Services,
		tolls:     deps.Tolls,
		store:     deps.Store,
		oauth:     deps.OAuth,
		calendar:  deps.Calendar,
		summaries: deps.Summaries,
		cfg:       cfg,
		loc:       loc,
		logger:    logger.WithComponent(log.ComponentHTTP),
		limiter:   ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RateLimitRPM}),
		detector:  detector,
		tracer:    trace.NewMiddleware(logger, detector.ExtractClientIP),
		sessions:  NewSessions(cfg.SessionSecret, cfg.SecureCookies),
		started:   time.Now(),
		now:       time.Now,
	}
	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s, nil
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(s.tracer.Middleware)
	r.Use(log.Middleware(s.logger, trace.RequestID))
	r.Use(s.detector.Middleware(s.logger))
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", s.handleMetrics)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.limiter.Middleware(s.detector.ExtractClientIP, s.onRateLimit))
		r.Use(s.sessions.Middleware)

		r.Route("/transactions", s.transactionRoutes)
		r.Route("/forecasts", func(r chi.Router) {
			mountCRUD[core.ForecastItem](r, s, s.svc.Repos.Forecasts,
				filterBy("type", func(f core.ForecastItem, v string) bool { return string(f.Type) == v }),
				filterBy("category", func(f core.ForecastItem, v string) bool { return f.Category == v }))
		})
		r.Route("/accounts", s.accountRoutes)
		r.Route("/cards", s.cardRoutes)
		r.Route("/investments", s.investmentRoutes)
		r.Route("/goals", s.goalRoutes)
		r.Route("/contributions", func(r chi.Router) {
			mountCRUD[core.GoalContribution](r, s, s.svc.Repos.Contributions,
				filterBy("goalId", func(c core.GoalContribution, v string) bool { return c.GoalID == v }))
		})
		r.Route("/vehicles", s.vehicleRoutes)
		r.Route("/vehicle-expenses", func(r chi.Router) {
			mountCRUD[core.VehicleExpense](r, s, s.svc.Repos.VehicleExpenses,
				filterBy("vehicleId", func(e core.VehicleExpense, v string) bool { return e.VehicleID == v }),
				filterBy("kind", func(e core.VehicleExpense, v string) bool { return string(e.Kind) == v }))
		})
		r.Route("/maintenances", s.maintenanceRoutes)
		r.Route("/renovations", s.renovationRoutes)
		r.Route("/renovation-stages", func(r chi.Router) {
			mountCRUD[core.RenovationStage](r, s, s.svc.Repos.Stages, byRenovation[core.RenovationStage](func(v core.RenovationStage) string { return v.RenovationID }))
		})
		r.Route("/renovation-expenses", func(r chi.Router) {
			mountCRUD[core.RenovationExpense](r, s, s.svc.Repos.RenovationExpenses,
				byRenovation[core.RenovationExpense](func(v core.RenovationExpense) string { return v.RenovationID }),
				filterBy("supplierId", func(e core.RenovationExpense, v string) bool { return e.SupplierID == v }))
		})
		r.Route("/materials", func(r chi.Router) {
			mountCRUD[core.Material](r, s, s.svc.Repos.Materials, byRenovation[core.Material](func(v core.Material) string { return v.RenovationID }))
		})
		r.Route("/suppliers", func(r chi.Router) {
			mountCRUD[core.Supplier](r, s, s.svc.Repos.Suppliers)
		})
		r.Route("/travel", s.travelRoutes)
		r.Route("/route-points", func(r chi.Router) {
			mountCRUD[core.TravelRoutePoint](r, s, s.svc.Repos.RoutePoints,
				filterBy("eventId", func(p core.TravelRoutePoint, v string) bool { return p.EventID == v }))
		})
		r.Route("/analytics", s.analyticsRoutes)
		r.Route("/calculators", s.calculatorRoutes)
		r.Route("/tolls", s.tollRoutes)

		r.Route("/auth/google", func(r chi.Router) {
			r.Use(security.NoStore)
			r.Get("/", s.handleGoogleAuth)
			r.Post("/", s.handleCreateCalendarEvent)
			r.Delete("/", s.handleGoogleDisconnect)
			r.Get("/status", s.handleGoogleStatus)
		})
	})
	return r
}

func byRenovation[T any](id func(T) string) queryFilter[T] {
	return filterBy("renovationId", func(v T, want string) bool { return id(v) == want })
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.detector.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "rate limit exceeded"})
}

// today is the current calendar day in the configured zone.
func (s *Server) today() core.Date {
	return core.DateOf(s.now().In(s.loc))
}

// Shutdown stops the rate limiter and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
