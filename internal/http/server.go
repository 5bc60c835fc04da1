package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/report"
	"fintrack/internal/services"
)

// ReportAPI is the read side served over HTTP.
type ReportAPI interface {
	Analytics(ctx context.Context, userID string) (core.AnalyticsSummary, error)
	Dashboard(ctx context.Context, userID string) (core.DashboardSummary, error)
	Chart(ctx context.Context, userID string) ([]byte, error)
	RequestChart(ctx context.Context, userID string) (queued bool, err error)
	Export(ctx context.Context, userID string, f report.Format, days int) (services.Artifact, error)
	ExportToSheets(ctx context.Context, userID string, days int) (int, error)
}

// LedgerAPI is the write side served over HTTP.
type LedgerAPI interface {
	Categories(ctx context.Context, userID string) ([]core.Category, error)
	AddTransaction(ctx context.Context, n core.NewTransaction) (int64, error)
}

// Pinger reports backend readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config tunes the HTTP server.
type Config struct {
	Addr           string
	RequestTimeout time.Duration
	RateLimit      int // requests per minute per client, 0 disables

	// Now is used for default transaction dates.
	Now func() time.Time
}

type Server struct {
	http.Server
	reports ReportAPI
	ledger  LedgerAPI
	ready   Pinger
	now     func() time.Time

	limiter      *ratelimit.Limiter
	shutdownOnce sync.Once
}

// NewServer wires routes and the middleware chain, returning a ready-to-run server.
func NewServer(cfg Config, reports ReportAPI, ledger LedgerAPI, ready Pinger, logger *log.Logger) *Server {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}

	s := &Server{
		reports: reports,
		ledger:  ledger,
		ready:   ready,
		now:     cfg.Now,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/analytics", s.handleAnalytics)
	mux.HandleFunc("GET /api/chart_data", s.handleAnalytics)
	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/categories", s.handleCategories)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)

	mux.HandleFunc("GET /charts/spending.png", s.handleChart)
	mux.HandleFunc("POST /charts/spending/refresh", s.handleChartRefresh)

	mux.HandleFunc("GET /export/{format}", s.handleExport)
	mux.HandleFunc("POST /export/sheets", s.handleExportSheets)

	detector := security.NewDetector()
	tracer := trace.New(detector.ExtractClientIP)
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())

	var handler http.Handler = mux
	handler = withTimeout(cfg.RequestTimeout)(handler)
	handler = security.NoStore(handler)
	handler = log.RequestIDMiddleware(func(r *http.Request) string {
		return trace.RequestID(r.Context())
	})(handler)
	handler = log.Middleware(logger.WithComponent(log.ComponentHTTP))(handler)
	if cfg.RateLimit > 0 {
		s.limiter = ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RateLimit})
		handler = s.limiter.Middleware(detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
			writeError(w, r, http.StatusTooManyRequests, "rate limit exceeded, try again later")
		})(handler)
	}
	handler = headers.Middleware(handler)
	handler = detector.Middleware(handler)
	handler = tracer.Wrap(handler)

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Shutdown stops the rate limiter and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		if s.limiter != nil {
			s.limiter.Stop()
		}
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// withTimeout bounds each request's context; zero leaves it unbounded.
func withTimeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if d <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
