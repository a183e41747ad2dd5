package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"mycash/internal/backend"
	"mycash/internal/dashboard"
	applog "mycash/internal/log"
	"mycash/internal/middleware/ratelimit"
	"mycash/internal/middleware/security"
	"mycash/internal/middleware/trace"
	"mycash/internal/services"
)

// Deps are the collaborators the server routes requests to.
type Deps struct {
	Ledger    *services.LedgerService
	Dashboard *services.DashboardService
	// Store is checked by /readyz; nil skips the check.
	Store         backend.Pinger
	UpcomingLimit int
	RateLimit     ratelimit.Config
	// TrustedProxies are CIDRs added to the loopback and private ranges.
	TrustedProxies []string
	Logger         *applog.Logger
}

type Server struct {
	http.Server
	ledger        *services.LedgerService
	dash          *services.DashboardService
	store         backend.Pinger
	upcomingLimit int
	logger        *applog.Logger

	rateLimiter *ratelimit.Limiter
	detector    *security.Detector
	tracer      *trace.Middleware

	started      time.Time
	now          func() time.Time
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = applog.Default(applog.ComponentHTTP)
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	limit := deps.UpcomingLimit
	if limit <= 0 {
		limit = dashboard.DefaultUpcomingLimit
	}

	s := &Server{
		ledger:        deps.Ledger,
		dash:          deps.Dashboard,
		store:         deps.Store,
		upcomingLimit: limit,
		logger:        logger,
		rateLimiter:   ratelimit.NewLimiter(deps.RateLimit),
		detector:      security.NewDetector(logger),
		started:       time.Now(),
		now:           time.Now,
	}
	for _, cidr := range deps.TrustedProxies {
		if err := s.detector.AddTrustedProxy(cidr); err != nil {
			logger.Warn("Ignoring trusted proxy", "cidr", cidr, applog.FieldError, err)
		}
	}
	s.tracer = trace.NewMiddleware(logger, s.detector.ExtractClientIP)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("GET /api/transactions/{id}", s.handleGetTransaction)
	mux.HandleFunc("PATCH /api/transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)
	mux.HandleFunc("POST /api/transactions/{id}/paid", s.handleMarkPaid)
	mux.HandleFunc("GET /api/upcoming", s.handleUpcoming)
	mux.HandleFunc("GET /api/flow", s.handleFlow)
	mux.HandleFunc("GET /api/accounts", s.handleAccounts)
	mux.HandleFunc("POST /api/accounts", s.handleCreateBankAccount)
	mux.HandleFunc("PATCH /api/accounts/{id}", s.handleUpdateBankAccount)
	mux.HandleFunc("DELETE /api/accounts/{id}", s.handleDeleteBankAccount)
	mux.HandleFunc("POST /api/cards", s.handleCreateCreditCard)
	mux.HandleFunc("PATCH /api/cards/{id}", s.handleUpdateCreditCard)
	mux.HandleFunc("DELETE /api/cards/{id}", s.handleDeleteCreditCard)
	mux.HandleFunc("GET /api/members", s.handleMembers)
	mux.HandleFunc("POST /api/members", s.handleCreateMember)
	mux.HandleFunc("GET /api/members/{id}", s.handleGetMember)
	mux.HandleFunc("PATCH /api/members/{id}", s.handleUpdateMember)
	mux.HandleFunc("DELETE /api/members/{id}", s.handleDeleteMember)
	mux.HandleFunc("GET /api/goals", s.handleListGoals)
	mux.HandleFunc("POST /api/goals", s.handleCreateGoal)
	mux.HandleFunc("GET /api/goals/{id}", s.handleGetGoal)
	mux.HandleFunc("PATCH /api/goals/{id}", s.handleUpdateGoal)
	mux.HandleFunc("DELETE /api/goals/{id}", s.handleDeleteGoal)

	limited := s.rateLimiter.Middleware(s.detector.ExtractClientIP, ratelimit.Mutating, s.onRateLimited)
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())

	var handler http.Handler = mux
	handler = limited(handler)
	handler = s.detector.Middleware(handler)
	handler = headers.Middleware(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldClientIP, s.detector.ExtractClientIP(r),
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path)
	writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "rate limit exceeded, retry later"})
}

// Shutdown stops the rate limiter and drains the HTTP server. Safe to call
// more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": s.now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady verifies the store answers within a short deadline.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status, code := "ready", http.StatusOK
	checks := map[string]any{}

	if s.store == nil {
		checks["store"] = "not_configured"
	} else if err := s.store.Ping(ctx); err != nil {
		s.logger.WarnContext(ctx, "Readiness check failed", applog.FieldError, err)
		checks["store"] = "failed"
		status, code = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["store"] = "ok"
	}

	if s.ledger != nil {
		checks["dataset_version"] = s.ledger.Version()
	}
	if s.dash != nil {
		if stats, ok := s.dash.CacheStats(); ok {
			checks["snapshot_cache"] = stats
		}
	}
	checks["rate_limiter"] = s.rateLimiter.GetMetrics()
	checks["requests"] = s.tracer.GetMetrics()
	checks["suspicious_requests"] = s.detector.GetMetrics().SuspiciousRequests

	writeJSON(w, code, map[string]any{
		"status":    status,
		"timestamp": s.now().UTC().Format(time.RFC3339),
		"checks":    checks,
	})
}
