package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"fintrack/internal/analytics"
	"fintrack/internal/auth"
	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/records"
	"fintrack/internal/services"
)

// RecurrenceRunner triggers recurrence processing on demand.
type RecurrenceRunner interface {
	Run(ctx context.Context, today core.Date) services.Report
	ProcessInvestments(ctx context.Context, today core.Date) services.RunStatus
	ProcessSalaries(ctx context.Context, today core.Date) services.RunStatus
}

type Options struct {
	Addr string
	// Ledger is normally a *services.LedgerService so that writes are
	// validated and announced.
	Ledger    records.Store
	Recurring RecurrenceRunner
	Auth      *auth.Service
	// Summaries caches monthly summaries; nil disables caching. The owner
	// purges it when the ledger changes.
	Summaries *cache.LRUCache[analytics.MonthlySummary]
	// RateLimit is requests per minute per client.
	RateLimit int
	// Ready reports whether dependencies are usable; nil means always ready.
	Ready  func(context.Context) error
	Logger *log.Logger
}

type Server struct {
	http.Server

	ledger    records.Store
	recurring RecurrenceRunner
	auth      *auth.Service
	summaries *cache.LRUCache[analytics.MonthlySummary]
	caches    *cache.Manager
	limiter   *ratelimit.Limiter
	detector  *security.Detector
	tracer    *trace.Middleware
	ready     func(context.Context) error

	today func() core.Date
	now   func() time.Time
}

// NewServer configures routes and middleware, returning a ready-to-run
// server.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentHTTP)
	}
	s := &Server{
		ledger:    opts.Ledger,
		recurring: opts.Recurring,
		auth:      opts.Auth,
		summaries: opts.Summaries,
		caches:    cache.NewManager(),
		limiter:   ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimit}),
		detector:  security.NewDetector(),
		tracer:    trace.NewMiddleware(),
		ready:     opts.Ready,
		today:     core.Today,
		now:       time.Now,
	}
	if s.summaries != nil {
		s.caches.Register(s.summaries)
	}

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           s.routes(logger),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}
	return s
}

func (s *Server) routes(logger *log.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(s.tracer.Middleware)
	r.Use(log.Middleware(logger))
	r.Use(log.RequestIDMiddleware(trace.FromRequest))
	r.Use(log.AccessLog(s.detector.ExtractClientIP))
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	r.Use(s.detector.Middleware)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.limiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
				log.FieldClientIP, s.detector.ExtractClientIP(r),
				log.FieldPath, r.URL.Path)
			writeError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
		}))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", s.handleLogin)
			r.Get("/validate", s.handleValidate)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.auth.Middleware)

			r.Route("/transactions", func(r chi.Router) {
				r.Post("/", s.handleCreateTransaction)
				r.Get("/", s.handleListTransactions)
				r.Get("/monthly/{year}/{month}", s.handleTransactionsByMonth)
				r.Get("/range", s.handleTransactionsInRange)
				r.Get("/{id}", s.handleGetTransaction)
				r.Put("/{id}", s.handleUpdateTransaction)
				r.Delete("/{id}", s.handleDeleteTransaction)
			})

			r.Route("/cards", func(r chi.Router) {
				r.Post("/", s.handleCreateCard)
				r.Get("/", s.handleListCards)
				r.Get("/{id}", s.handleGetCard)
				r.Put("/{id}", s.handleUpdateCard)
				r.Delete("/{id}", s.handleDeleteCard)
				r.Get("/{id}/utilization", s.handleCardUtilization)
			})

			r.Route("/payments", func(r chi.Router) {
				r.Post("/", s.handleCreatePayment)
				r.Get("/", s.handleListPayments)
				r.Get("/card/{id}", s.handlePaymentsByCard)
				r.Get("/range", s.handlePaymentsInRange)
				r.Get("/{id}", s.handleGetPayment)
				r.Put("/{id}", s.handleUpdatePayment)
				r.Delete("/{id}", s.handleDeletePayment)
			})

			r.Route("/savings", func(r chi.Router) {
				r.Post("/", s.handleCreateInvestment)
				r.Get("/", s.handleListInvestments)
				r.Get("/comparison/current", s.handleSavingsComparison)
				r.Post("/process/recurring", s.handleProcessInvestments)
				r.Post("/startup/check", s.handleStartupCheck)
				r.Get("/{id}", s.handleGetInvestment)
				r.Put("/{id}", s.handleUpdateInvestment)
				r.Delete("/{id}", s.handleDeleteInvestment)
			})

			r.Route("/salaries", func(r chi.Router) {
				r.Post("/", s.handleCreateSalary)
				r.Get("/", s.handleListSalaries)
				r.Get("/active", s.handleActiveSalaries)
				r.Post("/process/monthly", s.handleProcessSalaries)
				r.Get("/{id}", s.handleGetSalary)
				r.Put("/{id}", s.handleUpdateSalary)
				r.Delete("/{id}", s.handleDeleteSalary)
			})

			r.Route("/analytics", func(r chi.Router) {
				r.Get("/monthly/{year}/{month}", s.handleMonthlySummary)
				r.Get("/yearly/{year}", s.handleYearlySummary)
				r.Get("/yearly/{year}/categories", s.handleYearlyCategories)
				r.Get("/yearly/{year}/report.pdf", s.handleYearlyReport)
				r.Get("/insights/{year}/{month}", s.handleInsights)
				r.Get("/trends/spending", s.handleSpendingTrend)
				r.Get("/trends/spending/{year}", s.handleSpendingTrendForYear)
				r.Get("/summary/current", s.handleCurrentSummary)
			})
		})
	})

	return r
}

// RunMaintenance expires cached summaries and forgets idle rate-limit
// clients until ctx is done.
func (s *Server) RunMaintenance(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.caches.Run(ctx, time.Minute) })
	g.Go(func() error { return s.limiter.Run(ctx, 5*time.Minute) })
	return g.Wait()
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
			writeError(w, http.StatusServiceUnavailable, "not ready")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
