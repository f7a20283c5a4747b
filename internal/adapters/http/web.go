package web

import (
	"context"
	"embed"
	"net/http"
	"time"

	"jobapply/internal/adapters/http/middleware"
	"jobapply/internal/adapters/http/perf"
	"jobapply/internal/adapters/session"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Options carries the settings NewMux needs from configuration.
type Options struct {
	Env                string
	Intro              string // Markdown shown above the form
	SessionTTL         time.Duration
	RateLimitPerSecond int
	CSRFKey            []byte // 32 bytes
	TrustedOrigins     []string
	SlowRequestMs      float64
}

// Production reports whether secure cookies and a fixed CSRF key apply.
func (o Options) Production() bool {
	return o.Env == "production"
}

// Global draft store instance (set by NewMux)
var drafts session.Store

// Global perf collector (set by NewMux)
var perfCollector *perf.Collector

// Global options (set by NewMux)
var options Options

// NewMux wires HTTP handlers for the app.
// The rate limiter evicts idle visitors until ctx is done.
// PRE: store is non-nil; opts.CSRFKey is 32 bytes
// POST: Returns the fully wrapped handler
func NewMux(ctx context.Context, opts Options, store session.Store, collector *perf.Collector) http.Handler {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = session.DefaultTTL
	}
	if opts.RateLimitPerSecond <= 0 {
		opts.RateLimitPerSecond = 10
	}
	options = opts
	drafts = store
	perfCollector = collector

	mux := http.NewServeMux()
	mux.Handle("/static/", http.FileServerFS(staticFS))
	registerRoutes(mux)

	// Rate limiter: configurable requests per second per IP (OWASP A04)
	limiter := middleware.NewRateLimiter(opts.RateLimitPerSecond, time.Second)
	go limiter.RunCleanup(ctx)

	// Apply middleware: Recover -> Timing -> RateLimit -> Applicant -> CSRF -> SecurityHeaders -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(opts.CSRFKey, opts.Production(), opts.TrustedOrigins),
		middleware.Applicant,
		middleware.RateLimit(limiter),
		middleware.Timing(collector, opts.SlowRequestMs),
		middleware.Recover,
	)
}

// registerRoutes attaches every application route to mux.
func registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/", handleRoot)
	mux.HandleFunc("/apply", handleApply)
	mux.HandleFunc("/apply/field", handleApplyField)
	mux.HandleFunc("/apply/new", handleApplyNew)
	mux.HandleFunc("/api/application", handleApplicationAPI)
	mux.HandleFunc("/healthz", handleHealthz)
	if !options.Production() {
		mux.HandleFunc("/api/perf", handlePerfAPI)
	}
}
