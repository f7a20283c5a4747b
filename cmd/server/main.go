package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	web "jobapply/internal/adapters/http"
	"jobapply/internal/adapters/http/perf"
	"jobapply/internal/adapters/session"
	"jobapply/internal/config"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Drafts live in memory for the session TTL; the janitor evicts abandoned ones
	drafts := session.NewMemoryStore(cfg.SessionTTL)
	go drafts.RunJanitor(ctx, time.Minute)

	// Performance instrumentation: request timings and submit outcomes
	collector := perf.NewCollector(perf.DefaultRingSize)

	// Create HTTP handler with middleware (pass collector for timing + perf API)
	mux := web.NewMux(ctx, web.Options{
		Env:                cfg.Env,
		Intro:              cfg.Intro,
		SessionTTL:         cfg.SessionTTL,
		RateLimitPerSecond: cfg.RateLimitPerSecond,
		CSRFKey:            cfg.CSRFKey,
		TrustedOrigins:     cfg.TrustedOrigins,
		SlowRequestMs:      cfg.SlowRequestMs,
	}, drafts, collector)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("Job application %s starting on %s (env=%s, session_ttl=%s)", version, cfg.Addr, cfg.Env, cfg.SessionTTL)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server failed: %v", err)
	}
	log.Println("Server stopped")
}
