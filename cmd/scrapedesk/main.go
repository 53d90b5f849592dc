package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/use-agent/scrapedesk/api"
	"github.com/use-agent/scrapedesk/cache"
	"github.com/use-agent/scrapedesk/client"
	"github.com/use-agent/scrapedesk/config"
	"github.com/use-agent/scrapedesk/controller"
	"github.com/use-agent/scrapedesk/logging"
	"github.com/use-agent/scrapedesk/metrics"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	slog.SetDefault(logging.New(cfg.Log, os.Stdout))
	slog.Info("scrapedesk starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"service", cfg.Service.Endpoint,
	)

	// ── 3. Scraping service client + page controller ────────────────
	sc := client.New(cfg.Service.Endpoint, cfg.Service.Timeout)
	ctrl := controller.New(sc,
		controller.WithLogger(slog.Default()),
		controller.WithObserver(metrics.Observe),
	)

	// ── 4. Session store ────────────────────────────────────────────
	sessions := cache.New(cfg.Session.MaxEntries, cfg.Session.TTL,
		cache.WithSizeObserver(metrics.SetSessions),
	)
	defer sessions.Close()

	// ── 5. Setup router ─────────────────────────────────────────────
	appCtx, stopApp := context.WithCancel(context.Background())
	defer stopApp()
	router := api.NewRouter(appCtx, ctrl, sessions, cfg, time.Now())

	// ── 6. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 7. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	// Give in-flight requests 5 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	slog.Info("scrapedesk stopped")
}
