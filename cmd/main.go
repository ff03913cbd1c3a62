package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	engine "github.com/pitbox/pitwall/internal/app"

	"github.com/pitbox/pitwall/internal/adapters/overlay"
	"github.com/pitbox/pitwall/internal/adapters/session"
	"github.com/pitbox/pitwall/internal/adapters/telemetry"
	"github.com/pitbox/pitwall/internal/config"
	"github.com/pitbox/pitwall/internal/domain/detector"
	"github.com/pitbox/pitwall/internal/domain/strategy"
	"github.com/pitbox/pitwall/pkg/logger"
	"github.com/pitbox/pitwall/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	// Initialize logging
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	loggerInstance := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// Telemetry source: replay a capture if configured, otherwise run the
	// synthetic demo session.
	var reader telemetry.Reader
	if cfg.ReplayPath != "" {
		reader, err = telemetry.NewReplayReader(cfg.ReplayPath)
		if err != nil {
			os.Stderr.WriteString("failed to open replay: " + err.Error() + "\n")
			return
		}
		loggerInstance.Info(ctx, "replaying session", logger.String("path", cfg.ReplayPath))
	} else {
		reader = telemetry.NewSyntheticReader(0)
		loggerInstance.Info(ctx, "running synthetic session")
	}

	opts := []engine.Option{
		engine.WithLogger(loggerInstance.Named("engine")),
		engine.WithTickInterval(cfg.TickInterval()),
		engine.WithQueueSize(cfg.QueueSize),
	}

	calcOpts, detOpts := engine.FromConfig(cfg)
	opts = append(opts,
		engine.WithCalculator(strategy.New(calcOpts...)),
		engine.WithDetector(detector.New(detOpts...)),
	)

	if cfg.SessionDBPath != "" {
		store, err := session.Open(ctx, cfg.SessionDBPath)
		if err != nil {
			os.Stderr.WriteString("failed to open session store: " + err.Error() + "\n")
			return
		}
		opts = append(opts, engine.WithSessionStore(store))
	}

	var hub *overlay.Hub
	if cfg.OverlayEnabled {
		hub = overlay.NewHub()
		opts = append(opts, engine.WithOverlayHub(hub))
	}

	eng := engine.New(reader, opts...)
	if err := eng.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start engine: " + err.Error() + "\n")
		return
	}

	// HTTP mux and routes.
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	if hub != nil {
		mux.HandleFunc("/ws", hub.ServeWS)
		mux.HandleFunc("/state", hub.ServeState)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
		}
	}()

	// Run until the session ends or a shutdown signal arrives.
	select {
	case <-ctx.Done():
		loggerInstance.Info(ctx, "shutting down...")
	case <-eng.Done():
	}

	eng.Stop(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "stopped")
}
