// Package main is the entry point for the seedbot console server.
// It wires all dependencies together and starts the HTTP server.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/tanicerdas/seedbot-console/internal/backend"
	"github.com/tanicerdas/seedbot-console/internal/config"
	"github.com/tanicerdas/seedbot-console/internal/observability"
	"github.com/tanicerdas/seedbot-console/internal/robot"
	"github.com/tanicerdas/seedbot-console/internal/sensor"
	"github.com/tanicerdas/seedbot-console/internal/session"
	"github.com/tanicerdas/seedbot-console/internal/state"
	"github.com/tanicerdas/seedbot-console/internal/transport"
)

// Build-time variables set via ldflags:
//
//	go build -ldflags "-X main.version=1.0.0 -X main.commit=abc1234"
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return 1
	}

	observability.Version = version
	observability.Commit = commit

	logger, err := observability.NewLogger(cfg.Observability)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		return 1
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	tracingShutdown, err := observability.InitTracing(ctx, cfg.Observability.Tracing, "seedbot-console", version)
	if err != nil {
		logger.Error("tracing initialization failed", zap.Error(err))
		return 1
	}

	var metrics *observability.Metrics
	if cfg.Observability.Metrics.Enabled {
		metrics = observability.InitMetrics(prometheus.DefaultRegisterer)
	}

	// Backend client.
	api := backend.New(cfg.Backend, logger.Named("backend"), metrics)

	// Session manager with its signing key and store.
	signingKey := os.Getenv(cfg.Session.SigningKeyEnv)
	if signingKey == "" {
		logger.Error("session signing key not set",
			zap.String("env", cfg.Session.SigningKeyEnv))
		return 1
	}

	sessionStore, storeCloser, err := buildSessionStore(ctx, cfg.Session.Store, logger)
	if err != nil {
		logger.Error("session store initialization failed", zap.Error(err))
		return 1
	}

	sessions := session.NewManager(session.Options{
		Store:             sessionStore,
		Auth:              api,
		Signer:            session.NewTokenSigner([]byte(signingKey), cfg.Session.TokenTTL),
		TokenTTL:          cfg.Session.TokenTTL,
		InactivityTimeout: cfg.Session.InactivityTimeout,
		Logger:            logger.Named("session"),
		Metrics:           metrics,
	})

	// Domain components.
	store := state.NewStore()
	estimator := sensor.NewEstimator(api, sensor.NewFallbackEstimator(nil), cfg.Robot.RainfallDefault, logger.Named("sensor"), metrics)
	controller := robot.NewController(robot.Config{
		Store:             store,
		API:               api,
		Estimator:         estimator,
		DirectionalRevert: cfg.Robot.DirectionalRevert,
		TerminalRevert:    cfg.Robot.TerminalRevert,
		Logger:            logger.Named("robot"),
		Metrics:           metrics,
	})
	poller := robot.NewPoller(controller, cfg.Robot.ControlPollInterval, cfg.Robot.RealtimePollInterval, logger.Named("poller"))

	readiness := observability.ReadinessChecks{Backend: api}
	if hc, ok := sessionStore.(observability.HealthChecker); ok {
		readiness.SessionStore = hc
	}

	router := transport.NewRouter(transport.Dependencies{
		Config:     cfg,
		Logger:     logger,
		Metrics:    metrics,
		Sessions:   sessions,
		Backend:    api,
		Controller: controller,
		Poller:     poller,
		Estimator:  estimator,
		State:      store,
		Readiness:  readiness,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	logger.Info("server started",
		zap.Int("port", cfg.Server.Port),
		zap.String("version", version),
		zap.String("commit", commit),
		zap.String("backend", cfg.Backend.BaseURL),
	)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown initiated")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
		return 1
	}

	shutdownTimeout := cfg.Server.ShutdownTimeout
	if shutdownTimeout == 0 {
		shutdownTimeout = 30 * time.Second
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	// Stop accepting new connections and drain in-flight requests.
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	// Stop the view poll loops.
	poller.Shutdown()

	if storeCloser != nil {
		storeCloser()
	}

	if err := tracingShutdown(shutdownCtx); err != nil {
		logger.Error("tracing shutdown error", zap.Error(err))
	}

	logger.Info("shutdown complete")
	return 0
}

// buildSessionStore creates the session store based on config. The redis
// driver requires the address environment variable; memory is the default.
func buildSessionStore(ctx context.Context, cfg config.StoreConfig, logger *zap.Logger) (session.Store, func(), error) {
	switch cfg.Driver {
	case "memory", "":
		logger.Info("using in-memory session store")
		return session.NewMemoryStore(), nil, nil
	case "redis":
		addr := os.Getenv(cfg.AddrEnv)
		if addr == "" {
			return nil, nil, fmt.Errorf("session store: %s environment variable not set", cfg.AddrEnv)
		}
		client := redis.NewClient(&redis.Options{Addr: addr, DB: cfg.DB})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("session store: ping: %w", err)
		}
		logger.Info("using redis session store", zap.String("addr", addr))
		return session.NewRedisStore(client), func() { client.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unsupported session store driver: %q", cfg.Driver)
	}
}
