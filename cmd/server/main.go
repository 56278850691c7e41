package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/swipedeck/internal/adapter/httpserver"
	"github.com/pscheid92/swipedeck/internal/adapter/metrics"
	"github.com/pscheid92/swipedeck/internal/adapter/websocket"
	"github.com/pscheid92/swipedeck/internal/dispatch"
	"github.com/pscheid92/swipedeck/internal/domain"
	"github.com/pscheid92/swipedeck/internal/platform/config"
	"github.com/pscheid92/swipedeck/internal/platform/logging"
	"github.com/pscheid92/swipedeck/internal/platform/version"
	"github.com/pscheid92/swipedeck/internal/profile"
	"github.com/pscheid92/swipedeck/internal/session"
)

func runGracefulShutdown(srv *httpserver.Server, registry *session.Registry) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		registry.StopAll()

		close(done)
	}()

	return done
}

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func healthChecks(cfg *config.Config, registry *session.Registry, profiles domain.ProfileSource) []httpserver.HealthCheck {
	return []httpserver.HealthCheck{
		{
			Name: "profiles",
			Check: func(_ context.Context) error {
				if len(profiles.Generate(1)) == 0 {
					return domain.ErrEmptyDeck
				}
				return nil
			},
		},
		{
			Name: "session_capacity",
			Check: func(_ context.Context) error {
				if n := registry.Len(); n >= cfg.MaxSessions {
					return fmt.Errorf("%d/%d sessions: %w", n, cfg.MaxSessions, domain.ErrSessionLimit)
				}
				return nil
			},
		},
	}
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port, "version", version.Get().Version)

	reg := metrics.NewRegistry()
	deckMetrics := metrics.NewDeckMetrics(reg)
	sessionMetrics := metrics.NewSessionMetrics(reg)
	wsMetrics := metrics.NewWebSocketMetrics(reg)
	httpMetrics := metrics.NewHTTPMetrics(reg)

	profiles := profile.NewGenerator(profile.StdRNG{}, clock)

	registry := session.NewRegistry(profiles, clock, cfg.MaxSessions, deckMetrics, sessionMetrics, session.Config{
		DeckSize: cfg.DeckSize,
		Dispatch: dispatch.Config{
			AnimationTimeout: cfg.AnimationTimeout,
			BoostDuration:    cfg.BoostDuration,
		},
	})

	wsHandler := websocket.NewHandler(registry, clock, wsMetrics, sessionMetrics, websocket.HandlerConfig{
		AppURL:        cfg.AppURL,
		IsDevelopment: !cfg.IsProduction(),
		EventRate:     cfg.EventRate,
		EventBurst:    cfg.EventBurst,
		ToastDuration: cfg.ToastDuration,
		MaxPerIP:      cfg.WSMaxPerIP,
		ConnectRate:   cfg.WSConnectRate,
		ConnectBurst:  cfg.WSConnectBurst,
	})

	srv := httpserver.NewServer(cfg, clock, profiles, wsHandler, metrics.Handler(reg), httpMetrics, healthChecks(cfg, registry, profiles))

	done := runGracefulShutdown(srv, registry)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
