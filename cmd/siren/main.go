package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	"siren-node/config"
	"siren-node/internal/application"
	"siren-node/internal/health"
	"siren-node/internal/infra/audio"
	"siren-node/internal/infra/control"
	"siren-node/internal/infra/netcheck"
	"siren-node/internal/infra/translate"
	"siren-node/internal/infra/tts"
	"siren-node/internal/observe"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.Log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutting down")
		cancel()
	}()

	shutdownMetrics, err := observe.InitProvider(ctx, cfg.Siren.ID)
	if err != nil {
		logger.Error("initializing metrics provider", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelShutdown()
		shutdownMetrics(shutdownCtx)
	}()

	metrics, err := observe.NewMetrics(otel.GetMeterProvider())
	if err != nil {
		logger.Error("creating metrics", "error", err)
		os.Exit(1)
	}

	device := audio.NewDevice(
		cfg.Audio.DeviceHint,
		cfg.Audio.MaxInitAttempts,
		parseDuration(cfg.Audio.InitRetryDelay, 2*time.Second, logger),
		metrics,
		logger,
	)
	if err := device.Initialize(ctx); err != nil {
		// The siren stays up in degraded mode: commands are accepted and
		// acknowledged, playback fails until the device recovers.
		logger.Warn("audio device unavailable, starting degraded", "error", err)
	}
	defer device.Close()

	if err := waitForConnection(ctx, cfg.Server, logger); err != nil {
		logger.Error("no internet connection", "error", err)
		os.Exit(1)
	}

	session := control.NewSession(
		cfg.Server.URL,
		cfg.Siren.ID,
		parseDuration(cfg.Server.ReconnectBackoff, time.Second, logger),
		parseDuration(cfg.Server.ReconnectMaxBackoff, 30*time.Second, logger),
		logger,
	)

	mixer := audio.NewMixer(cfg.Audio.WorkDir, logger)
	speller := tts.NewClient(cfg.TTS.BaseURL)
	translator := translate.NewClient(cfg.Translate.BaseURL, metrics, logger)
	gate := netcheck.NewGate(
		cfg.Connectivity.ProbeTarget,
		cfg.Connectivity.ProbeTimeoutSec,
		cfg.Connectivity.WiredInterfaces,
		cfg.Connectivity.CellularInterface,
		logger,
	)

	controller := application.NewController(
		cfg.Audio.AssetDir,
		speller,
		translator,
		mixer,
		device,
		session,
		metrics,
		logger,
	)
	router := application.NewRouter(cfg.Siren.ID, controller, gate, session, metrics, logger)

	healthServer := health.NewServer(cfg.Health.Addr, device.Ready, logger)

	logger.Info("starting siren node", "sirenId", cfg.Siren.ID, "server", cfg.Server.URL)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return session.Run(gctx, router)
	})
	g.Go(func() error {
		return healthServer.Run(gctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("siren node error", "error", err)
		os.Exit(1)
	}
}

// waitForConnection blocks until the backend answers a HEAD request, with a
// bounded number of attempts. A siren that boots before its uplink is routed
// waits here instead of burning through websocket redials.
func waitForConnection(ctx context.Context, cfg config.ServerConfig, logger *slog.Logger) error {
	wait := parseDuration(cfg.ProbeWait, 30*time.Second, logger)
	client := &http.Client{Timeout: 10 * time.Second}

	probeURL := httpProbeURL(cfg)
	for attempt := 1; attempt <= cfg.ProbeAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, probeURL, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err == nil {
			resp.Body.Close()
			logger.Info("internet connection confirmed", "attempt", attempt)
			return nil
		}

		logger.Info("waiting for internet connection",
			"attempt", attempt, "of", cfg.ProbeAttempts, "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return errors.New("connection probe attempts exhausted")
}

// httpProbeURL rewrites a websocket server URL into a probeable HTTP one
// when no explicit probe URL is configured.
func httpProbeURL(cfg config.ServerConfig) string {
	u := cfg.ProbeURL
	switch {
	case len(u) > 5 && u[:6] == "wss://":
		return "https://" + u[6:]
	case len(u) > 4 && u[:5] == "ws://":
		return "http://" + u[5:]
	}
	return u
}

func parseDuration(value string, fallback time.Duration, logger *slog.Logger) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		logger.Warn("invalid duration, using default", "value", value, "default", fallback)
		return fallback
	}
	return d
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
