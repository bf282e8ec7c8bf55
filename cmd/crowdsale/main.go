package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/xoralabs/ftt-backend-ico/internal/alert"
	"github.com/xoralabs/ftt-backend-ico/internal/api"
	"github.com/xoralabs/ftt-backend-ico/internal/chain"
	"github.com/xoralabs/ftt-backend-ico/internal/chain/circuitbreaker"
	"github.com/xoralabs/ftt-backend-ico/internal/chain/evm"
	"github.com/xoralabs/ftt-backend-ico/internal/chain/ratelimit"
	"github.com/xoralabs/ftt-backend-ico/internal/config"
	"github.com/xoralabs/ftt-backend-ico/internal/ingest"
	"github.com/xoralabs/ftt-backend-ico/internal/reconciliation"
	"github.com/xoralabs/ftt-backend-ico/internal/retry"
	"github.com/xoralabs/ftt-backend-ico/internal/settings"
	"github.com/xoralabs/ftt-backend-ico/internal/stats"
	"github.com/xoralabs/ftt-backend-ico/internal/store/postgres"
	redispkg "github.com/xoralabs/ftt-backend-ico/internal/store/redis"
	"github.com/xoralabs/ftt-backend-ico/internal/tracing"
)

const (
	serviceName           = "ftt-crowdsale"
	dbPoolStatsInterval   = 15 * time.Second
	serverShutdownTimeout = 5 * time.Second
)

var newStreamFactory = func(ctx context.Context, redisURL string) (redispkg.MessageTransport, error) {
	return redispkg.NewStream(ctx, redisURL, redispkg.DefaultMaxLen)
}

type poolStatsReporter interface {
	ReportPoolStats()
}

// ingestHealth is satisfied by *ingest.Ingestor.
type ingestHealth interface {
	Health() ingest.HealthSnapshot
}

// resolveStreamBackend returns the purchase fan-out transport. A nil
// transport means publishing is off, including when streaming is enabled
// without a REDIS_URL.
func resolveStreamBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) (redispkg.MessageTransport, error) {
	if !cfg.Redis.StreamEnabled {
		return nil, nil
	}

	redisURL := strings.TrimSpace(cfg.Redis.URL)
	if redisURL == "" {
		logger.Warn("STREAM_ENABLED without REDIS_URL, purchase publishing disabled",
			"stream", cfg.Redis.StreamName,
		)
		return nil, nil
	}

	stream, err := newStreamFactory(ctx, redisURL)
	if err != nil {
		return nil, fmt.Errorf("initialize redis stream transport: %w", err)
	}
	if stream == nil {
		return nil, fmt.Errorf("initialize redis stream transport: backend is nil")
	}

	logger.Info("redis stream transport enabled", "stream", cfg.Redis.StreamName)
	return stream, nil
}

func startDBPoolStatsPump(ctx context.Context, db poolStatsReporter, interval time.Duration, logger *slog.Logger) {
	if db == nil || interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()

		db.ReportPoolStats()
		for {
			select {
			case <-ctx.Done():
				logger.Info("db pool stats sampler stopped", "cause", "context_done")
				return
			case <-ticker.C:
				db.ReportPoolStats()
			}
		}
	}()
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLogLevel(cfg.Log.Level)}))
	slog.SetDefault(logger)

	logger.Info("starting crowdsale backend",
		"run_mode", cfg.RunMode,
		"contract", cfg.Chain.ContractAddress,
		"streaming_rpc", evm.IsStreamingURL(cfg.Chain.RPCURL),
		"port", cfg.Server.Port,
		"health_port", cfg.Server.HealthPort,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry tracing
	tracingEndpoint := ""
	if cfg.Tracing.Enabled {
		tracingEndpoint = cfg.Tracing.Endpoint
	}
	shutdownTracing, err := tracing.Init(ctx, tracing.Config{
		ServiceName: serviceName,
		Endpoint:    tracingEndpoint,
		Insecure:    cfg.Tracing.Insecure,
		SampleRatio: cfg.Tracing.SampleRatio,
	})
	if err != nil {
		logger.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("tracing shutdown error", "error", err)
		}
	}()
	if cfg.Tracing.Enabled {
		logger.Info("tracing enabled", "endpoint", cfg.Tracing.Endpoint)
	}

	// Connect to PostgreSQL
	db, err := postgres.New(ctx, postgres.Config{
		URL:             cfg.DB.URL,
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
	})
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.RunMigrations(ctx, postgres.Migrations(), logger); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to database")

	// Listener-only processes never sign.
	privateKey := cfg.Chain.PrivateKey
	if !cfg.RunMode.ServesAPI() {
		privateKey = ""
	}
	client, err := evm.Dial(ctx, evm.Config{
		RPCURL:          cfg.Chain.RPCURL,
		ContractAddress: cfg.Chain.ContractAddress,
		PrivateKey:      privateKey,
		ChainID:         cfg.Chain.ChainID,
		FinalityTimeout: cfg.Chain.FinalityTimeout,
		BackfillChunk:   cfg.Ingest.BackfillChunk,
		PollInterval:    cfg.Ingest.PollInterval,
		Limiter:         ratelimit.NewLimiter(cfg.Chain.RateLimitRPS, cfg.Chain.RateLimitBurst, "crowdsale"),
		Breaker: circuitbreaker.New(circuitbreaker.Config{
			Endpoint: "crowdsale",
			OnStateChange: func(from, to circuitbreaker.State) {
				logger.Warn("rpc circuit breaker state changed", "from", from, "to", to)
			},
		}),
	}, logger)
	if err != nil {
		logger.Error("failed to connect to chain", "error", err, "rpc_url", cfg.Chain.RPCURL)
		os.Exit(1)
	}
	defer client.Close()
	crowdsale := chain.NewCrowdsale(client, client)

	streamBackend, err := resolveStreamBackend(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize stream transport", "error", err)
		os.Exit(1)
	}
	if streamBackend != nil {
		defer streamBackend.Close()
	}

	alerter := alert.New(alert.Config{
		SlackWebhookURL: cfg.Alert.SlackWebhookURL,
		WebhookURL:      cfg.Alert.WebhookURL,
		Cooldown:        cfg.Alert.Cooldown,
	}, logger)

	// Create repositories
	purchases := postgres.NewPurchaseRepo(db)
	whitelist := postgres.NewWhitelistRepo(db)
	siteSettings := postgres.NewSiteSettingsRepo(db)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	g, gCtx := errgroup.WithContext(ctx)

	var health ingestHealth
	if cfg.RunMode.Ingests() {
		opts := []ingest.Option{ingest.WithAlerter(alerter)}
		if streamBackend != nil {
			opts = append(opts, ingest.WithTransport(streamBackend))
		}
		ingestor := ingest.New(client, purchases, ingest.Config{
			StartBlock: cfg.Ingest.StartBlock,
			BufferSize: cfg.Ingest.BufferSize,
			Backoff: retry.Backoff{
				Initial: cfg.Ingest.BackoffInitial,
				Max:     cfg.Ingest.BackoffMax,
				Jitter:  retry.DefaultBackoff.Jitter,
			},
			TokenDecimals: cfg.Ingest.TokenDecimals,
			StreamName:    cfg.Redis.StreamName,
			StableAfter:   cfg.Ingest.StableAfter,
		}, logger, opts...)

		health = ingestor

		g.Go(func() error {
			return ingestor.Run(gCtx)
		})
	}

	if cfg.RunMode.ServesAPI() {
		reconciler := reconciliation.NewService(crowdsale, whitelist, alerter, logger)
		aggregator := stats.NewAggregator(crowdsale, purchases, whitelist, stats.Config{
			Lenient:     cfg.Stats.Lenient,
			CapCacheTTL: cfg.Stats.CapCacheTTL,
		}, logger)
		site, err := settings.NewService(siteSettings, logger)
		if err != nil {
			logger.Error("failed to load default site settings", "error", err)
			os.Exit(1)
		}

		server := api.NewServer(reconciler, aggregator, site, api.Config{
			AdminAPIKey:    cfg.Server.AdminAPIKey,
			AllowedOrigins: slices.Concat(api.DefaultAllowedOrigins, cfg.Server.ExtraOrigins),
		}, logger)
		defer server.Close()
		if cfg.Server.AdminAPIKey == "" {
			logger.Warn("ADMIN_API_KEY is not set, admin routes will answer 500")
		}

		g.Go(func() error {
			return runHTTPServer(gCtx, "api", cfg.Server.Port, server.Handler(), logger)
		})
		g.Go(func() error {
			return reconciler.RunPeriodic(gCtx, cfg.Whitelist.SweepInterval)
		})
	}

	// Health check server
	g.Go(func() error {
		return runHTTPServer(gCtx, "health", cfg.Server.HealthPort, healthHandler(cfg.RunMode, health, logger), logger)
	})

	startDBPoolStatsPump(gCtx, db, dbPoolStatsInterval, logger)

	// Signal handler
	g.Go(func() error {
		select {
		case sig := <-sigCh:
			logger.Info("received signal, shutting down", "signal", sig)
			cancel()
			return nil
		case <-gCtx.Done():
			return nil
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("crowdsale backend exited with error", "error", err)
		os.Exit(1)
	}

	logger.Info("crowdsale backend shut down gracefully")
}

// healthHandler serves /healthz and /metrics. A nil ingestor (api mode)
// omits the ingestor section.
func healthHandler(mode config.RunMode, ingestor ingestHealth, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		body := struct {
			Status   string                 `json:"status"`
			RunMode  config.RunMode         `json:"run_mode"`
			Ingestor *ingest.HealthSnapshot `json:"ingestor,omitempty"`
		}{Status: "ok", RunMode: mode}
		if ingestor != nil {
			snap := ingestor.Health()
			body.Ingestor = &snap
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(body); err != nil {
			logger.Warn("failed to write health response", "error", err)
		}
	})
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func runHTTPServer(ctx context.Context, name string, port int, handler http.Handler, logger *slog.Logger) error {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), serverShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && err != http.ErrServerClosed {
			logger.Warn("server shutdown error", "server", name, "error", err)
		}
	}()

	logger.Info("server started", "server", name, "port", port)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("%s server: %w", name, err)
	}
	return nil
}
