package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/ytsafecheck/backend/internal/api"
	"github.com/ytsafecheck/backend/internal/cache"
	"github.com/ytsafecheck/backend/internal/config"
	"github.com/ytsafecheck/backend/internal/db"
	"github.com/ytsafecheck/backend/internal/health"
	"github.com/ytsafecheck/backend/internal/logger"
	"github.com/ytsafecheck/backend/internal/metrics"
	"github.com/ytsafecheck/backend/internal/middleware"
	"github.com/ytsafecheck/backend/internal/safety"
	"github.com/ytsafecheck/backend/internal/session"
	"github.com/ytsafecheck/backend/internal/storage"
	"github.com/ytsafecheck/backend/internal/transcript"
	"github.com/ytsafecheck/backend/internal/websocket"
	"github.com/ytsafecheck/backend/internal/youtube"
)

// Set with -ldflags "-X main.version=..."
var version = "dev"

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(&logger.Config{
		Level:   logger.ParseLevel(cfg.LogLevel),
		Service: "ytsafecheck",
	})
	logger.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error(ctx, "server exited", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	m := metrics.New()

	checker, err := newChecker(cfg)
	if err != nil {
		return err
	}
	log.Info(ctx, "content checker ready", map[string]any{"source": safety.SourceOf(checker)})

	resultCache, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	defer resultCache.Close()
	if resultCache.Enabled() {
		checker = safety.NewCachedChecker(checker, resultCache, m, cfg.CacheTTL)
	}

	// Optional sinks stay untyped nil when disabled.
	var (
		history     safety.HistoryStore
		historyRead safety.HistoryReader
		archive     safety.ReportArchive
		locator     safety.ReportLocator
		healthCfg   = &health.CheckerConfig{Version: version, Source: safety.SourceOf(checker), Redis: resultCache.Client()}
	)

	if cfg.DatabaseURL != "" {
		database, err := db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer database.Close()
		if err := database.Migrate(ctx); err != nil {
			return err
		}
		repo := db.NewCheckRepository(database)
		history, historyRead = repo, repo
		healthCfg.DB = database.DB
	} else {
		log.Info(ctx, "database not configured, check history disabled")
	}

	if cfg.MinioEndpoint != "" {
		storageCfg := &storage.Config{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
			Region:    cfg.S3Region,
		}
		client, err := storage.New(storageCfg)
		if err != nil {
			return err
		}
		if err := client.EnsureBucket(ctx); err != nil {
			return err
		}
		reports := storage.NewReports(client, storage.NewPresigner(storageCfg, cfg.ReportURLTTL))
		archive, locator = reports, reports
		healthCfg.StorageCheck = reports.Ping
	} else {
		log.Info(ctx, "object storage not configured, report archive disabled")
	}

	checker = safety.NewRecordingChecker(checker, history, archive, m)

	hub := websocket.NewHub(m)
	store := session.NewStore(checker, session.StoreConfig{
		TTL:      cfg.SessionTTL,
		Notifier: websocket.NewNotifier(hub),
		Metrics:  m,
	})
	limiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		RPS:     cfg.RateLimitRPS,
		Burst:   cfg.RateLimitBurst,
		Metrics: m,
	})

	router := api.NewRouter(api.Deps{
		Validation:  youtube.NewHandlers(youtube.NewValidator()),
		Safety:      safety.NewHandlers(checker, historyRead, locator),
		Sessions:    session.NewHandlers(store),
		WebSocket:   websocket.NewHandler(hub, store, cfg.CORSOrigins),
		Health:      health.NewHandler(health.NewChecker(healthCfg)),
		Metrics:     m,
		RateLimiter: limiter,
		Logger:      log,
		CORSOrigins: cfg.CORSOrigins,
	})

	bgCtx, cancelBackground := context.WithCancel(ctx)
	var wg sync.WaitGroup
	for _, loop := range []func(context.Context){hub.Run, store.Run, limiter.Run} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			loop(bgCtx)
		}()
	}
	defer func() {
		cancelBackground()
		wg.Wait()
	}()

	srv := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting server", map[string]any{
			"addr":        cfg.ServerAddr,
			"environment": cfg.Environment,
			"version":     version,
		})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info(context.Background(), "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newChecker(cfg *config.Config) (safety.Checker, error) {
	switch cfg.CheckerMode {
	case config.ModeRemote:
		return safety.NewRemoteChecker(safety.RemoteConfig{
			BaseURL: cfg.RemoteCheckerURL,
			Timeout: cfg.RemoteCheckerTimeout,
		})
	case config.ModeLLM:
		source, err := transcript.New(&transcript.Config{
			YtdlpPath: cfg.YtdlpPath,
			Language:  cfg.TranscriptLang,
		})
		if err != nil {
			return nil, fmt.Errorf("llm checker needs yt-dlp: %w", err)
		}
		return safety.NewLLMChecker(source, safety.LLMConfig{
			BaseURL: cfg.LLMBaseURL,
			APIKey:  cfg.LLMAPIKey,
			Model:   cfg.LLMModel,
		}), nil
	default:
		return safety.NewMockChecker(safety.MockConfig{
			Delay:       cfg.MockDelay,
			Seed:        cfg.MockSeed,
			FailureRate: cfg.MockFailureRate,
		}), nil
	}
}
