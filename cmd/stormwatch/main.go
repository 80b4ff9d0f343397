package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/asifah/stormwatch/internal/config"
	"github.com/asifah/stormwatch/internal/engine"
	"github.com/asifah/stormwatch/internal/feeds"
	"github.com/asifah/stormwatch/internal/logger"
	"github.com/asifah/stormwatch/internal/notify"
	"github.com/asifah/stormwatch/internal/scoring"
	"github.com/asifah/stormwatch/internal/server"
	"github.com/asifah/stormwatch/internal/storage"
)

var configPath = flag.String("config", "configs/config.yaml", "Path to configuration file")

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("Configuration loaded from %s", *configPath)

	// The scoring tables come from config; a malformed table means the
	// service cannot produce meaningful scores, so refuse to start.
	credTable, err := cfg.BuildCredibilityTable()
	if err != nil {
		logger.Fatal("Invalid source credibility table: %v", err)
	}
	lex, err := cfg.BuildLexicon()
	if err != nil {
		logger.Fatal("Invalid severity lexicon: %v", err)
	}
	baseTable, err := cfg.BuildBaselineTable()
	if err != nil {
		logger.Fatal("Invalid baseline table: %v", err)
	}

	store, err := storage.New(cfg.Storage.DBPath, cfg.Storage.MaxEventsPerTarget)
	if err != nil {
		logger.Fatal("Failed to initialize storage: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close storage: %v", err)
		}
	}()

	aggregator := scoring.NewAggregator(credTable, lex, baseTable, scoring.Options{
		HalfLife:        cfg.Scoring.HalfLife,
		Cutoff:          cfg.Scoring.Cutoff,
		MomentumEpsilon: cfg.Scoring.MomentumEpsilon,
	})

	var alerter engine.Alerter
	if cfg.Telegram.Enabled {
		notifier, err := notify.New(cfg.Telegram.BotToken, cfg.Telegram.ChatID, notify.Options{
			MaxRetries:     cfg.Telegram.MaxRetries,
			RetryDelayBase: cfg.Telegram.RetryDelayBase,
			AlertScore:     cfg.Telegram.AlertScore,
			Cooldown:       cfg.Telegram.Cooldown,
		})
		if err != nil {
			logger.Fatal("Failed to initialize Telegram notifier: %v", err)
		}
		alerter = notifier
		logger.Info("Telegram alerts enabled (threshold: %.1f)", cfg.Telegram.AlertScore)
	} else {
		logger.Debug("Telegram alerts disabled")
	}

	eng := engine.New(buildFetchers(cfg), buildQueries(cfg), store, aggregator, alerter, engine.Options{
		WindowDays: cfg.Fetch.WindowDays,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, cleaning up...")
		cancel()
	}()

	srv := server.New(eng, cfg.Server.DailyRequestLimit)
	srv.StartMetrics(cfg.Server.MetricsAddr)

	httpSrv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      srv.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("API listening on %s", cfg.Server.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("API server error: %v", err)
			cancel()
		}
	}()

	logger.Info("Starting assessment service (interval: %v, targets: %v)", cfg.Fetch.Interval, eng.Targets())

	ticker := time.NewTicker(cfg.Fetch.Interval)
	defer ticker.Stop()
	pruneTicker := time.NewTicker(cfg.Storage.PruneInterval)
	defer pruneTicker.Stop()

	// Run the initial cycle immediately
	eng.RunCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := httpSrv.Shutdown(shutdownCtx); err != nil {
				logger.Error("API shutdown error: %v", err)
			}
			shutdownCancel()
			logger.Info("Service stopped")
			return

		case <-ticker.C:
			eng.RunCycle(ctx)

		case <-pruneTicker.C:
			eng.Maintain()
		}
	}
}

// buildFetchers assembles the enabled upstream fetchers from config.
func buildFetchers(cfg *config.Config) []feeds.Fetcher {
	var fetchers []feeds.Fetcher

	if cfg.Fetch.NewsAPI.Enabled {
		fetchers = append(fetchers, feeds.NewNewsAPIClient(
			cfg.Fetch.NewsAPI.BaseURL,
			cfg.Fetch.NewsAPI.APIKey,
			cfg.Fetch.NewsAPI.PageSize,
			cfg.Fetch.Timeout,
			cfg.Fetch.MaxRetries,
			cfg.Fetch.RetryDelayBase,
		))
	}

	if cfg.Fetch.GDELT.Enabled {
		for _, lang := range cfg.Fetch.GDELT.Languages {
			fetchers = append(fetchers, feeds.NewGDELTClient(
				cfg.Fetch.GDELT.BaseURL,
				lang,
				cfg.Fetch.GDELT.MaxRecords,
				cfg.Fetch.Timeout,
				cfg.Fetch.MaxRetries,
				cfg.Fetch.RetryDelayBase,
			))
		}
	}

	if cfg.Fetch.Reddit.Enabled {
		fetchers = append(fetchers, feeds.NewRedditClient(
			cfg.Fetch.Reddit.BaseURL,
			cfg.Fetch.Reddit.UserAgent,
			cfg.Fetch.Reddit.Limit,
			cfg.Fetch.Timeout,
			cfg.Fetch.MaxRetries,
			cfg.Fetch.RetryDelayBase,
		))
	}

	if cfg.Fetch.RSS.Enabled {
		for _, feed := range cfg.Fetch.RSS.Feeds {
			fetchers = append(fetchers, feeds.NewRSSClient(
				feed.Name,
				feed.URL,
				feed.Targets,
				feed.MaxItems,
				cfg.Fetch.Timeout,
				cfg.Fetch.MaxRetries,
				cfg.Fetch.RetryDelayBase,
			))
		}
	}

	logger.Info("Configured %d fetchers", len(fetchers))
	return fetchers
}

// buildQueries converts the per-target config into fetcher queries.
func buildQueries(cfg *config.Config) map[string]feeds.TargetQuery {
	queries := make(map[string]feeds.TargetQuery, len(cfg.Targets))
	for target, tc := range cfg.Targets {
		queries[target] = feeds.TargetQuery{
			Target:         target,
			Keywords:       tc.Keywords,
			RedditKeywords: tc.RedditKeywords,
			Subreddits:     tc.Subreddits,
		}
	}
	return queries
}
