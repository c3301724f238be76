package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/culturepulse/pulse/internal/api"
	"github.com/culturepulse/pulse/internal/classifier"
	"github.com/culturepulse/pulse/internal/collector"
	"github.com/culturepulse/pulse/internal/config"
	"github.com/culturepulse/pulse/internal/domain"
	"github.com/culturepulse/pulse/internal/fetcher"
	"github.com/culturepulse/pulse/internal/generator"
	"github.com/culturepulse/pulse/internal/history"
	"github.com/culturepulse/pulse/internal/logger"
	"github.com/culturepulse/pulse/internal/scheduler"
	"github.com/culturepulse/pulse/internal/snapshot"
	"github.com/culturepulse/pulse/internal/taxonomy"
	"github.com/culturepulse/pulse/internal/telemetry"
	"github.com/culturepulse/pulse/internal/trends"
	"github.com/culturepulse/pulse/internal/usage"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "pulse: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", config.GetConfigPath("config.yml"), "path to config file")
	flag.Parse()

	path := *configPath
	if _, err := os.Stat(path); os.IsNotExist(err) {
		path = ""
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return err
	}

	log, err := logger.NewFromLoggingConfig(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck // stdout sync failure at exit is uninteresting

	log.Info("starting pulse",
		logger.String("version", cfg.Service.Version),
		logger.Int("port", cfg.Service.Port),
	)

	tp := telemetry.NewProvider()

	domains, err := taxonomy.LoadOrDefault(cfg.Classification.TaxonomyPath)
	if err != nil {
		return fmt.Errorf("load taxonomy: %w", err)
	}

	cls := classifier.New(log, domains, classifier.Config{
		ReferenceSize: cfg.Classification.ReferenceSize,
	}, tp)

	historyStore, closeHistory, err := openHistory(cfg.History)
	if err != nil {
		return err
	}
	defer closeHistory()

	snapshots, err := snapshot.NewStore(cfg.Snapshots.Dir, log)
	if err != nil {
		return err
	}

	tracker := usage.NewTracker(cfg.Usage.Path, cfg.Usage.Limits, log, tp)

	cache, err := fetcher.NewFileCache(cfg.Fetchers.ScholarCacheDir, cfg.Fetchers.ScholarCacheTTL, log)
	if err != nil {
		return err
	}

	sources := map[string]collector.Searcher{
		fetcher.ServiceNews:    fetcher.NewNewsClient(fetcherConfig(cfg.Fetchers.News), tracker, log, tp),
		fetcher.ServiceScholar: fetcher.NewScholarClient(fetcherConfig(cfg.Fetchers.Scholar), cache, tracker, log, tp),
	}
	coll := collector.New(cls, sources, collector.Config{
		WindowSize:  cfg.Collector.WindowSize,
		Concurrency: cfg.Collector.Concurrency,
	}, log)

	aggregator := trends.New(log, trends.Config{
		SignificanceThreshold: cfg.Trends.SignificanceThreshold,
		NewTopicMultiplier:    cfg.Trends.NewTopicMultiplier,
		Epsilon:               cfg.Trends.Epsilon,
		Clusterer: trends.ClustererConfig{
			MinSharedTerms: cfg.Trends.MinSharedTerms,
			MinClusterSize: cfg.Trends.MinClusterSize,
			TopKeywords:    cfg.Trends.TopKeywords,
			MinTermLength:  cfg.Trends.MinTermLength,
			Stopwords:      cfg.Trends.ExtraStopwords,
		},
	}, tp)

	gen, err := generator.New(generator.Config{
		APIKey:    cfg.Generator.APIKey,
		Model:     cfg.Generator.Model,
		MaxTokens: cfg.Generator.MaxTokens,
		DataDir:   cfg.Generator.DataDir,
	}, tracker, log, tp)
	if err != nil {
		return err
	}

	handler := api.NewHandler(api.HandlerDeps{
		Service:    cfg.Service.Name,
		Version:    cfg.Service.Version,
		Classifier: cls,
		Aggregator: aggregator,
		History:    historyStore,
		Snapshots:  snapshots,
		Collector:  coll,
		Generator:  gen,
		Usage:      tracker,
		Logger:     log,
	})

	server := api.NewServer(api.ServerConfig{
		Port:  cfg.Service.Port,
		Debug: cfg.Service.Debug,
	}, handler, tp.Handler(), log)

	if cfg.Scheduler.Enabled {
		keywords := cfg.Scheduler.Keywords
		if len(keywords) == 0 {
			keywords = taxonomyKeywords(domains)
		}
		sched := scheduler.New(scheduler.Config{
			Interval:      cfg.Scheduler.Interval,
			Keywords:      keywords,
			Sources:       cfg.Scheduler.Sources,
			SnapshotsKept: cfg.Snapshots.Keep,
		}, coll, aggregator, historyStore, snapshots, log)
		if err := sched.Start(); err != nil {
			return err
		}
		defer sched.Stop()
	}

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return err
	case sig := <-shutdown:
		log.Info("shutdown signal received", logger.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		log.Info("server stopped")
	}
	return nil
}

func openHistory(cfg config.HistoryConfig) (history.Store, func(), error) {
	if cfg.Driver == "memory" {
		return history.NewMemoryStore(), func() {}, nil
	}
	store, err := history.OpenSQLite(cfg.Path)
	if err != nil {
		return nil, nil, err
	}
	return store, func() { _ = store.Close() }, nil
}

// taxonomyKeywords derives default collection keywords: the first
// keyword of every category across the loaded taxonomy.
func taxonomyKeywords(domains []domain.CulturalDomain) []string {
	var keywords []string
	for _, d := range domains {
		for _, cat := range d.Categories {
			if len(cat.Keywords) > 0 {
				keywords = append(keywords, cat.Keywords[0])
			}
		}
	}
	return keywords
}

func fetcherConfig(c config.FetcherConfig) fetcher.Config {
	return fetcher.Config{
		BaseURL:           c.BaseURL,
		APIKey:            c.APIKey,
		Timeout:           c.Timeout,
		RequestsPerSecond: c.RequestsPerSecond,
		PageSize:          c.PageSize,
	}
}
