package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/akikodev/deals-scraper/internal/config"
	"github.com/akikodev/deals-scraper/internal/events"
	"github.com/akikodev/deals-scraper/internal/extract"
	"github.com/akikodev/deals-scraper/internal/fetch"
	"github.com/akikodev/deals-scraper/internal/headers"
	"github.com/akikodev/deals-scraper/internal/ratelimit"
	"github.com/akikodev/deals-scraper/internal/scrape"
	"github.com/akikodev/deals-scraper/internal/storage"
	"github.com/akikodev/deals-scraper/internal/store"
	"github.com/akikodev/deals-scraper/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("starting deals scraper")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("shutdown signal received")
		cancel()
	}()

	st, err := store.NewPostgres(ctx, store.Config{
		Host:        cfg.Store.Host,
		Port:        cfg.Store.Port,
		User:        cfg.Store.User,
		Password:    cfg.Store.Password,
		Database:    cfg.Store.Database,
		SSLMode:     cfg.Store.SSLMode,
		MaxConns:    cfg.Store.MaxConns,
		MinConns:    cfg.Store.MinConns,
		MaxConnLife: cfg.Store.MaxConnLife,
		MaxConnIdle: cfg.Store.MaxConnIdle,
	})
	if err != nil {
		logger.Error("failed to connect to store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	if err := st.EnsureSchema(ctx); err != nil {
		logger.Error("failed to ensure schema", "error", err)
		os.Exit(1)
	}

	fetcher := fetch.NewClient(fetch.Options{
		MaxRetries: cfg.Scraper.MaxRetries,
		RetryDelay: cfg.Scraper.RetryDelay,
		Timeout:    cfg.Scraper.RequestTimeout,
		Limiter:    ratelimit.NewJitterLimiter(cfg.Scraper.CourtesyDelayMin, cfg.Scraper.CourtesyDelayMax),
		Rotator:    headers.NewRotator(cfg.Scraper.UserAgents),
	}, logger)

	var publisher scrape.EventPublisher
	if cfg.Events.Enabled {
		pub := events.NewPublisher(cfg.Events.Addr, cfg.Events.Stream, logger)
		defer pub.Close()
		publisher = pub
	}

	pipeline := scrape.NewPipeline(fetcher, st, extract.AmazonSelectors(), publisher, scrape.Options{
		BaseURL:        cfg.Scraper.BaseURL,
		AffiliateTag:   cfg.Scraper.AffiliateTag,
		LinkDelayMin:   cfg.Scraper.LinkDelayMin,
		LinkDelayMax:   cfg.Scraper.LinkDelayMax,
		SourceDelayMin: cfg.Scraper.SourceDelayMin,
		SourceDelayMax: cfg.Scraper.SourceDelayMax,
	}, logger)

	summary, err := pipeline.Run(ctx, scrape.DefaultSources(cfg.Scraper.LinkCap))
	if err != nil {
		logger.Error("run interrupted", "error", err,
			"synced", summary.Synced, "failed", summary.Failed)
		os.Exit(1)
	}

	if cfg.Scraper.LinksFile != "" && len(summary.Links) > 0 {
		if err := storage.WriteLinks(cfg.Scraper.LinksFile, summary.Links); err != nil {
			logger.Error("failed to write links file", "error", err)
		} else {
			logger.Info("saved affiliate links", "file", cfg.Scraper.LinksFile, "count", len(summary.Links))
		}
	}

	logger.Info("scrape finished",
		"synced", summary.Synced, "skipped", summary.Skipped, "failed", summary.Failed)
}
