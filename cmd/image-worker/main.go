package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/akikodev/deals-scraper/internal/config"
	"github.com/akikodev/deals-scraper/internal/fetch"
	"github.com/akikodev/deals-scraper/internal/images"
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
	if err := cfg.ValidateStorage(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("starting image worker")

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

	bucket, err := storage.NewGCSBucket(ctx, cfg.Storage.Bucket)
	if err != nil {
		logger.Error("failed to create bucket client", "error", err)
		os.Exit(1)
	}
	defer bucket.Close()

	results, err := storage.OpenResultsLog(cfg.Images.ResultsLog)
	if err != nil {
		logger.Error("failed to open results log", "error", err)
		os.Exit(1)
	}
	defer results.Close()

	// Image hosts don't rate-limit the way listing pages do; the worker
	// fetches without a courtesy delay and leans on retries alone.
	downloader := fetch.NewClient(fetch.Options{
		MaxRetries: cfg.Images.MaxRetries,
		RetryDelay: cfg.Images.RetryDelay,
		Timeout:    cfg.Scraper.RequestTimeout,
	}, logger)

	pipeline := images.NewPipeline(st, bucket, downloader, results, images.Options{
		BatchSize:   cfg.Images.BatchSize,
		Concurrency: cfg.Images.Concurrency,
		MaxRetries:  cfg.Images.MaxRetries,
		RetryDelay:  cfg.Images.RetryDelay,
		MaxDim:      cfg.Images.MaxDim,
		JPEGQuality: cfg.Images.JPEGQuality,
		BatchDelay:  cfg.Images.BatchDelay,
		KeyPrefix:   cfg.Storage.KeyPrefix,
	}, logger)

	if err := pipeline.Run(ctx); err != nil {
		logger.Error("image batch loop interrupted", "error", err)
		os.Exit(1)
	}

	logger.Info("image worker finished")
}
