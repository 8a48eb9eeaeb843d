package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/kpcollege/studentportal/internal/common"
	"github.com/kpcollege/studentportal/internal/doctext"
	"github.com/kpcollege/studentportal/internal/export"
	"github.com/kpcollege/studentportal/internal/importer"
	"github.com/kpcollege/studentportal/internal/ingest"
	"github.com/kpcollege/studentportal/internal/llm/openai"
	"github.com/kpcollege/studentportal/internal/seed"
	"github.com/kpcollege/studentportal/internal/server"
	"github.com/kpcollege/studentportal/internal/store"
)

func main() {
	// Logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()
	log := logger.Sugar()
	slogger := slog.Default()

	// Config
	cfg, err := common.LoadConfig()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	// Context with signal
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Canonical state + demo dataset
	st := store.New(slogger)
	if err := seed.Load(st, slogger); err != nil {
		log.Fatalf("seeding demo data: %v", err)
	}

	// Extraction pipeline
	docs := doctext.NewExtractor(doctext.Config{
		Pdftotext: cfg.Extractor.Pdftotext,
		MaxBytes:  cfg.Extractor.MaxBytes,
	}, slogger)
	extractor := openai.NewClient(openai.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	}, slogger)
	imp := importer.New(importer.Config{ExtractTimeout: cfg.LLM.Timeout}, st, docs, extractor, slogger)
	exp := export.NewService(st, slogger)

	// Optional drop-directory ingestion
	if cfg.Ingest.WatchDir != "" {
		ing := ingest.NewService(imp, slogger)
		go func() {
			err := ing.Run(ctx, ingest.WatchConfig{
				Root:        cfg.Ingest.WatchDir,
				InitialScan: cfg.Ingest.InitialScan,
				Debounce:    cfg.Ingest.Debounce,
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Errorf("ingest watcher: %v", err)
			}
		}()
		log.Infof("watching %s for dropped documents", cfg.Ingest.WatchDir)
	}

	// HTTP server
	svc := server.NewService(st, imp, exp, logger)
	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: svc.Router(),
	}

	go func() {
		log.Infof("portal serving on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("serve: %v", err)
		}
	}()

	<-ctx.Done()
	log.Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("shutdown: %v", err)
	}
}
