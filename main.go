package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AlfredvdM/igrow-lms-sub000/api"
	"github.com/AlfredvdM/igrow-lms-sub000/config"
	"github.com/AlfredvdM/igrow-lms-sub000/services"
	"github.com/AlfredvdM/igrow-lms-sub000/storage"
	"github.com/AlfredvdM/igrow-lms-sub000/utils"
)

const usage = "usage: igrow-leads [serve|sync|report]"

func main() {
	cfg := config.Load()
	logger := utils.NewLogger(cfg.AppEnv)
	defer logger.Sync()

	cmd := "serve"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch cmd {
	case "serve":
		err = runServe(ctx, cfg, logger)
	case "sync":
		err = runSync(ctx, cfg, logger)
	case "report":
		err = runReport(ctx, cfg, logger)
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil {
		logger.Error("%s failed: %v", cmd, err)
		stop()
		logger.Sync()
		os.Exit(1)
	}
}

func runServe(ctx context.Context, cfg *config.Config, logger *utils.Logger) error {
	logger.Info("=== Lead dashboard API starting ===")
	logger.Info("Config: addr %s | source: %s | timezone: %s | concurrency: %d | rate: %dms",
		cfg.HTTPAddr, cfg.DataSource, cfg.DashboardTimezone, cfg.MaxConcurrency, cfg.RateLimitMs)

	loader, closeLoader, err := newLeadLoader(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeLoader()

	if cfg.AppEnv != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	handler := api.NewHandler(loader, services.NewReportService(logger), cfg.Location(), logger)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewRouter(cfg, handler, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runSync(ctx context.Context, cfg *config.Config, logger *utils.Logger) error {
	logger.Info("=== Lead sync starting ===")

	loader, closeCache, err := newSheetLoader(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeCache()

	store, err := storage.NewPostgresStore(ctx, cfg.DSN(), cfg.DefaultPhoneRegion, cfg.MaxRetries, logger)
	if err != nil {
		logger.Error("Make sure the database is reachable: docker compose up -d")
		return err
	}
	defer store.Close()

	n, err := services.NewSyncService(loader, store, logger).Run(ctx)
	if err != nil {
		return err
	}
	logger.Info("Sync complete: %d leads stored in PostgreSQL (table: leads)", n)
	return nil
}

func runReport(ctx context.Context, cfg *config.Config, logger *utils.Logger) error {
	loader, closeLoader, err := newLeadLoader(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeLoader()

	leads, err := loader.Load(ctx)
	if err != nil {
		return err
	}
	if len(leads) == 0 {
		logger.Warn("No leads found, the report will be empty")
	}

	csvWriter, err := storage.NewCSVWriter(cfg.CSVOutputPath)
	if err != nil {
		return err
	}
	defer csvWriter.Close()
	if err := csvWriter.Write(ctx, services.SortLeads(leads, "timestamp", "desc")); err != nil {
		logger.Error("CSV write failed: %v", err)
	} else {
		logger.Info("Leads saved to %s", cfg.CSVOutputPath)
	}

	reportSvc := services.NewReportService(logger)
	reportSvc.Print(os.Stdout, reportSvc.Generate(leads, time.Now().In(cfg.Location())))

	fmt.Printf("  Done. %d leads | CSV → %s\n\n", len(leads), cfg.CSVOutputPath)
	return nil
}

// newLeadLoader returns the request-time lead source selected by DATA_SOURCE.
func newLeadLoader(ctx context.Context, cfg *config.Config, logger *utils.Logger) (storage.LeadLoader, func(), error) {
	if cfg.DataSource == "database" {
		store, err := storage.NewPostgresStore(ctx, cfg.DSN(), cfg.DefaultPhoneRegion, cfg.MaxRetries, logger)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	}
	return newSheetLoader(ctx, cfg, logger)
}

// newSheetLoader builds the Sheets-backed loader, with a Redis row cache
// when REDIS_URL is set and reachable.
func newSheetLoader(ctx context.Context, cfg *config.Config, logger *utils.Logger) (*services.SheetLoader, func(), error) {
	var cache *storage.RowCache
	closeCache := func() {}
	if cfg.RedisURL != "" {
		c, err := storage.NewRowCache(ctx, cfg.RedisURL, cfg.SheetCacheTTL)
		if err != nil {
			logger.Warn("Redis unavailable, reading sheets without a cache: %v", err)
		} else {
			cache = c
			closeCache = func() { _ = c.Close() }
		}
	}

	reader, err := storage.NewSheetsReader(ctx, cfg, cache, logger)
	if err != nil {
		closeCache()
		return nil, nil, err
	}
	normalizer := services.NewNormalizer(logger, cfg.Location())
	return services.NewSheetLoader(reader, normalizer, logger), closeCache, nil
}
