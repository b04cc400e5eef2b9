package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"benchboard/internal/classify"
	"benchboard/internal/cli"
	"benchboard/internal/codec"
	"benchboard/internal/config"
	apphttp "benchboard/internal/http"
	"benchboard/internal/ingest"
	gsheet "benchboard/internal/ingest/google"
	"benchboard/internal/log"
	"benchboard/internal/manager"
	"benchboard/internal/store"
	"benchboard/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer func() {
		if err := repo.Close(); err != nil {
			logger.Error("Failed to close SQLite repository", log.FieldError, err)
		}
	}()

	st := store.New(repo, logger)
	mgr := manager.New(st, logger)
	cdc := codec.New(st, logger)

	ctx, stop := cli.ShutdownContext()
	defer stop()

	mgr.SwitchDashboard(ctx, cfg.DefaultDashboardID)

	if err := preloadRoster(ctx, cfg, mgr, logger); err != nil {
		logger.Error("Roster preload failed", log.FieldError, err)
		os.Exit(1)
	}

	srv := apphttp.NewServer(":"+cfg.Port, mgr, st, cdc, logger)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	sweeper := worker.NewSweeper(st, cfg.CleanupInterval, logger)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting benchboard server",
			"port", cfg.Port, log.FieldDBPath, cfg.SQLiteDBPath, log.FieldOperation, log.OpStartup)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		err := sweeper.Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cli.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err, log.FieldOperation, log.OpShutdown)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully", log.FieldOperation, log.OpShutdown)
}

// preloadRoster classifies and saves an initial roster when a source is
// configured, so the default dashboard has data right after startup.
func preloadRoster(ctx context.Context, cfg *config.Config, mgr *manager.Manager, logger *log.Logger) error {
	var source ingest.Source
	switch cfg.RosterSource {
	case config.SourceFile:
		source = ingest.FileSource{Path: cfg.RosterFile}
	case config.SourceSheets:
		client, err := gsheet.NewFromEnv(ctx, logger)
		if err != nil {
			return err
		}
		source = client
	default:
		return nil
	}

	records, err := source.ReadRoster(ctx)
	if err != nil {
		return err
	}

	agg := classify.Records(records)
	if !mgr.SaveDashboardData(ctx, cfg.DefaultDashboardID, agg) {
		logger.Warn("Preloaded aggregate kept in memory only",
			log.FieldDashboardID, cfg.DefaultDashboardID)
	}
	logger.Info("Roster preloaded",
		log.FieldDashboardID, cfg.DefaultDashboardID,
		log.FieldRecordCount, len(records))
	return nil
}
