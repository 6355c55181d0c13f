// Command leadscreen runs one lead screening job: it pulls unprocessed
// candidate leads from the warehouse, enriches and compliance-screens them
// in adaptive concurrent batches, and bulk-writes the annotated results.
//
// SIGINT/SIGTERM request cooperative cancellation; the engine observes the
// flag at the next batch boundary and uploads the partial result set unless
// configured to discard it.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/leadforge/leadscreen/config"
	"github.com/leadforge/leadscreen/internal/bootstrap"
	"github.com/leadforge/leadscreen/internal/domain/model"
	"github.com/leadforge/leadscreen/internal/service"
)

const statusPollInterval = 2 * time.Second

func main() {
	ctx := context.Background()
	logger := bootstrap.InitLogger()
	if err := run(ctx, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	scriptID := flag.String("script", "", "source script identifier selecting the candidate set (required)")
	rowLimit := flag.Int("row-limit", 0, "optional cap on candidate rows for this run")
	flag.Parse()

	if *scriptID == "" {
		flag.Usage()
		return errors.New("-script is required")
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "starting leadscreen",
		"script_id", *scriptID,
		"db_host", cfg.Warehouse.Host,
		"db_name", cfg.Warehouse.Name,
		"candidate_table", cfg.Engine.CandidateTable,
		"batch_size", cfg.Engine.BatchSize)

	db, redisClient, lookupDB, err := initInfrastructure(&cfg, logger)
	if err != nil {
		return err
	}
	defer closeWithLog(ctx, logger, "lookup store", lookupDB.Close)
	defer closeWithLog(ctx, logger, "redis", redisClient.Close)
	defer closeWithLog(ctx, logger, "database", db.Close)

	if cfg.Warehouse.RunMigrationsOnStart {
		if err = bootstrap.RunMigrations(ctx, db, logger); err != nil {
			return err
		}
	} else {
		logger.InfoContext(ctx, "skipping database migrations on startup", "reason", "disabled via config")
	}

	adapters, err := bootstrap.BuildAdapters(bootstrap.AdapterDeps{
		Config:      &cfg,
		DB:          db,
		LookupDB:    lookupDB,
		RedisClient: redisClient,
		Logger:      logger,
	})
	if err != nil {
		return err
	}
	defer closeWithLog(ctx, logger, "adapters", adapters.Close)

	svc, err := bootstrap.BuildScreeningService(bootstrap.ServiceDeps{
		Config:   &cfg,
		Adapters: adapters,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	return runJob(ctx, logger, svc, *scriptID, *rowLimit)
}

// runJob starts one job and follows it to a terminal status. The first
// signal requests cooperative cancellation; a second signal forces shutdown.
func runJob(ctx context.Context, logger *slog.Logger, svc *service.ScreeningService, scriptID string, rowLimit int) error {
	var limit *int
	if rowLimit > 0 {
		limit = &rowLimit
	}

	job, err := svc.StartJob(ctx, scriptID, limit)
	if err != nil {
		return fmt.Errorf("start job: %w", err)
	}
	logger.InfoContext(ctx, "screening job accepted", "job_id", job.ID)

	signals := make(chan os.Signal, 2)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	ticker := time.NewTicker(statusPollInterval)
	defer ticker.Stop()

	cancelRequested := false
	for {
		select {
		case sig := <-signals:
			if cancelRequested {
				logger.WarnContext(ctx, "second signal received, forcing shutdown", "signal", sig.String())
				shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
				defer cancel()
				return svc.Shutdown(shutdownCtx)
			}
			cancelRequested = true
			logger.InfoContext(ctx, "signal received, requesting job cancellation", "signal", sig.String())
			if cancelErr := svc.Cancel(ctx, job.ID); cancelErr != nil {
				logger.ErrorContext(ctx, "cancel request failed", "job_id", job.ID, "error", cancelErr)
			}

		case <-ticker.C:
			view, statusErr := svc.Status(ctx, job.ID)
			if statusErr != nil {
				logger.WarnContext(ctx, "status poll failed", "job_id", job.ID, "error", statusErr)
				continue
			}
			logProgress(ctx, logger, view)
			if view.Job.Status.Terminal() {
				return finishJob(ctx, svc, view.Job)
			}
		}
	}
}

func finishJob(ctx context.Context, svc *service.ScreeningService, job *model.Job) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := svc.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if job.Status == model.JobStatusFailed {
		msg := "unknown error"
		if job.LastError != nil {
			msg = *job.LastError
		}
		return fmt.Errorf("job %s failed: %s", job.ID, msg)
	}
	return nil
}

func logProgress(ctx context.Context, logger *slog.Logger, view *service.JobStatusView) {
	attrs := []any{
		"job_id", view.Job.ID,
		"status", string(view.Job.Status),
		"rows_processed", view.Job.RowsProcessed,
		"rows_total", view.Job.RowsTotal,
	}
	if view.Progress != nil {
		attrs = append(attrs,
			"batch", view.Progress.BatchIndex,
			"pct", fmt.Sprintf("%.1f", view.Progress.Percent),
			"message", view.Progress.Message)
	}
	logger.InfoContext(ctx, "screening progress", attrs...)
}

func initInfrastructure(cfg *config.AppConfig, logger *slog.Logger) (*sql.DB, redis.UniversalClient, *sql.DB, error) {
	dbCfg := bootstrap.DatabaseConfig{
		DBConfig:     cfg.Warehouse,
		RedisConfig:  cfg.Redis,
		LookupConfig: cfg.Lookup,
		Logger:       logger,
	}

	db, err := bootstrap.ConnectDB(dbCfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect db: %w", err)
	}

	redisClient, err := bootstrap.ConnectRedis(dbCfg)
	if err != nil {
		err = fmt.Errorf("connect redis: %w", err)
		if cerr := db.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close database: %w", cerr))
		}
		return nil, nil, nil, err
	}

	lookupDB, err := bootstrap.OpenLookupDB(dbCfg)
	if err != nil {
		err = fmt.Errorf("open lookup store: %w", err)
		if cerr := redisClient.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close redis: %w", cerr))
		}
		if cerr := db.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close database: %w", cerr))
		}
		return nil, nil, nil, err
	}

	return db, redisClient, lookupDB, nil
}

func closeWithLog(ctx context.Context, logger *slog.Logger, name string, closeFn func() error) {
	if err := closeFn(); err != nil {
		logger.ErrorContext(ctx, "close "+name+" failed", "error", err)
	}
}
