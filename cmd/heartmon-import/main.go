package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/luctussier/Heart-Monitor/internal/config"
	"github.com/luctussier/Heart-Monitor/internal/importer"
	"github.com/luctussier/Heart-Monitor/internal/ingest/beatlog"
	"github.com/luctussier/Heart-Monitor/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	logPath := flag.String("path", "", "beat log file or directory of logs (required)")
	dryRun := flag.Bool("dry-run", false, "report counts without inserting into database")
	charts := flag.Bool("charts", false, "write a GIF chart next to each log")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *logPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: heartmon-import -config config.yaml -path /path/to/logs [-dry-run] [-charts]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}
	if _, err := os.Stat(*logPath); err != nil {
		log.Error("log path does not exist", "path", *logPath)
		os.Exit(1)
	}

	ctx := context.Background()

	if *dryRun {
		log.Info("DRY RUN mode: no data will be written to the database")
		stats, err := importer.New(nil, log, true, *charts).Import(ctx, *logPath)
		printStats(log, stats)
		if err != nil {
			log.Error("import failed", "error", err)
			os.Exit(1)
		}
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	dsn := cfg.Database.DSN()
	if _, err := storage.RunMigrations(dsn, "migrations"); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected")

	logID, err := db.InsertImportLog(ctx, storage.ImportLog{UserID: 1, Source: "import", Status: "running"})
	if err != nil {
		log.Warn("failed to create import log", "error", err)
	}

	start := time.Now()
	imp := importer.New(beatlog.NewProvider(db, log), log, false, *charts)
	stats, importErr := imp.Import(ctx, *logPath)
	printStats(log, stats)

	if logID != 0 {
		durationMs := int(time.Since(start).Milliseconds())
		entry := storage.ImportLog{
			Status:           "success",
			SessionsReceived: stats.SessionsInserted + stats.SessionsDuplicated,
			SessionsInserted: stats.SessionsInserted,
			BeatsInserted:    stats.BeatsInserted,
			BeatsReceived:    stats.BeatsInserted,
			DurationMs:       &durationMs,
		}
		if importErr != nil {
			entry.Status = "error"
			msg := importErr.Error()
			entry.ErrorMessage = &msg
		}
		if err := db.UpdateImportLog(ctx, logID, entry); err != nil {
			log.Warn("failed to update import log", "error", err)
		}
	}

	if importErr != nil {
		log.Error("import failed", "error", importErr)
		os.Exit(1)
	}
	log.Info("import complete")
}

func printStats(log *slog.Logger, stats *importer.Stats) {
	log.Info("import stats",
		"files_processed", stats.FilesProcessed,
		"files_skipped", stats.FilesSkipped,
		"files_errored", stats.FilesErrored,
		"sessions_inserted", stats.SessionsInserted,
		"sessions_duplicated", stats.SessionsDuplicated,
		"sessions_invalid", stats.SessionsInvalid,
		"beats_inserted", stats.BeatsInserted,
		"charts_written", stats.ChartsWritten,
	)
}
