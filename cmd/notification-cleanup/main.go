package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/cyberpapiii/yipyap-sub000/internal/database"
)

const defaultRetention = 30 * 24 * time.Hour

func main() {
	var (
		databaseURL = flag.String("database", os.Getenv("DATABASE_URL"), "PostgreSQL URL (or set DATABASE_URL env)")
		retention   = flag.Duration("retention", defaultRetention, "Keep read/dismissed notifications for this long")
		dryRun      = flag.Bool("dry-run", false, "Dry run mode (count instead of delete)")
		verbose     = flag.Bool("verbose", false, "Verbose logging")
	)
	flag.Parse()

	if *databaseURL == "" {
		log.Fatal("Database URL required (--database or DATABASE_URL env)")
	}
	if *retention <= 0 {
		log.Fatal("Retention must be positive")
	}

	// Configure logging
	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(handler))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := database.Connect(ctx, *databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	cutoff := time.Now().Add(-*retention)
	slog.Info("Starting notification cleanup",
		"retention", retention.String(),
		"cutoff", cutoff.Format(time.RFC3339),
		"dry_run", *dryRun)

	start := time.Now()
	var purged int64

	if *dryRun {
		// Same predicate PurgeRead deletes by
		err = pool.QueryRow(ctx,
			`SELECT COUNT(*) FROM notifications
			 WHERE created_at < $1 AND (read_at IS NOT NULL OR deleted_at IS NOT NULL)`,
			cutoff,
		).Scan(&purged)
	} else {
		repo := database.NewNotificationRepo(pool)
		purged, err = repo.PurgeRead(ctx, cutoff)
	}
	if err != nil {
		log.Fatalf("Cleanup failed: %v", err)
	}

	slog.Info("Cleanup complete",
		"purged", purged,
		"dry_run", *dryRun,
		"duration_ms", time.Since(start).Milliseconds())
}
