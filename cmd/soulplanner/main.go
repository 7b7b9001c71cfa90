// Command soulplanner opens the task store, migrating its schema if
// needed, and prints a short summary. The visual frontend is a separate
// consumer of the same internal packages; this binary is the startup
// path that guarantees migration runs before anything else touches the
// store.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/soulplanner/soulplanner/internal/config"
	"github.com/soulplanner/soulplanner/internal/notify"
	"github.com/soulplanner/soulplanner/internal/store"
	"github.com/soulplanner/soulplanner/internal/tracker"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "soulplanner: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", config.DefaultConfigPath(), "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "soulplanner"})
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.StorePath), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	s, err := store.Open(cfg.StorePath, store.Options{
		AllowArchivedProjectTasks: cfg.AllowArchivedProjectTasks,
		Logger:                    logger,
	})
	if err != nil {
		var migErr *store.MigrationError
		if errors.As(err, &migErr) {
			return fmt.Errorf("store cannot be verified, not starting: %w", migErr)
		}
		return err
	}
	defer s.Close()

	notifier := notify.New(logger)
	t := tracker.New(s, notifier, tracker.Options{
		OpTimeout: cfg.OpTimeout,
		Logger:    logger,
	})

	ctx := context.Background()

	version, err := s.CurrentVersion(ctx)
	if err != nil {
		return err
	}
	projects, err := t.Projects(ctx, false)
	if err != nil {
		return err
	}
	stats, err := t.Statistics(ctx, nil)
	if err != nil {
		return err
	}

	fmt.Printf("store %s (schema v%d)\n", cfg.StorePath, version)
	fmt.Printf("%d active projects, %d tasks (%d%% complete, %d overdue)\n",
		len(projects), stats.Total, stats.CompletionPercent, stats.Overdue)
	return nil
}
