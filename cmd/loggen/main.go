// Command loggen writes a synthetic log dataset for the dashboard, either as a
// sampleData.json file or into the log_entries table.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kiranshivaraju/logpulse/internal/config"
	"github.com/kiranshivaraju/logpulse/internal/generator"
	"github.com/kiranshivaraju/logpulse/internal/store"
	"github.com/kiranshivaraju/logpulse/pkg/models"
	"github.com/spf13/cobra"
)

const startLayout = "2006-01-02T15:04:05"

type options struct {
	count         int
	start         string
	seed          int64
	out           string
	postgres      bool
	databaseURL   string
	migrationsDir string
	truncate      bool
}

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "loggen",
		Short: "Generate a synthetic log dataset",
		Long: `loggen produces entries from the nginx, mysql, app and k8s message
catalogs, with timestamps advancing 1 to 5 seconds per entry.

Examples:
  loggen --count 1000 --out sampleData.json
  loggen --seed 42 --start 2025-08-10T00:00:00
  loggen --postgres --database-url postgres://localhost:5432/logpulse --truncate`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, opts, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.IntVarP(&opts.count, "count", "n", 100000, "number of entries to generate")
	f.StringVar(&opts.start, "start", "2025-08-10T00:00:00", "timestamp of the first entry ("+startLayout+")")
	f.Int64Var(&opts.seed, "seed", 0, "random seed (0 picks one from the clock)")
	f.StringVarP(&opts.out, "out", "o", "sampleData.json", "output file, or - for stdout")
	f.BoolVar(&opts.postgres, "postgres", false, "insert into the log_entries table instead of writing a file")
	f.StringVar(&opts.databaseURL, "database-url", os.Getenv("DATABASE_URL"), "Postgres URL used with --postgres")
	f.StringVar(&opts.migrationsDir, "migrations", "migrations", "migrations directory applied before inserting")
	f.BoolVar(&opts.truncate, "truncate", false, "empty log_entries before inserting")

	return cmd
}

func run(ctx context.Context, opts *options, stdout io.Writer) error {
	if opts.count < 0 {
		return fmt.Errorf("--count must not be negative, got %d", opts.count)
	}
	start, err := time.ParseInLocation(startLayout, opts.start, time.UTC)
	if err != nil {
		return fmt.Errorf("--start: %w", err)
	}

	seed := opts.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	gen, err := generator.New(
		generator.WithRand(rand.New(rand.NewSource(seed))),
		generator.WithLocation(time.UTC),
	)
	if err != nil {
		return err
	}
	logs := gen.Dataset(opts.count, start)

	if opts.postgres {
		return writePostgres(ctx, opts, logs)
	}
	return writeFile(opts.out, logs, stdout)
}

func writeFile(path string, logs []models.LogEntry, stdout io.Writer) error {
	w := stdout
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		defer f.Close()
		w = f
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(models.Dataset{Logs: logs}); err != nil {
		return fmt.Errorf("write dataset: %w", err)
	}

	if path != "-" {
		slog.Info("dataset written", "path", path, "count", len(logs))
	}
	return nil
}

func writePostgres(ctx context.Context, opts *options, logs []models.LogEntry) error {
	if opts.databaseURL == "" {
		return fmt.Errorf("--database-url or DATABASE_URL is required with --postgres")
	}

	pool, err := store.Connect(ctx, config.DatabaseConfig{
		URL:             opts.databaseURL,
		MaxOpenConns:    4,
		MaxIdleConns:    1,
		ConnMaxLifetime: 5 * time.Minute,
	})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	if err := store.RunMigrations(opts.databaseURL, opts.migrationsDir); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	s := store.NewPostgresStore(pool)
	if opts.truncate {
		if err := s.TruncateLogEntries(ctx); err != nil {
			return err
		}
	}

	n, err := s.InsertLogEntries(ctx, logs)
	if err != nil {
		return err
	}
	total, err := s.CountLogEntries(ctx)
	if err != nil {
		return err
	}
	slog.Info("dataset inserted", "inserted", n, "total", total)
	return nil
}
