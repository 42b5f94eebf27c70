// Command discount-import bulk loads discounts from CSV files, optionally
// gzip-compressed, skipping rows that are already stored.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/urfave/cli/v2"

	"github.com/DianaBudova/AdvertisingAgency/internal/storage/postgres"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cmd := &cli.App{
		Name:      "discount-import",
		Usage:     "load discounts from percentage,start_date,end_date,service_id CSV files",
		ArgsUsage: "FILE [FILE...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "PostgreSQL connection URL",
				EnvVars:  []string{"AGENCY_DATABASE_URL", "DATABASE_URL"},
				Required: true,
			},
			&cli.UintFlag{
				Name:  "expected",
				Usage: "expected number of stored discounts, sizes the duplicate filter",
				Value: 1_000_000,
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "parse and report without writing",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return errors.New("at least one input file is required")
			}
			return run(c.Context, c.String("database-url"), c.Args().Slice(), c.Uint("expected"), c.Bool("dry-run"))
		},
	}

	if err := cmd.RunContext(ctx, os.Args); err != nil {
		slog.Error("discount import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, databaseURL string, files []string, expected uint, dryRun bool) error {
	parsed, err := parseFiles(ctx, files)
	if err != nil {
		return errors.Wrap(err, "parse files")
	}

	var rows int
	for _, p := range parsed {
		rows += len(p.discounts)
		for _, rej := range p.rejected {
			slog.Warn("row rejected",
				slog.String("file", p.path),
				slog.Int("line", rej.line),
				slog.String("reason", rej.err.Error()),
			)
		}
	}
	slog.Info("files parsed", slog.Int("files", len(files)), slog.Int("rows", rows))

	slog.Info("connecting to database")
	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	imp := newImporter(postgres.NewDiscountRepository(pool), expected)
	if err := imp.loadExisting(ctx); err != nil {
		return errors.Wrap(err, "load existing discounts")
	}

	stats, err := imp.importFiles(ctx, parsed, dryRun)
	if err != nil {
		return err
	}

	slog.Info("discount import completed",
		slog.Int("inserted", stats.inserted),
		slog.Int("duplicates", stats.duplicates),
		slog.Int("bloom_false_positives", stats.falsePositives),
		slog.Bool("dry_run", dryRun),
	)
	return nil
}
