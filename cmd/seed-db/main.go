// Command seed-db applies migrations and loads fixture data.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/urfave/cli/v2"

	"github.com/DianaBudova/AdvertisingAgency/internal/domain/identity"
	"github.com/DianaBudova/AdvertisingAgency/internal/storage/postgres"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cmd := &cli.App{
		Name:  "seed-db",
		Usage: "apply migrations and upsert fixture data",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "PostgreSQL connection URL",
				EnvVars:  []string{"AGENCY_DATABASE_URL", "DATABASE_URL"},
				Required: true,
			},
			&cli.StringFlag{
				Name:  "fixture",
				Usage: "path to the JSON fixture, gzip-compressed when it ends in .gz",
				Value: "db/seed/agency.json",
			},
			&cli.StringFlag{
				Name:     "api-key",
				Usage:    "API key to seed",
				EnvVars:  []string{"AGENCY_SEED_API_KEY"},
				Required: true,
			},
			&cli.StringFlag{
				Name:    "api-key-pepper",
				Usage:   "HMAC pepper for API key hashing",
				EnvVars: []string{"AGENCY_API_KEY_PEPPER"},
			},
		},
		Action: func(c *cli.Context) error {
			return run(c.Context, c.String("database-url"), c.String("fixture"), c.String("api-key"), c.String("api-key-pepper"))
		},
	}

	if err := cmd.RunContext(ctx, os.Args); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, fixturePath, apiKey, pepper string) error {
	fx, err := readFixture(fixturePath)
	if err != nil {
		return errors.Wrap(err, "read fixture")
	}

	slog.Info("running migrations")
	if err := postgres.RunMigrations(databaseURL); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	slog.Info("connecting to database")
	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	s := postgres.NewSeeder(pool)
	if err := apply(ctx, s, fx); err != nil {
		return err
	}

	slog.Info("seeding default API key")
	hash := identity.HashAPIKey(apiKey, []byte(pepper))
	if err := s.UpsertAPIKey(ctx, identity.APIKey{
		ID:      "default",
		KeyHash: hash,
		Name:    "Default key",
		Scopes:  []string{"orders", "discounts"},
	}); err != nil {
		return errors.Wrap(err, "upsert default API key")
	}
	return nil
}
