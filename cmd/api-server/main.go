// Command api-server runs the advertising agency order API.
package main

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"go.uber.org/zap"

	agency "github.com/DianaBudova/AdvertisingAgency/internal/app"
)

func main() {
	app.Run(func(ctx context.Context, lg *zap.Logger, m *app.Telemetry) error {
		cfg, err := agency.LoadConfig()
		if err != nil {
			return errors.Wrap(err, "config")
		}
		lg.Info("Configuration loaded",
			zap.Bool("redis", cfg.Redis.Addr != ""),
			zap.Bool("amqp", cfg.AMQPURL != ""),
			zap.Int("rate_limit", cfg.RateLimit.Max),
		)
		return agency.Run(ctx, lg, m, cfg)
	})
}
