package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/DianaBudova/AdvertisingAgency/internal/broker/rabbitmq"
	"github.com/DianaBudova/AdvertisingAgency/internal/cache"
	"github.com/DianaBudova/AdvertisingAgency/internal/domain/catalog"
	"github.com/DianaBudova/AdvertisingAgency/internal/domain/discount"
	"github.com/DianaBudova/AdvertisingAgency/internal/domain/order"
	"github.com/DianaBudova/AdvertisingAgency/internal/domain/quickorder"
	"github.com/DianaBudova/AdvertisingAgency/internal/handler"
	"github.com/DianaBudova/AdvertisingAgency/internal/storage/postgres"
	"github.com/DianaBudova/AdvertisingAgency/pkg/health"
	"github.com/DianaBudova/AdvertisingAgency/pkg/httpmiddleware"
)

// Telemetry provides the tracing and metrics backends. *app.Telemetry from
// go-faster/sdk satisfies it.
type Telemetry interface {
	TracerProvider() trace.TracerProvider
	MeterProvider() metric.MeterProvider
}

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))
	ctx = zctx.Base(ctx, lg)

	// PostgreSQL pool + migrations.
	if err := postgres.RunMigrations(cfg.DatabaseURL); err != nil {
		return errors.Wrap(err, "run migrations")
	}
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	healthSvc := health.New()
	healthSvc.Add(health.Readiness, "postgres", 5*time.Second, health.PingCheck(pool))
	healthSvc.Add(health.Liveness, "goroutines", time.Second, health.GoroutineCountCheck(10000))

	// Catalog reads go through Redis when configured.
	var (
		services    catalog.Repository = postgres.NewCatalogRepository(pool)
		invalidator catalog.Invalidator
		rateLimits  []httpmiddleware.Middleware
	)
	if cfg.Redis.Addr != "" {
		rdb, err := cache.Connect(ctx, cfg.Redis.Addr)
		if err != nil {
			return errors.Wrap(err, "connect redis")
		}
		defer func() { _ = rdb.Close() }()

		healthSvc.Add(health.Readiness, "redis", 2*time.Second, func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
		cached := cache.NewCatalog(services, cache.NewRedisStore(rdb), cfg.Redis.CacheTTL)
		services, invalidator = cached, cached
		if cfg.RateLimit.Max > 0 {
			rateLimits = append(rateLimits, httpmiddleware.RateLimit(httpmiddleware.RateLimitConfig{
				Max:     cfg.RateLimit.Max,
				Window:  cfg.RateLimit.Window,
				KeyFunc: httpmiddleware.HeaderOrIP(handler.APIKeyHeader),
				Counter: cache.NewWindowCounter(rdb),
			}))
		}
	} else {
		lg.Warn("Redis not configured: catalog cache and rate limiting disabled")
	}

	// Order events go to RabbitMQ when configured.
	var publisher order.Publisher = order.NopPublisher{}
	if cfg.AMQPURL != "" {
		conn, err := rabbitmq.Dial(ctx, cfg.AMQPURL)
		if err != nil {
			return errors.Wrap(err, "connect rabbitmq")
		}
		defer func() { _ = conn.Close() }()

		healthSvc.Add(health.Readiness, "rabbitmq", time.Second, conn.Healthy)
		publisher = rabbitmq.NewPublisher(conn.Channel())
	} else {
		lg.Warn("AMQP URL not configured: order events are dropped")
	}

	// Domain services.
	orderService, err := order.NewService(postgres.NewStore(pool), publisher, order.Options{
		TracerProvider: m.TracerProvider(),
		MeterProvider:  m.MeterProvider(),
	})
	if err != nil {
		return errors.Wrap(err, "create order service")
	}
	users := postgres.NewIdentityRepository(pool)
	discountService := discount.NewService(postgres.NewDiscountRepository(pool), users)
	quickOrderService := quickorder.NewService(postgres.NewQuickOrderRepository(pool), services)
	catalogAdmin := catalog.NewAdmin(postgres.NewCatalogRepository(pool), users, invalidator)

	// HTTP handlers.
	h := handler.NewHandler(orderService, discountService, quickOrderService, services, catalogAdmin, users)
	security := handler.NewSecurity(postgres.NewAPIKeyRepository(pool), []byte(cfg.APIKeyPepper))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("GET /readyz", healthSvc.ReadyEndpoint)
	h.Register(mux, append(rateLimits, security.Middleware())...)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(lg),
			httpmiddleware.Recovery(),
			httpmiddleware.Instrument("agency-api", m.TracerProvider(), m.MeterProvider()),
			httpmiddleware.LogRequests(),
		),
	}

	if err := healthSvc.Warmup(ctx); err != nil {
		return errors.Wrap(err, "dependencies not ready")
	}
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}
