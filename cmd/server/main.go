// Package main is the entry point for the service. It wires all dependencies
// using samber/do v2, starts the HTTP server, and handles graceful shutdown
// on SIGINT/SIGTERM.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/do/v2"
	"github.com/segmentio/kafka-go"

	"github.com/jsamuelsen11/storefront-service/internal/adapters/cache"
	"github.com/jsamuelsen11/storefront-service/internal/adapters/events"
	adapthttp "github.com/jsamuelsen11/storefront-service/internal/adapters/http"
	"github.com/jsamuelsen11/storefront-service/internal/adapters/http/handlers"
	"github.com/jsamuelsen11/storefront-service/internal/adapters/http/middleware"
	"github.com/jsamuelsen11/storefront-service/internal/adapters/storage/guarded"
	"github.com/jsamuelsen11/storefront-service/internal/adapters/storage/memory"
	"github.com/jsamuelsen11/storefront-service/internal/adapters/storage/mysql"

	"github.com/jsamuelsen11/storefront-service/internal/app"
	"github.com/jsamuelsen11/storefront-service/internal/platform/breaker"
	"github.com/jsamuelsen11/storefront-service/internal/platform/config"
	"github.com/jsamuelsen11/storefront-service/internal/platform/health"
	"github.com/jsamuelsen11/storefront-service/internal/platform/logging"
	"github.com/jsamuelsen11/storefront-service/internal/platform/telemetry"
	"github.com/jsamuelsen11/storefront-service/internal/ports"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const (
	serverShutdownTimeout = 15 * time.Second
	otelShutdownTimeout   = 5 * time.Second
	storageOpenTimeout    = 10 * time.Second
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	profile := os.Getenv("APP_PROFILE")
	if profile == "" {
		return errors.New("APP_PROFILE environment variable is required (e.g. local, dev, qa, prod)")
	}

	// Bootstrap: config, logger, telemetry.
	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)

	ctx := context.Background()
	otel, err := initTelemetry(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	// DI container.
	injector := do.New()

	do.ProvideValue(injector, cfg)
	do.ProvideValue(injector, logger)
	do.ProvideValue(injector, otel.metrics)

	registerDependencies(injector, cfg, logger)

	// Resolve the server (eagerly wires the full graph).
	server, err := do.Invoke[*adapthttp.Server](injector)
	if err != nil {
		return fmt.Errorf("resolving server: %w", err)
	}

	// Register health checkers after the graph is wired.
	registry := do.MustInvoke[ports.HealthRegistry](injector)
	for _, checker := range do.MustInvoke[*storage](injector).checkers {
		registry.Register(checker)
	}
	registry.Register(do.MustInvokeNamed[*breaker.Breaker](injector, storageBreakerName))
	if cfg.Cache.Enabled {
		registry.Register(cache.NewChecker(do.MustInvoke[*redis.Client](injector)))
		registry.Register(do.MustInvokeNamed[*breaker.Breaker](injector, cacheBreakerName))
	}
	if cfg.Events.Enabled {
		registry.Register(events.NewChecker(cfg.Events.Brokers))
	}

	// Start server in background.
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	// Wait for shutdown signal or server error.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("received shutdown signal", slog.String("signal", sig.String()))
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	}

	// Graceful shutdown: drain HTTP requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), serverShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
	}

	// Wait for Start() goroutine to return.
	<-serverErr

	// Flush telemetry.
	otelCtx, otelCancel := context.WithTimeout(context.Background(), otelShutdownTimeout)
	defer otelCancel()

	if err := otel.Shutdown(otelCtx); err != nil {
		logger.Error("telemetry shutdown error", slog.Any("error", err))
	}

	if err := closeConnections(injector, cfg); err != nil {
		logger.Error("closing connections", slog.Any("error", err))
	}

	logger.Info("shutdown complete")
	return nil
}

// otelProviders bundles OpenTelemetry provider lifecycle. All fields are nil
// when telemetry is disabled.
type otelProviders struct {
	tracer  *sdktrace.TracerProvider
	meter   *sdkmetric.MeterProvider
	metrics *telemetry.Metrics
}

// Shutdown flushes both providers. Nil-safe.
func (o *otelProviders) Shutdown(ctx context.Context) error {
	var errs []error
	if o.tracer != nil {
		if err := o.tracer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
		}
	}
	if o.meter != nil {
		if err := o.meter.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter shutdown: %w", err))
		}
	}
	return errors.Join(errs...)
}

func initTelemetry(ctx context.Context, cfg *config.Config) (*otelProviders, error) {
	if !cfg.Telemetry.Enabled {
		return &otelProviders{}, nil
	}

	tp, err := telemetry.InitTracer(ctx,
		cfg.Telemetry.ServiceName,
		cfg.Telemetry.Exporter,
		cfg.Telemetry.Endpoint,
	)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	mp, err := telemetry.InitMeter(ctx,
		cfg.Telemetry.ServiceName,
		cfg.Telemetry.Exporter,
		cfg.Telemetry.Endpoint,
	)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, fmt.Errorf("init meter: %w", err)
	}

	metrics, err := telemetry.NewMetrics(mp, cfg.Telemetry.ServiceName)
	if err != nil {
		_ = tp.Shutdown(ctx)
		_ = mp.Shutdown(ctx)
		return nil, fmt.Errorf("creating metrics: %w", err)
	}

	return &otelProviders{
		tracer:  tp,
		meter:   mp,
		metrics: metrics,
	}, nil
}

// Breaker names double as readiness check names.
const (
	storageBreakerName = "storage-circuit"
	cacheBreakerName   = "redis-circuit"
)

// storage bundles the raw repositories of the configured driver with the
// checkers that report its health.
type storage struct {
	products ports.ProductRepository
	users    ports.UserRepository
	orders   ports.OrderRepository
	checkers []ports.HealthChecker
	closer   func() error
}

func (s *storage) close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}

func openStorage(ctx context.Context, cfg *config.StorageConfig, logger *slog.Logger) (*storage, error) {
	switch cfg.Driver {
	case config.DriverMySQL:
		db, err := mysql.Open(ctx, mysql.Config{
			DSN:             cfg.MySQL.DSN,
			MaxOpenConns:    cfg.MySQL.MaxOpenConns,
			MaxIdleConns:    cfg.MySQL.MaxIdleConns,
			ConnMaxLifetime: cfg.MySQL.ConnMaxLifetime,
		})
		if err != nil {
			return nil, err
		}
		if cfg.MySQL.Migrate {
			if err := mysql.Migrate(ctx, db); err != nil {
				_ = db.Close()
				return nil, err
			}
		}
		logger.Info("storage ready", slog.String("driver", cfg.Driver))
		return newMySQLStorage(db), nil

	default:
		db, err := memory.New()
		if err != nil {
			return nil, err
		}
		logger.Info("storage ready", slog.String("driver", config.DriverMemory))
		return &storage{
			products: memory.NewProductRepository(db),
			users:    memory.NewUserRepository(db),
			orders:   memory.NewOrderRepository(db),
			checkers: []ports.HealthChecker{db},
		}, nil
	}
}

func newMySQLStorage(db *sql.DB) *storage {
	return &storage{
		products: mysql.NewProductRepository(db),
		users:    mysql.NewUserRepository(db),
		orders:   mysql.NewOrderRepository(db),
		checkers: []ports.HealthChecker{mysql.NewChecker(db)},
		closer:   db.Close,
	}
}

// closeConnections releases the storage, cache and broker connections that
// were opened while wiring.
func closeConnections(injector do.Injector, cfg *config.Config) error {
	var errs []error
	if err := do.MustInvoke[*storage](injector).close(); err != nil {
		errs = append(errs, fmt.Errorf("storage: %w", err))
	}
	if cfg.Cache.Enabled {
		if err := do.MustInvoke[*redis.Client](injector).Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis: %w", err))
		}
	}
	if cfg.Events.Enabled {
		if err := do.MustInvoke[*kafka.Writer](injector).Close(); err != nil {
			errs = append(errs, fmt.Errorf("kafka: %w", err))
		}
	}
	return errors.Join(errs...)
}

func registerDependencies(injector *do.RootScope, cfg *config.Config, logger *slog.Logger) {
	do.Provide(injector, func(_ do.Injector) (*storage, error) {
		ctx, cancel := context.WithTimeout(context.Background(), storageOpenTimeout)
		defer cancel()
		return openStorage(ctx, &cfg.Storage, logger)
	})

	do.ProvideNamed(injector, storageBreakerName, func(i do.Injector) (*breaker.Breaker, error) {
		metrics := do.MustInvoke[*telemetry.Metrics](i)
		return breaker.New(&cfg.Storage.CircuitBreaker, storageBreakerName, metrics, logger), nil
	})

	do.ProvideNamed(injector, cacheBreakerName, func(i do.Injector) (*breaker.Breaker, error) {
		metrics := do.MustInvoke[*telemetry.Metrics](i)
		return breaker.New(&cfg.Storage.CircuitBreaker, cacheBreakerName, metrics, logger), nil
	})

	do.Provide(injector, func(_ do.Injector) (*redis.Client, error) {
		return redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.Addr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		}), nil
	})

	do.Provide(injector, func(i do.Injector) (ports.ProductRepository, error) {
		store := do.MustInvoke[*storage](i)
		b := do.MustInvokeNamed[*breaker.Breaker](i, storageBreakerName)
		var repo ports.ProductRepository = guarded.NewProductRepository(store.products, b)
		if cfg.Cache.Enabled {
			client := do.MustInvoke[*redis.Client](i)
			cb := do.MustInvokeNamed[*breaker.Breaker](i, cacheBreakerName)
			repo = cache.NewProductRepository(repo, client, cb, cfg.Cache.TTL, logger)
		}
		return repo, nil
	})

	do.Provide(injector, func(i do.Injector) (ports.UserRepository, error) {
		store := do.MustInvoke[*storage](i)
		b := do.MustInvokeNamed[*breaker.Breaker](i, storageBreakerName)
		return guarded.NewUserRepository(store.users, b), nil
	})

	do.Provide(injector, func(i do.Injector) (ports.OrderRepository, error) {
		store := do.MustInvoke[*storage](i)
		b := do.MustInvokeNamed[*breaker.Breaker](i, storageBreakerName)
		return guarded.NewOrderRepository(store.orders, b), nil
	})

	do.Provide(injector, func(_ do.Injector) (*kafka.Writer, error) {
		return events.NewWriter(&cfg.Events), nil
	})

	do.Provide(injector, func(i do.Injector) (ports.OrderEventPublisher, error) {
		if !cfg.Events.Enabled {
			return events.NoopPublisher{}, nil
		}
		return events.NewKafkaPublisher(do.MustInvoke[*kafka.Writer](i), logger), nil
	})

	do.Provide(injector, func(i do.Injector) (ports.ProductService, error) {
		return app.NewProductService(do.MustInvoke[ports.ProductRepository](i), logger), nil
	})

	do.Provide(injector, func(i do.Injector) (ports.UserService, error) {
		return app.NewUserService(do.MustInvoke[ports.UserRepository](i), logger), nil
	})

	do.Provide(injector, func(i do.Injector) (ports.OrderService, error) {
		return app.NewOrderService(
			do.MustInvoke[ports.OrderRepository](i),
			do.MustInvoke[ports.UserRepository](i),
			do.MustInvoke[ports.ProductRepository](i),
			do.MustInvoke[ports.OrderEventPublisher](i),
			cfg.App.LookupWorkers,
			logger,
		), nil
	})

	do.Provide(injector, func(_ do.Injector) (ports.HealthRegistry, error) {
		return health.New(), nil
	})

	do.Provide(injector, func(i do.Injector) (*handlers.ProductHandler, error) {
		return handlers.NewProductHandler(do.MustInvoke[ports.ProductService](i)), nil
	})

	do.Provide(injector, func(i do.Injector) (*handlers.UserHandler, error) {
		return handlers.NewUserHandler(do.MustInvoke[ports.UserService](i)), nil
	})

	do.Provide(injector, func(i do.Injector) (*handlers.OrderHandler, error) {
		return handlers.NewOrderHandler(do.MustInvoke[ports.OrderService](i)), nil
	})

	do.Provide(injector, func(i do.Injector) (*handlers.HealthHandler, error) {
		registry := do.MustInvoke[ports.HealthRegistry](i)
		return handlers.NewHealthHandler(registry), nil
	})

	do.Provide(injector, func(i do.Injector) (nethttp.Handler, error) {
		metrics := do.MustInvoke[*telemetry.Metrics](i)

		return adapthttp.NewRouter(
			do.MustInvoke[*handlers.ProductHandler](i),
			do.MustInvoke[*handlers.UserHandler](i),
			do.MustInvoke[*handlers.OrderHandler](i),
			do.MustInvoke[*handlers.HealthHandler](i),
			middleware.Recovery(logger),
			middleware.RequestID(),
			middleware.CorrelationID(),
			middleware.RateLimit(cfg.Server.RateLimit.RequestsPerSecond, cfg.Server.RateLimit.Burst),
			middleware.OpenTelemetry(metrics),
			middleware.Logging(logger),
			middleware.Timeout(cfg.Server.WriteTimeout),
		), nil
	})

	do.Provide(injector, func(i do.Injector) (*adapthttp.Server, error) {
		handler := do.MustInvoke[nethttp.Handler](i)
		return adapthttp.NewServer(cfg.Server, handler, logger), nil
	})
}
