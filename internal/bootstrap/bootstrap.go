// Package bootstrap turns a config into ready-to-use components.
package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/shopcart/internal/config"
	"github.com/nikolayk812/shopcart/internal/inventory"
	"github.com/nikolayk812/shopcart/internal/port"
	"github.com/nikolayk812/shopcart/internal/repository"
	"github.com/nikolayk812/shopcart/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

func NewLogger(cfg config.Config, out io.Writer) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("logrus.ParseLevel: %w", err)
	}

	log := logrus.New()
	log.SetOutput(out)
	log.SetLevel(level)
	if cfg.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return log, nil
}

// NewTracerProvider installs a global provider. Spans go to out when tracing
// is enabled; otherwise a no-op provider is used.
func NewTracerProvider(ctx context.Context, cfg config.Config, service string, out io.Writer) (trace.TracerProvider, func(context.Context) error, error) {
	if !cfg.TraceStdout {
		tp := noop.NewTracerProvider()
		otel.SetTracerProvider(tp)
		return tp, func(context.Context) error { return nil }, nil
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(out))
	if err != nil {
		return nil, nil, fmt.Errorf("stdouttrace.New: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceName(service)),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("resource.New: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tp, tp.Shutdown, nil
}

// OpenStorage connects the configured backend. The returned func releases its connections.
func OpenStorage(ctx context.Context, cfg config.StorageConfig, log logrus.FieldLogger) (port.CartStorage, func(), error) {
	nothing := func() {}
	log = log.WithField("driver", cfg.Driver)

	switch cfg.Driver {
	case config.DriverMemory:
		return repository.NewMemory(log), nothing, nil

	case config.DriverFile:
		storage, err := repository.NewFile(cfg.FilePath, log)
		if err != nil {
			return nil, nil, fmt.Errorf("repository.NewFile: %w", err)
		}
		return storage, nothing, nil

	case config.DriverPostgres:
		pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("pgxpool.New: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("pool.Ping: %w", err)
		}
		storage, err := repository.NewPostgres(pool, cfg.Slot, log)
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("repository.NewPostgres: %w", err)
		}
		return storage, pool.Close, nil

	case config.DriverRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("client.Ping: %w", err)
		}
		storage, err := repository.NewRedis(client, cfg.Slot, log)
		if err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("repository.NewRedis: %w", err)
		}
		return storage, func() { _ = client.Close() }, nil

	case config.DriverMySQL:
		dsn, err := mysql.ParseDSN(cfg.MySQLDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("mysql.ParseDSN: %w", err)
		}
		connector, err := mysql.NewConnector(dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("mysql.NewConnector: %w", err)
		}
		db := sql.OpenDB(connector)
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("db.PingContext: %w", err)
		}
		storage, err := repository.NewMySQL(db, cfg.Slot, log)
		if err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("repository.NewMySQL: %w", err)
		}
		return storage, func() { _ = db.Close() }, nil
	}

	return nil, nil, fmt.Errorf("driver[%s] is not supported", cfg.Driver)
}

type Deps struct {
	Log            logrus.FieldLogger
	Notifier       port.Notifier
	TracerProvider trace.TracerProvider
}

// NewStore wires storage, the inventory client and the cart store.
func NewStore(ctx context.Context, cfg config.Config, deps Deps) (*service.Store, func(), error) {
	if deps.Log == nil || deps.Notifier == nil || deps.TracerProvider == nil {
		return nil, nil, errors.New("deps are incomplete")
	}

	storage, closeStorage, err := OpenStorage(ctx, cfg.Storage, deps.Log)
	if err != nil {
		return nil, nil, err
	}

	inv, err := inventory.New(cfg.Inventory.URL, inventory.WithTimeout(cfg.Inventory.Timeout))
	if err != nil {
		closeStorage()
		return nil, nil, fmt.Errorf("inventory.New: %w", err)
	}

	store, err := service.New(ctx, storage, inv,
		service.WithLogger(deps.Log),
		service.WithNotifier(deps.Notifier),
		service.WithTracerProvider(deps.TracerProvider),
	)
	if err != nil {
		closeStorage()
		return nil, nil, fmt.Errorf("service.New: %w", err)
	}

	return store, func() {
		store.Close()
		closeStorage()
	}, nil
}
