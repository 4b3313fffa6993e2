// Package application wires configuration into a running country service:
// storage backend, optional Redis cache, metrics and the core service. The
// HTTP server and the admin CLI both start from here.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/JonMunkholm/countries/internal/config"
	"github.com/JonMunkholm/countries/internal/core"
	"github.com/JonMunkholm/countries/internal/database"
	"github.com/JonMunkholm/countries/internal/metrics"
	"github.com/JonMunkholm/countries/internal/web"
)

// App holds the long-lived dependencies built from Config.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Service  *core.Service
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics

	closers []func() error
}

// New connects to storage (and Redis when configured) and builds the service.
// On error everything opened so far is closed again.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *App, err error) {
	if logger == nil {
		logger = slog.Default()
	}
	app := &App{Config: cfg, Logger: logger}
	defer func() {
		if err != nil {
			_ = app.Close()
		}
	}()

	if cfg.Metrics.Enabled {
		app.Registry = prometheus.NewRegistry()
		app.Registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		app.Metrics = metrics.New(app.Registry)
	}

	repo, err := app.openRepository(ctx)
	if err != nil {
		return nil, err
	}

	if cfg.Cache.URL != "" {
		client, err := openRedis(ctx, cfg.Cache)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, client.Close)
		repo = database.NewCachedRepository(repo, client, cfg.Cache.TTL,
			database.WithCacheLogger(logger),
			database.WithCacheMetrics(app.Metrics),
		)
		logger.Info("redis cache enabled", "ttl", cfg.Cache.TTL)
	}

	app.Service = core.NewService(repo,
		core.WithLogger(logger),
		core.WithMetrics(app.Metrics),
		core.WithTransactions(cfg.Service.Transactional),
		core.WithStrictNameCheck(cfg.Service.StrictNameCheck),
	)
	return app, nil
}

// repository is what every storage backend offers beyond core.Repository.
type repository interface {
	core.Repository
	core.Transactor
}

func (a *App) openRepository(ctx context.Context) (core.Repository, error) {
	cfg := a.Config.Database

	var repo repository
	var schemaFn func(context.Context) error

	switch strings.ToLower(cfg.Driver) {
	case config.DriverPostgres:
		pool, err := openPostgres(ctx, cfg)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() error { pool.Close(); return nil })
		pg := database.NewPostgresRepository(pool)
		repo, schemaFn = pg, pg.ApplySchema
		a.Logger.Info("connected to database", "driver", cfg.Driver, "name", databaseName(cfg.URL))

	case config.DriverSQLite:
		lite, err := database.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		a.closers = append(a.closers, lite.Close)
		repo, schemaFn = lite, lite.ApplySchema
		a.Logger.Info("opened database", "driver", cfg.Driver, "path", cfg.SQLitePath)

	case config.DriverMemory:
		repo = database.NewMemoryRepository()
		a.Logger.Warn("using in-memory storage; data is lost on exit")

	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}

	if schemaFn != nil && cfg.ApplySchema {
		if err := schemaFn(ctx); err != nil {
			return nil, err
		}
	}
	return repo, nil
}

func openPostgres(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

func openRedis(ctx context.Context, cfg config.CacheConfig) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = cfg.DialTimeout

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

func databaseName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Path, "/")
}

// ServerOptions translates Config into web server options.
func (a *App) ServerOptions() web.Options {
	cfg := a.Config
	opts := web.Options{
		Addr:           cfg.Server.Addr(),
		TrustedProxies: cfg.Security.TrustedProxies,
		RequestTimeout: cfg.Server.RequestTimeout,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		Metrics:        a.Metrics,
		Logger:         a.Logger,
	}
	if cfg.Rate.Enabled {
		opts.RequestsPerSecond = cfg.Rate.RequestsPerSecond
		opts.Burst = cfg.Rate.Burst
	}
	if a.Registry != nil {
		opts.Gatherer = a.Registry
	}
	return opts
}

// Close releases connections in reverse order of opening.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
