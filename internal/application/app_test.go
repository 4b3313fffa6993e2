package application

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/countries/internal/config"
	"github.com/JonMunkholm/countries/internal/core"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func testConfig(driver string) *config.Config {
	return &config.Config{
		Server:   config.ServerConfig{Port: 8080, RequestTimeout: time.Second},
		Database: config.DatabaseConfig{Driver: driver, ApplySchema: true},
		Rate:     config.RateLimitConfig{Enabled: true, RequestsPerSecond: 5, Burst: 10},
		Service:  config.ServiceConfig{Transactional: true},
		Metrics:  config.MetricsConfig{Enabled: true},
	}
}

func peru() core.Country {
	return core.Country{
		IsoAlpha2:  "PE",
		IsoAlpha3:  "PER",
		IsoNumeric: "604",
		ShortName:  "Peru",
		FullName:   "Republic of Peru",
		Population: 34_000_000,
		Square:     1_285_216,
	}
}

func TestNew_Memory(t *testing.T) {
	ctx := context.Background()
	app, err := New(ctx, testConfig(config.DriverMemory), quiet)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, app.Close()) })

	require.NoError(t, app.Service.Store(ctx, peru()))
	got, err := app.Service.Get(ctx, "604")
	require.NoError(t, err)
	assert.Equal(t, "Peru", got.ShortName)

	require.NotNil(t, app.Registry)
	assert.Equal(t, 1.0, testutil.ToFloat64(app.Metrics.Operations.WithLabelValues("store", "ok")))
}

func TestNew_MetricsDisabled(t *testing.T) {
	cfg := testConfig(config.DriverMemory)
	cfg.Metrics.Enabled = false

	app, err := New(context.Background(), cfg, quiet)
	require.NoError(t, err)
	defer app.Close()

	assert.Nil(t, app.Registry)
	assert.Nil(t, app.Metrics)
	assert.Nil(t, app.ServerOptions().Gatherer)
}

func TestNew_SQLite(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(config.DriverSQLite)
	cfg.Database.SQLitePath = filepath.Join(t.TempDir(), "countries.db")

	app, err := New(ctx, cfg, quiet)
	require.NoError(t, err)
	require.NoError(t, app.Service.Store(ctx, peru()))
	require.NoError(t, app.Close())

	// Data survives reopening the file.
	app, err = New(ctx, cfg, quiet)
	require.NoError(t, err)
	defer app.Close()

	all, err := app.Service.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "PER", all[0].IsoAlpha3)
}

func TestNew_RedisCache(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	cfg := testConfig(config.DriverMemory)
	cfg.Cache = config.CacheConfig{URL: "redis://" + mr.Addr(), TTL: time.Minute, PoolSize: 2, DialTimeout: time.Second}

	app, err := New(ctx, cfg, quiet)
	require.NoError(t, err)
	defer app.Close()

	require.NoError(t, app.Service.Store(ctx, peru()))
	_, err = app.Service.Get(ctx, "PE")
	require.NoError(t, err)
	_, err = app.Service.Get(ctx, "PE")
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(app.Metrics.CacheRequests.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(app.Metrics.CacheRequests.WithLabelValues("hit")))
	assert.True(t, mr.Exists("countries:numeric:604"))
}

func TestNew_RedisUnreachable(t *testing.T) {
	cfg := testConfig(config.DriverMemory)
	cfg.Cache = config.CacheConfig{URL: "redis://127.0.0.1:1", TTL: time.Minute, DialTimeout: 100 * time.Millisecond}

	_, err := New(context.Background(), cfg, quiet)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis ping failed")
}

func TestNew_UnknownDriver(t *testing.T) {
	_, err := New(context.Background(), testConfig("mysql"), quiet)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mysql")
}

func TestServerOptions(t *testing.T) {
	cfg := testConfig(config.DriverMemory)
	cfg.Server.Host = "127.0.0.1"
	cfg.Security.TrustedProxies = []string{"10.0.0.0/8"}

	app, err := New(context.Background(), cfg, quiet)
	require.NoError(t, err)
	defer app.Close()

	opts := app.ServerOptions()
	assert.Equal(t, "127.0.0.1:8080", opts.Addr)
	assert.Equal(t, 5.0, opts.RequestsPerSecond)
	assert.Equal(t, 10, opts.Burst)
	assert.Equal(t, []string{"10.0.0.0/8"}, opts.TrustedProxies)
	assert.NotNil(t, opts.Gatherer)

	cfg.Rate.Enabled = false
	opts = app.ServerOptions()
	assert.Zero(t, opts.RequestsPerSecond)
}

func TestDatabaseName(t *testing.T) {
	assert.Equal(t, "countries", databaseName("postgres://user:pw@localhost:5432/countries?sslmode=disable"))
	assert.Equal(t, "", databaseName("://bad"))
}
