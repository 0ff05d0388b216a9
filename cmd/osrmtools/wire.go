package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"osrm-travel-tools/internal/adapters/cache"
	"osrm-travel-tools/internal/adapters/distance"
	"osrm-travel-tools/internal/config"
	"osrm-travel-tools/internal/platform/db"
	"osrm-travel-tools/internal/ports"

	"github.com/redis/go-redis/v9"
)

// buildProvider is the composition root for routing: it picks the offline
// estimator or the OSRM client, and wires the configured cache behind it.
// The returned cleanup closes any cache connection.
func buildProvider(ctx context.Context, cfg *config.Config) (ports.TravelTimeProvider, func(), error) {
	noop := func() {}

	if cfg.Offline {
		return distance.NewEstimateProvider(), noop, nil
	}

	travelCache, cleanup, err := buildCache(ctx, cfg)
	if err != nil {
		return nil, noop, err
	}

	opts := []distance.Option{
		distance.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
		distance.WithMaxTableSize(cfg.MaxTableSize),
	}
	if travelCache != nil {
		opts = append(opts, distance.WithTravelCache(travelCache))
	}

	provider, err := distance.NewOSRMProvider(cfg.OSRMBaseURL, opts...)
	if err != nil {
		cleanup()
		return nil, noop, err
	}

	return provider, cleanup, nil
}

func buildCache(ctx context.Context, cfg *config.Config) (ports.TravelCache, func(), error) {
	noop := func() {}

	switch cfg.CacheDriver {
	case "", "none":
		return nil, noop, nil

	case "sqlite":
		if dir := filepath.Dir(cfg.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, noop, fmt.Errorf("sqlite cache: create %q: %w", dir, err)
			}
		}
		conn, err := db.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, noop, err
		}
		if err := cache.InitSchema(ctx, conn, cache.DialectSQLite); err != nil {
			conn.Close()
			return nil, noop, err
		}
		return cache.NewSqliteTravelCache(conn), closer(conn), nil

	case "postgres":
		conn, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, noop, err
		}
		if err := cache.InitSchema(ctx, conn, cache.DialectPostgres); err != nil {
			conn.Close()
			return nil, noop, err
		}
		return cache.NewSQLTravelCache(conn), closer(conn), nil

	case "redis":
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, noop, fmt.Errorf("redis cache: parse url: %w", err)
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, noop, fmt.Errorf("redis cache: ping: %w", err)
		}
		return cache.NewRedisTravelCache(client, cfg.CacheTTL), func() { client.Close() }, nil
	}

	return nil, noop, fmt.Errorf("unknown cache driver %q", cfg.CacheDriver)
}

func closer(conn *sql.DB) func() {
	return func() { conn.Close() }
}
