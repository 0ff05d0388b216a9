package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"path/filepath"
	"strings"

	"osrm-travel-tools/internal/adapters/cache"
	"osrm-travel-tools/internal/config"
	"osrm-travel-tools/internal/platform/db"
	"osrm-travel-tools/internal/platform/obs"

	"go.uber.org/zap"
)

// dbtool creates the travel cache schema for the configured SQL backend.
func main() {
	if !config.LoadDotEnv() {
		log.Println("No .env file found (using environment variables)")
	}

	logger, err := obs.NewLogger(config.Get("LOG_LEVEL", "info"))
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	driver := config.Get("CACHE_DRIVER", "sqlite")

	var conn *sql.DB
	var dialect cache.Dialect
	switch driver {
	case "postgres":
		databaseURL := os.Getenv("DATABASE_URL")
		if strings.TrimSpace(databaseURL) == "" {
			logger.Fatal("DATABASE_URL is required")
		}
		conn, err = db.Open(databaseURL)
		dialect = cache.DialectPostgres
	case "sqlite":
		path := config.Get("SQLITE_PATH", "data/osrm_cache.db")
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			logger.Fatal("create sqlite directory", zap.Error(err))
		}
		conn, err = db.OpenSQLite(path)
		dialect = cache.DialectSQLite
	default:
		logger.Fatal("CACHE_DRIVER must be postgres or sqlite", zap.String("driver", driver))
	}
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer conn.Close()

	logger.Info("Initializing travel cache schema...", zap.String("driver", driver))
	if err := cache.InitSchema(context.Background(), conn, dialect); err != nil {
		logger.Fatal("schema initialization failed", zap.Error(err))
	}
	logger.Info("Schema ready.")
}
