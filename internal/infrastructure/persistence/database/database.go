// Package database provides the core functionality for creating and managing
// the remote store connection.
package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rajcreationz/livesite/internal/infrastructure/observability/logging"
	"github.com/rajcreationz/livesite/pkg/config"
	_ "github.com/mattn/go-sqlite3"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

// DB represents a wrapper around the standard SQL database connection.
type DB struct {
	*sql.DB
	Driver string
}

// Options selects the driver and data source.
type Options struct {
	Driver     string // "sqlite3" or "libsql"
	SQLitePath string
	TursoURL   string
	TursoToken string
}

// OptionsFromConfig reads the remote store settings from pkg/config.
func OptionsFromConfig() Options {
	return Options{
		Driver:     config.DatabaseDriver,
		SQLitePath: config.SQLitePath,
		TursoURL:   config.TursoDatabaseURL,
		TursoToken: config.TursoAuthToken,
	}
}

// DataSource returns the driver name and DSN for opts.
func (o Options) DataSource() (string, string, error) {
	switch o.Driver {
	case "libsql":
		if o.TursoURL == "" {
			return "", "", fmt.Errorf("libsql driver requires TURSO_DATABASE_URL")
		}
		dsn := o.TursoURL
		if o.TursoToken != "" {
			dsn += "?authToken=" + o.TursoToken
		}
		return "libsql", dsn, nil
	case "sqlite3", "":
		if o.SQLitePath == "" {
			return "", "", fmt.Errorf("sqlite3 driver requires SQLITE_PATH")
		}
		if o.SQLitePath != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(o.SQLitePath), 0755); err != nil {
				return "", "", fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		return "sqlite3", o.SQLitePath + "?_busy_timeout=5000&_foreign_keys=on", nil
	default:
		return "", "", fmt.Errorf("unsupported database driver %q", o.Driver)
	}
}

// NewConnection establishes a new database connection for the specified driver.
func NewConnection(driverName, dataSourceName string) (*DB, error) {
	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, err
	}

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	return &DB{DB: db, Driver: driverName}, nil
}

// Open connects using opts, applies pool settings and logs timing.
func Open(opts Options, logger *logging.ChanneledLogger) (*DB, error) {
	start := time.Now()
	driverName, dsn, err := opts.DataSource()
	if err != nil {
		return nil, err
	}
	logger.Database().Debug("Creating new database connection", "driverName", driverName)

	db, err := NewConnection(driverName, dsn)
	if err != nil {
		logger.Database().Error("Failed to open database connection", "error", err.Error(), "driverName", driverName)
		return nil, fmt.Errorf("failed to open %s database: %w", driverName, err)
	}

	if driverName == "sqlite3" {
		// sqlite serializes writers anyway.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(config.DBMaxOpenConns)
		db.SetMaxIdleConns(config.DBMaxIdleConns)
		db.SetConnMaxLifetime(time.Duration(config.DBConnMaxLifetimeMinutes) * time.Minute)
		db.SetConnMaxIdleTime(time.Duration(config.DBConnMaxIdleMinutes) * time.Minute)
	}

	duration := time.Since(start)
	logger.Database().Info("Database connection established", "driverName", driverName, "duration", duration)
	CheckAndLogSlowQuery(logger, "DATABASE_CONNECTION", duration)

	return db, nil
}
