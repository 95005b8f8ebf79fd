package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	apperrors "github.com/killallgit/resume-api/pkg/errors"
	_ "github.com/lib/pq"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB wraps the gorm handle used by the sqlite progress store
type DB struct {
	*gorm.DB
}

// Options tunes a sqlite connection
type Options struct {
	MaxConnections int
	Verbose        bool
}

// Initialize opens (and creates if needed) the sqlite database at dbPath.
// ":memory:" (or an empty path) is accepted for tests.
func Initialize(dbPath string, opts Options) (*DB, error) {
	if dbPath == "" {
		dbPath = ":memory:"
	}
	dsn := dbPath
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		dsn = dbPath + "?_busy_timeout=5000&_journal_mode=WAL"
	}

	logLevel := logger.Silent
	if opts.Verbose {
		logLevel = logger.Info
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	db, err := gorm.Open(sqlite.Open(dsn), gormConfig)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseConnection, "failed to connect to database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying SQL database: %w", err)
	}

	maxConns := opts.MaxConnections
	if maxConns <= 0 || dbPath == ":memory:" {
		// every new connection to :memory: is a fresh, empty database
		maxConns = 1
	}
	sqlDB.SetMaxOpenConns(maxConns)
	sqlDB.SetMaxIdleConns(maxConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return &DB{DB: db}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying SQL database: %w", err)
	}
	return sqlDB.Close()
}

// HealthCheck verifies the database connection is working
func (db *DB) HealthCheck() error {
	if db == nil || db.DB == nil {
		return fmt.Errorf("database not initialized")
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying SQL database: %w", err)
	}

	return ping(sqlDB)
}

// AutoMigrate runs GORM auto migration for the provided models
func (db *DB) AutoMigrate(models ...any) error {
	if err := db.DB.AutoMigrate(models...); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseMigration, "auto migration failed")
	}
	return nil
}

// OpenPostgres opens a lib/pq connection pool and verifies it responds
func OpenPostgres(dsn string, maxConnections int) (*sql.DB, error) {
	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseConnection, "failed to open postgres")
	}

	if maxConnections > 0 {
		sqlDB.SetMaxOpenConns(maxConnections)
		sqlDB.SetMaxIdleConns(maxConnections)
	}
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := ping(sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return sqlDB, nil
}

// Pinger is satisfied by both *DB and a postgres health adapter
type Pinger interface {
	HealthCheck() error
}

// SQLHealth adapts a *sql.DB to Pinger
type SQLHealth struct {
	DB *sql.DB
}

// HealthCheck pings the wrapped pool
func (h SQLHealth) HealthCheck() error {
	if h.DB == nil {
		return fmt.Errorf("database not initialized")
	}
	return ping(h.DB)
}

func ping(sqlDB *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeDatabaseConnection, "database ping failed")
	}
	return nil
}
