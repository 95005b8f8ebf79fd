package cmd

import (
	"context"
	"fmt"

	"github.com/killallgit/resume-api/internal/database"
	"github.com/killallgit/resume-api/internal/models"
	"github.com/killallgit/resume-api/internal/services/progress"
	"github.com/killallgit/resume-api/pkg/config"
	"go.uber.org/zap"
)

// openedStore bundles a progress store with its health check and closer
type openedStore struct {
	store  progress.Store
	health database.Pinger
	close  func() error
}

// openStore connects the configured backend and brings its schema up to date
func openStore(ctx context.Context, cfg config.DatabaseConfig, log *zap.SugaredLogger) (*openedStore, error) {
	switch cfg.Driver {
	case "postgres":
		sqlDB, err := database.OpenPostgres(cfg.DSN, cfg.MaxConnections)
		if err != nil {
			return nil, err
		}
		store := progress.NewPostgresStore(sqlDB)
		if err := store.InitSchema(ctx); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
		log.Infow("progress store ready", "driver", "postgres")
		return &openedStore{store: store, health: database.SQLHealth{DB: sqlDB}, close: sqlDB.Close}, nil

	case "sqlite", "":
		db, err := database.Initialize(cfg.Path, database.Options{
			MaxConnections: cfg.MaxConnections,
			Verbose:        cfg.Verbose,
		})
		if err != nil {
			return nil, err
		}
		if err := db.AutoMigrate(models.AllModels()...); err != nil {
			_ = db.Close()
			return nil, err
		}
		log.Infow("progress store ready", "driver", "sqlite", "path", cfg.Path)
		return &openedStore{store: progress.NewRepository(db.DB), health: db, close: db.Close}, nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}
