package gorm

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/bornholm/todo/internal/core/port"
	"github.com/bornholm/todo/internal/setup"
	"github.com/ncruces/go-sqlite3/gormlite"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	_ "github.com/ncruces/go-sqlite3/embed"
)

func init() {
	setup.TaskStore.Register("sqlite", func(ctx context.Context, u *url.URL) (port.TaskStore, error) {
		retry, err := setup.ParseRetryParams(u)
		if err != nil {
			return nil, errors.WithStack(err)
		}

		dsn := u.Host + u.Path
		if dsn == "" {
			return nil, errors.Errorf("missing database path in '%s'", u.String())
		}

		logLevel := logger.Error
		if slog.Default().Enabled(ctx, slog.LevelDebug) {
			logLevel = logger.Info
		}

		db, err := gorm.Open(gormlite.Open(dsn), &gorm.Config{
			Logger: logger.Default.LogMode(logLevel),
		})
		if err != nil {
			return nil, errors.WithStack(err)
		}

		internalDB, err := db.DB()
		if err != nil {
			return nil, errors.WithStack(err)
		}

		internalDB.SetMaxOpenConns(1)

		if err := db.Exec("PRAGMA journal_mode=wal; PRAGMA busy_timeout=5000").Error; err != nil {
			return nil, errors.WithStack(err)
		}

		return NewTaskStore(db, WithRetry(retry.BaseDelay, retry.MaxRetries)), nil
	})
}
