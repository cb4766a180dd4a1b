package gorm

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/bornholm/todo/internal/core/model"
	"github.com/bornholm/todo/internal/core/port"
	"github.com/bornholm/todo/internal/metrics"
	"github.com/ncruces/go-sqlite3"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type TaskStore struct {
	getDatabase func(ctx context.Context) (*gorm.DB, error)
	baseDelay   time.Duration
	maxRetries  int
}

// CreateTask implements port.TaskStore.
func (s *TaskStore) CreateTask(ctx context.Context, task model.Task) (model.Task, error) {
	gormTask := fromTask(model.WithTaskID(task, model.NewTaskID()))

	err := s.withRetry(ctx, func(ctx context.Context, db *gorm.DB) error {
		if err := db.Create(gormTask).Error; err != nil {
			return errors.WithStack(err)
		}

		return nil
	}, sqlite3.BUSY, sqlite3.LOCKED)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return &wrappedTask{gormTask}, nil
}

// GetTaskByID implements port.TaskStore.
func (s *TaskStore) GetTaskByID(ctx context.Context, id model.TaskID) (model.Task, error) {
	var task Task

	err := s.withRetry(ctx, func(ctx context.Context, db *gorm.DB) error {
		if err := db.First(&task, "id = ?", string(id)).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.WithStack(port.ErrNotFound)
			}

			return errors.WithStack(err)
		}

		return nil
	}, sqlite3.BUSY, sqlite3.LOCKED)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return &wrappedTask{&task}, nil
}

// QueryTasks implements port.TaskStore.
func (s *TaskStore) QueryTasks(ctx context.Context, filter port.TaskFilter) ([]model.Task, error) {
	var tasks []*Task

	err := s.withRetry(ctx, func(ctx context.Context, db *gorm.DB) error {
		query := applyFilter(db.Model(&Task{}), filter).
			Order("created_at ASC").
			Order("id ASC")

		if err := query.Find(&tasks).Error; err != nil {
			return errors.WithStack(err)
		}

		return nil
	}, sqlite3.BUSY, sqlite3.LOCKED)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	wrappedTasks := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		wrappedTasks = append(wrappedTasks, &wrappedTask{t})
	}

	return wrappedTasks, nil
}

// SetTaskCompleted implements port.TaskStore.
func (s *TaskStore) SetTaskCompleted(ctx context.Context, id model.TaskID, completed bool) (model.Task, error) {
	var task Task

	err := s.withRetry(ctx, func(ctx context.Context, db *gorm.DB) error {
		if err := db.First(&task, "id = ?", string(id)).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.WithStack(port.ErrNotFound)
			}

			return errors.WithStack(err)
		}

		if err := db.Model(&task).Update("completed", completed).Error; err != nil {
			return errors.WithStack(err)
		}

		task.Completed = completed

		return nil
	}, sqlite3.BUSY, sqlite3.LOCKED)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return &wrappedTask{&task}, nil
}

// DeleteTaskByID implements port.TaskStore.
func (s *TaskStore) DeleteTaskByID(ctx context.Context, id model.TaskID) (model.Task, error) {
	var task Task

	err := s.withRetry(ctx, func(ctx context.Context, db *gorm.DB) error {
		if err := db.First(&task, "id = ?", string(id)).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.WithStack(port.ErrNotFound)
			}

			return errors.WithStack(err)
		}

		if err := db.Delete(&Task{}, "id = ?", task.ID).Error; err != nil {
			return errors.WithStack(err)
		}

		return nil
	}, sqlite3.BUSY, sqlite3.LOCKED)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return &wrappedTask{&task}, nil
}

// DeleteTasks implements port.TaskStore.
func (s *TaskStore) DeleteTasks(ctx context.Context, filter port.TaskFilter) (int64, error) {
	if filter.ChannelID == nil && filter.UserID == nil && filter.Completed == nil {
		return 0, errors.Wrap(port.ErrInvalidInput, "refusing to delete every task")
	}

	var removed int64

	err := s.withRetry(ctx, func(ctx context.Context, db *gorm.DB) error {
		result := applyFilter(db, filter).Delete(&Task{})
		if result.Error != nil {
			return errors.WithStack(result.Error)
		}

		removed = result.RowsAffected

		return nil
	}, sqlite3.BUSY, sqlite3.LOCKED)
	if err != nil {
		return 0, errors.WithStack(err)
	}

	return removed, nil
}

// Ping implements port.TaskStore.
func (s *TaskStore) Ping(ctx context.Context) error {
	db, err := s.getDatabase(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return errors.WithStack(err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// Close releases the underlying database connections.
func (s *TaskStore) Close(ctx context.Context) error {
	db, err := s.getDatabase(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return errors.WithStack(err)
	}

	if err := sqlDB.Close(); err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func (s *TaskStore) withRetry(ctx context.Context, fn func(ctx context.Context, db *gorm.DB) error, codes ...sqlite3.ErrorCode) error {
	db, err := s.getDatabase(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	backoff := s.baseDelay
	retries := 0

	for {
		err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := fn(ctx, tx); err != nil {
				return errors.WithStack(err)
			}

			return nil
		})
		if err != nil {
			if retries >= s.maxRetries {
				return errors.WithStack(err)
			}

			var sqliteErr *sqlite3.Error
			if errors.As(err, &sqliteErr) {
				if !slices.Contains(codes, sqliteErr.Code()) {
					return errors.WithStack(err)
				}

				slog.DebugContext(ctx, "transaction failed, will retry", slog.Int("retries", retries), slog.Duration("backoff", backoff), slog.Any("error", errors.WithStack(err)))

				metrics.StoreRetries.WithLabelValues("sqlite").Inc()

				retries++

				select {
				case <-ctx.Done():
					return errors.WithStack(ctx.Err())
				case <-time.After(backoff):
				}

				backoff *= 2
				continue
			}

			return errors.WithStack(err)
		}

		return nil
	}
}

func applyFilter(db *gorm.DB, filter port.TaskFilter) *gorm.DB {
	if filter.ChannelID != nil {
		db = db.Where("channel_id = ?", string(*filter.ChannelID))
	}

	if filter.UserID != nil {
		db = db.Where("user_id = ?", string(*filter.UserID))
	}

	if filter.Completed != nil {
		db = db.Where("completed = ?", *filter.Completed)
	}

	return db
}

type TaskStoreOptions struct {
	BaseDelay  time.Duration
	MaxRetries int
}

type TaskStoreOptionFunc func(opts *TaskStoreOptions)

func WithRetry(baseDelay time.Duration, maxRetries int) TaskStoreOptionFunc {
	return func(opts *TaskStoreOptions) {
		opts.BaseDelay = baseDelay
		opts.MaxRetries = maxRetries
	}
}

func NewTaskStoreOptions(funcs ...TaskStoreOptionFunc) *TaskStoreOptions {
	opts := &TaskStoreOptions{
		BaseDelay:  200 * time.Millisecond,
		MaxRetries: 3,
	}
	for _, fn := range funcs {
		fn(opts)
	}
	return opts
}

func NewTaskStore(db *gorm.DB, funcs ...TaskStoreOptionFunc) *TaskStore {
	opts := NewTaskStoreOptions(funcs...)

	return &TaskStore{
		getDatabase: createGetDatabase(db, &Task{}),
		baseDelay:   opts.BaseDelay,
		maxRetries:  opts.MaxRetries,
	}
}

var _ port.TaskStore = &TaskStore{}
