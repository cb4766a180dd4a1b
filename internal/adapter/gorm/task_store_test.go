package gorm

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/bornholm/todo/internal/core/model"
	"github.com/bornholm/todo/internal/core/port"
	"github.com/bornholm/todo/internal/core/port/testsuite"
	"github.com/ncruces/go-sqlite3/gormlite"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	_ "github.com/ncruces/go-sqlite3/embed"
)

func TestTaskStore(t *testing.T) {
	testsuite.TestTaskStore(t, func(t *testing.T) (port.TaskStore, error) {
		return newTestTaskStore(t)
	})
}

func TestTaskStoreSubSecondOrdering(t *testing.T) {
	store, err := newTestTaskStore(t)
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	ctx := context.Background()

	owner := model.NewUser("U001", "alice")
	channel := model.ChannelID("C001")
	base := time.Date(2026, time.January, 1, 10, 0, 5, 0, time.UTC)

	createdAt := []time.Time{
		base.Add(500 * time.Millisecond),
		base,
		base.Add(120 * time.Millisecond),
		base.Add(100 * time.Millisecond),
	}

	for i, c := range createdAt {
		task := model.RestoreTask("", string(rune('a'+i)), false, owner, channel, c)
		if _, err := store.CreateTask(ctx, task); err != nil {
			t.Fatalf("%+v", errors.WithStack(err))
		}
	}

	tasks, err := store.QueryTasks(ctx, port.TaskFilter{ChannelID: &channel})
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	expected := []string{"b", "d", "c", "a"}

	if e, g := len(expected), len(tasks); e != g {
		t.Fatalf("len(tasks): expected %d, got %d", e, g)
	}

	for i, task := range tasks {
		if e, g := expected[i], task.Text(); e != g {
			t.Errorf("tasks[%d].Text(): expected '%v', got '%v'", i, e, g)
		}
	}

	if e, g := base.Add(500*time.Millisecond), tasks[3].CreatedAt(); !e.Equal(g) {
		t.Errorf("tasks[3].CreatedAt(): expected '%v', got '%v'", e, g)
	}
}

func newTestTaskStore(t *testing.T) (*TaskStore, error) {
	dsn := filepath.Join(t.TempDir(), "tasks.sqlite")

	db, err := gorm.Open(gormlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if err := db.Exec("PRAGMA journal_mode=wal; PRAGMA busy_timeout=5000").Error; err != nil {
		return nil, errors.WithStack(err)
	}

	store := NewTaskStore(db)

	t.Cleanup(func() {
		if err := store.Close(context.Background()); err != nil {
			t.Logf("could not close store: %+v", errors.WithStack(err))
		}
	})

	return store, nil
}
