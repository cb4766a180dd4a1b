package port

import (
	"context"

	"github.com/bornholm/todo/internal/core/model"
)

type TaskStore interface {
	// CreateTask persists a new task and returns it with its assigned identifier
	CreateTask(ctx context.Context, task model.Task) (model.Task, error)

	// GetTaskByID finds a task by its ID, or returns ErrNotFound if not found
	GetTaskByID(ctx context.Context, id model.TaskID) (model.Task, error)

	// QueryTasks returns the tasks matching the given filter, oldest first
	QueryTasks(ctx context.Context, filter TaskFilter) ([]model.Task, error)

	// SetTaskCompleted updates the completion flag of a task and returns the updated task,
	// or returns ErrNotFound if not found
	SetTaskCompleted(ctx context.Context, id model.TaskID, completed bool) (model.Task, error)

	// DeleteTaskByID removes a task and returns its last known state,
	// or returns ErrNotFound if not found
	DeleteTaskByID(ctx context.Context, id model.TaskID) (model.Task, error)

	// DeleteTasks removes every task matching the given filter in a single operation
	// and returns the number of removed tasks
	DeleteTasks(ctx context.Context, filter TaskFilter) (int64, error)

	// Ping checks that the store is reachable
	Ping(ctx context.Context) error
}

type TaskFilter struct {
	ChannelID *model.ChannelID
	UserID    *model.UserID
	Completed *bool
}

// Match reports whether the given task satisfies the filter.
func (f TaskFilter) Match(task model.Task) bool {
	if f.ChannelID != nil && task.ChannelID() != *f.ChannelID {
		return false
	}

	if f.UserID != nil && (task.Owner() == nil || task.Owner().ID() != *f.UserID) {
		return false
	}

	if f.Completed != nil && task.Completed() != *f.Completed {
		return false
	}

	return true
}
