package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bornholm/todo/internal/core/model"
	"github.com/bornholm/todo/internal/core/port"
	"github.com/bornholm/todo/internal/metrics"
	"github.com/pkg/errors"
)

const (
	OperationAdd            = "add"
	OperationGet            = "get"
	OperationList           = "list"
	OperationSetCompleted   = "set_completed"
	OperationDelete         = "delete"
	OperationClearCompleted = "clear_completed"
)

// Scope restricts a bulk operation to the tasks of a channel or of a user.
type Scope struct {
	channelID *model.ChannelID
	userID    *model.UserID
}

func (s Scope) String() string {
	switch {
	case s.channelID != nil:
		return fmt.Sprintf("channel:%s", *s.channelID)
	case s.userID != nil:
		return fmt.Sprintf("user:%s", *s.userID)
	default:
		return "none"
	}
}

func ChannelScope(channelID model.ChannelID) Scope {
	return Scope{channelID: &channelID}
}

func UserScope(userID model.UserID) Scope {
	return Scope{userID: &userID}
}

type TaskManager struct {
	store port.TaskStore
}

// AddTask creates a new task owned by the given user in the given channel.
// Surrounding whitespace of the text is trimmed; an empty text is rejected with port.ErrInvalidInput.
func (m *TaskManager) AddTask(ctx context.Context, text string, owner model.User, channelID model.ChannelID) (model.Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		observe(OperationAdd, port.ErrInvalidInput)
		return nil, errors.Wrap(port.ErrInvalidInput, "task text required")
	}

	if owner == nil || owner.ID() == "" {
		observe(OperationAdd, port.ErrInvalidInput)
		return nil, errors.Wrap(port.ErrInvalidInput, "task owner required")
	}

	if channelID == "" {
		observe(OperationAdd, port.ErrInvalidInput)
		return nil, errors.Wrap(port.ErrInvalidInput, "task channel required")
	}

	task, err := m.store.CreateTask(ctx, model.NewTask(text, owner, channelID))
	if err != nil {
		err = storeError(err)
		observe(OperationAdd, err)
		return nil, errors.WithStack(err)
	}

	observe(OperationAdd, nil)

	return task, nil
}

// ListByChannel returns the tasks shared in the given channel, oldest first.
func (m *TaskManager) ListByChannel(ctx context.Context, channelID model.ChannelID) ([]model.Task, error) {
	tasks, err := m.store.QueryTasks(ctx, port.TaskFilter{ChannelID: &channelID})
	if err != nil {
		err = storeError(err)
		observe(OperationList, err)
		return nil, errors.WithStack(err)
	}

	observe(OperationList, nil)

	return tasks, nil
}

// ListByUser returns the tasks owned by the given user, oldest first.
func (m *TaskManager) ListByUser(ctx context.Context, userID model.UserID) ([]model.Task, error) {
	tasks, err := m.store.QueryTasks(ctx, port.TaskFilter{UserID: &userID})
	if err != nil {
		err = storeError(err)
		observe(OperationList, err)
		return nil, errors.WithStack(err)
	}

	observe(OperationList, nil)

	return tasks, nil
}

func (m *TaskManager) GetTask(ctx context.Context, id model.TaskID) (model.Task, error) {
	if id == "" {
		observe(OperationGet, port.ErrInvalidInput)
		return nil, errors.Wrap(port.ErrInvalidInput, "task id required")
	}

	task, err := m.store.GetTaskByID(ctx, id)
	if err != nil {
		err = storeError(err)
		observe(OperationGet, err)
		return nil, errors.WithStack(err)
	}

	observe(OperationGet, nil)

	return task, nil
}

func (m *TaskManager) SetCompleted(ctx context.Context, id model.TaskID, completed bool) (model.Task, error) {
	if id == "" {
		observe(OperationSetCompleted, port.ErrInvalidInput)
		return nil, errors.Wrap(port.ErrInvalidInput, "task id required")
	}

	task, err := m.store.SetTaskCompleted(ctx, id, completed)
	if err != nil {
		err = storeError(err)
		observe(OperationSetCompleted, err)
		return nil, errors.WithStack(err)
	}

	observe(OperationSetCompleted, nil)

	return task, nil
}

// DeleteTask permanently removes a task and returns the text it had.
func (m *TaskManager) DeleteTask(ctx context.Context, id model.TaskID) (string, error) {
	if id == "" {
		observe(OperationDelete, port.ErrInvalidInput)
		return "", errors.Wrap(port.ErrInvalidInput, "task id required")
	}

	task, err := m.store.DeleteTaskByID(ctx, id)
	if err != nil {
		err = storeError(err)
		observe(OperationDelete, err)
		return "", errors.WithStack(err)
	}

	observe(OperationDelete, nil)

	return task.Text(), nil
}

// ClearCompleted removes every completed task of the given scope with a single bulk
// deletion and returns the number of removed tasks.
func (m *TaskManager) ClearCompleted(ctx context.Context, scope Scope) (int64, error) {
	if scope.channelID == nil && scope.userID == nil {
		observe(OperationClearCompleted, port.ErrInvalidInput)
		return 0, errors.Wrap(port.ErrInvalidInput, "clear scope required")
	}

	completed := true

	removed, err := m.store.DeleteTasks(ctx, port.TaskFilter{
		ChannelID: scope.channelID,
		UserID:    scope.userID,
		Completed: &completed,
	})
	if err != nil {
		err = storeError(err)
		observe(OperationClearCompleted, err)
		return 0, errors.WithStack(err)
	}

	observe(OperationClearCompleted, nil)
	metrics.ClearedTasks.Add(float64(removed))

	return removed, nil
}

// Partition splits the given tasks into active and completed ones,
// preserving their relative order.
func Partition(tasks []model.Task) (active []model.Task, completed []model.Task) {
	active = make([]model.Task, 0, len(tasks))
	completed = make([]model.Task, 0)

	for _, t := range tasks {
		if t.Completed() {
			completed = append(completed, t)
		} else {
			active = append(active, t)
		}
	}

	return active, completed
}

func NewTaskManager(store port.TaskStore) *TaskManager {
	return &TaskManager{
		store: store,
	}
}

func storeError(err error) error {
	if errors.Is(err, port.ErrNotFound) || errors.Is(err, port.ErrStore) {
		return err
	}

	return fmt.Errorf("%w: %w", port.ErrStore, err)
}

func observe(operation string, err error) {
	status := metrics.StatusSuccess

	switch {
	case err == nil:
	case errors.Is(err, port.ErrNotFound):
		status = metrics.StatusNotFound
	case errors.Is(err, port.ErrInvalidInput):
		status = metrics.StatusInvalid
	default:
		status = metrics.StatusError
	}

	metrics.TaskOperations.WithLabelValues(operation, status).Inc()
}
