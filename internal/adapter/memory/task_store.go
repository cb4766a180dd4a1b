package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/bornholm/todo/internal/core/model"
	"github.com/bornholm/todo/internal/core/port"
	"github.com/pkg/errors"
)

type entry struct {
	task *model.BaseTask
	seq  uint64
}

type TaskStore struct {
	mutex sync.RWMutex
	tasks map[model.TaskID]*entry
	seq   uint64
}

// CreateTask implements port.TaskStore.
func (s *TaskStore) CreateTask(ctx context.Context, task model.Task) (model.Task, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	created := model.WithTaskID(task, model.NewTaskID())

	s.seq++
	s.tasks[created.ID()] = &entry{task: created, seq: s.seq}

	return model.CopyTask(created), nil
}

// GetTaskByID implements port.TaskStore.
func (s *TaskStore) GetTaskByID(ctx context.Context, id model.TaskID) (model.Task, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	e, exists := s.tasks[id]
	if !exists {
		return nil, errors.WithStack(port.ErrNotFound)
	}

	return model.CopyTask(e.task), nil
}

// QueryTasks implements port.TaskStore.
func (s *TaskStore) QueryTasks(ctx context.Context, filter port.TaskFilter) ([]model.Task, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	matches := make([]*entry, 0)
	for _, e := range s.tasks {
		if filter.Match(e.task) {
			matches = append(matches, e)
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		ci, cj := matches[i].task.CreatedAt(), matches[j].task.CreatedAt()
		if ci.Equal(cj) {
			return matches[i].seq < matches[j].seq
		}
		return ci.Before(cj)
	})

	tasks := make([]model.Task, 0, len(matches))
	for _, e := range matches {
		tasks = append(tasks, model.CopyTask(e.task))
	}

	return tasks, nil
}

// SetTaskCompleted implements port.TaskStore.
func (s *TaskStore) SetTaskCompleted(ctx context.Context, id model.TaskID, completed bool) (model.Task, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	e, exists := s.tasks[id]
	if !exists {
		return nil, errors.WithStack(port.ErrNotFound)
	}

	e.task = model.WithTaskCompleted(e.task, completed)

	return model.CopyTask(e.task), nil
}

// DeleteTaskByID implements port.TaskStore.
func (s *TaskStore) DeleteTaskByID(ctx context.Context, id model.TaskID) (model.Task, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	e, exists := s.tasks[id]
	if !exists {
		return nil, errors.WithStack(port.ErrNotFound)
	}

	delete(s.tasks, id)

	return e.task, nil
}

// DeleteTasks implements port.TaskStore.
func (s *TaskStore) DeleteTasks(ctx context.Context, filter port.TaskFilter) (int64, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	var removed int64
	for id, e := range s.tasks {
		if !filter.Match(e.task) {
			continue
		}

		delete(s.tasks, id)
		removed++
	}

	return removed, nil
}

// Ping implements port.TaskStore.
func (s *TaskStore) Ping(ctx context.Context) error {
	return nil
}

func NewTaskStore() *TaskStore {
	return &TaskStore{
		tasks: make(map[model.TaskID]*entry),
	}
}

var _ port.TaskStore = &TaskStore{}
