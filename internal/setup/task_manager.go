package setup

import (
	"context"

	"github.com/bornholm/todo/internal/config"
	"github.com/bornholm/todo/internal/core/service"
	"github.com/pkg/errors"
)

var getTaskManager = createFromConfigOnce(func(ctx context.Context, conf *config.Config) (*service.TaskManager, error) {
	store, err := getTaskStoreFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.Wrap(err, "could not create task store from config")
	}

	return service.NewTaskManager(store), nil
})

func NewTaskManagerFromConfig(ctx context.Context, conf *config.Config) (*service.TaskManager, error) {
	taskManager, err := getTaskManager(ctx, conf)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return taskManager, nil
}
