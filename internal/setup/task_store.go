package setup

import (
	"context"
	"log/slog"

	"github.com/bornholm/go-x/slogx"
	"github.com/bornholm/todo/internal/config"
	"github.com/bornholm/todo/internal/core/port"
	"github.com/pkg/errors"
)

var TaskStore = NewRegistry[port.TaskStore]()

type closableStore interface {
	Close(ctx context.Context) error
}

var getTaskStoreFromConfig = createFromConfigOnce(func(ctx context.Context, conf *config.Config) (port.TaskStore, error) {
	store, err := TaskStore.From(ctx, conf.Storage.URI)
	if err != nil {
		return nil, errors.Wrapf(err, "could not create task store (available schemes: %v)", TaskStore.Schemes())
	}

	return store, nil
})

// CloseTaskStore releases the resources held by the configured task store, if any.
func CloseTaskStore(ctx context.Context, conf *config.Config) {
	store, err := getTaskStoreFromConfig(ctx, conf)
	if err != nil {
		return
	}

	closable, ok := store.(closableStore)
	if !ok {
		return
	}

	if err := closable.Close(ctx); err != nil {
		slog.ErrorContext(ctx, "could not close task store", slogx.Error(err))
	}
}
