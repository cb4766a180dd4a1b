package memory

import (
	"context"
	"net/url"

	"github.com/bornholm/todo/internal/core/port"
	"github.com/bornholm/todo/internal/setup"
)

func init() {
	setup.TaskStore.Register("memory", func(ctx context.Context, u *url.URL) (port.TaskStore, error) {
		return NewTaskStore(), nil
	})
}
