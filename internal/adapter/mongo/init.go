package mongo

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/bornholm/todo/internal/core/port"
	"github.com/bornholm/todo/internal/setup"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	DefaultDatabase = "slack-todo"

	paramCollection = "collection"
)

func init() {
	factory := func(ctx context.Context, u *url.URL) (port.TaskStore, error) {
		retry, err := setup.ParseRetryParams(u)
		if err != nil {
			return nil, errors.WithStack(err)
		}

		query := u.Query()

		collection := DefaultCollection
		if rawValue := query.Get(paramCollection); rawValue != "" {
			collection = rawValue
			query.Del(paramCollection)
			u.RawQuery = query.Encode()
		}

		database := strings.TrimPrefix(u.Path, "/")
		if database == "" {
			database = DefaultDatabase
		}

		opts := options.Client().
			ApplyURI(u.String()).
			SetConnectTimeout(10 * time.Second).
			SetServerSelectionTimeout(10 * time.Second)

		client, err := mongo.Connect(ctx, opts)
		if err != nil {
			return nil, errors.Wrap(err, "could not connect to mongodb")
		}

		store := NewTaskStore(
			client, database,
			WithCollection(collection),
			WithRetry(retry.BaseDelay, retry.MaxRetries),
		)

		return store, nil
	}

	setup.TaskStore.Register("mongodb", factory)
	setup.TaskStore.Register("mongodb+srv", factory)
}
