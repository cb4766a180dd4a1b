package mongo

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/bornholm/todo/internal/core/model"
	"github.com/bornholm/todo/internal/core/port"
	"github.com/bornholm/todo/internal/metrics"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const DefaultCollection = "todos"

type TaskStore struct {
	client        *mongo.Client
	getCollection func(ctx context.Context) (*mongo.Collection, error)
	baseDelay     time.Duration
	maxRetries    int
}

// CreateTask implements port.TaskStore.
func (s *TaskStore) CreateTask(ctx context.Context, task model.Task) (model.Task, error) {
	// The identifier is generated before the first attempt so that a retried
	// insertion of an already persisted document is detected as a duplicate.
	doc := fromTask(primitive.NewObjectID(), task)

	err := s.withRetry(ctx, func(ctx context.Context, coll *mongo.Collection, attempt int) error {
		if _, err := coll.InsertOne(ctx, doc); err != nil {
			if attempt > 0 && mongo.IsDuplicateKeyError(err) {
				return nil
			}

			return errors.WithStack(err)
		}

		return nil
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return &wrappedTask{doc}, nil
}

// GetTaskByID implements port.TaskStore.
func (s *TaskStore) GetTaskByID(ctx context.Context, id model.TaskID) (model.Task, error) {
	objectID, err := parseTaskID(id)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	var task Task

	err = s.withRetry(ctx, func(ctx context.Context, coll *mongo.Collection, attempt int) error {
		if err := coll.FindOne(ctx, bson.M{fieldID: objectID}).Decode(&task); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return errors.WithStack(port.ErrNotFound)
			}

			return errors.WithStack(err)
		}

		return nil
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return &wrappedTask{&task}, nil
}

// QueryTasks implements port.TaskStore.
func (s *TaskStore) QueryTasks(ctx context.Context, filter port.TaskFilter) ([]model.Task, error) {
	var tasks []*Task

	err := s.withRetry(ctx, func(ctx context.Context, coll *mongo.Collection, attempt int) error {
		opts := options.Find().SetSort(bson.D{
			{Key: fieldCreatedAt, Value: 1},
			{Key: fieldID, Value: 1},
		})

		cursor, err := coll.Find(ctx, toBSONFilter(filter), opts)
		if err != nil {
			return errors.WithStack(err)
		}

		tasks = make([]*Task, 0)

		if err := cursor.All(ctx, &tasks); err != nil {
			return errors.WithStack(err)
		}

		return nil
	})
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
	objectID, err := parseTaskID(id)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	var task Task

	// Setting the flag to a fixed value is idempotent and can be safely retried
	err = s.withRetry(ctx, func(ctx context.Context, coll *mongo.Collection, attempt int) error {
		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

		update := bson.M{"$set": bson.M{fieldCompleted: completed}}

		if err := coll.FindOneAndUpdate(ctx, bson.M{fieldID: objectID}, update, opts).Decode(&task); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return errors.WithStack(port.ErrNotFound)
			}

			return errors.WithStack(err)
		}

		return nil
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return &wrappedTask{&task}, nil
}

// DeleteTaskByID implements port.TaskStore.
func (s *TaskStore) DeleteTaskByID(ctx context.Context, id model.TaskID) (model.Task, error) {
	objectID, err := parseTaskID(id)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	coll, err := s.getCollection(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	var task Task

	// Deletions are not retried: a retry after a partial failure would
	// report a missing task instead of the deleted one.
	if err := coll.FindOneAndDelete(ctx, bson.M{fieldID: objectID}).Decode(&task); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errors.WithStack(port.ErrNotFound)
		}

		return nil, errors.WithStack(err)
	}

	return &wrappedTask{&task}, nil
}

// DeleteTasks implements port.TaskStore.
func (s *TaskStore) DeleteTasks(ctx context.Context, filter port.TaskFilter) (int64, error) {
	if filter.ChannelID == nil && filter.UserID == nil && filter.Completed == nil {
		return 0, errors.Wrap(port.ErrInvalidInput, "refusing to delete every task")
	}

	coll, err := s.getCollection(ctx)
	if err != nil {
		return 0, errors.WithStack(err)
	}

	result, err := coll.DeleteMany(ctx, toBSONFilter(filter))
	if err != nil {
		return 0, errors.WithStack(err)
	}

	return result.DeletedCount, nil
}

// Ping implements port.TaskStore.
func (s *TaskStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// Close disconnects the underlying client.
func (s *TaskStore) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func (s *TaskStore) withRetry(ctx context.Context, fn func(ctx context.Context, coll *mongo.Collection, attempt int) error) error {
	coll, err := s.getCollection(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	backoff := s.baseDelay
	retries := 0

	for {
		err := fn(ctx, coll, retries)
		if err != nil {
			if retries >= s.maxRetries || !isTransient(err) {
				return errors.WithStack(err)
			}

			slog.DebugContext(ctx, "operation failed, will retry", slog.Int("retries", retries), slog.Duration("backoff", backoff), slog.Any("error", errors.WithStack(err)))

			metrics.StoreRetries.WithLabelValues("mongodb").Inc()

			retries++

			select {
			case <-ctx.Done():
				return errors.WithStack(ctx.Err())
			case <-time.After(backoff):
			}

			backoff *= 2
			continue
		}

		return nil
	}
}

func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}

	return mongo.IsTimeout(err) || mongo.IsNetworkError(err)
}

func parseTaskID(id model.TaskID) (primitive.ObjectID, error) {
	objectID, err := primitive.ObjectIDFromHex(string(id))
	if err != nil {
		return primitive.NilObjectID, errors.Wrapf(port.ErrNotFound, "invalid task id '%s'", id)
	}

	return objectID, nil
}

func toBSONFilter(filter port.TaskFilter) bson.M {
	query := bson.M{}

	if filter.ChannelID != nil {
		query[fieldChannelID] = string(*filter.ChannelID)
	}

	if filter.UserID != nil {
		query[fieldUserID] = string(*filter.UserID)
	}

	if filter.Completed != nil {
		query[fieldCompleted] = *filter.Completed
	}

	return query
}

type TaskStoreOptions struct {
	Collection string
	BaseDelay  time.Duration
	MaxRetries int
}

type TaskStoreOptionFunc func(opts *TaskStoreOptions)

func WithCollection(name string) TaskStoreOptionFunc {
	return func(opts *TaskStoreOptions) {
		opts.Collection = name
	}
}

func WithRetry(baseDelay time.Duration, maxRetries int) TaskStoreOptionFunc {
	return func(opts *TaskStoreOptions) {
		opts.BaseDelay = baseDelay
		opts.MaxRetries = maxRetries
	}
}

func NewTaskStoreOptions(funcs ...TaskStoreOptionFunc) *TaskStoreOptions {
	opts := &TaskStoreOptions{
		Collection: DefaultCollection,
		BaseDelay:  200 * time.Millisecond,
		MaxRetries: 3,
	}
	for _, fn := range funcs {
		fn(opts)
	}
	return opts
}

func NewTaskStore(client *mongo.Client, database string, funcs ...TaskStoreOptionFunc) *TaskStore {
	opts := NewTaskStoreOptions(funcs...)

	return &TaskStore{
		client:        client,
		getCollection: createGetCollection(client.Database(database).Collection(opts.Collection)),
		baseDelay:     opts.BaseDelay,
		maxRetries:    opts.MaxRetries,
	}
}

var _ port.TaskStore = &TaskStore{}

func createGetCollection(coll *mongo.Collection) func(ctx context.Context) (*mongo.Collection, error) {
	var (
		mutex   sync.Mutex
		indexed bool
	)

	return func(ctx context.Context) (*mongo.Collection, error) {
		mutex.Lock()
		defer mutex.Unlock()

		if indexed {
			return coll, nil
		}

		models := []mongo.IndexModel{
			{Keys: bson.D{{Key: fieldChannelID, Value: 1}, {Key: fieldCreatedAt, Value: 1}}},
			{Keys: bson.D{{Key: fieldUserID, Value: 1}, {Key: fieldCreatedAt, Value: 1}}},
		}

		if _, err := coll.Indexes().CreateMany(ctx, models); err != nil {
			return nil, errors.Wrap(err, "could not create collection indexes")
		}

		indexed = true

		return coll, nil
	}
}
