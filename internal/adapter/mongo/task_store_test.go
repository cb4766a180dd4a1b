package mongo

import (
	"context"
	"testing"

	"github.com/bornholm/todo/internal/core/port"
	"github.com/bornholm/todo/internal/core/port/testsuite"
	"github.com/pkg/errors"
	"github.com/rs/xid"
	"github.com/testcontainers/testcontainers-go"
	testmongo "github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func TestTaskStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping mongodb container test in short mode")
	}

	ctx := context.Background()

	mongoContainer, err := testmongo.Run(ctx, "mongo:7")
	defer func() {
		if err := testcontainers.TerminateContainer(mongoContainer); err != nil {
			t.Fatalf("failed to terminate container: %+v", errors.WithStack(err))
		}
	}()
	if err != nil {
		t.Fatalf("failed to start container: %+v", errors.WithStack(err))
	}

	uri, err := mongoContainer.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("could not retrieve connection string: %+v", errors.WithStack(err))
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("could not connect to mongodb: %+v", errors.WithStack(err))
	}

	defer func() {
		if err := client.Disconnect(ctx); err != nil {
			t.Errorf("could not disconnect client: %+v", errors.WithStack(err))
		}
	}()

	testsuite.TestTaskStore(t, func(t *testing.T) (port.TaskStore, error) {
		// Each test case gets its own database
		return NewTaskStore(client, "test-"+xid.New().String()), nil
	})
}
