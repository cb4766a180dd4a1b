package testsuite

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/bornholm/todo/internal/core/model"
	"github.com/bornholm/todo/internal/core/port"
	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
)

func TestTaskStore(t *testing.T, factory func(t *testing.T) (port.TaskStore, error)) {
	type testCase struct {
		Name string
		Run  func(t *testing.T, ctx context.Context, store port.TaskStore) error
	}

	var (
		alice   = model.NewUser("U001", "alice")
		bob     = model.NewUser("U002", "bob")
		general = model.ChannelID("C001")
		random  = model.ChannelID("C002")
	)

	var testCases []testCase = []testCase{
		{
			Name: "CreateAndQuery",
			Run: func(t *testing.T, ctx context.Context, store port.TaskStore) error {
				first, err := store.CreateTask(ctx, model.NewTask("buy milk", alice, general))
				if err != nil {
					return errors.WithStack(err)
				}

				second, err := store.CreateTask(ctx, model.NewTask("walk the dog", alice, general))
				if err != nil {
					return errors.WithStack(err)
				}

				if first.ID() == "" {
					t.Errorf("first.ID(): should not be empty")
				}

				if first.ID() == second.ID() {
					t.Errorf("first.ID() and second.ID() should differ, got '%s' twice", first.ID())
				}

				if first.Completed() {
					t.Errorf("first.Completed(): expected false, got true")
				}

				tasks, err := store.QueryTasks(ctx, port.TaskFilter{ChannelID: &general})
				if err != nil {
					return errors.WithStack(err)
				}

				if e, g := 2, len(tasks); e != g {
					t.Fatalf("len(tasks): expected %d, got %d (%s)", e, g, spew.Sdump(tasks))
				}

				if e, g := first.ID(), tasks[0].ID(); e != g {
					t.Errorf("tasks[0].ID(): expected '%v', got '%v'", e, g)
				}

				if e, g := "buy milk", tasks[0].Text(); e != g {
					t.Errorf("tasks[0].Text(): expected '%v', got '%v'", e, g)
				}

				if e, g := alice.ID(), tasks[0].Owner().ID(); e != g {
					t.Errorf("tasks[0].Owner().ID(): expected '%v', got '%v'", e, g)
				}

				if e, g := alice.Name(), tasks[0].Owner().Name(); e != g {
					t.Errorf("tasks[0].Owner().Name(): expected '%v', got '%v'", e, g)
				}

				if e, g := general, tasks[0].ChannelID(); e != g {
					t.Errorf("tasks[0].ChannelID(): expected '%v', got '%v'", e, g)
				}

				found, err := store.GetTaskByID(ctx, second.ID())
				if err != nil {
					return errors.WithStack(err)
				}

				if e, g := "walk the dog", found.Text(); e != g {
					t.Errorf("found.Text(): expected '%v', got '%v'", e, g)
				}

				return nil
			},
		},
		{
			Name: "QueryOrderedByCreationTime",
			Run: func(t *testing.T, ctx context.Context, store port.TaskStore) error {
				now := time.Now().UTC().Truncate(time.Second)

				// Sub-second offsets within the same second must sort numerically,
				// e.g. 5.5s after 5s and 0.12s after 0.1s.
				offsets := []time.Duration{
					5500 * time.Millisecond,
					5 * time.Second,
					-3 * time.Second,
					0,
					500 * time.Millisecond,
					120 * time.Millisecond,
					100 * time.Millisecond,
					12 * time.Second,
					-7 * time.Second,
					time.Second,
				}

				for i, offset := range offsets {
					task := model.RestoreTask("", string(rune('a'+i)), false, alice, general, now.Add(offset))
					if _, err := store.CreateTask(ctx, task); err != nil {
						return errors.WithStack(err)
					}
				}

				byChannel, err := store.QueryTasks(ctx, port.TaskFilter{ChannelID: &general})
				if err != nil {
					return errors.WithStack(err)
				}

				aliceID := alice.ID()
				byUser, err := store.QueryTasks(ctx, port.TaskFilter{UserID: &aliceID})
				if err != nil {
					return errors.WithStack(err)
				}

				for name, tasks := range map[string][]model.Task{"byChannel": byChannel, "byUser": byUser} {
					if e, g := len(offsets), len(tasks); e != g {
						t.Fatalf("len(%s): expected %d, got %d", name, e, g)
					}

					sorted := sort.SliceIsSorted(tasks, func(i, j int) bool {
						return tasks[i].CreatedAt().Before(tasks[j].CreatedAt())
					})
					if !sorted {
						t.Errorf("%s: tasks should be sorted by creation time, got %s", name, spew.Sdump(tasks))
					}
				}

				return nil
			},
		},
		{
			Name: "QueryByUserAndChannel",
			Run: func(t *testing.T, ctx context.Context, store port.TaskStore) error {
				fixtures := []*model.BaseTask{
					model.NewTask("alice general", alice, general),
					model.NewTask("alice random", alice, random),
					model.NewTask("bob general", bob, general),
				}

				for _, f := range fixtures {
					if _, err := store.CreateTask(ctx, f); err != nil {
						return errors.WithStack(err)
					}
				}

				bobID := bob.ID()
				byUser, err := store.QueryTasks(ctx, port.TaskFilter{UserID: &bobID})
				if err != nil {
					return errors.WithStack(err)
				}

				if e, g := 1, len(byUser); e != g {
					t.Fatalf("len(byUser): expected %d, got %d", e, g)
				}

				if e, g := "bob general", byUser[0].Text(); e != g {
					t.Errorf("byUser[0].Text(): expected '%v', got '%v'", e, g)
				}

				byChannel, err := store.QueryTasks(ctx, port.TaskFilter{ChannelID: &random})
				if err != nil {
					return errors.WithStack(err)
				}

				if e, g := 1, len(byChannel); e != g {
					t.Fatalf("len(byChannel): expected %d, got %d", e, g)
				}

				if e, g := "alice random", byChannel[0].Text(); e != g {
					t.Errorf("byChannel[0].Text(): expected '%v', got '%v'", e, g)
				}

				unknown := model.ChannelID("C999")
				empty, err := store.QueryTasks(ctx, port.TaskFilter{ChannelID: &unknown})
				if err != nil {
					return errors.WithStack(err)
				}

				if e, g := 0, len(empty); e != g {
					t.Errorf("len(empty): expected %d, got %d", e, g)
				}

				return nil
			},
		},
		{
			Name: "SetCompletedRoundTrip",
			Run: func(t *testing.T, ctx context.Context, store port.TaskStore) error {
				created, err := store.CreateTask(ctx, model.NewTask("buy milk", alice, general))
				if err != nil {
					return errors.WithStack(err)
				}

				original, err := store.GetTaskByID(ctx, created.ID())
				if err != nil {
					return errors.WithStack(err)
				}

				completed, err := store.SetTaskCompleted(ctx, created.ID(), true)
				if err != nil {
					return errors.WithStack(err)
				}

				if !completed.Completed() {
					t.Errorf("completed.Completed(): expected true, got false")
				}

				restored, err := store.SetTaskCompleted(ctx, created.ID(), false)
				if err != nil {
					return errors.WithStack(err)
				}

				if restored.Completed() {
					t.Errorf("restored.Completed(): expected false, got true")
				}

				if e, g := original.Text(), restored.Text(); e != g {
					t.Errorf("restored.Text(): expected '%v', got '%v'", e, g)
				}

				if e, g := original.Owner().ID(), restored.Owner().ID(); e != g {
					t.Errorf("restored.Owner().ID(): expected '%v', got '%v'", e, g)
				}

				if e, g := original.ChannelID(), restored.ChannelID(); e != g {
					t.Errorf("restored.ChannelID(): expected '%v', got '%v'", e, g)
				}

				if e, g := original.CreatedAt(), restored.CreatedAt(); !e.Equal(g) {
					t.Errorf("restored.CreatedAt(): expected '%v', got '%v'", e, g)
				}

				return nil
			},
		},
		{
			Name: "DeleteTaskByID",
			Run: func(t *testing.T, ctx context.Context, store port.TaskStore) error {
				created, err := store.CreateTask(ctx, model.NewTask("buy milk", alice, general))
				if err != nil {
					return errors.WithStack(err)
				}

				deleted, err := store.DeleteTaskByID(ctx, created.ID())
				if err != nil {
					return errors.WithStack(err)
				}

				if e, g := "buy milk", deleted.Text(); e != g {
					t.Errorf("deleted.Text(): expected '%v', got '%v'", e, g)
				}

				if _, err := store.GetTaskByID(ctx, created.ID()); !errors.Is(err, port.ErrNotFound) {
					t.Errorf("GetTaskByID(): expected ErrNotFound, got %v", err)
				}

				if _, err := store.DeleteTaskByID(ctx, created.ID()); !errors.Is(err, port.ErrNotFound) {
					t.Errorf("DeleteTaskByID(): expected ErrNotFound, got %v", err)
				}

				return nil
			},
		},
		{
			Name: "UnknownTaskID",
			Run: func(t *testing.T, ctx context.Context, store port.TaskStore) error {
				ids := []model.TaskID{
					model.NewTaskID(),
					"000000000000000000000000",
					"not-a-valid-id",
				}

				for _, id := range ids {
					if _, err := store.GetTaskByID(ctx, id); !errors.Is(err, port.ErrNotFound) {
						t.Errorf("GetTaskByID('%s'): expected ErrNotFound, got %v", id, err)
					}

					if _, err := store.SetTaskCompleted(ctx, id, true); !errors.Is(err, port.ErrNotFound) {
						t.Errorf("SetTaskCompleted('%s'): expected ErrNotFound, got %v", id, err)
					}

					if _, err := store.DeleteTaskByID(ctx, id); !errors.Is(err, port.ErrNotFound) {
						t.Errorf("DeleteTaskByID('%s'): expected ErrNotFound, got %v", id, err)
					}
				}

				return nil
			},
		},
		{
			Name: "DeleteCompletedTasks",
			Run: func(t *testing.T, ctx context.Context, store port.TaskStore) error {
				fixtures := []struct {
					Task      *model.BaseTask
					Completed bool
				}{
					{model.NewTask("general done 1", alice, general), true},
					{model.NewTask("general todo", alice, general), false},
					{model.NewTask("general done 2", bob, general), true},
					{model.NewTask("random done", alice, random), true},
				}

				for _, f := range fixtures {
					created, err := store.CreateTask(ctx, f.Task)
					if err != nil {
						return errors.WithStack(err)
					}

					if f.Completed {
						if _, err := store.SetTaskCompleted(ctx, created.ID(), true); err != nil {
							return errors.WithStack(err)
						}
					}
				}

				completed := true
				removed, err := store.DeleteTasks(ctx, port.TaskFilter{ChannelID: &general, Completed: &completed})
				if err != nil {
					return errors.WithStack(err)
				}

				if e, g := int64(2), removed; e != g {
					t.Errorf("removed: expected %d, got %d", e, g)
				}

				remaining, err := store.QueryTasks(ctx, port.TaskFilter{ChannelID: &general})
				if err != nil {
					return errors.WithStack(err)
				}

				if e, g := 1, len(remaining); e != g {
					t.Fatalf("len(remaining): expected %d, got %d", e, g)
				}

				if e, g := "general todo", remaining[0].Text(); e != g {
					t.Errorf("remaining[0].Text(): expected '%v', got '%v'", e, g)
				}

				others, err := store.QueryTasks(ctx, port.TaskFilter{ChannelID: &random})
				if err != nil {
					return errors.WithStack(err)
				}

				if e, g := 1, len(others); e != g {
					t.Errorf("len(others): expected %d, got %d", e, g)
				}

				removed, err = store.DeleteTasks(ctx, port.TaskFilter{ChannelID: &general, Completed: &completed})
				if err != nil {
					return errors.WithStack(err)
				}

				if e, g := int64(0), removed; e != g {
					t.Errorf("removed: expected %d, got %d", e, g)
				}

				return nil
			},
		},
		{
			Name: "Ping",
			Run: func(t *testing.T, ctx context.Context, store port.TaskStore) error {
				if err := store.Ping(ctx); err != nil {
					return errors.WithStack(err)
				}

				return nil
			},
		},
	}

	for _, tc := range testCases {
		func(tc testCase) {
			t.Run(tc.Name, func(t *testing.T) {
				store, err := factory(t)
				if err != nil {
					t.Fatalf("%+v", errors.WithStack(err))
				}

				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				if err := tc.Run(t, ctx, store); err != nil {
					t.Errorf("%+v", errors.WithStack(err))
				}
			})
		}(tc)
	}
}
