package bot_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/bornholm/todo/internal/adapter/memory"
	"github.com/bornholm/todo/internal/bot"
	"github.com/bornholm/todo/internal/bot/home"
	"github.com/bornholm/todo/internal/core/model"
	"github.com/bornholm/todo/internal/core/service"
	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	"github.com/slack-go/slack"
)

func TestBotHomeLifecycle(t *testing.T) {
	ctx := context.Background()
	client := &fakeClient{}
	taskManager := service.NewTaskManager(memory.NewTaskStore())
	b := bot.NewBot(client, taskManager)

	if err := b.HandleHomeOpened(ctx, bot.HomeOpenedRequest{UserID: "U001"}); err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	view := client.LastView(t)
	if !viewContains(view, "No tasks yet") {
		t.Errorf("expected empty home view, got %s", spew.Sdump(view))
	}

	err := b.HandleAction(ctx, bot.ActionRequest{
		UserID:    "U001",
		UserName:  "alice",
		TriggerID: "trigger-1",
		ActionID:  home.ActionAddTask,
	})
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if e, g := 1, len(client.modals); e != g {
		t.Fatalf("len(client.modals): expected %d, got %d", e, g)
	}

	if e, g := "trigger-1", client.modals[0].triggerID; e != g {
		t.Errorf("modal triggerID: expected '%v', got '%v'", e, g)
	}

	if e, g := home.CallbackAddTask, client.modals[0].view.CallbackID; e != g {
		t.Errorf("modal CallbackID: expected '%v', got '%v'", e, g)
	}

	err = b.HandleAddTaskSubmission(ctx, bot.AddTaskSubmission{
		UserID:    "U001",
		UserName:  "alice",
		Text:      "buy milk",
		ChannelID: "C001",
	})
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if e, g := 1, len(client.messages); e != g {
		t.Fatalf("len(client.messages): expected %d, got %d", e, g)
	}

	if e, g := model.ChannelID("C001"), client.messages[0].channelID; e != g {
		t.Errorf("message channelID: expected '%v', got '%v'", e, g)
	}

	if e, g := "<@U001> added a new task: buy milk", client.messages[0].text; e != g {
		t.Errorf("message text: expected '%v', got '%v'", e, g)
	}

	view = client.LastView(t)
	if !viewContains(view, "• buy milk") {
		t.Errorf("expected active task in home view, got %s", spew.Sdump(view))
	}

	tasks, err := taskManager.ListByUser(ctx, "U001")
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if e, g := 1, len(tasks); e != g {
		t.Fatalf("len(tasks): expected %d, got %d", e, g)
	}

	taskID := string(tasks[0].ID())

	err = b.HandleAction(ctx, bot.ActionRequest{UserID: "U001", ActionID: home.ActionCompleteTask, Value: taskID})
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	view = client.LastView(t)
	if !viewContains(view, "~buy milk~") {
		t.Errorf("expected completed task in home view, got %s", spew.Sdump(view))
	}

	err = b.HandleAction(ctx, bot.ActionRequest{UserID: "U001", ActionID: home.ActionClearCompleted})
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	view = client.LastView(t)
	if !viewContains(view, "No tasks yet") {
		t.Errorf("expected empty home view, got %s", spew.Sdump(view))
	}

	// The task has been cleared, deleting it again surfaces a notice
	err = b.HandleAction(ctx, bot.ActionRequest{UserID: "U001", ActionID: home.ActionDeleteTask, Value: taskID})
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	view = client.LastView(t)
	if !viewContains(view, "This task no longer exists.") {
		t.Errorf("expected not found notice in home view, got %s", spew.Sdump(view))
	}
}

func TestBotInvalidSubmission(t *testing.T) {
	ctx := context.Background()
	client := &fakeClient{}
	b := bot.NewBot(client, service.NewTaskManager(memory.NewTaskStore()))

	err := b.HandleAddTaskSubmission(ctx, bot.AddTaskSubmission{
		UserID:    "U001",
		UserName:  "alice",
		Text:      "   ",
		ChannelID: "C001",
	})
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if e, g := 0, len(client.messages); e != g {
		t.Errorf("len(client.messages): expected %d, got %d", e, g)
	}

	view := client.LastView(t)
	if !viewContains(view, "A task needs a description and a channel.") {
		t.Errorf("expected invalid input notice in home view, got %s", spew.Sdump(view))
	}
}

func TestBotShareFailure(t *testing.T) {
	ctx := context.Background()
	client := &fakeClient{postErr: errors.New("not_in_channel")}
	taskManager := service.NewTaskManager(memory.NewTaskStore())
	b := bot.NewBot(client, taskManager)

	err := b.HandleAddTaskSubmission(ctx, bot.AddTaskSubmission{
		UserID:    "U001",
		UserName:  "alice",
		Text:      "buy milk",
		ChannelID: "C001",
	})
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	view := client.LastView(t)
	if !viewContains(view, "could not be shared") {
		t.Errorf("expected share failure notice in home view, got %s", spew.Sdump(view))
	}

	if !viewContains(view, "• buy milk") {
		t.Errorf("expected the task to be kept, got %s", spew.Sdump(view))
	}
}

func TestBotCommand(t *testing.T) {
	ctx := context.Background()
	client := &fakeClient{}
	b := bot.NewBot(client, service.NewTaskManager(memory.NewTaskStore()))

	err := b.HandleCommand(ctx, bot.CommandRequest{
		Text:        "add water plants",
		UserID:      "U001",
		UserName:    "alice",
		ChannelID:   "C001",
		ResponseURL: "https://hooks.slack.test/commands/1",
	})
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if e, g := 1, len(client.responses); e != g {
		t.Fatalf("len(client.responses): expected %d, got %d", e, g)
	}

	if e, g := "https://hooks.slack.test/commands/1", client.responses[0].url; e != g {
		t.Errorf("response url: expected '%v', got '%v'", e, g)
	}

	if e, g := `Task "water plants" added.`, client.responses[0].text; e != g {
		t.Errorf("response text: expected '%v', got '%v'", e, g)
	}
}

func TestBotActionWithoutTaskID(t *testing.T) {
	ctx := context.Background()
	client := &fakeClient{}
	b := bot.NewBot(client, service.NewTaskManager(memory.NewTaskStore()))

	for _, actionID := range []string{home.ActionCompleteTask, home.ActionDeleteTask} {
		err := b.HandleAction(ctx, bot.ActionRequest{UserID: "U001", UserName: "alice", ActionID: actionID})
		if err != nil {
			t.Fatalf("%+v", errors.WithStack(err))
		}

		view := client.LastView(t)

		if !viewContains(view, "This button does not refer to any task.") {
			t.Errorf("%s: expected missing task id notice in home view, got %s", actionID, spew.Sdump(view))
		}

		if viewContains(view, "A task needs a description and a channel.") {
			t.Errorf("%s: unexpected invalid submission notice in home view", actionID)
		}
	}
}

func TestBotUnknownAction(t *testing.T) {
	client := &fakeClient{}
	b := bot.NewBot(client, service.NewTaskManager(memory.NewTaskStore()))

	if err := b.HandleAction(context.Background(), bot.ActionRequest{UserID: "U001", ActionID: "unknown"}); err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if e, g := 0, len(client.views); e != g {
		t.Errorf("len(client.views): expected %d, got %d", e, g)
	}
}

func viewContains(view slack.HomeTabViewRequest, text string) bool {
	for _, block := range view.Blocks.BlockSet {
		var candidates []*slack.TextBlockObject

		switch b := block.(type) {
		case *slack.SectionBlock:
			candidates = append(candidates, b.Text)
		case *slack.HeaderBlock:
			candidates = append(candidates, b.Text)
		case *slack.ContextBlock:
			for _, elem := range b.ContextElements.Elements {
				if obj, ok := elem.(*slack.TextBlockObject); ok {
					candidates = append(candidates, obj)
				}
			}
		}

		for _, c := range candidates {
			if c != nil && strings.Contains(c.Text, text) {
				return true
			}
		}
	}

	return false
}

type publishedView struct {
	userID model.UserID
	view   slack.HomeTabViewRequest
}

type openedModal struct {
	triggerID string
	view      slack.ModalViewRequest
}

type postedMessage struct {
	channelID model.ChannelID
	text      string
}

type response struct {
	url  string
	text string
}

type fakeClient struct {
	mutex     sync.Mutex
	postErr   error
	views     []publishedView
	modals    []openedModal
	messages  []postedMessage
	responses []response
}

func (c *fakeClient) LastView(t *testing.T) slack.HomeTabViewRequest {
	t.Helper()

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if len(c.views) == 0 {
		t.Fatalf("no view published")
	}

	return c.views[len(c.views)-1].view
}

// OpenView implements bot.Client.
func (c *fakeClient) OpenView(ctx context.Context, triggerID string, view slack.ModalViewRequest) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.modals = append(c.modals, openedModal{triggerID, view})

	return nil
}

// PostMessage implements bot.Client.
func (c *fakeClient) PostMessage(ctx context.Context, channelID model.ChannelID, text string) error {
	if c.postErr != nil {
		return errors.WithStack(c.postErr)
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.messages = append(c.messages, postedMessage{channelID, text})

	return nil
}

// PublishView implements bot.Client.
func (c *fakeClient) PublishView(ctx context.Context, userID model.UserID, view slack.HomeTabViewRequest) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.views = append(c.views, publishedView{userID, view})

	return nil
}

// Respond implements bot.Client.
func (c *fakeClient) Respond(ctx context.Context, responseURL string, text string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.responses = append(c.responses, response{responseURL, text})

	return nil
}

var _ bot.Client = &fakeClient{}
