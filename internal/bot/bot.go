package bot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bornholm/go-x/slogx"
	"github.com/bornholm/todo/internal/bot/command"
	"github.com/bornholm/todo/internal/bot/home"
	"github.com/bornholm/todo/internal/core/model"
	"github.com/bornholm/todo/internal/core/port"
	"github.com/bornholm/todo/internal/core/service"
	"github.com/bornholm/todo/internal/metrics"
	"github.com/getsentry/sentry-go"
	"github.com/pkg/errors"
	"github.com/slack-go/slack"
)

const (
	noticeFailure      = "Something went wrong, please try again later."
	noticeNotFound     = "This task no longer exists."
	noticeInvalidInput = "A task needs a description and a channel."
	noticeMissingID    = "This button does not refer to any task."
	noticeNotShared    = "The task was added but could not be shared in the selected channel."
	messageTaskShared  = "<@%s> added a new task: %s"
)

// Client is the subset of the Slack Web API used by the bot.
type Client interface {
	PublishView(ctx context.Context, userID model.UserID, view slack.HomeTabViewRequest) error
	OpenView(ctx context.Context, triggerID string, view slack.ModalViewRequest) error
	PostMessage(ctx context.Context, channelID model.ChannelID, text string) error
	// Respond sends an ephemeral reply through a slash command response url
	Respond(ctx context.Context, responseURL string, text string) error
}

type CommandRequest struct {
	Text        string
	UserID      model.UserID
	UserName    string
	ChannelID   model.ChannelID
	ResponseURL string
}

type HomeOpenedRequest struct {
	UserID model.UserID
}

type ActionRequest struct {
	UserID    model.UserID
	UserName  string
	TriggerID string
	ActionID  string
	Value     string
}

type AddTaskSubmission struct {
	UserID    model.UserID
	UserName  string
	Text      string
	ChannelID model.ChannelID
}

type Bot struct {
	client      Client
	taskManager *service.TaskManager
	router      *command.Router
}

// HandleCommand executes a slash command and replies to its author only.
func (b *Bot) HandleCommand(ctx context.Context, req CommandRequest) error {
	reply, err := b.router.Handle(ctx, command.Request{
		Text:      req.Text,
		UserID:    req.UserID,
		UserName:  req.UserName,
		ChannelID: req.ChannelID,
	})
	if err != nil {
		sentry.CaptureException(err)
	}

	if err := b.client.Respond(ctx, req.ResponseURL, reply.Text); err != nil {
		return errors.Wrap(err, "could not respond to command")
	}

	return nil
}

func (b *Bot) HandleHomeOpened(ctx context.Context, req HomeOpenedRequest) error {
	ctx = slogx.WithAttrs(ctx, slog.String("userID", string(req.UserID)))

	if err := b.publishHome(ctx, req.UserID); err != nil {
		return b.fail(ctx, req.UserID, err)
	}

	return nil
}

// HandleAction dispatches a home tab button click to its handler.
func (b *Bot) HandleAction(ctx context.Context, req ActionRequest) error {
	ctx = slogx.WithAttrs(ctx,
		slog.String("userID", string(req.UserID)),
		slog.String("actionID", req.ActionID),
	)

	switch req.ActionID {
	case home.ActionAddTask:
		metrics.TotalInteractions.WithLabelValues(req.ActionID).Inc()
		return b.HandleOpenAddTask(ctx, req)

	case home.ActionCompleteTask:
		metrics.TotalInteractions.WithLabelValues(req.ActionID).Inc()
		return b.HandleComplete(ctx, req)

	case home.ActionDeleteTask:
		metrics.TotalInteractions.WithLabelValues(req.ActionID).Inc()
		return b.HandleDelete(ctx, req)

	case home.ActionClearCompleted:
		metrics.TotalInteractions.WithLabelValues(req.ActionID).Inc()
		return b.HandleClearCompleted(ctx, req)

	default:
		slog.WarnContext(ctx, "ignoring unknown action")
		return nil
	}
}

func (b *Bot) HandleOpenAddTask(ctx context.Context, req ActionRequest) error {
	if err := b.client.OpenView(ctx, req.TriggerID, home.AddTaskModal()); err != nil {
		return b.fail(ctx, req.UserID, errors.Wrap(err, "could not open add task modal"))
	}

	return nil
}

// HandleAddTaskSubmission creates the submitted task, announces it in the selected
// channel and refreshes the home tab of its author.
func (b *Bot) HandleAddTaskSubmission(ctx context.Context, req AddTaskSubmission) error {
	ctx = slogx.WithAttrs(ctx,
		slog.String("userID", string(req.UserID)),
		slog.String("channelID", string(req.ChannelID)),
	)

	metrics.TotalInteractions.WithLabelValues(home.CallbackAddTask).Inc()

	owner := model.NewUser(req.UserID, req.UserName)

	task, err := b.taskManager.AddTask(ctx, req.Text, owner, req.ChannelID)
	if err != nil {
		return b.fail(ctx, req.UserID, errors.WithStack(err))
	}

	if err := b.client.PostMessage(ctx, task.ChannelID(), fmt.Sprintf(messageTaskShared, req.UserID, task.Text())); err != nil {
		err = errors.Wrap(err, "could not share task in channel")
		return b.failWithNotice(ctx, req.UserID, err, noticeNotShared)
	}

	if err := b.publishHome(ctx, req.UserID); err != nil {
		return b.fail(ctx, req.UserID, err)
	}

	return nil
}

func (b *Bot) HandleComplete(ctx context.Context, req ActionRequest) error {
	if req.Value == "" {
		return b.failMissingID(ctx, req)
	}

	if _, err := b.taskManager.SetCompleted(ctx, model.TaskID(req.Value), true); err != nil {
		return b.fail(ctx, req.UserID, errors.WithStack(err))
	}

	if err := b.publishHome(ctx, req.UserID); err != nil {
		return b.fail(ctx, req.UserID, err)
	}

	return nil
}

func (b *Bot) HandleDelete(ctx context.Context, req ActionRequest) error {
	if req.Value == "" {
		return b.failMissingID(ctx, req)
	}

	if _, err := b.taskManager.DeleteTask(ctx, model.TaskID(req.Value)); err != nil {
		return b.fail(ctx, req.UserID, errors.WithStack(err))
	}

	if err := b.publishHome(ctx, req.UserID); err != nil {
		return b.fail(ctx, req.UserID, err)
	}

	return nil
}

// HandleClearCompleted removes every completed task owned by the user.
func (b *Bot) HandleClearCompleted(ctx context.Context, req ActionRequest) error {
	removed, err := b.taskManager.ClearCompleted(ctx, service.UserScope(req.UserID))
	if err != nil {
		return b.fail(ctx, req.UserID, errors.WithStack(err))
	}

	slog.DebugContext(ctx, "completed tasks cleared", slog.Int64("removed", removed))

	if err := b.publishHome(ctx, req.UserID); err != nil {
		return b.fail(ctx, req.UserID, err)
	}

	return nil
}

func (b *Bot) publishHome(ctx context.Context, userID model.UserID, funcs ...home.OptionFunc) error {
	tasks, err := b.taskManager.ListByUser(ctx, userID)
	if err != nil {
		return errors.WithStack(err)
	}

	active, completed := service.Partition(tasks)

	if err := b.client.PublishView(ctx, userID, home.Render(active, completed, funcs...)); err != nil {
		return errors.Wrap(err, "could not publish home view")
	}

	return nil
}

func (b *Bot) fail(ctx context.Context, userID model.UserID, err error) error {
	notice := noticeFailure

	switch {
	case errors.Is(err, port.ErrNotFound):
		notice = noticeNotFound
	case errors.Is(err, port.ErrInvalidInput):
		notice = noticeInvalidInput
	}

	return b.failWithNotice(ctx, userID, err, notice)
}

func (b *Bot) failMissingID(ctx context.Context, req ActionRequest) error {
	err := errors.Wrapf(port.ErrInvalidInput, "action '%s' has no task id", req.ActionID)
	return b.failWithNotice(ctx, req.UserID, err, noticeMissingID)
}

// failWithNotice reports the error and surfaces it to the user on a fresh rendering of
// its home tab. The returned error is only set when the notice could not be published.
func (b *Bot) failWithNotice(ctx context.Context, userID model.UserID, err error, notice string) error {
	if !errors.Is(err, port.ErrNotFound) && !errors.Is(err, port.ErrInvalidInput) {
		sentry.CaptureException(err)
	}

	slog.ErrorContext(ctx, "could not handle interaction", slogx.Error(err))

	if pubErr := b.publishHome(ctx, userID, home.WithNotice(notice)); pubErr != nil {
		return errors.Wrap(pubErr, "could not publish home view notice")
	}

	return nil
}

func NewBot(client Client, taskManager *service.TaskManager, funcs ...command.OptionFunc) *Bot {
	return &Bot{
		client:      client,
		taskManager: taskManager,
		router:      command.NewRouter(taskManager, funcs...),
	}
}
