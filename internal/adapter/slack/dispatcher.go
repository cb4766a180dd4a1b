package slack

import (
	"context"
	"log/slog"
	"sync"

	"github.com/bornholm/go-x/slogx"
	"github.com/bornholm/todo/internal/bot"
	"github.com/bornholm/todo/internal/bot/home"
	"github.com/bornholm/todo/internal/core/model"
	"github.com/pkg/errors"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
)

// Handler processes the events received from Slack.
type Handler interface {
	HandleCommand(ctx context.Context, req bot.CommandRequest) error
	HandleHomeOpened(ctx context.Context, req bot.HomeOpenedRequest) error
	HandleAction(ctx context.Context, req bot.ActionRequest) error
	HandleAddTaskSubmission(ctx context.Context, req bot.AddTaskSubmission) error
}

// Dispatcher runs handlers in the background once the event has been
// acknowledged to Slack.
type Dispatcher struct {
	handler Handler
	wg      sync.WaitGroup
}

func (d *Dispatcher) DispatchCommand(ctx context.Context, cmd slack.SlashCommand) {
	req := bot.CommandRequest{
		Text:        cmd.Text,
		UserID:      model.UserID(cmd.UserID),
		UserName:    cmd.UserName,
		ChannelID:   model.ChannelID(cmd.ChannelID),
		ResponseURL: cmd.ResponseURL,
	}

	d.run(ctx, "command", func(ctx context.Context) error {
		return d.handler.HandleCommand(ctx, req)
	})
}

func (d *Dispatcher) DispatchInteraction(ctx context.Context, callback slack.InteractionCallback) {
	switch callback.Type {
	case slack.InteractionTypeBlockActions:
		for _, action := range callback.ActionCallback.BlockActions {
			if action == nil {
				continue
			}

			req := bot.ActionRequest{
				UserID:    model.UserID(callback.User.ID),
				UserName:  callback.User.Name,
				TriggerID: callback.TriggerID,
				ActionID:  action.ActionID,
				Value:     action.Value,
			}

			d.run(ctx, "block_action", func(ctx context.Context) error {
				return d.handler.HandleAction(ctx, req)
			})
		}

	case slack.InteractionTypeViewSubmission:
		if callback.View.CallbackID != home.CallbackAddTask {
			slog.WarnContext(ctx, "ignoring unknown view submission", slog.String("callbackID", callback.View.CallbackID))
			return
		}

		text, channelID := home.AddTaskValues(callback.View.State)

		req := bot.AddTaskSubmission{
			UserID:    model.UserID(callback.User.ID),
			UserName:  callback.User.Name,
			Text:      text,
			ChannelID: model.ChannelID(channelID),
		}

		d.run(ctx, "view_submission", func(ctx context.Context) error {
			return d.handler.HandleAddTaskSubmission(ctx, req)
		})

	default:
		slog.DebugContext(ctx, "ignoring interaction", slog.String("type", string(callback.Type)))
	}
}

func (d *Dispatcher) DispatchEvent(ctx context.Context, event slackevents.EventsAPIEvent) {
	if event.Type != slackevents.CallbackEvent {
		slog.DebugContext(ctx, "ignoring event", slog.String("type", event.Type))
		return
	}

	switch ev := event.InnerEvent.Data.(type) {
	case *slackevents.AppHomeOpenedEvent:
		if ev.Tab != "" && ev.Tab != "home" {
			return
		}

		req := bot.HomeOpenedRequest{
			UserID: model.UserID(ev.User),
		}

		d.run(ctx, "app_home_opened", func(ctx context.Context) error {
			return d.handler.HandleHomeOpened(ctx, req)
		})

	default:
		slog.DebugContext(ctx, "ignoring callback event", slog.String("type", event.InnerEvent.Type))
	}
}

// Wait blocks until every dispatched handler has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) run(ctx context.Context, kind string, fn func(ctx context.Context) error) {
	// Handlers outlive the request they were triggered by
	ctx = context.WithoutCancel(ctx)
	ctx = slogx.WithAttrs(ctx, slog.String("kind", kind))

	d.wg.Add(1)

	go func() {
		defer d.wg.Done()

		defer func() {
			if r := recover(); r != nil {
				slog.ErrorContext(ctx, "recovered from panic in slack handler", slog.Any("panic", r))
			}
		}()

		if err := fn(ctx); err != nil {
			slog.ErrorContext(ctx, "could not handle slack event", slogx.Error(errors.WithStack(err)))
		}
	}()
}

func NewDispatcher(handler Handler) *Dispatcher {
	return &Dispatcher{
		handler: handler,
	}
}
