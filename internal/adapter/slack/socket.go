package slack

import (
	"context"
	"log/slog"

	"github.com/bornholm/go-x/slogx"
	"github.com/pkg/errors"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"
)

// SocketRunner receives events over a Socket Mode websocket connection.
type SocketRunner struct {
	client     *socketmode.Client
	dispatcher *Dispatcher
}

// Run connects to Slack and processes events until the context is canceled.
func (r *SocketRunner) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan struct{})

	go func() {
		defer close(done)
		r.listen(ctx)
	}()

	err := r.client.RunContext(ctx)

	cancel()
	<-done

	r.dispatcher.Wait()

	if err != nil && !errors.Is(err, context.Canceled) {
		return errors.WithStack(err)
	}

	return nil
}

func (r *SocketRunner) listen(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-r.client.Events:
			if !ok {
				return
			}

			r.handle(ctx, evt)
		}
	}
}

func (r *SocketRunner) handle(ctx context.Context, evt socketmode.Event) {
	ctx = slogx.WithAttrs(ctx, slog.String("eventType", string(evt.Type)))

	switch evt.Type {
	case socketmode.EventTypeConnecting:
		slog.InfoContext(ctx, "connecting to slack")

	case socketmode.EventTypeConnected:
		slog.InfoContext(ctx, "connected to slack")

	case socketmode.EventTypeConnectionError:
		slog.WarnContext(ctx, "slack connection failed, retrying")

	case socketmode.EventTypeEventsAPI:
		event, ok := evt.Data.(slackevents.EventsAPIEvent)
		if !ok {
			slog.WarnContext(ctx, "unexpected events api payload")
			return
		}

		r.ack(evt)
		r.dispatcher.DispatchEvent(ctx, event)

	case socketmode.EventTypeInteractive:
		callback, ok := evt.Data.(slack.InteractionCallback)
		if !ok {
			slog.WarnContext(ctx, "unexpected interaction payload")
			return
		}

		r.ack(evt)
		r.dispatcher.DispatchInteraction(ctx, callback)

	case socketmode.EventTypeSlashCommand:
		cmd, ok := evt.Data.(slack.SlashCommand)
		if !ok {
			slog.WarnContext(ctx, "unexpected slash command payload")
			return
		}

		r.ack(evt)
		r.dispatcher.DispatchCommand(ctx, cmd)

	default:
		slog.DebugContext(ctx, "ignoring socket mode event")
	}
}

func (r *SocketRunner) ack(evt socketmode.Event) {
	if evt.Request == nil {
		return
	}

	r.client.Ack(*evt.Request)
}

func NewSocketRunner(api *slack.Client, dispatcher *Dispatcher, debug bool) *SocketRunner {
	client := socketmode.New(api, socketmode.OptionDebug(debug))

	return &SocketRunner{
		client:     client,
		dispatcher: dispatcher,
	}
}
