package slack

import (
	"context"
	"time"

	"github.com/bornholm/todo/internal/bot"
	"github.com/bornholm/todo/internal/core/model"
	"github.com/pkg/errors"
	"github.com/slack-go/slack"
)

// Client exposes the Slack Web API calls used by the bot.
type Client struct {
	api         *slack.Client
	callTimeout time.Duration
}

// PublishView implements bot.Client.
func (c *Client) PublishView(ctx context.Context, userID model.UserID, view slack.HomeTabViewRequest) error {
	ctx, cancel := c.withCallTimeout(ctx)
	defer cancel()

	if _, err := c.api.PublishViewContext(ctx, string(userID), view, ""); err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// OpenView implements bot.Client.
func (c *Client) OpenView(ctx context.Context, triggerID string, view slack.ModalViewRequest) error {
	ctx, cancel := c.withCallTimeout(ctx)
	defer cancel()

	if _, err := c.api.OpenViewContext(ctx, triggerID, view); err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// PostMessage implements bot.Client.
func (c *Client) PostMessage(ctx context.Context, channelID model.ChannelID, text string) error {
	ctx, cancel := c.withCallTimeout(ctx)
	defer cancel()

	if _, _, err := c.api.PostMessageContext(ctx, string(channelID), slack.MsgOptionText(text, false)); err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// Respond implements bot.Client.
func (c *Client) Respond(ctx context.Context, responseURL string, text string) error {
	ctx, cancel := c.withCallTimeout(ctx)
	defer cancel()

	_, _, err := c.api.PostMessageContext(ctx, "",
		slack.MsgOptionText(text, false),
		slack.MsgOptionResponseURL(responseURL, slack.ResponseTypeEphemeral),
	)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// Identify returns the user and team of the bot token.
func (c *Client) Identify(ctx context.Context) (string, string, error) {
	ctx, cancel := c.withCallTimeout(ctx)
	defer cancel()

	res, err := c.api.AuthTestContext(ctx)
	if err != nil {
		return "", "", errors.WithStack(err)
	}

	return res.User, res.Team, nil
}

func (c *Client) API() *slack.Client {
	return c.api
}

// withCallTimeout bounds a single Web API call. Task store operations
// performed by the handlers are not subject to it.
func (c *Client) withCallTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}

type ClientOptions struct {
	CallTimeout time.Duration
}

type ClientOptionFunc func(opts *ClientOptions)

func WithCallTimeout(timeout time.Duration) ClientOptionFunc {
	return func(opts *ClientOptions) {
		opts.CallTimeout = timeout
	}
}

func NewClientOptions(funcs ...ClientOptionFunc) *ClientOptions {
	opts := &ClientOptions{
		CallTimeout: 10 * time.Second,
	}
	for _, fn := range funcs {
		fn(opts)
	}
	return opts
}

func NewClient(api *slack.Client, funcs ...ClientOptionFunc) *Client {
	opts := NewClientOptions(funcs...)
	return &Client{
		api:         api,
		callTimeout: opts.CallTimeout,
	}
}

var _ bot.Client = &Client{}
