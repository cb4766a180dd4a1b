package slack

import (
	"context"
	"time"

	"github.com/bornholm/todo/internal/bot"
	"github.com/bornholm/todo/internal/core/model"
	"github.com/pkg/errors"
	"github.com/slack-go/slack"
	"golang.org/x/time/rate"
)

// RateLimitedClient spaces out the calls made to the Slack Web API.
type RateLimitedClient struct {
	limiter *rate.Limiter
	client  bot.Client
}

// OpenView implements bot.Client.
func (c *RateLimitedClient) OpenView(ctx context.Context, triggerID string, view slack.ModalViewRequest) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return errors.WithStack(err)
	}

	return c.client.OpenView(ctx, triggerID, view)
}

// PostMessage implements bot.Client.
func (c *RateLimitedClient) PostMessage(ctx context.Context, channelID model.ChannelID, text string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return errors.WithStack(err)
	}

	return c.client.PostMessage(ctx, channelID, text)
}

// PublishView implements bot.Client.
func (c *RateLimitedClient) PublishView(ctx context.Context, userID model.UserID, view slack.HomeTabViewRequest) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return errors.WithStack(err)
	}

	return c.client.PublishView(ctx, userID, view)
}

// Respond implements bot.Client.
func (c *RateLimitedClient) Respond(ctx context.Context, responseURL string, text string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return errors.WithStack(err)
	}

	return c.client.Respond(ctx, responseURL, text)
}

func NewRateLimitedClient(client bot.Client, interval time.Duration, maxBurst int) *RateLimitedClient {
	return &RateLimitedClient{
		limiter: rate.NewLimiter(rate.Every(interval), maxBurst),
		client:  client,
	}
}

var _ bot.Client = &RateLimitedClient{}
