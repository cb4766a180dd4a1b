package slack

import (
	"context"
	"log/slog"
	"time"

	"github.com/bornholm/todo/internal/bot"
	"github.com/bornholm/todo/internal/core/model"
	"github.com/pkg/errors"
	"github.com/slack-go/slack"
)

// RetryClient retries the calls rejected by the Slack rate limiter.
type RetryClient struct {
	baseDelay  time.Duration
	maxRetries int
	client     bot.Client
}

// OpenView implements bot.Client.
func (c *RetryClient) OpenView(ctx context.Context, triggerID string, view slack.ModalViewRequest) error {
	return c.withRetry(ctx, func(ctx context.Context) error {
		return c.client.OpenView(ctx, triggerID, view)
	})
}

// PostMessage implements bot.Client.
func (c *RetryClient) PostMessage(ctx context.Context, channelID model.ChannelID, text string) error {
	return c.withRetry(ctx, func(ctx context.Context) error {
		return c.client.PostMessage(ctx, channelID, text)
	})
}

// PublishView implements bot.Client.
func (c *RetryClient) PublishView(ctx context.Context, userID model.UserID, view slack.HomeTabViewRequest) error {
	return c.withRetry(ctx, func(ctx context.Context) error {
		return c.client.PublishView(ctx, userID, view)
	})
}

// Respond implements bot.Client.
func (c *RetryClient) Respond(ctx context.Context, responseURL string, text string) error {
	return c.withRetry(ctx, func(ctx context.Context) error {
		return c.client.Respond(ctx, responseURL, text)
	})
}

func (c *RetryClient) withRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	backoff := c.baseDelay
	retries := 0

	for {
		err := fn(ctx)
		if err == nil {
			return nil
		}

		var rateLimited *slack.RateLimitedError
		if !errors.As(err, &rateLimited) || retries >= c.maxRetries {
			return errors.WithStack(err)
		}

		delay := backoff
		if rateLimited.RetryAfter > delay {
			delay = rateLimited.RetryAfter
		}

		slog.DebugContext(ctx, "slack call rate limited, will retry", slog.Int("retries", retries), slog.Duration("delay", delay))

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return errors.WithStack(ctx.Err())
		case <-timer.C:
		}

		retries++
		backoff *= 2
	}
}

func NewRetryClient(client bot.Client, baseDelay time.Duration, maxRetries int) *RetryClient {
	return &RetryClient{
		baseDelay:  baseDelay,
		maxRetries: maxRetries,
		client:     client,
	}
}

var _ bot.Client = &RetryClient{}
