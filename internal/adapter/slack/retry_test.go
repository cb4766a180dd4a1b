package slack

import (
	"context"
	"testing"
	"time"

	"github.com/bornholm/todo/internal/core/model"
	"github.com/pkg/errors"
	"github.com/slack-go/slack"
)

type flakyClient struct {
	failures int
	calls    int
	err      error
}

func (c *flakyClient) call() error {
	c.calls++
	if c.calls <= c.failures {
		return errors.WithStack(c.err)
	}
	return nil
}

func (c *flakyClient) OpenView(ctx context.Context, triggerID string, view slack.ModalViewRequest) error {
	return c.call()
}

func (c *flakyClient) PostMessage(ctx context.Context, channelID model.ChannelID, text string) error {
	return c.call()
}

func (c *flakyClient) PublishView(ctx context.Context, userID model.UserID, view slack.HomeTabViewRequest) error {
	return c.call()
}

func (c *flakyClient) Respond(ctx context.Context, responseURL string, text string) error {
	return c.call()
}

func TestRetryClient(t *testing.T) {
	type testCase struct {
		Name          string
		Failures      int
		Err           error
		MaxRetries    int
		ExpectedCalls int
		ExpectError   bool
	}

	rateLimited := &slack.RateLimitedError{RetryAfter: time.Millisecond}

	testCases := []testCase{
		{Name: "Success", Failures: 0, Err: rateLimited, MaxRetries: 3, ExpectedCalls: 1},
		{Name: "RecoversFromRateLimit", Failures: 2, Err: rateLimited, MaxRetries: 3, ExpectedCalls: 3},
		{Name: "GivesUp", Failures: 5, Err: rateLimited, MaxRetries: 2, ExpectedCalls: 3, ExpectError: true},
		{Name: "NoRetryOnOtherErrors", Failures: 1, Err: errors.New("channel_not_found"), MaxRetries: 3, ExpectedCalls: 1, ExpectError: true},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			flaky := &flakyClient{failures: tc.Failures, err: tc.Err}
			client := NewRetryClient(flaky, time.Millisecond, tc.MaxRetries)

			err := client.PostMessage(context.Background(), "C001", "hello")

			if tc.ExpectError && err == nil {
				t.Errorf("expected an error")
			}

			if !tc.ExpectError && err != nil {
				t.Errorf("%+v", err)
			}

			if e, g := tc.ExpectedCalls, flaky.calls; e != g {
				t.Errorf("flaky.calls: expected %d, got %d", e, g)
			}
		})
	}
}
