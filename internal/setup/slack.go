package setup

import (
	"context"
	"log/slog"

	"github.com/bornholm/todo/internal/adapter/slack"
	"github.com/bornholm/todo/internal/bot"
	"github.com/bornholm/todo/internal/bot/command"
	"github.com/bornholm/todo/internal/config"
	"github.com/pkg/errors"
	slackapi "github.com/slack-go/slack"
)

// Runner processes Slack events until its context is canceled.
type Runner interface {
	Run(ctx context.Context) error
}

var getSlackClient = createFromConfigOnce(func(ctx context.Context, conf *config.Config) (*slack.Client, error) {
	api := slackapi.New(
		conf.Slack.BotToken,
		slackapi.OptionAppLevelToken(conf.Slack.AppToken),
		slackapi.OptionDebug(conf.Slack.Debug),
	)

	return slack.NewClient(api, slack.WithCallTimeout(conf.Slack.CallTimeout)), nil
})

var getBot = createFromConfigOnce(func(ctx context.Context, conf *config.Config) (*bot.Bot, error) {
	slackClient, err := getSlackClient(ctx, conf)
	if err != nil {
		return nil, errors.Wrap(err, "could not create slack client from config")
	}

	var client bot.Client = slack.NewRetryClient(slackClient, conf.Slack.Retry.BaseDelay, conf.Slack.Retry.MaxRetries)
	client = slack.NewRateLimitedClient(client, conf.Slack.RateLimit.Interval, conf.Slack.RateLimit.MaxBurst)

	taskManager, err := getTaskManager(ctx, conf)
	if err != nil {
		return nil, errors.Wrap(err, "could not create task manager from config")
	}

	return bot.NewBot(client, taskManager, command.WithCommandName(conf.Slack.Command)), nil
})

var getSlackDispatcher = createFromConfigOnce(func(ctx context.Context, conf *config.Config) (*slack.Dispatcher, error) {
	b, err := getBot(ctx, conf)
	if err != nil {
		return nil, errors.Wrap(err, "could not create bot from config")
	}

	return slack.NewDispatcher(b), nil
})

var getSlackHTTPHandler = createFromConfigOnce(func(ctx context.Context, conf *config.Config) (*slack.HTTPHandler, error) {
	dispatcher, err := getSlackDispatcher(ctx, conf)
	if err != nil {
		return nil, errors.Wrap(err, "could not create slack dispatcher from config")
	}

	return slack.NewHTTPHandler(conf.Slack.SigningSecret, dispatcher), nil
})

// NewSlackRunnerFromConfig returns the event source matching the configured mode.
func NewSlackRunnerFromConfig(ctx context.Context, conf *config.Config) (Runner, error) {
	client, err := getSlackClient(ctx, conf)
	if err != nil {
		return nil, errors.Wrap(err, "could not create slack client from config")
	}

	user, team, err := client.Identify(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "could not authenticate slack bot")
	}

	slog.InfoContext(ctx, "slack bot authenticated", slog.String("user", user), slog.String("team", team))

	switch conf.Slack.Mode {
	case config.SlackModeSocket:
		dispatcher, err := getSlackDispatcher(ctx, conf)
		if err != nil {
			return nil, errors.Wrap(err, "could not create slack dispatcher from config")
		}

		return slack.NewSocketRunner(client.API(), dispatcher, conf.Slack.Debug), nil

	case config.SlackModeHTTP:
		handler, err := getSlackHTTPHandler(ctx, conf)
		if err != nil {
			return nil, errors.Wrap(err, "could not create slack http handler from config")
		}

		return handler, nil

	default:
		return nil, errors.Errorf("unknown slack mode '%s'", conf.Slack.Mode)
	}
}
