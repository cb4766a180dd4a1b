package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bornholm/go-x/slogx"
	"github.com/bornholm/todo/internal/config"
	"github.com/bornholm/todo/internal/setup"
	"github.com/pkg/errors"

	// Task store adapters
	_ "github.com/bornholm/todo/internal/adapter/gorm"
	_ "github.com/bornholm/todo/internal/adapter/memory"
	_ "github.com/bornholm/todo/internal/adapter/mongo"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conf, err := config.Parse()
	if err != nil {
		slog.ErrorContext(ctx, "could not parse config", slog.Any("error", errors.WithStack(err)))
		os.Exit(1)
	}

	logger := slog.New(slogx.ContextHandler{
		Handler: slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level:     slog.Level(conf.Logger.Level),
			AddSource: true,
		}),
	})

	slog.SetDefault(logger)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.InfoContext(ctx, "use ctrl+c to interrupt")
		<-sig
		cancel()
	}()

	flushSentry, err := setup.SetupSentry(ctx, conf)
	if err != nil {
		slog.ErrorContext(ctx, "could not setup sentry", slog.Any("error", errors.WithStack(err)))
		os.Exit(1)
	}

	defer flushSentry()

	if err := run(ctx, conf); err != nil {
		slog.ErrorContext(ctx, "could not run server", slog.Any("error", errors.WithStack(err)))
		flushSentry()
		os.Exit(1)
	}
}

func run(ctx context.Context, conf *config.Config) error {
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		setup.CloseTaskStore(closeCtx, conf)
	}()

	server, err := setup.NewHTTPServerFromConfig(ctx, conf)
	if err != nil {
		return errors.Wrap(err, "could not setup http server")
	}

	runner, err := setup.NewSlackRunnerFromConfig(ctx, conf)
	if err != nil {
		return errors.Wrap(err, "could not setup slack runner")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errs := make(chan error, 2)

	go func() {
		slog.InfoContext(ctx, "starting server", slog.String("address", conf.HTTP.Address()))
		errs <- errors.Wrap(server.Run(ctx), "http server stopped")
	}()

	go func() {
		slog.InfoContext(ctx, "starting slack bot", slog.String("mode", conf.Slack.Mode))
		errs <- errors.Wrap(runner.Run(ctx), "slack runner stopped")
	}()

	// The first component to return stops the other one
	first := <-errs
	cancel()
	second := <-errs

	if first != nil {
		return first
	}

	return second
}
