package setup

import (
	"context"
	"log/slog"
	"time"

	"github.com/bornholm/todo/internal/build"
	"github.com/bornholm/todo/internal/config"
	"github.com/getsentry/sentry-go"
	"github.com/pkg/errors"
)

// SetupSentry initializes error reporting when a DSN is configured.
// The returned function flushes pending events.
func SetupSentry(ctx context.Context, conf *config.Config) (func(), error) {
	if conf.Sentry.DSN == "" {
		slog.DebugContext(ctx, "sentry reporting disabled")
		return func() {}, nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:         conf.Sentry.DSN,
		Environment: conf.Sentry.Environment,
		Release:     build.ShortVersion,
	})
	if err != nil {
		return nil, errors.Wrap(err, "could not initialize sentry")
	}

	return func() {
		sentry.Flush(2 * time.Second)
	}, nil
}
