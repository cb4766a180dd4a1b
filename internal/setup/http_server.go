package setup

import (
	"context"
	stdhttp "net/http"

	"github.com/bornholm/todo/internal/config"
	"github.com/bornholm/todo/internal/http"
	"github.com/bornholm/todo/internal/http/handler/health"
	"github.com/bornholm/todo/internal/http/handler/metrics"
	"github.com/bornholm/todo/internal/http/middleware/ratelimit"
	"github.com/pkg/errors"
)

func NewHTTPServerFromConfig(ctx context.Context, conf *config.Config) (*http.Server, error) {
	store, err := getTaskStoreFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.Wrap(err, "could not create task store from config")
	}

	var root stdhttp.Handler = health.NewHandler(store)

	if conf.HTTP.RateLimit.Enabled {
		rateLimit := conf.HTTP.RateLimit
		root = ratelimit.Middleware(
			ratelimit.WithTrustHeaders(rateLimit.TrustHeaders),
			ratelimit.WithLimit(rateLimit.Interval, rateLimit.MaxBurst),
			ratelimit.WithCache(rateLimit.CacheSize, rateLimit.CacheTTL),
		)(root)
	}

	options := []http.OptionFunc{
		http.WithAddress(conf.HTTP.Address()),
		http.WithMount("/", root),
		http.WithProtectedMount("/metrics", metrics.NewHandler()),
		http.WithBasicAuth(conf.HTTP.Metrics.Username, conf.HTTP.Metrics.Password),
	}

	if conf.Slack.Mode == config.SlackModeHTTP {
		slack, err := getSlackHTTPHandler(ctx, conf)
		if err != nil {
			return nil, errors.Wrap(err, "could not create slack http handler from config")
		}

		options = append(options, http.WithMount("/slack/", stdhttp.StripPrefix("/slack", slack)))
	}

	server := http.NewServer(options...)

	return server, nil
}
