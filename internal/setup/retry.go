package setup

import (
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

const (
	ParamRetryMax       = "retryMax"
	ParamRetryBaseDelay = "retryBaseDelay"
)

type RetryParams struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// ParseRetryParams extracts the retry parameters from the given store URL.
// The parameters are removed from the URL query so that the remaining URL
// can be handed over to the underlying driver.
func ParseRetryParams(u *url.URL) (RetryParams, error) {
	params := RetryParams{
		MaxRetries: 3,
		BaseDelay:  200 * time.Millisecond,
	}

	query := u.Query()

	if rawValue := query.Get(ParamRetryMax); rawValue != "" {
		v, err := strconv.ParseInt(rawValue, 10, 32)
		if err != nil {
			return params, errors.Wrapf(err, "could not parse '%s' parameter", ParamRetryMax)
		}

		if v < 0 {
			return params, errors.Errorf("'%s' parameter must be positive", ParamRetryMax)
		}

		params.MaxRetries = int(v)
	}

	if rawValue := query.Get(ParamRetryBaseDelay); rawValue != "" {
		v, err := time.ParseDuration(rawValue)
		if err != nil {
			return params, errors.Wrapf(err, "could not parse '%s' parameter", ParamRetryBaseDelay)
		}

		params.BaseDelay = v
	}

	query.Del(ParamRetryMax)
	query.Del(ParamRetryBaseDelay)

	u.RawQuery = query.Encode()

	return params, nil
}
