package config

import "time"

const (
	SlackModeSocket = "socket"
	SlackModeHTTP   = "http"
)

type Slack struct {
	BotToken      string         `env:"BOT_TOKEN,expand,notEmpty"`
	SigningSecret string         `env:"SIGNING_SECRET,expand,notEmpty"`
	AppToken      string         `env:"APP_TOKEN,expand,notEmpty"`
	Mode          string         `env:"MODE" envDefault:"socket"`
	Command       string         `env:"COMMAND" envDefault:"/todo"`
	Debug         bool           `env:"DEBUG" envDefault:"false"`
	CallTimeout   time.Duration  `env:"CALL_TIMEOUT" envDefault:"10s"`
	RateLimit     SlackRateLimit `envPrefix:"RATE_LIMIT_"`
	Retry         SlackRetry     `envPrefix:"RETRY_"`
}

// SlackRateLimit spaces out the outgoing Web API calls.
type SlackRateLimit struct {
	Interval time.Duration `env:"INTERVAL" envDefault:"100ms"`
	MaxBurst int           `env:"MAX_BURST" envDefault:"10"`
}

type SlackRetry struct {
	BaseDelay  time.Duration `env:"BASE_DELAY" envDefault:"1s"`
	MaxRetries int           `env:"MAX_RETRIES" envDefault:"3"`
}
