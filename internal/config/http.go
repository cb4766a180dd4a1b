package config

import (
	"net"
	"time"
)

type HTTP struct {
	Host      string    `env:"HOST,expand" envDefault:"0.0.0.0"`
	Port      string    `env:"PORT,expand" envDefault:"10000"`
	RateLimit RateLimit `envPrefix:"RATE_LIMIT_"`
	Metrics   Metrics   `envPrefix:"METRICS_"`
}

func (h HTTP) Address() string {
	return net.JoinHostPort(h.Host, h.Port)
}

type RateLimit struct {
	Enabled      bool          `env:"ENABLED" envDefault:"true"`
	TrustHeaders bool          `env:"TRUST_HEADERS" envDefault:"false"`
	Interval     time.Duration `env:"INTERVAL" envDefault:"100ms"`
	MaxBurst     int           `env:"MAX_BURST" envDefault:"20"`
	CacheSize    int           `env:"CACHE_SIZE" envDefault:"1024"`
	CacheTTL     time.Duration `env:"CACHE_TTL" envDefault:"10m"`
}

// Metrics credentials protect the /metrics endpoint when set.
type Metrics struct {
	Username string `env:"USERNAME,expand"`
	Password string `env:"PASSWORD,expand"`
}
