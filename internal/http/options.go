package http

import (
	"net/http"
	"time"
)

type BasicAuth struct {
	Username string
	Password string
}

type Options struct {
	Address         string
	BasicAuth       *BasicAuth
	Mounts          map[string]http.Handler
	ProtectedMounts map[string]http.Handler
	ShutdownTimeout time.Duration
}

type OptionFunc func(opts *Options)

func NewOptions(funcs ...OptionFunc) *Options {
	opts := &Options{
		Address:         ":10000",
		Mounts:          map[string]http.Handler{},
		ProtectedMounts: map[string]http.Handler{},
		ShutdownTimeout: 10 * time.Second,
	}
	for _, fn := range funcs {
		fn(opts)
	}
	return opts
}

func WithMount(prefix string, handler http.Handler) OptionFunc {
	return func(opts *Options) {
		opts.Mounts[prefix] = handler
	}
}

// WithProtectedMount mounts a handler behind basic authentication when
// credentials are configured.
func WithProtectedMount(prefix string, handler http.Handler) OptionFunc {
	return func(opts *Options) {
		opts.ProtectedMounts[prefix] = handler
	}
}

func WithAddress(addr string) OptionFunc {
	return func(opts *Options) {
		opts.Address = addr
	}
}

func WithShutdownTimeout(timeout time.Duration) OptionFunc {
	return func(opts *Options) {
		opts.ShutdownTimeout = timeout
	}
}

func WithBasicAuth(username, password string) OptionFunc {
	return func(opts *Options) {
		if username == "" && password == "" {
			opts.BasicAuth = nil
			return
		}

		opts.BasicAuth = &BasicAuth{
			Username: username,
			Password: password,
		}
	}
}
