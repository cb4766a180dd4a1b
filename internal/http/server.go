package http

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/bornholm/go-x/slogx"
	"github.com/pkg/errors"
	sloghttp "github.com/samber/slog-http"
)

type Server struct {
	opts *Options
}

// Handler returns the root handler of the server with every mount registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	for prefix, handler := range s.opts.Mounts {
		mux.Handle(prefix, handler)
	}

	for prefix, handler := range s.opts.ProtectedMounts {
		if s.opts.BasicAuth != nil {
			handler = basicAuth(*s.opts.BasicAuth, handler)
		}

		mux.Handle(prefix, handler)
	}

	var handler http.Handler = mux

	handler = sloghttp.Recovery(handler)
	handler = sloghttp.NewWithConfig(slog.Default(), sloghttp.Config{
		DefaultLevel:     slog.LevelDebug,
		ClientErrorLevel: slog.LevelWarn,
		ServerErrorLevel: slog.LevelError,
		WithRequestID:    true,
	})(handler)

	return handler
}

// Run serves until the given context is canceled, then gracefully shuts down.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.opts.Address)
	if err != nil {
		return errors.Wrapf(err, "could not listen on '%s'", s.opts.Address)
	}

	return s.Serve(ctx, listener)
}

func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	server := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return context.WithoutCancel(ctx)
		},
	}

	errs := make(chan error, 1)

	go func() {
		defer close(errs)

		slog.InfoContext(ctx, "http server listening", slog.String("address", listener.Addr().String()))

		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- errors.WithStack(err)
		}
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.ShutdownTimeout)
	defer cancel()

	slog.InfoContext(ctx, "shutting down http server")

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(ctx, "could not shutdown http server gracefully", slogx.Error(err))
		return errors.WithStack(err)
	}

	return nil
}

func NewServer(funcs ...OptionFunc) *Server {
	opts := NewOptions(funcs...)
	return &Server{
		opts: opts,
	}
}
