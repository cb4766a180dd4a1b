package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/bornholm/go-x/slogx"
	"github.com/pkg/errors"
)

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"

	rootMessage = "Slack ToDo App is running!"
)

// Pinger checks the availability of a dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type Handler struct {
	mux     *http.ServeMux
	pinger  Pinger
	timeout time.Duration
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write([]byte(rootMessage)); err != nil {
		slog.ErrorContext(r.Context(), "could not write response", slogx.Error(errors.WithStack(err)))
	}
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	res := Response{Status: StatusHealthy}
	status := http.StatusOK

	if h.pinger != nil {
		if err := h.pinger.Ping(ctx); err != nil {
			slog.ErrorContext(ctx, "health check failed", slogx.Error(err))

			res = Response{Status: StatusUnhealthy, Error: err.Error()}
			status = http.StatusServiceUnavailable
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(res); err != nil {
		slog.ErrorContext(ctx, "could not encode response", slogx.Error(errors.WithStack(err)))
	}
}

func NewHandler(pinger Pinger) *Handler {
	h := &Handler{
		mux:     http.NewServeMux(),
		pinger:  pinger,
		timeout: 5 * time.Second,
	}

	h.mux.HandleFunc("GET /{$}", h.handleRoot)
	h.mux.HandleFunc("GET /health", h.handleHealth)

	return h
}

var _ http.Handler = &Handler{}
