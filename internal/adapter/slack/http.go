package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/bornholm/go-x/slogx"
	"github.com/pkg/errors"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
)

const maxBodySize = 1 << 20

// HTTPHandler receives Slack requests over HTTP, verifying their signature
// and acknowledging them before their processing.
type HTTPHandler struct {
	mux           *http.ServeMux
	signingSecret string
	dispatcher    *Dispatcher
}

// ServeHTTP implements http.Handler.
func (h *HTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *HTTPHandler) handleCommand(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.verify(w, r); !ok {
		return
	}

	cmd, err := slack.SlashCommandParse(r)
	if err != nil {
		slog.ErrorContext(r.Context(), "could not parse slash command", slogx.Error(errors.WithStack(err)))
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusOK)

	h.dispatcher.DispatchCommand(r.Context(), cmd)
}

func (h *HTTPHandler) handleInteraction(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.verify(w, r); !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	var callback slack.InteractionCallback
	if err := json.Unmarshal([]byte(r.PostForm.Get("payload")), &callback); err != nil {
		slog.ErrorContext(r.Context(), "could not parse interaction payload", slogx.Error(errors.WithStack(err)))
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusOK)

	h.dispatcher.DispatchInteraction(r.Context(), callback)
}

func (h *HTTPHandler) handleEvent(w http.ResponseWriter, r *http.Request) {
	body, ok := h.verify(w, r)
	if !ok {
		return
	}

	event, err := slackevents.ParseEvent(json.RawMessage(body), slackevents.OptionNoVerifyToken())
	if err != nil {
		slog.ErrorContext(r.Context(), "could not parse event", slogx.Error(errors.WithStack(err)))
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if event.Type == slackevents.URLVerification {
		var challenge slackevents.ChallengeResponse
		if err := json.Unmarshal(body, &challenge); err != nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)

		if _, err := w.Write([]byte(challenge.Challenge)); err != nil {
			slog.ErrorContext(r.Context(), "could not write challenge", slogx.Error(errors.WithStack(err)))
		}

		return
	}

	w.WriteHeader(http.StatusOK)

	h.dispatcher.DispatchEvent(r.Context(), event)
}

// verify checks the request signature and restores its body for later parsing.
func (h *HTTPHandler) verify(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return nil, false
	}

	verifier, err := slack.NewSecretsVerifier(r.Header, h.signingSecret)
	if err != nil {
		slog.WarnContext(r.Context(), "invalid slack request headers", slogx.Error(errors.WithStack(err)))
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return nil, false
	}

	if _, err := verifier.Write(body); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return nil, false
	}

	if err := verifier.Ensure(); err != nil {
		slog.WarnContext(r.Context(), "invalid slack request signature", slogx.Error(errors.WithStack(err)))
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return nil, false
	}

	r.Body = io.NopCloser(bytes.NewReader(body))

	return body, true
}

func NewHTTPHandler(signingSecret string, dispatcher *Dispatcher) *HTTPHandler {
	h := &HTTPHandler{
		mux:           http.NewServeMux(),
		signingSecret: signingSecret,
		dispatcher:    dispatcher,
	}

	h.mux.HandleFunc("POST /commands", h.handleCommand)
	h.mux.HandleFunc("POST /interactions", h.handleInteraction)
	h.mux.HandleFunc("POST /events", h.handleEvent)

	return h
}

var _ http.Handler = &HTTPHandler{}

// Run waits for the context to be canceled then for the pending handlers to return.
// Requests are served by the HTTP server the handler is mounted on.
func (h *HTTPHandler) Run(ctx context.Context) error {
	<-ctx.Done()
	h.dispatcher.Wait()
	return nil
}
