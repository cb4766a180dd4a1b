package slack

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/bornholm/todo/internal/bot"
	"github.com/bornholm/todo/internal/bot/home"
	"github.com/bornholm/todo/internal/core/model"
)

const testSigningSecret = "8f742231b10e8888abcd99yyyzzz85a5"

func TestHTTPHandlerRejectsInvalidSignature(t *testing.T) {
	handler, _ := newTestHTTPHandler()

	body := "token=x&command=%2Ftodo&text=list"

	req := httptest.NewRequest(http.MethodPost, "/commands", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Slack-Request-Timestamp", strconv.FormatInt(time.Now().Unix(), 10))
	req.Header.Set("X-Slack-Signature", "v0=deadbeef")

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if e, g := http.StatusUnauthorized, res.Code; e != g {
		t.Errorf("res.Code: expected %d, got %d", e, g)
	}

	req = httptest.NewRequest(http.MethodPost, "/commands", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res = httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if e, g := http.StatusUnauthorized, res.Code; e != g {
		t.Errorf("res.Code: expected %d, got %d", e, g)
	}
}

func TestHTTPHandlerURLVerification(t *testing.T) {
	handler, _ := newTestHTTPHandler()

	body := `{"token":"x","challenge":"3eZbrw1aBm2rZgRNFdxV2595E9CY3gmdALWMmHkvFXO7tYXAYM8P","type":"url_verification"}`

	req := newSignedRequest(t, "/events", "application/json", body)

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if e, g := http.StatusOK, res.Code; e != g {
		t.Fatalf("res.Code: expected %d, got %d", e, g)
	}

	if e, g := "3eZbrw1aBm2rZgRNFdxV2595E9CY3gmdALWMmHkvFXO7tYXAYM8P", res.Body.String(); e != g {
		t.Errorf("res.Body: expected '%v', got '%v'", e, g)
	}
}

func TestHTTPHandlerCommand(t *testing.T) {
	handler, recorder := newTestHTTPHandler()

	form := url.Values{}
	form.Set("command", "/todo")
	form.Set("text", "add buy milk")
	form.Set("user_id", "U001")
	form.Set("user_name", "alice")
	form.Set("channel_id", "C001")
	form.Set("response_url", "https://hooks.slack.test/commands/1")

	req := newSignedRequest(t, "/commands", "application/x-www-form-urlencoded", form.Encode())

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if e, g := http.StatusOK, res.Code; e != g {
		t.Fatalf("res.Code: expected %d, got %d", e, g)
	}

	select {
	case cmd := <-recorder.commands:
		if e, g := "add buy milk", cmd.Text; e != g {
			t.Errorf("cmd.Text: expected '%v', got '%v'", e, g)
		}

		if e, g := model.UserID("U001"), cmd.UserID; e != g {
			t.Errorf("cmd.UserID: expected '%v', got '%v'", e, g)
		}

		if e, g := model.ChannelID("C001"), cmd.ChannelID; e != g {
			t.Errorf("cmd.ChannelID: expected '%v', got '%v'", e, g)
		}

		if e, g := "https://hooks.slack.test/commands/1", cmd.ResponseURL; e != g {
			t.Errorf("cmd.ResponseURL: expected '%v', got '%v'", e, g)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("command was not dispatched")
	}
}

func TestHTTPHandlerBlockAction(t *testing.T) {
	handler, recorder := newTestHTTPHandler()

	payload := `{
		"type": "block_actions",
		"trigger_id": "trigger-1",
		"user": { "id": "U001", "name": "alice" },
		"actions": [
			{ "action_id": "` + home.ActionCompleteTask + `", "block_id": "b1", "value": "task-1", "type": "button" }
		]
	}`

	form := url.Values{}
	form.Set("payload", payload)

	req := newSignedRequest(t, "/interactions", "application/x-www-form-urlencoded", form.Encode())

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if e, g := http.StatusOK, res.Code; e != g {
		t.Fatalf("res.Code: expected %d, got %d", e, g)
	}

	select {
	case action := <-recorder.actions:
		if e, g := home.ActionCompleteTask, action.ActionID; e != g {
			t.Errorf("action.ActionID: expected '%v', got '%v'", e, g)
		}

		if e, g := "task-1", action.Value; e != g {
			t.Errorf("action.Value: expected '%v', got '%v'", e, g)
		}

		if e, g := "trigger-1", action.TriggerID; e != g {
			t.Errorf("action.TriggerID: expected '%v', got '%v'", e, g)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("action was not dispatched")
	}
}

func TestHTTPHandlerAppHomeOpened(t *testing.T) {
	handler, recorder := newTestHTTPHandler()

	body := `{
		"token": "x",
		"team_id": "T001",
		"api_app_id": "A001",
		"type": "event_callback",
		"event": { "type": "app_home_opened", "user": "U001", "channel": "D001", "tab": "home" }
	}`

	req := newSignedRequest(t, "/events", "application/json", body)

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if e, g := http.StatusOK, res.Code; e != g {
		t.Fatalf("res.Code: expected %d, got %d", e, g)
	}

	select {
	case opened := <-recorder.homes:
		if e, g := model.UserID("U001"), opened.UserID; e != g {
			t.Errorf("opened.UserID: expected '%v', got '%v'", e, g)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("event was not dispatched")
	}
}

func newTestHTTPHandler() (*HTTPHandler, *recordingHandler) {
	recorder := &recordingHandler{
		commands:    make(chan bot.CommandRequest, 1),
		homes:       make(chan bot.HomeOpenedRequest, 1),
		actions:     make(chan bot.ActionRequest, 1),
		submissions: make(chan bot.AddTaskSubmission, 1),
	}

	return NewHTTPHandler(testSigningSecret, NewDispatcher(recorder)), recorder
}

func newSignedRequest(t *testing.T, path string, contentType string, body string) *http.Request {
	t.Helper()

	timestamp := strconv.FormatInt(time.Now().Unix(), 10)

	mac := hmac.New(sha256.New, []byte(testSigningSecret))
	if _, err := mac.Write([]byte("v0:" + timestamp + ":" + body)); err != nil {
		t.Fatalf("%+v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Slack-Request-Timestamp", timestamp)
	req.Header.Set("X-Slack-Signature", "v0="+hex.EncodeToString(mac.Sum(nil)))

	return req
}

type recordingHandler struct {
	commands    chan bot.CommandRequest
	homes       chan bot.HomeOpenedRequest
	actions     chan bot.ActionRequest
	submissions chan bot.AddTaskSubmission
}

// HandleAction implements Handler.
func (h *recordingHandler) HandleAction(ctx context.Context, req bot.ActionRequest) error {
	h.actions <- req
	return nil
}

// HandleAddTaskSubmission implements Handler.
func (h *recordingHandler) HandleAddTaskSubmission(ctx context.Context, req bot.AddTaskSubmission) error {
	h.submissions <- req
	return nil
}

// HandleCommand implements Handler.
func (h *recordingHandler) HandleCommand(ctx context.Context, req bot.CommandRequest) error {
	h.commands <- req
	return nil
}

// HandleHomeOpened implements Handler.
func (h *recordingHandler) HandleHomeOpened(ctx context.Context, req bot.HomeOpenedRequest) error {
	h.homes <- req
	return nil
}

var _ Handler = &recordingHandler{}
