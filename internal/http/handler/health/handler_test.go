package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
)

type pingerFunc func(ctx context.Context) error

func (fn pingerFunc) Ping(ctx context.Context) error {
	return fn(ctx)
}

func TestHandler(t *testing.T) {
	type testCase struct {
		Name                string
		Path                string
		Pinger              Pinger
		ExpectedStatusCode  int
		ExpectedBody        string
		ExpectedHealth      *Response
		ExpectedContentType string
	}

	healthy := pingerFunc(func(ctx context.Context) error { return nil })
	unhealthy := pingerFunc(func(ctx context.Context) error { return errors.New("server selection timeout") })

	testCases := []testCase{
		{
			Name:                "Root",
			Path:                "/",
			Pinger:              healthy,
			ExpectedStatusCode:  http.StatusOK,
			ExpectedBody:        "Slack ToDo App is running!",
			ExpectedContentType: "text/plain; charset=utf-8",
		},
		{
			Name:                "Healthy",
			Path:                "/health",
			Pinger:              healthy,
			ExpectedStatusCode:  http.StatusOK,
			ExpectedHealth:      &Response{Status: StatusHealthy},
			ExpectedContentType: "application/json",
		},
		{
			Name:                "Unhealthy",
			Path:                "/health",
			Pinger:              unhealthy,
			ExpectedStatusCode:  http.StatusServiceUnavailable,
			ExpectedHealth:      &Response{Status: StatusUnhealthy, Error: "server selection timeout"},
			ExpectedContentType: "application/json",
		},
		{
			Name:               "NotFound",
			Path:               "/unknown",
			Pinger:             healthy,
			ExpectedStatusCode: http.StatusNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			handler := NewHandler(tc.Pinger)

			req := httptest.NewRequest(http.MethodGet, tc.Path, nil)
			res := httptest.NewRecorder()

			handler.ServeHTTP(res, req)

			if e, g := tc.ExpectedStatusCode, res.Code; e != g {
				t.Errorf("res.Code: expected %d, got %d", e, g)
			}

			if tc.ExpectedContentType != "" {
				if e, g := tc.ExpectedContentType, res.Header().Get("Content-Type"); e != g {
					t.Errorf("Content-Type: expected '%v', got '%v'", e, g)
				}
			}

			if tc.ExpectedBody != "" {
				if e, g := tc.ExpectedBody, res.Body.String(); e != g {
					t.Errorf("res.Body: expected '%v', got '%v'", e, g)
				}
			}

			if tc.ExpectedHealth != nil {
				var health Response
				if err := json.Unmarshal(res.Body.Bytes(), &health); err != nil {
					t.Fatalf("%+v", errors.WithStack(err))
				}

				if e, g := *tc.ExpectedHealth, health; e != g {
					t.Errorf("health: expected '%v', got '%v'", e, g)
				}
			}
		})
	}
}
