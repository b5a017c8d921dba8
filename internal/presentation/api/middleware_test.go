package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/huddlehq/huddle/internal/infrastructure/logging"
)

type nopLogger struct{}

func (nopLogger) Init() {}

func (nopLogger) Debug(logging.Category, logging.SubCategory, string, map[logging.ExtraKey]any) {}
func (nopLogger) Debugf(string, ...any)                                                         {}

func (nopLogger) Info(logging.Category, logging.SubCategory, string, map[logging.ExtraKey]any) {}
func (nopLogger) Infof(string, ...any)                                                         {}

func (nopLogger) Warn(logging.Category, logging.SubCategory, string, map[logging.ExtraKey]any) {}
func (nopLogger) Warnf(string, ...any)                                                         {}

func (nopLogger) Error(logging.Category, logging.SubCategory, string, map[logging.ExtraKey]any) {}
func (nopLogger) Errorf(string, ...any)                                                         {}

func (nopLogger) Fatal(logging.Category, logging.SubCategory, string, map[logging.ExtraKey]any) {}
func (nopLogger) Fatalf(string, ...any)                                                         {}

type stubLimiter struct {
	allow bool
}

func (s stubLimiter) Allow(string) bool { return s.allow }

func (s stubLimiter) GetSourceKey(r *http.Request) string { return r.RemoteAddr }

func (s stubLimiter) Remaining(string) int { return 4 }

func (s stubLimiter) GetMaxBurst() int { return 20 }

func TestRateLimiterMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("rejection is a json 429 with a retry hint", func(t *testing.T) {
		app := &Application{logger: nopLogger{}, ratelimiter: stubLimiter{allow: false}}

		rec := httptest.NewRecorder()
		app.rateLimiterMiddleware(next).ServeHTTP(rec, httptest.NewRequest("GET", "/api/meetings", nil))

		if rec.Code != http.StatusTooManyRequests {
			t.Fatalf("expected 429, got %d", rec.Code)
		}
		if got := rec.Header().Get("Content-Type"); got != "application/json" {
			t.Errorf("expected a json body, got content type %q", got)
		}
		if got := rec.Header().Get("Retry-After"); got != "1" {
			t.Errorf("expected Retry-After 1, got %q", got)
		}
		if got := rec.Header().Get("X-RateLimit-Remaining"); got != "0" {
			t.Errorf("expected zero remaining quota, got %q", got)
		}

		var body struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		if body.Error != http.StatusText(http.StatusTooManyRequests) {
			t.Errorf("unexpected error field: %q", body.Error)
		}
	})

	t.Run("allowed requests carry quota headers", func(t *testing.T) {
		app := &Application{logger: nopLogger{}, ratelimiter: stubLimiter{allow: true}}

		rec := httptest.NewRecorder()
		app.rateLimiterMiddleware(next).ServeHTTP(rec, httptest.NewRequest("GET", "/api/meetings", nil))

		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected the request to pass through, got %d", rec.Code)
		}
		if got := rec.Header().Get("X-RateLimit-Limit"); got != "20" {
			t.Errorf("expected limit header 20, got %q", got)
		}
		if got := rec.Header().Get("X-RateLimit-Remaining"); got != "4" {
			t.Errorf("expected remaining header 4, got %q", got)
		}
	})
}
