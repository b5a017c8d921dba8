package rooms

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/huddlehq/huddle/internal/infrastructure/logging"
	"github.com/huddlehq/huddle/internal/infrastructure/metrics"
	"github.com/huddlehq/huddle/internal/infrastructure/ws"
	"github.com/prometheus/client_golang/prometheus"
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

type outEnvelope struct {
	Type   string          `json:"type"`
	RoomID string          `json:"roomId"`
	Data   json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T) (*httptest.Server, *ws.Coordinator) {
	t.Helper()

	coordinator := ws.NewCoordinator(ws.Options{
		RoomCapacity: 5,
		RoomLifetime: time.Hour,
	}, nopLogger{}, metrics.New(prometheus.NewRegistry()), nil)

	h := NewHandler(coordinator, nopLogger{})

	r := chi.NewRouter()
	r.Get("/ws", h.ServeWS)
	r.Get("/api/rooms/{roomId}/participants", h.GetParticipantsHandler)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return srv, coordinator
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) outEnvelope {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var env outEnvelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	return env
}

func sendEvent(t *testing.T, conn *websocket.Conn, event map[string]any) {
	t.Helper()

	if err := conn.WriteJSON(event); err != nil {
		t.Fatalf("write failed: %v", err)
	}
}

func TestServeWS(t *testing.T) {
	t.Run("join is acknowledged over the socket", func(t *testing.T) {
		srv, _ := newTestServer(t)
		conn := dial(t, srv)

		sendEvent(t, conn, map[string]any{
			"type":        "join",
			"roomId":      "r1",
			"displayName": "Alice",
		})

		env := readEnvelope(t, conn)
		if env.Type != "joined" || env.RoomID != "r1" {
			t.Fatalf("expected joined for r1, got %+v", env)
		}

		var ack struct {
			Participants []struct {
				DisplayName string `json:"displayName"`
			} `json:"participants"`
		}
		if err := json.Unmarshal(env.Data, &ack); err != nil {
			t.Fatalf("failed to decode ack: %v", err)
		}
		if len(ack.Participants) != 1 || ack.Participants[0].DisplayName != "Alice" {
			t.Errorf("unexpected ack participants: %+v", ack.Participants)
		}
	})

	t.Run("second joiner is announced to the first", func(t *testing.T) {
		srv, _ := newTestServer(t)

		alice := dial(t, srv)
		sendEvent(t, alice, map[string]any{"type": "join", "roomId": "r1", "displayName": "Alice"})
		readEnvelope(t, alice) // joined
		readEnvelope(t, alice) // update-participants

		bob := dial(t, srv)
		sendEvent(t, bob, map[string]any{"type": "join", "roomId": "r1", "displayName": "Bob"})

		env := readEnvelope(t, alice)
		if env.Type != "user-joined" {
			t.Fatalf("expected user-joined, got %s", env.Type)
		}

		env = readEnvelope(t, alice)
		if env.Type != "update-participants" {
			t.Fatalf("expected update-participants, got %s", env.Type)
		}
	})

	t.Run("chat messages echo back to the sender", func(t *testing.T) {
		srv, _ := newTestServer(t)

		conn := dial(t, srv)
		sendEvent(t, conn, map[string]any{"type": "join", "roomId": "r1", "displayName": "Alice"})
		readEnvelope(t, conn) // joined
		readEnvelope(t, conn) // update-participants

		sendEvent(t, conn, map[string]any{
			"type":        "message",
			"roomId":      "r1",
			"displayName": "Alice",
			"content":     "hello",
		})

		env := readEnvelope(t, conn)
		if env.Type != "message" {
			t.Fatalf("expected message, got %s", env.Type)
		}

		var chat struct {
			Content string `json:"content"`
		}
		if err := json.Unmarshal(env.Data, &chat); err != nil {
			t.Fatalf("failed to decode chat payload: %v", err)
		}
		if chat.Content != "hello" {
			t.Errorf("expected hello, got %q", chat.Content)
		}
	})

	t.Run("disconnect cleans up membership", func(t *testing.T) {
		srv, coordinator := newTestServer(t)

		conn := dial(t, srv)
		sendEvent(t, conn, map[string]any{"type": "join", "roomId": "r1", "displayName": "Alice"})
		readEnvelope(t, conn)
		conn.Close()

		deadline := time.Now().Add(2 * time.Second)
		for coordinator.Registry().Len() != 0 {
			if time.Now().After(deadline) {
				t.Fatal("room was not torn down after disconnect")
			}
			time.Sleep(10 * time.Millisecond)
		}
	})
}

func TestGetParticipantsHandler(t *testing.T) {
	t.Run("unknown room is a 404", func(t *testing.T) {
		srv, _ := newTestServer(t)

		resp, err := http.Get(srv.URL + "/api/rooms/ghost/participants")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", resp.StatusCode)
		}
	})

	t.Run("returns the live member list", func(t *testing.T) {
		srv, _ := newTestServer(t)

		conn := dial(t, srv)
		sendEvent(t, conn, map[string]any{"type": "join", "roomId": "r1", "displayName": "Alice"})
		readEnvelope(t, conn)

		resp, err := http.Get(srv.URL + "/api/rooms/r1/participants")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}

		var body struct {
			RoomID       string    `json:"roomId"`
			ExpiresAt    time.Time `json:"expiresAt"`
			Participants []struct {
				DisplayName string `json:"displayName"`
			} `json:"participants"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if body.RoomID != "r1" || len(body.Participants) != 1 {
			t.Fatalf("unexpected body: %+v", body)
		}
		if body.Participants[0].DisplayName != "Alice" {
			t.Errorf("expected Alice, got %+v", body.Participants[0])
		}
		if !body.ExpiresAt.After(time.Now()) {
			t.Errorf("expected a future expiry deadline, got %s", body.ExpiresAt)
		}
	})
}
