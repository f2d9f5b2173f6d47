package gateway

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"frontline-lite/apps/server/internal/arena"
	"frontline-lite/apps/server/internal/audit"
	"frontline-lite/apps/server/internal/auth"
	"frontline-lite/apps/server/internal/progress"
	"frontline-lite/difficulty"
	"frontline-lite/difficulty/enemy"
	"frontline-lite/wire"

	"github.com/gorilla/websocket"
)

func newTestServer(t *testing.T) (*httptest.Server, auth.Service) {
	t.Helper()
	registry, err := enemy.DefaultRegistry()
	if err != nil {
		t.Fatalf("DefaultRegistry: %v", err)
	}
	a, err := arena.New(arena.Config{Seed: 7, FlushInterval: time.Hour}, registry, progress.NewMemoryStore(), audit.NewMemoryService(10))
	if err != nil {
		t.Fatalf("arena.New: %v", err)
	}
	authService := auth.NewManager(time.Hour)
	gw := New(a, authService)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", gw.HandleWebSocket)
	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		srv.Close()
		a.Shutdown()
	})
	return srv, authService
}

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readUntil(t *testing.T, conn *websocket.Conn, typ string) *wire.Envelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read waiting for %s: %v", typ, err)
		}
		var env *wire.Envelope
		if messageType == websocket.TextMessage {
			env, err = wire.UnmarshalJSON(data)
		} else {
			env, err = wire.Unmarshal(data)
		}
		if err != nil {
			t.Fatalf("decode frame: %v", err)
		}
		if env.Type == typ {
			return env
		}
	}
}

func frustratedPayload() []difficulty.EmotionalSample {
	samples := make([]difficulty.EmotionalSample, 10)
	for i := range samples {
		samples[i] = difficulty.EmotionalSample{TimestampMs: int64(i), State: difficulty.EmotionFrustrated, Intensity: 0.9}
	}
	return samples
}

func TestRejectsMissingToken(t *testing.T) {
	srv, _ := newTestServer(t)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatalf("expected handshake to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 response, got %+v", resp)
	}
}

func TestBinaryPerformanceFrameAdapts(t *testing.T) {
	srv, authService := newTestServer(t)
	_, token, err := authService.Guest()
	if err != nil {
		t.Fatalf("guest: %v", err)
	}
	conn := dial(t, srv, "token="+token)
	hello := readUntil(t, conn, wire.TypeHello)
	if hello.SessionID == "" {
		t.Fatalf("hello should carry the session id")
	}

	env, err := wire.New(wire.TypePerformance, 1, time.Now().UnixMilli(), difficulty.MetricsUpdate{
		EmotionalStates: frustratedPayload(),
	})
	if err != nil {
		t.Fatalf("wire.New: %v", err)
	}
	frame, err := wire.Marshal(env)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		t.Fatalf("write: %v", err)
	}

	var a difficulty.DifficultyAdaptation
	if err := wire.DecodePayload(readUntil(t, conn, wire.TypeAdaptation).Payload, &a); err != nil {
		t.Fatalf("decode adaptation: %v", err)
	}
	if a.Type != difficulty.AdaptationDecrease {
		t.Fatalf("expected decrease, got %s", a.Type)
	}
	var s difficulty.DifficultySettings
	if err := wire.DecodePayload(readUntil(t, conn, wire.TypeSettings).Payload, &s); err != nil {
		t.Fatalf("decode settings: %v", err)
	}
	if s.CurrentDifficulty != 0.8 {
		t.Fatalf("expected difficulty 0.8, got %v", s.CurrentDifficulty)
	}
}

func TestTextFramesGetTextReplies(t *testing.T) {
	srv, authService := newTestServer(t)
	_, token, err := authService.Guest()
	if err != nil {
		t.Fatalf("guest: %v", err)
	}
	conn := dial(t, srv, "format=json&token="+token)
	readUntil(t, conn, wire.TypeHello)

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"spawn","seq":1,"payload":{"tier":3}}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	messageType, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if messageType != websocket.TextMessage {
		t.Fatalf("expected a text frame, got %d", messageType)
	}
	env, err := wire.UnmarshalJSON(data)
	if err != nil || env.Type != wire.TypeSpawn {
		t.Fatalf("expected spawn frame, got %v err=%v", env, err)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"teleport","seq":2}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	readUntil(t, conn, wire.TypeError)
}
