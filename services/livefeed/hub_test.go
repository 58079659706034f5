package livefeed

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/AdityaCodess/FinStock-AI/models"
	"github.com/gorilla/websocket"
)

type stubSource struct{}

func (stubSource) Intraday(symbol string) models.IntradayPrediction {
	return models.IntradayPrediction{
		LastUpdated:         "10:00:00",
		SimilarPatternFound: "pattern for " + symbol,
		Prediction:          "flat",
		Probability:         0.7,
	}
}

func newTestHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(stubSource{})
	hub.pushInterval = 20 * time.Millisecond
	server := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	t.Cleanup(func() {
		server.Close()
		hub.Shutdown()
	})
	return hub, server
}

func dial(t *testing.T, server *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func waitForCount(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.ClientCount() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("client count: got %d, want %d", hub.ClientCount(), want)
}

func TestHub_PushesIntradayUpdates(t *testing.T) {
	_, server := newTestHub(t)

	conn := dial(t, server, "?symbol=TCS.NS")
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var msg FeedMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if msg.Type != "intraday_update" {
		t.Errorf("type: got %q, want intraday_update", msg.Type)
	}
	if msg.Data.SimilarPatternFound != "pattern for TCS.NS" {
		t.Errorf("symbol not threaded through: %q", msg.Data.SimilarPatternFound)
	}
}

func TestHub_DefaultSymbol(t *testing.T) {
	_, server := newTestHub(t)

	conn := dial(t, server, "")
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg FeedMessage
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if err := json.Unmarshal(raw, &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if msg.Data.SimilarPatternFound != "pattern for "+DefaultSymbol {
		t.Errorf("default symbol not used: %q", msg.Data.SimilarPatternFound)
	}
}

func TestHub_ReleasesRegistrationOnDisconnect(t *testing.T) {
	hub, server := newTestHub(t)

	conn := dial(t, server, "?symbol=INFY.NS")
	waitForCount(t, hub, 1)

	conn.Close()
	waitForCount(t, hub, 0)
}

// Rapid connect/disconnect cycles must not crash the hub even when a
// disconnect lands on the same tick as a push.
func TestHub_DisconnectChurn(t *testing.T) {
	hub := NewHub(stubSource{})
	hub.pushInterval = time.Millisecond
	server := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	t.Cleanup(func() {
		server.Close()
		hub.Shutdown()
	})

	for i := 0; i < 30; i++ {
		conn := dial(t, server, "?symbol=SBIN.NS")
		conn.SetReadDeadline(time.Now().Add(time.Second))
		conn.ReadMessage()
		conn.Close()
	}

	waitForCount(t, hub, 0)
}

func TestHub_RejectsConnectionsAfterShutdown(t *testing.T) {
	hub := NewHub(stubSource{})
	server := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	t.Cleanup(func() {
		server.Close()
		hub.Shutdown()
	})

	hub.Shutdown()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return // handshake refused outright is fine too
	}
	defer conn.Close()

	// The handler must drop the connection instead of blocking on a
	// registration nobody will accept.
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("client count after shutdown: got %d, want 0", got)
	}
}

func TestHub_MultipleClients(t *testing.T) {
	hub, server := newTestHub(t)

	first := dial(t, server, "?symbol=A.NS")
	second := dial(t, server, "?symbol=B.NS")
	defer first.Close()
	defer second.Close()

	waitForCount(t, hub, 2)

	first.Close()
	waitForCount(t, hub, 1)
}
