package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wricardo/whiteboard/board/config"
)

func newTestServer(t *testing.T, hub *Hub) (*Handler, string) {
	t.Helper()

	handler := NewHandler(hub, hub, config.WebSocketConfig{
		WriteWait:      time.Second,
		PingInterval:   time.Minute,
		MaxMessageSize: 1024,
	})
	server := httptest.NewServer(http.HandlerFunc(handler.ServeWS))
	t.Cleanup(func() {
		handler.Close()
		server.Close()
	})

	return handler, "ws" + strings.TrimPrefix(server.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForCount(t *testing.T, hub *Hub, n int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.Count() == n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Expected %d subscribers, got %d", n, hub.Count())
}

func readFrame(t *testing.T, conn *websocket.Conn) string {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	msgType, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read WebSocket message: %v", err)
	}
	if msgType != websocket.TextMessage {
		t.Fatalf("Expected a text frame, got type %d", msgType)
	}
	return string(data)
}

func TestHandlerEcho(t *testing.T) {
	hub := NewHub(10)
	_, url := newTestServer(t, hub)

	conn := dial(t, url)
	waitForCount(t, hub, 1)

	frame := `{"type":"DrawLine","from":[0,0],"to":[1,1],"color":"#000","width":1}`
	if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	if got := readFrame(t, conn); got != frame {
		t.Errorf("Expected echo %s, got %s", frame, got)
	}
}

func TestHandlerRelaysOpaqueFrames(t *testing.T) {
	hub := NewHub(10)
	_, url := newTestServer(t, hub)

	sender := dial(t, url)
	receiver := dial(t, url)
	waitForCount(t, hub, 2)

	// the relay does not decode, so even garbage is forwarded
	sender.WriteMessage(websocket.TextMessage, []byte("not json at all"))

	if got := readFrame(t, receiver); got != "not json at all" {
		t.Errorf("Expected verbatim frame, got %q", got)
	}
}

func TestHandlerFanOut(t *testing.T) {
	hub := NewHub(10)
	_, url := newTestServer(t, hub)

	conns := []*websocket.Conn{dial(t, url), dial(t, url), dial(t, url)}
	waitForCount(t, hub, 3)

	frame := `{"type":"Zoom","factor":1.1}`
	hub.Publish([]byte(frame))

	for i, c := range conns {
		if got := readFrame(t, c); got != frame {
			t.Errorf("conn %d: expected %s, got %s", i, frame, got)
		}
	}
}

func TestHandlerDropsBinaryFrames(t *testing.T) {
	hub := NewHub(10)
	_, url := newTestServer(t, hub)

	conn := dial(t, url)
	waitForCount(t, hub, 1)

	conn.WriteMessage(websocket.BinaryMessage, []byte{0x01, 0x02})
	conn.WriteMessage(websocket.TextMessage, []byte("text"))

	if got := readFrame(t, conn); got != "text" {
		t.Errorf("Expected only the text frame, got %q", got)
	}
}

func TestHandlerTearsDownLaggedConnection(t *testing.T) {
	const bufferSize = 4
	hub := NewHub(bufferSize)
	handler := NewHandler(hub, hub, config.WebSocketConfig{
		WriteWait:      5 * time.Second,
		PingInterval:   time.Minute,
		MaxMessageSize: 1024,
	})
	server := httptest.NewServer(http.HandlerFunc(handler.ServeWS))
	t.Cleanup(func() {
		handler.Close()
		server.Close()
	})
	url := "ws" + strings.TrimPrefix(server.URL, "http")

	slow := dial(t, url)
	waitForCount(t, hub, 1)

	// frames bigger than the socket buffers park the writer while the peer
	// is not reading, so the queue behind it overflows
	big := []byte(strings.Repeat("x", 4<<20))
	published := 0
	for hub.Count() == 1 {
		if published == 16*bufferSize {
			t.Fatalf("Subscriber did not lag after %d frames", published)
		}
		hub.Publish(big)
		published++
	}
	if published <= bufferSize {
		t.Errorf("Expected more than %d frames before lagging, got %d", bufferSize, published)
	}

	// frames already handed to the socket arrive first, then the close
	slow.SetReadDeadline(time.Now().Add(5 * time.Second))
	var err error
	for received := 0; err == nil; received++ {
		if received > published {
			t.Fatalf("Received more frames than were published")
		}
		_, _, err = slow.ReadMessage()
	}
	if !websocket.IsCloseError(err, websocket.CloseTryAgainLater) {
		t.Errorf("Expected close with code %d, got %v", websocket.CloseTryAgainLater, err)
	}

	fast := dial(t, url)
	waitForCount(t, hub, 1)
	hub.Publish([]byte("still flowing"))
	if got := readFrame(t, fast); got != "still flowing" {
		t.Errorf("Other connections should be unaffected, got %q", got)
	}
}

func TestHandlerCloseDuringUpgrades(t *testing.T) {
	hub := NewHub(10)
	handler, url := newTestServer(t, hub)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
			if err != nil {
				if resp != nil && resp.StatusCode != http.StatusServiceUnavailable {
					t.Errorf("Expected status %d while closing, got %d", http.StatusServiceUnavailable, resp.StatusCode)
				}
				return
			}
			defer conn.Close()

			conn.SetReadDeadline(time.Now().Add(2 * time.Second))
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					if !websocket.IsCloseError(err, websocket.CloseGoingAway) {
						t.Errorf("Expected going-away close, got %v", err)
					}
					return
				}
			}
		}()
	}

	handler.Close()
	wg.Wait()

	if hub.Count() != 0 {
		t.Errorf("Expected no subscribers after Close, got %d", hub.Count())
	}

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("Expected upgrades to be refused after Close")
	}
	if resp == nil || resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("Expected status %d after Close, got %v", http.StatusServiceUnavailable, resp)
	}
}

func TestHandlerPeerCloseUnsubscribes(t *testing.T) {
	hub := NewHub(10)
	_, url := newTestServer(t, hub)

	conn := dial(t, url)
	waitForCount(t, hub, 1)

	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	conn.Close()

	waitForCount(t, hub, 0)
}

func TestHandlerReadLimit(t *testing.T) {
	hub := NewHub(10)
	_, url := newTestServer(t, hub)

	conn := dial(t, url)
	waitForCount(t, hub, 1)

	conn.WriteMessage(websocket.TextMessage, []byte(strings.Repeat("x", 4096)))
	waitForCount(t, hub, 0)
}

func TestHandlerClose(t *testing.T) {
	hub := NewHub(10)
	handler, url := newTestServer(t, hub)

	conn := dial(t, url)
	waitForCount(t, hub, 1)

	handler.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseGoingAway) {
		t.Errorf("Expected going-away close, got %v", err)
	}
	if hub.Count() != 0 {
		t.Errorf("Expected no subscribers after Close, got %d", hub.Count())
	}
}
