package cluster

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wricardo/whiteboard/board/config"
	"github.com/wricardo/whiteboard/transport/websocket"
)

func TestPublishFallsBackToLocal(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	hub := websocket.NewHub(10)
	sub := hub.Subscribe()
	defer sub.Close()

	bridge := NewBridgeWithClient(client, "", hub)
	bridge.Publish([]byte("offline"))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	got, err := sub.Recv(ctx)
	if err != nil {
		t.Fatalf("Expected local delivery, got %v", err)
	}
	if string(got) != "offline" {
		t.Errorf("Expected offline, got %q", got)
	}
}

func TestNewBridgeUnreachable(t *testing.T) {
	_, err := NewBridge(config.RedisConfig{Address: "127.0.0.1:1"}, websocket.NewHub(1))
	if err == nil {
		t.Error("Expected connection error")
	}
}

func TestBridgeRoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	channel := "whiteboard:test:" + time.Now().Format("150405.000000")

	hubA := websocket.NewHub(10)
	hubB := websocket.NewHub(10)
	subA := hubA.Subscribe()
	subB := hubB.Subscribe()

	bridgeA, err := NewBridge(config.RedisConfig{Address: addr, Channel: channel}, hubA)
	if err != nil {
		t.Fatalf("NewBridge failed: %v", err)
	}
	defer bridgeA.Close()
	bridgeB, err := NewBridge(config.RedisConfig{Address: addr, Channel: channel}, hubB)
	if err != nil {
		t.Fatalf("NewBridge failed: %v", err)
	}
	defer bridgeB.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	go bridgeA.Run(ctx)
	go bridgeB.Run(ctx)

	// wait until both instances are subscribed
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		n, _ := bridgeA.client.PubSubNumSub(ctx, channel).Result()
		if n[channel] >= 2 {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}

	frame := `{"type":"Pan","dx":3,"dy":4}`
	bridgeA.Publish([]byte(frame))

	for name, sub := range map[string]*websocket.Subscription{"origin": subA, "peer": subB} {
		got, err := sub.Recv(ctx)
		if err != nil {
			t.Fatalf("%s: Recv failed: %v", name, err)
		}
		if string(got) != frame {
			t.Errorf("%s: expected %s, got %s", name, frame, got)
		}
	}

	cancel()
	select {
	case <-bridgeA.Done():
	case <-time.After(2 * time.Second):
		t.Error("Run did not exit after cancel")
	}
}
