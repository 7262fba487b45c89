// Package websocket provides the real-time relay for the shared whiteboard.
//
// The websocket package implements:
//   - Hub: process-wide fan-out of opaque text frames
//   - Handler: the per-connection bridge between a socket and the hub
//   - Client: the dialing side used by headless boards and the CLI
//
// Architecture:
//
// Every connection holds one Subscription on the Hub. Publish delivers a
// frame to all subscriptions, including the one belonging to the sender, so
// a client sees its own events echoed back. Each subscription has a bounded
// queue (100 frames by default). A subscriber that falls further behind is
// marked lagged and dropped; the publisher never waits.
//
// Connection Lifecycle:
//
// 1. Client connects to /ws and is subscribed
// 2. readPump publishes each inbound text frame verbatim
// 3. writePump writes each hub frame to the socket in order
// 4. A read error, write error, failed ping or lag stops both pumps
// 5. The subscription and socket are closed and the reason is logged
//
// There is no idle timeout; a silent but healthy connection stays open.
//
// Usage:
//
//	hub := websocket.NewHub(cfg.Relay.BufferSize)
//	handler := websocket.NewHandler(hub, hub, cfg.WebSocket)
//	router.HandleFunc("/ws", handler.ServeWS)
//	defer handler.Close()
//
// Concurrency:
//
// Publish, Subscribe and Close are safe to call from any goroutine.
// Publishes are serialized, so every subscriber observes the same
// interleaving of frames from concurrent senders.
package websocket
