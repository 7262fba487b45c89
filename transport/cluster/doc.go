// Package cluster lets several whiteboard servers share one board through
// Redis pub/sub.
//
// Without the bridge each process relays frames only among its own
// connections. With it, inbound frames are published to a Redis channel and
// every instance (the origin included) feeds what it receives from that
// channel into its local hub. Redis becomes the single point that orders
// frames, so all clients on all instances see the same interleaving.
//
// Usage:
//
//	bridge, err := cluster.NewBridge(cfg.Redis, hub)
//	if err != nil {
//		return err
//	}
//	go bridge.Run(ctx)
//	handler := websocket.NewHandler(hub, bridge, cfg.WebSocket)
package cluster
