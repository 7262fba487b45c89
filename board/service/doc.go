// Package service provides the publishing layer for the shared whiteboard.
//
// BoardService sits between the non-websocket surfaces (the REST API and the
// MCP tools) and the relay. It encodes events with the protocol package, or
// validates raw frames, before handing them to a Publisher. Browser clients
// do not go through this layer; their frames are relayed verbatim.
//
// Two implementations exist:
//   - NewBoardService publishes into the hub (or cluster bridge) of this process
//   - NewRemoteBoardService sends over a websocket connection to another server
//
// Usage:
//
//	svc := service.NewBoardService(hub, hub)
//	err := svc.Publish(ctx, protocol.Circle{Center: protocol.Point{X: 50, Y: 50}, Radius: 20, Color: "#dc2626", Width: 3})
package service
