// Package mcp provides a Model Context Protocol server for the shared whiteboard.
//
// The mcp package implements:
//   - MCP server for AI agent integration
//   - Drawing tools that publish board events
//   - Stdio and HTTP transport modes
//
// MCP Tools:
//
// The package exposes the following tools for AI agents:
//   - draw_line: Straight line between two points
//   - draw_rect: Rectangle outline spanned by two corners
//   - draw_circle: Circle outline from center and radius
//   - add_text: Text at a canvas position
//   - draw_freehand: Polyline sent as a series of freehand points
//   - pan_view: Broadcast a view pan to every board
//   - zoom_view: Broadcast a view zoom to every board
//   - board_status: Connected board count and buffer size
//
// Color and width default to the board's default style (#2563eb, 3) and
// text size defaults to 18.
//
// Transport Modes:
//
// The server supports two transport modes:
//   - Stdio: Direct stdio communication for local MCP clients
//   - HTTP: JSON-RPC messages posted to /mcp, see api.WithMCP
//
// Usage:
//
//	// HTTP mode
//	mcpServer := mcp.NewServer(service.NewBoardService(hub, hub))
//	apiServer := api.NewServer(boardService, handler.ServeWS, api.WithMCP(mcpServer))
//
//	// Stdio mode, publishing through a websocket to a running server
//	client := websocket.NewClient("ws://localhost:3000/ws", nil)
//	mcpServer := mcp.NewServer(service.NewRemoteBoardService(client))
//	mcpServer.ServeStdio()
package mcp
