// Package api provides the HTTP surface of the shared whiteboard.
//
// The api package implements:
//   - WebSocket upgrade at /ws
//   - Health and relay statistics endpoints
//   - Event publishing over plain HTTP
//   - An optional MCP JSON-RPC endpoint
//   - Static file serving
//
// Endpoints:
//
//   - GET /ws - Upgrade to the real-time relay
//   - GET /api/health - {"status":"healthy"}
//   - GET /api/stats - {"subscribers": 2, "buffer_size": 100}
//   - POST /api/events - Publish one event (202 on success, 400 if malformed)
//   - POST /mcp - MCP JSON-RPC message (when mounted with WithMCP)
//   - GET / - Static files (when mounted with WithStaticDir)
//
// Request/Response Format:
//
// POST /api/events takes exactly the JSON that travels over the websocket:
//
//	{"type": "DrawLine", "from": [0, 0], "to": [100, 50], "color": "#2563eb", "width": 3}
//
// Every request passes through logging.HTTPMiddleware, which assigns an
// X-Request-ID and logs method, path, status and latency.
//
// Error Handling:
//
// Errors are returned as JSON with an appropriate HTTP status code:
//
//	{
//	  "error": "error message"
//	}
package api
