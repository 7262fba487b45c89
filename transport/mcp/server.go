package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/whiteboard/board/protocol"
	"github.com/wricardo/whiteboard/board/service"
	"github.com/wricardo/whiteboard/board/session"
	"github.com/wricardo/whiteboard/logging"
)

const (
	ServerName    = "Shared Whiteboard"
	ServerVersion = "1.0.0"

	// MaxFreehandPoints caps one draw_freehand call. Points are published back
	// to back, so a stroke has to fit in a board's relay queue with room to
	// spare or boards that are keeping up get dropped as lagged.
	MaxFreehandPoints = 50
)

// Server exposes drawing tools to MCP agents. Every tool publishes one or
// more events through the board service, so agents draw on the same board
// as browser and headless clients.
type Server struct {
	service   service.BoardService
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server publishing through svc
func NewServer(svc service.BoardService) *Server {
	s := &Server{service: svc}
	s.initMCPServer()
	return s
}

// initMCPServer initializes the MCP server with all tools
func (s *Server) initMCPServer() {
	s.mcpServer = server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(true),
		server.WithInstructions(`Shared Whiteboard - MCP Interface

Everything drawn here is broadcast to every connected board in real time.
Coordinates are canvas coordinates: x grows to the right, y grows downward.
Colors are CSS colors such as "#2563eb" or "red".

AVAILABLE TOOLS:
- draw_line: Straight line between two points
- draw_rect: Rectangle outline spanned by two corners
- draw_circle: Circle outline from a center and radius
- add_text: Text at a position
- draw_freehand: A freehand stroke given as a list of points
- pan_view: Shift every viewer's view by a screen-space delta
- zoom_view: Multiply every viewer's zoom (clamped to 0.2..5)
- board_status: Number of connected boards

NOTE: Shapes are not stored. Boards that connect later will not see them.`),
	)

	s.registerTools()
}

func numberProp(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "number",
		"description": description,
	}
}

func stringProp(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	// Shapes
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "draw_line",
		Description: "Draw a straight line between two canvas points",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"x1":    numberProp("Start x"),
				"y1":    numberProp("Start y"),
				"x2":    numberProp("End x"),
				"y2":    numberProp("End y"),
				"color": stringProp("Stroke color (default #2563eb)"),
				"width": numberProp("Stroke width (default 3)"),
			},
			Required: []string{"x1", "y1", "x2", "y2"},
		},
	}, s.handleDrawLine)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "draw_rect",
		Description: "Draw a rectangle outline spanned by two opposite corners",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"x1":    numberProp("First corner x"),
				"y1":    numberProp("First corner y"),
				"x2":    numberProp("Opposite corner x"),
				"y2":    numberProp("Opposite corner y"),
				"color": stringProp("Stroke color (default #2563eb)"),
				"width": numberProp("Stroke width (default 3)"),
			},
			Required: []string{"x1", "y1", "x2", "y2"},
		},
	}, s.handleDrawRect)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "draw_circle",
		Description: "Draw a circle outline",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"cx":     numberProp("Center x"),
				"cy":     numberProp("Center y"),
				"radius": numberProp("Radius in canvas units"),
				"color":  stringProp("Stroke color (default #2563eb)"),
				"width":  numberProp("Stroke width (default 3)"),
			},
			Required: []string{"cx", "cy", "radius"},
		},
	}, s.handleDrawCircle)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "add_text",
		Description: "Place text with its baseline starting at a canvas point",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"x":     numberProp("Text x"),
				"y":     numberProp("Text baseline y"),
				"text":  stringProp("Text to place"),
				"color": stringProp("Fill color (default #2563eb)"),
				"size":  numberProp("Font size in pixels (default 18)"),
			},
			Required: []string{"x", "y", "text"},
		},
	}, s.handleAddText)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "draw_freehand",
		Description: fmt.Sprintf("Draw a freehand stroke of at most %d points. Each point is rendered as a small dot, so pass points close together for a continuous stroke; split longer strokes into several calls.", MaxFreehandPoints),
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"points": map[string]interface{}{
					"type":        "array",
					"description": "Points as [x, y] pairs",
					"items": map[string]interface{}{
						"type":     "array",
						"items":    map[string]interface{}{"type": "number"},
						"minItems": 2,
						"maxItems": 2,
					},
					"maxItems": MaxFreehandPoints,
				},
			},
			Required: []string{"points"},
		},
	}, s.handleDrawFreehand)

	// View
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "pan_view",
		Description: "Shift every connected board's view by a screen-space delta",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"dx": numberProp("Horizontal shift in screen pixels"),
				"dy": numberProp("Vertical shift in screen pixels"),
			},
			Required: []string{"dx", "dy"},
		},
	}, s.handlePanView)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "zoom_view",
		Description: "Multiply every connected board's zoom by a factor; the result is clamped to 0.2..5",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"factor": numberProp("Zoom multiplier, greater than 0"),
			},
			Required: []string{"factor"},
		},
	}, s.handleZoomView)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "board_status",
		Description: "Report how many boards are connected to the relay",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleBoardStatus)
}

// GetMCPServer returns the underlying MCP server for serving
func (s *Server) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}

// HandleMessage answers one JSON-RPC message, for the HTTP endpoint
func (s *Server) HandleMessage(ctx context.Context, message json.RawMessage) mcp.JSONRPCMessage {
	return s.mcpServer.HandleMessage(ctx, message)
}

// ServeStdio serves MCP over stdin/stdout until stdin closes
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// Argument helpers

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	return args
}

func requireNumber(args map[string]interface{}, key string) (float64, error) {
	raw, ok := args[key]
	if !ok {
		return 0, fmt.Errorf("missing required argument %q", key)
	}
	n, ok := raw.(float64)
	if !ok || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, fmt.Errorf("argument %q must be a number", key)
	}
	return n, nil
}

func optionalNumber(args map[string]interface{}, key string, def float64) (float64, error) {
	if _, ok := args[key]; !ok {
		return def, nil
	}
	return requireNumber(args, key)
}

func optionalString(args map[string]interface{}, key, def string) string {
	if v, ok := args[key].(string); ok && strings.TrimSpace(v) != "" {
		return v
	}
	return def
}

func requirePoint(args map[string]interface{}, xKey, yKey string) (protocol.Point, error) {
	x, err := requireNumber(args, xKey)
	if err != nil {
		return protocol.Point{}, err
	}
	y, err := requireNumber(args, yKey)
	if err != nil {
		return protocol.Point{}, err
	}
	return protocol.Point{X: x, Y: y}, nil
}

// stroke reads color and width, falling back to the default style
func stroke(args map[string]interface{}) (string, float64, error) {
	def := session.DefaultStyle()
	width, err := optionalNumber(args, "width", def.Width)
	if err != nil {
		return "", 0, err
	}
	if width <= 0 {
		return "", 0, errors.New("width must be greater than 0")
	}
	return optionalString(args, "color", def.Color), width, nil
}

func (s *Server) publish(ctx context.Context, e protocol.Event) error {
	if err := s.service.Publish(ctx, e); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str(logging.FieldEventType, string(e.Kind())).Msg("mcp publish failed")
		return err
	}
	return nil
}

// Tool handlers

func (s *Server) handleDrawLine(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	from, err := requirePoint(args, "x1", "y1")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	to, err := requirePoint(args, "x2", "y2")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	color, width, err := stroke(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.publish(ctx, protocol.Line{From: from, To: to, Color: color, Width: width}); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Drew line from %s to %s (%s, width %g)",
		formatPoint(from), formatPoint(to), color, width)), nil
}

func (s *Server) handleDrawRect(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	from, err := requirePoint(args, "x1", "y1")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	to, err := requirePoint(args, "x2", "y2")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	color, width, err := stroke(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.publish(ctx, protocol.Rect{From: from, To: to, Color: color, Width: width}); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Drew rectangle from %s to %s (%s, width %g)",
		formatPoint(from), formatPoint(to), color, width)), nil
}

func (s *Server) handleDrawCircle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	center, err := requirePoint(args, "cx", "cy")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	radius, err := requireNumber(args, "radius")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if radius < 0 {
		return mcp.NewToolResultError("radius must not be negative"), nil
	}
	color, width, err := stroke(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.publish(ctx, protocol.Circle{Center: center, Radius: radius, Color: color, Width: width}); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Drew circle at %s with radius %g (%s, width %g)",
		formatPoint(center), radius, color, width)), nil
}

func (s *Server) handleAddText(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	pos, err := requirePoint(args, "x", "y")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text, _ := args["text"].(string)
	if text == "" {
		return mcp.NewToolResultError("text must not be empty"), nil
	}

	def := session.DefaultStyle()
	size, err := optionalNumber(args, "size", def.TextSize)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if size <= 0 {
		return mcp.NewToolResultError("size must be greater than 0"), nil
	}
	color := optionalString(args, "color", def.Color)

	if err := s.publish(ctx, protocol.Text{Pos: pos, Text: text, Color: color, Size: size}); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Added text %q at %s (%s, %gpx)", text, formatPoint(pos), color, size)), nil
}

func (s *Server) handleDrawFreehand(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	rawPoints, ok := args["points"].([]interface{})
	if !ok || len(rawPoints) == 0 {
		return mcp.NewToolResultError("points must be a non-empty array of [x, y] pairs"), nil
	}
	if limit := s.freehandLimit(ctx); len(rawPoints) > limit {
		return mcp.NewToolResultError(fmt.Sprintf(
			"stroke has %d points but at most %d are allowed per call; split it into several draw_freehand calls",
			len(rawPoints), limit)), nil
	}

	points := make([]protocol.Point, 0, len(rawPoints))
	for i, raw := range rawPoints {
		pair, ok := raw.([]interface{})
		if !ok || len(pair) != 2 {
			return mcp.NewToolResultError(fmt.Sprintf("point %d must be an [x, y] pair", i)), nil
		}
		x, okX := pair[0].(float64)
		y, okY := pair[1].(float64)
		if !okX || !okY {
			return mcp.NewToolResultError(fmt.Sprintf("point %d must contain numbers", i)), nil
		}
		points = append(points, protocol.Point{X: x, Y: y})
	}

	for i, p := range points {
		e := protocol.FreehandPoint{X: p.X, Y: p.Y, Dragging: i > 0}
		if err := s.publish(ctx, e); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("published %d of %d points: %v", i, len(points), err)), nil
		}
	}
	return mcp.NewToolResultText(fmt.Sprintf("Drew freehand stroke with %d points from %s to %s",
		len(points), formatPoint(points[0]), formatPoint(points[len(points)-1]))), nil
}

// freehandLimit is MaxFreehandPoints, lowered to half the local relay
// buffer when that is smaller
func (s *Server) freehandLimit(ctx context.Context) int {
	limit := MaxFreehandPoints
	if stats, err := s.service.Stats(ctx); err == nil && stats.BufferSize > 0 {
		limit = min(limit, max(1, stats.BufferSize/2))
	}
	return limit
}

func (s *Server) handlePanView(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	dx, err := requireNumber(args, "dx")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	dy, err := requireNumber(args, "dy")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.publish(ctx, protocol.Pan{DX: dx, DY: dy}); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Panned all views by (%g, %g)", dx, dy)), nil
}

func (s *Server) handleZoomView(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	factor, err := requireNumber(args, "factor")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if factor <= 0 {
		return mcp.NewToolResultError("factor must be greater than 0"), nil
	}

	if err := s.publish(ctx, protocol.Zoom{Factor: factor}); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Zoomed all views by x%g", factor)), nil
}

func (s *Server) handleBoardStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := s.service.Stats(ctx)
	if err != nil {
		if errors.Is(err, service.ErrStatsUnavailable) {
			return mcp.NewToolResultText("Connected through a remote relay; board status is not available here."), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Connected boards: %d\n", stats.Subscribers)
	result += fmt.Sprintf("Per-board buffer: %d events\n", stats.BufferSize)
	return mcp.NewToolResultText(result), nil
}

func formatPoint(p protocol.Point) string {
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}
