// Package canvas holds a client's view transform and turns board events into
// 2D drawing calls.
//
// Geometry is always stored in canvas space. A Transform maps it onto the
// screen:
//
//	screen = canvas*Zoom + Pan
//	canvas = (screen - Pan) / Zoom
//
// Zoom is clamped to [MinZoom, MaxZoom] by every operation that changes it.
//
// Draw wraps each event in its own save/translate/scale/restore scope, so
// the current local view applies uniformly whether the event was produced
// locally or relayed from a peer. Renderer mirrors the browser's 2D context;
// Recorder implements it for tests and headless clients.
package canvas
