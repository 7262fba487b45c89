// Package session implements the client-side tool session state machine.
//
// A Machine owns one client's view transform and at most one active tool
// session. Sessions move through these states:
//
//	Idle ──down(freehand)──▶ FreehandDragging ──up──▶ Idle
//	Idle ──down(line|rect|circle)──▶ ShapeDragging ──up──▶ Idle (emits shape)
//	Idle ──down(pan)──▶ Panning ──up──▶ Idle
//	Idle ──down(text)──▶ TextPrompting ──commit|cancel──▶ Idle
//
// Every pointer-down starts a fresh session. Switching tools mid-gesture
// abandons the session without emitting anything.
//
// Emission rules:
//   - Freehand emits FreehandPoint{dragging: true} on every move and returns
//     the matching segment for immediate local drawing.
//   - Line, Rect and Circle emit once, on release. Circle uses the anchor as
//     center and the distance to the release point as radius.
//   - Pan and wheel zoom change only the local transform and emit nothing.
//   - Text emits on CommitText with a non-empty string.
//
// Relayed Pan and Zoom events passed to Apply are treated as relative
// adjustments of the local view, never as absolute state.
//
// Usage:
//
//	m := session.NewMachine(session.Rect, session.DefaultStyle())
//	m.PointerDown(session.Rect, canvas.Point{X: 10, Y: 10})
//	out := m.PointerUp(session.Rect, canvas.Point{X: 50, Y: 40})
//	// out.Event is a protocol.Rect ready to be encoded and sent
//
// A Machine is not safe for concurrent use; board/client runs it on a
// single goroutine.
package session
