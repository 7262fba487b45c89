// Package client runs the browser-side board logic headlessly.
//
// A Board owns a session.Machine and a canvas.Renderer and drives both from a
// single goroutine. Inbound frames from the connection and UI input
// (pointer, wheel, text, tool and style changes) are queued and processed in
// order, so no locking is needed around the machine. Frames that fail to
// decode are logged at debug level and skipped; the next valid frame is still
// applied.
//
// Usage:
//
//	rec := &canvas.Recorder{}
//	var board *client.Board
//	conn := websocket.NewClient(url, func(s websocket.ConnState) { board.NotifyState(s) })
//	board = client.New(conn, rec, session.NewMachine(session.Freehand, session.DefaultStyle()))
//	if err := conn.Connect(ctx); err != nil {
//		return err
//	}
//	go board.Run(ctx)
package client
