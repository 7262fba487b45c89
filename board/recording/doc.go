// Package recording reads frame recordings written by "whiteboard watch
// --record": one websocket text frame per line.
//
// A line may be as long as the relay's default read limit (MaxLineSize). A
// longer line could never have crossed the relay, so Scanner reports it with
// ErrLineTooLong and carries on with the next line instead of giving up on
// the whole file.
package recording
