// Package protocol defines the wire schema for whiteboard drawing events.
//
// An Event is one atomic drawing or view operation. The set of variants is
// closed:
//   - FreehandPoint: one sample of a freehand stroke
//   - Line, Rect: two-point shapes with color and stroke width
//   - Circle: center, radius, color and stroke width
//   - Text: a string placed at a canvas position
//   - Pan, Zoom: relative view adjustments
//
// Wire Format:
//
// Events travel as UTF-8 JSON text frames tagged by a "type" field. Points
// are encoded as two-element arrays:
//
//	{"type":"DrawLine","from":[10,10],"to":[50,40],"color":"#000000","width":2}
//	{"type":"DrawFreehand","x":12.5,"y":40,"dragging":true}
//	{"type":"AddText","pos":[5,5],"text":"hello","color":"#2563eb","size":18}
//
// Every field of a variant is required. Decode reports ErrMalformed for
// invalid JSON or a missing field and ErrUnknownType for an unrecognized tag.
// Encode and Decode round-trip losslessly for every finite value.
//
// Usage:
//
//	frame, err := protocol.Encode(protocol.Rect{
//		From: protocol.Point{X: 10, Y: 10},
//		To:   protocol.Point{X: 50, Y: 40},
//		Color: "#000000",
//		Width: 2,
//	})
//
//	event, err := protocol.Decode(frame)
//	if errors.Is(err, protocol.ErrMalformed) {
//		// drop the frame and keep reading
//	}
package protocol
