// Package sink implements the output side of spec §4.5's incremental
// publication: "after each batch of N work items, publish the current image
// buffer to the output sink." Sink is the Config.image_sink collaborator
// boundary of spec §6.
package sink

import (
	"context"
	"sync"

	"github.com/gorilla/websocket"

	"graphest/internal/image"
)

// Sink receives successive Image3 snapshots as the search refines them.
// Implementations must tolerate being called from any goroutine and must
// not block the caller indefinitely (spec §5: "no I/O occurs on the hot
// path" — a Sink that would block is expected to buffer or drop, not stall
// a worker).
type Sink interface {
	Publish(ctx context.Context, img *image.Image3) error
}

// Discard is the zero-cost Sink used when a session has no collaborator
// listening; the search treats a nil Sink the same way, and cmd/graphest
// sets none.
type Discard struct{}

func (Discard) Publish(context.Context, *image.Image3) error { return nil }

// WebSocketSink streams each snapshot as a PNG-encoded binary frame to a
// connected browser collaborator (spec §1's note that the color-picker/
// drag-and-drop UI is an external collaborator watching the image refine
// in real time). Each Publish writes its frame synchronously under a mutex;
// frames are neither buffered nor dropped, so a slow connection holds up
// the publishing worker until the write completes or fails.
type WebSocketSink struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

// NewWebSocketSink wraps an already-upgraded connection.
func NewWebSocketSink(conn *websocket.Conn) *WebSocketSink {
	return &WebSocketSink{conn: conn}
}

// Publish encodes img as PNG and writes it as one binary frame. Errors are
// returned to the caller (the search loop ignores them and continues — a
// disconnected viewer must never abort the underlying computation).
func (s *WebSocketSink) Publish(ctx context.Context, img *image.Image3) error {
	png, err := img.EncodePNG()
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if deadline, ok := ctx.Deadline(); ok {
		s.conn.SetWriteDeadline(deadline)
	}
	return s.conn.WriteMessage(websocket.BinaryMessage, png)
}

// Close closes the underlying connection.
func (s *WebSocketSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.Close()
}
