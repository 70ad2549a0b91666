// Package sse provides the server-side SSE transport: a long-lived
// server-to-client event stream paired with a correlated message-submission
// endpoint
package sse

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/10aParikh/nessie-mcp-server/pkg/protocol"
)

// inboundBufferSize bounds the number of undispatched inbound messages per
// session
const inboundBufferSize = 32

// SSETransport implements protocol.Transport over one open event stream.
// Send writes an SSE frame to the client; Receive consumes messages that the
// message-submission endpoint delivered for this session.
type SSETransport struct {
	w       http.ResponseWriter
	flusher http.Flusher

	incoming chan []byte
	closed   chan struct{}

	closeOnce sync.Once
	writeMu   sync.Mutex
}

// NewSSETransport creates a transport writing to the given response writer.
// The writer must support flushing.
func NewSSETransport(w http.ResponseWriter, flusher http.Flusher) *SSETransport {
	return &SSETransport{
		w:        w,
		flusher:  flusher,
		incoming: make(chan []byte, inboundBufferSize),
		closed:   make(chan struct{}),
	}
}

// Send pushes a message down the open stream as a "message" event
func (t *SSETransport) Send(ctx context.Context, data []byte) error {
	return t.writeEvent("message", string(data))
}

// SendEvent writes a named SSE event. Used for the endpoint handshake.
func (t *SSETransport) SendEvent(event, data string) error {
	return t.writeEvent(event, data)
}

// WriteComment writes an SSE comment frame. Comments keep intermediaries
// from closing an idle stream and are ignored by clients.
func (t *SSETransport) WriteComment(text string) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	select {
	case <-t.closed:
		return protocol.NewClosedError()
	default:
	}

	if _, err := fmt.Fprintf(t.w, ": %s\n\n", text); err != nil {
		return (&protocol.TransportError{Message: "stream write failed"}).WithCause(err)
	}
	t.flusher.Flush()
	return nil
}

func (t *SSETransport) writeEvent(event, data string) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	select {
	case <-t.closed:
		return protocol.NewClosedError()
	default:
	}

	if _, err := fmt.Fprintf(t.w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return (&protocol.TransportError{Message: "stream write failed"}).WithCause(err)
	}
	t.flusher.Flush()
	return nil
}

// Receive blocks until a correlated inbound message arrives, the context
// expires or the transport closes
func (t *SSETransport) Receive(ctx context.Context) ([]byte, error) {
	select {
	case data := <-t.incoming:
		return data, nil
	case <-t.closed:
		return nil, protocol.NewClosedError()
	case <-ctx.Done():
		return nil, (&protocol.TransportError{Message: "receive cancelled"}).WithCause(ctx.Err())
	}
}

// Deliver hands an inbound message body to this transport. It reports false
// when the transport is closed or the inbound buffer is full; the message is
// dropped in both cases.
func (t *SSETransport) Deliver(data []byte) bool {
	select {
	case <-t.closed:
		return false
	default:
	}

	select {
	case t.incoming <- data:
		return true
	default:
		return false
	}
}

// Close closes the transport. Subsequent Send, Receive and Deliver calls
// fail fast; Close is idempotent.
func (t *SSETransport) Close() error {
	t.closeOnce.Do(func() {
		close(t.closed)
	})
	return nil
}
