package sse

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/10aParikh/nessie-mcp-server/internal/logging"
	"github.com/10aParikh/nessie-mcp-server/pkg/protocol"
)

// SessionBinder binds a freshly opened transport to the in-process protocol
// engine and releases the binding when the stream closes. Implemented by
// the server.
type SessionBinder interface {
	HandleConnection(transport protocol.Transport) *protocol.Session
	CloseSession(sessionID string)
}

// Endpoints serves the two HTTP endpoints of the SSE binding: the
// stream-open endpoint and the correlated message-submission endpoint.
type Endpoints struct {
	binder      SessionBinder
	logger      *slog.Logger
	messagePath string
	heartbeat   time.Duration

	// streams maps a live session ID to its transport so inbound messages
	// can be routed. A closed session is removed before its transport
	// shuts down, so late messages find no entry and are dropped.
	streams map[string]*SSETransport
	mu      sync.RWMutex
}

// Option configures Endpoints
type Option func(*Endpoints)

// WithLogger sets the endpoints logger
func WithLogger(logger *slog.Logger) Option {
	return func(e *Endpoints) {
		e.logger = logger
	}
}

// WithMessagePath sets the path advertised in the endpoint handshake event
func WithMessagePath(path string) Option {
	return func(e *Endpoints) {
		e.messagePath = path
	}
}

// WithHeartbeat sets the keep-alive comment interval
func WithHeartbeat(interval time.Duration) Option {
	return func(e *Endpoints) {
		e.heartbeat = interval
	}
}

// NewEndpoints creates the SSE endpoints for the given binder
func NewEndpoints(binder SessionBinder, options ...Option) *Endpoints {
	e := &Endpoints{
		binder:      binder,
		messagePath: "/messages",
		heartbeat:   15 * time.Second,
		streams:     make(map[string]*SSETransport),
	}

	for _, option := range options {
		option(e)
	}

	return e
}

// Register mounts the SSE routes on a chi router
func (e *Endpoints) Register(r chi.Router) {
	r.Get("/sse", e.HandleStream)
	r.Post(e.messagePath, e.HandleMessage)
}

// ActiveStreams returns the number of currently open streams
func (e *Endpoints) ActiveStreams() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.streams)
}

// HandleStream handles the stream-open request: it allocates a session,
// advertises the correlated message endpoint and then keeps the stream open
// until the client disconnects or the server shuts down.
func (e *Endpoints) HandleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	transport := NewSSETransport(w, flusher)
	session := e.binder.HandleConnection(transport)

	e.mu.Lock()
	e.streams[session.ID] = transport
	e.mu.Unlock()

	logging.Info(e.logger, "stream opened", "session", session.ID, "remote", r.RemoteAddr)

	defer func() {
		e.mu.Lock()
		delete(e.streams, session.ID)
		e.mu.Unlock()

		e.binder.CloseSession(session.ID)
		_ = transport.Close()
		logging.Info(e.logger, "stream closed", "session", session.ID)
	}()

	// The endpoint event tells the client where to POST correlated
	// messages for this session
	endpointURL := fmt.Sprintf("%s?sessionId=%s", e.messagePath, session.ID)
	if err := transport.SendEvent("endpoint", endpointURL); err != nil {
		logging.Error(e.logger, "failed to send endpoint event", "session", session.ID, "error", err)
		return
	}

	ticker := time.NewTicker(e.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if err := transport.WriteComment("ping"); err != nil {
				return
			}
		}
	}
}

// HandleMessage handles the message-submission request. The body is
// delivered to the bound session before the acknowledgement is written; the
// acknowledgement confirms receipt only, the semantic result arrives on the
// stream. Unknown or closed sessions are acknowledged and dropped.
func (e *Endpoints) HandleMessage(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")

	body, err := io.ReadAll(r.Body)
	if err != nil {
		logging.Warn(e.logger, "failed to read message body", "session", sessionID, "error", err)
		w.WriteHeader(http.StatusOK)
		return
	}

	e.mu.RLock()
	transport, exists := e.streams[sessionID]
	e.mu.RUnlock()

	switch {
	case sessionID == "":
		logging.Warn(e.logger, "message without session ID dropped")
	case !exists:
		logging.Warn(e.logger, "message for unknown or closed session dropped", "session", sessionID)
	case !transport.Deliver(body):
		logging.Warn(e.logger, "message dropped, session closed or backlogged", "session", sessionID)
	}

	w.WriteHeader(http.StatusOK)
}
