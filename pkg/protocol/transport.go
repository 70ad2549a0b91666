// Package protocol defines the basic primitives for the tool-serving protocol
package protocol

import (
	"context"
	"errors"
)

// Transport is the channel a session communicates over. The server owns one
// transport per session: Send pushes a message down to the client, Receive
// blocks until a correlated inbound message arrives.
type Transport interface {
	// Send sends a message to the recipient
	Send(ctx context.Context, data []byte) error

	// Receive receives a message from the sender
	Receive(ctx context.Context) ([]byte, error)

	// Close closes the transport connection
	Close() error
}

// TransportError represents a transport error
type TransportError struct {
	Message string
	Cause   error

	// Closed marks errors raised by operations on a closed transport
	Closed bool
}

// Error implements the error interface
func (e *TransportError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap implements the unwrapping interface
func (e *TransportError) Unwrap() error {
	return e.Cause
}

// WithCause adds a causal error
func (e *TransportError) WithCause(err error) *TransportError {
	e.Cause = err
	return e
}

// NewClosedError returns the error for operations on a closed transport
func NewClosedError() *TransportError {
	return &TransportError{Message: "transport closed", Closed: true}
}

// IsClosed reports whether err indicates a closed transport
func IsClosed(err error) bool {
	var terr *TransportError
	if errors.As(err, &terr) {
		return terr.Closed
	}
	return false
}
