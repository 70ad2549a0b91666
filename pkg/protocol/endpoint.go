// Package protocol defines the basic primitives for the tool-serving protocol
package protocol

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// ProtocolVersion represents the version of the protocol
type ProtocolVersion string

// Protocol versions supported
const (
	// ProtocolVersion20241105 represents the 2024-11-05 protocol version
	ProtocolVersion20241105 ProtocolVersion = "2024-11-05"
	// ProtocolVersion20250326 represents the 2025-03-26 protocol version
	ProtocolVersion20250326 ProtocolVersion = "2025-03-26"
)

// Namespace represents a namespace for RPC methods
type Namespace string

// Namespaces served by this process
const (
	EmptyNamespace         Namespace = ""
	NotificationsNamespace Namespace = "notifications"
	ToolsNamespace         Namespace = "tools"
)

// BuildMethod builds a complete RPC method with namespace
func BuildMethod(method string, namespace Namespace) string {
	if namespace == "" {
		return method
	}
	return fmt.Sprintf("%s/%s", namespace, method)
}

// BuildNotificationsMethod builds a notification method name
func BuildNotificationsMethod(method string, namespace Namespace) string {
	if namespace == "" {
		return fmt.Sprintf("%s/%s", NotificationsNamespace, method)
	}
	return fmt.Sprintf("%s/%s/%s", NotificationsNamespace, namespace, method)
}

// Endpoint handles RPC calls for a specific namespace
type Endpoint interface {
	// GetNamespace returns the namespace handled by this endpoint
	GetNamespace() Namespace

	// GetMethods returns the methods supported by this endpoint
	GetMethods() []string

	// HandleRequest handles an RPC request
	HandleRequest(ctx context.Context, method string, params json.RawMessage) (interface{}, error)

	// HandleNotification handles an RPC notification
	HandleNotification(ctx context.Context, method string, params json.RawMessage) (interface{}, error)
}

// EndpointRegistry routes inbound methods to the endpoint owning their
// namespace
type EndpointRegistry struct {
	endpoints map[Namespace]Endpoint
	mutex     sync.RWMutex
}

// NewEndpointRegistry creates a new endpoint registry
func NewEndpointRegistry() *EndpointRegistry {
	return &EndpointRegistry{
		endpoints: make(map[Namespace]Endpoint),
	}
}

// RegisterEndpoint registers a new endpoint
func (r *EndpointRegistry) RegisterEndpoint(endpoint Endpoint) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.endpoints[endpoint.GetNamespace()] = endpoint
}

// UnregisterEndpoint removes an endpoint
func (r *EndpointRegistry) UnregisterEndpoint(namespace Namespace) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	delete(r.endpoints, namespace)
}

// GetEndpoint returns an endpoint
func (r *EndpointRegistry) GetEndpoint(namespace Namespace) (Endpoint, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	endpoint, exists := r.endpoints[namespace]
	return endpoint, exists
}

// HandleRequest handles an RPC request
func (r *EndpointRegistry) HandleRequest(ctx context.Context, fullMethod string, params json.RawMessage) (interface{}, error) {
	// Extract namespace and method
	var method string
	var namespace Namespace = EmptyNamespace
	var isNotification bool

	tokens := strings.Split(fullMethod, "/")
	method = tokens[len(tokens)-1]
	if len(tokens) > 1 {
		namespace = Namespace(tokens[len(tokens)-2])
	}
	if namespace == NotificationsNamespace {
		isNotification = true
		namespace = EmptyNamespace
	}
	if len(tokens) > 2 {
		isNotification = tokens[len(tokens)-3] == string(NotificationsNamespace)
	}

	if method == "" {
		return nil, &JSONRPCError{
			Code:    ErrorCodeMethodNotFound,
			Message: "Method not found: invalid method format",
		}
	}

	r.mutex.RLock()
	endpoint, exists := r.endpoints[namespace]
	r.mutex.RUnlock()

	if !exists {
		return nil, &JSONRPCError{
			Code:    ErrorCodeMethodNotFound,
			Message: fmt.Sprintf("Method not found: namespace %s not registered", namespace),
		}
	}

	if isNotification {
		return endpoint.HandleNotification(ctx, method, params)
	}

	return endpoint.HandleRequest(ctx, method, params)
}

// BaseEndpoint is a basic implementation of Endpoint
type BaseEndpoint struct {
	namespace     Namespace
	methods       map[string]MethodHandler
	notifications map[string]MethodHandler
}

// MethodHandler is a function that handles an RPC method
type MethodHandler func(ctx context.Context, params json.RawMessage) (interface{}, error)

// NewBaseEndpoint creates a new base endpoint
func NewBaseEndpoint(namespace Namespace) *BaseEndpoint {
	return &BaseEndpoint{
		namespace:     namespace,
		methods:       make(map[string]MethodHandler),
		notifications: make(map[string]MethodHandler),
	}
}

// GetNamespace returns the namespace handled by this endpoint
func (e *BaseEndpoint) GetNamespace() Namespace {
	return e.namespace
}

// GetMethods returns the methods supported by this endpoint
func (e *BaseEndpoint) GetMethods() []string {
	methods := make([]string, 0, len(e.methods))
	for method := range e.methods {
		methods = append(methods, method)
	}
	return methods
}

// RegisterMethod registers a new method
func (e *BaseEndpoint) RegisterMethod(method string, handler MethodHandler) {
	e.methods[method] = handler
}

// RegisterNotification registers a new notification handler
func (e *BaseEndpoint) RegisterNotification(method string, handler MethodHandler) {
	e.notifications[method] = handler
}

// HandleRequest handles an RPC request
func (e *BaseEndpoint) HandleRequest(ctx context.Context, method string, params json.RawMessage) (interface{}, error) {
	handler, exists := e.methods[method]
	if !exists {
		return nil, &JSONRPCError{
			Code:    ErrorCodeMethodNotFound,
			Message: fmt.Sprintf("Method not found: %s/%s", e.namespace, method),
		}
	}

	return handler(ctx, params)
}

// HandleNotification handles an RPC notification
func (e *BaseEndpoint) HandleNotification(ctx context.Context, method string, params json.RawMessage) (interface{}, error) {
	handler, exists := e.notifications[method]
	if !exists {
		return nil, &JSONRPCError{
			Code:    ErrorCodeMethodNotFound,
			Message: fmt.Sprintf("Notification not found: %s/%s", e.namespace, method),
		}
	}

	return handler(ctx, params)
}
