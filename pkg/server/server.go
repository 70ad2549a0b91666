// Package server provides the tool-serving protocol server
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/10aParikh/nessie-mcp-server/internal/logging"
	"github.com/10aParikh/nessie-mcp-server/pkg/protocol"
	"github.com/10aParikh/nessie-mcp-server/pkg/tools"
)

// Server owns the protocol engine: the endpoint registry that routes RPC
// methods, the tool registry and the set of live sessions. One session
// exists per open stream; the transport layer calls HandleConnection when a
// stream opens and CloseSession when it closes.
type Server struct {
	// Server ID
	ID string

	// Server information
	Info map[string]string

	// Server version
	Version string

	// Server name
	Name string

	// Supported protocol versions
	SupportedVersions []protocol.ProtocolVersion

	// Endpoint registry for RPC method management
	endpointRegistry *protocol.EndpointRegistry

	// Registry of invocable tools
	toolRegistry *tools.Registry

	// Active sessions
	sessions      map[string]*protocol.Session
	sessionsMutex sync.RWMutex

	// Logger
	logger        *slog.Logger
	loggerFactory *logging.LoggerFactory
}

// NewServer creates a new server
func NewServer(options ...ServerOption) *Server {
	server := &Server{
		ID:                uuid.New().String(),
		Info:              make(map[string]string),
		Name:              "Nessie MCP Server",
		Version:           "1.0.0",
		SupportedVersions: []protocol.ProtocolVersion{protocol.ProtocolVersion20241105, protocol.ProtocolVersion20250326},
		endpointRegistry:  protocol.NewEndpointRegistry(),
		toolRegistry:      tools.NewRegistry(),
		sessions:          make(map[string]*protocol.Session),
	}

	// Apply the options
	for _, option := range options {
		option(server)
	}

	if server.loggerFactory != nil {
		server.logger = server.loggerFactory.CreateLogger("server")
	}

	// Register the base endpoint handling the session handshake
	baseEndpoint := protocol.NewBaseEndpoint(protocol.EmptyNamespace)
	baseEndpoint.RegisterMethod("initialize", server.handleInitialize)
	baseEndpoint.RegisterMethod("ping", server.handlePing)
	baseEndpoint.RegisterNotification("initialized", server.handleInitialized)
	server.endpointRegistry.RegisterEndpoint(baseEndpoint)

	// Register the tools endpoint
	server.endpointRegistry.RegisterEndpoint(tools.NewEndpoint(server.toolRegistry))

	return server
}

// RegisterTool registers a tool with the server. Duplicate names are a
// configuration error and must be surfaced at startup.
func (s *Server) RegisterTool(tool *tools.Definition) error {
	return s.toolRegistry.Register(tool)
}

// Tools returns the server's tool registry
func (s *Server) Tools() *tools.Registry {
	return s.toolRegistry
}

// HandleConnection binds a new client stream: it creates the dispatcher and
// session, stores the session and starts receiving correlated messages. The
// returned session carries the identity the transport layer routes by.
func (s *Server) HandleConnection(transport protocol.Transport) *protocol.Session {
	dispatcher := protocol.NewJSONRPCDispatcher(transport, s)
	if s.loggerFactory != nil {
		dispatcher.SetLogger(s.loggerFactory.CreateLogger("dispatcher"))
	}

	session := protocol.NewSession(dispatcher)
	session.ServerID = s.ID
	session.ServerInfo = s.Info

	s.sessionsMutex.Lock()
	s.sessions[session.ID] = session
	s.sessionsMutex.Unlock()

	dispatcher.SetSessionID(session.ID)
	dispatcher.Start()

	logging.Debug(s.logger, "session created", slog.String("sessionID", session.ID))
	return session
}

// CloseSession releases a session: it is removed from the routing table
// first so no further inbound message can reach it, then closed.
func (s *Server) CloseSession(sessionID string) {
	s.sessionsMutex.Lock()
	session, exists := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	s.sessionsMutex.Unlock()

	if !exists {
		return
	}

	_ = session.Close()
	logging.Debug(s.logger, "session closed", slog.String("sessionID", sessionID))
}

// HandleRequest implements the protocol.RPCHandler interface
func (s *Server) HandleRequest(ctx context.Context, method string, params json.RawMessage) (interface{}, error) {
	return s.endpointRegistry.HandleRequest(ctx, method, params)
}

// Handler methods for the base endpoint

// handleInitialize handles the initialization request
func (s *Server) handleInitialize(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var initParams protocol.InitializeParams
	if err := json.Unmarshal(params, &initParams); err != nil {
		return nil, &protocol.JSONRPCError{
			Code:    protocol.ErrorCodeParseError,
			Message: "Parse error: " + err.Error(),
		}
	}

	session, rpcErr := s.sessionFromContext(ctx)
	if rpcErr != nil {
		return nil, rpcErr
	}

	// Fall back to the preferred version when the client asks for one we
	// do not know
	versionIdx := slices.Index(s.SupportedVersions, protocol.ProtocolVersion(initParams.ProtocolVersion))
	if versionIdx == -1 {
		logging.Warn(s.logger, "unsupported client protocol version", "version", initParams.ProtocolVersion)
		versionIdx = 0
	}
	version := s.SupportedVersions[versionIdx]

	capabilities := s.Capabilities()
	session.ServerCapabilities = capabilities

	result, err := session.Initialize(ctx, &initParams, version)
	if err != nil {
		return nil, &protocol.JSONRPCError{
			Code:    protocol.ErrorCodeInternalError,
			Message: "Internal error: " + err.Error(),
		}
	}

	result.Capabilities = capabilities
	return result, nil
}

func (s *Server) handlePing(ctx context.Context, params json.RawMessage) (interface{}, error) {
	if sessionID, ok := protocol.GetSessionID(ctx); ok {
		logging.Debug(s.logger, "ping received", slog.String("sessionID", sessionID))
	}

	// Respond with an empty result
	return nil, nil
}

func (s *Server) handleInitialized(ctx context.Context, params json.RawMessage) (interface{}, error) {
	session, rpcErr := s.sessionFromContext(ctx)
	if rpcErr != nil {
		return nil, rpcErr
	}

	if session.GetState() != protocol.SessionStateInitializing {
		return nil, &protocol.JSONRPCError{
			Code:    protocol.ErrorCodeInvalidRequest,
			Message: "Session not in initializing state",
		}
	}

	session.SetState(protocol.SessionStateActive)
	logging.Debug(s.logger, "session initialized", slog.String("sessionID", session.ID))

	return nil, nil
}

func (s *Server) sessionFromContext(ctx context.Context) (*protocol.Session, *protocol.JSONRPCError) {
	sessionID, ok := protocol.GetSessionID(ctx)
	if !ok {
		return nil, &protocol.JSONRPCError{
			Code:    protocol.ErrorCodeInternalError,
			Message: "Internal error: session ID not found in context",
		}
	}

	s.sessionsMutex.RLock()
	session, exists := s.sessions[sessionID]
	s.sessionsMutex.RUnlock()

	if !exists {
		return nil, &protocol.JSONRPCError{
			Code:    protocol.ErrorCodeInternalError,
			Message: "Internal error: session not found",
		}
	}

	return session, nil
}

// Capabilities returns the static capability map advertised during the
// handshake. This server binds exactly one capability: tools.
func (s *Server) Capabilities() map[string]protocol.CapabilityDefinition {
	return map[string]protocol.CapabilityDefinition{
		"tools": {Options: json.RawMessage(`{"listChanged":false}`)},
	}
}

// RegisterEndpoint registers a new endpoint
func (s *Server) RegisterEndpoint(endpoint protocol.Endpoint) {
	s.endpointRegistry.RegisterEndpoint(endpoint)
}

// GetSession returns a session by ID
func (s *Server) GetSession(id string) (*protocol.Session, bool) {
	s.sessionsMutex.RLock()
	defer s.sessionsMutex.RUnlock()
	session, exists := s.sessions[id]
	return session, exists
}

// GetActiveSessions returns all active sessions
func (s *Server) GetActiveSessions() []*protocol.Session {
	s.sessionsMutex.RLock()
	defer s.sessionsMutex.RUnlock()

	activeSessions := make([]*protocol.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		if session.IsActive() {
			activeSessions = append(activeSessions, session)
		}
	}

	return activeSessions
}

// Shutdown closes all sessions. Fatal only to the sessions, never to other
// parts of the process.
func (s *Server) Shutdown() {
	s.sessionsMutex.Lock()
	sessions := make([]*protocol.Session, 0, len(s.sessions))
	for id, session := range s.sessions {
		sessions = append(sessions, session)
		delete(s.sessions, id)
	}
	s.sessionsMutex.Unlock()

	for _, session := range sessions {
		_ = session.Close()
	}
}
