package server

import (
	"log/slog"
	"slices"

	"github.com/10aParikh/nessie-mcp-server/internal/logging"
	"github.com/10aParikh/nessie-mcp-server/pkg/protocol"
	"github.com/10aParikh/nessie-mcp-server/pkg/tools"
)

// ServerOption is a function that configures a server
type ServerOption func(*Server)

// WithServerID sets the server ID
func WithServerID(id string) ServerOption {
	return func(s *Server) {
		s.ID = id
	}
}

// WithServerInfo sets the server information
func WithServerInfo(info map[string]string) ServerOption {
	return func(s *Server) {
		for k, v := range info {
			s.Info[k] = v
		}
	}
}

// WithServerName sets the server name
func WithServerName(name string) ServerOption {
	return func(s *Server) {
		s.Name = name
	}
}

// WithServerVersion sets the server version
func WithServerVersion(version string) ServerOption {
	return func(s *Server) {
		s.Version = version
	}
}

// WithLogger sets the logger for the server
func WithLogger(level slog.Level) ServerOption {
	return func(s *Server) {
		s.loggerFactory = logging.NewLoggerFactory(level)
	}
}

// WithLoggerFactory sets a preconfigured logger factory for the server
func WithLoggerFactory(factory *logging.LoggerFactory) ServerOption {
	return func(s *Server) {
		s.loggerFactory = factory
	}
}

// WithProtocolVersion adds a supported protocol version
func WithProtocolVersion(version protocol.ProtocolVersion) ServerOption {
	return func(s *Server) {
		idx := slices.Index(s.SupportedVersions, version)
		if idx == -1 {
			s.SupportedVersions = append(s.SupportedVersions, version)
		}
	}
}

// WithTool registers a tool during construction. Registration failures are
// logged; use RegisterTool directly when the error must halt startup.
func WithTool(tool *tools.Definition) ServerOption {
	return func(s *Server) {
		if err := s.toolRegistry.Register(tool); err != nil {
			logging.Error(s.logger, "failed to register tool", "error", err)
		}
	}
}
