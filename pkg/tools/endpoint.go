package tools

import (
	"context"
	"encoding/json"

	"github.com/10aParikh/nessie-mcp-server/pkg/protocol"
)

// Endpoint exposes a Registry over the tools/* RPC namespace
type Endpoint struct {
	protocol.BaseEndpoint
	registry *Registry
}

// NewEndpoint creates a new tools endpoint backed by the given registry
func NewEndpoint(registry *Registry) *Endpoint {
	endpoint := &Endpoint{
		BaseEndpoint: *protocol.NewBaseEndpoint(protocol.ToolsNamespace),
		registry:     registry,
	}

	endpoint.RegisterMethod("list", endpoint.handleList)
	endpoint.RegisterMethod("call", endpoint.handleCall)

	return endpoint
}

// handleList handles the tools/list request
func (e *Endpoint) handleList(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var listParams protocol.ToolsListParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &listParams); err != nil {
			return nil, &protocol.JSONRPCError{
				Code:    protocol.ErrorCodeInvalidParams,
				Message: "Invalid parameters: " + err.Error(),
			}
		}
	}

	// No pagination: the tool set is small and static
	return &protocol.ToolsListResult{
		Tools: e.registry.List(),
	}, nil
}

// handleCall handles the tools/call request
func (e *Endpoint) handleCall(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var callParams protocol.ToolsCallParams
	if err := json.Unmarshal(params, &callParams); err != nil {
		return nil, &protocol.JSONRPCError{
			Code:    protocol.ErrorCodeInvalidParams,
			Message: "Invalid parameters: " + err.Error(),
		}
	}

	return e.registry.Call(ctx, callParams.Name, callParams.Arguments).ToWire(), nil
}
