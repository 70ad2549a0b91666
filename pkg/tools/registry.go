package tools

import (
	"context"
	"fmt"
	"sync"

	"github.com/10aParikh/nessie-mcp-server/internal/errors"
	"github.com/10aParikh/nessie-mcp-server/pkg/protocol"
)

// Handler is a function that executes a tool with validated arguments
type Handler func(ctx context.Context, arguments map[string]interface{}) (*Result, error)

// Registry manages the registration and invocation of tools. Registration
// happens once at startup; Call is safe for concurrent use by any number of
// sessions and never lets a failure propagate past the envelope.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]*Definition
}

// NewRegistry creates a new Registry
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]*Definition),
	}
}

// Register registers a tool with the registry. Registering two tools under
// the same name is a startup-time configuration error.
func (r *Registry) Register(tool *Definition) error {
	if tool == nil {
		return errors.NewError(errors.ToolInvalidDefinition, "tool cannot be nil")
	}

	if tool.Name == "" {
		return errors.NewError(errors.ToolInvalidDefinition, "tool name cannot be empty")
	}

	if tool.Handler == nil {
		return errors.NewErrorf(errors.ToolInvalidDefinition, "tool %s has no handler", tool.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[tool.Name]; exists {
		return errors.NewErrorf(errors.ToolAlreadyRegistered, "tool with name %s already exists", tool.Name)
	}

	r.tools[tool.Name] = tool
	return nil
}

// Get returns a tool by name
func (r *Registry) Get(name string) (*Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, exists := r.tools[name]
	return tool, exists
}

// List returns all registered tool definitions
func (r *Registry) List() []protocol.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]protocol.Tool, 0, len(r.tools))
	for _, tool := range r.tools {
		defs = append(defs, tool.Tool)
	}

	return defs
}

// Count returns the number of registered tools
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.tools)
}

// Call looks up the named tool, validates the raw arguments against its
// input schema and runs the handler. Every outcome, including unknown tool,
// invalid arguments and handler failure, resolves to an envelope.
func (r *Registry) Call(ctx context.Context, name string, arguments map[string]interface{}) *Result {
	tool, exists := r.Get(name)
	if !exists {
		return NewErrorResult(fmt.Sprintf("Tool not found: %s", name))
	}

	if arguments == nil {
		arguments = map[string]interface{}{}
	}

	if err := tool.InputSchema.Validate(arguments); err != nil {
		return NewErrorResult(fmt.Sprintf("Invalid arguments for tool %s: %s", name, err.Error()))
	}

	result, err := tool.Handler(ctx, arguments)
	if err != nil {
		return NewErrorResult(fmt.Sprintf("Tool %s failed: %s", name, err.Error()))
	}
	if result == nil {
		result = NewSuccessResult("")
	}

	return result
}
