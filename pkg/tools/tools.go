// Package tools provides the tool registry and the tool result envelope
package tools

import (
	"github.com/10aParikh/nessie-mcp-server/pkg/protocol"
)

// Definition extends the protocol.Tool definition with a handler function
type Definition struct {
	// Embed the protocol.Tool to inherit all its fields
	protocol.Tool

	// Handler is the function that executes the tool
	Handler Handler `json:"-"` // Not serialized
}

// NewTool creates a tool definition
func NewTool(name, description string, inputSchema *protocol.JSONSchema, handler Handler) *Definition {
	return &Definition{
		Tool: protocol.Tool{
			Name:        name,
			Description: description,
			InputSchema: inputSchema,
		},
		Handler: handler,
	}
}

// ContentType represents the type of content in a tool result
type ContentType string

const (
	// ContentTypeText represents text content in a tool result
	ContentTypeText ContentType = "text"
)

// ContentItem represents a content item in a tool result
type ContentItem struct {
	// Type is the type of content
	Type ContentType `json:"type"`

	// Text is the text content
	Text string `json:"text,omitempty"`
}

// Result represents the result of a tool execution
type Result struct {
	// Content contains the content items returned by the tool
	Content []ContentItem `json:"content"`

	// IsError indicates whether the tool execution resulted in an error
	IsError bool `json:"isError"`
}

// NewTextContent creates a new text content item
func NewTextContent(text string) ContentItem {
	return ContentItem{
		Type: ContentTypeText,
		Text: text,
	}
}

// NewResult creates a new tool result
func NewResult(content []ContentItem, isError bool) *Result {
	return &Result{
		Content: content,
		IsError: isError,
	}
}

// NewErrorResult creates a new error tool result with a text message
func NewErrorResult(errorMessage string) *Result {
	return &Result{
		Content: []ContentItem{
			NewTextContent(errorMessage),
		},
		IsError: true,
	}
}

// NewSuccessResult creates a new success tool result with a text message
func NewSuccessResult(message string) *Result {
	return &Result{
		Content: []ContentItem{
			NewTextContent(message),
		},
		IsError: false,
	}
}

// ToWire converts a result into the protocol envelope shape
func (r *Result) ToWire() *protocol.ToolsCallResult {
	content := make([]protocol.ToolResultContent, 0, len(r.Content))
	for _, item := range r.Content {
		content = append(content, protocol.ToolResultContent{
			Type: string(item.Type),
			Text: item.Text,
		})
	}
	return &protocol.ToolsCallResult{
		Content: content,
		IsError: r.IsError,
	}
}
