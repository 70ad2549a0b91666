package protocol

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBuildMethod tests method name construction
func TestBuildMethod(t *testing.T) {
	assert.Equal(t, "initialize", BuildMethod("initialize", EmptyNamespace))
	assert.Equal(t, "tools/call", BuildMethod("call", ToolsNamespace))

	assert.Equal(t, "notifications/initialized", BuildNotificationsMethod("initialized", EmptyNamespace))
	assert.Equal(t, "notifications/tools/list_changed", BuildNotificationsMethod("list_changed", ToolsNamespace))
}

// TestBaseEndpoint tests method and notification registration and dispatch
func TestBaseEndpoint(t *testing.T) {
	endpoint := NewBaseEndpoint(ToolsNamespace)

	endpoint.RegisterMethod("list", func(ctx context.Context, params json.RawMessage) (interface{}, error) {
		return "listed", nil
	})
	endpoint.RegisterNotification("changed", func(ctx context.Context, params json.RawMessage) (interface{}, error) {
		return nil, nil
	})

	assert.Equal(t, ToolsNamespace, endpoint.GetNamespace())
	assert.Equal(t, []string{"list"}, endpoint.GetMethods())

	result, err := endpoint.HandleRequest(context.Background(), "list", nil)
	require.NoError(t, err)
	assert.Equal(t, "listed", result)

	_, err = endpoint.HandleRequest(context.Background(), "missing", nil)
	require.Error(t, err)
	rpcErr, ok := err.(*JSONRPCError)
	require.True(t, ok)
	assert.Equal(t, ErrorCodeMethodNotFound, rpcErr.Code)

	_, err = endpoint.HandleNotification(context.Background(), "changed", nil)
	assert.NoError(t, err)

	_, err = endpoint.HandleNotification(context.Background(), "missing", nil)
	assert.Error(t, err)
}

// TestEndpointRegistry tests routing of full method names to endpoints
func TestEndpointRegistry(t *testing.T) {
	registry := NewEndpointRegistry()

	base := NewBaseEndpoint(EmptyNamespace)
	base.RegisterMethod("initialize", func(ctx context.Context, params json.RawMessage) (interface{}, error) {
		return "initialized result", nil
	})
	base.RegisterNotification("initialized", func(ctx context.Context, params json.RawMessage) (interface{}, error) {
		return "notified", nil
	})
	registry.RegisterEndpoint(base)

	toolsEndpoint := NewBaseEndpoint(ToolsNamespace)
	toolsEndpoint.RegisterMethod("call", func(ctx context.Context, params json.RawMessage) (interface{}, error) {
		return "called", nil
	})
	registry.RegisterEndpoint(toolsEndpoint)

	t.Run("RootMethod", func(t *testing.T) {
		result, err := registry.HandleRequest(context.Background(), "initialize", nil)
		require.NoError(t, err)
		assert.Equal(t, "initialized result", result)
	})

	t.Run("NamespacedMethod", func(t *testing.T) {
		result, err := registry.HandleRequest(context.Background(), "tools/call", nil)
		require.NoError(t, err)
		assert.Equal(t, "called", result)
	})

	t.Run("Notification", func(t *testing.T) {
		result, err := registry.HandleRequest(context.Background(), "notifications/initialized", nil)
		require.NoError(t, err)
		assert.Equal(t, "notified", result)
	})

	t.Run("UnknownNamespace", func(t *testing.T) {
		_, err := registry.HandleRequest(context.Background(), "resources/list", nil)
		require.Error(t, err)
		rpcErr, ok := err.(*JSONRPCError)
		require.True(t, ok)
		assert.Equal(t, ErrorCodeMethodNotFound, rpcErr.Code)
	})

	t.Run("UnknownMethod", func(t *testing.T) {
		_, err := registry.HandleRequest(context.Background(), "tools/destroy", nil)
		require.Error(t, err)
		rpcErr, ok := err.(*JSONRPCError)
		require.True(t, ok)
		assert.Equal(t, ErrorCodeMethodNotFound, rpcErr.Code)
	})

	t.Run("GetAndUnregister", func(t *testing.T) {
		_, exists := registry.GetEndpoint(ToolsNamespace)
		assert.True(t, exists)

		registry.UnregisterEndpoint(ToolsNamespace)
		_, exists = registry.GetEndpoint(ToolsNamespace)
		assert.False(t, exists)

		_, err := registry.HandleRequest(context.Background(), "tools/call", nil)
		assert.Error(t, err)
	})
}
