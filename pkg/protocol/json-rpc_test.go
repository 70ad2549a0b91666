package protocol

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockTransport is a mock implementation of the Transport interface for testing
type MockTransport struct {
	mock.Mock
	receiveCh chan []byte
	mu        sync.Mutex
}

// NewMockTransport creates a new mock transport with buffer capacity
func NewMockTransport(bufferSize int) *MockTransport {
	return &MockTransport{
		receiveCh: make(chan []byte, bufferSize),
	}
}

func (m *MockTransport) Send(ctx context.Context, data []byte) error {
	args := m.Called(ctx, data)
	return args.Error(0)
}

func (m *MockTransport) Receive(ctx context.Context) ([]byte, error) {
	args := m.Called(ctx)
	if args.Error(1) != nil {
		return nil, args.Error(1)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case data := <-m.receiveCh:
		return data, nil
	}
}

func (m *MockTransport) Close() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockTransport) QueueReceiveData(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.receiveCh <- data
}

// MockRPCHandler is a mock implementation of the RPCHandler interface for testing
type MockRPCHandler struct {
	mock.Mock
}

func (m *MockRPCHandler) HandleRequest(ctx context.Context, method string, params json.RawMessage) (interface{}, error) {
	args := m.Called(ctx, method, params)
	return args.Get(0), args.Error(1)
}

// TestJSONRPCError tests the JSONRPCError implementation
func TestJSONRPCError(t *testing.T) {
	err := &JSONRPCError{
		Code:    ErrorCodeParseError,
		Message: "Parse error",
		Data:    []byte(`{"details":"Invalid JSON"}`),
	}

	assert.Equal(t, "Parse error", err.Error())

	err2 := NewJSONRPCError(ErrorCodeInvalidRequest, "Invalid request", "Details")
	assert.Equal(t, ErrorCodeInvalidRequest, err2.Code)
	assert.Equal(t, "Invalid request", err2.Message)
	assert.NotNil(t, err2.Data)
}

// TestNewJSONRPCDispatcher tests the creation of a JSON-RPC dispatcher
func TestNewJSONRPCDispatcher(t *testing.T) {
	transport := NewMockTransport(10)
	handler := new(MockRPCHandler)

	dispatcher := NewJSONRPCDispatcher(transport, handler)

	assert.NotNil(t, dispatcher)
	assert.Equal(t, transport, dispatcher.transport)
	assert.Equal(t, handler, dispatcher.handler)
	assert.NotNil(t, dispatcher.pending)
	assert.NotNil(t, dispatcher.shutdown)
}

// TestJSONRPCDispatcher_Call tests the Call method of the JSON-RPC dispatcher
func TestJSONRPCDispatcher_Call(t *testing.T) {
	t.Run("SuccessfulCall", func(t *testing.T) {
		transport := NewMockTransport(10)
		handler := new(MockRPCHandler)

		// Configure mock transport to simulate a response
		transport.On("Send", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
			var request JSONRPCMessage
			err := json.Unmarshal(args.Get(1).([]byte), &request)
			require.NoError(t, err)

			response := JSONRPCMessage{
				JSONRPC: JSONRPCVersion,
				ID:      request.ID,
				Result:  []byte(`"response result"`),
			}
			responseData, err := json.Marshal(response)
			require.NoError(t, err)
			transport.QueueReceiveData(responseData)
		})

		transport.On("Receive", mock.Anything).Return([]byte{}, nil)

		dispatcher := NewJSONRPCDispatcher(transport, handler)
		dispatcher.Start()
		defer dispatcher.Stop()

		result, err := dispatcher.Call(context.Background(), "test_method", map[string]string{"param": "value"})

		assert.NoError(t, err)
		assert.Equal(t, []byte(`"response result"`), []byte(result))
		transport.AssertExpectations(t)
	})

	t.Run("ErrorResponse", func(t *testing.T) {
		transport := NewMockTransport(10)
		handler := new(MockRPCHandler)

		transport.On("Send", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
			var request JSONRPCMessage
			err := json.Unmarshal(args.Get(1).([]byte), &request)
			require.NoError(t, err)

			response := JSONRPCMessage{
				JSONRPC: JSONRPCVersion,
				ID:      request.ID,
				Error: &JSONRPCError{
					Code:    ErrorCodeMethodNotFound,
					Message: "Method not found",
				},
			}
			responseData, err := json.Marshal(response)
			require.NoError(t, err)
			transport.QueueReceiveData(responseData)
		})

		transport.On("Receive", mock.Anything).Return([]byte{}, nil)

		dispatcher := NewJSONRPCDispatcher(transport, handler)
		dispatcher.Start()
		defer dispatcher.Stop()

		result, err := dispatcher.Call(context.Background(), "missing_method", nil)

		assert.Nil(t, result)
		require.Error(t, err)
		rpcErr, ok := err.(*JSONRPCError)
		require.True(t, ok)
		assert.Equal(t, ErrorCodeMethodNotFound, rpcErr.Code)
	})

	t.Run("ContextCancelled", func(t *testing.T) {
		transport := NewMockTransport(10)
		handler := new(MockRPCHandler)

		// Never queue a response, so the call can only end via the context
		transport.On("Send", mock.Anything, mock.Anything).Return(nil)
		transport.On("Receive", mock.Anything).Return([]byte{}, nil)

		dispatcher := NewJSONRPCDispatcher(transport, handler)
		dispatcher.Start()
		defer dispatcher.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		result, err := dispatcher.Call(ctx, "slow_method", nil)

		assert.Nil(t, result)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

// TestJSONRPCDispatcher_HandleRequest tests inbound request handling
func TestJSONRPCDispatcher_HandleRequest(t *testing.T) {
	transport := NewMockTransport(10)
	handler := new(MockRPCHandler)

	responses := make(chan JSONRPCMessage, 10)
	transport.On("Send", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		var response JSONRPCMessage
		require.NoError(t, json.Unmarshal(args.Get(1).([]byte), &response))
		responses <- response
	})
	transport.On("Receive", mock.Anything).Return([]byte{}, nil)

	handler.On("HandleRequest", mock.Anything, "tools/list", mock.Anything).Return(map[string]string{"ok": "yes"}, nil)

	dispatcher := NewJSONRPCDispatcher(transport, handler)
	dispatcher.SetSessionID("session-1")
	dispatcher.Start()
	defer dispatcher.Stop()

	request := JSONRPCMessage{
		JSONRPC: JSONRPCVersion,
		ID:      []byte(`"req-1"`),
		Method:  "tools/list",
	}
	data, err := json.Marshal(request)
	require.NoError(t, err)
	transport.QueueReceiveData(data)

	select {
	case response := <-responses:
		assert.Equal(t, json.RawMessage(`"req-1"`), response.ID)
		assert.JSONEq(t, `{"ok":"yes"}`, string(response.Result))
		assert.Nil(t, response.Error)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for response")
	}

	// The handler saw the session ID in its context
	handler.AssertCalled(t, "HandleRequest", mock.MatchedBy(func(ctx context.Context) bool {
		id, ok := GetSessionID(ctx)
		return ok && id == "session-1"
	}), "tools/list", mock.Anything)
}

// TestJSONRPCDispatcher_ResponseOrdering verifies that responses leave in
// the order the requests arrived on one session
func TestJSONRPCDispatcher_ResponseOrdering(t *testing.T) {
	transport := NewMockTransport(10)
	handler := new(MockRPCHandler)

	var mu sync.Mutex
	var order []string
	transport.On("Send", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		var response JSONRPCMessage
		require.NoError(t, json.Unmarshal(args.Get(1).([]byte), &response))
		var id string
		require.NoError(t, json.Unmarshal(response.ID, &id))
		mu.Lock()
		order = append(order, id)
		mu.Unlock()
	})
	transport.On("Receive", mock.Anything).Return([]byte{}, nil)

	// The first request is slow; the second must still be answered after it
	handler.On("HandleRequest", mock.Anything, "slow", mock.Anything).Return("slow done", nil).Run(func(mock.Arguments) {
		time.Sleep(100 * time.Millisecond)
	})
	handler.On("HandleRequest", mock.Anything, "fast", mock.Anything).Return("fast done", nil)

	dispatcher := NewJSONRPCDispatcher(transport, handler)
	dispatcher.Start()
	defer dispatcher.Stop()

	for _, req := range []JSONRPCMessage{
		{JSONRPC: JSONRPCVersion, ID: []byte(`"first"`), Method: "slow"},
		{JSONRPC: JSONRPCVersion, ID: []byte(`"second"`), Method: "fast"},
	} {
		data, err := json.Marshal(req)
		require.NoError(t, err)
		transport.QueueReceiveData(data)
	}

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(order) == 2
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"first", "second"}, order)
}

// TestJSONRPCDispatcher_Notify tests sending notifications
func TestJSONRPCDispatcher_Notify(t *testing.T) {
	transport := NewMockTransport(10)
	handler := new(MockRPCHandler)

	var sent []byte
	transport.On("Send", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		sent = args.Get(1).([]byte)
	})

	dispatcher := NewJSONRPCDispatcher(transport, handler)

	err := dispatcher.Notify(context.Background(), "notifications/initialized", nil)
	require.NoError(t, err)

	var message JSONRPCMessage
	require.NoError(t, json.Unmarshal(sent, &message))
	assert.Equal(t, "notifications/initialized", message.Method)
	assert.Nil(t, message.ID)
}
