package channelimpl

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/dint-dev/cryptography-sub004/internal/domain/channel"
	"github.com/dint-dev/cryptography-sub004/internal/pkg/config"
	"github.com/dint-dev/cryptography-sub004/internal/pkg/logger"
)

// WebSocketInvoker speaks the channel call contract over a websocket, one
// JSON frame per request and response, correlated by request ID. A single
// writer goroutine discipline is enforced with a mutex; responses are read by
// one background loop and fanned out to waiting callers.
type WebSocketInvoker struct {
	conn   *websocket.Conn
	logger logger.Logger

	writeMu sync.Mutex

	mu      sync.Mutex
	pending map[string]chan *channel.Response
	closed  bool
}

// NewWebSocketInvoker dials the channel endpoint and starts the read loop.
func NewWebSocketInvoker(settings *config.ChannelSettings, logger logger.Logger) (*WebSocketInvoker, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate settings: %w", err)
	}

	conn, _, err := websocket.DefaultDialer.Dial(settings.Endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial channel endpoint %s: %w", settings.Endpoint, err)
	}

	invoker := &WebSocketInvoker{
		conn:    conn,
		logger:  logger,
		pending: make(map[string]chan *channel.Response),
	}
	go invoker.readLoop()
	return invoker, nil
}

// Invoke sends the request and waits for the matching response. Cancelling ctx
// abandons the wait; the backend still runs the operation to completion and
// the result is discarded.
func (i *WebSocketInvoker) Invoke(ctx context.Context, req *channel.Request) (*channel.Response, error) {
	if req == nil {
		return nil, fmt.Errorf("request cannot be nil")
	}
	if req.ID == "" {
		req.ID = uuid.New().String()
	}

	ch := make(chan *channel.Response, 1)
	i.mu.Lock()
	if i.closed {
		i.mu.Unlock()
		return nil, fmt.Errorf("channel invoker is closed")
	}
	i.pending[req.ID] = ch
	i.mu.Unlock()

	i.writeMu.Lock()
	err := i.conn.WriteJSON(req)
	i.writeMu.Unlock()
	if err != nil {
		i.forget(req.ID)
		return nil, fmt.Errorf("failed to write channel request: %w", err)
	}

	select {
	case <-ctx.Done():
		i.forget(req.ID)
		return nil, ctx.Err()
	case resp, ok := <-ch:
		if !ok {
			return nil, fmt.Errorf("channel closed while waiting for response")
		}
		if err := resp.Err(); err != nil {
			return nil, err
		}
		return resp, nil
	}
}

// Close shuts the transport down and fails all pending calls.
func (i *WebSocketInvoker) Close() error {
	i.mu.Lock()
	if i.closed {
		i.mu.Unlock()
		return nil
	}
	i.closed = true
	for id, ch := range i.pending {
		close(ch)
		delete(i.pending, id)
	}
	i.mu.Unlock()
	return i.conn.Close()
}

func (i *WebSocketInvoker) forget(id string) {
	i.mu.Lock()
	delete(i.pending, id)
	i.mu.Unlock()
}

func (i *WebSocketInvoker) readLoop() {
	for {
		var resp channel.Response
		if err := i.conn.ReadJSON(&resp); err != nil {
			i.logger.Warn("channel read loop terminated: ", err)
			_ = i.Close()
			return
		}

		i.mu.Lock()
		ch, ok := i.pending[resp.ID]
		if ok {
			delete(i.pending, resp.ID)
		}
		i.mu.Unlock()

		if ok {
			ch <- &resp
		} else {
			// Abandoned call; the caller cancelled while the backend was
			// still working. Discard the result.
			i.logger.Info("discarding response for abandoned request ", resp.ID)
		}
	}
}
