package channelimpl

import (
	"context"
	"fmt"

	"github.com/dint-dev/cryptography-sub004/internal/domain/channel"
	"github.com/dint-dev/cryptography-sub004/internal/pkg/logger"
)

// LoopbackInvoker runs the dispatcher in-process. It simulates a native
// backend for tests and for platforms whose "native" implementation is the
// bundled one; responses are byte-identical to what the websocket transport
// would deliver.
type LoopbackInvoker struct {
	dispatcher *Dispatcher
}

// NewLoopbackInvoker creates a loopback channel invoker.
func NewLoopbackInvoker(logger logger.Logger) (*LoopbackInvoker, error) {
	dispatcher, err := NewDispatcher(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create dispatcher: %w", err)
	}
	return &LoopbackInvoker{dispatcher: dispatcher}, nil
}

// Invoke dispatches the request in-process.
func (i *LoopbackInvoker) Invoke(ctx context.Context, req *channel.Request) (*channel.Response, error) {
	if req == nil {
		return nil, fmt.Errorf("request cannot be nil")
	}
	resp := i.dispatcher.Dispatch(ctx, req)
	if err := resp.Err(); err != nil {
		return nil, err
	}
	return resp, nil
}

// Close is a no-op for the loopback transport.
func (i *LoopbackInvoker) Close() error { return nil }
