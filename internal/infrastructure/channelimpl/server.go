package channelimpl

import (
	"context"
	"fmt"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/dint-dev/cryptography-sub004/internal/domain/channel"
	"github.com/dint-dev/cryptography-sub004/internal/pkg/logger"
)

// Server serves the channel call contract over websocket, backed by the
// dispatcher. It is the bridge daemon's core and the conformance tests'
// remote backend.
type Server struct {
	dispatcher *Dispatcher
	upgrader   websocket.Upgrader
	logger     logger.Logger
}

// NewServer creates a channel server.
func NewServer(logger logger.Logger) (*Server, error) {
	dispatcher, err := NewDispatcher(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create dispatcher: %w", err)
	}
	return &Server{
		dispatcher: dispatcher,
		upgrader:   websocket.Upgrader{},
		logger:     logger,
	}, nil
}

// Handle upgrades the HTTP request and serves channel calls until the peer
// disconnects. Requests on one connection are dispatched concurrently;
// responses are written under a per-connection mutex.
func (s *Server) Handle(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Error("failed to upgrade channel connection: ", err)
		return
	}
	defer func() {
		if err := conn.Close(); err != nil {
			s.logger.Warn("failed to close channel connection: ", err)
		}
	}()

	var writeMu sync.Mutex
	var wg sync.WaitGroup
	ctx := c.Request.Context()

	for {
		var req channel.Request
		if err := conn.ReadJSON(&req); err != nil {
			break
		}

		wg.Add(1)
		go func(req channel.Request) {
			defer wg.Done()
			resp := s.dispatcher.Dispatch(ctx, &req)

			writeMu.Lock()
			defer writeMu.Unlock()
			if err := conn.WriteJSON(resp); err != nil {
				s.logger.Warn("failed to write channel response: ", err)
			}
		}(req)
	}
	wg.Wait()
}

// Dispatch exposes the dispatcher for in-process use.
func (s *Server) Dispatch(ctx context.Context, req *channel.Request) *channel.Response {
	return s.dispatcher.Dispatch(ctx, req)
}
