package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/Travid/littleAI/internal/metrics"
	"github.com/Travid/littleAI/internal/platform/correlation"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // controllers connect from anywhere on the local network
	},
}

// handleCommandSocket runs the command channel: one JSON command per text
// frame, one acknowledgement per answered command. Oversized payloads are
// dropped with no response.
func (s *Server) handleCommandSocket(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return fmt.Errorf("failed to upgrade websocket: %w", err)
	}
	defer conn.Close()

	// Detached from the request context: the connection outlives handler
	// conventions, and command handling must not inherit request deadlines.
	ctx := correlation.WithID(context.Background(), correlation.NewID())
	slog.InfoContext(ctx, "command client connected", "remote", conn.RemoteAddr().String())

	for {
		msgType, payload, err := conn.ReadMessage()
		if err != nil {
			break
		}
		if msgType != websocket.TextMessage && msgType != websocket.BinaryMessage {
			continue
		}
		if len(payload) == 0 {
			continue
		}
		if len(payload) > s.config.MaxPayloadBytes {
			metrics.PayloadsDropped.Inc()
			slog.WarnContext(ctx, "payload too large, dropped", "bytes", len(payload))
			continue
		}

		start := s.clock.Now()
		ack := s.dispatcher.Dispatch(ctx, payload)
		metrics.CommandDuration.Observe(s.clock.Since(start).Seconds())

		if err := conn.WriteJSON(ack); err != nil {
			break
		}
	}

	slog.InfoContext(ctx, "command client disconnected")
	return nil
}

// handleRenderSocket attaches a renderer to the frame feed.
func (s *Server) handleRenderSocket(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return fmt.Errorf("failed to upgrade websocket: %w", err)
	}

	if err := s.broadcaster.Register(conn); err != nil {
		slog.Warn("renderer rejected", "error", err)
		return nil
	}

	// Read pump - blocks until the connection closes. Renderers never send
	// anything meaningful; reading services pong frames and detects close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	s.broadcaster.Unregister(conn)

	return nil //nolint:nilerr // ReadMessage err is block-scoped; outer err is nil
}
