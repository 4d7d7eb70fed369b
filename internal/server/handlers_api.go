package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Travid/littleAI/internal/domain"
	"github.com/Travid/littleAI/internal/metrics"
	"github.com/Travid/littleAI/internal/platform/correlation"
)

// handleCommand dispatches one command payload over plain HTTP, mirroring the
// websocket channel (same payloads, same acknowledgement JSON).
func (s *Server) handleCommand(c echo.Context) error {
	body := http.MaxBytesReader(c.Response(), c.Request().Body, int64(s.config.MaxPayloadBytes)+1)
	payload, err := io.ReadAll(body)
	if err != nil || len(payload) > s.config.MaxPayloadBytes {
		metrics.PayloadsDropped.Inc()
		return c.NoContent(http.StatusRequestEntityTooLarge)
	}

	ctx := correlation.WithID(c.Request().Context(), correlation.NewID())

	start := s.clock.Now()
	ack := s.dispatcher.Dispatch(ctx, payload)
	metrics.CommandDuration.Observe(s.clock.Since(start).Seconds())

	return c.JSON(http.StatusOK, ack)
}

// handleState returns the current snapshot.
func (s *Server) handleState(c echo.Context) error {
	snap, err := s.store.Snapshot(s.config.CommandLockTimeout)
	if err != nil {
		code := domain.CodeFaceBusy
		if errors.Is(err, domain.ErrFaceUnavailable) {
			code = domain.CodeFaceUnavail
		}
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": code})
	}
	return c.JSON(http.StatusOK, snap)
}
