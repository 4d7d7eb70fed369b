package server

import (
	"github.com/labstack/echo/v4"

	"github.com/Travid/littleAI/internal/platform/version"
)

func (s *Server) handleLiveness(c echo.Context) error {
	uptime := s.clock.Since(s.startTime).Seconds()
	return c.JSON(200, map[string]any{
		"status": "ok",
		"uptime": uptime,
	})
}

// handleReadiness probes the face store with the command lock timeout. A held
// lock or an uninitialized store reports unhealthy.
func (s *Server) handleReadiness(c echo.Context) error {
	if _, err := s.store.Snapshot(s.config.CommandLockTimeout); err != nil {
		return c.JSON(503, map[string]any{
			"status":       "unhealthy",
			"failed_check": "face_store",
			"error":        err.Error(),
		})
	}
	return c.JSON(200, map[string]string{"status": "ready"})
}

func (s *Server) handleVersion(c echo.Context) error {
	return c.JSON(200, version.Get())
}
