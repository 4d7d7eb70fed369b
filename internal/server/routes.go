package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability endpoints
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	s.echo.GET("/version", s.handleVersion)

	// Control plane: websocket command channel + render feed
	s.echo.GET("/ws", s.handleCommandSocket)
	s.echo.GET("/ws/render", s.handleRenderSocket)

	// REST conveniences mirroring the websocket grammar
	s.echo.GET("/api/state", s.handleState)
	s.echo.POST("/api/command", s.handleCommand)
}
