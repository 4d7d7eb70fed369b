package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Travid/littleAI/internal/broadcast"
	"github.com/Travid/littleAI/internal/config"
	"github.com/Travid/littleAI/internal/face"
)

// commandDispatcher is the slice of the face engine the transport needs.
type commandDispatcher interface {
	Dispatch(ctx context.Context, payload []byte) face.Ack
}

// snapshotter provides read access for the REST and readiness handlers.
type snapshotter interface {
	Snapshot(timeout time.Duration) (face.State, error)
}

type Server struct {
	echo        *echo.Echo
	config      *config.Config
	dispatcher  commandDispatcher
	store       snapshotter
	broadcaster *broadcast.Broadcaster
	clock       clockwork.Clock
	startTime   time.Time
}

func NewServer(cfg *config.Config, dispatcher commandDispatcher, store snapshotter, broadcaster *broadcast.Broadcaster, clock clockwork.Clock) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())

	srv := &Server{
		echo:        e,
		config:      cfg,
		dispatcher:  dispatcher,
		store:       store,
		broadcaster: broadcaster,
		clock:       clock,
		startTime:   clock.Now(),
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	slog.Info("starting server", "port", s.config.Port, "device", s.config.DeviceName)
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
