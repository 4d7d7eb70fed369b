package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/Travid/littleAI/internal/audio"
	"github.com/Travid/littleAI/internal/broadcast"
	"github.com/Travid/littleAI/internal/config"
	"github.com/Travid/littleAI/internal/face"
	"github.com/Travid/littleAI/internal/logging"
	"github.com/Travid/littleAI/internal/render"
	"github.com/Travid/littleAI/internal/server"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func runGracefulShutdown(srv *server.Server, broadcaster *broadcast.Broadcaster, cancelLoop context.CancelFunc) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		cancelLoop()
		broadcaster.Stop()

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	// Initialize structured logging
	logging.Init(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "device", cfg.DeviceName, "port", cfg.Port)

	faceClock := face.NewClock(clock)
	store := face.NewStore(clock)

	synth := audio.NewSynth(audio.NopSink{}, cfg.AudioSampleRate, cfg.AudioVolumePercent)
	dispatcher := face.NewDispatcher(store, faceClock, synth, cfg.CommandLockTimeout)

	broadcaster := broadcast.NewBroadcaster(cfg.MaxFeedClients, clock)

	loopCtx, cancelLoop := context.WithCancel(context.Background())
	loop := render.NewLoop(
		store,
		clock,
		faceClock,
		face.DefaultGeometry(),
		time.Duration(cfg.RenderTickMs)*time.Millisecond,
		cfg.RenderLockTimeout,
		broadcaster.Publish,
	)
	go loop.Run(loopCtx)

	srv := server.NewServer(cfg, dispatcher, store, broadcaster, clock)

	done := runGracefulShutdown(srv, broadcaster, cancelLoop)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
