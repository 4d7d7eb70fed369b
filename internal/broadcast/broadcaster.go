package broadcast

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/Travid/littleAI/internal/face"
	"github.com/Travid/littleAI/internal/metrics"
)

const commandBufferSize = 256

// broadcasterCmd is the command interface for the Broadcaster actor.
type broadcasterCmd interface{ isBroadcasterCmd() }

type baseBroadcasterCmd struct{}

func (baseBroadcasterCmd) isBroadcasterCmd() {}

type registerCmd struct {
	baseBroadcasterCmd
	connection   *websocket.Conn
	errorChannel chan error
}

type unregisterCmd struct {
	baseBroadcasterCmd
	connection *websocket.Conn
}

type publishCmd struct {
	baseBroadcasterCmd
	frame face.Frame
}

type clientCountCmd struct {
	baseBroadcasterCmd
	replyChannel chan int
}

type stopCmd struct {
	baseBroadcasterCmd
}

// Broadcaster fans out render frames to connected renderer clients.
type Broadcaster struct {
	cmdCh      chan broadcasterCmd
	clock      clockwork.Clock
	clients    map[*websocket.Conn]*clientWriter
	maxClients int
}

// NewBroadcaster creates and starts a broadcaster accepting at most
// maxClients concurrent renderer connections.
func NewBroadcaster(maxClients int, clock clockwork.Clock) *Broadcaster {
	b := &Broadcaster{
		cmdCh:      make(chan broadcasterCmd, commandBufferSize),
		clock:      clock,
		clients:    make(map[*websocket.Conn]*clientWriter),
		maxClients: maxClients,
	}
	go b.run()
	return b
}

// Register adds a renderer client. Returns an error only when the client cap
// is reached, in which case the connection is closed.
func (b *Broadcaster) Register(conn *websocket.Conn) error {
	errCh := make(chan error, 1)
	b.cmdCh <- registerCmd{connection: conn, errorChannel: errCh}
	return <-errCh
}

// Unregister removes a renderer client.
func (b *Broadcaster) Unregister(conn *websocket.Conn) {
	b.cmdCh <- unregisterCmd{connection: conn}
}

// Publish hands a frame to the fan-out. Never blocks: when the actor is
// backlogged the frame is dropped, the next tick supersedes it anyway.
func (b *Broadcaster) Publish(frame face.Frame) {
	select {
	case b.cmdCh <- publishCmd{frame: frame}:
	default:
	}
}

// ClientCount returns the number of connected renderer clients.
func (b *Broadcaster) ClientCount() int {
	replyCh := make(chan int, 1)
	b.cmdCh <- clientCountCmd{replyChannel: replyCh}
	return <-replyCh
}

// Stop shuts down the broadcaster, closing all client connections.
func (b *Broadcaster) Stop() {
	b.cmdCh <- stopCmd{}
}

func (b *Broadcaster) run() {
	for cmd := range b.cmdCh {
		switch c := cmd.(type) {
		case registerCmd:
			b.handleRegister(c)
		case unregisterCmd:
			b.handleUnregister(c)
		case publishCmd:
			b.handlePublish(c.frame)
		case clientCountCmd:
			c.replyChannel <- len(b.clients)
		case stopCmd:
			b.handleStop()
			return
		default:
			slog.Warn("broadcaster: unknown command", "type", fmt.Sprintf("%T", cmd))
		}
	}
}

func (b *Broadcaster) handleRegister(c registerCmd) {
	if len(b.clients) >= b.maxClients {
		slog.Warn("rejecting renderer client: cap reached", "max_clients", b.maxClients)
		_ = c.connection.Close()
		c.errorChannel <- fmt.Errorf("max render-feed clients (%d) reached", b.maxClients)
		return
	}

	b.clients[c.connection] = newClientWriter(c.connection, b.clock)
	metrics.FeedClients.Set(float64(len(b.clients)))
	slog.Info("renderer client registered", "total", len(b.clients))
	c.errorChannel <- nil
}

func (b *Broadcaster) handleUnregister(c unregisterCmd) {
	cw, exists := b.clients[c.connection]
	if !exists {
		return
	}

	cw.stop()
	delete(b.clients, c.connection)
	metrics.FeedClients.Set(float64(len(b.clients)))
	slog.Info("renderer client unregistered", "remaining", len(b.clients))
}

func (b *Broadcaster) handlePublish(frame face.Frame) {
	if len(b.clients) == 0 {
		return
	}

	data, err := json.Marshal(frame)
	if err != nil {
		slog.Error("failed to marshal frame", "error", err)
		return
	}

	var slow []*websocket.Conn
	for conn, writer := range b.clients {
		select {
		case writer.sendChannel <- data:
		default:
			slow = append(slow, conn)
		}
	}

	for _, conn := range slow {
		slog.Warn("evicting slow renderer client")
		metrics.FeedSlowClientsEvicted.Inc()
		b.handleUnregister(unregisterCmd{connection: conn})
	}
}

func (b *Broadcaster) handleStop() {
	for conn, cw := range b.clients {
		cw.stop()
		delete(b.clients, conn)
	}
	metrics.FeedClients.Set(0)
}
