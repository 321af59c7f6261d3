package broadcast

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/weighsoft/weighbridge/internal/metrics"
)

const (
	commandTimeout = 5 * time.Second
	stopTimeout    = 10 * time.Second
	cmdBufferSize  = 256
)

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
	data []byte
}

type clientCountCmd struct {
	baseBroadcasterCmd
	replyChannel chan int
}

type stopCmd struct {
	baseBroadcasterCmd
}

// Broadcaster fans out device payloads to the WebSocket clients of one channel.
type Broadcaster struct {
	channel    string
	cmdCh      chan broadcasterCmd
	clock      clockwork.Clock
	clients    map[*websocket.Conn]*clientWriter
	maxClients int
	done       chan struct{}
}

// NewBroadcaster creates a broadcaster for the named channel and starts its actor goroutine.
// maxClients limits concurrent connections (prevents resource exhaustion).
func NewBroadcaster(channel string, maxClients int, clock clockwork.Clock) *Broadcaster {
	b := &Broadcaster{
		channel:    channel,
		cmdCh:      make(chan broadcasterCmd, cmdBufferSize),
		clock:      clock,
		clients:    make(map[*websocket.Conn]*clientWriter),
		maxClients: maxClients,
		done:       make(chan struct{}),
	}
	go b.run()
	return b
}

// Channel returns the channel name this broadcaster serves.
func (b *Broadcaster) Channel() string {
	return b.channel
}

// Register adds a client connection.
// Returns an error only if the per-channel client limit is reached.
func (b *Broadcaster) Register(conn *websocket.Conn) error {
	errCh := make(chan error, 1)
	b.cmdCh <- registerCmd{connection: conn, errorChannel: errCh}

	timer := b.clock.NewTimer(commandTimeout)
	defer timer.Stop()

	select {
	case err := <-errCh:
		return err
	case <-timer.Chan():
		return fmt.Errorf("register command timed out after %v", commandTimeout)
	}
}

// Unregister removes a client connection. Idempotent.
func (b *Broadcaster) Unregister(conn *websocket.Conn) {
	b.cmdCh <- unregisterCmd{connection: conn}
}

// Publish sends data verbatim to every currently connected client as one
// text frame. Clients whose send buffer is full miss the frame; they are
// never queued for retroactive delivery.
func (b *Broadcaster) Publish(data []byte) {
	b.cmdCh <- publishCmd{data: data}
}

// ClientCount returns the number of connected clients.
// Returns -1 if the command times out.
func (b *Broadcaster) ClientCount() int {
	replyCh := make(chan int, 1)
	b.cmdCh <- clientCountCmd{replyChannel: replyCh}

	timer := b.clock.NewTimer(commandTimeout)
	defer timer.Stop()

	select {
	case count := <-replyCh:
		return count
	case <-timer.Chan():
		slog.Warn("ClientCount timed out", "channel", b.channel, "timeout", commandTimeout)
		return -1
	}
}

// Stop shuts down the broadcaster, closing all client connections.
// Blocks until the actor goroutine has exited or the stop timeout is reached.
func (b *Broadcaster) Stop() {
	b.cmdCh <- stopCmd{}

	timer := b.clock.NewTimer(stopTimeout)
	defer timer.Stop()

	select {
	case <-b.done:
		slog.Info("Broadcaster stopped", "channel", b.channel)
	case <-timer.Chan():
		slog.Warn("Broadcaster stop timeout exceeded", "channel", b.channel, "timeout", stopTimeout)
	}
}

func (b *Broadcaster) run() {
	defer close(b.done)

	for cmd := range b.cmdCh {
		switch c := cmd.(type) {
		case registerCmd:
			b.handleRegister(c)
		case unregisterCmd:
			b.handleUnregister(c)
		case publishCmd:
			b.handlePublish(c)
		case clientCountCmd:
			c.replyChannel <- len(b.clients)
		case stopCmd:
			b.handleStop()
			return
		default:
			slog.Warn("Broadcaster received unknown command type", "channel", b.channel, "command_type", fmt.Sprintf("%T", cmd))
		}
	}
}

func (b *Broadcaster) handleRegister(c registerCmd) {
	if len(b.clients) >= b.maxClients {
		slog.Warn("Rejecting client: max clients reached", "channel", b.channel, "max_clients", b.maxClients)
		c.connection.Close()
		c.errorChannel <- fmt.Errorf("max clients per channel (%d) reached", b.maxClients)
		return
	}

	cw := newClientWriter(uuid.New(), c.connection, b.clock)
	b.clients[c.connection] = cw

	metrics.BroadcasterConnectedClients.WithLabelValues(b.channel).Set(float64(len(b.clients)))

	slog.Debug("Client registered", "channel", b.channel, "client_id", cw.id.String(), "total_clients", len(b.clients))
	c.errorChannel <- nil
}

func (b *Broadcaster) handleUnregister(c unregisterCmd) {
	cw, exists := b.clients[c.connection]
	if !exists {
		return
	}

	cw.stop()
	delete(b.clients, c.connection)

	metrics.BroadcasterConnectedClients.WithLabelValues(b.channel).Set(float64(len(b.clients)))
	slog.Debug("Client unregistered", "channel", b.channel, "client_id", cw.id.String(), "remaining_clients", len(b.clients))
}

func (b *Broadcaster) handlePublish(c publishCmd) {
	for _, writer := range b.clients {
		select {
		case writer.sendChannel <- c.data:
			metrics.BroadcasterFramesTotal.WithLabelValues(b.channel).Inc()
		default:
			// Full buffer means the client is not keeping up. The frame is
			// dropped; removal happens when its read pump observes the
			// close/error, not here.
			metrics.BroadcasterDroppedFrames.WithLabelValues(b.channel).Inc()
			slog.Warn("Dropping frame for slow client", "channel", b.channel, "client_id", writer.id.String())
		}
	}
}

func (b *Broadcaster) handleStop() {
	slog.Info("Broadcaster shutting down", "channel", b.channel, "clients", len(b.clients))

	for conn, cw := range b.clients {
		cw.stopGraceful("Server shutting down")
		delete(b.clients, conn)
	}

	metrics.BroadcasterConnectedClients.WithLabelValues(b.channel).Set(0)
}
