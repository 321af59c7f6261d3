package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/weighsoft/weighbridge/internal/broadcast"
)

// WSServer is the per-channel WebSocket endpoint started by the router.
type WSServer interface {
	Serve(ln net.Listener) error
	Shutdown(ctx context.Context) error
}

// Channel pairs one hardware data source with its broadcaster and
// WebSocket endpoint. The data source itself (link or listener) is wired
// to the broadcaster by the caller via the data callback.
type Channel struct {
	Name        string
	WSAddr      string
	WS          WSServer
	Broadcaster *broadcast.Broadcaster
}

// Router owns the startup and shutdown sequence of the bridge: it binds
// every port first (rolling back already-bound listeners if any bind
// fails), then starts the WebSocket servers, then the device sources.
type Router struct {
	channels     []Channel
	link         *DeviceLink
	listener     *DeviceListener
	listenerAddr string

	wsListeners []net.Listener
	deviceLn    net.Listener
}

// NewRouter creates a router. link and listener may each be nil when the
// deployment runs only one side of the bridge.
func NewRouter(channels []Channel, link *DeviceLink, listener *DeviceListener, listenerAddr string) *Router {
	return &Router{
		channels:     channels,
		link:         link,
		listener:     listener,
		listenerAddr: listenerAddr,
	}
}

// Start binds and launches everything. On any bind failure it closes the
// listeners bound so far and returns the error; nothing is left half
// started.
func (r *Router) Start() error {
	var bound []net.Listener
	rollback := func() {
		for _, ln := range bound {
			_ = ln.Close()
		}
	}

	for _, ch := range r.channels {
		ln, err := net.Listen("tcp", ch.WSAddr)
		if err != nil {
			rollback()
			return fmt.Errorf("bind websocket %s for channel %s: %w", ch.WSAddr, ch.Name, err)
		}
		bound = append(bound, ln)
		r.wsListeners = append(r.wsListeners, ln)
	}

	if r.listener != nil {
		ln, err := net.Listen("tcp", r.listenerAddr)
		if err != nil {
			rollback()
			return fmt.Errorf("bind device listener %s: %w", r.listenerAddr, err)
		}
		bound = append(bound, ln)
		r.deviceLn = ln
	}

	// Broadcasters and their WebSocket endpoints come up before any
	// device source so no early payload races a binding port.
	for i, ch := range r.channels {
		ws := ch.WS
		ln := r.wsListeners[i]
		name := ch.Name
		go func() {
			if err := ws.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("WebSocket server error", "channel", name, "error", err)
			}
		}()
		slog.Info("WebSocket channel listening", "channel", name, "addr", ln.Addr().String())
	}

	if r.listener != nil {
		r.listener.Serve(r.deviceLn)
		slog.Info("Device listener accepting", "addr", r.deviceLn.Addr().String())
	}
	if r.link != nil {
		r.link.Start()
	}

	return nil
}

// Shutdown tears the bridge down: stop accepting new peers, stop the
// links (no further reconnects), then drop all subscribers. No delivery
// guarantee is made for payloads in flight.
func (r *Router) Shutdown(ctx context.Context) {
	if r.listener != nil {
		r.listener.Close()
	}
	if r.link != nil {
		r.link.Stop()
	}

	for _, ch := range r.channels {
		if err := ch.WS.Shutdown(ctx); err != nil {
			slog.Error("WebSocket server shutdown error", "channel", ch.Name, "error", err)
		}
	}
	for _, ch := range r.channels {
		ch.Broadcaster.Stop()
	}
}
