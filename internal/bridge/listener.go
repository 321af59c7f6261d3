package bridge

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/google/uuid"

	"github.com/weighsoft/weighbridge/internal/metrics"
)

// DeviceListener accepts inbound TCP connections from hardware that
// initiates contact. Peers are fully independent: a read error on one
// releases that peer only, with no retry (the hardware redials).
type DeviceListener struct {
	channel string
	onData  DataFunc

	mu     sync.Mutex
	ln     net.Listener
	peers  map[uuid.UUID]net.Conn
	closed bool

	wg sync.WaitGroup
}

// NewDeviceListener creates a listener for the named channel.
func NewDeviceListener(channel string, onData DataFunc) *DeviceListener {
	return &DeviceListener{
		channel: channel,
		onData:  onData,
		peers:   make(map[uuid.UUID]net.Conn),
	}
}

// ListenAndServe binds addr and starts accepting. A bind failure is
// returned to the caller; it is a startup precondition, not recoverable.
func (l *DeviceListener) ListenAndServe(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("device listener bind %s: %w", addr, err)
	}
	l.Serve(ln)
	return nil
}

// Serve starts the accept loop on an already-bound listener.
func (l *DeviceListener) Serve(ln net.Listener) {
	l.mu.Lock()
	l.ln = ln
	l.mu.Unlock()

	l.wg.Add(1)
	go l.acceptLoop(ln)
}

// Close stops accepting and disconnects all peers. Blocks until the
// accept loop and every peer goroutine have exited.
func (l *DeviceListener) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	ln := l.ln
	conns := make([]net.Conn, 0, len(l.peers))
	for _, conn := range l.peers {
		conns = append(conns, conn)
	}
	l.mu.Unlock()

	if ln != nil {
		_ = ln.Close()
	}
	for _, conn := range conns {
		_ = conn.Close()
	}
	l.wg.Wait()
}

// PeerCount returns the number of currently connected peers.
func (l *DeviceListener) PeerCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.peers)
}

func (l *DeviceListener) acceptLoop(ln net.Listener) {
	defer l.wg.Done()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			slog.Warn("Accept failed", "channel", l.channel, "error", err)
			continue
		}

		id := uuid.New()
		l.mu.Lock()
		if l.closed {
			l.mu.Unlock()
			_ = conn.Close()
			return
		}
		l.peers[id] = conn
		l.mu.Unlock()

		metrics.DeviceListenerPeers.Inc()
		slog.Info("Device peer connected", "channel", l.channel, "peer_id", id.String(), "remote_addr", conn.RemoteAddr().String())

		l.wg.Add(1)
		go l.servePeer(id, conn)
	}
}

func (l *DeviceListener) servePeer(id uuid.UUID, conn net.Conn) {
	defer l.wg.Done()
	defer l.releasePeer(id, conn)

	buf := make([]byte, readBufferSize)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			metrics.DeviceBytesReceived.WithLabelValues(l.channel).Add(float64(n))
			metrics.DeviceChunksReceived.WithLabelValues(l.channel).Inc()
			l.onData(chunk)
		}
		if err != nil {
			return
		}
	}
}

func (l *DeviceListener) releasePeer(id uuid.UUID, conn net.Conn) {
	_ = conn.Close()

	l.mu.Lock()
	_, tracked := l.peers[id]
	delete(l.peers, id)
	l.mu.Unlock()

	if tracked {
		metrics.DeviceListenerPeers.Dec()
		slog.Info("Device peer disconnected", "channel", l.channel, "peer_id", id.String(), "remote_addr", conn.RemoteAddr().String())
	}
}
