package bridge

import (
	"context"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/weighsoft/weighbridge/internal/metrics"
)

const readBufferSize = 4096

// LinkState is the connection state of a DeviceLink.
type LinkState int

const (
	StateDisconnected LinkState = iota
	StateConnecting
	StateConnected
)

func (s LinkState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "unknown"
	}
}

// DataFunc receives one chunk per transport read event, unmodified.
type DataFunc func(data []byte)

// StateFunc observes DeviceLink state transitions.
type StateFunc func(state LinkState)

// DeviceLink maintains a resilient outbound TCP connection to a single
// hardware endpoint. After a close or dial failure it schedules exactly
// one reconnect attempt after a fixed delay, forever. Dial and read
// errors are logged, never returned.
type DeviceLink struct {
	channel string
	addr    string
	delay   time.Duration
	clock   clockwork.Clock
	onData  DataFunc
	onState StateFunc

	mu    sync.Mutex
	state LinkState
	conn  net.Conn

	cancel context.CancelFunc
	done   chan struct{}
}

// NewDeviceLink creates a link for the named channel targeting addr.
// onState is optional.
func NewDeviceLink(channel, addr string, delay time.Duration, clock clockwork.Clock, onData DataFunc, onState StateFunc) *DeviceLink {
	return &DeviceLink{
		channel: channel,
		addr:    addr,
		delay:   delay,
		clock:   clock,
		onData:  onData,
		onState: onState,
		done:    make(chan struct{}),
	}
}

// Start begins the connect/read/reconnect cycle in a background goroutine.
func (l *DeviceLink) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	go l.run(ctx)
}

// Stop terminates the link. No further reconnect attempts are scheduled;
// a reconnect timer that fires after Stop never dials. Blocks until the
// link goroutine has exited.
func (l *DeviceLink) Stop() {
	if l.cancel == nil {
		return
	}
	l.cancel()

	l.mu.Lock()
	if l.conn != nil {
		_ = l.conn.Close()
	}
	l.mu.Unlock()

	<-l.done
}

// State returns the current connection state.
func (l *DeviceLink) State() LinkState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

func (l *DeviceLink) run(ctx context.Context) {
	defer close(l.done)
	defer l.setState(StateDisconnected)

	var dialer net.Dialer
	for {
		l.setState(StateConnecting)
		conn, err := dialer.DialContext(ctx, "tcp", l.addr)
		if ctx.Err() != nil {
			if conn != nil {
				_ = conn.Close()
			}
			return
		}

		if err != nil {
			slog.Warn("Device dial failed", "channel", l.channel, "addr", l.addr, "error", err)
			l.setState(StateDisconnected)
		} else {
			l.setConn(conn)
			l.setState(StateConnected)
			slog.Info("Device connected", "channel", l.channel, "addr", l.addr)

			l.readLoop(conn)

			l.setConn(nil)
			_ = conn.Close()
			l.setState(StateDisconnected)
			slog.Info("Device disconnected", "channel", l.channel, "addr", l.addr)

			if ctx.Err() != nil {
				return
			}
		}

		// Exactly one pending reconnect at a time; suppressed once the
		// link is stopped.
		metrics.DeviceLinkReconnectsTotal.WithLabelValues(l.channel).Inc()
		timer := l.clock.NewTimer(l.delay)
		select {
		case <-timer.Chan():
		case <-ctx.Done():
			timer.Stop()
			return
		}
	}
}

func (l *DeviceLink) readLoop(conn net.Conn) {
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

func (l *DeviceLink) setConn(conn net.Conn) {
	l.mu.Lock()
	l.conn = conn
	l.mu.Unlock()
}

func (l *DeviceLink) setState(state LinkState) {
	l.mu.Lock()
	changed := l.state != state
	l.state = state
	l.mu.Unlock()

	if !changed {
		return
	}
	metrics.DeviceLinkState.WithLabelValues(l.channel).Set(float64(state))
	if l.onState != nil {
		l.onState(state)
	}
}
