package bridge

import (
	"net"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const reconnectDelay = 5 * time.Second

// fakeDevice is a TCP endpoint standing in for the scale terminal.
type fakeDevice struct {
	ln    *net.TCPListener
	conns chan net.Conn
}

func newFakeDevice(t *testing.T) *fakeDevice {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	d := &fakeDevice{ln: ln.(*net.TCPListener), conns: make(chan net.Conn, 4)}
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			d.conns <- conn
		}
	}()
	return d
}

func (d *fakeDevice) addr() string { return d.ln.Addr().String() }

func (d *fakeDevice) accept(t *testing.T) net.Conn {
	t.Helper()
	select {
	case conn := <-d.conns:
		return conn
	case <-time.After(2 * time.Second):
		t.Fatal("no connection accepted")
		return nil
	}
}

func (d *fakeDevice) expectNoConn(t *testing.T, within time.Duration) {
	t.Helper()
	select {
	case conn := <-d.conns:
		conn.Close()
		t.Fatal("unexpected connection")
	case <-time.After(within):
	}
}

func newTestLink(t *testing.T, addr string, clock clockwork.Clock) (*DeviceLink, chan []byte, chan LinkState) {
	t.Helper()
	data := make(chan []byte, 16)
	states := make(chan LinkState, 16)
	link := NewDeviceLink("weight", addr, reconnectDelay, clock,
		func(chunk []byte) { data <- chunk },
		func(s LinkState) { states <- s },
	)
	t.Cleanup(func() { link.Stop() })
	return link, data, states
}

func waitForState(t *testing.T, states chan LinkState, want LinkState) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case s := <-states:
			if s == want {
				return
			}
		case <-deadline:
			t.Fatalf("state %v never reached", want)
		}
	}
}

func TestDeviceLink_ReceivesChunksVerbatim(t *testing.T) {
	device := newFakeDevice(t)
	link, data, states := newTestLink(t, device.addr(), clockwork.NewFakeClock())

	link.Start()
	conn := device.accept(t)
	waitForState(t, states, StateConnected)

	_, err := conn.Write([]byte("TAG001"))
	require.NoError(t, err)

	select {
	case chunk := <-data:
		assert.Equal(t, "TAG001", string(chunk))
	case <-time.After(2 * time.Second):
		t.Fatal("chunk never delivered")
	}

	conn.Close()
	waitForState(t, states, StateDisconnected)
}

func TestDeviceLink_SchedulesSingleReconnectAfterDelay(t *testing.T) {
	clock := clockwork.NewFakeClock()
	device := newFakeDevice(t)
	link, _, states := newTestLink(t, device.addr(), clock)

	link.Start()
	conn := device.accept(t)
	waitForState(t, states, StateConnected)

	conn.Close()
	waitForState(t, states, StateDisconnected)

	// The reconnect timer is armed but has not fired: no dial yet.
	clock.BlockUntil(1)
	device.expectNoConn(t, 200*time.Millisecond)

	clock.Advance(reconnectDelay)
	reconn := device.accept(t)
	waitForState(t, states, StateConnected)

	// Exactly one reconnect: no second dial follows.
	device.expectNoConn(t, 200*time.Millisecond)
	reconn.Close()
}

func TestDeviceLink_RetriesAfterDialFailure(t *testing.T) {
	clock := clockwork.NewFakeClock()

	// Grab a port nothing listens on.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	link, _, _ := newTestLink(t, addr, clock)
	link.Start()

	// First dial fails and a retry timer is armed.
	clock.BlockUntil(1)
	clock.Advance(reconnectDelay)

	// Second dial fails too and another retry is armed: the link never
	// gives up.
	clock.BlockUntil(1)
	assert.Equal(t, StateDisconnected, link.State())
}

func TestDeviceLink_StopSuppressesPendingReconnect(t *testing.T) {
	clock := clockwork.NewFakeClock()
	device := newFakeDevice(t)
	link, _, states := newTestLink(t, device.addr(), clock)

	link.Start()
	conn := device.accept(t)
	waitForState(t, states, StateConnected)

	conn.Close()
	waitForState(t, states, StateDisconnected)
	clock.BlockUntil(1)

	link.Stop()

	// The timer firing after shutdown must not dial.
	clock.Advance(reconnectDelay)
	device.expectNoConn(t, 200*time.Millisecond)
}

func TestDeviceLink_StopWhileConnected(t *testing.T) {
	device := newFakeDevice(t)
	link, _, states := newTestLink(t, device.addr(), clockwork.NewFakeClock())

	link.Start()
	device.accept(t)
	waitForState(t, states, StateConnected)

	link.Stop()
	assert.Equal(t, StateDisconnected, link.State())
}
