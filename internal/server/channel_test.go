package server

import (
	"context"
	"net"
	"testing"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weighsoft/weighbridge/internal/broadcast"
)

func startChannelServer(t *testing.T, broadcaster *broadcast.Broadcaster) string {
	t.Helper()

	cs := NewChannelServer(broadcaster.Channel(), broadcaster)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	go func() { _ = cs.Serve(ln) }()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = cs.Shutdown(ctx)
	})

	return ln.Addr().String()
}

func waitForClients(b *broadcast.Broadcaster, expected int) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if b.ClientCount() == expected {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

func TestChannelServer_SubscribeAndReceive(t *testing.T) {
	broadcaster := broadcast.NewBroadcaster("weight", 10, clockwork.NewRealClock())
	t.Cleanup(broadcaster.Stop)

	addr := startChannelServer(t, broadcaster)

	conn, _, err := ws.DefaultDialer.Dial("ws://"+addr+"/", nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.True(t, waitForClients(broadcaster, 1))

	broadcaster.Publish([]byte("12.5kg"))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	msgType, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, ws.TextMessage, msgType)
	assert.Equal(t, "12.5kg", string(msg))
}

func TestChannelServer_DisconnectUnsubscribes(t *testing.T) {
	broadcaster := broadcast.NewBroadcaster("rfid", 10, clockwork.NewRealClock())
	t.Cleanup(broadcaster.Stop)

	addr := startChannelServer(t, broadcaster)

	conn, _, err := ws.DefaultDialer.Dial("ws://"+addr+"/", nil)
	require.NoError(t, err)
	require.True(t, waitForClients(broadcaster, 1))

	conn.Close()
	assert.True(t, waitForClients(broadcaster, 0))
}

func TestChannelServer_AnyPathUpgrades(t *testing.T) {
	broadcaster := broadcast.NewBroadcaster("rfid", 10, clockwork.NewRealClock())
	t.Cleanup(broadcaster.Stop)

	addr := startChannelServer(t, broadcaster)

	// The hardware-facing endpoint is path-agnostic, like the raw
	// socket servers it replaces.
	conn, _, err := ws.DefaultDialer.Dial("ws://"+addr+"/anything", nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.True(t, waitForClients(broadcaster, 1))
}
