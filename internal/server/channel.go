package server

import (
	"context"
	"log/slog"
	"net"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/weighsoft/weighbridge/internal/broadcast"
)

// Hardware dashboards connect from arbitrary origins.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ChannelServer is the WebSocket endpoint for one channel. It serves a
// single upgrade route on its own port; every connection becomes a
// subscriber of the channel's broadcaster for its lifetime.
type ChannelServer struct {
	name        string
	echo        *echo.Echo
	broadcaster *broadcast.Broadcaster
}

func NewChannelServer(name string, broadcaster *broadcast.Broadcaster) *ChannelServer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &ChannelServer{
		name:        name,
		echo:        e,
		broadcaster: broadcaster,
	}
	e.GET("/*", s.handleWebSocket)

	return s
}

// Serve runs the server on an already-bound listener.
func (s *ChannelServer) Serve(ln net.Listener) error {
	s.echo.Listener = ln
	return s.echo.Start("")
}

func (s *ChannelServer) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *ChannelServer) handleWebSocket(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Warn("WebSocket upgrade failed", "channel", s.name, "error", err)
		return nil
	}

	if err := s.broadcaster.Register(conn); err != nil {
		slog.Warn("WebSocket registration refused", "channel", s.name, "error", err)
		// Connection already closed by the broadcaster.
		return nil
	}

	// Read pump: clients send nothing meaningful; reading detects
	// disconnects and services pong frames.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	s.broadcaster.Unregister(conn)
	return nil
}
