package server

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/weighsoft/weighbridge/internal/version"
)

func (s *Server) handleLiveness(c echo.Context) error {
	uptime := time.Since(s.startTime).Seconds()
	return c.JSON(200, map[string]any{
		"status": "ok",
		"uptime": uptime,
	})
}

// handleReadiness reports bridge status. A disconnected scale is not a
// failure (the link self-heals), so readiness never degrades on it; the
// state is surfaced for operators.
func (s *Server) handleReadiness(c echo.Context) error {
	channels := make(map[string]int, len(s.channels))
	for _, b := range s.channels {
		channels[b.Channel()] = b.ClientCount()
	}

	resp := map[string]any{
		"status":   "ready",
		"channels": channels,
	}
	if s.link != nil {
		resp["scale_link"] = s.link.State().String()
	}
	if s.listener != nil {
		resp["device_peers"] = s.listener.PeerCount()
	}

	return c.JSON(200, resp)
}

func (s *Server) handleVersion(c echo.Context) error {
	return c.JSON(200, version.Get())
}
