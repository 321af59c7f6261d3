package server

import (
	"context"
	"fmt"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/weighsoft/weighbridge/internal/bridge"
	"github.com/weighsoft/weighbridge/internal/broadcast"
	"github.com/weighsoft/weighbridge/internal/config"
	"github.com/weighsoft/weighbridge/internal/printer"
)

// Server is the main HTTP server (print endpoint + observability).
type Server struct {
	echo      *echo.Echo
	config    *config.Config
	printer   printer.TicketPrinter
	link      *bridge.DeviceLink
	listener  *bridge.DeviceListener
	channels  []*broadcast.Broadcaster
	startTime time.Time
}

func NewServer(cfg *config.Config, ticketPrinter printer.TicketPrinter, link *bridge.DeviceLink, listener *bridge.DeviceListener, channels ...*broadcast.Broadcaster) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	srv := &Server{
		echo:      e,
		config:    cfg,
		printer:   ticketPrinter,
		link:      link,
		listener:  listener,
		channels:  channels,
		startTime: time.Now(),
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	return s.echo.Start(fmt.Sprintf(":%s", s.config.HTTPPort))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
