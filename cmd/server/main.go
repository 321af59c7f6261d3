package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/weighsoft/weighbridge/internal/bridge"
	"github.com/weighsoft/weighbridge/internal/broadcast"
	"github.com/weighsoft/weighbridge/internal/config"
	"github.com/weighsoft/weighbridge/internal/logging"
	"github.com/weighsoft/weighbridge/internal/printer"
	"github.com/weighsoft/weighbridge/internal/server"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupPrinter(cfg *config.Config) printer.TicketPrinter {
	addr := cfg.PrinterAddr()
	if addr == "" {
		slog.Info("No printer configured, print jobs will be discarded")
		return printer.Noop{}
	}
	slog.Info("Using network printer", "addr", addr)
	return printer.NewNetwork(addr)
}

func runGracefulShutdown(srv *server.Server, router *bridge.Router) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		router.Shutdown(shutdownCtx)

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "http_port", cfg.HTTPPort)

	rfidBroadcaster := broadcast.NewBroadcaster("rfid", cfg.MaxClientsPerChannel, clock)
	weightBroadcaster := broadcast.NewBroadcaster("weight", cfg.MaxClientsPerChannel, clock)

	scaleLink := bridge.NewDeviceLink("weight", cfg.ScaleAddr(), cfg.ReconnectDelay, clock,
		func(chunk []byte) { weightBroadcaster.Publish(chunk) },
		func(state bridge.LinkState) {
			slog.Info("Scale link state changed", "state", state.String())
		},
	)
	rfidListener := bridge.NewDeviceListener("rfid",
		func(chunk []byte) { rfidBroadcaster.Publish(chunk) },
	)

	router := bridge.NewRouter([]bridge.Channel{
		{
			Name:        "rfid",
			WSAddr:      ":" + cfg.RFIDWSPort,
			WS:          server.NewChannelServer("rfid", rfidBroadcaster),
			Broadcaster: rfidBroadcaster,
		},
		{
			Name:        "weight",
			WSAddr:      ":" + cfg.WeightWSPort,
			WS:          server.NewChannelServer("weight", weightBroadcaster),
			Broadcaster: weightBroadcaster,
		},
	}, scaleLink, rfidListener, ":"+cfg.RFIDListenPort)

	ticketPrinter := setupPrinter(cfg)
	srv := server.NewServer(cfg, ticketPrinter, scaleLink, rfidListener, rfidBroadcaster, weightBroadcaster)

	// Port bindings are fixed configuration; a failed bind is fatal and
	// Start leaves nothing half bound.
	if err := router.Start(); err != nil {
		slog.Error("Failed to start bridge", "error", err)
		os.Exit(1)
	}

	done := runGracefulShutdown(srv, router)

	slog.Info("Server starting", "port", cfg.HTTPPort)
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
