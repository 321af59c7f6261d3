package printer

import (
	"context"
	"fmt"
	"net"
	"time"
)

const printTimeout = 10 * time.Second

// Ticket is the structured record a client asks us to print.
// Field contents are free text; nothing is parsed or validated here.
type Ticket struct {
	TicketNumber string `json:"ticketNumber"`
	VehicleID    string `json:"vehicleId"`
	Supplier     string `json:"supplier"`
	Address      string `json:"address"`
	TimeIn       string `json:"timeIn"`
	TimeOut      string `json:"timeOut"`
	WeightIn     string `json:"weightIn"`
	WeightOut    string `json:"weightOut"`
	GrossWeight  string `json:"grossWeight"`
	Title        string `json:"title"`
	Footer       string `json:"footer"`
}

// TicketPrinter prints a ticket. Implementations own transport and
// formatting; callers treat printing as an opaque capability.
type TicketPrinter interface {
	Print(ctx context.Context, ticket Ticket) error
}

// Network prints over a raw TCP socket (JetDirect style, port 9100).
type Network struct {
	addr    string
	timeout time.Duration
}

// NewNetwork creates a printer client for addr (host:port).
func NewNetwork(addr string) *Network {
	return &Network{addr: addr, timeout: printTimeout}
}

func (p *Network) Print(ctx context.Context, ticket Ticket) error {
	data := Render(ticket)

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", p.addr)
	if err != nil {
		return fmt.Errorf("printer dial %s: %w", p.addr, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetWriteDeadline(deadline)
	}

	if _, err := conn.Write(data); err != nil {
		return fmt.Errorf("printer write: %w", err)
	}
	return nil
}

// Noop is used when no printer is configured; every job succeeds.
type Noop struct{}

func (Noop) Print(context.Context, Ticket) error { return nil }
