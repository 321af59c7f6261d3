package printer

import (
	"bytes"
	"fmt"
)

// ESC/POS command sequences.
var (
	cmdInit        = []byte{0x1B, 0x40}             // ESC @
	cmdAlignLeft   = []byte{0x1B, 0x61, 0x00}       // ESC a 0
	cmdAlignCenter = []byte{0x1B, 0x61, 0x01}       // ESC a 1
	cmdBoldOn      = []byte{0x1B, 0x45, 0x01}       // ESC E 1
	cmdBoldOff     = []byte{0x1B, 0x45, 0x00}       // ESC E 0
	cmdDoubleSize  = []byte{0x1D, 0x21, 0x11}       // GS ! 0x11
	cmdNormalSize  = []byte{0x1D, 0x21, 0x00}       // GS ! 0
	cmdFeedAndCut  = []byte{0x1D, 0x56, 0x42, 0x00} // GS V B 0
)

const lineWidth = 42 // characters on an 80mm printer at normal size

// Render produces the ESC/POS byte stream for a ticket.
func Render(t Ticket) []byte {
	var buf bytes.Buffer

	buf.Write(cmdInit)

	if t.Title != "" {
		buf.Write(cmdAlignCenter)
		buf.Write(cmdBoldOn)
		buf.Write(cmdDoubleSize)
		buf.WriteString(t.Title + "\n")
		buf.Write(cmdNormalSize)
		buf.Write(cmdBoldOff)
	}

	buf.Write(cmdAlignLeft)
	buf.WriteString(separator() + "\n")

	writeField(&buf, "Ticket No", t.TicketNumber)
	writeField(&buf, "Vehicle", t.VehicleID)
	writeField(&buf, "Supplier", t.Supplier)
	writeField(&buf, "Address", t.Address)

	buf.WriteString(separator() + "\n")

	writeField(&buf, "Time In", t.TimeIn)
	writeField(&buf, "Time Out", t.TimeOut)
	writeField(&buf, "Weight In", t.WeightIn)
	writeField(&buf, "Weight Out", t.WeightOut)

	buf.Write(cmdBoldOn)
	writeField(&buf, "Gross Weight", t.GrossWeight)
	buf.Write(cmdBoldOff)

	buf.WriteString(separator() + "\n")

	if t.Footer != "" {
		buf.Write(cmdAlignCenter)
		buf.WriteString(t.Footer + "\n")
		buf.Write(cmdAlignLeft)
	}

	buf.WriteString("\n\n")
	buf.Write(cmdFeedAndCut)

	return buf.Bytes()
}

func writeField(buf *bytes.Buffer, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(buf, "%-14s: %s\n", label, value)
}

func separator() string {
	return string(bytes.Repeat([]byte{'-'}, lineWidth))
}
