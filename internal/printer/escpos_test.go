package printer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

var sampleTicket = Ticket{
	TicketNumber: "WB-000123",
	VehicleID:    "KA-01-AB-1234",
	Supplier:     "Acme Aggregates",
	Address:      "12 Quarry Road",
	TimeIn:       "2024-03-01 08:15",
	TimeOut:      "2024-03-01 08:47",
	WeightIn:     "12450 kg",
	WeightOut:    "4320 kg",
	GrossWeight:  "8130 kg",
	Title:        "WEIGHBRIDGE TICKET",
	Footer:       "Thank you",
}

func TestRender_ContainsAllFields(t *testing.T) {
	out := Render(sampleTicket)

	for _, want := range []string{
		"WB-000123", "KA-01-AB-1234", "Acme Aggregates", "12 Quarry Road",
		"12450 kg", "4320 kg", "8130 kg", "WEIGHBRIDGE TICKET", "Thank you",
	} {
		assert.True(t, bytes.Contains(out, []byte(want)), "output missing %q", want)
	}
}

func TestRender_StartsWithInitAndEndsWithCut(t *testing.T) {
	out := Render(sampleTicket)

	assert.True(t, bytes.HasPrefix(out, cmdInit))
	assert.True(t, bytes.HasSuffix(out, cmdFeedAndCut))
}

func TestRender_OmitsEmptyFields(t *testing.T) {
	out := Render(Ticket{TicketNumber: "WB-1"})

	assert.True(t, bytes.Contains(out, []byte("Ticket No")))
	assert.False(t, bytes.Contains(out, []byte("Supplier")))
	assert.False(t, bytes.Contains(out, []byte("Time Out")))
}

func TestRender_TitleIsCenteredAndBold(t *testing.T) {
	out := Render(sampleTicket)

	title := bytes.Index(out, []byte("WEIGHBRIDGE TICKET"))
	center := bytes.Index(out, cmdAlignCenter)
	bold := bytes.Index(out, cmdBoldOn)
	assert.True(t, center >= 0 && center < title)
	assert.True(t, bold >= 0 && bold < title)
}
