package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestDeviceCounters(t *testing.T) {
	before := testutil.ToFloat64(DeviceBytesReceived.WithLabelValues("weight"))
	DeviceBytesReceived.WithLabelValues("weight").Add(6)
	after := testutil.ToFloat64(DeviceBytesReceived.WithLabelValues("weight"))
	assert.Equal(t, before+6, after)
}

func TestBroadcasterGauge(t *testing.T) {
	BroadcasterConnectedClients.WithLabelValues("rfid").Set(3)
	assert.Equal(t, 3.0, testutil.ToFloat64(BroadcasterConnectedClients.WithLabelValues("rfid")))
	BroadcasterConnectedClients.WithLabelValues("rfid").Set(0)
}

func TestPrintJobCounter(t *testing.T) {
	before := testutil.ToFloat64(PrintJobsTotal.WithLabelValues("ok"))
	PrintJobsTotal.WithLabelValues("ok").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(PrintJobsTotal.WithLabelValues("ok")))
}
