package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Device Metrics
var (
	// DeviceBytesReceived tracks bytes received from hardware by channel
	DeviceBytesReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "device_bytes_received_total",
			Help: "Total bytes received from hardware devices by channel",
		},
		[]string{"channel"},
	)

	// DeviceChunksReceived tracks read events from hardware by channel
	DeviceChunksReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "device_chunks_received_total",
			Help: "Total read events received from hardware devices by channel",
		},
		[]string{"channel"},
	)

	// DeviceLinkState tracks the scale link state (0=disconnected, 1=connecting, 2=connected)
	DeviceLinkState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "device_link_state",
			Help: "Current device link state (0=disconnected, 1=connecting, 2=connected)",
		},
		[]string{"channel"},
	)

	// DeviceLinkReconnectsTotal tracks scheduled reconnect attempts
	DeviceLinkReconnectsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "device_link_reconnects_total",
			Help: "Total reconnect attempts scheduled by channel",
		},
		[]string{"channel"},
	)

	// DeviceListenerPeers tracks currently connected inbound hardware peers
	DeviceListenerPeers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "device_listener_peers",
			Help: "Currently connected inbound hardware peers",
		},
	)
)

// Broadcaster Metrics
var (
	// BroadcasterConnectedClients tracks connected WebSocket clients by channel
	BroadcasterConnectedClients = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "broadcaster_connected_clients",
			Help: "Number of connected WebSocket clients by channel",
		},
		[]string{"channel"},
	)

	// BroadcasterFramesTotal tracks frames fanned out to clients by channel
	BroadcasterFramesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broadcaster_frames_total",
			Help: "Total frames sent to WebSocket clients by channel",
		},
		[]string{"channel"},
	)

	// BroadcasterDroppedFrames tracks frames dropped because a client buffer was full
	BroadcasterDroppedFrames = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broadcaster_dropped_frames_total",
			Help: "Total frames dropped due to full client buffers by channel",
		},
		[]string{"channel"},
	)

	// WebSocketMessageSendDuration tracks frame write latency
	WebSocketMessageSendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "websocket_message_send_duration_seconds",
			Help:    "WebSocket message send duration in seconds",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
		},
	)

	// WebSocketPingFailures tracks failed keepalive pings
	WebSocketPingFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_ping_failures_total",
			Help: "Total failed WebSocket keepalive pings",
		},
	)
)

// Printer Metrics
var (
	// PrintJobsTotal tracks print jobs by status (ok/error)
	PrintJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "print_jobs_total",
			Help: "Total print jobs by status",
		},
		[]string{"status"},
	)

	// PrintDuration tracks end-to-end print job duration
	PrintDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "print_duration_seconds",
			Help:    "Print job duration in seconds",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5},
		},
	)
)
