// Package broadcast implements the per-channel WebSocket fan-out using the actor pattern.
//
// Each Broadcaster owns one channel (rfid or weight). Device bytes are pushed in via
// Publish and forwarded verbatim to every connected client, one frame per chunk.
// Uses single goroutine + command channel (no mutexes). Per-connection write
// goroutines absorb slow clients; a full client buffer drops the frame.
package broadcast
