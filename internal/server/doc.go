// Package server provides the HTTP surface: the ticket print endpoint,
// health/metrics/version routes, and the per-channel WebSocket endpoints
// that feed the broadcasters.
package server
