// Package bridge connects raw TCP hardware streams to the per-channel broadcasters.
//
// DeviceLink dials a fixed scale endpoint and reconnects forever on a fixed
// delay. DeviceListener accepts inbound connections from hardware that dials
// us (the RFID reader). Router binds every port up front, rolls back on a
// failed bind, and owns the startup/shutdown sequence.
package bridge
