package server

import "time"

const (
	ProtocolVersion   = 1
	writeWait         = 10 * time.Second
	heartbeatInterval = 2 * time.Second
	disconnectAfter   = 3 * heartbeatInterval
)

// HeartbeatInterval reports the ping cadence clients are expected to keep.
func HeartbeatInterval() time.Duration {
	return heartbeatInterval
}
