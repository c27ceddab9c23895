package server

import (
	"fmt"
	"os"
	"sync/atomic"
)

type telemetryCounters struct {
	sessionsJoined     atomic.Uint64
	sessionsClosed     atomic.Uint64
	roomsEntered       atomic.Uint64
	movesApplied       atomic.Uint64
	commandRejects     atomic.Uint64
	pathsRejected      atomic.Uint64
	placementOverflows atomic.Uint64
	broadcasts         atomic.Uint64
	bytesSent          atomic.Uint64
	entitiesSent       atomic.Uint64
	lastBroadcastBytes atomic.Uint64
	debug              bool
}

type telemetrySnapshot struct {
	SessionsJoined     uint64 `json:"sessionsJoined"`
	SessionsClosed     uint64 `json:"sessionsClosed"`
	RoomsEntered       uint64 `json:"roomsEntered"`
	MovesApplied       uint64 `json:"movesApplied"`
	CommandRejects     uint64 `json:"commandRejects"`
	PathsRejected      uint64 `json:"pathsRejected"`
	PlacementOverflows uint64 `json:"placementOverflows"`
	Broadcasts         uint64 `json:"broadcasts"`
	BytesSent          uint64 `json:"bytesSent"`
	EntitiesSent       uint64 `json:"entitiesSent"`
}

func newTelemetryCounters() *telemetryCounters {
	t := &telemetryCounters{}
	if os.Getenv("DEBUG_TELEMETRY") == "1" {
		t.debug = true
	}
	return t
}

func (t *telemetryCounters) RecordBroadcast(bytes, entities int) {
	if bytes < 0 {
		bytes = 0
	}
	if entities < 0 {
		entities = 0
	}
	t.broadcasts.Add(1)
	t.bytesSent.Add(uint64(bytes))
	t.entitiesSent.Add(uint64(entities))
	t.lastBroadcastBytes.Store(uint64(bytes))
	if t.debug {
		fmt.Printf(
			"[telemetry] broadcasts=%d bytes=%d totalBytes=%d entities=%d totalEntities=%d\n",
			t.broadcasts.Load(),
			t.lastBroadcastBytes.Load(),
			t.bytesSent.Load(),
			uint64(entities),
			t.entitiesSent.Load(),
		)
	}
}

func (t *telemetryCounters) RecordSessionJoined() {
	t.sessionsJoined.Add(1)
}

func (t *telemetryCounters) RecordSessionClosed() {
	t.sessionsClosed.Add(1)
}

func (t *telemetryCounters) RecordRoomEntered() {
	t.roomsEntered.Add(1)
}

func (t *telemetryCounters) RecordMoveApplied() {
	t.movesApplied.Add(1)
}

func (t *telemetryCounters) RecordCommandReject() {
	t.commandRejects.Add(1)
}

func (t *telemetryCounters) RecordPathRejected() {
	t.pathsRejected.Add(1)
}

func (t *telemetryCounters) RecordPlacementOverflow() {
	t.placementOverflows.Add(1)
}

func (t *telemetryCounters) DebugEnabled() bool {
	return t.debug
}

func (t *telemetryCounters) Snapshot() telemetrySnapshot {
	return telemetrySnapshot{
		SessionsJoined:     t.sessionsJoined.Load(),
		SessionsClosed:     t.sessionsClosed.Load(),
		RoomsEntered:       t.roomsEntered.Load(),
		MovesApplied:       t.movesApplied.Load(),
		CommandRejects:     t.commandRejects.Load(),
		PathsRejected:      t.pathsRejected.Load(),
		PlacementOverflows: t.placementOverflows.Load(),
		Broadcasts:         t.broadcasts.Load(),
		BytesSent:          t.bytesSent.Load(),
		EntitiesSent:       t.entitiesSent.Load(),
	}
}
