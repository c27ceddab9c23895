package server

import (
	"cardshark/server/internal/localmap"
)

// Reject reasons surfaced to clients on the websocket and the compute API.
const (
	CommandRejectUnknownSession  = "unknownSession"
	CommandRejectNoWorld         = "noWorld"
	CommandRejectUnknownRoom     = "unknownRoom"
	CommandRejectNoRoom          = "noRoom"
	CommandRejectInvalidWorld    = "invalidWorld"
	CommandRejectInvalidPosition = "invalidPosition"
	CommandRejectUnreachable     = "unreachable"
	CommandRejectInvalidCommand  = "invalidCommand"
)

type JoinResponse struct {
	Ver       int    `json:"ver"`
	ID        string `json:"id"`
	WorldName string `json:"worldName,omitempty"`
}

func (JoinResponse) ProtoJoinResponse() {}

// RoomState is the immutable local-map snapshot of one session's current
// room: exits, placed entities, threat zones, blocked tiles, and the player
// token. Seq orders snapshots within a session.
type RoomState struct {
	RoomID       string                  `json:"roomId"`
	RoomName     string                  `json:"roomName,omitempty"`
	Config       localmap.Config         `json:"config"`
	Player       localmap.TilePosition   `json:"player"`
	Exits        []localmap.ExitTile     `json:"exits"`
	Entities     []localmap.Entity       `json:"entities"`
	ThreatZones  []localmap.TilePosition `json:"threatZones"`
	BlockedTiles []localmap.TilePosition `json:"blockedTiles"`
	Threatened   bool                    `json:"threatened"`
	Seq          uint64                  `json:"seq"`
}

func (RoomState) ProtoRoomState() {}

// PathResult reports the outcome of a movement command.
type PathResult struct {
	RoomID string                  `json:"roomId,omitempty"`
	Path   []localmap.TilePosition `json:"path"`
	Found  bool                    `json:"found"`
}

func (PathResult) ProtoPathResult() {}

type roomStateMessage struct {
	Ver  int    `json:"ver"`
	Type string `json:"type"`
	RoomState
	ServerTime int64 `json:"serverTime"`
}

type diagnosticsSession struct {
	Ver            int    `json:"ver"`
	ID             string `json:"id"`
	WorldName      string `json:"worldName,omitempty"`
	RoomID         string `json:"roomId,omitempty"`
	LastHeartbeat  int64  `json:"lastHeartbeat"`
	RTTMillis      int64  `json:"rttMillis"`
	LastCommandSeq uint64 `json:"lastCommandSeq"`
}
