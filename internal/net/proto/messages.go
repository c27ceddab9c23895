package proto

import (
	"encoding/json"
	"fmt"

	"cardshark/server/internal/localmap"
	"cardshark/server/internal/worlddoc"
)

const (
	// Version tracks the wire-protocol revision expected by clients.
	Version = 1

	// Type identifiers for websocket payloads.
	typeCommandAck    = "commandAck"
	typeCommandReject = "commandReject"
	typeHeartbeat     = "heartbeat"
	typeRoomState     = "roomState"
	typePathResult    = "pathResult"
)

// Client message type identifiers.
const (
	TypeEnterWorld = "enterWorld"
	TypeEnterRoom  = "enterRoom"
	TypeMoveTo     = "moveTo"
	TypeSetBlocked = "setBlocked"
	TypeHeartbeat  = "heartbeat"
)

// Exported aliases for outbound message type identifiers.
const (
	TypeRoomState  = typeRoomState
	TypePathResult = typePathResult
)

type roomState interface {
	ProtoRoomState()
}

// EncodeRoomState renders an already-framed room snapshot payload.
func EncodeRoomState(msg roomState) ([]byte, error) {
	return json.Marshal(msg)
}

type joinResponse interface {
	ProtoJoinResponse()
}

// EncodeJoinResponse renders a join response payload.
func EncodeJoinResponse(msg joinResponse) ([]byte, error) {
	return json.Marshal(msg)
}

type pathResult interface {
	ProtoPathResult()
}

// EncodePathResult renders a path result payload.
func EncodePathResult(msg pathResult) ([]byte, error) {
	switch payload := msg.(type) {
	case PathResultV1:
		return EncodePathResultV1(payload)
	case *PathResultV1:
		if payload == nil {
			return json.Marshal(payload)
		}
		return EncodePathResultV1(*payload)
	default:
		return json.Marshal(msg)
	}
}

// ClientMessage captures an inbound websocket message from the client.
type ClientMessage struct {
	Ver        int                     `json:"ver,omitempty"`
	Type       string                  `json:"type"`
	World      *worlddoc.Document      `json:"world,omitempty"`
	RoomID     string                  `json:"roomId,omitempty"`
	Player     *localmap.TilePosition  `json:"player,omitempty"`
	X          int                     `json:"x"`
	Y          int                     `json:"y"`
	Tiles      []localmap.TilePosition `json:"tiles,omitempty"`
	SentAt     int64                   `json:"sentAt"`
	CommandSeq *uint64                 `json:"seq,omitempty"`
}

// DecodeClientMessage converts raw websocket payloads into a structured message.
func DecodeClientMessage(payload []byte) (ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return msg, err
	}
	if msg.Ver == 0 {
		msg.Ver = Version
	}
	if msg.Ver != Version {
		return msg, fmt.Errorf("unsupported client protocol version %d", msg.Ver)
	}
	return msg, nil
}

// CommandAck describes an acknowledgement of a processed command.
type CommandAck struct {
	Seq uint64
}

// EncodeCommandAck renders a command acknowledgement response.
func EncodeCommandAck(msg CommandAck) ([]byte, error) {
	frame := struct {
		Ver  int    `json:"ver"`
		Type string `json:"type"`
		Seq  uint64 `json:"seq"`
	}{
		Ver:  Version,
		Type: typeCommandAck,
		Seq:  msg.Seq,
	}
	return json.Marshal(frame)
}

// CommandReject notifies the client that a command was refused.
type CommandReject struct {
	Seq    uint64
	Reason string
	Retry  bool
}

// EncodeCommandReject renders a command rejection response.
func EncodeCommandReject(msg CommandReject) ([]byte, error) {
	frame := struct {
		Ver    int    `json:"ver"`
		Type   string `json:"type"`
		Seq    uint64 `json:"seq"`
		Reason string `json:"reason"`
		Retry  bool   `json:"retry,omitempty"`
	}{
		Ver:    Version,
		Type:   typeCommandReject,
		Seq:    msg.Seq,
		Reason: msg.Reason,
	}
	if msg.Retry {
		frame.Retry = true
	}
	return json.Marshal(frame)
}

// Heartbeat echoes timing metadata back to the client.
type Heartbeat struct {
	ServerTime int64
	ClientTime int64
	RTTMillis  int64
}

// EncodeHeartbeat renders a heartbeat acknowledgement payload.
func EncodeHeartbeat(msg Heartbeat) ([]byte, error) {
	frame := struct {
		Ver        int    `json:"ver"`
		Type       string `json:"type"`
		ServerTime int64  `json:"serverTime"`
		ClientTime int64  `json:"clientTime"`
		RTTMillis  int64  `json:"rtt"`
	}{
		Ver:        Version,
		Type:       typeHeartbeat,
		ServerTime: msg.ServerTime,
		ClientTime: msg.ClientTime,
		RTTMillis:  msg.RTTMillis,
	}
	return json.Marshal(frame)
}

// PathResultV1 captures the version 1 path result payload layout.
type PathResultV1 struct {
	Ver    int                     `json:"ver"`
	Type   string                  `json:"type"`
	RoomID string                  `json:"roomId,omitempty"`
	Path   []localmap.TilePosition `json:"path"`
	Found  bool                    `json:"found"`
}

// ProtoPathResult tags the struct as a websocket path result payload.
func (PathResultV1) ProtoPathResult() {}

// EncodePathResultV1 renders a versioned path result payload. A nil path is
// kept as JSON null so clients can distinguish "no path" from an empty walk.
func EncodePathResultV1(msg PathResultV1) ([]byte, error) {
	if msg.Type == "" {
		msg.Type = TypePathResult
	}
	msg.Ver = Version
	return json.Marshal(msg)
}
