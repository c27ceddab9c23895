package proto

import (
	"encoding/json"
	"testing"

	"cardshark/server/internal/localmap"
)

func TestDecodeClientMessage(t *testing.T) {
	t.Run("defaults missing version", func(t *testing.T) {
		msg, err := DecodeClientMessage([]byte(`{"type":"moveTo","x":3,"y":4}`))
		if err != nil {
			t.Fatalf("decode client message: %v", err)
		}
		if msg.Ver != Version {
			t.Fatalf("expected version %d, got %d", Version, msg.Ver)
		}
		if msg.Type != TypeMoveTo {
			t.Fatalf("expected type %q, got %q", TypeMoveTo, msg.Type)
		}
		if msg.X != 3 || msg.Y != 4 {
			t.Fatalf("unexpected goal: (%d,%d)", msg.X, msg.Y)
		}
		if msg.CommandSeq != nil {
			t.Fatalf("expected nil command seq, got %d", *msg.CommandSeq)
		}
	})

	t.Run("rejects unsupported version", func(t *testing.T) {
		if _, err := DecodeClientMessage([]byte(`{"ver":2,"type":"moveTo"}`)); err == nil {
			t.Fatalf("expected unsupported version to be rejected")
		}
	})

	t.Run("rejects malformed payload", func(t *testing.T) {
		if _, err := DecodeClientMessage([]byte(`{"type":`)); err == nil {
			t.Fatalf("expected malformed payload to be rejected")
		}
	})

	t.Run("carries world document", func(t *testing.T) {
		payload := `{"type":"enterWorld","world":{"name":"Gloomfen Marsh","gridWidth":1,"gridHeight":1,"rooms":[{"id":"room-gate","name":"Gatehouse","x":0,"y":0}]}}`
		msg, err := DecodeClientMessage([]byte(payload))
		if err != nil {
			t.Fatalf("decode client message: %v", err)
		}
		if msg.World == nil {
			t.Fatalf("expected world document payload")
		}
		if msg.World.Name != "Gloomfen Marsh" || len(msg.World.Rooms) != 1 {
			t.Fatalf("unexpected world document: %+v", msg.World)
		}
	})

	t.Run("carries blocked tiles and seq", func(t *testing.T) {
		payload := `{"type":"setBlocked","tiles":[{"x":1,"y":2},{"x":3,"y":4}],"seq":7}`
		msg, err := DecodeClientMessage([]byte(payload))
		if err != nil {
			t.Fatalf("decode client message: %v", err)
		}
		if len(msg.Tiles) != 2 || msg.Tiles[1] != (localmap.TilePosition{X: 3, Y: 4}) {
			t.Fatalf("unexpected tiles: %v", msg.Tiles)
		}
		if msg.CommandSeq == nil || *msg.CommandSeq != 7 {
			t.Fatalf("unexpected command seq: %v", msg.CommandSeq)
		}
	})

	t.Run("carries explicit player spawn", func(t *testing.T) {
		payload := `{"type":"enterRoom","roomId":"room-gate","player":{"x":2,"y":5}}`
		msg, err := DecodeClientMessage([]byte(payload))
		if err != nil {
			t.Fatalf("decode client message: %v", err)
		}
		if msg.RoomID != "room-gate" {
			t.Fatalf("expected room id room-gate, got %q", msg.RoomID)
		}
		if msg.Player == nil || *msg.Player != (localmap.TilePosition{X: 2, Y: 5}) {
			t.Fatalf("unexpected player spawn: %v", msg.Player)
		}
	})
}

func TestEncodeCommandAck(t *testing.T) {
	encoded, err := EncodeCommandAck(CommandAck{Seq: 12})
	if err != nil {
		t.Fatalf("encode command ack: %v", err)
	}

	var decoded struct {
		Ver  int    `json:"ver"`
		Type string `json:"type"`
		Seq  uint64 `json:"seq"`
	}
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("unmarshal ack: %v", err)
	}
	if decoded.Ver != Version {
		t.Fatalf("expected version %d, got %d", Version, decoded.Ver)
	}
	if decoded.Type != typeCommandAck {
		t.Fatalf("expected type %q, got %q", typeCommandAck, decoded.Type)
	}
	if decoded.Seq != 12 {
		t.Fatalf("expected seq 12, got %d", decoded.Seq)
	}
}

func TestEncodeCommandRejectOmitsRetryWhenFalse(t *testing.T) {
	encoded, err := EncodeCommandReject(CommandReject{Seq: 3, Reason: "unreachable"})
	if err != nil {
		t.Fatalf("encode command reject: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("unmarshal reject: %v", err)
	}
	if decoded["type"] != typeCommandReject {
		t.Fatalf("expected type %q, got %v", typeCommandReject, decoded["type"])
	}
	if decoded["reason"] != "unreachable" {
		t.Fatalf("expected reason unreachable, got %v", decoded["reason"])
	}
	if _, present := decoded["retry"]; present {
		t.Fatalf("expected retry flag to be omitted when false")
	}

	encoded, err = EncodeCommandReject(CommandReject{Seq: 3, Reason: "queueLimit", Retry: true})
	if err != nil {
		t.Fatalf("encode retryable reject: %v", err)
	}
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("unmarshal retryable reject: %v", err)
	}
	if decoded["retry"] != true {
		t.Fatalf("expected retry flag to be set, got %v", decoded["retry"])
	}
}

func TestEncodeHeartbeatUsesRTTField(t *testing.T) {
	encoded, err := EncodeHeartbeat(Heartbeat{ServerTime: 200, ClientTime: 150, RTTMillis: 50})
	if err != nil {
		t.Fatalf("encode heartbeat: %v", err)
	}

	var decoded struct {
		Ver        int    `json:"ver"`
		Type       string `json:"type"`
		ServerTime int64  `json:"serverTime"`
		ClientTime int64  `json:"clientTime"`
		RTT        int64  `json:"rtt"`
	}
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("unmarshal heartbeat: %v", err)
	}
	if decoded.Type != typeHeartbeat {
		t.Fatalf("expected type %q, got %q", typeHeartbeat, decoded.Type)
	}
	if decoded.ServerTime != 200 || decoded.ClientTime != 150 || decoded.RTT != 50 {
		t.Fatalf("unexpected heartbeat payload: %+v", decoded)
	}
}

func TestEncodePathResultV1SetsVersionAndType(t *testing.T) {
	result := PathResultV1{
		RoomID: "room-gate",
		Path: []localmap.TilePosition{
			{X: 4, Y: 3},
			{X: 3, Y: 3},
		},
		Found: true,
	}

	encoded, err := EncodePathResultV1(result)
	if err != nil {
		t.Fatalf("encode path result v1: %v", err)
	}

	if result.Ver != 0 {
		t.Fatalf("expected encode to operate on a copy, got version %d", result.Ver)
	}

	var decoded struct {
		Ver    int                     `json:"ver"`
		Type   string                  `json:"type"`
		RoomID string                  `json:"roomId"`
		Path   []localmap.TilePosition `json:"path"`
		Found  bool                    `json:"found"`
	}
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("unmarshal path result: %v", err)
	}
	if decoded.Ver != Version {
		t.Fatalf("expected version %d, got %d", Version, decoded.Ver)
	}
	if decoded.Type != TypePathResult {
		t.Fatalf("expected type %q, got %q", TypePathResult, decoded.Type)
	}
	if len(decoded.Path) != 2 || decoded.Path[0] != (localmap.TilePosition{X: 4, Y: 3}) {
		t.Fatalf("unexpected path: %v", decoded.Path)
	}
	if !decoded.Found {
		t.Fatalf("expected found flag to survive encoding")
	}

	viaInterface, err := EncodePathResult(&result)
	if err != nil {
		t.Fatalf("encode path result via interface: %v", err)
	}
	if string(viaInterface) != string(encoded) {
		t.Fatalf("expected interface encoder to match direct encoding\nwant: %s\ngot:  %s", string(encoded), string(viaInterface))
	}
}

func TestEncodePathResultKeepsNullPath(t *testing.T) {
	encoded, err := EncodePathResult(PathResultV1{Found: false})
	if err != nil {
		t.Fatalf("encode path result: %v", err)
	}

	var frame map[string]json.RawMessage
	if err := json.Unmarshal(encoded, &frame); err != nil {
		t.Fatalf("unmarshal path result: %v", err)
	}
	if string(frame["path"]) != "null" {
		t.Fatalf("expected path to stay null, got %s", frame["path"])
	}
	if string(frame["found"]) != "false" {
		t.Fatalf("expected found false, got %s", frame["found"])
	}
}

type stubJoinResponse struct {
	Ver int    `json:"ver"`
	ID  string `json:"id"`
}

func (stubJoinResponse) ProtoJoinResponse() {}

type stubRoomState struct {
	RoomID string `json:"roomId"`
}

func (stubRoomState) ProtoRoomState() {}

func TestEncodeDispatchersFallBackToPlainJSON(t *testing.T) {
	encoded, err := EncodeJoinResponse(stubJoinResponse{Ver: Version, ID: "session-1"})
	if err != nil {
		t.Fatalf("encode join response: %v", err)
	}
	if want := `{"ver":1,"id":"session-1"}`; string(encoded) != want {
		t.Fatalf("expected %s, got %s", want, encoded)
	}

	encoded, err = EncodeRoomState(stubRoomState{RoomID: "room-gate"})
	if err != nil {
		t.Fatalf("encode room state: %v", err)
	}
	if want := `{"roomId":"room-gate"}`; string(encoded) != want {
		t.Fatalf("expected %s, got %s", want, encoded)
	}
}
