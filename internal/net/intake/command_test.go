package intake

import (
	"reflect"
	"testing"

	"cardshark/server"
	"cardshark/server/internal/localmap"
	"cardshark/server/internal/net/proto"
	"cardshark/server/internal/worlddoc"
)

type fakeCommander struct {
	ok     bool
	reason string

	worlds  []*worlddoc.Document
	rooms   []string
	players []*localmap.TilePosition
	goals   []localmap.TilePosition
	tiles   [][]localmap.TilePosition

	pathResult server.PathResult
}

func (f *fakeCommander) EnterWorld(_ string, doc *worlddoc.Document) (string, bool, string) {
	f.worlds = append(f.worlds, doc)
	return "", f.ok, f.reason
}

func (f *fakeCommander) EnterRoom(_ string, roomID string, player *localmap.TilePosition) (server.RoomState, bool, string) {
	f.rooms = append(f.rooms, roomID)
	f.players = append(f.players, player)
	return server.RoomState{}, f.ok, f.reason
}

func (f *fakeCommander) MoveTo(_ string, x, y int) (server.PathResult, bool, string) {
	f.goals = append(f.goals, localmap.TilePosition{X: x, Y: y})
	return f.pathResult, f.ok, f.reason
}

func (f *fakeCommander) SetBlockedTiles(_ string, tiles []localmap.TilePosition) (server.RoomState, bool, string) {
	f.tiles = append(f.tiles, tiles)
	return server.RoomState{}, f.ok, f.reason
}

func (f *fakeCommander) calls() int {
	return len(f.worlds) + len(f.rooms) + len(f.goals) + len(f.tiles)
}

func TestStageClientCommandRoutesEnterWorld(t *testing.T) {
	hub := &fakeCommander{ok: true}
	doc := &worlddoc.Document{Name: "Gloomfen Marsh"}

	_, ok, reason := StageClientCommand(CommandContext{Commander: hub}, "session-1", proto.ClientMessage{
		Type:  proto.TypeEnterWorld,
		World: doc,
	})
	if !ok {
		t.Fatalf("expected command to be accepted, got reason %q", reason)
	}
	if len(hub.worlds) != 1 || hub.worlds[0] != doc {
		t.Fatalf("expected world document to reach the hub, got %v", hub.worlds)
	}
}

func TestStageClientCommandRejectsMissingWorld(t *testing.T) {
	hub := &fakeCommander{ok: true}

	_, ok, reason := StageClientCommand(CommandContext{Commander: hub}, "session-1", proto.ClientMessage{
		Type: proto.TypeEnterWorld,
	})
	if ok {
		t.Fatalf("expected rejection for missing world document")
	}
	if reason != server.CommandRejectInvalidWorld {
		t.Fatalf("expected reason %q, got %q", server.CommandRejectInvalidWorld, reason)
	}
	if hub.calls() != 0 {
		t.Fatalf("expected hub to stay untouched, got %d calls", hub.calls())
	}
}

func TestStageClientCommandRoutesEnterRoomWithSpawn(t *testing.T) {
	hub := &fakeCommander{ok: true}
	spawn := &localmap.TilePosition{X: 2, Y: 5}

	_, ok, reason := StageClientCommand(CommandContext{Commander: hub}, "session-1", proto.ClientMessage{
		Type:   proto.TypeEnterRoom,
		RoomID: "room-gate",
		Player: spawn,
	})
	if !ok {
		t.Fatalf("expected command to be accepted, got reason %q", reason)
	}
	if len(hub.rooms) != 1 || hub.rooms[0] != "room-gate" {
		t.Fatalf("expected room id to reach the hub, got %v", hub.rooms)
	}
	if len(hub.players) != 1 || hub.players[0] != spawn {
		t.Fatalf("expected spawn pointer to be forwarded, got %v", hub.players)
	}
}

func TestStageClientCommandRejectsMissingRoomID(t *testing.T) {
	hub := &fakeCommander{ok: true}

	_, ok, reason := StageClientCommand(CommandContext{Commander: hub}, "session-1", proto.ClientMessage{
		Type: proto.TypeEnterRoom,
	})
	if ok {
		t.Fatalf("expected rejection for missing room id")
	}
	if reason != server.CommandRejectUnknownRoom {
		t.Fatalf("expected reason %q, got %q", server.CommandRejectUnknownRoom, reason)
	}
	if hub.calls() != 0 {
		t.Fatalf("expected hub to stay untouched, got %d calls", hub.calls())
	}
}

func TestStageClientCommandReturnsPathResult(t *testing.T) {
	want := server.PathResult{
		RoomID: "room-gate",
		Path:   []localmap.TilePosition{{X: 4, Y: 3}, {X: 3, Y: 3}},
		Found:  true,
	}
	hub := &fakeCommander{ok: true, pathResult: want}

	result, ok, reason := StageClientCommand(CommandContext{Commander: hub}, "session-1", proto.ClientMessage{
		Type: proto.TypeMoveTo,
		X:    3,
		Y:    3,
	})
	if !ok {
		t.Fatalf("expected command to be accepted, got reason %q", reason)
	}
	if !reflect.DeepEqual(result, want) {
		t.Fatalf("expected path result %+v, got %+v", want, result)
	}
	if len(hub.goals) != 1 || hub.goals[0] != (localmap.TilePosition{X: 3, Y: 3}) {
		t.Fatalf("expected goal to reach the hub, got %v", hub.goals)
	}
}

func TestStageClientCommandRoutesBlockedTiles(t *testing.T) {
	hub := &fakeCommander{ok: true}
	tiles := []localmap.TilePosition{{X: 1, Y: 1}, {X: 2, Y: 1}}

	_, ok, reason := StageClientCommand(CommandContext{Commander: hub}, "session-1", proto.ClientMessage{
		Type:  proto.TypeSetBlocked,
		Tiles: tiles,
	})
	if !ok {
		t.Fatalf("expected command to be accepted, got reason %q", reason)
	}
	if len(hub.tiles) != 1 || !reflect.DeepEqual(hub.tiles[0], tiles) {
		t.Fatalf("expected tiles to reach the hub, got %v", hub.tiles)
	}
}

func TestStageClientCommandPropagatesHubReason(t *testing.T) {
	hub := &fakeCommander{ok: false, reason: server.CommandRejectUnreachable}

	_, ok, reason := StageClientCommand(CommandContext{Commander: hub}, "session-1", proto.ClientMessage{
		Type: proto.TypeMoveTo,
		X:    7,
		Y:    0,
	})
	if ok {
		t.Fatalf("expected rejection from hub")
	}
	if reason != server.CommandRejectUnreachable {
		t.Fatalf("expected hub reason %q, got %q", server.CommandRejectUnreachable, reason)
	}
}

func TestStageClientCommandRejectsUnknownType(t *testing.T) {
	hub := &fakeCommander{ok: true}

	_, ok, reason := StageClientCommand(CommandContext{Commander: hub}, "session-1", proto.ClientMessage{
		Type: "console",
	})
	if ok {
		t.Fatalf("expected rejection for unknown command type")
	}
	if reason != server.CommandRejectInvalidCommand {
		t.Fatalf("expected reason %q, got %q", server.CommandRejectInvalidCommand, reason)
	}
	if hub.calls() != 0 {
		t.Fatalf("expected hub to stay untouched, got %d calls", hub.calls())
	}
}

func TestStageClientCommandHandlesNilCommander(t *testing.T) {
	_, ok, reason := StageClientCommand(CommandContext{}, "session-1", proto.ClientMessage{
		Type: proto.TypeMoveTo,
	})
	if ok {
		t.Fatalf("expected rejection when commander is nil")
	}
	if reason != server.CommandRejectUnknownSession {
		t.Fatalf("expected reason %q, got %q", server.CommandRejectUnknownSession, reason)
	}
}
