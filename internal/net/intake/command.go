package intake

import (
	"cardshark/server"
	"cardshark/server/internal/localmap"
	"cardshark/server/internal/net/proto"
	"cardshark/server/internal/worlddoc"
)

// Commander is the slice of the hub that staged commands execute against.
type Commander interface {
	EnterWorld(sessionID string, doc *worlddoc.Document) (string, bool, string)
	EnterRoom(sessionID, roomID string, player *localmap.TilePosition) (server.RoomState, bool, string)
	MoveTo(sessionID string, x, y int) (server.PathResult, bool, string)
	SetBlockedTiles(sessionID string, tiles []localmap.TilePosition) (server.RoomState, bool, string)
}

type CommandContext struct {
	Commander Commander
}

// StageClientCommand validates a decoded client message and executes it
// against the hub. Movement commands return their path result; every
// rejection carries the reason string the client sees.
func StageClientCommand(ctx CommandContext, sessionID string, msg proto.ClientMessage) (server.PathResult, bool, string) {
	var zero server.PathResult

	if ctx.Commander == nil {
		return zero, false, server.CommandRejectUnknownSession
	}

	switch msg.Type {
	case proto.TypeEnterWorld:
		if msg.World == nil {
			return zero, false, server.CommandRejectInvalidWorld
		}
		_, ok, reason := ctx.Commander.EnterWorld(sessionID, msg.World)
		return zero, ok, reason
	case proto.TypeEnterRoom:
		if msg.RoomID == "" {
			return zero, false, server.CommandRejectUnknownRoom
		}
		_, ok, reason := ctx.Commander.EnterRoom(sessionID, msg.RoomID, msg.Player)
		return zero, ok, reason
	case proto.TypeMoveTo:
		return ctx.Commander.MoveTo(sessionID, msg.X, msg.Y)
	case proto.TypeSetBlocked:
		_, ok, reason := ctx.Commander.SetBlockedTiles(sessionID, msg.Tiles)
		return zero, ok, reason
	default:
		return zero, false, server.CommandRejectInvalidCommand
	}
}
