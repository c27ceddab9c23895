package localmap

type ExitDirection string

const (
	DirectionNorth ExitDirection = "north"
	DirectionSouth ExitDirection = "south"
	DirectionEast  ExitDirection = "east"
	DirectionWest  ExitDirection = "west"
)

// exitDirections fixes the derivation order; exits always come out
// North, South, East, West.
var exitDirections = [4]ExitDirection{DirectionNorth, DirectionSouth, DirectionEast, DirectionWest}

func directionOffset(direction ExitDirection) (int, int) {
	switch direction {
	case DirectionNorth:
		return 0, -1
	case DirectionSouth:
		return 0, 1
	case DirectionEast:
		return 1, 0
	default:
		return -1, 0
	}
}

// ExitTile marks a grid-edge tile that transitions into an adjacent room.
type ExitTile struct {
	Direction      ExitDirection `json:"direction"`
	Position       TilePosition  `json:"position"`
	TargetRoomID   string        `json:"targetRoomId"`
	TargetRoomName string        `json:"targetRoomName"`
}

// ExitPosition returns the fixed edge tile for a direction: the midpoint of
// that edge, rounded down.
func ExitPosition(direction ExitDirection, cfg Config) TilePosition {
	switch direction {
	case DirectionNorth:
		return TilePosition{X: cfg.GridWidth / 2, Y: 0}
	case DirectionSouth:
		return TilePosition{X: cfg.GridWidth / 2, Y: cfg.GridHeight - 1}
	case DirectionEast:
		return TilePosition{X: cfg.GridWidth - 1, Y: cfg.GridHeight / 2}
	default:
		return TilePosition{X: 0, Y: cfg.GridHeight / 2}
	}
}

// DeriveExits scans the world grid for the current room and emits one exit
// per occupied compass neighbor. A room absent from the grid is a valid
// isolated state and yields no exits. Exits for mutually adjacent rooms are
// symmetric by construction: both derive from the same caller-owned grid
// coordinates.
func DeriveExits(currentRoomID string, worldGrid [][]*RoomStub, cfg Config) []ExitTile {
	exits := make([]ExitTile, 0, 4)

	roomX, roomY, found := locateRoom(currentRoomID, worldGrid)
	if !found {
		return exits
	}

	for _, direction := range exitDirections {
		dx, dy := directionOffset(direction)
		nx, ny := roomX+dx, roomY+dy
		if ny < 0 || ny >= len(worldGrid) {
			continue
		}
		row := worldGrid[ny]
		if nx < 0 || nx >= len(row) {
			continue
		}
		neighbor := row[nx]
		if neighbor == nil {
			continue
		}
		exits = append(exits, ExitTile{
			Direction:      direction,
			Position:       ExitPosition(direction, cfg),
			TargetRoomID:   neighbor.ID,
			TargetRoomName: neighbor.Name,
		})
	}
	return exits
}

func locateRoom(roomID string, worldGrid [][]*RoomStub) (int, int, bool) {
	for y, row := range worldGrid {
		for x, stub := range row {
			if stub != nil && stub.ID == roomID {
				return x, y, true
			}
		}
	}
	return 0, 0, false
}
