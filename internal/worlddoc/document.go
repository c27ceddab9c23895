package worlddoc

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"cardshark/server/internal/localmap"
)

// Document is a designer-authored world card: a sparse rectangular grid of
// rooms, each with its own tile grid, NPC roster, and blocked tiles. The
// service treats documents as immutable input; nothing here is ever written
// back to disk.
type Document struct {
	Name        string `json:"name" jsonschema:"required,title=World name"`
	Description string `json:"description,omitempty"`
	GridWidth   int    `json:"gridWidth" jsonschema:"required,minimum=1"`
	GridHeight  int    `json:"gridHeight" jsonschema:"required,minimum=1"`
	Rooms       []Room `json:"rooms"`
}

// Room places one room card on the world grid. X and Y are world-grid
// coordinates; GridWidth and GridHeight bound the room's own tile grid and
// fall back to the engine defaults when omitted.
type Room struct {
	ID           string                  `json:"id" jsonschema:"required"`
	Name         string                  `json:"name"`
	X            int                     `json:"x"`
	Y            int                     `json:"y"`
	GridWidth    int                     `json:"gridWidth,omitempty"`
	GridHeight   int                     `json:"gridHeight,omitempty"`
	NPCs         []localmap.NPCSeed      `json:"npcs,omitempty"`
	BlockedTiles []localmap.TilePosition `json:"blockedTiles,omitempty"`
}

// Config resolves the room's tile grid bounds, substituting engine defaults
// for unset dimensions.
func (r Room) Config() localmap.Config {
	return localmap.Config{GridWidth: r.GridWidth, GridHeight: r.GridHeight}.Normalized()
}

// Decode reads one world document from r and validates it. Unknown fields
// are rejected so authoring typos surface instead of silently dropping data.
func Decode(r io.Reader) (Document, error) {
	var doc Document
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("worlddoc: decode: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return Document{}, fmt.Errorf("worlddoc: validate: %w", err)
	}
	return doc, nil
}

// LoadFile reads and decodes the world document at path.
func LoadFile(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, fmt.Errorf("worlddoc: open %q: %w", path, err)
	}
	defer f.Close()
	doc, err := Decode(f)
	if err != nil {
		return Document{}, fmt.Errorf("worlddoc: %q: %w", path, err)
	}
	return doc, nil
}

// Validate checks the structural rules the engine relies on: world bounds,
// unique in-bounds room placement, unique non-empty ids, sane room grids.
func (d Document) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("world name is empty")
	}
	if d.GridWidth < 1 || d.GridHeight < 1 {
		return fmt.Errorf("world grid %dx%d is not positive", d.GridWidth, d.GridHeight)
	}

	ids := make(map[string]struct{}, len(d.Rooms))
	cells := make(map[localmap.TilePosition]string, len(d.Rooms))
	for i, room := range d.Rooms {
		id := strings.TrimSpace(room.ID)
		if id == "" {
			return fmt.Errorf("room %d missing id", i)
		}
		if _, dup := ids[id]; dup {
			return fmt.Errorf("duplicate room id %q", id)
		}
		ids[id] = struct{}{}

		cell := localmap.TilePosition{X: room.X, Y: room.Y}
		if room.X < 0 || room.X >= d.GridWidth || room.Y < 0 || room.Y >= d.GridHeight {
			return fmt.Errorf("room %q at (%d,%d) is outside the %dx%d world grid", id, room.X, room.Y, d.GridWidth, d.GridHeight)
		}
		if other, taken := cells[cell]; taken {
			return fmt.Errorf("rooms %q and %q share world cell (%d,%d)", other, id, room.X, room.Y)
		}
		cells[cell] = id

		if err := room.validate(); err != nil {
			return fmt.Errorf("room %q: %w", id, err)
		}
	}
	return nil
}

func (r Room) validate() error {
	if r.GridWidth < 0 || r.GridHeight < 0 {
		return fmt.Errorf("grid %dx%d is negative", r.GridWidth, r.GridHeight)
	}
	cfg := r.Config()
	for _, tile := range r.BlockedTiles {
		if !cfg.Contains(tile) {
			return fmt.Errorf("blocked tile (%d,%d) is outside the %dx%d room grid", tile.X, tile.Y, cfg.GridWidth, cfg.GridHeight)
		}
	}
	for i, npc := range r.NPCs {
		if strings.TrimSpace(npc.ID) == "" {
			return fmt.Errorf("npc %d missing id", i)
		}
	}
	return nil
}

// Grid materializes the world adjacency grid consumed by exit derivation:
// one cell per world coordinate, nil where no room sits.
func (d Document) Grid() [][]*localmap.RoomStub {
	grid := make([][]*localmap.RoomStub, d.GridHeight)
	for y := range grid {
		grid[y] = make([]*localmap.RoomStub, d.GridWidth)
	}
	for _, room := range d.Rooms {
		if room.Y < 0 || room.Y >= d.GridHeight || room.X < 0 || room.X >= d.GridWidth {
			continue
		}
		grid[room.Y][room.X] = &localmap.RoomStub{ID: room.ID, Name: room.Name}
	}
	return grid
}

// Room returns the room with the given id, or false when absent.
func (d Document) Room(id string) (Room, bool) {
	for _, room := range d.Rooms {
		if room.ID == id {
			return room, true
		}
	}
	return Room{}, false
}
