package localmap

// TilePosition addresses one cell of a room grid. Equality is structural,
// so values work directly as map keys.
type TilePosition struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// neighborOffsets enumerates the 8-neighbor ring in row-major order starting
// top-left. The cardinal subset therefore comes out North, West, East, South,
// which is the canonical tie-break order for pathfinding.
var neighborOffsets = [8]struct {
	dx, dy   int
	diagonal bool
}{
	{dx: -1, dy: -1, diagonal: true},
	{dx: 0, dy: -1},
	{dx: 1, dy: -1, diagonal: true},
	{dx: -1, dy: 0},
	{dx: 1, dy: 0},
	{dx: -1, dy: 1, diagonal: true},
	{dx: 0, dy: 1},
	{dx: 1, dy: 1, diagonal: true},
}

// AdjacentTiles returns the in-bounds neighbors of pos in a fixed
// enumeration order. Cardinal mode yields at most four tiles; diagonal mode
// yields the full ring for adjacency checks that allow corners.
func AdjacentTiles(pos TilePosition, cfg Config, includeDiagonals bool) []TilePosition {
	tiles := make([]TilePosition, 0, 8)
	for _, offset := range neighborOffsets {
		if offset.diagonal && !includeDiagonals {
			continue
		}
		next := TilePosition{X: pos.X + offset.dx, Y: pos.Y + offset.dy}
		if !cfg.Contains(next) {
			continue
		}
		tiles = append(tiles, next)
	}
	return tiles
}

// AreAdjacent reports 8-connected adjacency: a Chebyshev distance of exactly
// one, which also rules out identical tiles.
func AreAdjacent(a, b TilePosition) bool {
	return ChebyshevDistance(a, b) == 1
}

func ManhattanDistance(a, b TilePosition) int {
	return absInt(a.X-b.X) + absInt(a.Y-b.Y)
}

func ChebyshevDistance(a, b TilePosition) int {
	dx := absInt(a.X - b.X)
	dy := absInt(a.Y - b.Y)
	if dx > dy {
		return dx
	}
	return dy
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// tileSet deduplicates tiles while preserving first-insertion order, keeping
// outputs stable for identical inputs.
type tileSet struct {
	seen  map[TilePosition]struct{}
	order []TilePosition
}

func newTileSet() *tileSet {
	return &tileSet{seen: make(map[TilePosition]struct{})}
}

func (s *tileSet) add(pos TilePosition) {
	if _, exists := s.seen[pos]; exists {
		return
	}
	s.seen[pos] = struct{}{}
	s.order = append(s.order, pos)
}

func (s *tileSet) tiles() []TilePosition {
	return append(make([]TilePosition, 0, len(s.order)), s.order...)
}
