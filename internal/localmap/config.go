package localmap

const (
	DefaultGridWidth  = 8
	DefaultGridHeight = 6

	// DefaultThreatRange applies to hostiles that carry no explicit range.
	DefaultThreatRange = 1
)

// Config bounds every spatial computation to a single room's tile grid.
type Config struct {
	GridWidth  int `json:"gridWidth"`
	GridHeight int `json:"gridHeight"`
}

func DefaultConfig() Config {
	return Config{GridWidth: DefaultGridWidth, GridHeight: DefaultGridHeight}
}

// Normalized substitutes defaults for non-positive dimensions. Engine
// operations trust their config; callers normalize at the boundary.
func (cfg Config) Normalized() Config {
	normalized := cfg
	if normalized.GridWidth < 1 {
		normalized.GridWidth = DefaultGridWidth
	}
	if normalized.GridHeight < 1 {
		normalized.GridHeight = DefaultGridHeight
	}
	return normalized
}

func (cfg Config) Contains(pos TilePosition) bool {
	return pos.X >= 0 && pos.X < cfg.GridWidth && pos.Y >= 0 && pos.Y < cfg.GridHeight
}

// Midpoint is the center tile, rounded down on both axes.
func (cfg Config) Midpoint() TilePosition {
	return TilePosition{X: cfg.GridWidth / 2, Y: cfg.GridHeight / 2}
}
