package localmap

const (
	placementBaseHp     = 30
	placementHpPerLevel = 10
)

// Threat range steps up with level: 1 below 20, 2 from 20, 3 from 40.
const (
	threatRangeTierTwo   = 20
	threatRangeTierThree = 40
)

// occupancy is the accumulator threaded through placement: each step returns
// a grown copy instead of mutating shared state.
type occupancy map[TilePosition]struct{}

func (o occupancy) with(pos TilePosition) occupancy {
	next := make(occupancy, len(o)+1)
	for tile := range o {
		next[tile] = struct{}{}
	}
	next[pos] = struct{}{}
	return next
}

func (o occupancy) contains(pos TilePosition) bool {
	_, exists := o[pos]
	return exists
}

// candidateLists holds the three placement areas, computed once per call
// from the config and player position, never cached across calls.
type candidateLists struct {
	hostile  []TilePosition
	friendly []TilePosition
	neutral  []TilePosition
}

func buildCandidateLists(player TilePosition, cfg Config) candidateLists {
	return candidateLists{
		hostile:  hostileCandidates(cfg),
		friendly: friendlyCandidates(player, cfg),
		neutral:  neutralCandidates(cfg),
	}
}

// hostileCandidates is the 3x3 block against the far east corner, enumerated
// column-major from the outermost column inward.
func hostileCandidates(cfg Config) []TilePosition {
	tiles := make([]TilePosition, 0, 9)
	for x := cfg.GridWidth - 1; x >= cfg.GridWidth-3 && x >= 0; x-- {
		for y := 0; y < 3 && y < cfg.GridHeight; y++ {
			tiles = append(tiles, TilePosition{X: x, Y: y})
		}
	}
	return tiles
}

// friendlyCandidates is the Chebyshev-radius-2 box around the player, in grid
// order, with the player's own tile excluded.
func friendlyCandidates(player TilePosition, cfg Config) []TilePosition {
	tiles := make([]TilePosition, 0, 24)
	for dy := -2; dy <= 2; dy++ {
		for dx := -2; dx <= 2; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			pos := TilePosition{X: player.X + dx, Y: player.Y + dy}
			if !cfg.Contains(pos) {
				continue
			}
			tiles = append(tiles, pos)
		}
	}
	return tiles
}

// neutralCandidates is a 5x3 box centered on the grid midpoint, in grid order.
func neutralCandidates(cfg Config) []TilePosition {
	center := cfg.Midpoint()
	tiles := make([]TilePosition, 0, 15)
	for dy := -1; dy <= 1; dy++ {
		for dx := -2; dx <= 2; dx++ {
			pos := TilePosition{X: center.X + dx, Y: center.Y + dy}
			if !cfg.Contains(pos) {
				continue
			}
			tiles = append(tiles, pos)
		}
	}
	return tiles
}

// AutoPlaceEntities assigns grid positions to seeds in input order. Hostiles
// gather at the far corner, friendlies near the player; when a preferred
// area is full, placement falls back to the neutral box and finally to a
// row-major scan of the whole grid. A seed that finds no free tile is
// dropped, so the output may be shorter than the input. Identical inputs
// always produce identical output.
func AutoPlaceEntities(seeds []NPCSeed, playerPosition TilePosition, cfg Config) []Entity {
	return AutoPlaceEntitiesAvoiding(seeds, playerPosition, cfg, nil)
}

// AutoPlaceEntitiesAvoiding behaves like AutoPlaceEntities but additionally
// treats the avoid tiles as occupied from the start, so no entity lands on
// them. Used by hosts that keep a blocked-tile layer alongside placement.
func AutoPlaceEntitiesAvoiding(seeds []NPCSeed, playerPosition TilePosition, cfg Config, avoid []TilePosition) []Entity {
	lists := buildCandidateLists(playerPosition, cfg)
	occupied := occupancy{playerPosition: {}}
	for _, tile := range avoid {
		occupied[tile] = struct{}{}
	}

	entities := make([]Entity, 0, len(seeds))
	for _, seed := range seeds {
		var entity *Entity
		occupied, entity = placeStep(occupied, seed, lists, cfg)
		if entity == nil {
			continue
		}
		entities = append(entities, *entity)
	}
	return entities
}

// placeStep places a single seed against the current occupancy and returns
// the grown occupancy plus the placed entity, or nil when every tile is
// taken. The input occupancy is never mutated.
func placeStep(occupied occupancy, seed NPCSeed, lists candidateLists, cfg Config) (occupancy, *Entity) {
	allegiance := AllegianceFriendly
	primary := lists.friendly
	if seed.Hostile {
		allegiance = AllegianceHostile
		primary = lists.hostile
	}

	pos, found := firstFree(primary, occupied)
	if !found {
		pos, found = firstFree(lists.neutral, occupied)
	}
	if !found {
		pos, found = scanFree(cfg, occupied)
	}
	if !found {
		return occupied, nil
	}

	level := seed.Level
	if level < 1 {
		level = 1
	}
	hp := placementBaseHp + level*placementHpPerLevel

	entity := &Entity{
		ID:         seed.ID,
		Name:       seed.Name,
		Level:      level,
		Allegiance: allegiance,
		Position:   pos,
		ImagePath:  seed.ImagePath,
		CurrentHp:  hp,
		MaxHp:      hp,
	}
	if allegiance == AllegianceHostile {
		rng := threatRangeForLevel(level)
		entity.ThreatRange = &rng
	}
	return occupied.with(pos), entity
}

func firstFree(candidates []TilePosition, occupied occupancy) (TilePosition, bool) {
	for _, pos := range candidates {
		if !occupied.contains(pos) {
			return pos, true
		}
	}
	return TilePosition{}, false
}

// scanFree is the last-resort sweep: row-major from the origin.
func scanFree(cfg Config, occupied occupancy) (TilePosition, bool) {
	for y := 0; y < cfg.GridHeight; y++ {
		for x := 0; x < cfg.GridWidth; x++ {
			pos := TilePosition{X: x, Y: y}
			if !occupied.contains(pos) {
				return pos, true
			}
		}
	}
	return TilePosition{}, false
}

func threatRangeForLevel(level int) int {
	switch {
	case level >= threatRangeTierThree:
		return 3
	case level >= threatRangeTierTwo:
		return 2
	default:
		return 1
	}
}
