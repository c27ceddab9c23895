package localmap

// CalculateThreatZones unions the Manhattan threat disks of every live
// hostile, clipped to the grid and deduplicated. A hostile's own tile is
// never part of its zone, so a range of zero contributes nothing. Output
// order is first-discovery order and is stable for identical input;
// callers may rely on membership only.
func CalculateThreatZones(entities []Entity, cfg Config, defaultThreatRange int) []TilePosition {
	zone := newTileSet()

	for _, entity := range entities {
		if entity.Allegiance != AllegianceHostile {
			continue
		}
		if entity.Incapacitated || entity.Dead {
			continue
		}

		rng := entity.EffectiveThreatRange(defaultThreatRange)
		for dy := -rng; dy <= rng; dy++ {
			spread := rng - absInt(dy)
			for dx := -spread; dx <= spread; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				tile := TilePosition{X: entity.Position.X + dx, Y: entity.Position.Y + dy}
				if !cfg.Contains(tile) {
					continue
				}
				zone.add(tile)
			}
		}
	}

	return zone.tiles()
}
