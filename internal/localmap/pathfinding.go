package localmap

type pathNode struct {
	pos    TilePosition
	parent *pathNode
}

// FindPath runs a breadth-first search over 4-connected tiles and returns
// the shortest tile sequence from start to goal inclusive, or nil when no
// path exists. Nil is distinct from a found path: findPath(a, a) is [a],
// never empty. Blocked tiles are excluded from traversal; the start tile
// itself may be blocked (the mover already stands there). Among equal-length
// paths the result is canonical because neighbors expand in the fixed
// North, West, East, South order.
func FindPath(start, goal TilePosition, cfg Config, blockedTiles []TilePosition) []TilePosition {
	if !cfg.Contains(start) || !cfg.Contains(goal) {
		return nil
	}
	if start == goal {
		return []TilePosition{start}
	}

	blocked := make(map[TilePosition]struct{}, len(blockedTiles))
	for _, tile := range blockedTiles {
		blocked[tile] = struct{}{}
	}
	if _, isBlocked := blocked[goal]; isBlocked {
		return nil
	}

	visited := map[TilePosition]struct{}{start: {}}
	queue := []*pathNode{{pos: start}}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if current.pos == goal {
			return reconstructPath(current)
		}
		for _, next := range AdjacentTiles(current.pos, cfg, false) {
			if _, seen := visited[next]; seen {
				continue
			}
			if _, isBlocked := blocked[next]; isBlocked {
				continue
			}
			visited[next] = struct{}{}
			queue = append(queue, &pathNode{pos: next, parent: current})
		}
	}
	return nil
}

func reconstructPath(end *pathNode) []TilePosition {
	if end == nil {
		return nil
	}
	path := make([]TilePosition, 0)
	for node := end; node != nil; node = node.parent {
		path = append(path, node.pos)
	}
	for i := 0; i < len(path)/2; i++ {
		j := len(path) - 1 - i
		path[i], path[j] = path[j], path[i]
	}
	return path
}
