package engine

// Blockers returns the IDs of vehicles occupying cells between the
// player's head and the exit, nearest first. It returns nil when there is
// no player or the exit is not on the player's axis.
func Blockers(b *Board) []string {
	player, ok := b.Player()
	if !ok {
		return nil
	}

	head, exit := player.Head(), b.Exit()
	var path []Position
	switch {
	case player.Orientation == Horizontal && head.Y == exit.Y:
		for x := head.X - 1; x >= exit.X; x-- {
			path = append(path, Position{X: x, Y: head.Y})
		}
	case player.Orientation == Vertical && head.X == exit.X:
		for y := head.Y - 1; y >= exit.Y; y-- {
			path = append(path, Position{X: head.X, Y: y})
		}
	default:
		return nil
	}

	var ids []string
	seen := make(map[string]bool)
	for _, pos := range path {
		for _, v := range b.vehicles {
			if v.ID != player.ID && !seen[v.ID] && v.Includes(pos) {
				seen[v.ID] = true
				ids = append(ids, v.ID)
			}
		}
	}
	return ids
}

// ManhattanDistance calculates the Manhattan distance between two positions
func ManhattanDistance(from, to Position) int {
	return abs(from.X-to.X) + abs(from.Y-to.Y)
}

// Occupancy returns the fraction of playfield cells covered by vehicles
func Occupancy(b *Board) float64 {
	if b.width == 0 || b.height == 0 {
		return 0
	}
	covered := 0
	for _, row := range b.Grid() {
		for _, r := range row {
			if r != EmptyCell {
				covered++
			}
		}
	}
	return float64(covered) / float64(b.width*b.height)
}

// abs returns the absolute value of x
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
