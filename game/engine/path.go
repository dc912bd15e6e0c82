package engine

import "slices"

// reconstruct follows parent keys from goal back to the root and returns
// the boards in root-to-goal order
func reconstruct(visited map[string]*record, goal string) []*Board {
	var path []*Board
	for key := goal; ; {
		rec := visited[key]
		path = append(path, rec.board)
		if rec.root {
			break
		}
		key = rec.parent
	}
	slices.Reverse(path)
	return path
}

// pathMoves diffs each consecutive pair of boards into an atomic move
func pathMoves(path []*Board) []Move {
	moves := make([]Move, 0, len(path))
	for i := 1; i < len(path); i++ {
		if m, ok := path[i].Diff(path[i-1]); ok {
			moves = append(moves, m)
		}
	}
	return moves
}

// Compress merges runs of identical moves into steps
func Compress(moves []Move) []Step {
	steps := []Step{}
	for _, m := range moves {
		if n := len(steps); n > 0 && steps[n-1].VehicleID == m.VehicleID && steps[n-1].Heading == m.Heading {
			steps[n-1].Count++
			continue
		}
		steps = append(steps, Step{VehicleID: m.VehicleID, Heading: m.Heading, Count: 1})
	}
	return steps
}

// Expand turns steps back into atomic moves
func Expand(steps []Step) []Move {
	moves := make([]Move, 0, TotalMoves(steps))
	for _, s := range steps {
		for i := 0; i < s.Count; i++ {
			moves = append(moves, Move{VehicleID: s.VehicleID, Heading: s.Heading})
		}
	}
	return moves
}

// TotalMoves sums the counts of all steps
func TotalMoves(steps []Step) int {
	total := 0
	for _, s := range steps {
		total += s.Count
	}
	return total
}
