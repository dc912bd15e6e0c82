package engine

import (
	"fmt"
	"slices"
	"strings"
)

// Board is an immutable snapshot of every vehicle plus the fixed geometry.
// Boards produced by the move generator never share their vehicle slice.
type Board struct {
	width    int
	height   int
	exit     Position
	vehicles []Vehicle
}

// NewBoard creates a board from already-built vehicles. Vehicle order is
// kept; it decides the order in which NextStates emits neighbours.
func NewBoard(width, height int, exit Position, vehicles []Vehicle) *Board {
	return &Board{
		width:    width,
		height:   height,
		exit:     exit,
		vehicles: slices.Clone(vehicles),
	}
}

// Width returns the number of interior columns
func (b *Board) Width() int {
	return b.width
}

// Height returns the number of interior rows
func (b *Board) Height() int {
	return b.height
}

// Exit returns the cell the player's head has to reach
func (b *Board) Exit() Position {
	return b.exit
}

// Vehicles returns a copy of the vehicles in board order
func (b *Board) Vehicles() []Vehicle {
	return slices.Clone(b.vehicles)
}

// Vehicle looks a vehicle up by ID
func (b *Board) Vehicle(id string) (Vehicle, bool) {
	i := b.indexOf(id)
	if i < 0 {
		return Vehicle{}, false
	}
	return b.vehicles[i], true
}

// Player returns the first player vehicle, if any
func (b *Board) Player() (Vehicle, bool) {
	for _, v := range b.vehicles {
		if v.IsPlayer() {
			return v, true
		}
	}
	return Vehicle{}, false
}

// IsSolved reports whether a player vehicle's head is on the exit
func (b *Board) IsSolved() bool {
	for _, v := range b.vehicles {
		if v.IsPlayer() && v.Head() == b.exit {
			return true
		}
	}
	return false
}

// InBounds reports whether pos lies on the playfield
func (b *Board) InBounds(pos Position) bool {
	return pos.X >= 0 && pos.X < b.width && pos.Y >= 0 && pos.Y < b.height
}

// Fits reports whether candidate can replace the vehicle with the same ID.
// It must not overlap any other vehicle, and it must stay on the board
// unless it is the player with its head on the exit.
func (b *Board) Fits(candidate Vehicle) bool {
	for _, other := range b.vehicles {
		if candidate.Overlaps(other) {
			return false
		}
	}

	if candidate.IsPlayer() && candidate.Head() == b.exit {
		return true
	}

	for c := range candidate.Cells() {
		if !b.InBounds(c) {
			return false
		}
	}
	return true
}

// Equal compares geometry and every vehicle
func (b *Board) Equal(other *Board) bool {
	if b == nil || other == nil {
		return b == other
	}
	if b.width != other.width || b.height != other.height || b.exit != other.exit {
		return false
	}
	if len(b.vehicles) != len(other.vehicles) {
		return false
	}
	for _, v := range b.vehicles {
		ov, ok := other.Vehicle(v.ID)
		if !ok || ov != v {
			return false
		}
	}
	return true
}

// Key returns a canonical encoding of the board. Two boards have the same
// key exactly when Equal reports true.
func (b *Board) Key() string {
	sorted := slices.Clone(b.vehicles)
	slices.SortFunc(sorted, func(a, c Vehicle) int {
		return strings.Compare(a.ID, c.ID)
	})

	var sb strings.Builder
	fmt.Fprintf(&sb, "%dx%d@%d,%d", b.width, b.height, b.exit.X, b.exit.Y)
	for _, v := range sorted {
		o := 'v'
		if v.Orientation == Horizontal {
			o = 'h'
		}
		fmt.Fprintf(&sb, ";%q%c%d:%d,%d", v.ID, o, v.Length, v.Origin.X, v.Origin.Y)
	}
	return sb.String()
}

// Grid renders the playfield as rows of runes, '.' for empty cells.
// Cells outside the playfield (a player leaving through the exit) are skipped.
func (b *Board) Grid() [][]rune {
	grid := make([][]rune, b.height)
	for y := range grid {
		grid[y] = make([]rune, b.width)
		for x := range grid[y] {
			grid[y][x] = EmptyCell
		}
	}

	for _, v := range b.vehicles {
		r := idRune(v.ID)
		for c := range v.Cells() {
			if b.InBounds(c) {
				grid[c.Y][c.X] = r
			}
		}
	}
	return grid
}

// String renders the playfield without borders
func (b *Board) String() string {
	var sb strings.Builder
	for _, row := range b.Grid() {
		sb.WriteString(string(row))
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (b *Board) indexOf(id string) int {
	return slices.IndexFunc(b.vehicles, func(v Vehicle) bool {
		return v.ID == id
	})
}

// idRune picks the character drawn for a vehicle
func idRune(id string) rune {
	for _, r := range id {
		return r
	}
	return '?'
}
