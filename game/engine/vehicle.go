package engine

import (
	"errors"
	"iter"
)

// ErrEmptyVehicle is returned when a vehicle is built from no cells
var ErrEmptyVehicle = errors.New("vehicle must occupy at least one cell")

// Vehicle is a rigid straight piece. Values are never mutated; sliding
// returns a new Vehicle.
type Vehicle struct {
	ID          string      `json:"id"`
	Kind        Kind        `json:"kind"`
	Origin      Position    `json:"origin"`
	Length      int         `json:"length"`
	Orientation Orientation `json:"orientation"`
}

// NewVehicle builds a vehicle from the unordered set of cells it occupies.
// Contiguity is not checked.
func NewVehicle(id string, cells []Position) (Vehicle, error) {
	if len(cells) == 0 {
		return Vehicle{}, ErrEmptyVehicle
	}

	kind := Other
	if id == PlayerID {
		kind = Player
	}

	origin := cells[0]
	sameRow := true
	for _, c := range cells[1:] {
		if c.Y != cells[0].Y {
			sameRow = false
		}
		origin.X = min(origin.X, c.X)
		origin.Y = min(origin.Y, c.Y)
	}

	orientation := Vertical
	if sameRow {
		orientation = Horizontal
	}

	return Vehicle{
		ID:          id,
		Kind:        kind,
		Origin:      origin,
		Length:      len(cells),
		Orientation: orientation,
	}, nil
}

// IsPlayer reports whether this is the car that has to reach the exit
func (v Vehicle) IsPlayer() bool {
	return v.Kind == Player
}

// Head returns the cell nearest the top-left corner
func (v Vehicle) Head() Position {
	return v.Origin
}

// Cells yields the occupied cells from the origin outward
func (v Vehicle) Cells() iter.Seq[Position] {
	return func(yield func(Position) bool) {
		for i := 0; i < v.Length; i++ {
			if !yield(v.cell(i)) {
				return
			}
		}
	}
}

// CellList returns Cells as a slice
func (v Vehicle) CellList() []Position {
	cells := make([]Position, 0, v.Length)
	for c := range v.Cells() {
		cells = append(cells, c)
	}
	return cells
}

// Tail returns the last occupied cell
func (v Vehicle) Tail() Position {
	return v.cell(v.Length - 1)
}

// Includes reports whether the vehicle occupies pos
func (v Vehicle) Includes(pos Position) bool {
	for c := range v.Cells() {
		if c == pos {
			return true
		}
	}
	return false
}

// Overlaps reports whether two different vehicles share a cell
func (v Vehicle) Overlaps(other Vehicle) bool {
	if v.ID == other.ID {
		return false
	}
	for c := range v.Cells() {
		if other.Includes(c) {
			return true
		}
	}
	return false
}

// Slide returns a copy moved delta cells along the vehicle's axis.
// Bounds are the board's concern.
func (v Vehicle) Slide(dir Direction, delta int) Vehicle {
	if dir == Forward {
		delta = -delta
	}
	if v.Orientation == Horizontal {
		v.Origin.X += delta
	} else {
		v.Origin.Y += delta
	}
	return v
}

func (v Vehicle) cell(i int) Position {
	if v.Orientation == Horizontal {
		return Position{X: v.Origin.X + i, Y: v.Origin.Y}
	}
	return Position{X: v.Origin.X, Y: v.Origin.Y + i}
}
