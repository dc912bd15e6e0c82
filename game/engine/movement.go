package engine

import (
	"errors"
	"fmt"
)

// ErrIllegalMove is returned when replaying a move the board does not allow
var ErrIllegalMove = errors.New("illegal move")

// MoveVehicle slides one vehicle by one cell. It returns false when the
// vehicle does not exist, would leave the board, would collide, or is
// already at coordinate 0 and asked to go further back.
func (b *Board) MoveVehicle(id string, dir Direction) (*Board, bool) {
	i := b.indexOf(id)
	if i < 0 {
		return nil, false
	}

	current := b.vehicles[i]
	if dir == Forward {
		if current.Orientation == Horizontal && current.Origin.X == 0 {
			return nil, false
		}
		if current.Orientation == Vertical && current.Origin.Y == 0 {
			return nil, false
		}
	}

	moved := current.Slide(dir, 1)
	if !b.Fits(moved) {
		return nil, false
	}

	next := &Board{
		width:    b.width,
		height:   b.height,
		exit:     b.exit,
		vehicles: make([]Vehicle, len(b.vehicles)),
	}
	copy(next.vehicles, b.vehicles)
	next.vehicles[i] = moved
	return next, true
}

// NextStates returns every board one legal single-cell slide away.
// For each vehicle in board order, Forward is tried before Backward.
func (b *Board) NextStates() []*Board {
	next := make([]*Board, 0, len(b.vehicles)*2)
	for _, v := range b.vehicles {
		for _, dir := range []Direction{Forward, Backward} {
			if nb, ok := b.MoveVehicle(v.ID, dir); ok {
				next = append(next, nb)
			}
		}
	}
	return next
}

// Diff reports which vehicle moved between prev and b, and which way.
// The boards are assumed to be one slide apart.
func (b *Board) Diff(prev *Board) (Move, bool) {
	if prev == nil {
		return Move{}, false
	}
	for _, v := range b.vehicles {
		pv, ok := prev.Vehicle(v.ID)
		if !ok || pv.Head() == v.Head() {
			continue
		}

		var h Heading
		switch {
		case v.Origin.X > pv.Origin.X:
			h = Right
		case v.Origin.X < pv.Origin.X:
			h = Left
		case v.Origin.Y > pv.Origin.Y:
			h = Down
		default:
			h = Up
		}
		return Move{VehicleID: v.ID, Heading: h}, true
	}
	return Move{}, false
}

// Apply replays atomic moves from this board and returns the final board
func (b *Board) Apply(moves []Move) (*Board, error) {
	current := b
	for i, m := range moves {
		v, ok := current.Vehicle(m.VehicleID)
		if !ok {
			return nil, fmt.Errorf("%w: move %d: no vehicle %q", ErrIllegalMove, i+1, m.VehicleID)
		}

		dir, ok := directionFor(v, m.Heading)
		if !ok {
			return nil, fmt.Errorf("%w: move %d: %s vehicle %q cannot go %s",
				ErrIllegalMove, i+1, v.Orientation, m.VehicleID, m.Heading)
		}

		next, ok := current.MoveVehicle(m.VehicleID, dir)
		if !ok {
			return nil, fmt.Errorf("%w: move %d: %q %s is blocked", ErrIllegalMove, i+1, m.VehicleID, m.Heading)
		}
		current = next
	}
	return current, nil
}

// directionFor maps a cardinal heading onto the vehicle's own axis
func directionFor(v Vehicle, h Heading) (Direction, bool) {
	switch {
	case v.Orientation == Horizontal && h == Left:
		return Forward, true
	case v.Orientation == Horizontal && h == Right:
		return Backward, true
	case v.Orientation == Vertical && h == Up:
		return Forward, true
	case v.Orientation == Vertical && h == Down:
		return Backward, true
	}
	return Forward, false
}
