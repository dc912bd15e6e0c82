package engine

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrParse      = errors.New("could not parse puzzle")
	ErrEmptyInput = errors.New("puzzle is empty")
	ErrNoExit     = errors.New("puzzle has no exit marker")
	ErrMalformed  = errors.New("puzzle is malformed")
)

// Parse reads a bordered ASCII puzzle. Every error wraps ErrParse.
//
// The first 'x' found (row by row) marks the exit. Coordinates are made
// relative to the interior by dropping the border, with a marker on the
// top or left border mapping onto row or column 0. Any rune other than
// '.', ' ' and the border characters names a vehicle; cells sharing a
// rune form one vehicle.
func Parse(text string) (*Board, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: %w", ErrParse, ErrEmptyInput)
	}

	lines := strings.Split(trimmed, "\n")
	rows := make([][]rune, len(lines))
	for i, line := range lines {
		rows[i] = []rune(strings.TrimSpace(line))
	}

	exit, found := findExit(rows)
	if !found {
		return nil, fmt.Errorf("%w: %w", ErrParse, ErrNoExit)
	}

	if len(rows) < 3 || len(rows[0]) < 3 {
		return nil, fmt.Errorf("%w: %w: need a border around at least one cell", ErrParse, ErrMalformed)
	}
	width := len(rows[0]) - 2
	height := len(rows) - 2

	var order []string
	cells := make(map[string][]Position)
	for y, row := range rows {
		for x, r := range row {
			if !isVehicleRune(r) {
				continue
			}
			if x < 1 || y < 1 || x > width || y > height {
				return nil, fmt.Errorf("%w: %w: vehicle %q on the border at line %d, column %d",
					ErrParse, ErrMalformed, r, y+1, x+1)
			}

			id := string(r)
			if _, seen := cells[id]; !seen {
				order = append(order, id)
			}
			cells[id] = append(cells[id], Position{X: x - 1, Y: y - 1})
		}
	}

	vehicles := make([]Vehicle, 0, len(order))
	for _, id := range order {
		v, err := NewVehicle(id, cells[id])
		if err != nil {
			return nil, fmt.Errorf("%w: vehicle %q: %w", ErrParse, id, err)
		}
		vehicles = append(vehicles, v)
	}

	return &Board{
		width:    width,
		height:   height,
		exit:     exit,
		vehicles: vehicles,
	}, nil
}

// Format renders the board with its border and exit marker, in the form
// Parse accepts.
func (b *Board) Format() string {
	rows := make([][]rune, b.height+2)
	for y := range rows {
		rows[y] = make([]rune, b.width+2)
		for x := range rows[y] {
			switch {
			case (y == 0 || y == b.height+1) && (x == 0 || x == b.width+1):
				rows[y][x] = CornerBorder
			case y == 0 || y == b.height+1:
				rows[y][x] = HorizBorder
			case x == 0 || x == b.width+1:
				rows[y][x] = VertBorder
			}
		}
	}

	for y, row := range b.Grid() {
		copy(rows[y+1][1:], row)
	}

	mx, my := b.exitMarker()
	if my >= 0 && my < len(rows) && mx >= 0 && mx < len(rows[my]) {
		rows[my][mx] = ExitMarker
	}

	var sb strings.Builder
	for _, row := range rows {
		sb.WriteString(string(row))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// exitMarker returns where in the bordered text the exit marker goes
func (b *Board) exitMarker() (int, int) {
	e := b.exit
	switch {
	case e.Y == 0 && e.X < b.width:
		return e.X + 1, 0
	case e.X >= b.width:
		return b.width + 1, e.Y + 1
	case e.Y >= b.height:
		return e.X + 1, b.height + 1
	case e.X == 0:
		return 0, e.Y + 1
	}
	return e.X + 1, e.Y + 1
}

func findExit(rows [][]rune) (Position, bool) {
	for y, row := range rows {
		for x, r := range row {
			if r != ExitMarker {
				continue
			}
			if x != 0 {
				x--
			}
			if y != 0 {
				y--
			}
			return Position{X: x, Y: y}, true
		}
	}
	return Position{}, false
}

func isVehicleRune(r rune) bool {
	switch r {
	case EmptyCell, ' ', CornerBorder, HorizBorder, VertBorder, ExitMarker:
		return false
	}
	return true
}
