package engine

import "fmt"

// Kind distinguishes the player's car from every other vehicle
type Kind string

const (
	Player Kind = "player"
	Other  Kind = "other"

	// PlayerID is the identity that marks the player's car in puzzle text
	PlayerID = "X"

	// Puzzle text markers
	ExitMarker   = 'x'
	EmptyCell    = '.'
	CornerBorder = '+'
	HorizBorder  = '-'
	VertBorder   = '|'
)

// Orientation is the axis a vehicle slides along
type Orientation string

const (
	Horizontal Orientation = "horizontal"
	Vertical   Orientation = "vertical"
)

// Direction is a slide along a vehicle's own axis.
// Forward decreases the axis coordinate, Backward increases it.
type Direction int

const (
	Forward Direction = iota
	Backward
)

func (d Direction) String() string {
	if d == Forward {
		return "forward"
	}
	return "backward"
}

// Heading is one of the four cardinal directions used in solution output
type Heading string

const (
	Up    Heading = "up"
	Down  Heading = "down"
	Left  Heading = "left"
	Right Heading = "right"
)

// Position represents x,y coordinates
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Move is a single vehicle's one-cell slide
type Move struct {
	VehicleID string  `json:"vehicle_id"`
	Heading   Heading `json:"direction"`
}

// Step is a run of Count consecutive identical moves
type Step struct {
	VehicleID string  `json:"vehicle_id"`
	Heading   Heading `json:"direction"`
	Count     int     `json:"count"`
}

// String formats a step the way the CLI prints it, e.g. "L - left 3"
func (s Step) String() string {
	return fmt.Sprintf("%s - %s %d", s.VehicleID, s.Heading, s.Count)
}

// ExamplePuzzle is shown to users whose input could not be parsed
const ExamplePuzzle = `+--x---+
|...LLL|
|......|
|..BBBR|
|...G.R|
|..XGUU|
|..X...|
+------+`
