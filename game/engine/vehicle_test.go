package engine

import (
	"errors"
	"testing"
)

func TestNewVehicle(t *testing.T) {
	tests := []struct {
		name        string
		id          string
		cells       []Position
		origin      Position
		length      int
		orientation Orientation
		kind        Kind
	}{
		{"horizontal unordered", "L", []Position{{5, 0}, {3, 0}, {4, 0}}, Position{3, 0}, 3, Horizontal, Other},
		{"vertical player", "X", []Position{{2, 5}, {2, 4}}, Position{2, 4}, 2, Vertical, Player},
		{"single cell is horizontal", "D", []Position{{1, 1}}, Position{1, 1}, 1, Horizontal, Other},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			v, err := NewVehicle(test.id, test.cells)
			if err != nil {
				t.Fatalf("NewVehicle returned error: %v", err)
			}
			if v.Origin != test.origin {
				t.Errorf("Expected origin %v, got %v", test.origin, v.Origin)
			}
			if v.Length != test.length {
				t.Errorf("Expected length %d, got %d", test.length, v.Length)
			}
			if v.Orientation != test.orientation {
				t.Errorf("Expected orientation %s, got %s", test.orientation, v.Orientation)
			}
			if v.Kind != test.kind {
				t.Errorf("Expected kind %s, got %s", test.kind, v.Kind)
			}
		})
	}
}

func TestNewVehicle_Empty(t *testing.T) {
	_, err := NewVehicle("A", nil)
	if !errors.Is(err, ErrEmptyVehicle) {
		t.Errorf("Expected ErrEmptyVehicle, got %v", err)
	}
}

func TestVehicle_CellsHeadTail(t *testing.T) {
	v := Vehicle{ID: "R", Origin: Position{5, 2}, Length: 3, Orientation: Vertical}

	cells := v.CellList()
	expected := []Position{{5, 2}, {5, 3}, {5, 4}}
	if len(cells) != len(expected) {
		t.Fatalf("Expected %d cells, got %d", len(expected), len(cells))
	}
	for i := range expected {
		if cells[i] != expected[i] {
			t.Errorf("Cell %d: expected %v, got %v", i, expected[i], cells[i])
		}
	}

	if v.Head() != (Position{5, 2}) {
		t.Errorf("Unexpected head %v", v.Head())
	}
	if v.Tail() != (Position{5, 4}) {
		t.Errorf("Unexpected tail %v", v.Tail())
	}

	// Cells can be walked more than once
	count := 0
	for range v.Cells() {
		count++
	}
	for range v.Cells() {
		count++
	}
	if count != 6 {
		t.Errorf("Expected to iterate 6 cells over two passes, got %d", count)
	}
}

func TestVehicle_Overlaps(t *testing.T) {
	a := Vehicle{ID: "A", Origin: Position{0, 0}, Length: 2, Orientation: Horizontal}
	b := Vehicle{ID: "B", Origin: Position{1, 0}, Length: 2, Orientation: Vertical}
	c := Vehicle{ID: "C", Origin: Position{2, 0}, Length: 2, Orientation: Vertical}

	if !a.Overlaps(b) {
		t.Error("Expected A and B to overlap at (1,0)")
	}
	if a.Overlaps(c) {
		t.Error("Expected A and C not to overlap")
	}
	if a.Overlaps(a) {
		t.Error("A vehicle never overlaps itself")
	}
}

func TestVehicle_Slide(t *testing.T) {
	h := Vehicle{ID: "H", Origin: Position{2, 1}, Length: 2, Orientation: Horizontal}
	v := Vehicle{ID: "V", Origin: Position{2, 1}, Length: 2, Orientation: Vertical}

	tests := []struct {
		name     string
		vehicle  Vehicle
		dir      Direction
		delta    int
		expected Position
	}{
		{"horizontal forward", h, Forward, 1, Position{1, 1}},
		{"horizontal backward", h, Backward, 2, Position{4, 1}},
		{"vertical forward", v, Forward, 1, Position{2, 0}},
		{"vertical backward", v, Backward, 1, Position{2, 2}},
		{"no bounds check", h, Forward, 5, Position{-3, 1}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			moved := test.vehicle.Slide(test.dir, test.delta)
			if moved.Origin != test.expected {
				t.Errorf("Expected origin %v, got %v", test.expected, moved.Origin)
			}
			if test.vehicle.Origin != (Position{2, 1}) {
				t.Error("Slide must not modify the original vehicle")
			}
		})
	}
}
