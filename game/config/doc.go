// Package config provides the puzzle catalog and runtime settings for the
// Rush Hour solver.
//
// The config package handles:
//   - Loading puzzles from *.txt files in a catalog directory
//   - Validating puzzles by parsing them before they are saved
//   - Listing the catalog with board dimensions and vehicle counts
//   - Reading server settings from defaults, a settings file and the environment
//
// Puzzle Files:
//
// Each puzzle is a plain text file in the same bordered format the solve
// command reads from stdin. The file name without ".txt" is the puzzle ID.
//
// Usage:
//
//	manager, err := config.NewManager("puzzles")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	text, board, err := manager.LoadPuzzle("classic")
//
// Settings:
//
// LoadSettings layers values in this order: built-in defaults, an optional
// rushhour.json or rushhour.yaml, then RUSHHOUR_* environment variables.
//
//	settings, err := config.LoadSettings(".")
//	fmt.Println(settings.Addr(), settings.Store.Driver)
package config
