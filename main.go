// Command rushhour solves Rush Hour sliding-block puzzles.
//
// Without a subcommand it reads a puzzle from stdin (or --file, or --puzzle
// from the catalog) and prints the shortest solution. Exit status is 0 when
// solved, 1 when no solution exists or the search limit is hit, and 2 when
// the input cannot be parsed.
//
// Subcommands:
//  1. "serve" runs the HTTP server exposing the REST API, WebSocket progress
//     stream and an /mcp endpoint, optionally through an ngrok tunnel
//  2. "mcp" runs an MCP stdio server, starting an internal HTTP API when
//     none is reachable
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/rushhour/game/config"
	"github.com/wricardo/mcp-training/rushhour/game/engine"
	"github.com/wricardo/mcp-training/rushhour/internal/logging"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Rush Hour Solver"
)

// Exit codes of the solve command
const (
	exitSolved     = 0
	exitNoSolution = 1
	exitBadInput   = 2
)

func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: Error loading .env file: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args, os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command line and returns the process exit status
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	err := newApp(stdin, stdout, stderr).Run(ctx, args)
	if err == nil {
		return exitSolved
	}

	var exitErr cli.ExitCoder
	if errors.As(err, &exitErr) {
		if msg := exitErr.Error(); msg != "" {
			fmt.Fprintln(stderr, msg)
		}
		return exitErr.ExitCode()
	}

	fmt.Fprintf(stderr, "Error: %v\n", err)
	return exitNoSolution
}

// newApp builds the command tree. Output goes to the given writers so the
// whole CLI can be driven from tests.
func newApp(stdin io.Reader, stdout, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "rushhour",
		Usage:     "find the shortest solution to a Rush Hour puzzle",
		Version:   Version,
		Writer:    stdout,
		ErrWriter: stderr,
		// Exit codes are handled by run
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "read the puzzle from `FILE` instead of stdin",
			},
			&cli.StringFlag{
				Name:    "puzzle",
				Aliases: []string{"p"},
				Usage:   "solve the catalog puzzle `NAME`",
			},
			&cli.StringFlag{
				Name:    "puzzles-dir",
				Usage:   "directory holding catalog puzzles",
				Value:   "puzzles",
				Sources: cli.EnvVars("RUSHHOUR_PUZZLESDIR"),
			},
			&cli.IntFlag{
				Name:  "max-states",
				Usage: "stop after exploring this many states (0 means no limit)",
			},
			&cli.BoolFlag{
				Name:  "progress",
				Usage: "print a dot to stderr for every explored state",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log level (debug, info, warn, error)",
				Value:   "warn",
				Sources: cli.EnvVars("RUSHHOUR_LOGLEVEL"),
			},
		},
		Action: solveAction(stdin, stdout, stderr),
		Commands: []*cli.Command{
			serveCommand(stderr),
			mcpCommand(stderr),
		},
	}
}

// solveAction is the default command: parse, search, print
func solveAction(stdin io.Reader, stdout, stderr io.Writer) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		logger, err := logging.Setup(cmd.String("log-level"), stderr)
		if err != nil {
			return cli.Exit(err.Error(), exitBadInput)
		}

		text, err := readPuzzle(cmd, stdin)
		if err != nil {
			if errors.Is(err, config.ErrInvalidPuzzle) {
				printParseHelp(stdout)
			}
			return cli.Exit(err.Error(), exitBadInput)
		}

		board, err := engine.Parse(text)
		if err != nil {
			logger.Debug().Err(err).Msg("parse failed")
			printParseHelp(stdout)
			return cli.Exit("", exitBadInput)
		}

		opts := engine.Options{MaxStates: int(cmd.Int("max-states"))}
		if cmd.Bool("progress") {
			opts.ProgressEvery = 1
			opts.OnProgress = func(engine.Progress) {
				fmt.Fprint(stderr, ".")
			}
		}

		result, err := engine.NewSolver(opts).Solve(ctx, board)
		if cmd.Bool("progress") {
			fmt.Fprintln(stderr)
		}
		if result != nil {
			logger.Debug().
				Int("explored", result.Explored).
				Int("visited", result.Visited).
				Int("depth", result.Depth).
				Dur("elapsed", result.Elapsed).
				Msg("search finished")
		}

		switch {
		case errors.Is(err, engine.ErrNoSolution):
			fmt.Fprintln(stdout, "No solution found.")
			return cli.Exit("", exitNoSolution)
		case errors.Is(err, engine.ErrStateLimit):
			fmt.Fprintln(stdout, "Search limit reached.")
			return cli.Exit("", exitNoSolution)
		case err != nil:
			return cli.Exit(err.Error(), exitNoSolution)
		}

		printSolution(stdout, result.Steps)
		return nil
	}
}

// readPuzzle returns the puzzle text from --puzzle, --file or stdin
func readPuzzle(cmd *cli.Command, stdin io.Reader) (string, error) {
	if name := cmd.String("puzzle"); name != "" {
		catalog, err := config.NewManager(cmd.String("puzzles-dir"))
		if err != nil {
			return "", err
		}
		text, _, err := catalog.LoadPuzzle(name)
		return text, err
	}

	if path := cmd.String("file"); path != "" {
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return "", fmt.Errorf("failed to read puzzle file: %w", err)
		}
		return string(data), nil
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}

func printParseHelp(w io.Writer) {
	fmt.Fprintln(w, "Could not parse input. Try entering something like this:")
	fmt.Fprintln(w, strings.TrimRight(engine.ExamplePuzzle, "\n"))
}

func printSolution(w io.Writer, steps []engine.Step) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Solution found in %d steps!\n", len(steps))
	for i, s := range steps {
		fmt.Fprintf(w, "%2d. %s - %s %d\n", i+1, s.VehicleID, s.Heading, s.Count)
	}
}
