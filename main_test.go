package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/wricardo/mcp-training/rushhour/game/config"
	"github.com/wricardo/mcp-training/rushhour/game/engine"
	"github.com/wricardo/mcp-training/rushhour/game/service"
	"github.com/wricardo/mcp-training/rushhour/transport/mcp"
)

const boxedPuzzle = "+x--+\n|AAB|\n|XCB|\n|XCD|\n+---+\n"

func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), append([]string{"rushhour"}, args...), strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func writePuzzle(t *testing.T, dir, name, text string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name+".txt"), []byte(text), 0644); err != nil {
		t.Fatalf("Failed to write puzzle: %v", err)
	}
}

func TestRun_SolvesStdin(t *testing.T) {
	code, stdout, _ := runCLI(t, engine.ExamplePuzzle)
	if code != exitSolved {
		t.Fatalf("Expected exit code %d, got %d\n%s", exitSolved, code, stdout)
	}

	lines := strings.Split(strings.TrimRight(stdout, "\n"), "\n")
	if lines[0] != "" {
		t.Errorf("Expected a leading blank line, got %q", lines[0])
	}
	if lines[1] != "Solution found in 17 steps!" {
		t.Errorf("Unexpected header %q", lines[1])
	}
	if lines[2] != " 1. L - left 3" {
		t.Errorf("Unexpected first step %q", lines[2])
	}
	if last := lines[len(lines)-1]; last != "17. X - up 3" {
		t.Errorf("Unexpected last step %q", last)
	}
	if len(lines) != 19 {
		t.Errorf("Expected 19 output lines, got %d", len(lines))
	}
}

func TestRun_ExitCodes(t *testing.T) {
	tests := []struct {
		name   string
		stdin  string
		args   []string
		code   int
		stdout string
	}{
		{
			name:   "unparseable input",
			stdin:  "not a puzzle",
			code:   exitBadInput,
			stdout: "Could not parse input. Try entering something like this:\n" + engine.ExamplePuzzle + "\n",
		},
		{
			name:   "empty input",
			stdin:  "",
			code:   exitBadInput,
			stdout: "Could not parse input.",
		},
		{
			name:   "no solution",
			stdin:  boxedPuzzle,
			code:   exitNoSolution,
			stdout: "No solution found.\n",
		},
		{
			name:   "search limit",
			stdin:  engine.ExamplePuzzle,
			args:   []string{"--max-states", "10"},
			code:   exitNoSolution,
			stdout: "Search limit reached.\n",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			code, stdout, _ := runCLI(t, test.stdin, test.args...)
			if code != test.code {
				t.Errorf("Expected exit code %d, got %d", test.code, code)
			}
			if !strings.HasPrefix(stdout, test.stdout) {
				t.Errorf("Expected stdout to start with %q, got %q", test.stdout, stdout)
			}
		})
	}
}

func TestRun_Progress(t *testing.T) {
	code, _, stderr := runCLI(t, "+x---+\n|AA..|\n|X...|\n|X...|\n+----+\n", "--progress")
	if code != exitSolved {
		t.Fatalf("Expected exit code %d, got %d", exitSolved, code)
	}
	if !strings.HasPrefix(stderr, "..") {
		t.Errorf("Expected progress dots on stderr, got %q", stderr)
	}

	_, _, quiet := runCLI(t, "+x---+\n|AA..|\n|X...|\n|X...|\n+----+\n")
	if strings.Contains(quiet, ".") {
		t.Errorf("Expected no progress output without --progress, got %q", quiet)
	}
}

func TestRun_FileAndCatalog(t *testing.T) {
	dir := t.TempDir()
	writePuzzle(t, dir, "classic", engine.ExamplePuzzle)
	writePuzzle(t, dir, "broken", "+--+\n|XX|\n+--+\n")

	code, stdout, _ := runCLI(t, "", "--file", filepath.Join(dir, "classic.txt"))
	if code != exitSolved || !strings.Contains(stdout, "Solution found in 17 steps!") {
		t.Errorf("--file: unexpected result %d %q", code, stdout)
	}

	code, stdout, _ = runCLI(t, "", "--puzzles-dir", dir, "--puzzle", "classic")
	if code != exitSolved || !strings.Contains(stdout, "Solution found in 17 steps!") {
		t.Errorf("--puzzle: unexpected result %d %q", code, stdout)
	}

	code, _, stderr := runCLI(t, "", "--puzzles-dir", dir, "--puzzle", "missing")
	if code != exitBadInput || !strings.Contains(stderr, "puzzle not found") {
		t.Errorf("missing puzzle: unexpected result %d %q", code, stderr)
	}

	code, stdout, _ = runCLI(t, "", "--puzzles-dir", dir, "--puzzle", "broken")
	if code != exitBadInput || !strings.HasPrefix(stdout, "Could not parse input.") {
		t.Errorf("broken puzzle: unexpected result %d %q", code, stdout)
	}

	code, _, _ = runCLI(t, "", "--file", filepath.Join(dir, "nope.txt"))
	if code != exitBadInput {
		t.Errorf("missing file: expected exit code %d, got %d", exitBadInput, code)
	}
}

func TestOpenPersistence(t *testing.T) {
	tests := []struct {
		name  string
		store config.StoreSettings
	}{
		{"file", config.StoreSettings{Driver: config.StoreFile, Dir: t.TempDir()}},
		{"sqlite", config.StoreSettings{Driver: config.StoreSQLite}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			persistence, closeStore, err := openPersistence(test.store)
			if err != nil {
				t.Fatalf("openPersistence failed: %v", err)
			}
			defer closeStore()

			if err := persistence.Save(&service.Record{ID: "ab12", Outcome: service.OutcomeSolved}); err != nil {
				t.Fatalf("Save failed: %v", err)
			}
			if !persistence.Exists("ab12") {
				t.Error("Expected saved record to exist")
			}
		})
	}
}

func TestInitializeServices(t *testing.T) {
	puzzles := t.TempDir()
	writePuzzle(t, puzzles, "classic", engine.ExamplePuzzle)

	settings := &config.Settings{
		PuzzlesDir: puzzles,
		Store:      config.StoreSettings{Driver: config.StoreFile, Dir: t.TempDir()},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	solver, closeStore, err := initializeServices(ctx, settings, nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("initializeServices failed: %v", err)
	}
	defer closeStore()

	result, err := solver.Solve(ctx, service.SolveRequest{PuzzleName: "classic"})
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if result.TotalMoves != 34 {
		t.Errorf("Expected 34 moves, got %d", result.TotalMoves)
	}

	if _, err := os.Stat(filepath.Join(settings.Store.Dir, result.ID+".json")); err != nil {
		t.Errorf("Expected the solution to be persisted: %v", err)
	}
}

func TestInitializeServices_InvalidPuzzlesDir(t *testing.T) {
	settings := &config.Settings{
		PuzzlesDir: "/non/existent/path",
		Store:      config.StoreSettings{Driver: config.StoreFile, Dir: t.TempDir()},
	}

	if _, _, err := initializeServices(context.Background(), settings, nil, zerolog.Nop()); err == nil {
		t.Error("Expected error for non-existent puzzles directory")
	}
}

func TestRouter_MCPEndpoint(t *testing.T) {
	api := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	router := newRouter(api, mcp.NewClient("http://localhost:0").GetMCPServer())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/mcp", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405 for GET /mcp, got %d", rec.Code)
	}

	body := `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/mcp", strings.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 for POST /mcp, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "solve_puzzle") {
		t.Errorf("Expected tool list in response, got %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	if rec.Code != http.StatusTeapot {
		t.Errorf("Expected other paths to reach the API handler, got %d", rec.Code)
	}
}

func TestApiReachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	if !apiReachable(context.Background(), server.URL) {
		t.Error("Expected the test server to be reachable")
	}
	if apiReachable(context.Background(), "http://127.0.0.1:1") {
		t.Error("Expected a closed port to be unreachable")
	}
}
