package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/mcp-training/rushhour/game/engine"
	"github.com/wricardo/mcp-training/rushhour/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API.
// Searches can take a while, so the HTTP timeout is generous.
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 2 * time.Minute,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Rush Hour Solver",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Rush Hour Solver - MCP Interface

This is a thin client that proxies all requests to the REST API server.

OBJECTIVE:
Slide vehicles along their own axis until the player car X reaches the exit
marked 'x' on the border. The solver finds a shortest solution counted in
single-cell moves.

AVAILABLE TOOLS:
- puzzle_format: How to write a puzzle, with an example
- solve_puzzle: Solve an inline puzzle or a catalog puzzle by name
- list_puzzles: List catalog puzzles
- get_puzzle: Show a catalog puzzle and the vehicles blocking the player
- save_puzzle: Add or replace a catalog puzzle
- list_solutions: List recorded searches
- get_solution: Show one recorded search`),
	)

	c.registerTools()
}

func stringProp(description string) map[string]any {
	return map[string]any{
		"type":        "string",
		"description": description,
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "puzzle_format",
		Description: "Explain the text format of a puzzle",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, c.handlePuzzleFormat)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "solve_puzzle",
		Description: "Solve a puzzle given inline as text or by catalog name. Returns the shortest solution as compressed steps.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"puzzle":      stringProp("Puzzle text including the border (use this or puzzle_name)"),
				"puzzle_name": stringProp("Catalog puzzle name (use this or puzzle)"),
				"max_states": map[string]any{
					"type":        "integer",
					"description": "Stop after exploring this many states (optional)",
				},
			},
		},
	}, c.handleSolvePuzzle)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_puzzles",
		Description: "List the puzzles in the catalog",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, c.handleListPuzzles)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_puzzle",
		Description: "Show a catalog puzzle with its exit and the vehicles blocking the player",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"name": stringProp("Catalog puzzle name"),
			},
			Required: []string{"name"},
		},
	}, c.handleGetPuzzle)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "save_puzzle",
		Description: "Add or replace a catalog puzzle. The text is validated before it is stored.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"name":   stringProp("Catalog puzzle name"),
				"puzzle": stringProp("Puzzle text including the border"),
			},
			Required: []string{"name", "puzzle"},
		},
	}, c.handleSavePuzzle)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_solutions",
		Description: "List recorded searches, newest last",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"outcome": map[string]any{
					"type":        "string",
					"enum":        []string{service.OutcomeSolved, service.OutcomeNoSolution, service.OutcomeLimitReached},
					"description": "Only list searches with this outcome (optional)",
				},
			},
		},
	}, c.handleListSolutions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_solution",
		Description: "Show one recorded search",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"id": stringProp("Solution ID"),
			},
			Required: []string{"id"},
		},
	}, c.handleGetSolution)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body any, result any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

// arguments returns the tool call arguments as a map
func arguments(request mcp.CallToolRequest) map[string]any {
	args, _ := request.Params.Arguments.(map[string]any)
	if args == nil {
		return map[string]any{}
	}
	return args
}

// Tool handlers

func (c *Client) handlePuzzleFormat(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text := `Puzzle format

Draw the board inside a border of '+' corners, '-' edges and '|' sides.
Replace one border cell with a lowercase 'x' to mark the exit.
Inside the border, '.' or a space is an empty cell and any other character
is part of the vehicle with that name. The vehicle drawn with 'X' is the
player; it must reach the exit head first.

Vehicles are straight: all cells in one row (slides left/right) or one
column (slides up/down).

Example:

` + engine.ExamplePuzzle + `

Solution steps read "L - left 3": vehicle L slides 3 cells left.`
	return mcp.NewToolResultText(text), nil
}

func (c *Client) handleSolvePuzzle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	req := service.SolveRequest{}
	req.Puzzle, _ = args["puzzle"].(string)
	req.PuzzleName, _ = args["puzzle_name"].(string)
	if n, ok := args["max_states"].(float64); ok {
		req.MaxStates = int(n)
	}

	var result service.SolveResult
	if err := c.apiCall(ctx, "POST", "/api/solve", req, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatSolveResult(&result)), nil
}

func (c *Client) handleListPuzzles(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count   int                  `json:"count"`
		Puzzles []service.PuzzleInfo `json:"puzzles"`
	}
	if err := c.apiCall(ctx, "GET", "/api/puzzles", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Puzzles (%d):\n\n", response.Count)
	for _, p := range response.Puzzles {
		fmt.Fprintf(&sb, "- %s (%dx%d, %d vehicles)\n", p.ID, p.Width, p.Height, p.Vehicles)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (c *Client) handleGetPuzzle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, _ := arguments(request)["name"].(string)
	if name == "" {
		return mcp.NewToolResultError("name is required"), nil
	}

	var detail service.PuzzleDetail
	if err := c.apiCall(ctx, "GET", "/api/puzzles/"+url.PathEscape(name), nil, &detail); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatPuzzleDetail(&detail)), nil
}

func (c *Client) handleSavePuzzle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	name, _ := args["name"].(string)
	text, _ := args["puzzle"].(string)
	if name == "" || text == "" {
		return mcp.NewToolResultError("name and puzzle are required"), nil
	}

	var detail service.PuzzleDetail
	body := map[string]string{"puzzle": text}
	if err := c.apiCall(ctx, "POST", "/api/puzzles/"+url.PathEscape(name), body, &detail); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("Saved puzzle " + detail.ID + "\n\n" + formatPuzzleDetail(&detail)), nil
}

func (c *Client) handleListSolutions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := "/api/solutions"
	if outcome, _ := arguments(request)["outcome"].(string); outcome != "" {
		path += "?outcome=" + url.QueryEscape(outcome)
	}

	var response struct {
		Count     int                   `json:"count"`
		Solutions []service.SolveResult `json:"solutions"`
	}
	if err := c.apiCall(ctx, "GET", path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Solutions (%d):\n\n", response.Count)
	for _, s := range response.Solutions {
		name := s.PuzzleName
		if name == "" {
			name = "inline"
		}
		fmt.Fprintf(&sb, "- %s %s: %s, %d moves, %d states\n",
			s.ID, name, s.Outcome, s.TotalMoves, s.StatesExplored)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (c *Client) handleGetSolution(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, _ := arguments(request)["id"].(string)
	if id == "" {
		return mcp.NewToolResultError("id is required"), nil
	}

	var result service.SolveResult
	if err := c.apiCall(ctx, "GET", "/api/solutions/"+url.PathEscape(id), nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatSolveResult(&result)), nil
}

// formatSolveResult renders a result the way the CLI prints solutions
func formatSolveResult(r *service.SolveResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Solution ID: %s\n", r.ID)

	switch r.Outcome {
	case service.OutcomeSolved:
		fmt.Fprintf(&sb, "Solution found in %d steps (%d moves)!\n", len(r.Steps), r.TotalMoves)
		for i, step := range r.Steps {
			fmt.Fprintf(&sb, "%2d. %s\n", i+1, step)
		}
	case service.OutcomeNoSolution:
		sb.WriteString("No solution found.\n")
	case service.OutcomeLimitReached:
		sb.WriteString("Search limit reached before a solution was found.\n")
	default:
		fmt.Fprintf(&sb, "Outcome: %s\n", r.Outcome)
	}

	fmt.Fprintf(&sb, "States explored: %d, elapsed: %dms\n", r.StatesExplored, r.ElapsedMs)
	return sb.String()
}

// formatPuzzleDetail renders a catalog puzzle with its blockers
func formatPuzzleDetail(d *service.PuzzleDetail) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Puzzle %s (%dx%d, %d vehicles)\n\n", d.ID, d.Width, d.Height, d.Vehicles)
	sb.WriteString(strings.TrimRight(d.Text, "\n"))
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "Exit: (%d,%d)\n", d.Exit.X, d.Exit.Y)
	if len(d.Blockers) > 0 {
		fmt.Fprintf(&sb, "Blocking the player: %s\n", strings.Join(d.Blockers, ", "))
	} else {
		sb.WriteString("Nothing blocks the player's path to the exit.\n")
	}
	return sb.String()
}
