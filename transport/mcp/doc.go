// Package mcp exposes the solver to AI agents over the Model Context Protocol.
//
// The Client is a thin proxy: every tool call becomes a request against the
// REST API and the JSON response is rendered as text for the agent.
//
// Tools:
//   - puzzle_format: describe the puzzle text format with an example
//   - solve_puzzle: solve an inline puzzle or a catalog puzzle by name
//   - list_puzzles: list catalog puzzles
//   - get_puzzle: show a catalog puzzle with its exit and blockers
//   - save_puzzle: add or replace a catalog puzzle
//   - list_solutions: list recorded searches, optionally by outcome
//   - get_solution: show one recorded search
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
