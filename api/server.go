package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/wricardo/mcp-training/rushhour/game/service"
	"github.com/wricardo/mcp-training/rushhour/transport/websocket"
)

// maxBodyBytes bounds request bodies; puzzles are a few hundred bytes
const maxBodyBytes = 1 << 20

// Server represents the REST API server
type Server struct {
	service service.SolverService
	hub     *websocket.Hub
	router  *mux.Router
	logger  zerolog.Logger
}

// NewServer creates a new API server. hub may be nil, which disables /ws.
func NewServer(solver service.SolverService, hub *websocket.Hub, logger zerolog.Logger) *Server {
	s := &Server{
		service: solver,
		hub:     hub,
		router:  mux.NewRouter(),
		logger:  logger,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	// Solving
	s.router.HandleFunc("/api/solve", s.handleSolve).Methods("POST")

	// Recorded solutions
	s.router.HandleFunc("/api/solutions", s.handleListSolutions).Methods("GET")
	s.router.HandleFunc("/api/solutions/{id}", s.handleGetSolution).Methods("GET")
	s.router.HandleFunc("/api/solutions/{id}", s.handleDeleteSolution).Methods("DELETE")

	// Puzzle catalog
	s.router.HandleFunc("/api/puzzles", s.handleListPuzzles).Methods("GET")
	s.router.HandleFunc("/api/puzzles/{name}", s.handleGetPuzzle).Methods("GET")
	s.router.HandleFunc("/api/puzzles/{name}", s.handleSavePuzzle).Methods("POST", "PUT")
	s.router.HandleFunc("/api/puzzles/{name}/solve", s.handleSolvePuzzle).Methods("POST")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)

	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps service sentinels onto HTTP status codes
func (s *Server) respondServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrInvalidPuzzle), errors.Is(err, service.ErrInvalidRequest):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrPuzzleNotFound), errors.Is(err, service.ErrSolutionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrSolutionExists):
		status = http.StatusConflict
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
	}

	if status == http.StatusInternalServerError {
		s.logger.Error().Err(err).Msg("request failed")
	}
	respondError(w, status, err.Error())
}

// decodeJSON reads an optional JSON body into v. An empty body is fine.
func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return fmt.Errorf("%w: malformed JSON body: %v", service.ErrInvalidRequest, err)
}

// Solve Handlers

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	var req service.SolveRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondServiceError(w, err)
		return
	}

	result, err := s.service.Solve(r.Context(), req)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleSolvePuzzle(w http.ResponseWriter, r *http.Request) {
	var req service.SolveRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondServiceError(w, err)
		return
	}
	req.Puzzle = ""
	req.PuzzleName = mux.Vars(r)["name"]

	result, err := s.service.Solve(r.Context(), req)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Solution Handlers

func (s *Server) handleListSolutions(w http.ResponseWriter, r *http.Request) {
	solutions, err := s.service.ListSolutions(r.Context())
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	query := r.URL.Query()
	total := len(solutions)

	if outcome := query.Get("outcome"); outcome != "" {
		filtered := make([]*service.SolveResult, 0, len(solutions))
		for _, sol := range solutions {
			if sol.Outcome == outcome {
				filtered = append(filtered, sol)
			}
		}
		solutions = filtered
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l < len(solutions) {
			// Newest solutions are at the end
			solutions = solutions[len(solutions)-l:]
		}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"count":     len(solutions),
		"total":     total,
		"solutions": solutions,
	})
}

func (s *Server) handleGetSolution(w http.ResponseWriter, r *http.Request) {
	result, err := s.service.GetSolution(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleDeleteSolution(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.service.DeleteSolution(r.Context(), id); err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Solution %s deleted", id),
	})
}

// Puzzle Handlers

func (s *Server) handleListPuzzles(w http.ResponseWriter, r *http.Request) {
	puzzles, err := s.service.ListPuzzles(r.Context())
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"count":   len(puzzles),
		"puzzles": puzzles,
	})
}

func (s *Server) handleGetPuzzle(w http.ResponseWriter, r *http.Request) {
	detail, err := s.service.LoadPuzzle(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	// Plain text for curl users who ask for it
	if strings.Contains(r.Header.Get("Accept"), "text/plain") {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		io.WriteString(w, detail.Text)
		return
	}
	respondJSON(w, http.StatusOK, detail)
}

// handleSavePuzzle accepts either {"puzzle": "..."} or the raw puzzle text
func (s *Server) handleSavePuzzle(w http.ResponseWriter, r *http.Request) {
	var text string
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req struct {
			Puzzle string `json:"puzzle"`
		}
		if err := decodeJSON(r, &req); err != nil {
			s.respondServiceError(w, err)
			return
		}
		text = req.Puzzle
	} else {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			respondError(w, http.StatusBadRequest, "failed to read body")
			return
		}
		text = string(body)
	}

	detail, err := s.service.SavePuzzle(r.Context(), mux.Vars(r)["name"], text)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, detail)
}

// WebSocket Handler

// handleWebSocket subscribes to one solution's events, or to every event
// when no solution is given. The solution does not have to exist yet.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		respondError(w, http.StatusServiceUnavailable, "websocket updates are disabled")
		return
	}

	channel := r.URL.Query().Get("solution")
	if channel == "" {
		channel = websocket.AllChannels
	}
	s.hub.ServeWS(w, r, strings.ToLower(channel))
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
