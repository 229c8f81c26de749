// internal/httpserver/routes_ranking.go
//
// HTTP routes for the per-level ranking.
//   - POST /ranking        → submit a solved game under a display name
//   - GET  /ranking?level= → the 10 lowest move counts for a level
//
// The move count is read from the caller's session; clients only choose the
// name. A store outage answers 503 {"error":"ranking_unavailable"} and never
// touches the game itself.

package httpserver

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/hanoi/internal/auth"
	"github.com/robalobadob/hanoi/internal/ranking"
)

// mountRanking registers /ranking on r.
func (s *Server) mountRanking(r chi.Router) {
	r.Route("/ranking", func(r chi.Router) {
		r.Post("/", s.handleSubmitScore)
		r.Get("/", s.handleTopScores)
	})
}

// submitReq is the request payload for POST /ranking.
type submitReq struct {
	GameID string `json:"gameId"`
	Name   string `json:"name"`
}

// handleSubmitScore puts a won game on the ranking. Signed-in players
// default to their username.
func (s *Server) handleSubmitScore(w http.ResponseWriter, r *http.Request) {
	var req submitReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	if req.GameID == "" {
		writeError(w, http.StatusBadRequest, "invalid")
		return
	}
	if me := auth.FromContext(r.Context()); me != nil && strings.TrimSpace(req.Name) == "" {
		req.Name = me.Username
	}
	e, err := s.play.SubmitScore(r.Context(), s.owner(w, r), req.GameID, req.Name)
	if err != nil {
		writePlayError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

// topRes is returned by GET /ranking.
type topRes struct {
	Level int             `json:"level"`
	Top   []ranking.Entry `json:"top"`
}

func (s *Server) handleTopScores(w http.ResponseWriter, r *http.Request) {
	level, err := s.play.Config().ParseLevel(r.URL.Query().Get("level"))
	if err != nil {
		writePlayError(w, r, err)
		return
	}
	top, err := s.play.TopScores(r.Context(), level)
	if err != nil {
		writePlayError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, topRes{Level: level, Top: top})
}
