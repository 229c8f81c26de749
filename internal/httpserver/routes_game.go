// internal/httpserver/routes_game.go
//
// Game endpoints. Every route works for guests; the owner is the account id
// when signed in, else the anonymous device id.
//   - GET  /levels       → configured difficulties and the disk palette
//   - POST /game/new     → start a game at a level (default level when omitted)
//   - POST /game/click   → apply one peg click
//   - GET  /game/{id}    → current snapshot, e.g. after a page reload
//   - GET  /best?level=  → best completed move count for the caller

package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/hanoi/internal/puzzle"
)

// levelsRes also carries the disk palette so clients colour disks the same way.
type levelsRes struct {
	Levels  []int          `json:"levels"`
	Default int            `json:"default"`
	Palette []puzzle.Color `json:"palette"`
}

func (s *Server) handleLevels(w http.ResponseWriter, r *http.Request) {
	g := s.play.Config()
	writeJSON(w, http.StatusOK, levelsRes{Levels: g.Levels, Default: g.DefaultLevel, Palette: puzzle.Palette[:]})
}

// newGameReq is the payload for POST /game/new.
type newGameReq struct {
	Level json.RawMessage `json:"level"` // absent or null selects the default level
}

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	// an empty body is allowed
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	level, err := s.parseLevel(req.Level)
	if err != nil {
		writePlayError(w, r, err)
		return
	}
	res, err := s.play.NewGame(r.Context(), s.owner(w, r), level)
	if err != nil {
		writePlayError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// parseLevel accepts a JSON number or a numeric string. Anything else
// ("abc", 4.5, true) is config.ErrInvalidLevel.
func (s *Server) parseLevel(raw json.RawMessage) (int, error) {
	g := s.play.Config()
	if len(raw) == 0 || string(raw) == "null" {
		return g.DefaultLevel, nil
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return g.ParseLevel(str)
	}
	return g.ParseLevel(string(raw))
}

// clickReq is the payload for POST /game/click.
type clickReq struct {
	GameID string `json:"gameId"`
	Peg    *int   `json:"peg"`
}

func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	var req clickReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	if req.GameID == "" || req.Peg == nil {
		writeError(w, http.StatusBadRequest, "invalid")
		return
	}
	res, err := s.play.Click(r.Context(), s.owner(w, r), req.GameID, *req.Peg)
	if err != nil {
		writePlayError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	res, err := s.play.Get(r.Context(), s.owner(w, r), chi.URLParam(r, "id"))
	if err != nil {
		writePlayError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type bestRes struct {
	Level int  `json:"level"`
	Best  *int `json:"best"`
}

func (s *Server) handleBest(w http.ResponseWriter, r *http.Request) {
	level, err := s.play.Config().ParseLevel(r.URL.Query().Get("level"))
	if err != nil {
		writePlayError(w, r, err)
		return
	}
	best, err := s.play.Best(r.Context(), s.owner(w, r), level)
	if err != nil {
		writePlayError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bestRes{Level: level, Best: best})
}
