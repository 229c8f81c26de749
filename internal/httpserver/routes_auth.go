package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hanoi/internal/auth"
	"github.com/robalobadob/hanoi/internal/history"
)

// credentials is the payload for signup and login.
type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// mountAuthRoutes registers authentication + gated routes (/auth/*, /stats/me, /games/mine).
// Without a user store only logout and the gated 401s remain.
func (s *Server) mountAuthRoutes(r chi.Router) {
	if s.users != nil {
		r.Post("/auth/signup", s.handleSignup)
		r.Post("/auth/login", s.handleLogin)
	}
	r.Post("/auth/logout", s.handleLogout)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/auth/me", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, auth.FromContext(r.Context()))
		})
		r.Get("/stats/me", s.handleStats)
		r.Get("/games/mine", s.handleMyGames)
	})
}

// handleSignup creates a new user, signs a JWT, sets auth cookie, and claims guest progress.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	u, err := s.users.Create(r.Context(), body.Username, body.Password)
	switch {
	case errors.Is(err, auth.ErrUsernameTaken):
		writeError(w, http.StatusConflict, "Username taken")
		return
	case errors.Is(err, auth.ErrInvalidSignup):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		log.Error().Err(err).Msg("create user")
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if !s.signIn(w, r, u) {
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// handleLogin authenticates user, sets cookie, and claims guest progress.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	u, err := s.users.Authenticate(r.Context(), body.Username, body.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("login")
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if !s.signIn(w, r, u) {
		return
	}
	writeJSON(w, http.StatusOK, auth.Identity{ID: u.ID, Username: u.Username})
}

// signIn sets the auth cookie and moves the device's guest best scores
// and history onto the account.
func (s *Server) signIn(w http.ResponseWriter, r *http.Request, u *auth.User) bool {
	tok, exp, err := s.tokens.Sign(u.ID, u.Username)
	if err != nil {
		log.Error().Err(err).Msg("sign token")
		writeError(w, http.StatusInternalServerError, "sign_failed")
		return false
	}
	s.tokens.SetCookie(w, tok, exp)
	if anon := anonID(r); anon != "" {
		s.play.Claim(r.Context(), anon, u.ID)
	}
	return true
}

// handleLogout clears the auth cookie.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.tokens.ClearCookie(w)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// statsRes is returned by /stats/me. Best is keyed by level.
type statsRes struct {
	ID     string      `json:"id"`
	Solved int         `json:"solved"`
	Moves  int         `json:"moves"`
	Best   map[int]int `json:"best"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	me := auth.FromContext(r.Context())
	res := statsRes{ID: me.ID, Best: map[int]int{}}
	if s.history != nil {
		sum, err := s.history.Summarize(r.Context(), me.ID)
		if err != nil {
			writePlayError(w, r, err)
			return
		}
		res.Solved, res.Moves = sum.Solved, sum.Moves
	}
	best, err := s.play.Bests(r.Context(), me.ID)
	if err != nil {
		writePlayError(w, r, err)
		return
	}
	for level, moves := range best {
		res.Best[level] = moves
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleMyGames(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeJSON(w, http.StatusOK, []history.Game{})
		return
	}
	games, err := s.history.Recent(r.Context(), auth.FromContext(r.Context()).ID, 50)
	if err != nil {
		writePlayError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, games)
}
