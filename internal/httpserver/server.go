// internal/httpserver/server.go
//
// HTTP server wiring for the Hanoi backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs, logging).
//   - Public endpoints: "/" (browser client), "/health", "/levels".
//   - Game endpoints (optional auth): /game/new, /game/click, /game/{id}, /best, /ws.
//   - Ranking endpoints: GET/POST /ranking.
//   - Auth + profile endpoints: /auth/*, /stats/me, /games/mine.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - Guests are identified by an anonymous device cookie; signed-in players
//     by their account id. Either one is the "owner" of games and best scores.
//   - The websocket route sits outside the timeout and JSON middleware.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hanoi/assets"
	"github.com/robalobadob/hanoi/internal/auth"
	"github.com/robalobadob/hanoi/internal/config"
	"github.com/robalobadob/hanoi/internal/history"
	"github.com/robalobadob/hanoi/internal/play"
	"github.com/robalobadob/hanoi/internal/puzzle"
	"github.com/robalobadob/hanoi/internal/ws"
)

const anonCookieName = "hanoi_anon"

// Server bundles router, game service and optional account stores.
type Server struct {
	r       *chi.Mux
	cfg     config.Config
	play    *play.Service
	users   *auth.Users    // nil: accounts disabled
	history *history.Store // nil: /games/mine and /stats/me report nothing
	tokens  auth.Tokens
}

// Option configures optional parts of the server.
type Option func(*Server)

// WithAccounts enables /auth/* and signed-in play.
func WithAccounts(u *auth.Users) Option { return func(s *Server) { s.users = u } }

// WithHistory enables /games/mine and the solved counters of /stats/me.
func WithHistory(h *history.Store) Option { return func(s *Server) { s.history = h } }

// New constructs a Server, installs middleware, and registers routes.
func New(cfg config.Config, svc *play.Service, opts ...Option) *Server {
	s := &Server{
		r:    chi.NewRouter(),
		cfg:  cfg,
		play: svc,
		tokens: auth.Tokens{
			Secret:     []byte(cfg.JWTSecret),
			TTL:        time.Duration(cfg.JWTExpiresDays) * 24 * time.Hour,
			CookieName: cfg.CookieName,
			Secure:     cfg.Production,
		},
	}
	for _, o := range opts {
		o(s)
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID) // add X-Request-ID
	s.r.Use(chimw.RealIP)    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(requestLogger)   // one zerolog line per request
	s.r.Use(chimw.Recoverer) // recover from panics
	s.r.Use(s.cors)          // credentials-friendly CORS

	// --- browser client ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFileFS(w, r, assets.Web(), "index.html")
	})
	s.r.Handle("/assets/*", http.StripPrefix("/assets/", assets.WebHandler()))

	// --- live updates (long lived, so no timeout) ---
	origins := []string{originHost(cfg.ClientOrigin)}
	s.r.With(s.withOptionalAuth).Get("/ws", ws.Handler(svc, s.owner, origins))

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
		r.Use(jsonContentType)                 // default JSON responses

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
		})
		r.Get("/levels", s.handleLevels)

		// Game endpoints: OPTIONAL AUTH (guests can play)
		r.Group(func(r chi.Router) {
			r.Use(s.withOptionalAuth)
			r.Post("/game/new", s.handleNewGame)
			r.Post("/game/click", s.handleClick)
			r.Get("/game/{id}", s.handleGetGame)
			r.Get("/best", s.handleBest)
			s.mountRanking(r)
		})

		// Auth + profile/stats
		s.mountAuthRoutes(r)
	})

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Start serves HTTP on addr until ctx is cancelled, then shuts down
// gracefully. Hijacked websocket connections are not waited for.
func (s *Server) Start(ctx context.Context, addr string) error {
	hs := &http.Server{Addr: addr, Handler: s.r, ReadHeaderTimeout: 5 * time.Second}
	errc := make(chan error, 1)
	go func() { errc <- hs.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return hs.Shutdown(shutdownCtx)
}

// Router exposes the internal router (useful for tests and custom servers).
func (s *Server) Router() chi.Router { return s.r }

// owner is the account id of a signed-in caller, else the anonymous device id
// (set as a cookie on first use).
func (s *Server) owner(w http.ResponseWriter, r *http.Request) string {
	if me := auth.FromContext(r.Context()); me != nil {
		return me.ID
	}
	return s.ensureAnonID(w, r)
}

// ensureAnonID returns an existing anon cookie or sets a new one.
func (s *Server) ensureAnonID(w http.ResponseWriter, r *http.Request) string {
	if id := anonID(r); id != "" {
		return id
	}
	id := uuid.NewString()
	sameSite := http.SameSiteLaxMode
	if s.cfg.Production {
		sameSite = http.SameSiteNoneMode
	}
	http.SetCookie(w, &http.Cookie{
		Name:     anonCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.Production,
		SameSite: sameSite,
		Expires:  time.Now().Add(180 * 24 * time.Hour),
	})
	return id
}

func anonID(r *http.Request) string {
	if c, err := r.Cookie(anonCookieName); err == nil {
		return c.Value
	}
	return ""
}

// ------------------------------- responses ---------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("write response")
	}
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

// writePlayError maps service and puzzle errors onto status codes.
func writePlayError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, config.ErrInvalidLevel):
		writeError(w, http.StatusBadRequest, "invalid_level")
	case errors.Is(err, puzzle.ErrInvalidPeg):
		writeError(w, http.StatusBadRequest, "invalid_peg")
	case errors.Is(err, play.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found")
	case errors.Is(err, play.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, puzzle.ErrSolved):
		writeError(w, http.StatusConflict, "solved")
	case errors.Is(err, play.ErrNotSolved):
		writeError(w, http.StatusConflict, "not_solved")
	case errors.Is(err, play.ErrAlreadyRanked):
		writeError(w, http.StatusConflict, "already_ranked")
	case errors.Is(err, play.ErrRankingUnavailable):
		writeError(w, http.StatusServiceUnavailable, "ranking_unavailable")
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Str("reqId", chimw.GetReqID(r.Context())).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "server_error")
	}
}
