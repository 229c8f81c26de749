// internal/play/service.go
//
// Game service shared by the HTTP API and the websocket transport.
// Responsibilities:
//   - Start sessions at a configured level and apply peg clicks to them.
//   - On a win: record the best score and the solved game (best effort).
//   - Submit solved games to the ranking and read the per-level top list.
//   - Publish a Result to subscribers after every mutation.
//
// Notes:
//   - Clicks on one session are serialized; different sessions run in parallel.
//   - Best-score and history failures are logged and swallowed: they never
//     change the puzzle outcome returned to the player.
//   - Ranking failures surface as ErrRankingUnavailable and leave the session
//     as it was, so the player can retry or keep playing.

package play

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hanoi/internal/bestscore"
	"github.com/robalobadob/hanoi/internal/config"
	"github.com/robalobadob/hanoi/internal/history"
	"github.com/robalobadob/hanoi/internal/puzzle"
	"github.com/robalobadob/hanoi/internal/ranking"
	"github.com/robalobadob/hanoi/internal/store"
)

var (
	ErrNotFound           = errors.New("game not found")
	ErrForbidden          = errors.New("game belongs to another player")
	ErrNotSolved          = errors.New("game not solved")
	ErrAlreadyRanked      = errors.New("score already submitted")
	ErrRankingUnavailable = errors.New("ranking unavailable")
)

// History receives solved games. *history.Store implements it.
type History interface {
	Add(ctx context.Context, g history.Game) error
	Claim(ctx context.Context, from, to string) error
}

// Result is what a client needs to render after a call.
type Result struct {
	GameID     string          `json:"gameId"`
	Level      int             `json:"level"`
	State      puzzle.Snapshot `json:"state"`
	Events     []puzzle.Event  `json:"events"`
	Message    string          `json:"message,omitempty"` // transient advisory
	FlashMs    int             `json:"flashMs,omitempty"` // how long to show Message
	Won        bool            `json:"won"`
	WinDelayMs int             `json:"winDelayMs,omitempty"`
	Best       *int            `json:"best"` // nil when there is no best yet
	NewBest    bool            `json:"newBest,omitempty"`
}

// Service is safe for concurrent use.
type Service struct {
	cfg      config.Game
	sessions store.Store
	best     bestscore.Store
	ranking  ranking.Store
	history  History
	now      func() time.Time

	locks sync.Map // session id -> *sync.Mutex
	hub   hub
}

// Option configures optional collaborators.
type Option func(*Service)

// WithRanking enables score submission. Without it ranking calls return
// ErrRankingUnavailable.
func WithRanking(r ranking.Store) Option { return func(s *Service) { s.ranking = r } }

// WithHistory records solved games.
func WithHistory(h History) Option { return func(s *Service) { s.history = h } }

// WithClock overrides time.Now (tests).
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

func New(cfg config.Game, sessions store.Store, best bestscore.Store, opts ...Option) *Service {
	s := &Service{
		cfg:      cfg,
		sessions: sessions,
		best:     best,
		now:      time.Now,
		hub:      hub{subs: make(map[string]map[int]chan Result)},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Config exposes the game settings (levels, delays).
func (s *Service) Config() config.Game { return s.cfg }

// NewGame starts a fresh puzzle for owner at level.
func (s *Service) NewGame(ctx context.Context, owner string, level int) (Result, error) {
	n, err := s.cfg.CheckLevel(level)
	if err != nil {
		return Result{}, err
	}
	st, err := puzzle.New(n)
	if err != nil {
		return Result{}, err
	}
	now := s.now()
	sess := store.Session{
		ID:        uuid.NewString(),
		Owner:     owner,
		State:     st,
		StartedAt: now,
		UpdatedAt: now,
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return Result{}, fmt.Errorf("save session: %w", err)
	}
	log.Debug().Str("gameId", sess.ID).Int("level", n).Msg("new game")
	return s.result(ctx, sess, nil), nil
}

// Get returns the current result for a session without changing it.
func (s *Service) Get(ctx context.Context, owner, id string) (Result, error) {
	sess, err := s.load(ctx, owner, id)
	if err != nil {
		return Result{}, err
	}
	return s.result(ctx, sess, nil), nil
}

// Click applies one peg click. Illegal moves are reported through the
// result's events and Message, never as errors. Errors are
// puzzle.ErrInvalidPeg, puzzle.ErrSolved, ErrNotFound and ErrForbidden,
// plus puzzle.ErrCorrupt for a stored state that breaks the disk ordering.
func (s *Service) Click(ctx context.Context, owner, id string, peg int) (Result, error) {
	unlock := s.lock(id)
	defer unlock()

	sess, err := s.load(ctx, owner, id)
	if err != nil {
		return Result{}, err
	}
	if err := sess.State.Validate(); err != nil {
		log.Error().Err(err).Str("gameId", id).Msg("refusing click on corrupt session")
		return Result{}, err
	}
	events, next, err := puzzle.Apply(sess.State, peg)
	if err != nil {
		return s.result(ctx, sess, nil), err
	}
	sess.State = next
	sess.UpdatedAt = s.now()

	newBest := false
	if next.Won() && !sess.Finished {
		sess.Finished = true
		newBest = s.recordWin(ctx, sess)
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return Result{}, fmt.Errorf("save session: %w", err)
	}

	res := s.result(ctx, sess, events)
	res.NewBest = newBest
	s.hub.publish(id, res)
	return res, nil
}

// recordWin writes the best score and history row. Failures are logged only.
func (s *Service) recordWin(ctx context.Context, sess store.Session) bool {
	level, moves := sess.State.NumDisks, sess.State.Moves
	l := log.With().Str("gameId", sess.ID).Int("level", level).Int("moves", moves).Logger()
	l.Info().Msg("puzzle solved")

	improved, err := s.best.Record(ctx, sess.Owner, level, moves)
	if err != nil {
		l.Warn().Err(err).Msg("record best score")
		improved = false
	}
	if s.history != nil {
		g := history.Game{
			ID:         sess.ID,
			Owner:      sess.Owner,
			Level:      level,
			Moves:      moves,
			StartedAt:  sess.StartedAt,
			FinishedAt: sess.UpdatedAt,
		}
		if err := s.history.Add(ctx, g); err != nil {
			l.Warn().Err(err).Msg("record history")
		}
	}
	return improved
}

// Best returns owner's best for level, nil if none. A read failure is
// treated as "no best yet".
func (s *Service) Best(ctx context.Context, owner string, level int) (*int, error) {
	n, err := s.cfg.CheckLevel(level)
	if err != nil {
		return nil, err
	}
	return s.bestFor(ctx, owner, n), nil
}

// Bests returns owner's best per level.
func (s *Service) Bests(ctx context.Context, owner string) (map[int]int, error) {
	return s.best.All(ctx, owner)
}

// SubmitScore puts a solved session on the ranking under name. The move
// count is taken from the session.
func (s *Service) SubmitScore(ctx context.Context, owner, id, name string) (ranking.Entry, error) {
	unlock := s.lock(id)
	defer unlock()

	sess, err := s.load(ctx, owner, id)
	if err != nil {
		return ranking.Entry{}, err
	}
	if !sess.State.Won() {
		return ranking.Entry{}, ErrNotSolved
	}
	if sess.Ranked {
		return ranking.Entry{}, ErrAlreadyRanked
	}
	if s.ranking == nil {
		return ranking.Entry{}, ErrRankingUnavailable
	}
	e, err := s.ranking.Submit(ctx, ranking.Entry{
		Level: sess.State.NumDisks,
		Name:  name,
		Moves: sess.State.Moves,
	})
	if err != nil {
		log.Warn().Err(err).Str("gameId", id).Msg("ranking submit")
		return ranking.Entry{}, fmt.Errorf("%w: %v", ErrRankingUnavailable, err)
	}
	sess.Ranked = true
	if err := s.sessions.Save(ctx, sess); err != nil {
		log.Warn().Err(err).Str("gameId", id).Msg("mark session ranked")
	}
	return e, nil
}

// TopScores returns the ranking for level.
func (s *Service) TopScores(ctx context.Context, level int) ([]ranking.Entry, error) {
	n, err := s.cfg.CheckLevel(level)
	if err != nil {
		return nil, err
	}
	if s.ranking == nil {
		return nil, ErrRankingUnavailable
	}
	top, err := s.ranking.Top(ctx, n, s.cfg.RankingLimit)
	if err != nil {
		log.Warn().Err(err).Int("level", n).Msg("ranking query")
		return nil, fmt.Errorf("%w: %v", ErrRankingUnavailable, err)
	}
	return top, nil
}

// Claim moves a guest's best scores, history and live games to an account
// after signup or login. Best scores merge: the account keeps the lower value.
func (s *Service) Claim(ctx context.Context, from, to string) {
	if from == "" || to == "" || from == to {
		return
	}
	all, err := s.best.All(ctx, from)
	if err != nil {
		log.Warn().Err(err).Msg("claim: read guest best scores")
	}
	for level, moves := range all {
		if _, err := s.best.Record(ctx, to, level, moves); err != nil {
			log.Warn().Err(err).Int("level", level).Msg("claim: record best score")
		}
	}
	if s.history != nil {
		if err := s.history.Claim(ctx, from, to); err != nil {
			log.Warn().Err(err).Msg("claim: history")
		}
	}
	for _, id := range s.sessions.ByOwner(ctx, from) {
		s.reassign(ctx, id, from, to)
	}
}

// reassign hands one live session from a guest to an account, under the
// session lock so that a concurrent click cannot save the old owner back.
func (s *Service) reassign(ctx context.Context, id, from, to string) {
	unlock := s.lock(id)
	defer unlock()
	sess, err := s.sessions.Get(ctx, id)
	if err != nil || sess.Owner != from {
		return
	}
	sess.Owner = to
	if err := s.sessions.Save(ctx, sess); err != nil {
		log.Warn().Err(err).Str("gameId", id).Msg("claim: session")
	}
}

// Prune drops sessions idle for longer than maxIdle.
func (s *Service) Prune(ctx context.Context, maxIdle time.Duration) int {
	n := s.sessions.Prune(ctx, s.now().Add(-maxIdle))
	s.locks.Range(func(k, _ any) bool {
		if _, err := s.sessions.Get(ctx, k.(string)); errors.Is(err, store.ErrNotFound) {
			s.locks.Delete(k)
		}
		return true
	})
	return n
}

func (s *Service) load(ctx context.Context, owner, id string) (store.Session, error) {
	sess, err := s.sessions.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		// a click on an unknown id must not leave its mutex behind
		s.locks.Delete(id)
		return sess, ErrNotFound
	}
	if err != nil {
		return sess, err
	}
	if sess.Owner != owner {
		return store.Session{}, ErrForbidden
	}
	return sess, nil
}

func (s *Service) lock(id string) func() {
	v, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	m := v.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}

func (s *Service) bestFor(ctx context.Context, owner string, level int) *int {
	b, ok, err := s.best.Get(ctx, owner, level)
	if err != nil {
		log.Warn().Err(err).Int("level", level).Msg("read best score")
		return nil
	}
	if !ok {
		return nil
	}
	return &b
}

func (s *Service) result(ctx context.Context, sess store.Session, events []puzzle.Event) Result {
	if events == nil {
		events = []puzzle.Event{}
	}
	res := Result{
		GameID: sess.ID,
		Level:  sess.State.NumDisks,
		State:  puzzle.Snap(sess.State),
		Events: events,
		Won:    sess.State.Won(),
		Best:   s.bestFor(ctx, sess.Owner, sess.State.NumDisks),
	}
	for _, e := range events {
		if e.Type == puzzle.EvtRejected {
			res.Message = e.Message
			res.FlashMs = s.cfg.FlashMs
		}
	}
	if res.Won {
		res.WinDelayMs = s.cfg.WinDelayMs
	}
	return res
}
