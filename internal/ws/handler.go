// Package ws pushes puzzle snapshots to browsers over a websocket.
//
// Client -> Server
//
//	{"type":"click","peg":0}   apply a peg click to the current game
//	{"type":"new","level":4}   start a new game and follow it
//
// Server -> Client
//
//	{"type":"snapshot", ...play.Result}   after connect and every mutation
//	{"type":"error","error":"code"}       bad input; the connection stays open
//
// Clicks made through the HTTP API on the same game are pushed too, since
// every mutation is published by play.Service.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hanoi/internal/config"
	"github.com/robalobadob/hanoi/internal/play"
	"github.com/robalobadob/hanoi/internal/puzzle"
)

// idleTimeout closes connections that send nothing for this long.
const idleTimeout = 10 * time.Minute

// OwnerFunc resolves the player behind a request. It runs before the
// upgrade so it may still set cookies.
type OwnerFunc func(w http.ResponseWriter, r *http.Request) string

type clientMessage struct {
	Type  string `json:"type"`
	Peg   int    `json:"peg"`
	Level int    `json:"level"`
}

type serverMessage struct {
	Type string `json:"type"`
	*play.Result
	Error string `json:"error,omitempty"`
}

func Handler(svc *play.Service, owner OwnerFunc, originPatterns []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		me := owner(w, r)
		var first *play.Result
		if id := r.URL.Query().Get("gameId"); id != "" {
			res, err := svc.Get(r.Context(), me, id)
			switch {
			case errors.Is(err, play.ErrNotFound):
				http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
				return
			case errors.Is(err, play.ErrForbidden):
				http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
				return
			case err != nil:
				http.Error(w, `{"error":"server_error"}`, http.StatusInternalServerError)
				return
			}
			first = &res
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: originPatterns})
		if err != nil {
			log.Debug().Err(err).Msg("ws accept")
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		c := &client{svc: svc, owner: me, out: make(chan serverMessage, 8), done: ctx.Done()}
		defer c.unfollow()
		go c.writeLoop(ctx, conn)

		if first != nil {
			c.follow(first.GameID)
			c.send(serverMessage{Type: "snapshot", Result: first})
		}

		for {
			readCtx, readCancel := context.WithTimeout(ctx, idleTimeout)
			_, data, err := conn.Read(readCtx)
			readCancel()
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				default:
					log.Debug().Err(err).Msg("ws read")
				}
				return
			}
			c.handle(ctx, data)
		}
	}
}

// client is one websocket connection following at most one game.
type client struct {
	svc   *play.Service
	owner string
	out   chan serverMessage
	done  <-chan struct{}

	mu     sync.Mutex
	gameID string
	stop   func()
}

func (c *client) handle(ctx context.Context, data []byte) {
	var m clientMessage
	if err := json.Unmarshal(data, &m); err != nil {
		c.fail("bad_json")
		return
	}
	switch m.Type {
	case "click":
		c.mu.Lock()
		id := c.gameID
		c.mu.Unlock()
		if id == "" {
			c.fail("no_game")
			return
		}
		// the snapshot arrives through the subscription
		if _, err := c.svc.Click(ctx, c.owner, id, m.Peg); err != nil {
			c.fail(errorCode(err))
		}
	case "new":
		level := m.Level
		if level == 0 {
			level = c.svc.Config().DefaultLevel
		}
		res, err := c.svc.NewGame(ctx, c.owner, level)
		if err != nil {
			c.fail(errorCode(err))
			return
		}
		c.follow(res.GameID)
		c.send(serverMessage{Type: "snapshot", Result: &res})
	default:
		c.fail("unknown_type")
	}
}

// follow switches the subscription to game id.
func (c *client) follow(id string) {
	c.unfollow()
	ch, stop := c.svc.Subscribe(id)
	c.mu.Lock()
	c.gameID, c.stop = id, stop
	c.mu.Unlock()
	go func() {
		for res := range ch {
			c.send(serverMessage{Type: "snapshot", Result: &res})
		}
	}()
}

func (c *client) unfollow() {
	c.mu.Lock()
	stop := c.stop
	c.gameID, c.stop = "", nil
	c.mu.Unlock()
	if stop != nil {
		stop()
	}
}

func (c *client) send(m serverMessage) {
	select {
	case c.out <- m:
	case <-c.done:
	}
}

func (c *client) fail(code string) {
	c.send(serverMessage{Type: "error", Error: code})
}

func (c *client) writeLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		select {
		case <-ctx.Done():
			return
		case m := <-c.out:
			payload, err := json.Marshal(m)
			if err != nil {
				log.Error().Err(err).Msg("ws encode")
				continue
			}
			wctx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err = conn.Write(wctx, websocket.MessageText, payload)
			cancel()
			if err != nil {
				// unblocks the read loop
				_ = conn.Close(websocket.StatusInternalError, "write failed")
				return
			}
		}
	}
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, puzzle.ErrInvalidPeg):
		return "invalid_peg"
	case errors.Is(err, puzzle.ErrSolved):
		return "solved"
	case errors.Is(err, config.ErrInvalidLevel):
		return "invalid_level"
	case errors.Is(err, play.ErrNotFound):
		return "not_found"
	case errors.Is(err, play.ErrForbidden):
		return "forbidden"
	default:
		log.Error().Err(err).Msg("ws command")
		return "server_error"
	}
}
