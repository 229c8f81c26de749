// Package rankclient talks to a Hanoi server's ranking from the terminal
// client.
//
// The server only ranks games it has refereed, so Submit replays the local
// click sequence on a fresh server game before submitting it. The server
// recounts the moves; a tampered sequence is simply not a win.
package rankclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/robalobadob/hanoi/internal/ranking"
)

var (
	// ErrUnavailable covers network failures and 503 answers.
	ErrUnavailable = errors.New("ranking unavailable")
	// ErrNotWon means the replayed clicks did not solve the server game.
	ErrNotWon = errors.New("replayed game is not solved")
)

// APIError is a non-2xx answer carrying the server's error code.
type APIError struct {
	Status int
	Code   string
}

func (e *APIError) Error() string { return fmt.Sprintf("server answered %d %s", e.Status, e.Code) }

type Client struct {
	base string
	http *http.Client
}

// New returns a client for the server at baseURL. The client keeps cookies,
// so the server sees one anonymous player across calls.
func New(baseURL string) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid server url %q", baseURL)
	}
	jar, _ := cookiejar.New(nil)
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Jar: jar, Timeout: 10 * time.Second},
	}, nil
}

type gameRes struct {
	GameID string `json:"gameId"`
	Won    bool   `json:"won"`
}

// Submit replays clicks (peg indices) on a new server game at level and
// submits the result under name.
func (c *Client) Submit(ctx context.Context, level int, clicks []int, name string) (ranking.Entry, error) {
	var g gameRes
	if err := c.do(ctx, http.MethodPost, "/game/new", map[string]int{"level": level}, &g); err != nil {
		return ranking.Entry{}, err
	}
	for _, peg := range clicks {
		body := map[string]any{"gameId": g.GameID, "peg": peg}
		if err := c.do(ctx, http.MethodPost, "/game/click", body, &g); err != nil {
			return ranking.Entry{}, err
		}
	}
	if !g.Won {
		return ranking.Entry{}, ErrNotWon
	}
	var e ranking.Entry
	err := c.do(ctx, http.MethodPost, "/ranking", map[string]string{"gameId": g.GameID, "name": name}, &e)
	return e, err
}

// Top returns the server's ranking for level.
func (c *Client) Top(ctx context.Context, level int) ([]ranking.Entry, error) {
	var res struct {
		Top []ranking.Entry `json:"top"`
	}
	if err := c.do(ctx, http.MethodGet, "/ranking?level="+strconv.Itoa(level), nil, &res); err != nil {
		return nil, err
	}
	return res.Top, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		apiErr := &APIError{Status: resp.StatusCode, Code: e.Error}
		if resp.StatusCode == http.StatusServiceUnavailable {
			return fmt.Errorf("%w: %v", ErrUnavailable, apiErr)
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
