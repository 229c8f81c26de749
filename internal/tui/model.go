// Package tui is the terminal client: a Bubble Tea model over puzzle.State.
//
// Timing follows the browser client: an illegal-move message disappears
// after the configured flash time and the win screen appears after the
// configured win delay. Both are tea.Tick commands tagged with a sequence
// number so that a stale tick (after a reset or a newer message) is ignored.
package tui

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hanoi/internal/bestscore"
	"github.com/robalobadob/hanoi/internal/config"
	"github.com/robalobadob/hanoi/internal/puzzle"
	"github.com/robalobadob/hanoi/internal/rankclient"
	"github.com/robalobadob/hanoi/internal/ranking"
)

// Ranker submits a finished game to a remote ranking. *rankclient.Client
// implements it.
type Ranker interface {
	Submit(ctx context.Context, level int, clicks []int, name string) (ranking.Entry, error)
}

type Options struct {
	Game   config.Game
	Best   bestscore.Store
	Owner  string // best-score key, e.g. "local"
	Ranker Ranker // nil disables submission
	Name   string // ranking name
	Level  int    // 0 selects Game.DefaultLevel
}

type flashExpiredMsg struct{ seq int }
type showWinMsg struct{ game int }
type submittedMsg struct {
	entry ranking.Entry
	err   error
}

type Model struct {
	opts Options
	keys KeyMap

	level  int
	state  puzzle.State
	clicks []int // every peg click of the current game, replayed on submit
	game   int   // bumped on every new game

	best    *int
	newBest bool

	message  string
	flashSeq int

	won        bool // win screen visible
	submitting bool
	submitted  bool
	notice     string

	width, height int
}

func New(o Options) Model {
	m := Model{opts: o, keys: Keys}
	level := o.Level
	if level == 0 {
		level = o.Game.DefaultLevel
	}
	m.start(level)
	return m
}

func (m Model) Init() tea.Cmd { return tea.SetWindowTitle("Tower of Hanoi") }

// start replaces the puzzle with a fresh one at level.
func (m *Model) start(level int) {
	st, err := puzzle.New(level)
	if err != nil {
		// levels come from a validated config
		panic(err)
	}
	m.level, m.state = level, st
	m.clicks = nil
	m.game++
	m.message, m.notice = "", ""
	m.won, m.newBest, m.submitting, m.submitted = false, false, false, false
	m.best = m.loadBest()
}

func (m Model) loadBest() *int {
	if m.opts.Best == nil {
		return nil
	}
	b, ok, err := m.opts.Best.Get(context.Background(), m.opts.Owner, m.level)
	if err != nil {
		log.Warn().Err(err).Msg("read best score")
		return nil
	}
	if !ok {
		return nil
	}
	return &b
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Reset):
			m.start(m.level)
		case key.Matches(msg, m.keys.Harder):
			m.start(m.opts.Game.Next(m.level))
		case key.Matches(msg, m.keys.Easier):
			m.start(m.opts.Game.Prev(m.level))
		case key.Matches(msg, m.keys.Submit):
			return m.submit()
		default:
			for i, b := range m.keys.Pegs {
				if key.Matches(msg, b) {
					return m.click(i)
				}
			}
		}

	case flashExpiredMsg:
		if msg.seq == m.flashSeq {
			m.message = ""
		}

	case showWinMsg:
		if msg.game == m.game {
			m.won = true
		}

	case submittedMsg:
		m.submitting = false
		switch {
		case msg.err == nil:
			m.submitted = true
			m.notice = fmt.Sprintf("Ranked as %s with %d moves.", msg.entry.Name, msg.entry.Moves)
		case errors.Is(msg.err, rankclient.ErrUnavailable):
			m.notice = "Ranking unavailable, score not submitted."
		default:
			m.notice = "Could not submit: " + msg.err.Error()
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	}
	return m, nil
}

// click feeds one peg click to the puzzle.
func (m Model) click(peg int) (tea.Model, tea.Cmd) {
	if m.state.Won() {
		return m, nil
	}
	events, next, err := puzzle.Apply(m.state, peg)
	if err != nil {
		return m, nil
	}
	m.state = next
	m.clicks = append(m.clicks, peg)

	var cmds []tea.Cmd
	for _, e := range events {
		switch e.Type {
		case puzzle.EvtRejected:
			m.message = e.Message
			m.flashSeq++
			seq := m.flashSeq
			cmds = append(cmds, tea.Tick(m.opts.Game.FlashDuration(), func(time.Time) tea.Msg {
				return flashExpiredMsg{seq: seq}
			}))
		case puzzle.EvtMoved:
			m.message = ""
		case puzzle.EvtWon:
			m.recordWin()
			game := m.game
			cmds = append(cmds, tea.Tick(m.opts.Game.WinDelay(), func(time.Time) tea.Msg {
				return showWinMsg{game: game}
			}))
		}
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) recordWin() {
	if m.opts.Best == nil {
		return
	}
	improved, err := m.opts.Best.Record(context.Background(), m.opts.Owner, m.level, m.state.Moves)
	if err != nil {
		log.Warn().Err(err).Msg("record best score")
		return
	}
	if improved {
		moves := m.state.Moves
		m.best, m.newBest = &moves, true
	}
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	if !m.won || m.opts.Ranker == nil || m.submitting || m.submitted {
		return m, nil
	}
	m.submitting = true
	m.notice = "Submitting..."
	r, level, clicks, name := m.opts.Ranker, m.level, slices.Clone(m.clicks), m.opts.Name
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		e, err := r.Submit(ctx, level, clicks, name)
		return submittedMsg{entry: e, err: err}
	}
}

// ------------------------------- rendering ---------------------------------

const (
	pegWidth     = 22 // columns per peg, wide enough for the largest disk
	pxPerCell    = 10.0
	selectedMark = "▲"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F1C40F"))
	rodStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#808E9B"))
	errorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#808E9B"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F1C40F"))
	winBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(1, 2).BorderForeground(lipgloss.Color("#FFD700"))
)

// diskCells converts a render width in pixels to terminal cells, keeping
// the parity of the peg width so disks stay centred.
func diskCells(width float64) int {
	c := int(width/pxPerCell + 0.5)
	if c%2 != pegWidth%2 {
		c++
	}
	return min(c, pegWidth)
}

func renderDisk(d puzzle.DiskView) string {
	c := puzzle.Palette[d.Color]
	label := fmt.Sprint(d.Size)
	if d.Selected {
		label = selectedMark + label + selectedMark
	}
	style := lipgloss.NewStyle().
		Background(lipgloss.Color(c.Hex)).
		Foreground(lipgloss.Color("#1E272E")).
		Width(diskCells(d.Width)).
		Align(lipgloss.Center)
	if d.Selected {
		style = style.Bold(true).Underline(true)
	}
	return style.Render(label)
}

func (m Model) renderBoard() string {
	snap := puzzle.Snap(m.state)
	height := snap.NumDisks + 1
	cols := make([]string, puzzle.NumPegs)
	for p := 0; p < puzzle.NumPegs; p++ {
		rows := make([]string, 0, height+2)
		for row := height - 1; row >= 0; row-- {
			cell := rodStyle.Render("┃")
			if row < len(snap.Pegs[p]) {
				cell = renderDisk(snap.Pegs[p][row])
			}
			rows = append(rows, lipgloss.PlaceHorizontal(pegWidth, lipgloss.Center, cell))
		}
		rows = append(rows, rodStyle.Render(strings.Repeat("━", pegWidth)))
		rows = append(rows, lipgloss.PlaceHorizontal(pegWidth, lipgloss.Center, dimStyle.Render(fmt.Sprint(p+1))))
		cols[p] = lipgloss.JoinVertical(lipgloss.Left, rows...)
	}
	return lipgloss.JoinHorizontal(lipgloss.Bottom, cols...)
}

func (m Model) renderStats() string {
	best := "-"
	if m.best != nil {
		best = fmt.Sprint(*m.best)
	}
	return fmt.Sprintf("Moves: %d   Best: %s   Minimum: %d   Disks: %d",
		m.state.Moves, best, puzzle.MinMoves(m.level), m.level)
}

func (m Model) renderWin() string {
	lines := []string{
		titleStyle.Render("Solved!"),
		"",
		fmt.Sprintf("You finished in %d moves.", m.state.Moves),
	}
	if m.newBest {
		lines = append(lines, noticeStyle.Render("New best score!"))
	}
	if m.opts.Ranker != nil && !m.submitted && !m.submitting {
		lines = append(lines, "", dimStyle.Render(helpLine(m.keys.Submit)))
	}
	if m.notice != "" {
		lines = append(lines, "", noticeStyle.Render(m.notice))
	}
	lines = append(lines, "", dimStyle.Render(helpLine(m.keys.Reset, m.keys.Harder, m.keys.Easier, m.keys.Quit)))
	return winBoxStyle.Render(lipgloss.JoinVertical(lipgloss.Center, lines...))
}

func (m Model) View() string {
	var body string
	if m.won {
		body = m.renderWin()
	} else {
		msg := dimStyle.Render(puzzle.MsgPrompt)
		if m.message != "" {
			msg = errorStyle.Render(m.message)
		}
		body = lipgloss.JoinVertical(lipgloss.Center,
			titleStyle.Render("Tower of Hanoi"),
			"",
			m.renderBoard(),
			"",
			m.renderStats(),
			msg,
			"",
			dimStyle.Render(helpLine(m.keys.Pegs[0], m.keys.Pegs[1], m.keys.Pegs[2])),
			dimStyle.Render(helpLine(m.keys.Reset, m.keys.Harder, m.keys.Easier, m.keys.Quit)),
		)
	}
	if m.width == 0 || m.height == 0 {
		return body
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, body)
}
