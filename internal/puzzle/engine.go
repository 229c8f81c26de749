// internal/puzzle/engine.go
//
// The peg/disk state machine.
// Responsibilities:
//   - Build the starting position for a disk count.
//   - Apply a peg click: select, deselect, move or reject.
//   - Detect the win (every disk on the goal peg).
//   - Decide whether a finished game beats a stored best score.
//
// Notes:
//   - Illegal moves are not errors. They produce an EvtRejected event and
//     leave the state (selection included) untouched.
//   - Errors are reserved for clicks that no client can legitimately send:
//     a peg index out of range, or any click once the puzzle is solved.
package puzzle

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDiskCount = errors.New("disk count must be positive")
	ErrInvalidPeg       = errors.New("invalid peg")
	ErrSolved           = errors.New("puzzle already solved")
	ErrCorrupt          = errors.New("corrupt puzzle state")
)

const (
	// MsgIllegalMove is the advisory shown when a disk would land on a smaller one.
	MsgIllegalMove = "A disk can't go on top of a smaller one!"
	// MsgPrompt is the resting message the advisory reverts to.
	MsgPrompt = "Pick a peg to move a disk"
)

// New returns the starting position: every disk on peg 0, largest at the
// bottom, no selection and zero moves.
func New(numDisks int) (State, error) {
	if numDisks < 1 {
		return State{}, ErrInvalidDiskCount
	}
	s := State{NumDisks: numDisks}
	s.Pegs[0] = make([]int, 0, numDisks)
	for d := numDisks; d > 0; d-- {
		s.Pegs[0] = append(s.Pegs[0], d)
	}
	for i := 1; i < NumPegs; i++ {
		s.Pegs[i] = []int{}
	}
	return s, nil
}

// Apply runs one click on peg against s and returns the events it produced
// together with the resulting state.
//
// Protocol:
//   - nothing selected: a non-empty peg selects its top disk; an empty peg is a no-op.
//   - selected, same peg: deselect.
//   - selected, other peg: move if legal (see CanPlace), otherwise reject and
//     keep the selection so the player can try another peg.
func Apply(s State, peg int) ([]Event, State, error) {
	if peg < 0 || peg >= NumPegs {
		return nil, s, ErrInvalidPeg
	}
	if s.Won() {
		return nil, s, ErrSolved
	}

	if s.Selection == nil {
		top, ok := s.Top(peg)
		if !ok {
			return nil, s, nil
		}
		next := s
		next.Selection = &Selection{Disk: top, Peg: peg}
		return []Event{{Type: EvtSelected, Disk: top, From: peg, To: peg, Moves: s.Moves}}, next, nil
	}

	sel := *s.Selection
	if peg == sel.Peg {
		next := s
		next.Selection = nil
		return []Event{{Type: EvtDeselected, Disk: sel.Disk, From: peg, To: peg, Moves: s.Moves}}, next, nil
	}

	if !s.CanPlace(sel.Disk, peg) {
		return []Event{{
			Type:    EvtRejected,
			Disk:    sel.Disk,
			From:    sel.Peg,
			To:      peg,
			Moves:   s.Moves,
			Message: MsgIllegalMove,
		}}, s, nil
	}

	next := s.clone()
	src := next.Pegs[sel.Peg]
	next.Pegs[sel.Peg] = src[:len(src)-1]
	next.Pegs[peg] = append(next.Pegs[peg], sel.Disk)
	next.Moves++
	next.Selection = nil

	events := []Event{{Type: EvtMoved, Disk: sel.Disk, From: sel.Peg, To: peg, Moves: next.Moves}}
	if next.Won() {
		events = append(events, Event{Type: EvtWon, From: sel.Peg, To: peg, Moves: next.Moves})
	}
	return events, next, nil
}

// CanPlace reports whether disk may be dropped on peg: the peg is empty or
// its top disk is strictly larger.
func (s State) CanPlace(disk, peg int) bool {
	top, ok := s.Top(peg)
	return !ok || top > disk
}

// Top returns the top disk of peg, or false for an empty peg.
func (s State) Top(peg int) (int, bool) {
	if peg < 0 || peg >= NumPegs {
		return 0, false
	}
	p := s.Pegs[peg]
	if len(p) == 0 {
		return 0, false
	}
	return p[len(p)-1], true
}

// Won reports whether the goal peg holds every disk. Ordering is not checked
// here; Apply never produces a mis-ordered peg, and Validate covers restored
// states.
func (s State) Won() bool {
	return s.NumDisks > 0 && len(s.Pegs[GoalPeg]) == s.NumDisks
}

// Validate checks the structural invariants of s: each disk 1..NumDisks
// appears exactly once, every peg is strictly decreasing bottom to top and a
// selection (if any) names the top disk of its peg.
func (s State) Validate() error {
	if s.NumDisks < 1 {
		return fmt.Errorf("%w: %d disks", ErrCorrupt, s.NumDisks)
	}
	if s.Moves < 0 {
		return fmt.Errorf("%w: negative move count", ErrCorrupt)
	}
	seen := make([]bool, s.NumDisks+1)
	total := 0
	for i, p := range s.Pegs {
		for j, d := range p {
			if d < 1 || d > s.NumDisks {
				return fmt.Errorf("%w: disk %d on peg %d out of range", ErrCorrupt, d, i)
			}
			if seen[d] {
				return fmt.Errorf("%w: disk %d appears twice", ErrCorrupt, d)
			}
			seen[d] = true
			if j > 0 && p[j-1] <= d {
				return fmt.Errorf("%w: disk %d above disk %d on peg %d", ErrCorrupt, d, p[j-1], i)
			}
		}
		total += len(p)
	}
	if total != s.NumDisks {
		return fmt.Errorf("%w: %d of %d disks on the board", ErrCorrupt, total, s.NumDisks)
	}
	if sel := s.Selection; sel != nil {
		top, ok := s.Top(sel.Peg)
		if !ok || top != sel.Disk {
			return fmt.Errorf("%w: selection %d@%d is not a top disk", ErrCorrupt, sel.Disk, sel.Peg)
		}
	}
	return nil
}

// ImprovesBest reports whether a completed game of moves should replace the
// stored best. A missing best (hasBest == false) is always improved upon.
func ImprovesBest(best int, hasBest bool, moves int) bool {
	return !hasBest || moves < best
}

// MinMoves is the optimal solution length, 2^n - 1.
func MinMoves(numDisks int) int {
	if numDisks < 1 {
		return 0
	}
	return 1<<numDisks - 1
}

// clone deep-copies the peg slices so the result can be mutated freely.
func (s State) clone() State {
	out := s
	for i, p := range s.Pegs {
		cp := make([]int, len(p))
		copy(cp, p)
		out.Pegs[i] = cp
	}
	if s.Selection != nil {
		sel := *s.Selection
		out.Selection = &sel
	}
	return out
}
