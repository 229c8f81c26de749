// internal/puzzle/types.go
//
// Core type definitions for the Tower of Hanoi state machine.
// Defines:
//   - State: peg contents, current selection and move counter.
//   - Selection: the picked-up disk and the peg it came from.
//   - Event: what a single peg click did to the state.

package puzzle

const (
	// NumPegs is fixed; the board always has exactly three pegs.
	NumPegs = 3
	// GoalPeg is the peg that must hold every disk for the puzzle to be solved.
	GoalPeg = 2
)

// Selection is the disk currently picked up, pending a destination click.
type Selection struct {
	Disk int `json:"disk"` // size of the selected (top) disk
	Peg  int `json:"peg"`  // source peg index
}

// State is a complete puzzle position. It is a value: transitions in this
// package never mutate their input and always return a fresh State.
type State struct {
	NumDisks  int            `json:"numDisks"`            // configured at New
	Pegs      [NumPegs][]int `json:"pegs"`                // bottom → top, strictly decreasing
	Moves     int            `json:"moves"`               // accepted moves so far
	Selection *Selection     `json:"selection,omitempty"` // nil when nothing is picked up
}

// EventType names the outcome of a click.
type EventType string

const (
	EvtSelected   EventType = "selected"
	EvtDeselected EventType = "deselected"
	EvtMoved      EventType = "moved"
	EvtRejected   EventType = "rejected"
	EvtWon        EventType = "won"
)

// Event describes one thing a click did. For selection events From and To
// are both the clicked peg.
type Event struct {
	Type    EventType `json:"type"`
	Disk    int       `json:"disk,omitempty"`
	From    int       `json:"from"`
	To      int       `json:"to"`
	Moves   int       `json:"moves"`
	Message string    `json:"message,omitempty"`
}

// Move is a single disk transfer between two pegs.
type Move struct {
	From int `json:"from"`
	To   int `json:"to"`
}
