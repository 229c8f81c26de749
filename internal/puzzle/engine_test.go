package puzzle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustNew(t *testing.T, n int) State {
	t.Helper()
	s, err := New(n)
	require.NoError(t, err)
	return s
}

// click applies a click and fails the test on error.
func click(t *testing.T, s State, peg int) ([]Event, State) {
	t.Helper()
	evs, next, err := Apply(s, peg)
	require.NoError(t, err)
	require.NoError(t, next.Validate())
	return evs, next
}

func TestNew_StartingPosition(t *testing.T) {
	for n := 1; n <= 10; n++ {
		s := mustNew(t, n)
		want := make([]int, 0, n)
		for d := n; d > 0; d-- {
			want = append(want, d)
		}
		assert.Equal(t, want, s.Pegs[0])
		assert.Empty(t, s.Pegs[1])
		assert.Empty(t, s.Pegs[2])
		assert.Zero(t, s.Moves)
		assert.Nil(t, s.Selection)
		assert.False(t, s.Won())
		assert.NoError(t, s.Validate())
	}
}

func TestNew_RejectsNonPositive(t *testing.T) {
	for _, n := range []int{0, -1, -8} {
		_, err := New(n)
		assert.ErrorIs(t, err, ErrInvalidDiskCount)
	}
}

func TestApply_SelectAndDeselect(t *testing.T) {
	s := mustNew(t, 3)

	evs, s1 := click(t, s, 0)
	require.Len(t, evs, 1)
	assert.Equal(t, EvtSelected, evs[0].Type)
	assert.Equal(t, &Selection{Disk: 1, Peg: 0}, s1.Selection)
	assert.Zero(t, s1.Moves)

	evs, s2 := click(t, s1, 0)
	require.Len(t, evs, 1)
	assert.Equal(t, EvtDeselected, evs[0].Type)
	assert.Nil(t, s2.Selection)
	assert.Zero(t, s2.Moves)
	assert.Equal(t, s.Pegs, s2.Pegs)
}

func TestApply_EmptyPegWithoutSelectionIsNoop(t *testing.T) {
	s := mustNew(t, 3)
	evs, next := click(t, s, 1)
	assert.Empty(t, evs)
	assert.Equal(t, s, next)
}

func TestApply_ThreeDiskExample(t *testing.T) {
	s := mustNew(t, 3)
	assert.Equal(t, [NumPegs][]int{{3, 2, 1}, {}, {}}, s.Pegs)

	_, s = click(t, s, 0)
	evs, s := click(t, s, 2)
	require.Len(t, evs, 1)
	assert.Equal(t, EvtMoved, evs[0].Type)
	assert.Equal(t, Event{Type: EvtMoved, Disk: 1, From: 0, To: 2, Moves: 1}, evs[0])
	assert.Equal(t, [NumPegs][]int{{3, 2}, {}, {1}}, s.Pegs)
	assert.Equal(t, 1, s.Moves)
	assert.Nil(t, s.Selection)

	// disk 2 onto disk 1 is rejected
	_, s = click(t, s, 0)
	before := s
	evs, s = click(t, s, 2)
	require.Len(t, evs, 1)
	assert.Equal(t, EvtRejected, evs[0].Type)
	assert.Equal(t, MsgIllegalMove, evs[0].Message)
	assert.Equal(t, [NumPegs][]int{{3, 2}, {}, {1}}, s.Pegs)
	assert.Equal(t, 1, s.Moves)
	assert.Equal(t, before, s)
	// selection survives so another target can be tried
	assert.Equal(t, &Selection{Disk: 2, Peg: 0}, s.Selection)

	evs, s = click(t, s, 1)
	assert.Equal(t, EvtMoved, evs[0].Type)
	assert.Equal(t, [NumPegs][]int{{3}, {2}, {1}}, s.Pegs)
	assert.Equal(t, 2, s.Moves)
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	s := mustNew(t, 4)
	_, sel := click(t, s, 0)
	_, moved := click(t, sel, 1)

	assert.Equal(t, []int{4, 3, 2, 1}, sel.Pegs[0])
	assert.Empty(t, sel.Pegs[1])
	assert.Equal(t, &Selection{Disk: 1, Peg: 0}, sel.Selection)
	assert.Equal(t, []int{4, 3, 2}, moved.Pegs[0])
	assert.Equal(t, []int{1}, moved.Pegs[1])
}

func TestApply_InvalidPeg(t *testing.T) {
	s := mustNew(t, 3)
	for _, peg := range []int{-1, 3, 99} {
		evs, next, err := Apply(s, peg)
		assert.ErrorIs(t, err, ErrInvalidPeg)
		assert.Nil(t, evs)
		assert.Equal(t, s, next)
	}
}

func TestApply_LegalityTable(t *testing.T) {
	cases := []struct {
		name   string
		pegs   [NumPegs][]int
		from   int
		to     int
		wantOK bool
	}{
		{"onto empty peg", [NumPegs][]int{{3, 2, 1}, {}, {}}, 0, 1, true},
		{"onto larger disk", [NumPegs][]int{{3, 2}, {1}, {}}, 1, 0, true},
		{"onto smaller disk", [NumPegs][]int{{3, 2}, {1}, {}}, 0, 1, false},
		{"large onto small far peg", [NumPegs][]int{{3}, {2}, {1}}, 0, 2, false},
		{"small onto large far peg", [NumPegs][]int{{3}, {2}, {1}}, 2, 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := State{NumDisks: 3, Pegs: tc.pegs}
			require.NoError(t, s.Validate())
			_, s = click(t, s, tc.from)
			evs, next := click(t, s, tc.to)
			require.Len(t, evs, 1)
			if tc.wantOK {
				assert.Equal(t, EvtMoved, evs[0].Type)
				assert.Equal(t, s.Moves+1, next.Moves)
				assert.Nil(t, next.Selection)
			} else {
				assert.Equal(t, EvtRejected, evs[0].Type)
				assert.Equal(t, s, next)
			}
		})
	}
}

func TestApply_OptimalGameWinsAtMinMoves(t *testing.T) {
	for n := 1; n <= 8; n++ {
		s := mustNew(t, n)
		moves := Solve(n)
		require.Len(t, moves, MinMoves(n))

		wins := 0
		for i, m := range moves {
			_, s = click(t, s, m.From)
			var evs []Event
			evs, s = click(t, s, m.To)
			assert.Equal(t, i+1, s.Moves)
			for _, e := range evs {
				if e.Type == EvtWon {
					wins++
					assert.Equal(t, MinMoves(n), e.Moves)
				}
			}
			if i < len(moves)-1 {
				assert.False(t, s.Won(), "won early at move %d", i+1)
			}
		}
		assert.Equal(t, 1, wins)
		assert.True(t, s.Won())
		assert.Equal(t, MinMoves(n), s.Moves)
	}
}

func TestApply_ThreeDiskWinsInSeven(t *testing.T) {
	evs, s, err := Play(mustNew(t, 3), Solve(3))
	require.NoError(t, err)
	assert.Equal(t, 7, s.Moves)
	assert.True(t, s.Won())
	last := evs[len(evs)-1]
	assert.Equal(t, EvtWon, last.Type)
	assert.Equal(t, 7, last.Moves)
}

func TestApply_ClickAfterWin(t *testing.T) {
	_, s, err := Play(mustNew(t, 2), Solve(2))
	require.NoError(t, err)
	_, next, err := Apply(s, 2)
	assert.ErrorIs(t, err, ErrSolved)
	assert.Equal(t, s, next)
}

// Random click streams must never break the ordering invariant, and the move
// counter must track accepted moves exactly.
func TestApply_RandomClicksKeepInvariants(t *testing.T) {
	s := mustNew(t, 5)
	seq := []int{0, 2, 0, 1, 2, 1, 0, 0, 1, 2, 2, 0, 1, 0, 2, 1, 1, 2, 0, 2, 0, 1, 2, 0, 1}
	for round := 0; round < 20 && !s.Won(); round++ {
		for _, peg := range seq {
			if s.Won() {
				break
			}
			evs, next := click(t, s, (peg+round)%NumPegs)
			moved := 0
			for _, e := range evs {
				if e.Type == EvtMoved {
					moved++
				}
				if e.Type == EvtRejected {
					assert.Equal(t, s.Pegs, next.Pegs)
				}
			}
			assert.Equal(t, s.Moves+moved, next.Moves)
			s = next
		}
	}
}

func TestWon_CountsGoalPegOnly(t *testing.T) {
	s := State{NumDisks: 3, Pegs: [NumPegs][]int{{}, {}, {3, 2, 1}}}
	assert.True(t, s.Won())
	s = State{NumDisks: 3, Pegs: [NumPegs][]int{{}, {3, 2, 1}, {}}}
	assert.False(t, s.Won())
}

func TestValidate_DetectsCorruption(t *testing.T) {
	cases := map[string]State{
		"misordered":    {NumDisks: 3, Pegs: [NumPegs][]int{{1, 3}, {2}, {}}},
		"duplicate":     {NumDisks: 3, Pegs: [NumPegs][]int{{3, 2}, {2}, {}}},
		"missing":       {NumDisks: 3, Pegs: [NumPegs][]int{{3, 2}, {}, {}}},
		"out of range":  {NumDisks: 3, Pegs: [NumPegs][]int{{4, 2, 1}, {}, {}}},
		"stale select":  {NumDisks: 3, Pegs: [NumPegs][]int{{3, 2, 1}, {}, {}}, Selection: &Selection{Disk: 2, Peg: 0}},
		"no disks":      {},
		"negative move": {NumDisks: 1, Pegs: [NumPegs][]int{{1}, {}, {}}, Moves: -1},
	}
	for name, s := range cases {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, s.Validate(), ErrCorrupt)
		})
	}
}

func TestImprovesBest(t *testing.T) {
	assert.True(t, ImprovesBest(0, false, 31))
	assert.True(t, ImprovesBest(10, true, 9))
	assert.False(t, ImprovesBest(10, true, 10))
	assert.False(t, ImprovesBest(10, true, 11))
}

func TestSnap(t *testing.T) {
	s := mustNew(t, 4)
	_, s = click(t, s, 0)
	snap := Snap(s)

	require.Len(t, snap.Pegs[0], 4)
	assert.Equal(t, 4, snap.Pegs[0][0].Size)
	assert.InDelta(t, 180.0, snap.Pegs[0][0].Width, 1e-9)
	assert.InDelta(t, 75.0, snap.Pegs[0][3].Width, 1e-9)
	assert.True(t, snap.Pegs[0][3].Selected)
	assert.False(t, snap.Pegs[0][2].Selected)
	assert.Equal(t, 15, snap.MinMoves)
	assert.False(t, snap.Won)
}

func TestColorIndexCycles(t *testing.T) {
	assert.Equal(t, 0, ColorIndex(1))
	assert.Equal(t, 7, ColorIndex(8))
	assert.Equal(t, 0, ColorIndex(9))
	assert.Equal(t, 1, ColorIndex(10))
}
