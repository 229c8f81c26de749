package puzzle

// Solve returns the optimal move sequence taking numDisks disks from peg 0 to
// the goal peg. The result always has MinMoves(numDisks) entries.
func Solve(numDisks int) []Move {
	out := make([]Move, 0, MinMoves(numDisks))
	return towers(numDisks, 0, GoalPeg, 1, out)
}

func towers(disks, from, to, spare int, moves []Move) []Move {
	if disks <= 0 {
		return moves
	}
	moves = towers(disks-1, from, spare, to, moves)
	moves = append(moves, Move{From: from, To: to})
	return towers(disks-1, spare, to, from, moves)
}

// Play feeds each move to Apply as a pair of clicks (source, then target)
// and returns the collected events and the final state. It stops at the
// first error.
func Play(s State, moves []Move) ([]Event, State, error) {
	var all []Event
	for _, m := range moves {
		for _, peg := range [2]int{m.From, m.To} {
			evs, next, err := Apply(s, peg)
			if err != nil {
				return all, s, err
			}
			all = append(all, evs...)
			s = next
		}
	}
	return all, s, nil
}
