package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/robalobadob/hanoi/internal/config"
	"github.com/robalobadob/hanoi/internal/puzzle"
)

// maxSolveDisks keeps the printed solution to about a million lines.
const maxSolveDisks = 20

const solveLong = `Print the optimal solution for 1 to 20 disks.
Zero, negative and non-numeric counts are rejected (pass negatives after "--").`

func newSolveCmd() *cobra.Command {
	var quiet, asJSON bool
	cmd := &cobra.Command{
		Use:   "solve <disks>",
		Short: "Print the optimal solution for a number of disks",
		Long:  solveLong,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 1 || n > maxSolveDisks {
				return fmt.Errorf("%w: %q (want 1-%d)", config.ErrInvalidLevel, args[0], maxSolveDisks)
			}
			moves := puzzle.Solve(n)

			// replay through the engine so the printed answer is a checked one
			st, _ := puzzle.New(n)
			if _, st, err = puzzle.Play(st, moves); err != nil {
				return err
			}
			if !st.Won() {
				return fmt.Errorf("solution for %d disks does not finish the puzzle", n)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				return enc.Encode(map[string]any{"disks": n, "moves": st.Moves, "solution": moves})
			}
			if !quiet {
				for i, m := range moves {
					fmt.Fprintf(out, "%d: %d -> %d\n", i+1, m.From+1, m.To+1)
				}
			}
			fmt.Fprintf(out, "%d disks solved in %d moves\n", n, st.Moves)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "only print the move count")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the solution as JSON")
	return cmd
}
