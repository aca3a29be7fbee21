package ranking

import (
	"slices"

	"github.com/spigell/cv-ranker/internal/candidates"
)

// Rank orders evaluated rows by score, best first, followed by unevaluated
// rows. Ties keep their board order. The input is not modified.
func Rank(rows []candidates.Row) []candidates.Row {
	out := slices.Clone(rows)
	slices.SortStableFunc(out, func(a, b candidates.Row) int {
		switch {
		case a.Evaluated() && !b.Evaluated():
			return -1
		case !a.Evaluated() && b.Evaluated():
			return 1
		case !a.Evaluated():
			return 0
		default:
			return b.Evaluation.Score - a.Evaluation.Score
		}
	})
	return out
}
