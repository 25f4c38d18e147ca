package autopair

import (
	"cmp"

	"github.com/rdleal/intervalst/interval"
)

// pairIndex leverages an interval tree to look up tracked pairs by offset.
// It is rebuilt whenever the tracked state is replaced.
type pairIndex struct {
	tree *interval.MultiValueSearchTree[Pair, int]
}

func newPairIndex(pairs State) *pairIndex {
	tree := interval.NewMultiValueSearchTree[Pair](func(a, b int) int {
		return cmp.Compare(a, b)
	})

	for _, p := range pairs {
		if err := tree.Insert(p.Start, p.End, p); err != nil {
			logger.Debug("skip unindexable pair", "start", p.Start, "end", p.End, "error", err)
		}
	}

	return &pairIndex{tree: tree}
}

// endingAt returns a pair whose closing delimiter sits at pos and is closing.
func (ix *pairIndex) endingAt(pos int, closing rune) (Pair, bool) {
	if ix == nil {
		return Pair{}, false
	}

	// The query window is wider than the point so that both closed and
	// half-open interval semantics report pairs ending at pos.
	candidates, found := ix.tree.AllIntersections(pos-1, pos+1)
	if !found {
		return Pair{}, false
	}

	for _, p := range candidates {
		if p.End == pos && p.Close == closing {
			return p, true
		}
	}

	return Pair{}, false
}

// enclosing returns all pairs spanning pos, including the ones with a
// delimiter at pos.
func (ix *pairIndex) enclosing(pos int) []Pair {
	if ix == nil {
		return nil
	}

	candidates, _ := ix.tree.AllIntersections(pos-1, pos+1)
	var out []Pair
	for _, p := range candidates {
		if p.contains(pos) {
			out = append(out, p)
		}
	}

	return out
}
