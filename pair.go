package autopair

import (
	"maps"
)

// Default delimiter pairs. Quotes are symmetric: the same rune opens and
// closes them.
var defaultPairs = map[rune]rune{
	'(':  ')',
	'[':  ']',
	'{':  '}',
	'<':  '>',
	'"':  '"',
	'\'': '\'',
	'`':  '`',
	'«':  '»',
	'“':  '”',
	'‘':  '’',
}

// Table maps opening delimiters to their closing counterparts. A Table is
// immutable once built; use NewTable or MergePairs to derive a new one.
type Table struct {
	ltr map[rune]rune
	rtl map[rune]rune
}

// NewTable builds a Table from a set of opening to closing pairs. The map is
// copied.
func NewTable(pairs map[rune]rune) Table {
	ltr := make(map[rune]rune, len(pairs))
	maps.Copy(ltr, pairs)
	return Table{ltr: ltr, rtl: reversedPairs(ltr)}
}

// DefaultTable returns the built-in brackets and quotes table.
func DefaultTable() Table {
	return NewTable(defaultPairs)
}

// MergePairs returns a table containing the pairs of all sources. Later
// sources win on duplicated opening runes.
func MergePairs(sources ...map[rune]rune) Table {
	dest := make(map[rune]rune)
	for _, src := range sources {
		maps.Copy(dest, src)
	}

	return Table{ltr: dest, rtl: reversedPairs(dest)}
}

func reversedPairs(pairs map[rune]rune) map[rune]rune {
	dest := make(map[rune]rune, len(pairs))
	for k, v := range pairs {
		dest[v] = k
	}

	return dest
}

// Close returns the closing rune registered for open.
func (t Table) Close(open rune) (rune, bool) {
	r, ok := t.ltr[open]
	return r, ok
}

// IsOpen reports whether r opens a pair.
func (t Table) IsOpen(r rune) bool {
	_, ok := t.ltr[r]
	return ok
}

// IsClose reports whether r closes a pair.
func (t Table) IsClose(r rune) bool {
	_, ok := t.rtl[r]
	return ok
}

// IsSymmetric reports whether r both opens and closes the same pair, as
// quotes do.
func (t Table) IsSymmetric(r rune) bool {
	c, ok := t.ltr[r]
	return ok && c == r
}

// Pairs returns a copy of the opening to closing mapping.
func (t Table) Pairs() map[rune]rune {
	return maps.Clone(t.ltr)
}

// Len returns the number of registered pairs.
func (t Table) Len() int {
	return len(t.ltr)
}

// Pair records one auto-inserted closing delimiter that is still live.
// Start is the offset of the opening rune and End the offset of the closing
// one. Both are rune offsets valid against the document version they were
// last remapped to.
type Pair struct {
	Start int
	End   int
	Close rune
}

// contains reports whether pos lies within [Start, End].
func (p Pair) contains(pos int) bool {
	return pos >= p.Start && pos <= p.End
}

// valid checks the structural invariants of a pair in a document of size
// docLen.
func (p Pair) valid(docLen int) bool {
	return p.Start >= 0 && p.Start < p.End && p.End <= docLen
}

// State is the ordered list of tracked pairs. A State is never modified in
// place: every transition produces a new slice.
type State []Pair

// with returns a new State with p appended.
func (s State) with(p Pair) State {
	out := make(State, 0, len(s)+1)
	out = append(out, s...)
	return append(out, p)
}

// shift returns the pairs as they stand after [from, to) is surrounded by a
// new opening and closing delimiter. An empty range is a plain pair
// insertion.
func (s State) shift(from, to int) State {
	move := func(offset int) int {
		switch {
		case offset < from:
			return offset
		case offset < to:
			return offset + 1
		default:
			return offset + 2
		}
	}

	out := make(State, 0, len(s))
	for _, p := range s {
		out = append(out, Pair{Start: move(p.Start), End: move(p.End), Close: p.Close})
	}

	return out
}
