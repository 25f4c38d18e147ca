package autopair

import (
	"unicode/utf8"
)

// Selection is a caret or a selected range in rune offsets. Start is where
// the selection was started and may be greater than End.
type Selection struct {
	Start int
	End   int
}

// Caret returns a collapsed selection at pos.
func Caret(pos int) Selection {
	return Selection{Start: pos, End: pos}
}

// From returns the lower bound of the selection.
func (s Selection) From() int {
	return min(s.Start, s.End)
}

// To returns the upper bound of the selection.
func (s Selection) To() int {
	return max(s.Start, s.End)
}

// Empty reports whether the selection is a bare caret.
func (s Selection) Empty() bool {
	return s.Start == s.End
}

// Document is the read access the tracker needs to the host text. Offsets
// are in runes.
type Document interface {
	// Len returns the document length in runes.
	Len() int
	// TextBetween returns the text in [from, to).
	TextBetween(from, to int) string
	// RuneBefore returns the rune just before offset. ok is false at the
	// start of the document.
	RuneBefore(offset int) (r rune, ok bool)
}

// Mapping translates an offset recorded before an edit to the corresponding
// offset after it. Offsets inside deleted content collapse to a boundary of
// the replacement.
type Mapping interface {
	Map(offset int) int
}

// MappingFunc adapts a plain function to a Mapping.
type MappingFunc func(offset int) int

func (f MappingFunc) Map(offset int) int {
	return f(offset)
}

// Identity is the mapping of an edit that changed no text, e.g. a caret
// move.
var Identity Mapping = MappingFunc(func(offset int) int { return offset })

// Op tells what kind of edit an Instruction performs.
type Op uint8

const (
	// OpInsertPair inserts an opening and closing delimiter at the caret.
	OpInsertPair Op = iota + 1
	// OpWrap surrounds the selected text with a pair.
	OpWrap
	// OpSkip moves the caret over an auto-inserted closing delimiter.
	OpSkip
)

func (op Op) String() string {
	switch op {
	case OpInsertPair:
		return "insert-pair"
	case OpWrap:
		return "wrap"
	case OpSkip:
		return "skip"
	default:
		return "unknown"
	}
}

// Instruction is an edit produced by the tracker. The host must apply it as
// one atomic change: replace [From, To) with Text, set Selection, and report
// the instruction back as the Origin of the resulting Change.
type Instruction struct {
	Op   Op
	From int
	To   int
	Text string
	// Selection is the selection after the edit.
	Selection Selection
	// Pairs, when non-nil, is the tracked state to adopt once the edit is
	// applied.
	Pairs State
}

// ChangesText reports whether applying the instruction modifies the
// document.
func (ins Instruction) ChangesText() bool {
	return ins.From != ins.To || ins.Text != ""
}

// Change is the notification a host delivers after every edit, whatever its
// origin.
type Change struct {
	// Mapping maps offsets from the previous document version. A nil mapping
	// is treated as Identity.
	Mapping Mapping
	// Doc is the document after the edit.
	Doc Document
	// Selection is the selection after the edit.
	Selection Selection
	// Origin is the instruction that produced the edit, if the tracker
	// issued it.
	Origin *Instruction
}

// runeAt returns the rune starting at offset, if any.
func runeAt(doc Document, offset int) (rune, bool) {
	if offset < 0 || offset >= doc.Len() {
		return 0, false
	}

	s := doc.TextBetween(offset, offset+1)
	if s == "" {
		return 0, false
	}

	r, _ := utf8.DecodeRuneInString(s)
	return r, r != utf8.RuneError
}
