package autopair

import (
	"unicode"
	"unicode/utf8"

	"golang.org/x/exp/slices"
)

// Tracker auto-closes delimiter pairs while typing and remembers the closing
// delimiters it inserted, so typing one of them again moves over it instead
// of inserting a duplicate.
//
// A Tracker is driven by its host through two hooks: HandleKey for every
// typed rune, and Observe after every edit. It is not safe for concurrent
// use; the host must deliver the Observe call for an edit before the next
// keystroke.
type Tracker struct {
	table Table
	// wrap enables surrounding a non-empty selection with a pair.
	wrap  bool
	pairs State
	index *pairIndex
}

// Option configures a Tracker.
type Option func(t *Tracker)

// WithTable sets the delimiter table. The default is DefaultTable.
func WithTable(table Table) Option {
	return func(t *Tracker) {
		t.table = table
	}
}

// WithWrapSelection controls whether typing an opening delimiter over a
// selection wraps it. Enabled by default.
func WithWrapSelection(enabled bool) Option {
	return func(t *Tracker) {
		t.wrap = enabled
	}
}

// New creates a Tracker with an empty state.
func New(opts ...Option) *Tracker {
	t := &Tracker{
		table: DefaultTable(),
		wrap:  true,
	}
	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Table returns the delimiter table in use.
func (t *Tracker) Table() Table {
	return t.table
}

// SetTable replaces the delimiter table. Already tracked pairs are kept and
// pruned by the usual rules.
func (t *Tracker) SetTable(table Table) {
	t.table = table
}

// Pairs returns a copy of the tracked pairs.
func (t *Tracker) Pairs() State {
	return slices.Clone(t.pairs)
}

// Enclosing returns the tracked pairs whose span contains pos.
func (t *Tracker) Enclosing(pos int) []Pair {
	return t.index.enclosing(pos)
}

// Reset drops every tracked pair, e.g. when the host loads a new document.
func (t *Tracker) Reset() {
	t.setPairs(nil)
}

func (t *Tracker) setPairs(pairs State) {
	t.pairs = pairs
	t.index = newPairIndex(pairs)
}

// HandleKey is the key-intercept hook. It returns the instruction to apply
// and true when the keystroke is handled, or false to let the host insert r
// literally.
//
// A rune that closes a pair is first checked for a skip-over. Symmetric
// delimiters that can not be skipped then fall through to the opening rule.
func (t *Tracker) HandleKey(r rune, sel Selection, doc Document) (Instruction, bool) {
	if t.table.IsClose(r) {
		if ins, ok := t.EvaluateClose(r, sel, doc); ok {
			return ins, true
		}
	}

	if t.table.IsOpen(r) {
		return t.EvaluateOpen(r, sel, doc)
	}

	return Instruction{}, false
}

// EvaluateOpen decides whether the opening delimiter open gets its closing
// counterpart inserted along with it.
//
// With a selection, the selected text is wrapped and stays selected. With a
// bare caret, the pair is inserted only at the start of the document, after
// whitespace or after another opening delimiter, so that typing in the
// middle of a word is left alone.
func (t *Tracker) EvaluateOpen(open rune, sel Selection, doc Document) (Instruction, bool) {
	closing, ok := t.table.Close(open)
	if !ok {
		return Instruction{}, false
	}

	from, to := sel.From(), sel.To()
	if from < 0 || to > doc.Len() {
		return Instruction{}, false
	}

	if !sel.Empty() {
		if !t.wrap {
			return Instruction{}, false
		}

		inner := doc.TextBetween(from, to)
		n := utf8.RuneCountInString(inner)
		p := Pair{Start: from, End: from + 1 + n, Close: closing}
		logger.Debug("wrap selection", "from", from, "to", to, "open", string(open))

		return Instruction{
			Op:        OpWrap,
			From:      from,
			To:        to,
			Text:      string(open) + inner + string(closing),
			Selection: Selection{Start: from + 1, End: from + 1 + n},
			Pairs:     t.pairs.shift(from, to).with(p),
		}, true
	}

	if !t.canPairAt(from, doc) {
		return Instruction{}, false
	}

	p := Pair{Start: from, End: from + 1, Close: closing}
	logger.Debug("insert pair", "at", from, "open", string(open))

	return Instruction{
		Op:        OpInsertPair,
		From:      from,
		To:        from,
		Text:      string(open) + string(closing),
		Selection: Caret(from + 1),
		Pairs:     t.pairs.shift(from, from).with(p),
	}, true
}

// canPairAt checks the rune before pos.
func (t *Tracker) canPairAt(pos int, doc Document) bool {
	prev, ok := doc.RuneBefore(pos)
	if !ok {
		return true
	}

	return unicode.IsSpace(prev) || t.table.IsOpen(prev)
}

// EvaluateClose decides whether typing closing moves the caret over an
// auto-inserted closing delimiter instead of inserting a new one.
func (t *Tracker) EvaluateClose(closing rune, sel Selection, doc Document) (Instruction, bool) {
	if !sel.Empty() {
		return Instruction{}, false
	}

	pos := sel.Start
	next, ok := runeAt(doc, pos)
	if !ok || next != closing {
		return Instruction{}, false
	}

	if _, found := t.index.endingAt(pos, closing); !found {
		return Instruction{}, false
	}

	logger.Debug("skip closing delimiter", "at", pos, "close", string(closing))
	return Instruction{
		Op:        OpSkip,
		From:      pos,
		To:        pos,
		Selection: Caret(pos + 1),
	}, true
}

// Observe is the edit-observer hook. The host calls it after every edit,
// including caret moves and edits the tracker did not produce.
func (t *Tracker) Observe(c Change) {
	if c.Origin != nil && c.Origin.Pairs != nil {
		t.setPairs(slices.Clone(c.Origin.Pairs))
		return
	}

	if len(t.pairs) == 0 {
		return
	}

	mapping := c.Mapping
	if mapping == nil {
		mapping = Identity
	}

	next := Remap(t.pairs, mapping, c.Doc, c.Selection)
	if dropped := len(t.pairs) - len(next); dropped > 0 {
		logger.Debug("pruned pairs", "dropped", dropped, "kept", len(next))
	}
	t.setPairs(next)
}

// Remap translates prior through mapping and keeps the pairs that are still
// live in doc: the closing delimiter is still at End, or the caret is
// between Start and End. Pairs collapsed by the edit or pushed outside the
// document are dropped. prior is left untouched.
func Remap(prior State, mapping Mapping, doc Document, sel Selection) State {
	caret := sel.From()
	docLen := doc.Len()

	next := make(State, 0, len(prior))
	for _, p := range prior {
		mapped := Pair{
			Start: mapping.Map(p.Start),
			End:   mapping.Map(p.End),
			Close: p.Close,
		}
		if !mapped.valid(docLen) {
			continue
		}

		if r, ok := runeAt(doc, mapped.End); (ok && r == mapped.Close) || mapped.contains(caret) {
			next = append(next, mapped)
		}
	}

	return next
}
