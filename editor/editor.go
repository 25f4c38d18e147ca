// Package editor implements a headless text editing session that drives an
// autopair.Tracker from keystrokes. It carries no rendering: a UI feeds it
// key.EditEvents or runes and reads the text and selection back.
package editor

import (
	"unicode/utf8"

	"gioui.org/io/key"
	"github.com/oligo/autopair"
	"github.com/oligo/autopair/buffer"
)

// Editor holds the text, the selection and the pair tracker of one editing
// session. The zero value is an empty editor using the default delimiter
// table. An Editor is not safe for concurrent use.
type Editor struct {
	buffer  *buffer.PieceTableReader
	tracker *autopair.Tracker
	seg     graphemeReader

	// caret.start is where the selection was started and may be greater
	// than caret.end.
	caret struct {
		start int
		end   int
	}

	listeners []func(EditorEvent)
	scratch   []byte
}

type EditorEvent interface {
	isEditorEvent()
}

// A ChangeEvent is generated for every change to the text.
type ChangeEvent struct{}

// A SelectEvent is generated when the selection or the caret position
// changes, including when an edit moves it.
type SelectEvent struct {
	Start, End int
}

// New creates an empty editor whose tracker is configured with opts.
func New(opts ...autopair.Option) *Editor {
	return &Editor{tracker: autopair.New(opts...)}
}

// initBuffer should be invoked first in every exported function that accesses
// text state.
func (e *Editor) initBuffer() {
	if e.buffer == nil {
		e.buffer = buffer.NewTextSource()
	}
	if e.tracker == nil {
		e.tracker = autopair.New()
	}
}

// AddListener registers fn to be called with every event, after the edit
// that caused it is complete.
func (e *Editor) AddListener(fn func(EditorEvent)) {
	e.listeners = append(e.listeners, fn)
}

func (e *Editor) emit(events ...EditorEvent) {
	for _, ev := range events {
		for _, fn := range e.listeners {
			fn(ev)
		}
	}
}

func (e *Editor) selection() autopair.Selection {
	return autopair.Selection{Start: e.caret.start, End: e.caret.end}
}

// notify reports the changes made since the last notification to the
// tracker.
func (e *Editor) notify(origin *autopair.Instruction) {
	e.tracker.Observe(autopair.Change{
		Mapping:   e.buffer.TakeMapping(),
		Doc:       e.buffer,
		Selection: e.selection(),
		Origin:    origin,
	})
}

func (e *Editor) setCaret(start, end int) {
	l := e.buffer.Len()
	e.caret.start = min(max(start, 0), l)
	e.caret.end = min(max(end, 0), l)
}

// Len is the length of the editor contents, in runes.
func (e *Editor) Len() int {
	e.initBuffer()
	return e.buffer.Len()
}

// Text returns the contents of the editor.
func (e *Editor) Text() string {
	e.initBuffer()
	e.scratch = e.buffer.Text(e.scratch)
	return string(e.scratch)
}

// SetText replaces the contents of the editor, drops the undo history and
// the tracked pairs, and moves the caret to the beginning.
func (e *Editor) SetText(s string) {
	e.initBuffer()

	e.buffer = buffer.NewTextSourceFrom(s)
	e.tracker.Reset()
	e.caret.start, e.caret.end = 0, 0

	e.emit(ChangeEvent{}, SelectEvent{})
}

// Selection returns the start and end of the selection, as rune offsets.
// start can be > end.
func (e *Editor) Selection() (start, end int) {
	e.initBuffer()
	return e.caret.start, e.caret.end
}

// SetCaret moves the caret to start, and sets the selection end to end. start
// and end are in runes, and are clamped to the text.
func (e *Editor) SetCaret(start, end int) {
	e.initBuffer()

	prev := e.caret
	e.setCaret(start, end)
	if prev == e.caret {
		return
	}

	e.notify(nil)
	e.emit(SelectEvent{Start: e.caret.start, End: e.caret.end})
}

// SelectedText returns the currently selected text (if any) from the editor.
func (e *Editor) SelectedText() string {
	e.initBuffer()
	sel := e.selection()
	return e.buffer.TextBetween(sel.From(), sel.To())
}

// Type handles one typed rune: the tracker gets the first chance to pair,
// wrap or skip, otherwise r replaces the selection.
func (e *Editor) Type(r rune) {
	e.initBuffer()

	if ins, ok := e.tracker.HandleKey(r, e.selection(), e.buffer); ok {
		e.apply(ins)
		return
	}

	e.Insert(string(r))
}

// TypeText types the runes of s one by one.
func (e *Editor) TypeText(s string) {
	for _, r := range s {
		e.Type(r)
	}
}

// apply performs an instruction from the tracker as one undo step.
func (e *Editor) apply(ins autopair.Instruction) {
	changed := ins.ChangesText()
	if changed {
		e.buffer.Replace(ins.From, ins.To, ins.Text)
	}
	e.setCaret(ins.Selection.Start, ins.Selection.End)
	e.notify(&ins)

	if changed {
		e.emit(ChangeEvent{})
	}
	e.emit(SelectEvent{Start: e.caret.start, End: e.caret.end})
}

// Insert replaces the selection with s and places the caret after it. It
// returns the number of runes inserted.
func (e *Editor) Insert(s string) (insertedRunes int) {
	e.initBuffer()

	sel := e.selection()
	if sel.Empty() && s == "" {
		return 0
	}

	moves := e.buffer.Replace(sel.From(), sel.To(), s)
	pos := sel.From() + moves
	e.setCaret(pos, pos)
	e.notify(nil)

	e.emit(ChangeEvent{}, SelectEvent{Start: pos, End: pos})
	return moves
}

// Delete runes from the caret position. The sign of the argument specifies the
// direction to delete: positive is forward, negative is backward.
//
// If there is a selection, it is deleted and counts as a single grapheme
// cluster.
func (e *Editor) Delete(graphemeClusters int) (deletedRunes int) {
	e.initBuffer()
	if graphemeClusters == 0 {
		return 0
	}

	start, end := e.caret.start, e.caret.end
	if start != end {
		graphemeClusters -= sign(graphemeClusters)
	}

	if graphemeClusters != 0 {
		end = e.moveByClusters(end, graphemeClusters)
	}
	if start > end {
		start, end = end, start
	}
	if start == end {
		return 0
	}

	e.buffer.Replace(start, end, "")
	e.setCaret(start, start)
	e.notify(nil)

	e.emit(ChangeEvent{}, SelectEvent{Start: start, End: start})
	return end - start
}

// Undo reverts the last edit. An auto-pair or a wrap is reverted as a
// whole.
func (e *Editor) Undo() bool {
	e.initBuffer()
	return e.undoRedo(e.buffer.Undo)
}

// Redo re-applies the last undone edit.
func (e *Editor) Redo() bool {
	e.initBuffer()
	return e.undoRedo(e.buffer.Redo)
}

func (e *Editor) undoRedo(fn func() ([]buffer.CursorPos, bool)) bool {
	positions, ok := fn()
	if !ok {
		return false
	}

	var start, end int
	for _, pos := range positions {
		start = pos.Start
		end = pos.End
	}

	e.setCaret(end, start)
	e.notify(nil)

	e.emit(ChangeEvent{}, SelectEvent{Start: e.caret.start, End: e.caret.end})
	return true
}

// OnEditEvent applies an edit event of the host window. An event carrying a
// single rune is handled as a keystroke, anything else replaces the range
// as is.
func (e *Editor) OnEditEvent(ke key.EditEvent) {
	e.initBuffer()

	e.SetCaret(ke.Range.Start, ke.Range.End)
	if utf8.RuneCountInString(ke.Text) == 1 {
		r, _ := utf8.DecodeRuneInString(ke.Text)
		e.Type(r)
		return
	}

	e.Insert(ke.Text)
}

// Tracker returns the pair tracker of the session.
func (e *Editor) Tracker() *autopair.Tracker {
	e.initBuffer()
	return e.tracker
}

// SetTable replaces the delimiter table of the tracker.
func (e *Editor) SetTable(table autopair.Table) {
	e.initBuffer()
	e.tracker.SetTable(table)
}

// Pairs returns the auto-inserted pairs currently tracked.
func (e *Editor) Pairs() autopair.State {
	e.initBuffer()
	return e.tracker.Pairs()
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	default:
		return 0
	}
}

func (s ChangeEvent) isEditorEvent() {}
func (s SelectEvent) isEditorEvent() {}
