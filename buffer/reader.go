package buffer

import (
	"io"
	"unicode/utf8"
)

// TextSource is the text storage used by the editor: a rune addressed,
// undoable text sequence that reports an offset mapping for its changes.
type TextSource interface {
	io.ReaderAt
	// Len returns the length of the text in runes.
	Len() int
	// Text returns the whole text, reusing buf if it is large enough.
	Text(buf []byte) []byte
	// TextBetween returns the text in the rune range [from, to).
	TextBetween(from, to int) string
	// RuneAt returns the rune at the rune offset.
	RuneAt(offset int) (rune, bool)
	// RuneBefore returns the rune just before the rune offset.
	RuneBefore(offset int) (rune, bool)
	// Replace replaces the rune range [start, end) with text as one undo step.
	Replace(start, end int, text string) int
	Erase(start, end int) bool
	Insert(runeIndex int, text string) bool
	GroupOp()
	UnGroupOp()
	Undo() ([]CursorPos, bool)
	Redo() ([]CursorPos, bool)
	// TakeMapping returns the offset mapping of the changes made since the
	// previous call.
	TakeMapping() Mapping
}

var _ TextSource = (*PieceTableReader)(nil)

// PieceTableReader implements a [TextSource].
type PieceTableReader struct {
	*PieceTable

	seekCursor int64
}

// ReadAt implements [io.ReaderAt].
func (r *PieceTableReader) ReadAt(p []byte, offset int64) (total int, err error) {
	if len(p) == 0 {
		return 0, nil
	}
	if offset >= int64(r.seqBytes) {
		return 0, io.EOF
	}

	var expected = len(p)
	var bytes int64
	for n := r.pieces.Head(); n != r.pieces.tail; n = n.next {
		bytes += int64(n.byteLength)

		if bytes > offset {
			fragment := r.getBuf(n.source).getTextByRange(
				n.byteOff+n.byteLength-int(bytes-offset), // calculate the offset in the source buffer.
				int(bytes-offset))

			n := copy(p, fragment)
			p = p[n:]
			total += n
			offset += int64(n)

			if total >= expected {
				break
			}
		}
	}

	if total < expected {
		err = io.EOF
	}

	return
}

// Seek implements [io.Seeker].
func (r *PieceTableReader) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		r.seekCursor = offset
	case io.SeekCurrent:
		r.seekCursor += offset
	case io.SeekEnd:
		r.seekCursor = int64(r.seqBytes) + offset
	}
	return r.seekCursor, nil
}

// Read implements [io.Reader].
func (r *PieceTableReader) Read(p []byte) (int, error) {
	n, err := r.ReadAt(p, r.seekCursor)
	r.seekCursor += int64(n)
	return n, err
}

func (r *PieceTableReader) Text(buf []byte) []byte {
	if cap(buf) < r.seqBytes {
		buf = make([]byte, r.seqBytes)
	}
	buf = buf[:r.seqBytes]
	r.Seek(0, io.SeekStart)
	n, _ := io.ReadFull(r, buf)
	return buf[:n]
}

// RuneOffset returns the byte offset for the rune at position runeIndex.
// Offsets at or past the end map to the byte size of the text.
func (r *PieceTableReader) RuneOffset(runeIndex int) int {
	if runeIndex >= r.seqLength {
		return r.seqBytes
	}

	var bytes int
	var runes int

	for n := r.pieces.Head(); n != r.pieces.tail; n = n.next {
		if runes+n.length > runeIndex {
			return bytes + r.getBuf(n.source).bytesForRange(n.offset, runeIndex-runes)
		}

		bytes += n.byteLength
		runes += n.length
	}

	return bytes
}

// TextBetween returns the text in the rune range [from, to), clamped to the
// document.
func (r *PieceTableReader) TextBetween(from, to int) string {
	if from > to {
		from, to = to, from
	}
	from = max(from, 0)
	to = min(to, r.seqLength)
	if from >= to {
		return ""
	}

	start := r.RuneOffset(from)
	end := r.RuneOffset(to)
	buf := make([]byte, end-start)
	n, _ := r.ReadAt(buf, int64(start))
	return string(buf[:n])
}

// RuneAt returns the rune at the rune offset.
func (r *PieceTableReader) RuneAt(offset int) (rune, bool) {
	if offset < 0 || offset >= r.seqLength {
		return 0, false
	}

	c, _, err := r.ReadRuneAt(int64(r.RuneOffset(offset)))
	return c, err == nil || err == io.EOF
}

// RuneBefore returns the rune just before the rune offset.
func (r *PieceTableReader) RuneBefore(offset int) (rune, bool) {
	if offset <= 0 || offset > r.seqLength {
		return 0, false
	}

	return r.RuneAt(offset - 1)
}

// ReadRuneAt reads the rune starting at the given byte offset, if any.
func (r *PieceTableReader) ReadRuneAt(off int64) (rune, int, error) {
	var buf [utf8.UTFMax]byte
	b := buf[:]
	n, err := r.ReadAt(b, off)
	b = b[:n]
	c, s := utf8.DecodeRune(b)
	return c, s, err
}

func NewTextSource() *PieceTableReader {
	return &PieceTableReader{
		PieceTable: NewPieceTable([]byte("")),
	}
}

// NewTextSourceFrom creates a text source holding text as its original
// content.
func NewTextSourceFrom(text string) *PieceTableReader {
	return &PieceTableReader{
		PieceTable: NewPieceTable([]byte(text)),
	}
}
