package buffer

import (
	"unicode/utf8"
)

// textBuffer is an append-only byte buffer backing the pieces. It keeps the
// byte offset of every rune so pieces can be addressed in runes.
type textBuffer struct {
	buf []byte
	// runeOffs[i] is the byte offset of the i-th rune.
	runeOffs []int
}

func newTextBuffer() *textBuffer {
	return &textBuffer{}
}

// set replaces the content of the buffer, returning the number of runes.
func (tb *textBuffer) set(text []byte) int {
	tb.buf = tb.buf[:0]
	tb.runeOffs = tb.runeOffs[:0]
	_, _, n := tb.append(text)
	return n
}

// append adds text to the end of the buffer. It returns the rune offset and
// the byte offset of the appended text, and its length in runes.
func (tb *textBuffer) append(text []byte) (runeOff, byteOff, runeCnt int) {
	runeOff = len(tb.runeOffs)
	byteOff = len(tb.buf)

	for i := 0; i < len(text); {
		_, size := utf8.DecodeRune(text[i:])
		tb.runeOffs = append(tb.runeOffs, byteOff+i)
		i += size
		runeCnt++
	}

	tb.buf = append(tb.buf, text...)
	return
}

// RuneOffset returns the byte offset of the rune at runeIndex.
func (tb *textBuffer) RuneOffset(runeIndex int) int {
	if runeIndex >= len(tb.runeOffs) {
		return len(tb.buf)
	}
	if runeIndex < 0 {
		return 0
	}

	return tb.runeOffs[runeIndex]
}

// bytesForRange returns the byte length of runeLen runes starting at the
// rune offset runeOff.
func (tb *textBuffer) bytesForRange(runeOff, runeLen int) int {
	return tb.RuneOffset(runeOff+runeLen) - tb.RuneOffset(runeOff)
}

func (tb *textBuffer) getTextByRange(byteOff, byteLen int) []byte {
	end := min(byteOff+byteLen, len(tb.buf))
	return tb.buf[byteOff:end]
}
