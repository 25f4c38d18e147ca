package buffer

import "unicode/utf8"

type bufSrc uint8
type action uint8

const (
	original bufSrc = iota
	modify
)

const (
	actionUnknown action = iota
	actionInsert
	actionErase
)

// PieceTable is a text sequence addressed in runes. Every modification is
// recorded on an undo stack, and the offset mapping of each modification is
// kept until it is taken by TakeMapping.
type PieceTable struct {
	originalBuf *textBuffer
	modifyBuf   *textBuffer
	// Length of the text sequence in runes.
	seqLength int
	// bytes size of the text sequence.
	seqBytes int

	// undo stack and redo stack
	undoStack *pieceRangeStack
	redoStack *pieceRangeStack
	// piece list
	pieces *pieceList

	// last action and action position in rune offset in the text sequence.
	lastAction       action
	lastActionEndIdx int
	// last inserted piece, for insertion optimization purpose.
	lastInsertPiece *piece

	// batch id of the next modification.
	currentBatch int
	groupDepth   int

	// offset mapping of the modifications since the last TakeMapping.
	steps Mapping
}

func NewPieceTable(text []byte) *PieceTable {
	pt := &PieceTable{
		originalBuf: newTextBuffer(),
		modifyBuf:   newTextBuffer(),
		pieces:      newPieceList(),
		undoStack:   &pieceRangeStack{},
		redoStack:   &pieceRangeStack{},
	}
	pt.init(text)

	return pt
}

// Initialize the piece table with the text by adding the text to the original buffer,
// and create the first piece point to the buffer.
func (pt *PieceTable) init(text []byte) {
	runeCnt := pt.originalBuf.set(text)
	if runeCnt <= 0 {
		return
	}

	piece := &piece{
		source:     original,
		offset:     0,
		length:     runeCnt,
		byteOff:    0,
		byteLength: len(text),
	}

	pt.pieces.Append(piece)
	pt.seqLength = piece.length
	pt.seqBytes = piece.byteLength
}

func (pt *PieceTable) getBuf(source bufSrc) *textBuffer {
	if source == original {
		return pt.originalBuf
	}

	return pt.modifyBuf
}

func (pt *PieceTable) recordAction(action action, runeIndex int) {
	pt.lastAction = action
	pt.lastActionEndIdx = runeIndex
}

// GroupOp starts a group of modifications that are undone and redone as one
// step. Groups may be nested; only the outermost UnGroupOp closes the group.
func (pt *PieceTable) GroupOp() {
	pt.groupDepth++
}

// UnGroupOp closes the group opened by the matching GroupOp.
func (pt *PieceTable) UnGroupOp() {
	if pt.groupDepth <= 0 {
		return
	}

	pt.groupDepth--
	if pt.groupDepth == 0 {
		pt.currentBatch++
	}
}

// nextBatch returns the batch id for a new modification.
func (pt *PieceTable) nextBatch() int {
	id := pt.currentBatch
	if pt.groupDepth == 0 {
		pt.currentBatch++
	}

	return id
}

func (pt *PieceTable) pushUndo(rng *pieceRange) {
	rng.batchId = pt.nextBatch()
	pt.undoStack.push(rng)
	pt.steps = append(pt.steps, StepMap{Start: rng.runeIndex, OldSize: rng.removed, NewSize: rng.added})
	pt.pieces.invalidateCache()
}

// Insert insert text at the logical position specifed by runeIndex. runeIndex is measured by rune.
// There are 2 scenarios need to be handled:
//  1. Insert in the middle of a piece.
//  2. Insert at the boundary of two pieces.
func (pt *PieceTable) Insert(runeIndex int, text string) bool {
	if runeIndex > pt.seqLength || runeIndex < 0 || text == "" {
		return false
	}

	pt.redoStack.clear()

	// special-case: inserting at the end of a prior insertion at a piece boundary.
	if pt.tryAppendToLastPiece(runeIndex, text) {
		return true
	}

	oldPiece, inRuneOff := pt.pieces.FindPiece(runeIndex)

	if inRuneOff == 0 {
		pt.insertAtBoundary(runeIndex, text, oldPiece)
	} else {
		pt.insertInMiddle(runeIndex, text, oldPiece, inRuneOff)
	}

	return true
}

// Check if this insert action can be optimized by merging the input with previous one.
// multiple characters input won't be merged, nor input in another group.
func (pt *PieceTable) tryAppendToLastPiece(runeIndex int, text string) bool {
	if pt.lastAction != actionInsert ||
		runeIndex != pt.lastActionEndIdx ||
		pt.lastInsertPiece == nil ||
		pt.groupDepth > 0 ||
		utf8.RuneCountInString(text) > 1 {
		return false
	}

	last := pt.undoStack.peek()
	if last == nil {
		return false
	}

	_, _, textRunes := pt.modifyBuf.append([]byte(text))

	pt.lastInsertPiece.length += textRunes
	pt.lastInsertPiece.byteLength += len(text)
	last.added += textRunes

	pt.seqLength += textRunes
	pt.seqBytes += len(text)
	pt.steps = append(pt.steps, StepMap{Start: runeIndex, OldSize: 0, NewSize: textRunes})
	pt.pieces.invalidateCache()
	pt.recordAction(actionInsert, runeIndex+textRunes)

	return true
}

func (pt *PieceTable) newInsertPiece(text string) (*piece, int) {
	textRuneOff, textByteOff, textRunes := pt.modifyBuf.append([]byte(text))

	newPiece := &piece{
		source:     modify,
		offset:     textRuneOff,
		length:     textRunes,
		byteOff:    textByteOff,
		byteLength: len(text),
	}
	pt.lastInsertPiece = newPiece
	return newPiece, textRunes
}

func (pt *PieceTable) insertAtBoundary(runeIndex int, text string, oldPiece *piece) {
	newPiece, textRunes := pt.newInsertPiece(text)

	// insertion is at the boundary of 2 pieces.
	oldPieces := &pieceRange{
		cursor:    CursorPos{Start: runeIndex, End: runeIndex},
		runeIndex: runeIndex,
		added:     textRunes,
	}
	oldPieces.AsBoundary(oldPiece)

	newPieces := &pieceRange{}
	newPieces.Append(newPiece)
	// swap link the new piece into the sequence
	oldPieces.Swap(newPieces)
	pt.pushUndo(oldPieces)

	pt.seqLength += textRunes
	pt.seqBytes += len(text)
	pt.recordAction(actionInsert, runeIndex+textRunes)
}

func (pt *PieceTable) insertInMiddle(runeIndex int, text string, oldPiece *piece, inRuneOff int) {
	newPiece, textRunes := pt.newInsertPiece(text)

	// preserve the old pieces as a pieceRange, and push to the undo stack.
	oldPieces := &pieceRange{
		cursor:    CursorPos{Start: runeIndex, End: runeIndex},
		runeIndex: runeIndex,
		added:     textRunes,
	}
	oldPieces.Append(oldPiece)

	// spilt the old piece into 2 new pieces, and insert the newly added text.
	newPieces := &pieceRange{}
	buf := pt.getBuf(oldPiece.source)

	// Append the left part of the old piece.
	byteLen := buf.bytesForRange(oldPiece.offset, inRuneOff)
	newPieces.Append(&piece{
		source:     oldPiece.source,
		offset:     oldPiece.offset,
		length:     inRuneOff,
		byteOff:    oldPiece.byteOff,
		byteLength: byteLen,
	})

	// Then the newly added piece.
	newPieces.Append(newPiece)

	//  And the right part of the old piece.
	byteOff := buf.RuneOffset(oldPiece.offset + inRuneOff)
	byteLen = buf.bytesForRange(oldPiece.offset+inRuneOff, oldPiece.length-inRuneOff)
	newPieces.Append(&piece{
		source:     oldPiece.source,
		offset:     oldPiece.offset + inRuneOff,
		length:     oldPiece.length - inRuneOff,
		byteOff:    byteOff,
		byteLength: byteLen,
	})

	oldPieces.Swap(newPieces)
	pt.pushUndo(oldPieces)

	pt.seqLength += textRunes
	pt.seqBytes += len(text)
	pt.recordAction(actionInsert, runeIndex+textRunes)
}

// Erase deletes the runes in [startOff, endOff).
func (pt *PieceTable) Erase(startOff, endOff int) bool {
	if startOff > endOff {
		startOff, endOff = endOff, startOff
	}

	startOff = max(startOff, 0)
	endOff = min(endOff, pt.seqLength)

	if startOff >= endOff {
		return false
	}

	pt.redoStack.clear()

	startPiece, inRuneOff := pt.pieces.FindPiece(startOff)

	oldPieces := &pieceRange{
		cursor:    CursorPos{Start: startOff, End: endOff},
		runeIndex: startOff,
		removed:   endOff - startOff,
	}
	newPieces := &pieceRange{}
	bytesErased := 0

	// Walk the affected pieces, keeping the left part of the first one and
	// the right part of the last one.
	pieceStart := startOff - inRuneOff
	n := startPiece
	for ; n != pt.pieces.tail && pieceStart < endOff; n = n.next {
		oldPieces.Append(n)

		buf := pt.getBuf(n.source)
		pieceEnd := pieceStart + n.length
		keptBytes := 0

		if keepLeft := startOff - pieceStart; keepLeft > 0 {
			byteLen := buf.bytesForRange(n.offset, keepLeft)
			newPieces.Append(&piece{
				source:     n.source,
				offset:     n.offset,
				length:     keepLeft,
				byteOff:    n.byteOff,
				byteLength: byteLen,
			})
			keptBytes += byteLen
		}

		if keepRight := pieceEnd - endOff; keepRight > 0 {
			rightOff := n.offset + n.length - keepRight
			byteLen := buf.bytesForRange(rightOff, keepRight)
			newPieces.Append(&piece{
				source:     n.source,
				offset:     rightOff,
				length:     keepRight,
				byteOff:    buf.RuneOffset(rightOff),
				byteLength: byteLen,
			})
			keptBytes += byteLen
		}

		bytesErased += n.byteLength - keptBytes
		pieceStart = pieceEnd
	}

	if newPieces.Length() == 0 {
		newPieces.AsBoundary(n)
	}

	// swap link the new piece into the sequence
	oldPieces.Swap(newPieces)
	pt.pushUndo(oldPieces)

	pt.seqLength -= endOff - startOff
	pt.seqBytes -= bytesErased
	pt.recordAction(actionErase, startOff)
	return true
}

// Replace replaces the runes in [startOff, endOff) with text as a single
// undo step. It returns the number of runes inserted.
func (pt *PieceTable) Replace(startOff, endOff int, text string) int {
	if startOff > endOff {
		startOff, endOff = endOff, startOff
	}
	startOff = min(max(startOff, 0), pt.seqLength)

	pt.GroupOp()
	defer pt.UnGroupOp()

	pt.Erase(startOff, endOff)
	if !pt.Insert(startOff, text) {
		return 0
	}

	return utf8.RuneCountInString(text)
}

func (pt *PieceTable) undoRedo(src *pieceRangeStack, dest *pieceRangeStack, undo bool) ([]CursorPos, bool) {
	if src.depth() <= 0 {
		return nil, false
	}

	var cursors []CursorPos
	batch := src.peek().batchId

	for src.depth() > 0 && src.peek().batchId == batch {
		// remove the next event from the source stack
		rng := src.pop()
		newRuneLen, newBytes := rng.Size()

		// restore to the old piece range.
		rng.Restore()
		// add the restored range onto the destination stack
		dest.push(rng)

		lastRuneLen, lastBytes := rng.Size()
		pt.seqLength += newRuneLen - lastRuneLen
		pt.seqBytes += newBytes - lastBytes

		step := StepMap{Start: rng.runeIndex, OldSize: rng.removed, NewSize: rng.added}
		if undo {
			step.OldSize, step.NewSize = rng.added, rng.removed
		}
		pt.steps = append(pt.steps, step)
		cursors = append(cursors, rng.cursor)
	}

	pt.pieces.invalidateCache()
	pt.lastInsertPiece = nil
	pt.recordAction(actionUnknown, 0)
	return cursors, true
}

// Undo reverts the last operation, or the last group of operations. It
// returns the cursor positions recorded before each reverted modification,
// latest first.
func (pt *PieceTable) Undo() ([]CursorPos, bool) {
	return pt.undoRedo(pt.undoStack, pt.redoStack, true)
}

// Redo re-applies the last undone operation or group.
func (pt *PieceTable) Redo() ([]CursorPos, bool) {
	return pt.undoRedo(pt.redoStack, pt.undoStack, false)
}

// TakeMapping returns the offset mapping of every modification, undo and
// redo since the previous call, and resets it.
func (pt *PieceTable) TakeMapping() Mapping {
	m := pt.steps
	pt.steps = nil
	return m
}

// Len returns the length of the document in runes.
func (pt *PieceTable) Len() int {
	return pt.seqLength
}

// Size returns the length of the document in bytes.
func (pt *PieceTable) Size() int64 {
	return int64(pt.seqBytes)
}
