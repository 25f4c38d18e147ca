package buffer

import (
	"testing"
)

func readTableContent(pt *PieceTable) string {
	reader := PieceTableReader{PieceTable: pt}
	buf := []byte{}
	return string(reader.Text(buf))
}

func TestInsert(t *testing.T) {
	pt := NewPieceTable([]byte{})
	pt.Insert(0, "Hello, world")
	pt.Insert(6, " Go")

	if readTableContent(pt) != "Hello, Go world" {
		t.Fail()
	}

	pt = NewPieceTable([]byte("Hello, world"))
	pt.Insert(6, " Go")
	pt.Insert(6, " welcome to the")

	expected := readTableContent(pt)
	if expected != "Hello, welcome to the Go world" {
		t.Fail()
	}

	if pt.Insert(100, "x") || pt.Insert(-1, "x") {
		t.Error("out of range insert should fail")
	}
}

func TestAppendInsert(t *testing.T) {
	pt := NewPieceTable([]byte{})
	pt.Insert(0, "H")
	pt.Insert(1, "e")
	pt.Insert(2, "l")
	pt.Insert(3, "l")
	pt.Insert(4, "o")

	expected := readTableContent(pt)
	if expected != "Hello" {
		t.Fail()
	}

	if pt.pieces.Length() != 1 {
		t.Fail()
	}

	// merged inputs are a single undo step.
	if pt.undoStack.depth() != 1 {
		t.Fail()
	}

	pt.Insert(5, ", world")
	if pt.pieces.Length() != 2 {
		t.Fail()
	}
}

func TestUndo(t *testing.T) {
	pt := NewPieceTable([]byte(""))

	pt.Insert(0, "Hello, ")
	pt.Insert(7, "world")

	if pt.undoStack.depth() != 2 {
		t.Fail()
	}

	if pt.redoStack.depth() != 0 {
		t.Fail()
	}

	if pt.seqLength != 12 || pt.seqBytes != 12 {
		t.Fail()
	}

	pt.Undo()
	if pt.undoStack.depth() != 1 || pt.redoStack.depth() != 1 {
		t.Fail()
	}

	if pt.seqLength != 7 || pt.seqBytes != 7 {
		t.Fail()
	}

	if readTableContent(pt) != "Hello, " {
		t.Fail()
	}

	pt.Undo()

	if pt.undoStack.depth() != 0 || pt.redoStack.depth() != 2 {
		t.Fail()
	}

	if readTableContent(pt) != "" {
		t.Fail()
	}

	if _, ok := pt.Undo(); ok {
		t.Error("undo on an empty stack should report false")
	}
}

func TestUndoRedo(t *testing.T) {
	pt := NewPieceTable([]byte(""))

	pt.Insert(0, "Hello")
	if pt.undoStack.depth() != 1 || pt.redoStack.depth() != 0 {
		t.Fail()
	}

	pt.Undo()
	if pt.undoStack.depth() != 0 || pt.redoStack.depth() != 1 {
		t.Fail()
	}

	pt.Redo()
	if pt.undoStack.depth() != 1 || pt.redoStack.depth() != 0 {
		t.Fail()
	}

	if readTableContent(pt) != "Hello" {
		t.Errorf("got %q after redo", readTableContent(pt))
	}

	// After insert or other operations, redo stack should be empty.
	pt.Insert(5, "world")
	pt.Undo()
	pt.Insert(5, "Golang")
	if pt.redoStack.depth() > 0 {
		t.Fail()
	}
}

func TestErase(t *testing.T) {
	cases := []struct {
		desc  string
		input []int
		want  struct {
			content string
			bytes   int
		}
	}{
		{
			desc:  "Erase start at the boundary of start piece, and end in the middle of the first piece.",
			input: []int{0, 3},
			want: struct {
				content string
				bytes   int
			}{content: "lo,world", bytes: 8},
		},
		{
			desc:  "Erase start and end in the middle of a piece",
			input: []int{6, 8},
			want: struct {
				content string
				bytes   int
			}{
				content: "Hello,rld",
				bytes:   9,
			},
		},
		{
			desc:  "Erase start and end in the middle of two pieces",
			input: []int{4, 6},
			want: struct {
				content string
				bytes   int
			}{
				content: "Hellworld",
				bytes:   9,
			},
		},
		{
			desc:  "Erase start in the middle of a piece, and end in the boundary.",
			input: []int{2, 5},
			want: struct {
				content string
				bytes   int
			}{
				content: "He,world",
				bytes:   8,
			},
		},
		{
			desc:  "Erase start and end in the boundary.",
			input: []int{0, 5},
			want: struct {
				content string
				bytes   int
			}{
				content: ",world",
				bytes:   6,
			},
		},
		{
			desc:  "Erase all.",
			input: []int{0, 11},
			want: struct {
				content string
				bytes   int
			}{
				content: "",
				bytes:   0,
			},
		},
	}

	for _, tc := range cases {
		pt := NewPieceTable([]byte(""))
		pt.Insert(0, "Hello")
		pt.Insert(5, ",world")

		t.Run(tc.desc, func(t *testing.T) {
			pt.Erase(tc.input[0], tc.input[1])
			if ans := readTableContent(pt); ans != tc.want.content || pt.seqBytes != tc.want.bytes {
				t.Errorf("got content: %s, want content: %s; got bytes: %d, want bytes: %d", ans, tc.want.content, pt.seqBytes, tc.want.bytes)
			}

			pt.Undo()
			if ans := readTableContent(pt); ans != "Hello,world" {
				t.Errorf("got content after undo: %s", ans)
			}
		})
	}
}

func TestEraseMultiBytes(t *testing.T) {
	pt := NewPieceTable([]byte("«你好»"))
	pt.Erase(1, 3)

	if ans := readTableContent(pt); ans != "«»" {
		t.Errorf("got content: %s", ans)
	}

	if pt.seqLength != 2 || pt.seqBytes != len("«»") {
		t.Errorf("got length %d, bytes %d", pt.seqLength, pt.seqBytes)
	}
}

func TestGroupOp(t *testing.T) {
	pt := NewPieceTable([]byte(""))

	pt.GroupOp()
	batchId1 := pt.currentBatch

	{
		pt.GroupOp()
		pt.UnGroupOp()
		batchId2 := pt.currentBatch

		if batchId2 != batchId1 {
			t.Fail()
		}
	}

	pt.UnGroupOp()

	batchId3 := pt.currentBatch
	if batchId3 == batchId1 {
		t.Fail()
	}
}

func TestReplaceIsOneUndoStep(t *testing.T) {
	pt := NewPieceTable([]byte("abc"))

	n := pt.Replace(0, 3, "(abc)")
	if n != 5 || readTableContent(pt) != "(abc)" {
		t.Fatalf("got %d runes, content %q", n, readTableContent(pt))
	}

	cursors, ok := pt.Undo()
	if !ok || readTableContent(pt) != "abc" {
		t.Fatalf("got content %q after undo", readTableContent(pt))
	}

	if len(cursors) != 2 {
		t.Errorf("want 2 cursors, got %d", len(cursors))
	}

	if last := cursors[len(cursors)-1]; last.Start != 0 || last.End != 3 {
		t.Errorf("want the selection before the replace, got %v", last)
	}

	if _, ok := pt.Undo(); ok {
		t.Error("replace should be a single undo step")
	}

	pt.Redo()
	if readTableContent(pt) != "(abc)" {
		t.Errorf("got content %q after redo", readTableContent(pt))
	}
}
