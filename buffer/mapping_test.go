package buffer

import (
	"fmt"
	"testing"
)

func TestStepMap(t *testing.T) {
	cases := []struct {
		step  StepMap
		input int
		want  int
	}{
		// insertion of 2 runes at 3.
		{StepMap{Start: 3, OldSize: 0, NewSize: 2}, 1, 1},
		{StepMap{Start: 3, OldSize: 0, NewSize: 2}, 3, 5},
		{StepMap{Start: 3, OldSize: 0, NewSize: 2}, 4, 6},
		// deletion of [2, 5).
		{StepMap{Start: 2, OldSize: 3, NewSize: 0}, 2, 2},
		{StepMap{Start: 2, OldSize: 3, NewSize: 0}, 4, 2},
		{StepMap{Start: 2, OldSize: 3, NewSize: 0}, 5, 2},
		{StepMap{Start: 2, OldSize: 3, NewSize: 0}, 7, 4},
		// replacement of [2, 5) by 1 rune.
		{StepMap{Start: 2, OldSize: 3, NewSize: 1}, 2, 2},
		{StepMap{Start: 2, OldSize: 3, NewSize: 1}, 3, 3},
		{StepMap{Start: 2, OldSize: 3, NewSize: 1}, 5, 3},
		{StepMap{Start: 2, OldSize: 3, NewSize: 1}, 6, 4},
	}

	for i, tc := range cases {
		t.Run(fmt.Sprintf("case %d", i), func(t *testing.T) {
			if got := tc.step.Map(tc.input); got != tc.want {
				t.Errorf("map %d through %+v: got %d, want %d", tc.input, tc.step, got, tc.want)
			}
		})
	}
}

func TestMappingFromEdits(t *testing.T) {
	src := NewTextSourceFrom("(x)")
	src.TakeMapping()

	// type before the closing delimiter.
	src.Insert(2, "y")
	m := src.TakeMapping()
	if len(m) != 1 || m.Map(2) != 3 || m.Map(0) != 0 {
		t.Errorf("unexpected mapping %+v", m)
	}

	if len(src.TakeMapping()) != 0 {
		t.Error("mapping should be reset once taken")
	}

	src.Replace(0, 4, "")
	m = src.TakeMapping()
	if m.Map(0) != 0 || m.Map(3) != 0 {
		t.Errorf("unexpected mapping %+v", m)
	}

	src.Undo()
	m = src.TakeMapping()
	if src.TextBetween(0, src.Len()) != "(xy)" {
		t.Fatalf("got %q after undo", src.TextBetween(0, src.Len()))
	}
	if m.Map(0) != 4 {
		t.Errorf("insertion on undo should push offsets forward, got %d", m.Map(0))
	}
}

func TestMappingEmpty(t *testing.T) {
	if !(Mapping{}).Empty() || !(Mapping{{Start: 3}}).Empty() {
		t.Fail()
	}

	if (Mapping{{Start: 1, NewSize: 1}}).Empty() {
		t.Fail()
	}
}
