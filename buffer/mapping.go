package buffer

// StepMap describes one modification of the text sequence: OldSize runes at
// Start were replaced by NewSize runes.
type StepMap struct {
	Start   int
	OldSize int
	NewSize int
}

// Map translates a rune offset from before the modification to after it.
//
// Offsets before the modified range are kept and offsets after it are
// shifted. An offset at an insertion point moves to the end of the inserted
// text. Inside a replaced range, the offset at its start stays at the start
// and any other offset is pushed to the end of the replacement.
func (s StepMap) Map(offset int) int {
	end := s.Start + s.OldSize

	switch {
	case offset < s.Start:
		return offset
	case offset > end:
		return offset - s.OldSize + s.NewSize
	case s.OldSize == 0:
		return s.Start + s.NewSize
	case offset == s.Start:
		return s.Start
	default:
		return s.Start + s.NewSize
	}
}

// Invert returns the step that reverts s.
func (s StepMap) Invert() StepMap {
	return StepMap{Start: s.Start, OldSize: s.NewSize, NewSize: s.OldSize}
}

// Mapping is a sequence of modifications in the order they were applied.
type Mapping []StepMap

// Map translates offset through every step in order.
func (m Mapping) Map(offset int) int {
	for _, s := range m {
		offset = s.Map(offset)
	}

	return offset
}

// Empty reports whether the mapping changes nothing.
func (m Mapping) Empty() bool {
	for _, s := range m {
		if s.OldSize != 0 || s.NewSize != 0 {
			return false
		}
	}

	return true
}
