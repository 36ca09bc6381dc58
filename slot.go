package memoslot

/*
slot is the single cached entry of a Cache.

STRUCTURE

input     -> the input last computed successfully
output    -> the (already copied) output for input
populated -> false until the first successful compute

The populated flag, not a zero input, marks the EMPTY state: the zero
value of I is a perfectly valid input and must be cacheable.

All access happens under Cache.mu. replace writes both fields in one step,
so a reader holding the lock never sees an input paired with another
input's output.
*/
type slot[I comparable, O any] struct {
	input     I
	output    O
	populated bool
}

func (s *slot[I, O]) matches(input I) bool {
	return s.populated && s.input == input
}

func (s *slot[I, O]) replace(input I, output O) {
	s.input = input
	s.output = output
	s.populated = true
}

func (s *slot[I, O]) state() State {
	if s.populated {
		return StatePopulated
	}
	return StateEmpty
}

// State is the lifecycle state of a Cache slot.
//
// EMPTY -> POPULATED on the first successful compute, POPULATED -> POPULATED
// on every later miss. There is no way back to EMPTY.
type State uint8

const (
	StateEmpty State = iota
	StatePopulated
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StatePopulated:
		return "populated"
	default:
		return "unknown"
	}
}
