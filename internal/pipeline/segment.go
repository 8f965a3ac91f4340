package pipeline

import "fmt"

// State is the pipeline's position in the text.
type State int

const (
	StatePrePad State = iota
	StateMainText
	StatePostPad
	StateDone
)

func (s State) String() string {
	switch s {
	case StatePrePad:
		return "pre-pad"
	case StateMainText:
		return "main-text"
	case StatePostPad:
		return "post-pad"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// segmenter walks opener, text and closer, exposing at most maxPush bytes
// of the current region at a time.
type segmenter struct {
	state   State
	padded  bool
	opener  []byte
	text    []byte
	closer  []byte
	maxPush int

	rest   []byte // unconsumed bytes of the current region
	window int    // bytes of rest inside the current push window
}

func newSegmenter(opener, text, closer []byte, padded bool, maxPush int) *segmenter {
	s := &segmenter{
		padded:  padded,
		opener:  opener,
		text:    text,
		closer:  closer,
		maxPush: maxPush,
	}
	if padded {
		s.enter(StatePrePad)
	} else {
		s.enter(StateMainText)
	}
	return s
}

func (s *segmenter) enter(state State) {
	s.state = state
	switch state {
	case StatePrePad:
		s.rest = s.opener
	case StateMainText:
		s.rest = s.text
	case StatePostPad:
		s.rest = s.closer
	default:
		s.rest = nil
	}
	s.refill()
}

func (s *segmenter) refill() {
	s.window = len(s.rest)
	if s.window > s.maxPush {
		s.window = s.maxPush
	}
}

// State returns the current state.
func (s *segmenter) State() State { return s.state }

// Pending returns the unconsumed part of the current push window, advancing
// past exhausted regions. It returns nil once the state is StateDone.
func (s *segmenter) Pending() []byte {
	for s.state != StateDone && s.window == 0 {
		if len(s.rest) > 0 {
			s.refill()
			continue
		}
		s.enter(s.next())
	}
	if s.state == StateDone {
		return nil
	}
	return s.rest[:s.window]
}

// Consume advances past n bytes of the window returned by Pending.
func (s *segmenter) Consume(n int) {
	s.rest = s.rest[n:]
	s.window -= n
}

func (s *segmenter) next() State {
	switch s.state {
	case StatePrePad:
		return StateMainText
	case StateMainText:
		if s.padded {
			return StatePostPad
		}
		return StateDone
	default:
		return StateDone
	}
}
