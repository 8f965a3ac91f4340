package pipeline

import (
	"errors"
	"testing"
)

func TestTransferBuffer(t *testing.T) {
	b := NewTransferBuffer(8)

	if b.Cap() != 8 || b.Len() != 0 {
		t.Fatalf("Unexpected initial cap/len %d/%d", b.Cap(), b.Len())
	}
	if err := b.Append([]byte{1, 0, 2, 0, 3, 0}); err != nil {
		t.Fatal(err)
	}
	if b.Fits(4) {
		t.Error("4 more bytes must not fit into 2 free bytes")
	}
	if err := b.Append([]byte{4, 0, 5, 0}); !errors.Is(err, ErrBufferOverflow) {
		t.Errorf("Expected ErrBufferOverflow, got %v", err)
	}
	if b.Len() != 6 {
		t.Errorf("Failed append must not change the buffer, len %d", b.Len())
	}

	samples := b.Samples()
	if len(samples) != 3 || samples[0] != 1 || samples[2] != 3 {
		t.Errorf("Samples() = %v", samples)
	}

	b.Reset()
	if b.Len() != 0 || b.Peak() != 6 {
		t.Errorf("After Reset: len %d peak %d", b.Len(), b.Peak())
	}
	if err := b.Append([]byte{0xff, 0xff, 0x00, 0x80}); err != nil {
		t.Fatal(err)
	}
	if s := b.Samples(); s[0] != -1 || s[1] != -32768 {
		t.Errorf("Signed decoding wrong: %v", s)
	}
}

func TestSegmenter(t *testing.T) {
	tests := []struct {
		name    string
		opener  string
		text    string
		closer  string
		padded  bool
		maxPush int
		want    []string
		states  []State
	}{
		{
			name:    "plain",
			text:    "hello",
			maxPush: 100,
			want:    []string{"hello"},
			states:  []State{StateMainText},
		},
		{
			name:    "padded",
			opener:  "<a>",
			text:    "hi",
			closer:  "</a>",
			padded:  true,
			maxPush: 100,
			want:    []string{"<a>", "hi", "</a>"},
			states:  []State{StatePrePad, StateMainText, StatePostPad},
		},
		{
			name:    "windowed",
			text:    "abcdefg",
			maxPush: 3,
			want:    []string{"abc", "def", "g"},
			states:  []State{StateMainText, StateMainText, StateMainText},
		},
		{
			name:    "padded empty text",
			opener:  "<a>",
			closer:  "</a>",
			padded:  true,
			maxPush: 100,
			want:    []string{"<a>", "</a>"},
			states:  []State{StatePrePad, StatePostPad},
		},
		{
			name:    "nothing",
			maxPush: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSegmenter([]byte(tt.opener), []byte(tt.text), []byte(tt.closer), tt.padded, tt.maxPush)
			var got []string
			var states []State
			for {
				chunk := s.Pending()
				if chunk == nil {
					break
				}
				got = append(got, string(chunk))
				states = append(states, s.State())
				s.Consume(len(chunk))
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Chunks = %q, want %q", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] || states[i] != tt.states[i] {
					t.Errorf("Chunk %d = %q in %s, want %q in %s", i, got[i], states[i], tt.want[i], tt.states[i])
				}
			}
			if s.State() != StateDone {
				t.Errorf("Final state %s, want done", s.State())
			}
		})
	}
}

func TestStateString(t *testing.T) {
	if StatePrePad.String() != "pre-pad" || StateDone.String() != "done" {
		t.Error("Unexpected state names")
	}
}
