package mock

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/nanotts/nanotts/internal/engine"
)

var _ engine.Engine = (*Engine)(nil)

func TestPushAndDrain(t *testing.T) {
	e := New(WithSamplesPerByte(4))

	n, err := e.PushText([]byte("hello"))
	if err != nil {
		t.Fatalf("PushText returned error: %v", err)
	}
	if n != 5 {
		t.Errorf("Expected 5 bytes consumed, got %d", n)
	}

	buf := make([]byte, engine.BurstBytes)
	var got []byte
	for {
		n, status, err := e.PullAudio(buf)
		if err != nil {
			t.Fatalf("PullAudio returned error: %v", err)
		}
		got = append(got, buf[:n]...)
		if status != engine.StatusBusy {
			break
		}
	}

	if len(got) != 5*4*2 {
		t.Fatalf("Expected %d bytes of audio, got %d", 5*4*2, len(got))
	}
	for i := 0; i < len(got)/2; i++ {
		if v := binary.LittleEndian.Uint16(got[2*i:]); int(v) != i {
			t.Fatalf("Sample %d = %d, want %d", i, v, i)
		}
	}
	if e.Produced() != 20 {
		t.Errorf("Produced() = %d, want 20", e.Produced())
	}
}

func TestConsumeLimit(t *testing.T) {
	e := New(WithConsumeLimit(3))

	n, err := e.PushText([]byte("abcdef"))
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("Expected 3 bytes consumed, got %d", n)
	}
	if len(e.Pushes()) != 1 || string(e.Pushes()[0]) != "abcdef" {
		t.Errorf("Unexpected recorded pushes %q", e.Pushes())
	}
}

func TestBurstLimit(t *testing.T) {
	e := New(WithBurstLimit(3))
	if _, err := e.PushText([]byte("a")); err != nil {
		t.Fatal(err)
	}

	n, status, err := e.PullAudio(make([]byte, 128))
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 || status != engine.StatusBusy {
		t.Errorf("Expected 3 bytes and busy, got %d and %s", n, status)
	}
}

func TestRejectsOversizedPush(t *testing.T) {
	e := New()
	_, err := e.PushText(make([]byte, engine.MaxPushBytes+1))
	if !errors.Is(err, engine.ErrPushTooLarge) {
		t.Errorf("Expected ErrPushTooLarge, got %v", err)
	}
}

func TestFailureInjection(t *testing.T) {
	boom := errors.New("boom")

	t.Run("push", func(t *testing.T) {
		e := New(FailPushAfter(1, boom))
		if _, err := e.PushText([]byte("a")); err != nil {
			t.Fatalf("First push should succeed: %v", err)
		}
		if _, err := e.PushText([]byte("b")); !errors.Is(err, boom) {
			t.Errorf("Second push error = %v, want boom", err)
		}
	})

	t.Run("pull", func(t *testing.T) {
		e := New(FailPullAfter(0, boom))
		if _, _, err := e.PullAudio(make([]byte, 8)); !errors.Is(err, boom) {
			t.Errorf("First pull error = %v, want boom", err)
		}
	})

	t.Run("set and clear", func(t *testing.T) {
		e := New()
		e.SetFailure(boom)
		if _, err := e.PushText([]byte("a")); !errors.Is(err, boom) {
			t.Errorf("Expected boom, got %v", err)
		}
		e.ClearFailure()
		if _, err := e.PushText([]byte("a")); err != nil {
			t.Errorf("Expected success after ClearFailure, got %v", err)
		}
	})
}

func TestClose(t *testing.T) {
	e := New()
	_ = e.Close()

	if _, err := e.PushText([]byte("a")); !errors.Is(err, engine.ErrClosed) {
		t.Errorf("Expected ErrClosed, got %v", err)
	}
	if closed, count := e.Closed(); !closed || count != 1 {
		t.Errorf("Closed() = %v, %d", closed, count)
	}
}
