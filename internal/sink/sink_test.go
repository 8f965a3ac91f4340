package sink

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/go-audio/wav"
)

// recorder is a Sink that keeps everything it receives.
type recorder struct {
	name    string
	order   *[]string
	samples []int16
	err     error
	closed  bool
}

func (r *recorder) Submit(s []int16) error {
	if r.order != nil {
		*r.order = append(*r.order, r.name)
	}
	if r.err != nil {
		return r.err
	}
	r.samples = append(r.samples, s...)
	return nil
}

func (r *recorder) Close() error {
	r.closed = true
	return nil
}

func TestCompositeOrderAndIsolation(t *testing.T) {
	var order []string
	a := &recorder{name: "file", order: &order}
	b := &recorder{name: "stdout", order: &order, err: errors.New("broken pipe")}
	c := &recorder{name: "playback", order: &order}

	comp := NewComposite(nil,
		&Member{Name: "file", Sink: a, Required: true},
		&Member{Name: "stdout", Sink: b},
		&Member{Name: "playback", Sink: c},
	)

	for i := 0; i < 3; i++ {
		if err := comp.Submit([]int16{int16(i), int16(i)}); err != nil {
			t.Fatalf("Submit %d returned error from optional sink: %v", i, err)
		}
	}

	want := []string{"file", "stdout", "playback", "file", "stdout", "playback", "file", "stdout", "playback"}
	if len(order) != len(want) {
		t.Fatalf("Expected %d calls, got %d", len(want), len(order))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("Call %d went to %s, want %s", i, order[i], want[i])
		}
	}

	if len(a.samples) != 6 || len(c.samples) != 6 {
		t.Errorf("Healthy sinks should get every sample, got %d and %d", len(a.samples), len(c.samples))
	}
	if comp.Failures()["stdout"] != 3 {
		t.Errorf("Expected 3 stdout failures, got %d", comp.Failures()["stdout"])
	}

	if err := comp.Close(); err != nil {
		t.Fatal(err)
	}
	if !a.closed || !b.closed || !c.closed {
		t.Error("Close must reach every member")
	}
	if err := comp.Submit([]int16{1}); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed after Close, got %v", err)
	}
}

func TestCompositeLateFileFailure(t *testing.T) {
	diskFull := errors.New("no space left on device")
	f := &recorder{name: "file", err: diskFull}
	out := &recorder{name: "stdout"}
	p := &recorder{name: "playback"}

	comp := NewComposite(nil,
		&Member{Name: "file", Sink: f, Required: true},
		&Member{Name: "stdout", Sink: out},
		&Member{Name: "playback", Sink: p},
	)

	for i := 0; i < 5; i++ {
		if err := comp.Submit([]int16{int16(i), 2}); err != nil {
			t.Fatalf("Submit %d returned %v, a failing file must not stop the run", i, err)
		}
	}
	if len(out.samples) != 10 || len(p.samples) != 10 {
		t.Errorf("Other outputs should get every sample, got %d and %d", len(out.samples), len(p.samples))
	}
	if comp.Failures()["file"] != 5 {
		t.Errorf("Expected 5 file failures, got %d", comp.Failures()["file"])
	}

	err := comp.Close()
	if !errors.Is(err, diskFull) {
		t.Errorf("Close should report the file failure, got %v", err)
	}
	if !out.closed || !p.closed || !f.closed {
		t.Error("Close must reach every member")
	}
}

func TestCompositeOptionalFailureIsQuietOnClose(t *testing.T) {
	comp := NewComposite(nil,
		&Member{Name: "stdout", Sink: &recorder{err: errors.New("broken pipe")}},
	)
	_ = comp.Submit([]int16{1})
	if err := comp.Close(); err != nil {
		t.Errorf("Optional member failures are only logged, got %v", err)
	}
}

func TestStdoutSink(t *testing.T) {
	var buf bytes.Buffer
	s := NewStdoutSink(&buf)

	if err := s.Submit([]int16{1, -1, 0x1234}); err != nil {
		t.Fatal(err)
	}
	want := []byte{0x01, 0x00, 0xff, 0xff, 0x34, 0x12}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("Got % x, want % x", buf.Bytes(), want)
	}
	if s.Written() != 6 {
		t.Errorf("Written() = %d, want 6", s.Written())
	}
}

func TestFileSinkWritesValidWave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	s, err := NewFileSink(path, 16000)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 4; i++ {
		chunk := make([]int16, 64)
		for j := range chunk {
			chunk[j] = int16(i*64 + j)
		}
		if err := s.Submit(chunk); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(raw[0:4]) != "RIFF" || string(raw[8:12]) != "WAVE" {
		t.Fatalf("Missing RIFF/WAVE header: % x", raw[:12])
	}
	i := bytes.Index(raw, []byte("data"))
	if i < 0 {
		t.Fatal("No data chunk")
	}
	if got := binary.LittleEndian.Uint32(raw[i+4:]); got != 4*64*2 {
		t.Errorf("data size = %d, want %d", got, 4*64*2)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close() //nolint:errcheck

	d := wav.NewDecoder(f)
	buf, err := d.FullPCMBuffer()
	if err != nil {
		t.Fatal(err)
	}
	if d.SampleRate != 16000 || d.BitDepth != 16 || d.NumChans != 1 {
		t.Errorf("Unexpected format %d Hz, %d bit, %d ch", d.SampleRate, d.BitDepth, d.NumChans)
	}
	if len(buf.Data) != 256 {
		t.Fatalf("Decoded %d samples, want 256", len(buf.Data))
	}
	for j, v := range buf.Data {
		if v != j {
			t.Fatalf("Sample %d = %d", j, v)
		}
	}
}

func TestFileSinkEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.wav")
	s, err := NewFileSink(path, 16000)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	i := bytes.Index(raw, []byte("data"))
	if i < 0 {
		t.Fatal("Empty file must still carry a data chunk")
	}
	if got := binary.LittleEndian.Uint32(raw[i+4:]); got != 0 {
		t.Errorf("data size = %d, want 0", got)
	}
}

func TestFileSinkBadPath(t *testing.T) {
	_, err := NewFileSink(filepath.Join(t.TempDir(), "missing", "out.wav"), 16000)
	if err == nil {
		t.Error("Expected error for missing directory")
	}
}

// fakeDevice plays by copying everything it reads into a buffer.
type fakeDevice struct {
	player *fakePlayer
}

func (d *fakeDevice) NewPlayer(r io.Reader) Player {
	d.player = &fakePlayer{r: r, done: make(chan struct{})}
	return d.player
}

type fakePlayer struct {
	r      io.Reader
	mu     sync.Mutex
	got    bytes.Buffer
	done   chan struct{}
	once   sync.Once
	closed bool
}

func (p *fakePlayer) Play() {
	p.once.Do(func() {
		go func() {
			defer close(p.done)
			buf := make([]byte, 37)
			for {
				n, err := p.r.Read(buf)
				p.mu.Lock()
				p.got.Write(buf[:n])
				p.mu.Unlock()
				if err != nil {
					return
				}
			}
		}()
	})
}

func (p *fakePlayer) IsPlaying() bool {
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

func (p *fakePlayer) Err() error { return nil }

func (p *fakePlayer) Close() error {
	p.closed = true
	return nil
}

func TestPlaybackSinkDeliversEverything(t *testing.T) {
	dev := &fakeDevice{}
	s := NewPlaybackSink(dev)

	var want []byte
	for i := 0; i < 10; i++ {
		chunk := []int16{int16(i), int16(-i), 300}
		want = encodePCM(want, chunk)
		if err := s.Submit(chunk); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	p := dev.player
	p.mu.Lock()
	defer p.mu.Unlock()
	if !bytes.Equal(p.got.Bytes(), want) {
		t.Errorf("Player got %d bytes, want %d", p.got.Len(), len(want))
	}
	if !p.closed {
		t.Error("Player was not closed")
	}
}

// deadPlayer never reads and reports a device error.
type deadPlayer struct{ closed bool }

func (*deadPlayer) Play()           {}
func (*deadPlayer) IsPlaying() bool { return false }
func (*deadPlayer) Err() error      { return errors.New("device unplugged") }
func (p *deadPlayer) Close() error  { p.closed = true; return nil }

type deadDevice struct{ player *deadPlayer }

func (d *deadDevice) NewPlayer(io.Reader) Player { return d.player }

func TestPlaybackSinkDeviceFailure(t *testing.T) {
	dev := &deadDevice{player: &deadPlayer{}}
	s := NewPlaybackSink(dev)
	s.DrainPoll = time.Millisecond

	done := make(chan error, 1)
	go func() { done <- s.Submit([]int16{1, 2, 3}) }()

	select {
	case err := <-done:
		if !errors.Is(err, ErrPlaybackFailed) {
			t.Errorf("Expected ErrPlaybackFailed, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Submit hung on a player that stopped reading")
	}

	if err := s.Submit([]int16{4}); !errors.Is(err, ErrPlaybackFailed) {
		t.Errorf("Later submits should fail fast, got %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if !dev.player.closed {
		t.Error("Player was not closed")
	}
}

func TestPlaybackSinkCloseWithoutAudio(t *testing.T) {
	dev := &fakeDevice{}
	s := NewPlaybackSink(dev)
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if !dev.player.closed {
		t.Error("Player was not closed")
	}
}

func TestStdoutAndPlaybackMatch(t *testing.T) {
	dev := &fakeDevice{}
	var stdout bytes.Buffer
	comp, err := Open(Options{
		Modes:      ModeStdout | ModePlayback,
		SampleRate: 16000,
		Stdout:     &stdout,
		OpenDevice: func(int) (Device, error) { return dev, nil },
	})
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 50; i++ {
		if err := comp.Submit([]int16{int16(i), int16(i * 7), int16(-i)}); err != nil {
			t.Fatal(err)
		}
	}
	if err := comp.Close(); err != nil {
		t.Fatal(err)
	}

	p := dev.player
	p.mu.Lock()
	defer p.mu.Unlock()
	if stdout.Len() == 0 || !bytes.Equal(stdout.Bytes(), p.got.Bytes()) {
		t.Errorf("Stdout got %d bytes, playback %d, and they differ", stdout.Len(), p.got.Len())
	}
}

func TestOpen(t *testing.T) {
	var stdout bytes.Buffer
	dev := &fakeDevice{}
	path := filepath.Join(t.TempDir(), "o.wav")

	comp, err := Open(Options{
		Modes:      ModeFile | ModeStdout | ModePlayback,
		SampleRate: 16000,
		FilePath:   path,
		Stdout:     &stdout,
		OpenDevice: func(int) (Device, error) { return dev, nil },
	})
	if err != nil {
		t.Fatal(err)
	}
	if comp.Len() != 3 {
		t.Fatalf("Expected 3 sinks, got %d", comp.Len())
	}
	if err := comp.Submit([]int16{7, 8}); err != nil {
		t.Fatal(err)
	}
	if err := comp.Close(); err != nil {
		t.Fatal(err)
	}
	if stdout.Len() != 4 {
		t.Errorf("Expected 4 bytes on stdout, got %d", stdout.Len())
	}
}

func TestOpenFailures(t *testing.T) {
	if _, err := Open(Options{}); !errors.Is(err, ErrNoOutput) {
		t.Errorf("Expected ErrNoOutput, got %v", err)
	}

	path := filepath.Join(t.TempDir(), "o.wav")
	noDevice := errors.New("no device")
	_, err := Open(Options{
		Modes:      ModeFile | ModePlayback,
		SampleRate: 16000,
		FilePath:   path,
		OpenDevice: func(int) (Device, error) { return nil, noDevice },
	})
	if !errors.Is(err, noDevice) {
		t.Fatalf("Expected device error, got %v", err)
	}
	// the file sink opened first must have been finalized
	if raw, err := os.ReadFile(path); err != nil || !bytes.HasPrefix(raw, []byte("RIFF")) {
		t.Errorf("Expected finalized file after aborted open, err %v", err)
	}
}

func TestModeString(t *testing.T) {
	tests := map[Mode]string{
		0:                     "none",
		ModeFile:              "file",
		ModeStdout | ModeFile: "file+stdout",
		ModePlayback:          "playback",
	}
	for m, want := range tests {
		if got := m.String(); got != want {
			t.Errorf("Mode(%d).String() = %q, want %q", m, got, want)
		}
	}
}

func TestNamingNext(t *testing.T) {
	dir := t.TempDir()
	n := DefaultNaming()
	n.Dir = dir

	first, err := n.Next()
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(first) != "nanotts-output-0001.wav" {
		t.Errorf("First name = %s", filepath.Base(first))
	}

	for _, name := range []string{"nanotts-output-0003.wav", "nanotts-output-0012.wav", "nanotts-output-abcd.wav", "other-0099.wav", "nanotts-output-.wav"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	next, err := n.Next()
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(next) != "nanotts-output-0013.wav" {
		t.Errorf("Next name = %s, want nanotts-output-0013.wav", filepath.Base(next))
	}

	n.Prefix = "MyRecording-"
	custom, _ := n.Next()
	if filepath.Base(custom) != "MyRecording-0001.wav" {
		t.Errorf("Custom prefix name = %s", filepath.Base(custom))
	}
}
