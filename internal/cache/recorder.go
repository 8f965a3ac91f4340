package cache

import "github.com/nanotts/nanotts/internal/sink"

// Recorder passes samples on to another sink and keeps a copy of them, up
// to a limit.
type Recorder struct {
	next     sink.Sink
	samples  []int16
	limit    int
	overflow bool
}

// NewRecorder records at most limit samples on their way to next.
func NewRecorder(next sink.Sink, limit int) *Recorder {
	return &Recorder{next: next, limit: limit}
}

// Submit records samples, then forwards them.
func (r *Recorder) Submit(samples []int16) error {
	if !r.overflow {
		if len(r.samples)+len(samples) > r.limit {
			r.overflow = true
			r.samples = nil
		} else {
			r.samples = append(r.samples, samples...)
		}
	}
	return r.next.Submit(samples)
}

// Close closes the wrapped sink.
func (r *Recorder) Close() error { return r.next.Close() }

// Samples returns everything recorded, or false when the limit was exceeded.
func (r *Recorder) Samples() ([]int16, bool) {
	return r.samples, !r.overflow
}

// Replay submits the cached samples to out in chunks of at most chunk
// samples, the way the pipeline would have flushed them.
func Replay(e Entry, out sink.Sink, chunk int) error {
	if chunk <= 0 {
		chunk = len(e.Samples)
	}
	for start := 0; start < len(e.Samples); start += chunk {
		end := min(start+chunk, len(e.Samples))
		if err := out.Submit(e.Samples[start:end]); err != nil {
			return err
		}
	}
	return nil
}
