// Package prosody builds the synthesizer markup that wraps input text with
// speed, pitch and volume modifiers.
package prosody

import (
	"fmt"
	"math"
	"strings"
)

// Param identifies one prosody parameter.
type Param int

// Parameters in markup order. The opener lists set parameters in this order,
// the closer in reverse.
const (
	Speed Param = iota
	Pitch
	Volume
)

var params = [...]Param{Speed, Pitch, Volume}

// String returns the parameter name as used in status output and markup.
func (p Param) String() string {
	switch p {
	case Speed:
		return "speed"
	case Pitch:
		return "pitch"
	case Volume:
		return "volume"
	default:
		return fmt.Sprintf("param(%d)", int(p))
	}
}

// Range is the documented range for a parameter. Values outside it are still
// forwarded to the engine.
type Range struct {
	Min, Max float64
}

// Contains reports whether v lies within r.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Ranges holds the documented range for every parameter.
var Ranges = map[Param]Range{
	Speed:  {Min: 0.2, Max: 5.0},
	Pitch:  {Min: 0.5, Max: 2.0},
	Volume: {Min: 0.0, Max: 5.0},
}

// Settings is an immutable snapshot of the prosody parameters. A nil field is
// unset.
type Settings struct {
	Speed  *float64
	Pitch  *float64
	Volume *float64
}

// Get returns the value of p and whether it is set.
func (s Settings) Get(p Param) (float64, bool) {
	var v *float64
	switch p {
	case Speed:
		v = s.Speed
	case Pitch:
		v = s.Pitch
	case Volume:
		v = s.Volume
	}
	if v == nil {
		return 0, false
	}
	return *v, true
}

// Value returns a pointer to a copy of v, for building Settings literals.
func Value(v float64) *float64 {
	return &v
}

// Modifier holds the current prosody parameters together with the opener
// and closer markup derived from them. Both pads are rebuilt on every
// mutation so they always agree with the parameters.
type Modifier struct {
	values [len(params)]*float64
	opener string
	closer string
}

// New returns a Modifier with no parameters set.
func New() *Modifier {
	return &Modifier{}
}

// FromSettings returns a Modifier initialised from s.
func FromSettings(s Settings) *Modifier {
	m := New()
	for _, p := range params {
		if v, ok := s.Get(p); ok {
			m.values[p] = Value(v)
		}
	}
	m.rebuild()
	return m
}

// SetSpeed sets the speaking rate.
func (m *Modifier) SetSpeed(v float64) { m.Set(Speed, v) }

// SetPitch sets the pitch factor.
func (m *Modifier) SetPitch(v float64) { m.Set(Pitch, v) }

// SetVolume sets the volume factor.
func (m *Modifier) SetVolume(v float64) { m.Set(Volume, v) }

// Set records v for p and rebuilds the markup.
func (m *Modifier) Set(p Param, v float64) {
	m.values[p] = Value(v)
	m.rebuild()
}

// Unset clears p and rebuilds the markup.
func (m *Modifier) Unset(p Param) {
	m.values[p] = nil
	m.rebuild()
}

// IsChanged reports whether any parameter is set.
func (m *Modifier) IsChanged() bool {
	for _, v := range m.values {
		if v != nil {
			return true
		}
	}
	return false
}

// Opener returns the markup that precedes the text.
func (m *Modifier) Opener() string { return m.opener }

// Closer returns the markup that follows the text.
func (m *Modifier) Closer() string { return m.closer }

// Settings returns a snapshot of the current parameters.
func (m *Modifier) Settings() Settings {
	var s Settings
	for _, p := range params {
		v := m.values[p]
		if v == nil {
			continue
		}
		switch p {
		case Speed:
			s.Speed = Value(*v)
		case Pitch:
			s.Pitch = Value(*v)
		case Volume:
			s.Volume = Value(*v)
		}
	}
	return s
}

// StatusMessage returns one "name: value" line per set parameter.
func (m *Modifier) StatusMessage() string {
	var b strings.Builder
	for _, p := range params {
		if v := m.values[p]; v != nil {
			fmt.Fprintf(&b, "%s: %.2f\n", p, *v)
		}
	}
	return b.String()
}

func (m *Modifier) rebuild() {
	var opener, closer strings.Builder
	for _, p := range params {
		if v := m.values[p]; v != nil {
			fmt.Fprintf(&opener, "<%s level=\"%d\">", p, Level(*v))
		}
	}
	for i := len(params) - 1; i >= 0; i-- {
		if m.values[params[i]] != nil {
			fmt.Fprintf(&closer, "</%s>", params[i])
		}
	}
	m.opener = opener.String()
	m.closer = closer.String()
}

// Level converts a factor into the integer percentage used in markup. The
// product is rounded to single precision before the ceiling so that values
// like 0.88 map to 88 rather than 89.
func Level(v float64) int {
	return int(math.Ceil(float64(float32(float32(v) * 100))))
}
