package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
)

// Key identifies a synthesis: everything that changes the audio.
type Key struct {
	// Engine is the backend name; Variant distinguishes configurations
	// of the same backend, such as the exec command line.
	Engine  string
	Variant string
	Voice   string
	Opener  string
	Closer  string
	Text    []byte
}

// String returns the hex digest used as the file name.
func (k Key) String() string {
	h := sha256.New()
	for _, field := range []string{k.Engine, k.Variant, k.Voice, k.Opener, k.Closer} {
		_, _ = io.WriteString(h, field)
		_, _ = h.Write([]byte{0})
	}
	_, _ = h.Write(k.Text)
	return hex.EncodeToString(h.Sum(nil))
}
