package voice

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
)

// ErrLingwareNotFound is returned when no candidate directory holds lingware.
var ErrLingwareNotFound = errors.New("lingware directory not found")

// ProbeFile is the resource whose presence marks a lingware directory.
const ProbeFile = "en-GB_ta.bin"

// DefaultLingwarePaths are searched when no directory is configured.
var DefaultLingwarePaths = []string{"./lang", "/usr/share/pico/lang"}

// LocateLingware returns the first candidate directory containing ProbeFile.
// Candidates may start with "~".
func LocateLingware(candidates []string) (string, error) {
	for _, c := range candidates {
		dir, err := homedir.Expand(c)
		if err != nil {
			continue
		}
		st, err := os.Stat(dir)
		if err != nil || !st.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(dir, ProbeFile)); err == nil {
			return dir, nil
		}
	}
	return "", fmt.Errorf("%w, looked in: %s", ErrLingwareNotFound, strings.Join(candidates, ", "))
}

// ResourcePaths joins the entry's resource file names onto dir.
func ResourcePaths(dir string, e Entry) (ta, sg string) {
	taFile, sgFile := e.ResourceNames()
	return filepath.Join(dir, taFile), filepath.Join(dir, sgFile)
}

// Available reports whether both resource files for e exist in dir.
func Available(dir string, e Entry) bool {
	ta, sg := ResourcePaths(dir, e)
	for _, p := range []string{ta, sg} {
		if _, err := os.Stat(p); err != nil {
			return false
		}
	}
	return true
}
