package sink

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Naming describes auto-numbered output files: Prefix, a zero padded number,
// then Suffix.
type Naming struct {
	Dir     string
	Prefix  string
	Suffix  string
	ZeroPad int
}

// DefaultNaming produces nanotts-output-0001.wav style names.
func DefaultNaming() Naming {
	return Naming{
		Dir:     ".",
		Prefix:  "nanotts-output-",
		Suffix:  ".wav",
		ZeroPad: 4,
	}
}

// Next returns the path numbered one past the highest existing file that
// matches the naming scheme, starting at 1.
func (n Naming) Next() (string, error) {
	dir := n.Dir
	if dir == "" {
		dir = "."
	}

	entries, err := os.ReadDir(dir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("unable to scan %s: %w", dir, err)
	}

	highest := 0
	for _, e := range entries {
		if num, ok := n.parse(e.Name()); ok && num > highest {
			highest = num
		}
	}
	return filepath.Join(dir, n.format(highest+1)), nil
}

func (n Naming) format(num int) string {
	return fmt.Sprintf("%s%0*d%s", n.Prefix, n.ZeroPad, num, n.Suffix)
}

func (n Naming) parse(name string) (int, bool) {
	if len(name) <= len(n.Prefix)+len(n.Suffix) ||
		!strings.HasPrefix(name, n.Prefix) || !strings.HasSuffix(name, n.Suffix) {
		return 0, false
	}
	mid := name[len(n.Prefix) : len(name)-len(n.Suffix)]
	for _, r := range mid {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	num, err := strconv.Atoi(mid)
	if err != nil {
		return 0, false
	}
	return num, true
}
