// Package input collects the text to speak from the command line, a file,
// stdin or the clipboard, and prepares it for the engine.
package input

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/mitchellh/go-homedir"
	"golang.org/x/term"
	"golang.org/x/text/unicode/norm"
)

// Input errors.
var (
	ErrNoInput        = errors.New("no input given")
	ErrMultipleInputs = errors.New("multiple inputs given")
	ErrUnreadable     = errors.New("unable to read input")
)

// Terminator marks the end of the text for the engine, flushing any partial
// sentence it still holds.
const Terminator = 0

// Mode is where the text comes from.
type Mode int

const (
	ModeNone Mode = iota
	ModeStdin
	ModeText
	ModeWords
	ModeFile
	ModeClipboard
)

func (m Mode) String() string {
	switch m {
	case ModeStdin:
		return "stdin"
	case ModeText:
		return "argument"
	case ModeWords:
		return "words"
	case ModeFile:
		return "file"
	case ModeClipboard:
		return "clipboard"
	default:
		return "none"
	}
}

// Request is what the user asked for on the command line.
type Request struct {
	// Text is the -i argument; TextSet records that the flag was given.
	Text    string
	TextSet bool

	// File is the -f argument.
	File string

	// Words are trailing arguments, spoken joined by single spaces.
	Words []string

	// Stdin is the explicit "-" argument.
	Stdin bool

	// StdinPiped is true when stdin is not a terminal and carries data.
	// It selects stdin only when nothing else was requested.
	StdinPiped bool

	Clipboard bool

	// Markdown strips markdown syntax. Files with a markdown extension are
	// always stripped.
	Markdown bool
}

// Source is a resolved input.
type Source struct {
	Mode     Mode
	Text     string
	Path     string
	Markdown bool
}

// Resolve picks the single input source for req.
func Resolve(req Request) (Source, error) {
	var picked []Source
	if req.TextSet {
		picked = append(picked, Source{Mode: ModeText, Text: req.Text})
	}
	if req.File != "" {
		picked = append(picked, Source{Mode: ModeFile, Path: req.File})
	}
	if len(req.Words) > 0 {
		picked = append(picked, Source{Mode: ModeWords, Text: strings.Join(req.Words, " ")})
	}
	if req.Stdin {
		picked = append(picked, Source{Mode: ModeStdin})
	}
	if req.Clipboard {
		picked = append(picked, Source{Mode: ModeClipboard})
	}

	switch len(picked) {
	case 0:
		if req.StdinPiped {
			return Source{Mode: ModeStdin, Markdown: req.Markdown}, nil
		}
		return Source{}, ErrNoInput
	case 1:
		src := picked[0]
		src.Markdown = req.Markdown || (src.Mode == ModeFile && IsMarkdownFile(src.Path))
		return src, nil
	default:
		var modes []string
		for _, s := range picked {
			modes = append(modes, s.Mode.String())
		}
		return Source{}, fmt.Errorf("%w: %s", ErrMultipleInputs, strings.Join(modes, ", "))
	}
}

// readClipboard is swapped out in tests.
var readClipboard = clipboard.ReadAll

// Read returns the prepared text: markdown stripped when requested, invalid
// UTF-8 replaced, NFC normalized and, unless empty, terminated with a NUL.
func (s Source) Read(stdin io.Reader) ([]byte, error) {
	raw, err := s.raw(stdin)
	if err != nil {
		return nil, fmt.Errorf("%w from %s: %w", ErrUnreadable, s.Mode, err)
	}
	return Prepare(raw, s.Markdown), nil
}

func (s Source) raw(stdin io.Reader) ([]byte, error) {
	switch s.Mode {
	case ModeText, ModeWords:
		return []byte(s.Text), nil
	case ModeStdin:
		if stdin == nil {
			return nil, errors.New("stdin not available")
		}
		return io.ReadAll(stdin)
	case ModeFile:
		path, err := homedir.Expand(s.Path)
		if err != nil {
			return nil, err
		}
		return os.ReadFile(path)
	case ModeClipboard:
		text, err := readClipboard()
		if err != nil {
			return nil, err
		}
		return []byte(text), nil
	default:
		return nil, ErrNoInput
	}
}

// Prepare turns raw bytes into engine input.
func Prepare(raw []byte, markdown bool) []byte {
	if markdown {
		raw = MarkdownToText(raw)
	}
	text := norm.NFC.Bytes(bytes.ToValidUTF8(raw, []byte("�")))
	if len(text) == 0 {
		return text
	}
	return append(text, Terminator)
}

// StdinIsPiped reports whether f is a pipe or a regular file rather than a
// terminal or a character device such as /dev/null.
func StdinIsPiped(f *os.File) bool {
	if term.IsTerminal(int(f.Fd())) {
		return false
	}
	st, err := f.Stat()
	if err != nil {
		return false
	}
	return st.Mode()&os.ModeNamedPipe != 0 || st.Mode().IsRegular()
}
