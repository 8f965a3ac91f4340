package input

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		want    Mode
		wantErr error
	}{
		{"nothing", Request{}, ModeNone, ErrNoInput},
		{"implicit stdin", Request{StdinPiped: true}, ModeStdin, nil},
		{"explicit stdin", Request{Stdin: true}, ModeStdin, nil},
		{"text flag", Request{Text: "hi", TextSet: true}, ModeText, nil},
		{"text flag wins over piped stdin", Request{Text: "hi", TextSet: true, StdinPiped: true}, ModeText, nil},
		{"file", Request{File: "a.txt"}, ModeFile, nil},
		{"words", Request{Words: []string{"a", "b"}}, ModeWords, nil},
		{"clipboard", Request{Clipboard: true}, ModeClipboard, nil},
		{"text and file", Request{Text: "hi", TextSet: true, File: "a.txt"}, ModeNone, ErrMultipleInputs},
		{"dash and words", Request{Stdin: true, Words: []string{"a"}}, ModeNone, ErrMultipleInputs},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := Resolve(tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Resolve() error = %v, want %v", err, tt.wantErr)
			}
			if src.Mode != tt.want {
				t.Errorf("Resolve() mode = %s, want %s", src.Mode, tt.want)
			}
		})
	}
}

func TestResolveMarkdownDetection(t *testing.T) {
	src, err := Resolve(Request{File: "notes.md"})
	if err != nil {
		t.Fatal(err)
	}
	if !src.Markdown {
		t.Error("Expected .md files to be read as markdown")
	}

	src, _ = Resolve(Request{File: "notes.txt"})
	if src.Markdown {
		t.Error("Plain text files must not be stripped")
	}

	src, _ = Resolve(Request{Text: "# hi", TextSet: true, Markdown: true})
	if !src.Markdown {
		t.Error("Explicit markdown flag must be kept")
	}
}

func TestReadTerminates(t *testing.T) {
	tests := []struct {
		name string
		src  Source
		want string
	}{
		{"text", Source{Mode: ModeText, Text: "Hello."}, "Hello.\x00"},
		{"words joined", Source{Mode: ModeWords, Text: strings.Join([]string{"Hello", "there"}, " ")}, "Hello there\x00"},
		{"empty stays empty", Source{Mode: ModeText, Text: ""}, ""},
		{"invalid utf8 replaced", Source{Mode: ModeText, Text: "a\xffb"}, "a�b\x00"},
		{"nfc", Source{Mode: ModeText, Text: "e\u0301"}, "\u00e9\x00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.src.Read(nil)
			if err != nil {
				t.Fatal(err)
			}
			if string(got) != tt.want {
				t.Errorf("Read() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReadStdin(t *testing.T) {
	src := Source{Mode: ModeStdin}
	got, err := src.Read(strings.NewReader("from a pipe"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "from a pipe\x00" {
		t.Errorf("Read() = %q", got)
	}
	if len(got) != len("from a pipe")+1 {
		t.Errorf("Expected one terminator byte, got length %d", len(got))
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.txt")
	if err := os.WriteFile(path, []byte("file text"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := Source{Mode: ModeFile, Path: path}.Read(nil)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "file text\x00" {
		t.Errorf("Read() = %q", got)
	}

	_, err = Source{Mode: ModeFile, Path: filepath.Join(dir, "missing.txt")}.Read(nil)
	if !errors.Is(err, ErrUnreadable) || !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected unreadable not-exist error, got %v", err)
	}
}

func TestReadClipboard(t *testing.T) {
	orig := readClipboard
	defer func() { readClipboard = orig }()

	readClipboard = func() (string, error) { return "copied", nil }
	got, err := Source{Mode: ModeClipboard}.Read(nil)
	if err != nil || string(got) != "copied\x00" {
		t.Errorf("Read() = %q, %v", got, err)
	}

	readClipboard = func() (string, error) { return "", errors.New("no clipboard utility") }
	if _, err := (Source{Mode: ModeClipboard}).Read(nil); !errors.Is(err, ErrUnreadable) {
		t.Errorf("Expected ErrUnreadable, got %v", err)
	}
}

func TestMarkdownToText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"heading and paragraph", "# Title\n\nSome text", "Title. Some text."},
		{"keeps punctuation", "Is it?\n\nYes!", "Is it? Yes!"},
		{"link text only", "See [the docs](https://example.com) now", "See the docs now."},
		{"code block skipped", "Before\n\n```go\nfmt.Println()\n```\n\nAfter", "Before. After."},
		{"list items", "- one\n- two", "one. two."},
		{"soft breaks", "line one\nline two", "line one line two."},
		{"emphasis", "some *bold* words", "some bold words."},
		{"inline code", "run `make` first", "run make first."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(MarkdownToText([]byte(tt.in)))
			if got != tt.want {
				t.Errorf("MarkdownToText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsMarkdownFile(t *testing.T) {
	for path, want := range map[string]bool{
		"a.md":       true,
		"A.MARKDOWN": true,
		"a.txt":      false,
		"README":     false,
	} {
		if got := IsMarkdownFile(path); got != want {
			t.Errorf("IsMarkdownFile(%q) = %v", path, got)
		}
	}
}

func TestStdinIsPiped(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "stdin")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close() //nolint:errcheck

	if !StdinIsPiped(f) {
		t.Error("A regular file on stdin counts as piped input")
	}

	devNull, err := os.Open(os.DevNull)
	if err != nil {
		t.Skip("no null device")
	}
	defer devNull.Close() //nolint:errcheck
	if StdinIsPiped(devNull) {
		t.Error("The null device is not piped input")
	}
}
