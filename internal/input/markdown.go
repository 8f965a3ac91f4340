package input

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// IsMarkdownFile reports whether path has a markdown extension.
func IsMarkdownFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".mdown", ".mkdn", ".mkd", ".markdown":
		return true
	default:
		return false
	}
}

// MarkdownToText renders markdown as plain prose suitable for reading
// aloud. Code blocks and raw HTML are skipped, links keep their text only,
// and headings, paragraphs and list items end in a sentence break.
func MarkdownToText(src []byte) []byte {
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var buf bytes.Buffer
	walk(doc, src, &buf)
	return bytes.TrimSpace(buf.Bytes())
}

func walk(node ast.Node, src []byte, buf *bytes.Buffer) {
	switch n := node.(type) {
	case *ast.CodeBlock, *ast.FencedCodeBlock, *ast.HTMLBlock, *ast.RawHTML:
		return

	case *ast.Text:
		buf.Write(n.Segment.Value(src))
		if n.SoftLineBreak() || n.HardLineBreak() {
			buf.WriteByte(' ')
		}
		return

	case *ast.String:
		buf.Write(n.Value)
		return

	case *ast.CodeSpan:
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			if t, ok := c.(*ast.Text); ok {
				buf.Write(t.Segment.Value(src))
			}
		}
		return

	case *ast.Image:
		// alt text only
		walkChildren(n, src, buf)
		return

	case *ast.AutoLink:
		buf.Write(n.Label(src))
		return

	case *ast.Heading, *ast.Paragraph, *ast.ListItem:
		walkChildren(n, src, buf)
		endSentence(buf)
		return
	}

	walkChildren(node, src, buf)
}

func walkChildren(node ast.Node, src []byte, buf *bytes.Buffer) {
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		walk(c, src, buf)
	}
}

// endSentence terminates the text written so far with a period unless it
// already ends in punctuation.
func endSentence(buf *bytes.Buffer) {
	trimmed := bytes.TrimRight(buf.Bytes(), " ")
	buf.Truncate(len(trimmed))
	if len(trimmed) == 0 {
		return
	}
	switch trimmed[len(trimmed)-1] {
	case '.', '!', '?', ':', ';':
		buf.WriteByte(' ')
	default:
		buf.WriteString(". ")
	}
}
