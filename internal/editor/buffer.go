// Package editor models the host document surface the improve pipeline
// mutates. Hosts with a real document (a GUI editor, a terminal buffer)
// implement Buffer; TextBuffer is the in-memory implementation used by the
// HTTP adapter, the CLI and the tests.
package editor

import "strings"

// Pos is a position in a buffer. Lines and columns are zero-based, and
// columns count runes, not bytes.
type Pos struct {
	Line int `json:"line"`
	Col  int `json:"col"`
}

// Before reports whether p comes before q in document order.
func (p Pos) Before(q Pos) bool {
	if p.Line != q.Line {
		return p.Line < q.Line
	}
	return p.Col < q.Col
}

// Advance returns the position reached after inserting text at p.
func Advance(p Pos, text string) Pos {
	for _, r := range text {
		if r == '\n' {
			p.Line++
			p.Col = 0
		} else {
			p.Col++
		}
	}
	return p
}

// Buffer is the document API consumed from the host. All mutations are
// synchronous and immediately observable. The improve pipeline assumes no
// concurrent external edits to the affected region while an operation runs.
type Buffer interface {
	// Selection returns the currently selected text and its start and end
	// positions. An empty selection returns "" with start == end.
	Selection() (text string, start, end Pos)
	// ReplaceSelection replaces the current selection with text and
	// collapses the selection to the end of the inserted text.
	ReplaceSelection(text string)
	// ReplaceRange replaces the text between start and end with text.
	ReplaceRange(start, end Pos, text string)
	// Insert inserts text at p.
	Insert(p Pos, text string)
	// SetCursor moves the cursor to p.
	SetCursor(p Pos)
}

// TextBuffer is a line-oriented in-memory document.
type TextBuffer struct {
	lines    []string
	selStart Pos
	selEnd   Pos
	cursor   Pos
}

func NewTextBuffer(text string) *TextBuffer {
	return &TextBuffer{lines: strings.Split(text, "\n")}
}

// Text returns the full document text.
func (b *TextBuffer) Text() string {
	return strings.Join(b.lines, "\n")
}

// Cursor returns the current cursor position.
func (b *TextBuffer) Cursor() Pos {
	return b.cursor
}

// Select sets the selection. Positions are clamped to the document and
// swapped if given in reverse order.
func (b *TextBuffer) Select(start, end Pos) {
	start, end = b.clamp(start), b.clamp(end)
	if end.Before(start) {
		start, end = end, start
	}
	b.selStart, b.selEnd = start, end
	b.cursor = end
}

func (b *TextBuffer) Selection() (string, Pos, Pos) {
	return b.slice(b.selStart, b.selEnd), b.selStart, b.selEnd
}

func (b *TextBuffer) ReplaceSelection(text string) {
	b.ReplaceRange(b.selStart, b.selEnd, text)
	b.selEnd = Advance(b.selStart, text)
	b.cursor = b.selEnd
}

func (b *TextBuffer) ReplaceRange(start, end Pos, text string) {
	start, end = b.clamp(start), b.clamp(end)
	if end.Before(start) {
		start, end = end, start
	}
	head := string([]rune(b.lines[start.Line])[:start.Col])
	tail := string([]rune(b.lines[end.Line])[end.Col:])
	merged := strings.Split(head+text+tail, "\n")

	lines := make([]string, 0, len(b.lines)-(end.Line-start.Line+1)+len(merged))
	lines = append(lines, b.lines[:start.Line]...)
	lines = append(lines, merged...)
	lines = append(lines, b.lines[end.Line+1:]...)
	b.lines = lines
}

func (b *TextBuffer) Insert(p Pos, text string) {
	b.ReplaceRange(p, p, text)
}

func (b *TextBuffer) SetCursor(p Pos) {
	b.cursor = b.clamp(p)
}

// slice returns the text between two clamped, ordered positions.
func (b *TextBuffer) slice(start, end Pos) string {
	if start.Line == end.Line {
		return string([]rune(b.lines[start.Line])[start.Col:end.Col])
	}
	var sb strings.Builder
	sb.WriteString(string([]rune(b.lines[start.Line])[start.Col:]))
	for line := start.Line + 1; line < end.Line; line++ {
		sb.WriteString("\n")
		sb.WriteString(b.lines[line])
	}
	sb.WriteString("\n")
	sb.WriteString(string([]rune(b.lines[end.Line])[:end.Col]))
	return sb.String()
}

func (b *TextBuffer) clamp(p Pos) Pos {
	if p.Line < 0 {
		p.Line = 0
	}
	if p.Line >= len(b.lines) {
		p.Line = len(b.lines) - 1
	}
	if p.Col < 0 {
		p.Col = 0
	}
	if n := len([]rune(b.lines[p.Line])); p.Col > n {
		p.Col = n
	}
	return p
}

var _ Buffer = (*TextBuffer)(nil)
