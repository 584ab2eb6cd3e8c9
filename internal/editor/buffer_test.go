package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvance(t *testing.T) {
	assert.Equal(t, Pos{Line: 0, Col: 5}, Advance(Pos{}, "hello"))
	assert.Equal(t, Pos{Line: 1, Col: 2}, Advance(Pos{}, "ab\ncd"))
	assert.Equal(t, Pos{Line: 2, Col: 0}, Advance(Pos{Line: 1, Col: 3}, "x\n"))
	// Columns count runes, not bytes
	assert.Equal(t, Pos{Line: 0, Col: 4}, Advance(Pos{}, "héllo"[:5]))
}

func TestSelectionSingleLine(t *testing.T) {
	buf := NewTextBuffer("this is bad today")
	buf.Select(Pos{Col: 5}, Pos{Col: 11})

	text, start, end := buf.Selection()
	assert.Equal(t, "is bad", text)
	assert.Equal(t, Pos{Col: 5}, start)
	assert.Equal(t, Pos{Col: 11}, end)
}

func TestSelectionMultiLine(t *testing.T) {
	buf := NewTextBuffer("first line\nsecond line\nthird line")
	buf.Select(Pos{Line: 0, Col: 6}, Pos{Line: 2, Col: 5})

	text, _, _ := buf.Selection()
	assert.Equal(t, "line\nsecond line\nthird", text)
}

func TestSelectSwapsReversedPositions(t *testing.T) {
	buf := NewTextBuffer("hello world")
	buf.Select(Pos{Col: 11}, Pos{Col: 6})

	text, start, end := buf.Selection()
	assert.Equal(t, "world", text)
	assert.True(t, start.Before(end))
}

func TestReplaceSelection(t *testing.T) {
	buf := NewTextBuffer("keep CHANGE keep")
	buf.Select(Pos{Col: 5}, Pos{Col: 11})
	buf.ReplaceSelection("new")

	assert.Equal(t, "keep new keep", buf.Text())

	// Selection collapses onto the inserted text
	text, start, end := buf.Selection()
	assert.Equal(t, "new", text)
	assert.Equal(t, Pos{Col: 5}, start)
	assert.Equal(t, Pos{Col: 8}, end)
	assert.Equal(t, Pos{Col: 8}, buf.Cursor())
}

func TestReplaceRangeMultiLine(t *testing.T) {
	buf := NewTextBuffer("aaa\nbbb\nccc")
	buf.ReplaceRange(Pos{Line: 0, Col: 1}, Pos{Line: 2, Col: 2}, "X")

	assert.Equal(t, "aXc", buf.Text())
}

func TestReplaceRangeInsertsNewLines(t *testing.T) {
	buf := NewTextBuffer("one three")
	buf.ReplaceRange(Pos{Col: 4}, Pos{Col: 4}, "two\nand ")

	assert.Equal(t, "one two\nand three", buf.Text())
}

func TestInsertAtEnd(t *testing.T) {
	buf := NewTextBuffer("this is bad")
	buf.Insert(Pos{Col: 11}, "\n\n✨ Improved version:\nThis is better.")

	assert.Equal(t, "this is bad\n\n✨ Improved version:\nThis is better.", buf.Text())
}

func TestRuneColumns(t *testing.T) {
	buf := NewTextBuffer("héllo wörld")
	buf.Select(Pos{Col: 6}, Pos{Col: 11})

	text, _, _ := buf.Selection()
	require.Equal(t, "wörld", text)

	buf.ReplaceSelection("x")
	assert.Equal(t, "héllo x", buf.Text())
}

func TestClampOutOfRange(t *testing.T) {
	buf := NewTextBuffer("short")
	buf.Select(Pos{Line: -2, Col: -1}, Pos{Line: 9, Col: 99})

	text, _, _ := buf.Selection()
	assert.Equal(t, "short", text)

	buf.SetCursor(Pos{Line: 42, Col: 42})
	assert.Equal(t, Pos{Line: 0, Col: 5}, buf.Cursor())
}
