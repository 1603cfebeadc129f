package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuffer_SetContentRoundTrip(t *testing.T) {
	for _, content := range []string{
		"",
		"single",
		"a\nb",
		"trailing\n",
		"\n\n",
		"héllo\n```go\nfmt.Println(\"ü\")\n```",
	} {
		b := NewBufferFromString(content)
		assert.Equal(t, content, b.GetCurrentContent())
	}
}

func TestBuffer_VersionChangesOnMutation(t *testing.T) {
	b := NewBufferFromString("abc")
	v := b.Version()

	require.NoError(t, b.InsertRunesAt(0, 1, []rune("x")))
	assert.Greater(t, b.Version(), v)

	v = b.Version()
	b.SetCursor(Cursor{Position: Position{0, 2}})
	assert.Equal(t, v, b.Version())
}

func TestBuffer_InsertRunesAtWithNewlines(t *testing.T) {
	b := NewBufferFromString("headtail\nnext")

	require.NoError(t, b.InsertRunesAt(0, 4, []rune("1\n2\n3")))

	assert.Equal(t, []string{"head1", "2", "3tail", "next"}, b.GetLines())
}

func TestBuffer_InsertRunesAtOutOfBounds(t *testing.T) {
	b := NewBufferFromString("abc")

	assert.ErrorIs(t, b.InsertRunesAt(3, 0, []rune("x")), ErrInvalidPosition)
	assert.ErrorIs(t, b.InsertRunesAt(0, 4, []rune("x")), ErrInvalidPosition)
}

func TestBuffer_DeleteRunesAt(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		row, col int
		count    int
		want     string
	}{
		{"within line", "abcdef", 0, 1, 2, "adef"},
		{"join lines", "ab\ncd", 0, 2, 1, "abcd"},
		{"across lines", "ab\ncd\nef", 0, 1, 5, "af"},
		{"past end", "ab\ncd", 1, 1, 10, "ab\nc"},
		{"zero count", "ab", 0, 0, 0, "ab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBufferFromString(tt.content)
			require.NoError(t, b.DeleteRunesAt(tt.row, tt.col, tt.count))
			assert.Equal(t, tt.want, b.GetCurrentContent())
		})
	}
}

func TestBuffer_DeleteAtEndOfBuffer(t *testing.T) {
	b := NewBufferFromString("ab")
	assert.ErrorIs(t, b.DeleteRunesAt(0, 2, 1), ErrEndOfBuffer)
}

func TestBuffer_ReplaceContentKeepsCursor(t *testing.T) {
	b := NewBufferFromString("one\ntwo\nthree")
	b.SetCursor(Cursor{Position: Position{Row: 2, Col: 3}, Preferred: 3})

	b.ReplaceContent("one\ntwo\nthree and more")
	assert.Equal(t, Position{Row: 2, Col: 3}, b.GetCursor().Position)

	b.ReplaceContent("x")
	assert.Equal(t, Position{Row: 0, Col: 1}, b.GetCursor().Position)
}

func TestBuffer_SetContentResetsCursor(t *testing.T) {
	b := NewBufferFromString("one\ntwo")
	b.SetCursor(Cursor{Position: Position{Row: 1, Col: 2}})

	b.SetContent([]byte("three\nfour"))

	assert.Equal(t, Position{}, b.GetCursor().Position)
}
