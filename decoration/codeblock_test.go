package decoration

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func codeMarks(text string) (*Snapshot, []Decoration) {
	snap := NewSnapshot(text)
	scan := ScanFences(snap.Lines())
	return snap, NewCodeHighlighter().Decorate(snap, scan.Blocks)
}

func TestCodeHighlighter_GoKeywords(t *testing.T) {
	snap, marks := codeMarks("intro\n```go\nfunc main() {}\n```")
	require.NotEmpty(t, marks)

	lineStart := snap.LineStart(2)
	var found bool
	for _, m := range marks {
		assert.Equal(t, "go", m.Payload.Language)
		assert.True(t, strings.HasPrefix(m.Payload.Class, CodeTokenPrefix))
		if m.Range == (Range{From: lineStart, To: lineStart + 4}) {
			assert.Equal(t, CodeTokenPrefix+"kd", m.Payload.Class)
			found = true
		}
	}
	assert.True(t, found, "no mark for the func keyword")
}

func TestCodeHighlighter_MarksStayInsideInteriorLines(t *testing.T) {
	snap, marks := codeMarks("```python\ndef f():\n    \"\"\"multi\n    line\"\"\"\n    return 1\n```\nafter")
	require.NotEmpty(t, marks)

	for _, m := range marks {
		line := snap.LineAt(m.Range.From)
		assert.Equal(t, line, snap.LineAt(m.Range.To-1), "mark %v crosses a line", m.Range)
		assert.GreaterOrEqual(t, line, 1)
		assert.LessOrEqual(t, line, 4)
	}
}

func TestCodeHighlighter_UnknownLanguage(t *testing.T) {
	_, marks := codeMarks("```no-such-language-here\nx = 1\n```")

	assert.Empty(t, marks)
}

func TestCodeHighlighter_EmptyBlock(t *testing.T) {
	_, marks := codeMarks("```go\n```")

	assert.Empty(t, marks)
}

func TestCodeHighlighter_CachesLexers(t *testing.T) {
	h := NewCodeHighlighter()

	first := h.lexer("Go", "")
	second := h.lexer("go", "")

	require.NotNil(t, first)
	assert.Same(t, first, second)
}
