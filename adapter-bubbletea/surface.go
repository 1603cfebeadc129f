package adapter_bubbletea

import (
	editor "github.com/ionut-t/mdlive/core"
	"github.com/ionut-t/mdlive/decoration"
)

// surface exposes the editor buffer to the decoration coordinator and keeps
// the last published decoration set for rendering.
type surface struct {
	editor      editor.Editor
	decorations decoration.Set
}

func (s *surface) Text() string {
	return s.editor.GetBuffer().GetCurrentContent()
}

func (s *surface) ReplaceText(text string) error {
	s.editor.ReplaceContent(text)
	return nil
}

func (s *surface) VisibleRanges() []decoration.Range {
	start, end := s.editor.VisibleLines()
	buffer := s.editor.GetBuffer()

	from := lineOffset(buffer, start)
	to := from
	for row := start; row < end; row++ {
		if row > start {
			to++ // line break
		}
		to += buffer.LineRuneCount(row)
	}
	return []decoration.Range{{From: from, To: to}}
}

func (s *surface) SetDecorations(set decoration.Set) {
	s.decorations = set
}

// lineOffset returns the rune offset of the first rune of row.
func lineOffset(buffer editor.Buffer, row int) int {
	offset := 0
	for i := 0; i < row && i < buffer.LineCount(); i++ {
		offset += buffer.LineRuneCount(i) + 1
	}
	return offset
}
