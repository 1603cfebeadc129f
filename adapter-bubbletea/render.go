package adapter_bubbletea

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rivo/uniseg"

	"github.com/ionut-t/mdlive/decoration"
)

// calculateLineNumberWidth computes the width needed for line numbers
func (m *Model) calculateLineNumberWidth(totalLines int) int {
	if !m.showLineNumbers {
		return 0
	}

	maxWidth := len(strconv.Itoa(max(1, totalLines)))
	lineNumWidth := max(4, maxWidth) + 1
	return min(lineNumWidth, 10)
}

// renderVisibleSlice renders the rows in the editor viewport together with
// their decorations and any image widgets anchored on them.
func (m *Model) renderVisibleSlice() {
	buffer := m.editor.GetBuffer()
	height := max(m.viewport.Height, 1)

	if buffer.IsEmpty() && m.placeholder != "" {
		m.viewport.SetContent(m.renderPlaceholder())
		return
	}

	start, end := m.editor.VisibleLines()
	cursor := buffer.GetCursor()
	set := m.surface.decorations

	lineNumWidth := m.calculateLineNumberWidth(buffer.LineCount())
	availableWidth := max(m.viewport.Width-lineNumWidth, 1)
	leftCol := max(0, cursor.Position.Col-availableWidth+1)

	rows := make([]string, 0, height)
	cursorRow := 0
	offset := lineOffset(buffer, start)

	for row := start; row < end; row++ {
		runes := buffer.GetLineRunes(row)
		span := decoration.Range{From: offset, To: offset + len(runes)}
		isCursorLine := row == cursor.Position.Row

		cursorCol := -1
		if isCursorLine {
			cursorCol = cursor.Position.Col
			cursorRow = len(rows)
		}

		gutter := m.renderLineNumber(row, isCursorLine, lineNumWidth)
		rows = append(rows, gutter+m.renderLine(runes, span, set, cursorCol, leftCol, availableWidth))

		for _, widget := range set.Widgets(decoration.Range{From: span.To, To: span.To}) {
			rows = append(rows, m.renderWidget(widget, lineNumWidth, availableWidth)...)
		}

		offset = span.To + 1
	}

	// Widget rows can push the cursor line below the fold.
	if cursorRow >= height {
		rows = rows[cursorRow-height+1:]
	}
	if len(rows) > height {
		rows = rows[:height]
	}

	m.viewport.SetContent(strings.Join(rows, "\n"))
}

func (m *Model) renderLineNumber(row int, current bool, width int) string {
	if width == 0 {
		return ""
	}
	style := m.theme.LineNumberStyle
	if current {
		style = m.theme.CurrentLineNumberStyle
	}
	return style.Width(width-1).Render(strconv.Itoa(row+1)) + " "
}

// renderLine styles one logical line. Line classes form the base style and
// marks covering a rune are layered on top in start order, so inner marks
// win over outer ones.
func (m *Model) renderLine(runes []rune, span decoration.Range, set decoration.Set, cursorCol, leftCol, width int) string {
	base := lipgloss.NewStyle()
	for _, class := range set.LineClasses(span.From) {
		if style, ok := m.styleFor(class); ok {
			base = style.Inherit(base)
		}
	}
	marks := set.Marks(span)

	var sb strings.Builder
	used := 0
	for col := leftCol; col < len(runes); col++ {
		r := runes[col]
		if r == '\t' {
			r = ' '
		}
		w := uniseg.StringWidth(string(r))
		if used+w > width {
			break
		}

		style := base
		offset := span.From + col
		for _, mark := range marks {
			if offset < mark.Range.From || offset >= mark.Range.To {
				continue
			}
			if markStyle, ok := m.styleFor(mark.Payload.Class); ok {
				style = markStyle.Inherit(style)
			}
		}

		if col == cursorCol && m.isFocused {
			style = m.theme.CursorStyle
		}
		sb.WriteString(style.Render(string(r)))
		used += w
	}

	if cursorCol >= len(runes) && cursorCol >= leftCol && used < width && m.isFocused {
		sb.WriteString(m.theme.CursorStyle.Render(" "))
		used++
	}

	if _, plain := base.GetBackground().(lipgloss.NoColor); !plain && used < width {
		sb.WriteString(base.Render(strings.Repeat(" ", width-used)))
	}

	return sb.String()
}

func (m *Model) renderWidget(widget decoration.Decoration, indent, width int) []string {
	pad := strings.Repeat(" ", indent)
	location := widget.Payload.URL

	label := widget.Payload.Alt
	if label == "" {
		label = location
	}

	entry, ok := m.images.entry(location)
	switch {
	case ok && entry.err == nil && len(entry.rows) > 0:
		rows := make([]string, len(entry.rows))
		for i, row := range entry.rows {
			rows[i] = pad + row
		}
		return rows
	case ok && entry.err != nil:
		label = fmt.Sprintf("%s (%v)", label, entry.err)
	case ok && entry.loading:
		label += " …"
	}

	return []string{pad + m.theme.WidgetStyle.MaxWidth(width).Render("[image: "+label+"]")}
}

func (m *Model) renderPlaceholder() string {
	var sb strings.Builder
	for i, r := range m.placeholder {
		if i == 0 && m.isFocused {
			sb.WriteString(m.theme.CursorStyle.Render(string(r)))
		} else {
			sb.WriteString(m.theme.PlaceholderStyle.Render(string(r)))
		}
	}
	return sb.String()
}
