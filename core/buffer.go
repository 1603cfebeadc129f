package core

import (
	"fmt"
	"strings"
)

// Buffer represents the text content being edited (Using Runes)
type Buffer interface {
	// Content access
	GetLines() []string              // Get lines as strings (for display)
	GetLineRunes(lineNum int) []rune // Get specific line as runes (for editing)
	LineRuneCount(lineNum int) int   // Get rune count for a line
	GetCurrentContent() string       // Get entire buffer content as a string
	LineCount() int                  // Get number of lines
	Version() uint64                 // Incremented on every content mutation

	// Modification
	InsertRunesAt(row, col int, runes []rune) error // Insert runes (handles newlines)
	DeleteRunesAt(row, col int, count int) error    // Delete runes (handles newlines)

	// Cursor
	GetCursor() Cursor
	SetCursor(Cursor)

	SetContent(content []byte)     // Set content and move the cursor to the start
	ReplaceContent(content string) // Set content keeping the cursor where it was (clamped)
	IsEmpty() bool                 // Check if buffer is empty
}

// textBuffer implementation using runes for better unicode handling
type textBuffer struct {
	lines   [][]rune // Store lines as slices of runes
	cursor  Cursor
	version uint64
}

// NewBuffer creates a new empty buffer
func NewBuffer() Buffer {
	return &textBuffer{
		lines:  [][]rune{{}}, // Start with one empty line
		cursor: Cursor{Position: Position{0, 0}, Preferred: 0},
	}
}

func NewBufferFromString(content string) Buffer {
	b := NewBuffer()
	b.SetContent([]byte(content))
	return b
}

func (b *textBuffer) IsEmpty() bool {
	return len(b.lines) == 1 && len(b.lines[0]) == 0
}

func (b *textBuffer) Version() uint64 {
	return b.version
}

// SetContent splits on '\n' only, so GetCurrentContent returns the exact input.
func (b *textBuffer) SetContent(content []byte) {
	b.load(string(content))
	b.cursor = Cursor{}
}

func (b *textBuffer) ReplaceContent(content string) {
	cursor := b.cursor
	b.load(content)
	b.SetCursor(cursor)
}

func (b *textBuffer) load(content string) {
	parts := strings.Split(content, "\n")
	lines := make([][]rune, len(parts))
	for i, part := range parts {
		lines[i] = []rune(part)
	}
	b.lines = lines
	b.version++
}

func (b *textBuffer) GetLines() []string {
	linesStr := make([]string, len(b.lines))
	for i, r := range b.lines {
		linesStr[i] = string(r)
	}
	return linesStr
}

func (b *textBuffer) GetLineRunes(lineNum int) []rune {
	if lineNum < 0 || lineNum >= len(b.lines) {
		return nil
	}
	return b.lines[lineNum]
}

func (b *textBuffer) LineRuneCount(lineNum int) int {
	if lineNum < 0 || lineNum >= len(b.lines) {
		return 0
	}
	return len(b.lines[lineNum])
}

// GetCurrentContent returns the entire buffer content as a string
func (b *textBuffer) GetCurrentContent() string {
	return strings.Join(b.GetLines(), "\n")
}

func (b *textBuffer) LineCount() int {
	return len(b.lines)
}

func (b *textBuffer) GetCursor() Cursor {
	return b.cursor
}

// SetCursor sets the cursor position, validating and clamping it.
func (b *textBuffer) SetCursor(cursor Cursor) {
	if cursor.Position.Row < 0 {
		cursor.Position.Row = 0
	} else if cursor.Position.Row >= len(b.lines) {
		cursor.Position.Row = max(len(b.lines)-1, 0)
	}

	lineLen := b.LineRuneCount(cursor.Position.Row)
	if cursor.Position.Col < 0 {
		cursor.Position.Col = 0
	} else if cursor.Position.Col > lineLen {
		// Allow cursor to be one position *past* the end of the line
		cursor.Position.Col = lineLen
	}

	b.cursor = cursor
}

// InsertRunesAt inserts runes at the specified position. Handles newlines correctly.
func (b *textBuffer) InsertRunesAt(row, col int, runes []rune) error {
	if row < 0 || row >= len(b.lines) {
		return fmt.Errorf("InsertRunesAt: %w: row %d out of bounds [0, %d)", ErrInvalidPosition, row, len(b.lines))
	}

	line := b.lines[row]
	if col < 0 || col > len(line) {
		return fmt.Errorf("InsertRunesAt: %w: col %d out of bounds [0, %d]", ErrInvalidPosition, col, len(line))
	}
	if len(runes) == 0 {
		return nil
	}

	parts := strings.Split(string(runes), "\n")
	tail := append([]rune(nil), line[col:]...)

	if len(parts) == 1 {
		newLine := make([]rune, 0, len(line)+len(runes))
		newLine = append(newLine, line[:col]...)
		newLine = append(newLine, runes...)
		newLine = append(newLine, tail...)
		b.lines[row] = newLine
		b.version++
		return nil
	}

	inserted := make([][]rune, len(parts))
	inserted[0] = append(append([]rune(nil), line[:col]...), []rune(parts[0])...)
	for i := 1; i < len(parts); i++ {
		inserted[i] = []rune(parts[i])
	}
	last := len(inserted) - 1
	inserted[last] = append(inserted[last], tail...)

	lines := make([][]rune, 0, len(b.lines)+last)
	lines = append(lines, b.lines[:row]...)
	lines = append(lines, inserted...)
	lines = append(lines, b.lines[row+1:]...)
	b.lines = lines
	b.version++

	return nil
}

// DeleteRunesAt deletes count runes starting at the specified position.
// A line break counts as one rune, so deleting past the end of a line joins it
// with the next one.
func (b *textBuffer) DeleteRunesAt(row, col int, count int) error {
	if count <= 0 {
		return nil
	}

	if row < 0 || row >= len(b.lines) {
		return fmt.Errorf("DeleteRunesAt: %w: row %d out of bounds [0, %d)", ErrInvalidPosition, row, len(b.lines))
	}

	line := b.lines[row]
	if col < 0 || col > len(line) {
		return fmt.Errorf("DeleteRunesAt: %w: col %d out of bounds [0, %d]", ErrInvalidPosition, col, len(line))
	}

	endRow, endCol := row, col
	remaining := count
	for remaining > 0 {
		available := len(b.lines[endRow]) - endCol
		if remaining <= available {
			endCol += remaining
			break
		}
		remaining -= available
		if endRow == len(b.lines)-1 {
			endCol = len(b.lines[endRow])
			break
		}
		// the line break itself
		remaining--
		endRow++
		endCol = 0
	}

	if endRow == row && endCol == col {
		return fmt.Errorf("DeleteRunesAt: %w", ErrEndOfBuffer)
	}

	merged := make([]rune, 0, col+len(b.lines[endRow])-endCol)
	merged = append(merged, line[:col]...)
	merged = append(merged, b.lines[endRow][endCol:]...)

	b.lines = append(b.lines[:row+1], b.lines[endRow+1:]...)
	b.lines[row] = merged
	b.version++

	return nil
}
