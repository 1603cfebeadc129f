package decoration

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// Snapshot is a read-only view of the document shared by every scanner in a
// pass. All offsets it hands out are rune offsets.
type Snapshot struct {
	text       string
	lines      []string
	starts     []int // rune offset of each line start
	byteStarts []int // byte offset of each line start
	length     int
}

func NewSnapshot(text string) *Snapshot {
	lines := strings.Split(text, "\n")
	s := &Snapshot{
		text:       text,
		lines:      lines,
		starts:     make([]int, len(lines)),
		byteStarts: make([]int, len(lines)),
	}

	runes, bytes := 0, 0
	for i, line := range lines {
		s.starts[i] = runes
		s.byteStarts[i] = bytes
		runes += utf8.RuneCountInString(line) + 1
		bytes += len(line) + 1
	}
	s.length = runes - 1

	return s
}

func (s *Snapshot) Text() string    { return s.text }
func (s *Snapshot) Lines() []string { return s.lines }
func (s *Snapshot) LineCount() int  { return len(s.lines) }

// Len is the document length in runes.
func (s *Snapshot) Len() int { return s.length }

func (s *Snapshot) Line(i int) string {
	if i < 0 || i >= len(s.lines) {
		return ""
	}
	return s.lines[i]
}

func (s *Snapshot) LineStart(i int) int {
	i = s.clampLine(i)
	return s.starts[i]
}

// LineEnd is the offset just past the last rune of line i, before its line break.
func (s *Snapshot) LineEnd(i int) int {
	i = s.clampLine(i)
	return s.starts[i] + utf8.RuneCountInString(s.lines[i])
}

func (s *Snapshot) LineRange(i int) Range {
	return Range{From: s.LineStart(i), To: s.LineEnd(i)}
}

// LineAt returns the line holding offset. Offsets sitting on a line break
// belong to the line they terminate.
func (s *Snapshot) LineAt(offset int) int {
	i := sort.Search(len(s.starts), func(i int) bool { return s.starts[i] > offset })
	return s.clampLine(i - 1)
}

// Lines spanned by r, as a half-open line range.
func (s *Snapshot) LinesOf(r Range) (int, int) {
	first := s.LineAt(r.From)
	last := first
	if r.To > r.From {
		last = s.LineAt(r.To - 1)
	}
	return first, last + 1
}

// RuneOffset converts a byte offset in Text into a rune offset.
func (s *Snapshot) RuneOffset(byteOffset int) int {
	byteOffset = min(max(byteOffset, 0), len(s.text))
	i := sort.Search(len(s.byteStarts), func(i int) bool { return s.byteStarts[i] > byteOffset }) - 1
	i = s.clampLine(i)
	col := min(byteOffset-s.byteStarts[i], len(s.lines[i]))
	return s.starts[i] + utf8.RuneCountInString(s.lines[i][:col])
}

func (s *Snapshot) clampLine(i int) int {
	return min(max(i, 0), len(s.lines)-1)
}
