// Package decoration derives presentation overlays from markdown text.
//
// A Coordinator owns one editor instance. Each pass rebuilds every overlay
// from a fresh Snapshot: fenced code blocks first, then inline markdown
// constructs, then image widgets for the visible rows. The results are merged
// into one immutable Set and handed to the View in a single call.
package decoration

import (
	"fmt"
	"slices"
)

// Line classes.
const (
	ClassCodeBlock   = "code-block-interior"
	ClassFenceMarker = "fence-marker"
	ClassQuote       = "quote"
	ClassListItem    = "list-item"
)

// Mark classes.
const (
	ClassStrong        = "strong"
	ClassEmphasis      = "emphasis"
	ClassStrikethrough = "strikethrough"
	ClassLink          = "link"
	ClassInlineCode    = "inline-code"
	ClassFenceInfo     = "fence-info"
	ClassImage         = "image"

	// CodeTokenPrefix prefixes language token classes inside fenced blocks.
	CodeTokenPrefix = "chroma-"
)

func HeadingClass(level int) string {
	return fmt.Sprintf("heading-%d", level)
}

// Range is a half-open span of rune offsets.
type Range struct {
	From, To int
}

func (r Range) Len() int    { return r.To - r.From }
func (r Range) Empty() bool { return r.To <= r.From }

// Overlaps reports whether r and o share an offset. A zero-width range
// overlaps any range it touches.
func (r Range) Overlaps(o Range) bool {
	if r.Empty() {
		return r.From >= o.From && r.From <= o.To
	}
	if o.Empty() {
		return o.From >= r.From && o.From <= r.To
	}
	return r.From < o.To && o.From < r.To
}

type Kind int

const (
	// KindLine tags whole lines.
	KindLine Kind = iota
	// KindMark styles a span of text.
	KindMark
	// KindWidget inserts non-text content at a zero-width anchor.
	KindWidget
)

func (k Kind) String() string {
	switch k {
	case KindLine:
		return "line"
	case KindMark:
		return "mark"
	case KindWidget:
		return "widget"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Payload is the rendering hint carried by a decoration.
type Payload struct {
	Class    string
	URL      string // widgets
	Alt      string // widgets
	Language string // code-block lines and tokens
}

type Decoration struct {
	Range   Range
	Kind    Kind
	Payload Payload
}

func lineDecoration(r Range, class string) Decoration {
	return Decoration{Range: r, Kind: KindLine, Payload: Payload{Class: class}}
}

func markDecoration(r Range, class string) Decoration {
	return Decoration{Range: r, Kind: KindMark, Payload: Payload{Class: class}}
}

func widgetDecoration(at int, url, alt string) Decoration {
	return Decoration{
		Range:   Range{From: at, To: at},
		Kind:    KindWidget,
		Payload: Payload{Class: ClassImage, URL: url, Alt: alt},
	}
}

// Set is an immutable, start-ordered collection of decorations.
type Set struct {
	items  []Decoration
	maxLen int // longest range, bounds how far back a query must look
}

// NewSet merges groups of decorations into one Set. Order inside a group is
// kept for decorations sharing a start offset.
func NewSet(groups ...[]Decoration) Set {
	var n int
	for _, g := range groups {
		n += len(g)
	}
	items := make([]Decoration, 0, n)
	for _, g := range groups {
		items = append(items, g...)
	}
	slices.SortStableFunc(items, func(a, b Decoration) int {
		return a.Range.From - b.Range.From
	})

	var maxLen int
	for _, d := range items {
		maxLen = max(maxLen, d.Range.Len())
	}
	return Set{items: items, maxLen: maxLen}
}

func (s Set) Len() int { return len(s.items) }

// All returns a copy of the decorations in start order.
func (s Set) All() []Decoration {
	return slices.Clone(s.items)
}

func (s Set) Overlapping(r Range) []Decoration {
	// Nothing starting before r.From-maxLen can reach r.
	i := s.search(r.From - s.maxLen)

	var out []Decoration
	for _, d := range s.items[i:] {
		if d.Range.From > r.To {
			break
		}
		if d.Range.Overlaps(r) {
			out = append(out, d)
		}
	}
	return out
}

// LineClasses returns the classes of line decorations starting at lineStart.
func (s Set) LineClasses(lineStart int) []string {
	var out []string
	for i := s.search(lineStart); i < len(s.items) && s.items[i].Range.From == lineStart; i++ {
		if d := s.items[i]; d.Kind == KindLine && !slices.Contains(out, d.Payload.Class) {
			out = append(out, d.Payload.Class)
		}
	}
	return out
}

// search returns the index of the first decoration starting at or after from.
func (s Set) search(from int) int {
	i, _ := slices.BinarySearchFunc(s.items, from, func(d Decoration, at int) int {
		return d.Range.From - at
	})
	return i
}

// Marks returns the mark decorations overlapping r.
func (s Set) Marks(r Range) []Decoration {
	return s.filter(r, KindMark)
}

// Widgets returns the widget decorations anchored inside r, ends included.
func (s Set) Widgets(r Range) []Decoration {
	return s.filter(r, KindWidget)
}

func (s Set) filter(r Range, kind Kind) []Decoration {
	var out []Decoration
	for _, d := range s.Overlapping(r) {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}
