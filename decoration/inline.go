package decoration

// NodeKind identifies a markdown construct reported by a Tokenizer.
type NodeKind int

const (
	NodeUnknown NodeKind = iota
	NodeHeading1
	NodeHeading2
	NodeHeading3
	NodeHeading4
	NodeHeading5
	NodeHeading6
	NodeStrong
	NodeEmphasis
	NodeBlockquote
	NodeStrikethrough
	NodeList
	NodeListItem
	NodeLink
	NodeAutoLink
	NodeImage
	NodeCodeSpan
	NodeFenceInfo
	NodeThematicBreak
	NodeHTML
)

// Node is one construct found by a Tokenizer. Range covers the construct
// including its delimiters.
type Node struct {
	Kind  NodeKind
	Range Range
}

// Tokenizer parses a snapshot into markdown nodes.
type Tokenizer interface {
	Tokenize(snap *Snapshot) []Node
}

type tag struct {
	class string
	line  bool
}

// Kinds missing from this table are not decorated.
var inlineTags = map[NodeKind]tag{
	NodeHeading1:      {HeadingClass(1), true},
	NodeHeading2:      {HeadingClass(2), true},
	NodeHeading3:      {HeadingClass(3), true},
	NodeHeading4:      {HeadingClass(4), true},
	NodeHeading5:      {HeadingClass(5), true},
	NodeHeading6:      {HeadingClass(6), true},
	NodeBlockquote:    {ClassQuote, true},
	NodeListItem:      {ClassListItem, true},
	NodeStrong:        {ClassStrong, false},
	NodeEmphasis:      {ClassEmphasis, false},
	NodeStrikethrough: {ClassStrikethrough, false},
	NodeLink:          {ClassLink, false},
	NodeCodeSpan:      {ClassInlineCode, false},
	NodeFenceInfo:     {ClassFenceInfo, false},
}

// decorateInline maps tokenizer nodes to decorations. Block constructs tag
// every line they cover; inline constructs become marks. Overlaps are kept.
func decorateInline(snap *Snapshot, nodes []Node) []Decoration {
	var out []Decoration
	for _, n := range nodes {
		t, ok := inlineTags[n.Kind]
		if !ok {
			continue
		}
		if !t.line {
			if !n.Range.Empty() {
				out = append(out, markDecoration(n.Range, t.class))
			}
			continue
		}
		first, end := snap.LinesOf(n.Range)
		for line := first; line < end; line++ {
			out = append(out, lineDecoration(snap.LineRange(line), t.class))
		}
	}
	return out
}
