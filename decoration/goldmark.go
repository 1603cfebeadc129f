package decoration

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// GoldmarkTokenizer reports CommonMark constructs plus GFM strikethrough.
type GoldmarkTokenizer struct {
	md goldmark.Markdown
}

func NewGoldmarkTokenizer() *GoldmarkTokenizer {
	return &GoldmarkTokenizer{
		md: goldmark.New(goldmark.WithExtensions(extension.Strikethrough)),
	}
}

func (t *GoldmarkTokenizer) Tokenize(snap *Snapshot) []Node {
	src := []byte(snap.Text())
	doc := t.md.Parser().Parse(text.NewReader(src))

	var nodes []Node
	emit := func(kind NodeKind, start, stop int) {
		nodes = append(nodes, Node{
			Kind:  kind,
			Range: Range{From: snap.RuneOffset(start), To: snap.RuneOffset(stop)},
		})
	}

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		if fcb, ok := n.(*ast.FencedCodeBlock); ok && fcb.Info != nil {
			emit(NodeFenceInfo, fcb.Info.Segment.Start, fcb.Info.Segment.Stop)
			return ast.WalkContinue, nil
		}

		kind := nodeKind(n)
		if kind == NodeUnknown {
			return ast.WalkContinue, nil
		}
		start, stop, ok := extent(n, src)
		if !ok {
			return ast.WalkContinue, nil
		}
		emit(kind, start, stop)

		return ast.WalkContinue, nil
	})

	return nodes
}

func nodeKind(n ast.Node) NodeKind {
	switch n := n.(type) {
	case *ast.Heading:
		return NodeHeading1 + NodeKind(min(max(n.Level, 1), 6)-1)
	case *ast.Emphasis:
		if n.Level >= 2 {
			return NodeStrong
		}
		return NodeEmphasis
	case *ast.Blockquote:
		return NodeBlockquote
	case *extast.Strikethrough:
		return NodeStrikethrough
	case *ast.List:
		return NodeList
	case *ast.ListItem:
		return NodeListItem
	case *ast.Link:
		return NodeLink
	case *ast.AutoLink:
		return NodeAutoLink
	case *ast.Image:
		return NodeImage
	case *ast.CodeSpan:
		return NodeCodeSpan
	case *ast.ThematicBreak:
		return NodeThematicBreak
	case *ast.HTMLBlock, *ast.RawHTML:
		return NodeHTML
	}
	return NodeUnknown
}

// extent is the byte range of the source under n. Inline constructs are
// widened over their delimiters from the inside out, so a construct wrapping a
// code span or link covers that child's delimiters too.
func extent(n ast.Node, src []byte) (start, stop int, ok bool) {
	add := func(s, e int) {
		if !ok || s < start {
			start = s
		}
		if !ok || e > stop {
			stop = e
		}
		ok = true
	}

	switch n := n.(type) {
	case *ast.Text:
		add(n.Segment.Start, n.Segment.Stop)
	case *ast.RawHTML:
		for i := 0; i < n.Segments.Len(); i++ {
			seg := n.Segments.At(i)
			add(seg.Start, seg.Stop)
		}
	}
	if n.Type() == ast.TypeBlock {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			add(seg.Start, seg.Stop)
		}
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if s, e, found := extent(c, src); found {
			add(s, e)
		}
	}
	if !ok {
		return 0, 0, false
	}

	if _, isHeading := n.(*ast.Heading); isHeading {
		start, stop = headingLines(src, start, stop)
	} else if n.Type() == ast.TypeInline {
		start, stop = widen(n, src, start, stop)
	}
	return start, stop, true
}

// widen grows an inline span over the delimiters around its content.
func widen(n ast.Node, src []byte, start, stop int) (int, int) {
	switch n := n.(type) {
	case *ast.Emphasis:
		if start > 0 && (src[start-1] == '*' || src[start-1] == '_') {
			return extend(src, start, stop, src[start-1], n.Level)
		}
	case *extast.Strikethrough:
		return extend(src, start, stop, '~', 2)
	case *ast.CodeSpan:
		start, stop = skipSpace(src, start, stop)
		return extend(src, start, stop, '`', -1)
	case *ast.Link:
		return bracketed(src, start, stop)
	case *ast.Image:
		start, stop = bracketed(src, start, stop)
		if start > 0 && src[start-1] == '!' {
			start--
		}
	}
	return start, stop
}

// bracketed grows a link label span over "[...]" and an inline "(...)"
// destination.
func bracketed(src []byte, start, stop int) (int, int) {
	if start > 0 && src[start-1] == '[' {
		start--
	}
	if stop < len(src) && src[stop] == ']' {
		stop++
		if stop < len(src) && src[stop] == '(' {
			if i := bytes.IndexByte(src[stop:], ')'); i >= 0 {
				stop += i + 1
			}
		}
	}
	return start, stop
}

// headingLines grows a heading over its whole source lines: the "#" marker of
// an ATX heading or the underline of a setext one.
func headingLines(src []byte, start, stop int) (int, int) {
	lineStart := bytes.LastIndexByte(src[:start], '\n') + 1
	lineEnd := lineEndAt(src, stop)
	if marker := bytes.TrimLeft(src[lineStart:start], " "); len(marker) > 0 && marker[0] == '#' {
		return lineStart, lineEnd
	}
	if lineEnd >= len(src) {
		return lineStart, lineEnd
	}

	next := lineEnd + 1
	nextEnd := lineEndAt(src, next)
	underline := bytes.TrimSpace(src[next:nextEnd])
	if len(underline) > 0 && (onlyByte(underline, '=') || onlyByte(underline, '-')) {
		return lineStart, nextEnd
	}
	return lineStart, lineEnd
}

func lineEndAt(src []byte, offset int) int {
	if i := bytes.IndexByte(src[offset:], '\n'); i >= 0 {
		return offset + i
	}
	return len(src)
}

func onlyByte(b []byte, ch byte) bool {
	for _, c := range b {
		if c != ch {
			return false
		}
	}
	return true
}

// extend moves start left and stop right over runs of ch, at most limit each
// side when limit is positive.
func extend(src []byte, start, stop int, ch byte, limit int) (int, int) {
	for n := 0; start > 0 && src[start-1] == ch && (limit < 0 || n < limit); n++ {
		start--
	}
	for n := 0; stop < len(src) && src[stop] == ch && (limit < 0 || n < limit); n++ {
		stop++
	}
	return start, stop
}

func skipSpace(src []byte, start, stop int) (int, int) {
	if start > 0 && src[start-1] == ' ' {
		start--
	}
	if stop < len(src) && src[stop] == ' ' {
		stop++
	}
	return start, stop
}
