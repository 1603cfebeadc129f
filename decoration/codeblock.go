package decoration

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
)

// CodeHighlighter turns the interior of fenced blocks into language token
// marks. Lexers are looked up by the block's language tag; untagged blocks
// fall back to content analysis.
type CodeHighlighter struct {
	mu     sync.Mutex
	lexers map[string]chroma.Lexer
}

func NewCodeHighlighter() *CodeHighlighter {
	return &CodeHighlighter{lexers: make(map[string]chroma.Lexer)}
}

func (h *CodeHighlighter) lexer(language, source string) chroma.Lexer {
	if language == "" {
		if l := lexers.Analyse(source); l != nil {
			return chroma.Coalesce(l)
		}
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	key := strings.ToLower(language)
	if l, ok := h.lexers[key]; ok {
		return l
	}
	l := lexers.Get(key)
	if l != nil {
		l = chroma.Coalesce(l)
	}
	h.lexers[key] = l
	return l
}

// Decorate emits one mark per token segment. Tokens spanning line breaks are
// split so no mark crosses a line.
func (h *CodeHighlighter) Decorate(snap *Snapshot, blocks []FencedBlock) []Decoration {
	var out []Decoration
	for _, b := range blocks {
		if b.End <= b.Start {
			continue
		}
		source := strings.Join(snap.Lines()[b.Start:b.End], "\n")
		lexer := h.lexer(b.Language, source)
		if lexer == nil {
			continue
		}
		iterator, err := lexer.Tokenise(nil, source)
		if err != nil {
			continue
		}

		offset := snap.LineStart(b.Start)
		for _, token := range iterator.Tokens() {
			class := chroma.StandardTypes[token.Type]
			for i, segment := range strings.Split(token.Value, "\n") {
				if i > 0 {
					offset++
				}
				n := utf8.RuneCountInString(segment)
				if n > 0 && class != "" && class != "w" {
					d := markDecoration(Range{From: offset, To: offset + n}, CodeTokenPrefix+class)
					d.Payload.Language = b.Language
					out = append(out, d)
				}
				offset += n
			}
		}
	}
	return out
}
