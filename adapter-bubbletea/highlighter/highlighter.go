package highlighter

import (
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"

	"github.com/ionut-t/mdlive/decoration"
)

var classTypes = func() map[string]chroma.TokenType {
	types := make(map[string]chroma.TokenType, len(chroma.StandardTypes))
	for tokenType, class := range chroma.StandardTypes {
		if class != "" {
			types[class] = tokenType
		}
	}
	return types
}()

// Highlighter turns code-token mark classes into terminal styles taken from
// a chroma style.
type Highlighter struct {
	style      *chroma.Style
	styleCache map[chroma.TokenType]lipgloss.Style
	cacheMutex sync.RWMutex
}

// New creates a highlighter for the named chroma style. Unknown names fall
// back to the chroma default.
func New(theme string) *Highlighter {
	return &Highlighter{
		style:      styles.Get(theme),
		styleCache: make(map[chroma.TokenType]lipgloss.Style),
	}
}

// TokenType maps a class such as "chroma-kd" back to its token type.
func TokenType(class string) (chroma.TokenType, bool) {
	short, ok := strings.CutPrefix(class, decoration.CodeTokenPrefix)
	if !ok {
		return 0, false
	}
	tokenType, ok := classTypes[short]
	return tokenType, ok
}

// StyleForClass returns the style for a code-token class. The second result
// is false for classes that are not code tokens.
func (sh *Highlighter) StyleForClass(class string) (lipgloss.Style, bool) {
	tokenType, ok := TokenType(class)
	if !ok {
		return lipgloss.NewStyle(), false
	}
	return sh.GetStyleForToken(tokenType), true
}

// GetStyleForToken converts a Chroma token type to a lipgloss style.
func (sh *Highlighter) GetStyleForToken(tokenType chroma.TokenType) lipgloss.Style {
	sh.cacheMutex.RLock()
	style, ok := sh.styleCache[tokenType]
	sh.cacheMutex.RUnlock()
	if ok {
		return style
	}

	entry := sh.style.Get(tokenType)

	style = lipgloss.NewStyle()
	if entry.Colour.IsSet() {
		style = style.Foreground(lipgloss.Color(entry.Colour.String()))
	}

	if entry.Bold == chroma.Yes {
		style = style.Bold(true)
	}
	if entry.Italic == chroma.Yes {
		style = style.Italic(true)
	}
	if entry.Underline == chroma.Yes {
		style = style.Underline(true)
	}

	sh.cacheMutex.Lock()
	sh.styleCache[tokenType] = style
	sh.cacheMutex.Unlock()

	return style
}
