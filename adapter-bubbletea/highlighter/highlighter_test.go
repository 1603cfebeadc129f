package highlighter

import (
	"testing"

	"github.com/alecthomas/chroma/v2"
	"github.com/stretchr/testify/assert"
)

func TestTokenType(t *testing.T) {
	tests := []struct {
		class string
		want  chroma.TokenType
		ok    bool
	}{
		{class: "chroma-kd", want: chroma.KeywordDeclaration, ok: true},
		{class: "chroma-s", want: chroma.LiteralString, ok: true},
		{class: "chroma-c1", want: chroma.CommentSingle, ok: true},
		{class: "kd", ok: false},
		{class: "chroma-nope", ok: false},
		{class: "heading-1", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.class, func(t *testing.T) {
			got, ok := TokenType(tt.class)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestStyleForClass(t *testing.T) {
	h := New("monokai")

	style, ok := h.StyleForClass("chroma-kd")
	assert.True(t, ok)
	assert.NotNil(t, style.GetForeground())

	_, ok = h.StyleForClass("list-item")
	assert.False(t, ok)
}

func TestGetStyleForToken_Cached(t *testing.T) {
	h := New("does-not-exist")

	first := h.GetStyleForToken(chroma.Keyword)
	h.GetStyleForToken(chroma.Keyword)

	assert.Len(t, h.styleCache, 1)
	assert.Equal(t, first.GetBold(), h.GetStyleForToken(chroma.Keyword).GetBold())
}
