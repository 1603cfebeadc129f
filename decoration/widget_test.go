package decoration

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanImages(t *testing.T) {
	tests := []struct {
		line string
		want []imageRef
	}{
		{"![alt](http://x/y.png) trailing", []imageRef{{Alt: "alt", URL: "http://x/y.png", Start: 0, End: 22}}},
		{"text ![x](y) z", []imageRef{{Alt: "x", URL: "y", Start: 5, End: 12}}},
		{"![a](u)![b](v)", []imageRef{{Alt: "a", URL: "u", Start: 0, End: 7}, {Alt: "b", URL: "v", Start: 7, End: 14}}},
		{"![](u)", []imageRef{{Alt: "", URL: "u", Start: 0, End: 6}}},
		{"!![a](u)", []imageRef{{Alt: "a", URL: "u", Start: 1, End: 8}}},
		{"![a](b)c)", []imageRef{{Alt: "a", URL: "b", Start: 0, End: 7}}},
		{"![x![y](u)", []imageRef{{Alt: "x![y", URL: "u", Start: 0, End: 10}}},
		{"![a]b](u)", nil},
		{"![a] (u)", nil},
		{"![a](u", nil},
		{"![a](", nil},
		{"![a", nil},
		{"[a](u)", nil},
		{"", nil},
		{"![ä](ü.png)", []imageRef{{Alt: "ä", URL: "ü.png", Start: 0, End: 11}}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, scanImages([]rune(tt.line)))
		})
	}
}

func TestScanImages_AdversarialInput(t *testing.T) {
	line := []rune(strings.Repeat("![", 20000) + strings.Repeat("](", 20000))
	assert.Empty(t, scanImages(line))

	line = []rune(strings.Repeat("![a](", 20000))
	assert.Empty(t, scanImages(line))
}

func TestSynthesizeWidgets_AnchorsAtLineEnd(t *testing.T) {
	snap := NewSnapshot("![alt](http://x/y.png) trailing")

	widgets := synthesizeWidgets(snap, []Range{{From: 0, To: snap.Len()}})

	require.Len(t, widgets, 1)
	w := widgets[0]
	assert.Equal(t, KindWidget, w.Kind)
	assert.Equal(t, "http://x/y.png", w.Payload.URL)
	assert.Equal(t, "alt", w.Payload.Alt)
	assert.Equal(t, Range{From: 31, To: 31}, w.Range)
	assert.Equal(t, snap.LineEnd(0), w.Range.From)
}

func TestSynthesizeWidgets_OnlyVisibleRanges(t *testing.T) {
	lines := []string{"![top](a.png)", "", "", "", "middle", "![bottom](b.png)"}
	snap := NewSnapshot(strings.Join(lines, "\n"))

	visible := []Range{{From: snap.LineStart(4), To: snap.LineEnd(5)}}
	widgets := synthesizeWidgets(snap, visible)

	require.Len(t, widgets, 1)
	assert.Equal(t, "b.png", widgets[0].Payload.URL)
	assert.Equal(t, snap.LineEnd(5), widgets[0].Range.From)
}

func TestSynthesizeWidgets_NoCrossLineMatch(t *testing.T) {
	snap := NewSnapshot("![a](\nu)")

	assert.Empty(t, synthesizeWidgets(snap, []Range{{From: 0, To: snap.Len()}}))
}

func TestSynthesizeWidgets_MultipleOnOneLine(t *testing.T) {
	snap := NewSnapshot("x\n![a](1) ![b](2)")

	widgets := synthesizeWidgets(snap, []Range{{From: 0, To: snap.Len()}})

	require.Len(t, widgets, 2)
	for _, w := range widgets {
		assert.Equal(t, snap.LineEnd(1), w.Range.From)
	}
}

func TestMergeRanges(t *testing.T) {
	got := mergeRanges([]Range{{10, 20}, {-5, 3}, {15, 30}, {30, 40}, {50, 60}, {7, 7}}, 55)

	assert.Equal(t, []Range{{0, 3}, {10, 40}, {50, 55}}, got)
}
