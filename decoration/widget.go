package decoration

import "slices"

// imageRef is one ![alt](url) occurrence, in rune columns of the scanned text.
type imageRef struct {
	Alt, URL   string
	Start, End int
}

// scanImages finds image references left to right without overlap. The alt
// text runs to the first ']' which must be followed directly by '('; the URL
// runs to the first ')'. Every rune is visited a bounded number of times.
func scanImages(line []rune) []imageRef {
	var refs []imageRef

	i := 0
	for i+1 < len(line) {
		if line[i] != '!' || line[i+1] != '[' {
			i++
			continue
		}

		altStart := i + 2
		closeAlt := slices.Index(line[altStart:], ']')
		if closeAlt < 0 {
			return refs
		}
		closeAlt += altStart

		if closeAlt+1 >= len(line) || line[closeAlt+1] != '(' {
			// Any candidate starting before closeAlt would stop at the same ']'.
			i = closeAlt + 1
			continue
		}

		urlStart := closeAlt + 2
		closeURL := slices.Index(line[urlStart:], ')')
		if closeURL < 0 {
			return refs
		}
		closeURL += urlStart

		refs = append(refs, imageRef{
			Alt:   string(line[altStart:closeAlt]),
			URL:   string(line[urlStart:closeURL]),
			Start: i,
			End:   closeURL + 1,
		})
		i = closeURL + 1
	}

	return refs
}

// synthesizeWidgets scans the visible ranges for image references and anchors
// one widget per match at the end of the line holding it.
func synthesizeWidgets(snap *Snapshot, visible []Range) []Decoration {
	var out []Decoration
	for _, r := range mergeRanges(visible, snap.Len()) {
		first, end := snap.LinesOf(r)
		for line := first; line < end; line++ {
			lr := snap.LineRange(line)
			from := max(lr.From, r.From) - lr.From
			to := min(lr.To, r.To) - lr.From
			if to-from < len("![]()") {
				continue
			}
			runes := []rune(snap.Line(line))[from:to]
			for _, ref := range scanImages(runes) {
				out = append(out, widgetDecoration(lr.To, ref.URL, ref.Alt))
			}
		}
	}
	return out
}

// mergeRanges clamps ranges to [0, length], sorts them and joins overlapping
// or touching ones.
func mergeRanges(ranges []Range, length int) []Range {
	clamped := make([]Range, 0, len(ranges))
	for _, r := range ranges {
		r.From = min(max(r.From, 0), length)
		r.To = min(max(r.To, 0), length)
		if !r.Empty() {
			clamped = append(clamped, r)
		}
	}
	slices.SortFunc(clamped, func(a, b Range) int { return a.From - b.From })

	var merged []Range
	for _, r := range clamped {
		if n := len(merged); n > 0 && r.From <= merged[n-1].To {
			merged[n-1].To = max(merged[n-1].To, r.To)
			continue
		}
		merged = append(merged, r)
	}
	return merged
}
