package decoration

import "strings"

const fenceToken = "```"

// FencedBlock is the interior [Start, End) of a fenced code block, in lines.
// Open and Close are the fence lines; Close is -1 when the block runs to the
// end of the document.
type FencedBlock struct {
	Start, End int
	Open       int
	Close      int
	Language   string
}

func (b FencedBlock) Terminated() bool { return b.Close >= 0 }

func (b FencedBlock) Contains(line int) bool {
	return line >= b.Start && line < b.End
}

type FenceScan struct {
	Blocks  []FencedBlock
	Markers []bool
}

// BlockAt returns the block whose interior holds line.
func (f FenceScan) BlockAt(line int) (FencedBlock, bool) {
	for _, b := range f.Blocks {
		if b.Contains(line) {
			return b, true
		}
		if b.Start > line {
			break
		}
	}
	return FencedBlock{}, false
}

func (f FenceScan) IsMarker(line int) bool {
	return line >= 0 && line < len(f.Markers) && f.Markers[line]
}

// ScanFences classifies lines in one forward pass. A line whose trimmed text
// starts with three backticks toggles between outside and inside a block; the
// rest of the opening fence is the language tag. Nested or quoted fences are
// not recognised.
func ScanFences(lines []string) FenceScan {
	scan := FenceScan{Markers: make([]bool, len(lines))}

	var (
		inside  bool
		current FencedBlock
	)
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, fenceToken) {
			continue
		}
		scan.Markers[i] = true

		if !inside {
			current = FencedBlock{
				Start:    i + 1,
				Open:     i,
				Close:    -1,
				Language: strings.TrimSpace(trimmed[len(fenceToken):]),
			}
			inside = true
			continue
		}

		current.End = i
		current.Close = i
		scan.Blocks = append(scan.Blocks, current)
		inside = false
	}

	if inside {
		current.End = len(lines)
		scan.Blocks = append(scan.Blocks, current)
	}

	return scan
}

func fenceDecorations(snap *Snapshot, scan FenceScan) []Decoration {
	var out []Decoration
	for i, marker := range scan.Markers {
		if marker {
			out = append(out, lineDecoration(snap.LineRange(i), ClassFenceMarker))
		}
	}
	for _, b := range scan.Blocks {
		for line := b.Start; line < b.End; line++ {
			d := lineDecoration(snap.LineRange(line), ClassCodeBlock)
			d.Payload.Language = b.Language
			out = append(out, d)
		}
	}
	return out
}
