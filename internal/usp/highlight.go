package usp

import (
	"sort"
	"strings"
)

// Span marks a trigger-keyword occurrence in the original text, byte
// offsets, for UI emphasis.
type Span struct {
	Start    int    `json:"start"`
	End      int    `json:"end"`
	Category string `json:"category"`
}

// HighlightSpans locates every taxonomy keyword occurrence in text and
// returns merged, ordered spans. Overlapping matches merge into one span
// keeping the earlier match's category.
func (d *Dictionary) HighlightSpans(text string) []Span {
	lower := strings.ToLower(text)
	spans := []Span{}

	for _, cat := range d.Taxonomy {
		for _, kw := range cat.Keywords {
			lkw := strings.ToLower(kw)
			if lkw == "" {
				continue
			}
			for from := 0; ; {
				idx := strings.Index(lower[from:], lkw)
				if idx < 0 {
					break
				}
				start := from + idx
				spans = append(spans, Span{Start: start, End: start + len(lkw), Category: cat.Name})
				from = start + len(lkw)
			}
		}
	}

	if len(spans) == 0 {
		return spans
	}

	sort.Slice(spans, func(i, j int) bool {
		if spans[i].Start != spans[j].Start {
			return spans[i].Start < spans[j].Start
		}
		return spans[i].End > spans[j].End
	})

	merged := spans[:1]
	for _, s := range spans[1:] {
		last := &merged[len(merged)-1]
		if s.Start <= last.End {
			if s.End > last.End {
				last.End = s.End
			}
			continue
		}
		merged = append(merged, s)
	}
	return merged
}
