// Copyright © 2026 Horizon Contributors
// Use is governed by a BSD-style license found in the LICENSE file.

package poi

import "sort"

// DefaultLineHeight and DefaultMargin are the label stack's vertical pitch
// in pixels.
const (
	DefaultLineHeight = 14
	DefaultMargin     = 4
)

// LabelLayout staggers overlapping POI labels into vertically offset rows.
type LabelLayout struct {
	LineHeight int
	Margin     int
}

// NewLabelLayout returns a LabelLayout with the default line pitch.
func NewLabelLayout() *LabelLayout {
	return &LabelLayout{LineHeight: DefaultLineHeight, Margin: DefaultMargin}
}

// TextWidth measures the pixel width of a label string. Satisfied by
// poi.MeasureText (package-level default) or any caller-supplied face
// measurement.
type TextWidth func(name string) int

// Layout assigns LabelY to every active POI in pois, leaving inactive POIs
// untouched. Running Layout twice on the same inputs yields identical
// results: it only reads DrawX/Active/Name and writes LabelY.
func (l *LabelLayout) Layout(pois []*POI, width TextWidth, viewportHeightPx int) {
	ordered := make([]*POI, len(pois))
	copy(ordered, pois)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.Active != b.Active {
			return a.Active // active POIs sort before inactive ones.
		}
		return a.DrawX < b.DrawX
	})

	currentY := 0
	overlapGroupRight := -1 << 31 // effectively -infinity: the first label always starts a group.
	for _, p := range ordered {
		if !p.Active {
			continue
		}
		labelLeft := p.DrawX
		labelRight := p.DrawX + width(p.Name)

		if labelLeft > overlapGroupRight || currentY+l.LineHeight+l.Margin > viewportHeightPx {
			currentY = 0
			overlapGroupRight = labelRight
		} else if labelRight > overlapGroupRight {
			overlapGroupRight = labelRight
		}

		currentY += l.LineHeight + l.Margin
		p.LabelY = currentY
	}
}
