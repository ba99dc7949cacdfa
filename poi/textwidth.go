// Copyright © 2026 Horizon Contributors
// Use is governed by a BSD-style license found in the LICENSE file.

package poi

import (
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/text/width"
)

// defaultFace is a fixed bitmap face, the same kind of "measure each glyph's
// advance" approach the teacher's font.go uses for its bitmap char set, just
// sourced from the standard library's image/font ecosystem instead of a
// hand-rolled .fnt loader.
var defaultFace = basicfont.Face7x13

// MeasureText returns the label width in pixels for name, used as the
// default poi.TextWidth. East-Asian fullwidth and wide runes are counted
// as occupying two glyph cells, since the monospace ASCII bitmap face has
// no CJK glyphs of its own but place names may still contain them.
func MeasureText(name string) int {
	px := 0
	for _, r := range name {
		adv := font.MeasureString(defaultFace, string(r)).Round()
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			px += 2 * adv
		default:
			px += adv
		}
	}
	return px
}
