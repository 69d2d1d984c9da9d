package ui

import (
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"
)

// Sanitize strips runes that terminals render unpredictably: emoji and other
// symbol runes, surrogates, private-use and unassigned code points, variation
// selectors, and zero-width or directional marks. Catalog metadata is full of
// them and a single misjudged width tears the whole frame.
func Sanitize(s string) string {
	var b strings.Builder

	b.Grow(len(s))

	for _, r := range s {
		switch {
		case r >= '︀' && r <= '️':
			// Variation selectors modify the preceding rune's width.
			continue
		case r >= '​' && r <= '‏':
			// Zero-width runes and directional marks.
			continue
		case !unicode.IsGraphic(r):
			// Covers controls, surrogates, private use, unassigned.
			continue
		case unicode.In(r, unicode.So, unicode.Sk):
			continue
		}

		b.WriteRune(r)
	}

	return b.String()
}

// Truncate fits s into the given number of terminal cells, replacing the
// overflow with an ellipsis. Widths are display cells, not runes, so
// double-width scripts survive.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}

	if runewidth.StringWidth(s) <= width {
		return s
	}

	return runewidth.Truncate(s, width, "…")
}

// cell sanitizes and truncates in one step. Every user-controlled string
// rendered by the view goes through it.
func cell(s string, width int) string {
	return Truncate(Sanitize(s), width)
}
