package migration

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	bracketedSegmentPattern = regexp.MustCompile(`\([^)]*\)|\[[^\]]*\]`)
	featuredCreditPattern   = regexp.MustCompile(`\b(?:feat\.?|ft\.?|featuring)\b.*$`)
	yearRemasterPattern     = regexp.MustCompile(`(?:^|\s)\d{4} remaster(?:ed)?$`)
	remixWordPattern        = regexp.MustCompile(`(?i)\bremix\b`)
	whitespaceRunPattern    = regexp.MustCompile(`\s+`)
	artistSeparatorPattern  = regexp.MustCompile(`,|&|\s+vs\.\s+|\s+vs\s+|\s+[xX]\s+`)
)

// versionSuffixes are trailing qualifiers dropped during normalization.
// Compound suffixes come before their prefixes so "deluxe edition" strips
// whole instead of leaving "deluxe" behind a second pass.
var versionSuffixes = []string{
	"original mix",
	"extended version",
	"extended mix",
	"radio edit",
	"radio mix",
	"club mix",
	"dub mix",
	"vip mix",
	"bootleg",
	"remastered",
	"remaster",
	"deluxe edition",
	"deluxe",
	"bonus track",
	"album version",
	"single version",
	"live version",
	"acoustic version",
	"instrumental",
	"live",
	"acoustic",
}

// NormalizeTitle reduces a track title to a comparable form: lower-cased,
// bracketed segments and featured-artist credits removed, everything after
// the first " - " dropped, trailing version qualifiers stripped, then
// NFKD-decomposed with only letters, digits, and single spaces kept.
func NormalizeTitle(title string) string {
	return normalizeText(title, false)
}

// NormalizeTitleASCII is NormalizeTitle with non-ASCII runes dropped as well.
// It is the retry pass for titles whose scripts differ between catalogs.
func NormalizeTitleASCII(title string) string {
	return normalizeText(title, true)
}

func normalizeText(text string, asciiOnly bool) string {
	result := strings.ToLower(strings.TrimSpace(text))
	result = bracketedSegmentPattern.ReplaceAllString(result, " ")

	if index := strings.Index(result, " - "); index >= 0 {
		result = result[:index]
	}

	result = featuredCreditPattern.ReplaceAllString(result, "")
	result = collapseWhitespace(result)
	result = stripVersionSuffixes(result)
	result = norm.NFKD.String(result)
	result = filterRunes(result, asciiOnly)

	return collapseWhitespace(result)
}

// stripVersionSuffixes repeatedly removes trailing version qualifiers until
// none apply, so stacked qualifiers like "radio edit remastered" disappear.
func stripVersionSuffixes(text string) string {
	for {
		text = strings.TrimSpace(text)
		stripped := yearRemasterPattern.ReplaceAllString(text, "")

		if stripped == text {
			for _, suffix := range versionSuffixes {
				if text == suffix {
					stripped = ""
					break
				}

				if strings.HasSuffix(text, " "+suffix) {
					stripped = text[:len(text)-len(suffix)-1]
					break
				}
			}
		}

		if stripped == text {
			return text
		}

		text = stripped
	}
}

// filterRunes keeps letters, digits, and spaces. NFKD decomposition has
// already split accented runes, so dropping combining marks here reduces
// "é" to "e" rather than losing the letter.
func filterRunes(text string, asciiOnly bool) string {
	var builder strings.Builder

	builder.Grow(len(text))

	for _, r := range text {
		if asciiOnly && r > unicode.MaxASCII {
			continue
		}

		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' {
			builder.WriteRune(r)
		}
	}

	return builder.String()
}

func collapseWhitespace(text string) string {
	return strings.TrimSpace(whitespaceRunPattern.ReplaceAllString(text, " "))
}

// SplitArtists splits collaboration credits on the separators catalogs use
// for joint billings and normalizes each part. Empty parts are dropped.
func SplitArtists(artists []string) []string {
	var parts []string

	for _, artist := range artists {
		for _, part := range artistSeparatorPattern.Split(artist, -1) {
			normalized := NormalizeTitle(part)
			if normalized == "" {
				continue
			}

			parts = append(parts, normalized)
		}
	}

	return parts
}

// HasRemix reports whether a title names a remix. It inspects the raw title:
// normalization drops bracketed qualifiers, which is exactly where remix
// credits usually live.
func HasRemix(title string) bool {
	return remixWordPattern.MatchString(title)
}

// firstSignificantWord returns the first word of a normalized title that is
// at least three runes long, falling back to the first word.
func firstSignificantWord(normalizedTitle string) string {
	words := strings.Fields(normalizedTitle)
	if len(words) == 0 {
		return ""
	}

	const minSignificantLength = 3

	for _, word := range words {
		if len([]rune(word)) >= minSignificantLength {
			return word
		}
	}

	return words[0]
}
