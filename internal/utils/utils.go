package utils

import (
	"bufio"
	"math/rand/v2"
	"mime"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// ReadUniqueLinesFromFile reads a text file and returns its unique non-empty
// lines in first-seen order. Playlist list files are fed through this, so
// duplicates and blank separator lines are dropped here rather than at every
// call site.
func ReadUniqueLinesFromFile(path string) ([]string, error) {
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	defer file.Close() //nolint:errcheck // Error on close is not critical here.

	var (
		seen    = make(map[string]struct{})
		lines   []string
		scanner = bufio.NewScanner(file)
	)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if _, exists := seen[line]; !exists {
			seen[line] = struct{}{}

			lines = append(lines, line)
		}
	}

	if err = scanner.Err(); err != nil {
		return nil, err
	}

	return lines, nil
}

// ExtractNamedGroup extracts the value of a named capturing group from a regex match.
// It returns an empty string if the group is not found or if there is no match.
func ExtractNamedGroup(re *regexp.Regexp, groupName, input string) string {
	match := re.FindStringSubmatch(input)
	if match == nil {
		return ""
	}

	for i, name := range re.SubexpNames() {
		if name == groupName {
			return match[i]
		}
	}

	return ""
}

// Map applies a transformation function to each element of a slice and returns a new slice with the results.
func Map[E, S any](v []E, transformFunc func(E) S) []S {
	result := make([]S, len(v))
	for i := range v {
		result[i] = transformFunc(v[i])
	}

	return result
}

// textContentTypePatterns matches content types whose bodies are safe to dump
// into logs. The catalog APIs answer with plain or suffixed JSON media types.
//
//nolint:gochecknoglobals // These are immutable, pre-compiled regex patterns and used as constants.
var textContentTypePatterns = []*regexp.Regexp{
	regexp.MustCompile("^text/.+"),
	regexp.MustCompile("^application/json$"),
	regexp.MustCompile(`^application/.+\+json$`),
}

// IsTextContentType checks if the given content type represents a text-based format.
// It also checks that the charset, if present, is either "utf-8" or "us-ascii".
func IsTextContentType(contentType string) bool {
	parsedType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	for _, pattern := range textContentTypePatterns {
		if !pattern.MatchString(parsedType) {
			continue
		}

		charset := strings.ToLower(params["charset"])

		return charset == "" || charset == "utf-8" || charset == "us-ascii"
	}

	return false
}

// RandomPause pauses execution for a random duration between the two bounds.
// Batch mutations against the target catalog are jittered with this to avoid
// hammering the API in lockstep.
func RandomPause(minPause, maxPause time.Duration) {
	if minPause > maxPause {
		minPause, maxPause = maxPause, minPause
	}

	// rand.Int64N panics on a zero span.
	span := int64(maxPause - minPause)
	if span <= 0 {
		time.Sleep(minPause)

		return
	}

	//nolint:gosec // math/rand/v2 is secure.
	time.Sleep(minPause + time.Duration(rand.Int64N(span)))
}
