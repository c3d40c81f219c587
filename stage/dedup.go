package stage

import (
	"strings"
	"unicode"

	"github.com/agext/levenshtein"
)

// duplicateThreshold is the normalized similarity at or above which two
// questions count as duplicates.
const duplicateThreshold = 0.85

// NormalizeQuestion canonicalizes question text for similarity comparison:
// case-folded, punctuation stripped, whitespace collapsed.
func NormalizeQuestion(q string) string {
	var b strings.Builder
	b.Grow(len(q))
	lastSpace := true
	for _, r := range strings.ToLower(q) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case unicode.IsSpace(r):
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// Similarity returns the normalized Levenshtein similarity of two already
// normalized strings, in [0, 1].
func Similarity(a, b string) float64 {
	return levenshtein.Similarity(a, b, nil)
}

// IsDuplicate reports whether candidate is a near-duplicate of any
// previously asked question.
func IsDuplicate(candidate string, asked []string) bool {
	normalized := NormalizeQuestion(candidate)
	if normalized == "" {
		return true
	}
	for _, prior := range asked {
		if Similarity(normalized, NormalizeQuestion(prior)) >= duplicateThreshold {
			return true
		}
	}
	return false
}
