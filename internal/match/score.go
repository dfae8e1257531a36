package match

import (
	"sort"
	"strings"
	"unicode"
)

// Score rates how similar a free-form mention is to a catalog product name,
// on a 0–100 scale where 100 means the normalized strings are identical.
//
// The score is the better of two normalized edit ratios: one over the strings
// as written, one with their tokens sorted. The token-sorted variant tolerates
// reordered words ("X1 ThinkPad") while still penalizing extra words, so a
// whole sentence containing a product name cannot outscore the exact mention.
func Score(mention, name string) float64 {
	a := Normalize(mention)
	b := Normalize(name)

	plain := editRatio(a, b)
	sorted := editRatio(sortTokens(a), sortTokens(b))

	best := plain
	if sorted > best {
		best = sorted
	}
	return best * 100
}

// BestMatch scores a mention against every choice and returns the best
// choice with its score. When scores tie, the earliest choice wins; callers
// pass choices in sorted order to keep results deterministic.
func BestMatch(mention string, choices []string) (string, float64) {
	bestName := ""
	bestScore := -1.0
	for _, choice := range choices {
		if s := Score(mention, choice); s > bestScore {
			bestName = choice
			bestScore = s
		}
	}
	return bestName, bestScore
}

// Normalize prepares a string for similarity comparison: lowercase, with
// every run of non-alphanumeric characters collapsed to a single space.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	pendingSpace := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
		} else {
			pendingSpace = true
		}
	}
	return b.String()
}

// editRatio returns 1 - distance/maxLen, the normalized similarity of two
// strings. Two empty strings are identical.
func editRatio(a, b string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	return 1.0 - float64(Levenshtein(a, b))/float64(maxLen)
}

// sortTokens rebuilds a normalized string with its words in sorted order.
func sortTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}
