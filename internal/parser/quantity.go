package parser

import (
	"regexp"
	"strconv"
)

// numberWord maps a spelled-out quantity to its value. The table is ordered
// by descending phrase length so multi-word phrases are checked before their
// substrings ("a dozen" before "dozen", "dozen" before any digit heuristic).
type numberWord struct {
	re    *regexp.Regexp
	value int
}

var numberWords = []numberWord{
	{regexp.MustCompile(`(?i)\ba couple\b`), 2},
	{regexp.MustCompile(`(?i)\ba dozen\b`), 12},
	{regexp.MustCompile(`(?i)\bthree\b`), 3},
	{regexp.MustCompile(`(?i)\bseven\b`), 7},
	{regexp.MustCompile(`(?i)\beight\b`), 8},
	{regexp.MustCompile(`(?i)\bdozen\b`), 12},
	{regexp.MustCompile(`(?i)\bfour\b`), 4},
	{regexp.MustCompile(`(?i)\bfive\b`), 5},
	{regexp.MustCompile(`(?i)\bnine\b`), 9},
	{regexp.MustCompile(`(?i)\bone\b`), 1},
	{regexp.MustCompile(`(?i)\btwo\b`), 2},
	{regexp.MustCompile(`(?i)\bsix\b`), 6},
	{regexp.MustCompile(`(?i)\bten\b`), 10},
}

var digitsRe = regexp.MustCompile(`\b\d+\b`)

// ParseQuantity extracts a quantity from a text window, preferring number
// words over bare digits. Returns nil when the window holds neither.
func ParseQuantity(text string) *int {
	for _, w := range numberWords {
		if w.re.MatchString(text) {
			v := w.value
			return &v
		}
	}

	if m := digitsRe.FindString(text); m != "" {
		if v, err := strconv.Atoi(m); err == nil {
			return &v
		}
	}

	return nil
}
