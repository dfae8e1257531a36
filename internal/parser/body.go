package parser

import (
	"regexp"
	"strings"
)

var (
	signOffRe     = regexp.MustCompile(`(?i)\b(Best regards|Sincerely|Thank you|Thanks|Cheers|Regards|Best)\b`)
	salutationRe  = regexp.MustCompile(`(?i)^(Dear|Hi|Hello)\b`)
	headerLineRe  = regexp.MustCompile(`(?i)^(From|To|Subject|Date|Sent):`)
	quotedReplyRe = regexp.MustCompile(`^>`)
)

// CleanBody strips an inquiry body down to the text worth matching against
// the catalog: quoted replies are dropped, everything from the first sign-off
// onward is cut, the greeting line and any residual forwarded headers are
// removed.
func CleanBody(text string) string {
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		if quotedReplyRe.MatchString(strings.TrimSpace(line)) {
			continue
		}
		kept = append(kept, line)
	}
	text = strings.Join(kept, "\n")

	if loc := signOffRe.FindStringIndex(text); loc != nil {
		text = text[:loc[0]]
	}

	lines := strings.Split(text, "\n")
	start := 0
	for i, line := range lines {
		if salutationRe.MatchString(strings.TrimSpace(line)) {
			start = i + 1
			break
		}
	}

	var body []string
	for _, line := range lines[start:] {
		if headerLineRe.MatchString(strings.TrimSpace(line)) {
			continue
		}
		body = append(body, line)
	}

	return strings.TrimSpace(strings.Join(body, "\n"))
}
