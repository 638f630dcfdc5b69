// Package sanitize cleans raw report text before it is embedded in a model
// prompt. The transformations strip content that could be read as instructions
// by the model (role markers, code fences, markup tags) and bound the input
// size. Clean is deterministic, pure, and idempotent.
package sanitize

import (
	"regexp"
	"strings"
)

// MaxLength is the hard cap on sanitized input, in characters. Longer input
// is prefix-truncated with no word-boundary awareness.
const MaxLength = 4096

// Pre-compiled patterns; compiling per call is needlessly slow on hot paths.
var (
	roleMarkerRegex = regexp.MustCompile(`(?i)(system|assistant|user)\s*:`)
	codeFenceRegex  = regexp.MustCompile("```[\\s\\S]*?```")
	tagRegex        = regexp.MustCompile(`<[^>]+>`)
	newlineRunRegex = regexp.MustCompile(`\n{3,}`)
)

// Clean sanitizes raw input text. Transformations, in order: strip role
// markers, drop fenced code blocks entirely, strip angle-bracket tags while
// keeping their inner text, collapse runs of 3+ newlines to 2, trim
// surrounding whitespace, and truncate to MaxLength characters.
// Empty input returns empty output.
func Clean(text string) string {
	if text == "" {
		return ""
	}

	s := roleMarkerRegex.ReplaceAllString(text, "")
	s = codeFenceRegex.ReplaceAllString(s, "")
	s = tagRegex.ReplaceAllString(s, "")
	s = newlineRunRegex.ReplaceAllString(s, "\n\n")
	s = strings.TrimSpace(s)

	if runes := []rune(s); len(runes) > MaxLength {
		// Trim again in case the cut landed inside trailing whitespace,
		// which would otherwise break idempotence.
		s = strings.TrimSpace(string(runes[:MaxLength]))
	}

	return s
}
