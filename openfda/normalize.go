package openfda

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
)

// Label text arrives with SPL markup fragments embedded in it.
var tagPattern = regexp.MustCompile(`<[^>]+>`)

// CleanText strips angle-bracket markup and collapses all whitespace runs,
// including newlines, into single spaces. The result is trimmed. The
// function is idempotent: cleaning already-clean text is a no-op.
func CleanText(text string) string {
	if text == "" {
		return ""
	}
	text = tagPattern.ReplaceAllString(text, " ")
	return strings.Join(strings.Fields(text), " ")
}

// firstOf returns the first element of a list-valued field, or nil when
// the field is absent or empty.
func firstOf(values []string) *string {
	if len(values) == 0 {
		return nil
	}
	return &values[0]
}

// firstCleaned returns the first element normalized with CleanText, or nil
// when the field is absent. A present-but-blank value stays a non-nil
// empty string.
func firstCleaned(values []string) *string {
	if len(values) == 0 {
		return nil
	}
	cleaned := CleanText(values[0])
	return &cleaned
}

// dedupKey builds the case-folded brand|generic pair used to drop
// duplicate entries within one search batch.
func dedupKey(brand, generic *string) string {
	return cases.Fold().String(deref(brand) + "|" + deref(generic))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
