package utils

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	richPolicy  = bluemonday.UGCPolicy()
	plainPolicy = bluemonday.StrictPolicy()
)

// Sanitize cleans HTML content to prevent XSS attacks, keeping safe formatting.
func Sanitize(input string) string {
	return richPolicy.Sanitize(input)
}

const maxSanitizePasses = 4

// SanitizeText strips all markup from a plain-text field and trims it.
// Entities are decoded so "&" stays "&", and the policy runs again on the
// decoded text until it is stable, so entity-encoded tags are stripped too.
// Input that has not settled after maxSanitizePasses is returned escaped.
func SanitizeText(input string) string {
	out := input
	for i := 0; i < maxSanitizePasses; i++ {
		next := html.UnescapeString(plainPolicy.Sanitize(out))
		if next == out {
			return strings.TrimSpace(out)
		}
		out = next
	}
	return strings.TrimSpace(plainPolicy.Sanitize(out))
}
