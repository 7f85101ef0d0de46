package security

import (
	"html"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

// SanitizeText strips markup and control characters from free text before
// it is stored. Descriptions and names end up in PDF reports and clients
// that may render them.
func SanitizeText(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || r == ' ' {
			return r
		}
		if unicode.IsSpace(r) {
			return ' '
		}
		return -1
	}, s)
	// the policy escapes entities; store plain text instead
	plain := html.UnescapeString(strictPolicy.Sanitize(s))
	return strings.TrimSpace(angleBrackets.Replace(plain))
}

var angleBrackets = strings.NewReplacer("<", "", ">", "")
