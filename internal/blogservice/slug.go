package blogservice

import (
	"regexp"
	"strings"
)

// spaceClass is the whitespace a title may carry: ASCII whitespace including \v,
// every Unicode separator, and the byte order mark.
const spaceClass = `\s\v\p{Z}\x{FEFF}`

var (
	nonSlugRX    = regexp.MustCompile(`[^\w` + spaceClass + `]`)
	whitespaceRX = regexp.MustCompile(`[` + spaceClass + `]+`)
)

// Slugify derives the URL slug for a title: lower-case it, drop every character
// that is neither a word character nor whitespace, then join the remaining words
// with single hyphens. "Hello, World! 2024" becomes "hello-world-2024".
func Slugify(title string) string {
	s := strings.ToLower(title)
	s = nonSlugRX.ReplaceAllString(s, "")
	s = whitespaceRX.ReplaceAllString(s, "-")
	// only whitespace produces hyphens at this point
	return strings.Trim(s, "-")
}

// normalizeTags trims every tag and drops the empty ones, keeping the original order.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

// ParseTags splits a comma separated tag list as typed into the editor.
func ParseTags(s string) []string {
	return normalizeTags(strings.Split(s, ","))
}
