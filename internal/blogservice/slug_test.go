package blogservice

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	testCases := []struct {
		name  string
		title string
		want  string
	}{
		{name: "punctuation and digits", title: "Hello, World! 2024", want: "hello-world-2024"},
		{name: "whitespace runs", title: "Threat   Intel\t\tWeekly", want: "threat-intel-weekly"},
		{name: "surrounding whitespace", title: "  OSINT basics  ", want: "osint-basics"},
		{name: "hyphen in title", title: "Zero-Day Markets", want: "zeroday-markets"},
		{name: "spaced hyphen", title: "Red - Blue", want: "red-blue"},
		{name: "underscore is a word character", title: "snake_case Title", want: "snake_case-title"},
		{name: "non ascii letters are dropped", title: "Café Sécurité", want: "caf-scurit"},
		{name: "only punctuation", title: "?!", want: ""},
		{name: "non-breaking space", title: "Hello\u00a0World", want: "hello-world"},
		{name: "vertical tab", title: "Hello\vWorld", want: "hello-world"},
		{name: "ideographic and em spaces", title: "Threat\u3000Intel\u2003Weekly", want: "threat-intel-weekly"},
		{name: "line separator and bom", title: "\ufeffRed\u2028Team\u00a0", want: "red-team"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Slugify(tc.title))
		})
	}
}

func TestSlugify_Shape(t *testing.T) {
	shape := regexp.MustCompile(`^[a-z0-9_]+(-[a-z0-9_]+)*$`)

	titles := []string{
		"Understanding Digital Footprints: What You Leave Behind Online",
		"The Rise of OSINT in Corporate Due Diligence",
		"  a \n\n b  ",
		"Q3 2024 -- Ransomware & Extortion Report (Final)",
	}

	for _, title := range titles {
		slug := Slugify(title)
		assert.Regexp(t, shape, slug, "title %q", title)
	}
}

func TestParseTags(t *testing.T) {
	assert.Equal(t, []string{"OSINT", "due diligence", "risk"}, ParseTags(" OSINT, due diligence,, risk ,"))
	assert.Equal(t, []string{}, ParseTags(""))
}
