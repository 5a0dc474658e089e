// Package citations turns citation display text inside a body into
// markdown links.
package citations

import (
	"fmt"
	"strings"

	"github.com/imageone/agentpress/internal/domain"
)

// Link replaces every literal occurrence of each url citation's display
// text in body with a markdown link to the citation's URL. Matching is
// literal substring matching; citation text is never interpreted as a
// pattern. Occurrences inside an existing markdown link are left alone,
// which makes Link idempotent.
func Link(body string, cits []domain.Citation) string {
	for _, c := range cits {
		if c.Kind != domain.CitationKindURL || c.URL == "" || c.DisplayText == "" {
			continue
		}
		title := c.Title
		if title == "" {
			title = "Source"
		}
		replacement := fmt.Sprintf("[%s](%s %q)", c.DisplayText, c.URL, title)
		body = replaceOutsideLinks(body, c.DisplayText, replacement)
	}
	return body
}

// Unlinked returns the citations that cannot be rendered as inline links
// and should be listed separately.
func Unlinked(cits []domain.Citation) []domain.Citation {
	var out []domain.Citation
	for _, c := range cits {
		if c.Kind != domain.CitationKindURL {
			out = append(out, c)
		}
	}
	return out
}

// AppendUnlinked appends the citations Link cannot render inline as a
// plain reference list at the end of body. With no such citations, body
// is returned unchanged.
func AppendUnlinked(body string, cits []domain.Citation) string {
	rest := Unlinked(cits)
	if len(rest) == 0 {
		return body
	}
	var b strings.Builder
	b.WriteString(body)
	b.WriteString("\n\n参考資料:\n")
	for _, c := range rest {
		b.WriteString("- ")
		b.WriteString(c.DisplayText)
		if c.Title != "" {
			b.WriteString(" (")
			b.WriteString(c.Title)
			b.WriteString(")")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// replaceOutsideLinks replaces occurrences of old with replacement,
// skipping any occurrence that overlaps an existing markdown link.
func replaceOutsideLinks(body, old, replacement string) string {
	ranges := linkRanges(body)

	var b strings.Builder
	pos := 0
	for {
		i := strings.Index(body[pos:], old)
		if i < 0 {
			b.WriteString(body[pos:])
			break
		}
		start := pos + i
		end := start + len(old)
		if overlaps(ranges, start, end) {
			b.WriteString(body[pos:end])
			pos = end
			continue
		}
		b.WriteString(body[pos:start])
		b.WriteString(replacement)
		pos = end
	}
	return b.String()
}

// linkRanges finds [start,end) spans of markdown link constructs
// "[text](target)" in body.
func linkRanges(body string) [][2]int {
	var ranges [][2]int
	for i := 0; i < len(body); {
		open := strings.IndexByte(body[i:], '[')
		if open < 0 {
			break
		}
		open += i
		closeBracket := strings.IndexByte(body[open:], ']')
		if closeBracket < 0 {
			break
		}
		closeBracket += open
		if closeBracket+1 >= len(body) || body[closeBracket+1] != '(' {
			i = open + 1
			continue
		}
		closeParen := strings.IndexByte(body[closeBracket+1:], ')')
		if closeParen < 0 {
			break
		}
		closeParen += closeBracket + 1
		ranges = append(ranges, [2]int{open, closeParen + 1})
		i = closeParen + 1
	}
	return ranges
}

func overlaps(ranges [][2]int, start, end int) bool {
	for _, r := range ranges {
		if start < r[1] && end > r[0] {
			return true
		}
	}
	return false
}
