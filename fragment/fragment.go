// Package fragment locates the named configuration fragments inside a
// composite document. The composite is not required to be well-formed markup
// as a whole (it is implicitly a forest of fragments), so extraction works on
// text patterns, not on a full-document parse. Per-fragment structural
// parsing happens downstream, only where a transform needs it.
package fragment

import (
	"regexp"
	"strings"
)

// ElementName is the fixed tag name of a fragment element.
const ElementName = "config"

var (
	// fragmentPattern matches one fragment: open tag with attributes,
	// non-greedy inner content across lines, FIRST matching close tag.
	// Nested same-named elements therefore end the match early; Balance
	// repairs that before structural parsing.
	fragmentPattern = regexp.MustCompile(`(?s)<` + ElementName + ` [^>]*>(.*?)</` + ElementName + `>`)

	// namePattern pulls the destination file name out of a fragment's raw
	// text. First match wins, which is the fragment's own open tag.
	namePattern = regexp.MustCompile(ElementName + `\s+name="([^"]+)"`)

	startTagPattern = regexp.MustCompile(`<` + ElementName + `(?:\s[^>]*)?>`)
	endTagPattern   = regexp.MustCompile(`</` + ElementName + `\s*>`)
)

// Fragment is one named unit within the composite document.
type Fragment struct {
	// Name is the destination file name from the fragment's name attribute.
	// Empty when the attribute is missing; writers must reject such
	// fragments rather than attempt a write.
	Name string

	// Raw is the fragment's markup including the open/close tag wrapper.
	Raw string

	// Inner is Raw with the tag wrapper removed, the payload to persist.
	Inner string
}

// Extract returns every fragment found in the composite, in source order.
// Source order is significant: it determines last-write-wins for duplicate
// names. An empty composite yields an empty slice.
//
// A fragment element with no attributes at all does not match the scan
// pattern and is skipped entirely, same as any other non-fragment text
// between fragments.
func Extract(composite string) []Fragment {
	matches := fragmentPattern.FindAllStringSubmatch(composite, -1)

	fragments := make([]Fragment, 0, len(matches))
	for _, m := range matches {
		fragments = append(fragments, Fragment{
			Name:  extractName(m[0]),
			Raw:   m[0],
			Inner: m[1],
		})
	}
	return fragments
}

func extractName(raw string) string {
	m := namePattern.FindStringSubmatch(raw)
	if m == nil {
		return ""
	}
	return m[1]
}

// Balance appends the close tags a raw fragment is missing. The scan pattern
// ends a fragment at the FIRST close tag, so a fragment nesting same-named
// children arrives with its outer element unclosed; counting open against
// close tags and padding the difference makes the text parseable by a strict
// parser. Already-balanced text is returned unchanged.
func Balance(raw string) string {
	opens := 0
	for _, tag := range startTagPattern.FindAllString(raw, -1) {
		// Self-closing tags carry their own close.
		if !strings.HasSuffix(tag, "/>") {
			opens++
		}
	}
	closes := len(endTagPattern.FindAllString(raw, -1))

	if deficit := opens - closes; deficit > 0 {
		return raw + strings.Repeat("</"+ElementName+">", deficit)
	}
	return raw
}
