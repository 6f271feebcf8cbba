// Package textclean normalizes scraped HTML fragments into plain text.
// Every function is pure and never panics; callers may feed it arbitrary
// upstream markup.
package textclean

import (
	"regexp"
	"strconv"
	"strings"
)

// namedEntities is the fixed decode table. Unknown named entities decode to
// a single space rather than surviving into cleaned output.
var namedEntities = map[string]string{
	"&nbsp;":  " ",
	"&amp;":   "&",
	"&apos;":  "'",
	"&#39;":   "'",
	"&#x27;":  "'",
	"&quot;":  `"`,
	"&lt;":    "<",
	"&gt;":    ">",
	"&ndash;": "–",
	"&mdash;": "—",
}

var (
	numDecRe  = regexp.MustCompile(`&#(\d+);`)
	numHexRe  = regexp.MustCompile(`&#[xX]([0-9a-fA-F]+);`)
	namedRe   = regexp.MustCompile(`&[a-zA-Z][a-zA-Z0-9]*;`)
	tagRe     = regexp.MustCompile(`</?[^>]+(>|$)`)
	cdataRe   = regexp.MustCompile(`(?s)<!\[CDATA\[(.*?)\]\]>`)
	bracketRe = regexp.MustCompile(`\[[^\]]+\]`)
	spaceRe   = regexp.MustCompile(`\s{2,}`)
	leadSepRe = regexp.MustCompile(`^[\s\-–—•·|]+`)
	tailSepRe = regexp.MustCompile(`[\s\-–—•·|]+$`)

	// Tokens that look like UI-framework utility classes leak into scraped
	// text when markup is malformed; both patterns come from observing what
	// LinkedIn's rendered pages shed.
	utilityPrefixRe = regexp.MustCompile(`(?i)(?:^|[-_])(text|color|leading|mb|px|py|group|hover|not-first|middot|font|truncate|line-clamp|prose|shadow|rounded|bg|dark|light|from|to|border|gap|grid|flex|items|justify|underline|class|aria)`)
	kebabRe         = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)+$`)
	markerCharRe    = regexp.MustCompile(`[\[\]{}:*]`)
)

// DecodeEntities resolves numeric (decimal and hex) entities and the fixed
// named-entity table. Named entities outside the table become a single space.
func DecodeEntities(s string) string {
	if s == "" {
		return ""
	}
	// Table first so &#39; and &#x27; follow the table, then the numeric
	// catch-all for everything else.
	s = numDecRe.ReplaceAllStringFunc(s, func(m string) string {
		if v, ok := namedEntities[m]; ok {
			return v
		}
		n, err := strconv.Atoi(m[2 : len(m)-1])
		if err != nil || n <= 0 || n > 0x10FFFF {
			return " "
		}
		return string(rune(n))
	})
	s = numHexRe.ReplaceAllStringFunc(s, func(m string) string {
		if v, ok := namedEntities[m]; ok {
			return v
		}
		n, err := strconv.ParseInt(m[3:len(m)-1], 16, 32)
		if err != nil || n <= 0 || n > 0x10FFFF {
			return " "
		}
		return string(rune(n))
	})
	return namedRe.ReplaceAllStringFunc(s, func(m string) string {
		if v, ok := namedEntities[m]; ok {
			return v
		}
		return " "
	})
}

// StripTags replaces every tag delimiter with a space, leaving inner text.
func StripTags(s string) string {
	return tagRe.ReplaceAllString(s, " ")
}

// StripCDATA unwraps CDATA sections, keeping their content.
func StripCDATA(s string) string {
	return cdataRe.ReplaceAllString(s, "$1")
}

// RemoveUtilityTokens drops tokens that look like styling or utility class
// names: stop-list prefixes, short all-lowercase kebab words, and tokens
// carrying selector marker characters. Separator glyphs (·, |, dashes) are
// kept so field splitting can still see them.
func RemoveUtilityTokens(s string) string {
	if s == "" {
		return ""
	}
	keep := make([]string, 0, 8)
	for _, tok := range strings.Fields(s) {
		switch {
		case markerCharRe.MatchString(tok):
		case utilityPrefixRe.MatchString(tok):
		case kebabRe.MatchString(tok) && len(tok) < 28:
		default:
			keep = append(keep, tok)
		}
	}
	return strings.Join(keep, " ")
}

// Clean runs the full normalization pass: entity decode, tag strip, utility
// token removal, whitespace collapse, separator trim, and bracketed
// annotation removal. Clean is idempotent: a second pass is a no-op.
func Clean(raw string) string {
	t := DecodeEntities(raw)
	t = StripTags(t)
	t = RemoveUtilityTokens(t)
	t = bracketRe.ReplaceAllString(t, "")
	t = spaceRe.ReplaceAllString(t, " ")
	t = leadSepRe.ReplaceAllString(t, "")
	t = tailSepRe.ReplaceAllString(t, "")
	return strings.TrimSpace(t)
}
