// Package extract applies ordered heuristic passes to upstream markup and
// turns the matches into deduplicated, field-split records. Heuristics run
// unconditionally in a fixed order: different passes catch different upstream
// layouts, and finalization precedence follows that order.
package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/devport/profile-api/internal/jsonld"
	"github.com/devport/profile-api/internal/model"
	"github.com/devport/profile-api/internal/textclean"
)

const (
	// maxDocBytes caps how much of an upstream document any pass scans.
	maxDocBytes = 1 << 20
	// maxCandidates caps total extraction work per request.
	maxCandidates = 2000
	// containerWindow bounds the markup taken from a keyword-gated container.
	containerWindow = 1600
	// rawWindow is the raw-text neighborhood taken around a bare keyword hit.
	rawWindow = 220

	minAwardLen = 6
)

var (
	awardKeywordRe = regexp.MustCompile(`(?i)award|honor|recognition|scholarship|merit|recipient|winner|finalist|gem\s+award|value-?able`)
	navPhraseRe    = regexp.MustCompile(`(?i)view profile|connect|follow|see more`)
)

// collector gates fragments into candidates, applying the rejection rules
// shared by every heuristic pass.
type collector struct {
	sourceURL string
	minLen    int
	items     []model.Candidate
}

func (c *collector) push(raw string) {
	if len(c.items) >= maxCandidates {
		return
	}
	cleaned := textclean.Clean(raw)
	if len(cleaned) < c.minLen {
		return
	}
	if navPhraseRe.MatchString(cleaned) {
		return
	}
	c.items = append(c.items, model.Candidate{RawText: raw, SourceURL: c.sourceURL})
}

// Awards extracts award candidates from profile HTML. Five passes, in order:
// list items, keyword-gated containers, JSON-LD nodes, raw-text windows, and
// a paragraph fallback.
func Awards(html, sourceURL string) []model.Candidate {
	if len(html) > maxDocBytes {
		html = html[:maxDocBytes]
	}
	c := &collector{sourceURL: sourceURL, minLen: minAwardLen}

	doc, docErr := goquery.NewDocumentFromReader(strings.NewReader(html))

	// 1. Every list item on the page.
	if docErr == nil {
		doc.Find("li").Each(func(_ int, s *goquery.Selection) {
			if inner, err := s.Html(); err == nil {
				c.push(inner)
			}
		})
	}

	// 2. Keyword-gated containers, bounded so a match high in the tree
	// cannot sweep in the whole document.
	if docErr == nil {
		doc.Find("div,span,section,article,td,h1,h2,h3,h4").Each(func(_ int, s *goquery.Selection) {
			if !awardKeywordRe.MatchString(s.Text()) {
				return
			}
			inner, err := s.Html()
			if err != nil {
				return
			}
			if len(inner) > containerWindow {
				inner = inner[:containerWindow]
			}
			c.push(inner)
		})
	}

	// 3. Embedded structured data.
	for _, text := range jsonld.CollectAwardTexts(jsonld.Extract(html)) {
		c.push(text)
	}

	// 4. Raw-text windows around keyword occurrences that sit outside any
	// recognized markup.
	for _, loc := range awardKeywordRe.FindAllStringIndex(html, -1) {
		lo := max(loc[0]-rawWindow, 0)
		hi := min(loc[1]+rawWindow, len(html))
		c.push(html[lo:hi])
	}

	// 5. Paragraph fallback.
	if docErr == nil {
		doc.Find("p").Each(func(_ int, s *goquery.Selection) {
			inner, err := s.Html()
			if err != nil || len(inner) < 30 || len(inner) > 600 {
				return
			}
			if awardKeywordRe.MatchString(inner) {
				c.push(inner)
			}
		})
	}

	return c.items
}
