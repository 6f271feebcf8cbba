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
	minRecFragmentLen = 40
	maxExcerptLen     = 800
	minParagraphLen   = 120
	maxParagraphLen   = 900
	paraNeighborhood  = 400
)

var (
	recKeywordRe = regexp.MustCompile(`(?i)recommend`)
	imgSrcRe     = regexp.MustCompile(`(?i)<img[^>]+src=["']([^"']+)["']`)
	strongRe     = regexp.MustCompile(`(?i)<strong[^>]*>([^<]+)</strong>`)
	h3Re         = regexp.MustCompile(`(?i)<h3[^>]*>([^<]+)</h3>`)
	roleSpanRe   = regexp.MustCompile(`(?i)<span[^>]*class=["'][^"']*(?:title|occupation|subtitle|headline)[^"']*["'][^>]*>([^<]+)</span>`)
	roleDivRe    = regexp.MustCompile(`(?i)<div[^>]*class=["'][^"']*(?:profile|headline)[^"']*["'][^>]*>([^<]+)</div>`)
	paragraphRe  = regexp.MustCompile(`(?is)<p\b[^>]*>(.*?)</p>`)
)

// Recommendations extracts endorsement records from profile HTML. Three
// passes in order: keyword-gated sections, JSON-LD review nodes, and a long
// paragraph fallback that recovers the author from the surrounding markup.
func Recommendations(html, sourceURL string) []model.Recommendation {
	if len(html) > maxDocBytes {
		html = html[:maxDocBytes]
	}
	var recs []model.Recommendation

	// 1. Sections that mention recommendations: blockquotes, list items,
	// and recommendation-classed divs inside them.
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(html)); err == nil {
		doc.Find("section").Each(func(_ int, sec *goquery.Selection) {
			if len(recs) >= maxCandidates || !recKeywordRe.MatchString(sec.Text()) {
				return
			}
			sec.Find(`blockquote, li, div[class*="recommendation"], div[class*="reco"]`).Each(func(_ int, item *goquery.Selection) {
				if len(recs) >= maxCandidates {
					return
				}
				fragment, err := item.Html()
				if err != nil || len(strings.TrimSpace(fragment)) < minRecFragmentLen {
					return
				}
				recs = append(recs, recFromFragment(fragment, sourceURL))
			})
		})
	}

	// 2. Embedded structured data.
	for _, rv := range jsonld.CollectReviews(jsonld.Extract(html)) {
		if len(recs) >= maxCandidates {
			break
		}
		name := textclean.Clean(rv.Name)
		if name == "" {
			name = "Unknown"
		}
		recs = append(recs, model.Recommendation{
			Name:      name,
			Role:      rv.Role,
			Photo:     rv.Photo,
			Excerpt:   prefix(textclean.Clean(rv.Body), maxExcerptLen),
			SourceURL: sourceURL,
		})
	}

	// 3. Long paragraphs anywhere on the page; the author's name and photo
	// usually sit just before or after, so scan the raw neighborhood.
	for _, m := range paragraphRe.FindAllStringSubmatchIndex(html, -1) {
		if len(recs) >= maxCandidates {
			break
		}
		text := textclean.Clean(html[m[2]:m[3]])
		if len(text) < minParagraphLen {
			continue
		}
		lo := max(m[0]-paraNeighborhood, 0)
		hi := min(m[1]+paraNeighborhood, len(html))
		neighborhood := html[lo:hi]
		recs = append(recs, model.Recommendation{
			Name:      nameFrom(neighborhood),
			Photo:     firstGroup(imgSrcRe, neighborhood),
			Excerpt:   prefix(text, maxParagraphLen),
			SourceURL: sourceURL,
		})
	}

	return recs
}

// recFromFragment recovers the endorsement fields from one markup fragment.
func recFromFragment(fragment, sourceURL string) model.Recommendation {
	role := firstGroup(roleSpanRe, fragment)
	if role == "" {
		role = firstGroup(roleDivRe, fragment)
	}
	return model.Recommendation{
		Name:      nameFrom(fragment),
		Role:      textclean.Clean(role),
		Photo:     firstGroup(imgSrcRe, fragment),
		Excerpt:   prefix(textclean.Clean(fragment), maxExcerptLen),
		SourceURL: sourceURL,
	}
}

// nameFrom pulls a person name from a bold or heading pattern, defaulting to
// "Unknown" when the fragment names nobody.
func nameFrom(fragment string) string {
	raw := firstGroup(strongRe, fragment)
	if raw == "" {
		raw = firstGroup(h3Re, fragment)
	}
	name := textclean.Clean(raw)
	if name == "" {
		return "Unknown"
	}
	return name
}

func firstGroup(re *regexp.Regexp, s string) string {
	if m := re.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return ""
}
