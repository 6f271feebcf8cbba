package extract

import (
	"regexp"
	"strings"

	"github.com/devport/profile-api/internal/model"
	"github.com/devport/profile-api/internal/textclean"
)

const (
	awardKeyLen      = 220
	recNameKeyLen    = 40
	recExcerptKeyLen = 120
)

var (
	// yearRe captures a 4-digit year, swallowing a leading month token so
	// "Mar 2023" disappears from the title in one cut.
	yearRe = regexp.MustCompile(`(?:(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\.?\s+)?((?:19|20)\d{2})`)

	// splitRe separates combined title/org/date strings. A hyphen only
	// splits when spaced; bare hyphens appear inside legitimate titles.
	splitRe = regexp.MustCompile(`\s+-\s+|\s*[·|—–•]\s*`)

	multiSpaceRe = regexp.MustCompile(`\s{2,}`)
)

// FinalizeAwards normalizes award candidates, removes duplicates (first
// occurrence wins, so heuristic order determines precedence), pulls the year
// out of the title, and splits title from organization on separator glyphs.
func FinalizeAwards(cands []model.Candidate) []model.Award {
	seen := make(map[string]struct{}, len(cands))
	out := make([]model.Award, 0, len(cands))
	for _, cand := range cands {
		cleaned := textclean.Clean(cand.RawText)
		if cleaned == "" {
			continue
		}
		key := strings.ToLower(prefix(cleaned, awardKeyLen))
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		title, year := extractYear(cleaned)
		title, org := splitTitleOrg(title)
		if title == "" {
			continue
		}
		out = append(out, model.Award{
			Title:     title,
			Org:       org,
			Year:      year,
			SourceURL: cand.SourceURL,
		})
	}
	return out
}

// FinalizeRecommendations removes duplicate recommendations. The dedup key
// is a prefix of the name plus a prefix of the excerpt; first wins.
func FinalizeRecommendations(recs []model.Recommendation) []model.Recommendation {
	seen := make(map[string]struct{}, len(recs))
	out := make([]model.Recommendation, 0, len(recs))
	for _, r := range recs {
		key := prefix(r.Name, recNameKeyLen) + "::" + prefix(r.Excerpt, recExcerptKeyLen)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}

// extractYear removes the first year token (with any month prefix) from s
// and returns the remainder and the 4-digit year.
func extractYear(s string) (string, string) {
	loc := yearRe.FindStringSubmatchIndex(s)
	if loc == nil {
		return s, ""
	}
	year := s[loc[2]:loc[3]]
	rest := s[:loc[0]] + s[loc[1]:]
	rest = multiSpaceRe.ReplaceAllString(rest, " ")
	return strings.TrimSpace(rest), year
}

// splitTitleOrg splits a combined string on separator glyphs. With two or
// more parts the first is the title and the rest join as the organization.
func splitTitleOrg(s string) (string, string) {
	raw := splitRe.Split(s, -1)
	parts := raw[:0]
	for _, p := range raw {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return "", ""
	}
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " · ")
}

func prefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
