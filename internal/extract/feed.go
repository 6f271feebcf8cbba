package extract

import (
	"encoding/xml"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/araddon/dateparse"
	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/devport/profile-api/internal/model"
	"github.com/devport/profile-api/internal/textclean"
)

type mediaRef struct {
	URL string `xml:"url,attr"`
}

// rssItem mirrors the subset of an RSS <item> the feed pipeline consumes.
type rssItem struct {
	Title       string     `xml:"title"`
	Link        string     `xml:"link"`
	PubDate     string     `xml:"pubDate"`
	Description string     `xml:"description"`
	Content     string     `xml:"http://purl.org/rss/1.0/modules/content/ encoded"`
	Media       []mediaRef `xml:"http://search.yahoo.com/mrss/ content"`
	Thumbnails  []mediaRef `xml:"http://search.yahoo.com/mrss/ thumbnail"`
}

// FeedItems decodes RSS <item> elements and converts them to posts.
// Decoding is charset-aware. A malformed item stops further decoding, but
// the items already read are kept: feed parse errors are absence of data,
// never failure.
func FeedItems(r io.Reader, username string) []model.Post {
	decoder := xml.NewDecoder(r)
	decoder.Strict = false
	decoder.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		enc, err := htmlindex.Get(charset)
		if err != nil {
			return nil, eris.Wrapf(err, "extract: unsupported charset %q", charset)
		}
		return enc.NewDecoder().Reader(input), nil
	}

	var posts []model.Post
	for len(posts) < maxCandidates {
		tok, err := decoder.Token()
		if err != nil {
			return posts
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "item" {
			continue
		}
		var item rssItem
		if err := decoder.DecodeElement(&item, &se); err != nil {
			return posts
		}
		posts = append(posts, postFromItem(item, username))
	}
	return posts
}

func postFromItem(item rssItem, username string) model.Post {
	title := textclean.Clean(textclean.StripCDATA(item.Title))
	if title == "" {
		title = "Untitled"
	}

	link := strings.TrimSpace(textclean.StripCDATA(item.Link))
	if link == "" && username != "" {
		link = "https://medium.com/@" + username
	}

	var publishedAt int64
	if pd := strings.TrimSpace(textclean.StripCDATA(item.PubDate)); pd != "" {
		if t, err := dateparse.ParseAny(pd); err == nil {
			publishedAt = t.UnixMilli()
		}
	}

	image := ""
	if len(item.Media) > 0 {
		image = item.Media[0].URL
	}
	if image == "" && len(item.Thumbnails) > 0 {
		image = item.Thumbnails[0].URL
	}
	if image == "" {
		body := textclean.StripCDATA(item.Description + " " + item.Content)
		image = firstGroup(imgSrcRe, body)
	}

	id := link
	if id == "" {
		id = title
	}

	return model.Post{
		ID:           id,
		Title:        title,
		Slug:         slugFrom(link, title),
		URL:          link,
		PreviewImage: image,
		PublishedAt:  publishedAt,
	}
}

var slugifyRe = regexp.MustCompile(`\s+`)

// slugFrom takes the last path segment of the link, dropping any query
// string, and falls back to a slugified title.
func slugFrom(link, title string) string {
	if link != "" {
		trimmed := strings.TrimRight(link, "/")
		seg := trimmed[strings.LastIndex(trimmed, "/")+1:]
		if i := strings.IndexByte(seg, '?'); i >= 0 {
			seg = seg[:i]
		}
		if seg != "" {
			return seg
		}
	}
	return slugifyRe.ReplaceAllString(strings.ToLower(title), "-")
}

// SortPosts orders posts newest first.
func SortPosts(posts []model.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].PublishedAt > posts[j].PublishedAt
	})
}
