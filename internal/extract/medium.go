package extract

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/devport/profile-api/internal/model"
	"github.com/devport/profile-api/internal/textclean"
)

// mediumJSONPrefix is the anti-hijacking guard Medium prepends to its JSON
// endpoint responses.
const mediumJSONPrefix = "])}while(1);</x>"

type mediumImage struct {
	ImageID string `json:"imageId"`
}

type mediumVirtuals struct {
	Title        string      `json:"title"`
	Subtitle     string      `json:"subtitle"`
	PreviewImage mediumImage `json:"previewImage"`
}

type mediumPost struct {
	ID               string         `json:"id"`
	Title            string         `json:"title"`
	UniqueSlug       string         `json:"uniqueSlug"`
	Slug             string         `json:"slug"`
	CanonicalURL     string         `json:"canonicalUrl"`
	FirstPublishedAt int64          `json:"firstPublishedAt"`
	Virtuals         mediumVirtuals `json:"virtuals"`
	PreviewImage     mediumImage    `json:"previewImage"`
}

type mediumEnvelope struct {
	Payload struct {
		References struct {
			Post map[string]mediumPost `json:"Post"`
		} `json:"references"`
	} `json:"payload"`
}

// PostsFromMediumJSON parses the Medium profile JSON endpoint payload and
// returns the referenced posts, newest first.
func PostsFromMediumJSON(body []byte, username string) ([]model.Post, error) {
	text := strings.TrimPrefix(string(body), mediumJSONPrefix)

	var env mediumEnvelope
	if err := json.Unmarshal([]byte(text), &env); err != nil {
		return nil, eris.Wrap(err, "extract: parse medium json")
	}

	posts := make([]model.Post, 0, len(env.Payload.References.Post))
	for _, p := range env.Payload.References.Post {
		rawTitle := p.Title
		if rawTitle == "" {
			rawTitle = p.Virtuals.Title
		}
		title := textclean.Clean(textclean.StripCDATA(rawTitle))
		if title == "" {
			title = rawTitle
		}

		slug := p.UniqueSlug
		if slug == "" {
			slug = p.Slug
		}

		url := p.CanonicalURL
		if url == "" {
			url = "https://medium.com/@" + username + "/" + slug
		}

		imageID := p.Virtuals.PreviewImage.ImageID
		if imageID == "" {
			imageID = p.PreviewImage.ImageID
		}
		image := ""
		if imageID != "" {
			image = "https://miro.medium.com/fit/c/800/420/" + imageID
		}

		posts = append(posts, model.Post{
			ID:           p.ID,
			Title:        title,
			Subtitle:     p.Virtuals.Subtitle,
			Slug:         slug,
			URL:          url,
			PreviewImage: image,
			PublishedAt:  p.FirstPublishedAt,
		})
	}
	SortPosts(posts)
	return posts, nil
}
