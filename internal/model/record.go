// Package model defines the record types shared across extraction pipelines.
package model

// Candidate is a raw extraction match before cleanup and deduplication.
// RawText may still contain markup; it is normalized during finalization.
type Candidate struct {
	RawText   string
	SourceURL string
}

// Award is a finalized honor or recognition record scraped from a profile.
type Award struct {
	Title     string `json:"title"`
	Org       string `json:"org"`
	Year      string `json:"year"`
	SourceURL string `json:"sourceUrl"`
}

// Recommendation is a finalized endorsement record scraped from a profile.
type Recommendation struct {
	Name      string `json:"name"`
	Role      string `json:"role"`
	Photo     string `json:"photo,omitempty"`
	Excerpt   string `json:"excerpt"`
	SourceURL string `json:"sourceUrl"`
}

// Post is a blog post reference recovered from a Medium author feed.
type Post struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Subtitle     string `json:"subtitle"`
	Slug         string `json:"slug"`
	URL          string `json:"url"`
	PreviewImage string `json:"previewImage,omitempty"`
	PublishedAt  int64  `json:"publishedAt"`
}
