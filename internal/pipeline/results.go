package pipeline

import "github.com/devport/profile-api/internal/model"

// AwardsResult is the awards payload returned to handlers.
type AwardsResult struct {
	Awards []model.Award `json:"awards"`
	Cached bool          `json:"cached,omitempty"`
	Stale  bool          `json:"stale,omitempty"`
	Note   string        `json:"note,omitempty"`
}

// RecsResult is the recommendations payload returned to handlers.
type RecsResult struct {
	Recommendations []model.Recommendation `json:"recs"`
	Cached          bool                   `json:"cached,omitempty"`
	Stale           bool                   `json:"stale,omitempty"`
	Note            string                 `json:"note,omitempty"`
}

// PostsResult is the posts payload returned to handlers.
type PostsResult struct {
	Posts  []model.Post `json:"posts"`
	Cached bool         `json:"cached,omitempty"`
	Stale  bool         `json:"stale,omitempty"`
	Note   string       `json:"note,omitempty"`
}
