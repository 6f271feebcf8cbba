package pipeline

import (
	"bytes"
	"context"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/devport/profile-api/internal/cache"
	"github.com/devport/profile-api/internal/extract"
	"github.com/devport/profile-api/internal/model"
)

// PostsPipeline fetches Medium posts for an author. It prefers the JSON
// profile endpoint and falls back to the RSS feed, degrading to an empty
// result rather than surfacing upstream failures.
type PostsPipeline struct {
	client  *Client
	mem     *cache.Memory[model.Post]
	ttl     time.Duration
	baseURL string
	group   singleflight.Group
}

// NewPostsPipeline creates the posts pipeline.
func NewPostsPipeline(client *Client, baseURL string, ttl time.Duration) *PostsPipeline {
	return &PostsPipeline{
		client:  client,
		mem:     cache.NewMemory[model.Post](),
		ttl:     ttl,
		baseURL: baseURL,
	}
}

// Get returns posts for the given Medium username.
func (p *PostsPipeline) Get(ctx context.Context, username string) (*PostsResult, error) {
	if username == "" {
		return nil, ErrMissingIdentifier
	}
	key := "medium:posts:" + username

	if fresh, ok := p.mem.GetFresh(key, p.ttl); ok {
		return &PostsResult{Posts: fresh, Cached: true}, nil
	}

	v, err, _ := p.group.Do(key, func() (interface{}, error) {
		return p.refresh(ctx, key, username), nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*PostsResult), nil
}

func (p *PostsPipeline) refresh(ctx context.Context, key, username string) *PostsResult {
	base := p.baseURL
	escaped := url.PathEscape(username)

	jsonURL := base + "/@" + escaped + "?format=json"
	res, err := p.client.Fetch(ctx, jsonURL, map[string]string{"Accept": "application/json"})
	if err == nil && res.Outcome == Success {
		posts, perr := extract.PostsFromMediumJSON(res.Body, username)
		if perr == nil && len(posts) > 0 {
			p.mem.Set(key, posts)
			return &PostsResult{Posts: posts}
		}
		if perr != nil {
			zap.L().Debug("medium json parse failed, trying feed",
				zap.String("username", username),
				zap.Error(perr),
			)
		}
	}

	feedURL := base + "/feed/@" + escaped
	res, err = p.client.Fetch(ctx, feedURL, map[string]string{"Accept": "application/rss+xml, application/xml"})
	if err == nil && res.Outcome == Success {
		posts := extract.FeedItems(bytes.NewReader(res.Body), username)
		if len(posts) > 0 {
			extract.SortPosts(posts)
			p.mem.Set(key, posts)
			return &PostsResult{Posts: posts}
		}
	}

	if stale, _, ok := p.mem.Get(key); ok && len(stale) > 0 {
		return &PostsResult{Posts: stale, Stale: true}
	}
	return &PostsResult{Posts: []model.Post{}, Note: "no posts available"}
}
