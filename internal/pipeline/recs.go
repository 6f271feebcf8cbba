package pipeline

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/devport/profile-api/internal/cache"
	"github.com/devport/profile-api/internal/extract"
	"github.com/devport/profile-api/internal/model"
)

// RecsPipeline fetches and extracts LinkedIn recommendations. Results live
// in the memory tier only; there is no disk snapshot for this source.
type RecsPipeline struct {
	client  *Client
	mem     *cache.Memory[model.Recommendation]
	ttl     time.Duration
	baseURL string
	group   singleflight.Group
}

// NewRecsPipeline creates the recommendations pipeline.
func NewRecsPipeline(client *Client, baseURL string, ttl time.Duration) *RecsPipeline {
	return &RecsPipeline{
		client:  client,
		mem:     cache.NewMemory[model.Recommendation](),
		ttl:     ttl,
		baseURL: baseURL,
	}
}

// Get returns recommendations for the given handle or profile URL.
func (p *RecsPipeline) Get(ctx context.Context, identifier string) (*RecsResult, error) {
	profileURL, username, err := ResolveProfile(p.baseURL, identifier)
	if err != nil {
		return nil, err
	}
	key := "linkedin:recs:" + username

	if fresh, ok := p.mem.GetFresh(key, p.ttl); ok {
		return &RecsResult{Recommendations: fresh, Cached: true}, nil
	}

	v, err, _ := p.group.Do(key, func() (interface{}, error) {
		return p.refresh(ctx, key, profileURL)
	})
	if err != nil {
		return nil, err
	}
	return v.(*RecsResult), nil
}

func (p *RecsPipeline) refresh(ctx context.Context, key, profileURL string) (*RecsResult, error) {
	res, err := p.client.Fetch(ctx, profileURL, nil)
	if err == nil && res.Outcome == Success {
		recs := extract.FinalizeRecommendations(extract.Recommendations(string(res.Body), profileURL))
		if recs == nil {
			recs = []model.Recommendation{}
		}
		p.mem.Set(key, recs)
		return &RecsResult{Recommendations: recs}, nil
	}

	// Network failure or error status: a stale memory entry still serves,
	// an upstream error only when there is none.
	if stale, _, ok := p.mem.Get(key); ok && len(stale) > 0 {
		return &RecsResult{Recommendations: stale, Stale: true}, nil
	}
	return nil, &UpstreamError{Source: "linkedin", Status: res.StatusCode}
}
