package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/devport/profile-api/internal/cache"
	"github.com/devport/profile-api/internal/extract"
	"github.com/devport/profile-api/internal/model"
)

// AwardsPipeline fetches and extracts LinkedIn awards with a memory tier
// and an on-disk snapshot fallback.
type AwardsPipeline struct {
	client  *Client
	mem     *cache.Memory[model.Award]
	disk    *cache.Disk[model.Award]
	ttl     time.Duration
	baseURL string
	group   singleflight.Group
}

// NewAwardsPipeline creates the awards pipeline. Disk snapshots live under
// dataDir as linkedin_awards_<username>.json.
func NewAwardsPipeline(client *Client, baseURL, dataDir string, ttl time.Duration) *AwardsPipeline {
	return &AwardsPipeline{
		client:  client,
		mem:     cache.NewMemory[model.Award](),
		disk:    cache.NewDisk[model.Award](dataDir, "linkedin_awards"),
		ttl:     ttl,
		baseURL: baseURL,
	}
}

// Get returns awards for the given handle or profile URL. A fresh memory
// entry short-circuits the fetch; concurrent misses for the same profile
// share one upstream request.
func (p *AwardsPipeline) Get(ctx context.Context, identifier string) (*AwardsResult, error) {
	profileURL, username, err := ResolveProfile(p.baseURL, identifier)
	if err != nil {
		return nil, err
	}
	key := "linkedin:awards:" + username

	if fresh, ok := p.mem.GetFresh(key, p.ttl); ok {
		return &AwardsResult{Awards: fresh, Cached: true}, nil
	}

	v, err, _ := p.group.Do(key, func() (interface{}, error) {
		return p.refresh(ctx, key, username, profileURL)
	})
	if err != nil {
		return nil, err
	}
	return v.(*AwardsResult), nil
}

func (p *AwardsPipeline) refresh(ctx context.Context, key, username, profileURL string) (*AwardsResult, error) {
	res, err := p.client.Fetch(ctx, profileURL, nil)
	if err == nil && res.Outcome == Success {
		awards := extract.FinalizeAwards(extract.Awards(string(res.Body), profileURL))
		if len(awards) > 0 {
			p.mem.Set(key, awards)
			if werr := p.disk.Write(username, awards); werr != nil {
				zap.L().Warn("awards snapshot write failed",
					zap.String("username", username),
					zap.Error(werr),
				)
			}
			return &AwardsResult{Awards: awards}, nil
		}
		// Fetched fine but extracted nothing. Stale data beats an empty
		// answer; an empty success only when there is none.
		zap.L().Info("no awards extracted, serving fallback",
			zap.String("username", username),
		)
		if fb := p.fallback(key, username); fb != nil {
			return fb, nil
		}
		return &AwardsResult{Awards: []model.Award{}, Note: "no awards found on live profile"}, nil
	}

	// Network failure or error status: serve the cache tiers, surface an
	// upstream error only when both come up empty.
	if fb := p.fallback(key, username); fb != nil {
		return fb, nil
	}
	return nil, &UpstreamError{Source: "linkedin", Status: res.StatusCode}
}

// fallback serves the disk snapshot, then any stale memory entry. Returns
// nil when neither tier has records.
func (p *AwardsPipeline) fallback(key, username string) *AwardsResult {
	if snap := p.disk.Read(username); len(snap) > 0 {
		return &AwardsResult{Awards: snap, Stale: true}
	}
	if stale, _, ok := p.mem.Get(key); ok && len(stale) > 0 {
		return &AwardsResult{Awards: stale, Stale: true}
	}
	return nil
}
