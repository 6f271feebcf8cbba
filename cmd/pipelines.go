package main

import (
	"github.com/devport/profile-api/internal/config"
	"github.com/devport/profile-api/internal/pipeline"
)

// pipelineSet bundles the three fetch pipelines behind the server and the
// lookup command.
type pipelineSet struct {
	Awards *pipeline.AwardsPipeline
	Recs   *pipeline.RecsPipeline
	Posts  *pipeline.PostsPipeline
}

func buildPipelines(cfg *config.Config) *pipelineSet {
	client := pipeline.NewClient(pipeline.ClientOptions{
		UserAgent:    cfg.Fetch.UserAgent,
		Timeout:      cfg.Fetch.Timeout(),
		MaxBodyBytes: int64(cfg.Fetch.MaxBodyKB) * 1024,
		RateLimiters: pipeline.DefaultRateLimiters(),
	})

	ttl := cfg.Cache.TTL()
	return &pipelineSet{
		Awards: pipeline.NewAwardsPipeline(client, cfg.LinkedIn.BaseURL, cfg.Cache.DataDir, ttl),
		Recs:   pipeline.NewRecsPipeline(client, cfg.LinkedIn.BaseURL, ttl),
		Posts:  pipeline.NewPostsPipeline(client, cfg.Medium.BaseURL, ttl),
	}
}
