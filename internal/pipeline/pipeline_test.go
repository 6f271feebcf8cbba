package pipeline

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devport/profile-api/internal/cache"
	"github.com/devport/profile-api/internal/model"
)

const awardsHTML = `<html><body>
<ul>
  <li>Gem Award · SG Analytics · Mar 2023</li>
  <li>Value-able Award · Jul 2024</li>
</ul>
</body></html>`

const recsHTML = `<html><body>
<section>Recommendations received
  <blockquote>Working with this engineer was a privilege. They shipped a resilient data
  platform under real deadline pressure and made everyone around them better.</blockquote>
</section>
</body></html>`

const feedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel>
<item>
  <title><![CDATA[Streaming Pipelines in Practice]]></title>
  <link>https://medium.com/@tester/streaming-pipelines-abc123?source=rss</link>
  <pubDate>Mon, 12 May 2025 10:00:00 GMT</pubDate>
  <description><![CDATA[<p>Notes from production.</p>]]></description>
</item>
</channel></rss>`

func TestResolveProfile(t *testing.T) {
	u, name, err := ResolveProfile("https://www.linkedin.com", "testuser")
	require.NoError(t, err)
	assert.Equal(t, "https://www.linkedin.com/in/testuser/", u)
	assert.Equal(t, "testuser", name)

	u, name, err = ResolveProfile("https://www.linkedin.com", "https://www.linkedin.com/in/someone/")
	require.NoError(t, err)
	assert.Equal(t, "https://www.linkedin.com/in/someone/", u)
	assert.Equal(t, "someone", name)

	_, _, err = ResolveProfile("https://www.linkedin.com", "https://evil.example.com/in/someone/")
	assert.ErrorIs(t, err, ErrInvalidProfileURL)

	_, _, err = ResolveProfile("https://www.linkedin.com", "   ")
	assert.ErrorIs(t, err, ErrMissingIdentifier)
}

func TestAwardsPipeline_SuccessAndCacheHit(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(awardsHTML))
	}))
	defer srv.Close()

	p := NewAwardsPipeline(NewClient(ClientOptions{}), srv.URL, t.TempDir(), 10*time.Minute)

	res, err := p.Get(context.Background(), "testuser")
	require.NoError(t, err)
	assert.False(t, res.Cached)
	require.Len(t, res.Awards, 2)
	assert.Equal(t, "Gem Award", res.Awards[0].Title)
	assert.Equal(t, "SG Analytics", res.Awards[0].Org)
	assert.Equal(t, "2023", res.Awards[0].Year)

	res, err = p.Get(context.Background(), "testuser")
	require.NoError(t, err)
	assert.True(t, res.Cached)
	assert.Equal(t, 1, hits)
}

func TestAwardsPipeline_DiskFallbackOnNetworkError(t *testing.T) {
	dir := t.TempDir()
	disk := cache.NewDisk[model.Award](dir, "linkedin_awards")
	require.NoError(t, disk.Write("testuser", []model.Award{
		{Title: "Archived Award", Year: "2022"},
	}))

	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // connection refused from here on

	p := NewAwardsPipeline(NewClient(ClientOptions{Timeout: 2 * time.Second}), srv.URL, dir, 10*time.Minute)
	res, err := p.Get(context.Background(), "testuser")
	require.NoError(t, err)
	assert.True(t, res.Stale)
	require.Len(t, res.Awards, 1)
	assert.Equal(t, "Archived Award", res.Awards[0].Title)
}

func TestAwardsPipeline_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := NewAwardsPipeline(NewClient(ClientOptions{}), srv.URL, t.TempDir(), 10*time.Minute)
	_, err := p.Get(context.Background(), "testuser")
	require.Error(t, err)

	var ue *UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, http.StatusTooManyRequests, ue.Status)
	assert.Equal(t, "linkedin", ue.Source)
}

func TestAwardsPipeline_EmptyExtractionNote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><p>Nothing of note here.</p></body></html>"))
	}))
	defer srv.Close()

	p := NewAwardsPipeline(NewClient(ClientOptions{}), srv.URL, t.TempDir(), 10*time.Minute)
	res, err := p.Get(context.Background(), "testuser")
	require.NoError(t, err)
	assert.Empty(t, res.Awards)
	assert.NotEmpty(t, res.Note)
}

func TestRecsPipeline_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(recsHTML))
	}))
	defer srv.Close()

	p := NewRecsPipeline(NewClient(ClientOptions{}), srv.URL, 10*time.Minute)
	res, err := p.Get(context.Background(), "testuser")
	require.NoError(t, err)
	require.NotEmpty(t, res.Recommendations)
	assert.Contains(t, res.Recommendations[0].Excerpt, "resilient data")
}

func TestRecsPipeline_InvalidAbsoluteURL(t *testing.T) {
	p := NewRecsPipeline(NewClient(ClientOptions{}), "https://www.linkedin.com", 10*time.Minute)
	_, err := p.Get(context.Background(), "https://attacker.example.com/in/x/")
	assert.ErrorIs(t, err, ErrInvalidProfileURL)
}

func TestRecsPipeline_StaleMemoryOnNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(recsHTML))
	}))

	p := NewRecsPipeline(NewClient(ClientOptions{Timeout: 2 * time.Second}), srv.URL, time.Nanosecond)
	_, err := p.Get(context.Background(), "testuser")
	require.NoError(t, err)

	srv.Close()
	res, err := p.Get(context.Background(), "testuser")
	require.NoError(t, err)
	assert.True(t, res.Stale)
	assert.NotEmpty(t, res.Recommendations)
}

func TestPostsPipeline_JSONEndpoint(t *testing.T) {
	body := `])}while(1);</x>{"payload":{"references":{"Post":{"p1":{"id":"p1","title":"Go in Anger","uniqueSlug":"go-in-anger-1a2b","firstPublishedAt":1715500000000,"virtuals":{}}}}}}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("format") == "json" {
			w.Write([]byte(body))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	p := NewPostsPipeline(NewClient(ClientOptions{}), srv.URL, 10*time.Minute)
	res, err := p.Get(context.Background(), "tester")
	require.NoError(t, err)
	require.Len(t, res.Posts, 1)
	assert.Equal(t, "Go in Anger", res.Posts[0].Title)
}

func TestPostsPipeline_FeedFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/feed/") {
			w.Header().Set("Content-Type", "application/rss+xml")
			w.Write([]byte(feedXML))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewPostsPipeline(NewClient(ClientOptions{}), srv.URL, 10*time.Minute)
	res, err := p.Get(context.Background(), "tester")
	require.NoError(t, err)
	require.Len(t, res.Posts, 1)
	assert.Equal(t, "Streaming Pipelines in Practice", res.Posts[0].Title)
	assert.Equal(t, "streaming-pipelines-abc123", res.Posts[0].Slug)
}

func TestPostsPipeline_DegradesToEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p := NewPostsPipeline(NewClient(ClientOptions{}), srv.URL, 10*time.Minute)
	res, err := p.Get(context.Background(), "tester")
	require.NoError(t, err)
	assert.Empty(t, res.Posts)
	assert.NotEmpty(t, res.Note)
}

func TestPostsPipeline_MissingUsername(t *testing.T) {
	p := NewPostsPipeline(NewClient(ClientOptions{}), "https://medium.com", 10*time.Minute)
	_, err := p.Get(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingIdentifier)
}

func TestClient_BodyCap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(make([]byte, 4096))
	}))
	defer srv.Close()

	c := NewClient(ClientOptions{MaxBodyBytes: 1024})
	res, err := c.Fetch(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, Success, res.Outcome)
	assert.Len(t, res.Body, 1024)
}

func TestAwardsPipeline_DiskFallbackOnHTTPError(t *testing.T) {
	dir := t.TempDir()
	disk := cache.NewDisk[model.Award](dir, "linkedin_awards")
	require.NoError(t, disk.Write("testuser", []model.Award{
		{Title: "Archived Award", Year: "2022"},
	}))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	p := NewAwardsPipeline(NewClient(ClientOptions{}), srv.URL, dir, 10*time.Minute)
	res, err := p.Get(context.Background(), "testuser")
	require.NoError(t, err)
	assert.True(t, res.Stale)
	require.Len(t, res.Awards, 1)
	assert.Equal(t, "Archived Award", res.Awards[0].Title)
}

func TestAwardsPipeline_NetworkErrorWithoutFallback(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // connection refused from here on

	p := NewAwardsPipeline(NewClient(ClientOptions{Timeout: 2 * time.Second}), srv.URL, t.TempDir(), 10*time.Minute)
	_, err := p.Get(context.Background(), "testuser")
	require.Error(t, err)

	var ue *UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Zero(t, ue.Status)
	assert.Contains(t, ue.Error(), "unreachable")
}

func TestRecsPipeline_StaleMemoryOnHTTPError(t *testing.T) {
	failing := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failing {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(recsHTML))
	}))
	defer srv.Close()

	p := NewRecsPipeline(NewClient(ClientOptions{}), srv.URL, time.Nanosecond)
	_, err := p.Get(context.Background(), "testuser")
	require.NoError(t, err)

	failing = true
	res, err := p.Get(context.Background(), "testuser")
	require.NoError(t, err)
	assert.True(t, res.Stale)
	assert.NotEmpty(t, res.Recommendations)
}

func TestRecsPipeline_HTTPErrorWithoutFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	p := NewRecsPipeline(NewClient(ClientOptions{}), srv.URL, 10*time.Minute)
	_, err := p.Get(context.Background(), "testuser")
	require.Error(t, err)

	var ue *UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, http.StatusForbidden, ue.Status)
}

func TestClient_StatusBoundary(t *testing.T) {
	status := 399
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))
	defer srv.Close()

	c := NewClient(ClientOptions{})
	res, err := c.Fetch(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, Success, res.Outcome)

	status = 400
	res, err = c.Fetch(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, HTTPError, res.Outcome)
	assert.Equal(t, 400, res.StatusCode)
}
