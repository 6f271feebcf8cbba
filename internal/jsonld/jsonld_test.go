package jsonld

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_SkipsMalformedBlocks(t *testing.T) {
	html := `
<script type="application/ld+json">{"name": "Gem Award", "description": "quarterly"}</script>
<script type="application/ld+json">{not valid json</script>
<script type="application/ld+json">[{"@type": "Person"}]</script>`
	blocks := Extract(html)
	assert.Len(t, blocks, 2)
}

func TestExtract_NoBlocks(t *testing.T) {
	assert.Empty(t, Extract("<html><body>nothing embedded</body></html>"))
}

func TestCollectAwardTexts_NameMatch(t *testing.T) {
	blocks := Extract(`<script type="application/ld+json">
{"@type":"CreativeWork","name":"Gem Award","description":"best quarter"}</script>`)
	texts := CollectAwardTexts(blocks)
	require.Len(t, texts, 1)
	assert.Equal(t, "Gem Award · best quarter", texts[0])
}

func TestCollectAwardTexts_AwardKeySerializes(t *testing.T) {
	blocks := Extract(`<script type="application/ld+json">
{"@type":"Person","award":"Top Performer 2023"}</script>`)
	texts := CollectAwardTexts(blocks)
	require.Len(t, texts, 1)
	assert.Contains(t, texts[0], "Top Performer 2023")
}

func TestCollectAwardTexts_NestedNodes(t *testing.T) {
	blocks := Extract(`<script type="application/ld+json">
{"@graph":[{"about":{"name":"Merit Scholarship"}}]}</script>`)
	texts := CollectAwardTexts(blocks)
	require.Len(t, texts, 1)
	assert.Equal(t, "Merit Scholarship", texts[0])
}

func TestCollectReviews(t *testing.T) {
	blocks := Extract(`<script type="application/ld+json">
{"@type":"Review","reviewBody":"A fantastic collaborator.",
 "author":{"name":"Priya N","jobTitle":"Engineering Manager","image":"https://cdn.example/p.jpg"}}</script>`)
	reviews := CollectReviews(blocks)
	require.Len(t, reviews, 1)
	assert.Equal(t, "Priya N", reviews[0].Name)
	assert.Equal(t, "Engineering Manager", reviews[0].Role)
	assert.Equal(t, "https://cdn.example/p.jpg", reviews[0].Photo)
	assert.Equal(t, "A fantastic collaborator.", reviews[0].Body)
}

func TestCollectReviews_StringAuthor(t *testing.T) {
	blocks := Extract(`<script type="application/ld+json">
{"@type":"Recommendation","text":"Great to work with.","author":"Sam T"}</script>`)
	reviews := CollectReviews(blocks)
	require.Len(t, reviews, 1)
	assert.Equal(t, "Sam T", reviews[0].Name)
	assert.Equal(t, "Great to work with.", reviews[0].Body)
}

func TestCollectReviews_RequiresAuthorAndBody(t *testing.T) {
	blocks := Extract(`<script type="application/ld+json">
[{"@type":"Review","reviewBody":"no author"},{"@type":"Person","author":"x"}]</script>`)
	assert.Empty(t, CollectReviews(blocks))
}

func TestWalk_DepthBounded(t *testing.T) {
	// 200 levels of nesting, well past maxDepth; must return without
	// recursing unboundedly and still visit the shallow node.
	deep := `{"name":"Service Award"`
	for i := 0; i < 200; i++ {
		deep += `,"child":{"x":1`
	}
	deep += strings.Repeat("}", 200) + "}"
	blocks := Extract(fmt.Sprintf(`<script type="application/ld+json">%s</script>`, deep))
	require.Len(t, blocks, 1)
	texts := CollectAwardTexts(blocks)
	assert.Contains(t, texts, "Service Award")
}
