// Package jsonld opportunistically parses embedded JSON-LD blocks from HTML
// documents and walks them for award and review shaped nodes. Malformed
// blocks are skipped; traversal is bounded so adversarial nesting cannot
// exhaust the stack.
package jsonld

import (
	"encoding/json"
	"regexp"
)

var scriptRe = regexp.MustCompile(`(?is)<script[^>]*type=["']application/ld\+json["'][^>]*>(.*?)</script>`)

const (
	maxDepth = 32
	maxNodes = 10000
)

// Extract parses every JSON-LD script block in the document. Blocks that are
// not valid JSON are dropped, never fatal.
func Extract(html string) []any {
	var blocks []any
	for _, m := range scriptRe.FindAllStringSubmatch(html, -1) {
		var parsed any
		if err := json.Unmarshal([]byte(m[1]), &parsed); err != nil {
			continue
		}
		blocks = append(blocks, parsed)
	}
	return blocks
}

// walk visits every object node reachable from root, depth-first, bounded by
// maxDepth and maxNodes. visit returning false stops the traversal early.
func walk(root any, visit func(map[string]any) bool) {
	type frame struct {
		node  any
		depth int
	}
	stack := []frame{{root, 0}}
	visited := 0
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.depth > maxDepth {
			continue
		}
		visited++
		if visited > maxNodes {
			return
		}
		switch n := f.node.(type) {
		case []any:
			for _, v := range n {
				stack = append(stack, frame{v, f.depth + 1})
			}
		case map[string]any:
			if !visit(n) {
				return
			}
			for _, v := range n {
				stack = append(stack, frame{v, f.depth + 1})
			}
		}
	}
}

var awardNameRe = regexp.MustCompile(`(?i)award|honor|recognition|scholarship|merit`)

// CollectAwardTexts walks the parsed blocks for nodes that mention an award
// or honor and returns candidate text for each hit: "name · description"
// when the name field matched, or the serialized node when only award-shaped
// keys are present.
func CollectAwardTexts(blocks []any) []string {
	var out []string
	for _, b := range blocks {
		walk(b, func(o map[string]any) bool {
			if name, ok := o["name"].(string); ok && awardNameRe.MatchString(name) {
				text := name
				if desc, ok := o["description"].(string); ok && desc != "" {
					text += " · " + desc
				}
				out = append(out, text)
				return true
			}
			for _, k := range []string{"award", "honour", "honors", "recognition"} {
				if _, ok := o[k]; ok {
					if raw, err := json.Marshal(o); err == nil {
						out = append(out, string(raw))
					}
					break
				}
			}
			return true
		})
	}
	return out
}

// Review is a recommendation-shaped JSON-LD node with its fields resolved.
type Review struct {
	Name  string
	Role  string
	Photo string
	Body  string
}

var reviewTypeRe = regexp.MustCompile(`(?i)Review|Recommendation|Person|CreativeWork`)

// CollectReviews walks the parsed blocks for Review/Recommendation/Person/
// CreativeWork nodes that carry an author and a body text.
func CollectReviews(blocks []any) []Review {
	var out []Review
	for _, b := range blocks {
		walk(b, func(o map[string]any) bool {
			typ, _ := o["@type"].(string)
			if typ == "" || !reviewTypeRe.MatchString(typ) {
				return true
			}
			body := firstString(o, "reviewBody", "description", "text")
			author, hasAuthor := o["author"]
			if !hasAuthor || body == "" {
				return true
			}
			r := Review{Body: body}
			switch a := author.(type) {
			case string:
				r.Name = a
			case map[string]any:
				r.Name, _ = a["name"].(string)
				r.Role, _ = a["jobTitle"].(string)
				r.Photo, _ = a["image"].(string)
			default:
				return true
			}
			if r.Photo == "" {
				r.Photo, _ = o["image"].(string)
			}
			out = append(out, r)
			return true
		})
	}
	return out
}

func firstString(o map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := o[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
