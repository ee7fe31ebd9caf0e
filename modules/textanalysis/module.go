// Package textanalysis provides lightweight text mining operators: URL
// harvesting and frequency-based keyword extraction.
package textanalysis

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/vk/pipedox/internal/operator"
	"github.com/vk/pipedox/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the package's operators with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.Register("urls", urlsOp{})
	r.Register("keywords", keywordsOp{})
}

var urlPattern = regexp.MustCompile(`https?://[^\s<>"')\]]+`)

// urlsOp harvests http(s) URLs from full text, in order of first appearance.
type urlsOp struct{}

func (urlsOp) Meta() operator.Meta {
	return operator.Meta{
		Inputs:    operator.Inputs("full_text"),
		Outputs:   []string{"urls"},
		Cacheable: true,
	}
}

func (urlsOp) Invoke(_ context.Context, args operator.Args) (operator.Values, error) {
	text, _ := args["full_text"].(string)
	seen := make(map[string]bool)
	urls := []string{}
	for _, match := range urlPattern.FindAllString(text, -1) {
		match = strings.TrimRight(match, ".,;")
		if !seen[match] {
			seen[match] = true
			urls = append(urls, match)
		}
	}
	return operator.Values{"urls": urls}, nil
}

// stopwords are skipped during keyword counting. The list is deliberately
// small; keyword quality beyond this is a model concern, not an engine one.
var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "but": true, "by": true, "for": true, "from": true, "in": true,
	"is": true, "it": true, "of": true, "on": true, "or": true, "that": true,
	"the": true, "this": true, "to": true, "was": true, "with": true,
}

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}][\p{L}\p{N}-]{2,}`)

// keywordsOp ranks the most frequent non-stopword terms. The top_k parameter
// bounds the result; it usually arrives via a configuration default.
type keywordsOp struct{}

func (keywordsOp) Meta() operator.Meta {
	return operator.Meta{
		Inputs: []operator.Param{
			{Name: "full_text"},
			{Name: "top_k", Optional: true},
		},
		Outputs:   []string{"keywords"},
		Cacheable: true,
	}
}

func (keywordsOp) Invoke(_ context.Context, args operator.Args) (operator.Values, error) {
	text, _ := args["full_text"].(string)
	topK := intArg(args["top_k"], 10)

	counts := make(map[string]int)
	var order []string
	for _, word := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		if stopwords[word] {
			continue
		}
		if counts[word] == 0 {
			order = append(order, word)
		}
		counts[word]++
	}

	// Stable rank: by count descending, then by first appearance.
	firstSeen := make(map[string]int, len(order))
	for i, word := range order {
		firstSeen[word] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		if counts[order[i]] != counts[order[j]] {
			return counts[order[i]] > counts[order[j]]
		}
		return firstSeen[order[i]] < firstSeen[order[j]]
	})

	if topK >= 0 && len(order) > topK {
		order = order[:topK]
	}
	if order == nil {
		order = []string{}
	}
	return operator.Values{"keywords": order}, nil
}

// intArg widens whatever numeric type the declaration layer produced.
func intArg(value any, fallback int) int {
	switch v := value.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return fallback
	}
}
