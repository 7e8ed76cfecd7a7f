// Package keyword provides the prefix-closed inverted index over catalog items.
package keyword

import (
	"context"
	"sort"
	"strings"

	"github.com/hyperjump/treerec/internal/analysis"
	"github.com/hyperjump/treerec/internal/models"
)

// IDSet is a set of item IDs.
type IDSet map[string]struct{}

// Add inserts id into the set.
func (s IDSet) Add(id string) { s[id] = struct{}{} }

// Contains reports whether id is in the set.
func (s IDSet) Contains(id string) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the IDs in lexical order.
func (s IDSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Index defines search index operations.
type Index interface {
	// Index attaches item's ID to every token derived from it.
	Index(ctx context.Context, item *models.Item) error
	// Search returns the IDs attached to query or to any token that has query as a prefix.
	// An empty query or a path that does not exist yields an empty set.
	Search(ctx context.Context, query string) (IDSet, error)
	// Terms returns every indexed token with the number of items carrying it.
	Terms() (map[string]int, error)
	// DocCount returns the number of distinct items indexed.
	DocCount() (uint64, error)
	Close() error
}

// ItemTokens returns the tokens an item is indexed under: keywords, brand, category labels
// and the whitespace-separated words of its name. Tokens are lowercased and trimmed.
func ItemTokens(item *models.Item) []string {
	raw := make([]string, 0, len(item.Keywords)+len(item.CategoryPath)+4)
	raw = append(raw, item.Keywords...)
	raw = append(raw, item.Brand)
	raw = append(raw, item.CategoryPath...)
	raw = append(raw, strings.Fields(item.Name)...)

	tokens := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, t := range raw {
		t = analysis.Normalize(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		tokens = append(tokens, t)
	}
	return tokens
}
