// Package ranking scores catalog items against the current interest weights.
package ranking

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hyperjump/treerec/internal/models"
)

// Ranker joins items with interest weights.
type Ranker struct {
	minWeight float64
}

// RankerOption configures a Ranker.
type RankerOption func(*Ranker)

// WithMinWeight ignores interests whose weight is not above w. Default 0.
func WithMinWeight(w float64) RankerOption {
	return func(r *Ranker) {
		if w >= 0 {
			r.minWeight = w
		}
	}
}

// NewRanker creates a Ranker.
func NewRanker(opts ...RankerOption) *Ranker {
	r := &Ranker{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Rank scores every item by summing the weights of its matched tokens and returns
// the items with a positive score, highest first. Ties keep the order of items.
func (r *Ranker) Rank(items []*models.Item, interests map[string]float64) []*models.ScoredItem {
	if len(items) == 0 || len(interests) == 0 {
		return []*models.ScoredItem{}
	}

	scored := make([]*models.ScoredItem, 0, len(items))
	for _, item := range items {
		var score float64
		var reasons []string
		for _, token := range Tokens(item) {
			w, ok := interests[token]
			if !ok || w <= r.minWeight {
				continue
			}
			score += w
			reasons = append(reasons, fmt.Sprintf("%s (%.1f)", token, w))
		}
		if score > 0 {
			scored = append(scored, &models.ScoredItem{Item: *item, Score: score, MatchReasons: reasons})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

// Top returns the first k entries of scored. k <= 0 returns scored unchanged.
func Top(scored []*models.ScoredItem, k int) []*models.ScoredItem {
	if k <= 0 || len(scored) <= k {
		return scored
	}
	return scored[:k]
}

// Tokens returns the tokens an item is matched on: its keywords, lowercased brand and
// lowercased category labels, deduplicated in first-occurrence order.
func Tokens(item *models.Item) []string {
	raw := make([]string, 0, len(item.Keywords)+1+len(item.CategoryPath))
	raw = append(raw, item.Keywords...)
	raw = append(raw, strings.ToLower(item.Brand))
	for _, label := range item.CategoryPath {
		raw = append(raw, strings.ToLower(label))
	}

	out := raw[:0]
	seen := make(map[string]struct{}, len(raw))
	for _, t := range raw {
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
