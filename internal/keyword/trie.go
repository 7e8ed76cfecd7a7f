package keyword

import (
	"context"

	"github.com/hyperjump/treerec/internal/analysis"
	"github.com/hyperjump/treerec/internal/models"
)

type trieNode struct {
	children map[rune]*trieNode
	ids      IDSet
}

func newTrieNode() *trieNode {
	return &trieNode{children: make(map[rune]*trieNode)}
}

// TrieIndex implements Index with an in-memory rune trie. Not safe for concurrent use.
type TrieIndex struct {
	root *trieNode
	docs IDSet
}

// NewTrieIndex returns an empty trie index.
func NewTrieIndex() *TrieIndex {
	return &TrieIndex{root: newTrieNode(), docs: make(IDSet)}
}

// Index attaches item.ID to the terminal node of each of its tokens.
func (t *TrieIndex) Index(ctx context.Context, item *models.Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, token := range ItemTokens(item) {
		cur := t.root
		for _, r := range token {
			next, ok := cur.children[r]
			if !ok {
				next = newTrieNode()
				cur.children[r] = next
			}
			cur = next
		}
		if cur.ids == nil {
			cur.ids = make(IDSet)
		}
		cur.ids.Add(item.ID)
	}
	t.docs.Add(item.ID)
	return nil
}

// Search walks query and unions the IDs of the reached node and all its descendants.
func (t *TrieIndex) Search(ctx context.Context, query string) (IDSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make(IDSet)
	query = analysis.Normalize(query)
	if query == "" {
		return out, nil
	}
	cur := t.root
	for _, r := range query {
		next, ok := cur.children[r]
		if !ok {
			return out, nil
		}
		cur = next
	}
	collect(cur, out)
	return out, nil
}

func collect(n *trieNode, out IDSet) {
	for id := range n.ids {
		out.Add(id)
	}
	for _, child := range n.children {
		collect(child, out)
	}
}

// Terms returns every token with its item count.
func (t *TrieIndex) Terms() (map[string]int, error) {
	out := make(map[string]int)
	var walk func(n *trieNode, prefix []rune)
	walk = func(n *trieNode, prefix []rune) {
		if len(n.ids) > 0 {
			out[string(prefix)] = len(n.ids)
		}
		for r, child := range n.children {
			walk(child, append(prefix, r))
		}
	}
	walk(t.root, nil)
	return out, nil
}

// DocCount returns the number of distinct items indexed.
func (t *TrieIndex) DocCount() (uint64, error) {
	return uint64(len(t.docs)), nil
}

// Close is a no-op.
func (t *TrieIndex) Close() error { return nil }
