// Package catalog holds the category tree of catalog items and loads catalog files.
package catalog

import (
	"github.com/hyperjump/treerec/internal/models"
)

// RootLabel is the label of the category tree root.
const RootLabel = "Catalog"

type node struct {
	label    string
	children map[string]*node
	order    []string
	items    []*models.Item
}

func newNode(label string) *node {
	return &node{label: label, children: make(map[string]*node)}
}

func (n *node) child(label string) *node {
	c, ok := n.children[label]
	if !ok {
		c = newNode(label)
		n.children[label] = c
		n.order = append(n.order, label)
	}
	return c
}

// Tree is an n-ary category tree. Items live at the node of their full category path.
// Not safe for concurrent use.
type Tree struct {
	root *node
	byID map[string]*models.Item
}

// NewTree returns an empty tree rooted at RootLabel.
func NewTree() *Tree {
	return &Tree{root: newNode(RootLabel), byID: make(map[string]*models.Item)}
}

// Insert stores item at the node named by its category path, creating nodes as needed.
// An empty path stores the item at the root.
func (t *Tree) Insert(item *models.Item) {
	cur := t.root
	for _, label := range item.CategoryPath {
		cur = cur.child(label)
	}
	cur.items = append(cur.items, item)
	t.byID[item.ID] = item
}

// Items returns every item in pre-order: a node's own items in insertion order,
// then its children in creation order.
func (t *Tree) Items() []*models.Item {
	out := make([]*models.Item, 0, t.Len())
	collect(t.root, &out)
	return out
}

// ItemsUnder returns the pre-order items of the subtree at path, or nil if it does not exist.
func (t *Tree) ItemsUnder(path []string) []*models.Item {
	n := t.find(path)
	if n == nil {
		return nil
	}
	var out []*models.Item
	collect(n, &out)
	return out
}

// Children returns the child labels of the node at path in creation order.
func (t *Tree) Children(path []string) []string {
	n := t.find(path)
	if n == nil {
		return nil
	}
	return append([]string(nil), n.order...)
}

// Item returns the item with id.
func (t *Tree) Item(id string) (*models.Item, bool) {
	item, ok := t.byID[id]
	return item, ok
}

// Contains reports whether an item with id has been inserted.
func (t *Tree) Contains(id string) bool {
	_, ok := t.byID[id]
	return ok
}

// Len returns the number of distinct item IDs in the tree.
func (t *Tree) Len() int { return len(t.byID) }

// TreeData renders the tree with per-node item counts.
func (t *Tree) TreeData() *models.CategoryNodeData {
	return render(t.root)
}

func (t *Tree) find(path []string) *node {
	cur := t.root
	for _, label := range path {
		next, ok := cur.children[label]
		if !ok {
			return nil
		}
		cur = next
	}
	return cur
}

func collect(n *node, out *[]*models.Item) {
	*out = append(*out, n.items...)
	for _, label := range n.order {
		collect(n.children[label], out)
	}
}

func render(n *node) *models.CategoryNodeData {
	out := &models.CategoryNodeData{Name: n.label, ItemCount: len(n.items)}
	for _, label := range n.order {
		out.Children = append(out.Children, render(n.children[label]))
	}
	return out
}
