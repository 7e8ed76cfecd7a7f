package models

// TrieNodeData is a render snapshot of one interest trie node.
type TrieNodeData struct {
	Name     string          `json:"name"`
	Value    *float64        `json:"value,omitempty"`
	Children []*TrieNodeData `json:"children,omitempty"`
}

// CategoryNodeData is a render snapshot of one category tree node.
// ItemCount counts only the items stored at this exact node.
type CategoryNodeData struct {
	Name      string              `json:"name"`
	ItemCount int                 `json:"item_count"`
	Children  []*CategoryNodeData `json:"children,omitempty"`
}

// InterestEntry is one weighted word of the interest store.
type InterestEntry struct {
	Word   string  `json:"word"`
	Weight float64 `json:"weight"`
}
