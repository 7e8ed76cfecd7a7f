package keyword

import "fmt"

// Backend names a search index implementation.
type Backend string

const (
	// BackendTrie is the in-memory rune trie. Default.
	BackendTrie Backend = "trie"
	// BackendBleve is an in-memory Bleve index with a keyword-analyzed tokens field.
	BackendBleve Backend = "bleve"
)

// NewIndex creates a search index for backend.
// Supported backends: "trie" (default), "bleve".
func NewIndex(backend string) (Index, error) {
	switch Backend(backend) {
	case BackendTrie, "":
		return NewTrieIndex(), nil
	case BackendBleve:
		return NewBleveIndex()
	default:
		return nil, fmt.Errorf("unknown search backend: %s (supported: trie, bleve)", backend)
	}
}
