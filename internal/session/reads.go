package session

import (
	"context"
	"fmt"

	"github.com/hyperjump/treerec/internal/keyword"
	"github.com/hyperjump/treerec/internal/models"
)

// Reads return snapshots that stay valid until the next mutation.

// Recommendations returns up to limit ranked items. limit <= 0 uses the default limit.
func (s *Session) Recommendations(limit int) []*models.ScoredItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.topLocked(limit)
}

// Interests returns every interest word with its stored weight.
func (s *Session) Interests() map[string]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interests.Interests()
}

// InterestEntries returns the interests sorted by weight descending.
func (s *Session) InterestEntries() []models.InterestEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interests.Entries()
}

// Items returns the catalog in traversal order.
func (s *Session) Items() []*models.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.Items()
}

// Item returns the catalog item with id.
func (s *Session) Item(id string) (*models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.tree.Item(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	return item, nil
}

// BrowseResult is one level of the category tree.
type BrowseResult struct {
	Path     []string       `json:"path"`
	Children []string       `json:"children"`
	Items    []*models.Item `json:"items"`
}

// Browse returns the child categories and the items of the subtree at path.
// A missing path yields an empty result.
func (s *Session) Browse(path []string) *BrowseResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := &BrowseResult{
		Path:     append([]string{}, path...),
		Children: s.tree.Children(path),
		Items:    s.tree.ItemsUnder(path),
	}
	if out.Children == nil {
		out.Children = []string{}
	}
	if out.Items == nil {
		out.Items = []*models.Item{}
	}
	return out
}

// InterestTree renders the interest trie.
func (s *Session) InterestTree() *models.TrieNodeData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interests.TreeData()
}

// CategoryTree renders the category tree.
func (s *Session) CategoryTree() *models.CategoryNodeData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.TreeData()
}

// Actions returns recorded actions newest first.
func (s *Session) Actions(ctx context.Context, offset, limit int) ([]*models.Action, error) {
	actions, err := s.journal.List(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list actions: %w", err)
	}
	return actions, nil
}

// Stats describes the session state.
type Stats struct {
	Items              int                         `json:"items"`
	IndexedItems       uint64                      `json:"indexed_items"`
	IndexBackend       string                      `json:"index_backend"`
	Interests          int                         `json:"interests"`
	InterestInsertions int                         `json:"interest_insertions"`
	Recommendations    int                         `json:"recommendations"`
	Actions            int64                       `json:"actions"`
	ActionsByType      map[models.ActionType]int64 `json:"actions_by_type"`
	JournalBytes       int64                       `json:"journal_bytes"`
}

type diskUser interface {
	DiskUsage() (int64, error)
}

// Stats collects counters from every structure and the journal.
func (s *Session) Stats(ctx context.Context) (*Stats, error) {
	s.mu.Lock()
	st := &Stats{
		Items:              s.tree.Len(),
		IndexBackend:       backendName(s.index),
		Interests:          s.interests.Len(),
		InterestInsertions: s.interests.TotalInsertions(),
		Recommendations:    len(s.recs),
	}
	indexed, err := s.index.DocCount()
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("count indexed items: %w", err)
	}
	st.IndexedItems = indexed

	if st.Actions, err = s.journal.Count(ctx); err != nil {
		return nil, fmt.Errorf("count actions: %w", err)
	}
	if st.ActionsByType, err = s.journal.CountByType(ctx); err != nil {
		return nil, fmt.Errorf("count actions: %w", err)
	}
	if du, ok := s.journal.(diskUser); ok {
		if st.JournalBytes, err = du.DiskUsage(); err != nil {
			return nil, fmt.Errorf("journal disk usage: %w", err)
		}
	}
	return st, nil
}

func backendName(idx keyword.Index) string {
	switch idx.(type) {
	case *keyword.TrieIndex:
		return string(keyword.BackendTrie)
	case *keyword.BleveIndex:
		return string(keyword.BackendBleve)
	default:
		return fmt.Sprintf("%T", idx)
	}
}
