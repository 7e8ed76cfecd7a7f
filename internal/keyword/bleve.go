package keyword

import (
	"context"
	"fmt"

	"github.com/blevesearch/bleve/v2"
	keywordanalyzer "github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/hyperjump/treerec/internal/analysis"
	"github.com/hyperjump/treerec/internal/models"
)

const tokensField = "tokens"

// BleveIndex implements Index on an in-memory Bleve index. Each item is one document
// whose "tokens" field is keyword-analyzed, so a prefix query over it matches the
// same items as a TrieIndex walk.
type BleveIndex struct {
	index  bleve.Index
	tokens map[string][]string
}

// NewBleveIndex creates an empty in-memory Bleve index.
func NewBleveIndex() (*BleveIndex, error) {
	im := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	tokens := bleve.NewTextFieldMapping()
	tokens.Analyzer = keywordanalyzer.Name
	tokens.Store = false
	tokens.IncludeTermVectors = false
	docMapping.AddFieldMappingsAt(tokensField, tokens)
	im.DefaultMapping = docMapping

	index, err := bleve.NewMemOnly(im)
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &BleveIndex{index: index, tokens: make(map[string][]string)}, nil
}

// Index stores item under its ID. Re-indexing an ID merges the new tokens with the old ones.
func (b *BleveIndex) Index(ctx context.Context, item *models.Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tokens := b.tokens[item.ID]
	seen := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		seen[t] = struct{}{}
	}
	for _, t := range ItemTokens(item) {
		if _, ok := seen[t]; !ok {
			seen[t] = struct{}{}
			tokens = append(tokens, t)
		}
	}
	if err := b.index.Index(item.ID, map[string]interface{}{tokensField: tokens}); err != nil {
		return fmt.Errorf("failed to index item %s: %w", item.ID, err)
	}
	b.tokens[item.ID] = tokens
	return nil
}

// Search runs a prefix query over the tokens field and returns every matching item.
func (b *BleveIndex) Search(ctx context.Context, query string) (IDSet, error) {
	out := make(IDSet)
	query = analysis.Normalize(query)
	if query == "" {
		return out, nil
	}
	count, err := b.index.DocCount()
	if err != nil {
		return nil, fmt.Errorf("failed to count documents: %w", err)
	}
	if count == 0 {
		return out, nil
	}

	q := bleve.NewPrefixQuery(query)
	q.SetField(tokensField)
	req := bleve.NewSearchRequestOptions(q, int(count), 0, false)
	results, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("Bleve search failed: %w", err)
	}
	for _, hit := range results.Hits {
		out.Add(hit.ID)
	}
	return out, nil
}

// Terms returns every token from the field dictionary with its document count.
func (b *BleveIndex) Terms() (map[string]int, error) {
	dict, err := b.index.FieldDict(tokensField)
	if err != nil {
		return nil, fmt.Errorf("failed to open term dictionary: %w", err)
	}
	defer dict.Close()

	out := make(map[string]int)
	for {
		entry, err := dict.Next()
		if err != nil {
			return nil, fmt.Errorf("failed to read term dictionary: %w", err)
		}
		if entry == nil {
			break
		}
		out[entry.Term] = int(entry.Count)
	}
	return out, nil
}

// DocCount returns the number of documents in the index.
func (b *BleveIndex) DocCount() (uint64, error) {
	return b.index.DocCount()
}

// Close closes the Bleve index.
func (b *BleveIndex) Close() error {
	return b.index.Close()
}
