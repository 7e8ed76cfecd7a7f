// Package models defines core data structures for catalog items, user actions, and ranked results.
package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hyperjump/treerec/internal/validation"
)

// ErrInvalidItem is returned when an item fails validation.
var ErrInvalidItem = errors.New("invalid item")

// Item is a catalog product. Items are immutable once built.
type Item struct {
	ID           string   `json:"id" yaml:"id" validate:"required"`
	Name         string   `json:"name" yaml:"name"`
	Brand        string   `json:"brand" yaml:"brand"`
	CategoryPath []string `json:"category_path" yaml:"category_path"`
	Description  string   `json:"description" yaml:"description"`
	Keywords     []string `json:"keywords" yaml:"keywords"`
	Price        float64  `json:"price" yaml:"price" validate:"gte=0"`
}

// ItemInput is the input for creating an item.
type ItemInput struct {
	ID           string   `json:"id" yaml:"id"`
	Name         string   `json:"name" yaml:"name"`
	Brand        string   `json:"brand" yaml:"brand"`
	CategoryPath []string `json:"category_path" yaml:"category_path"`
	Description  string   `json:"description" yaml:"description"`
	Keywords     []string `json:"keywords" yaml:"keywords"`
	Price        float64  `json:"price" yaml:"price"`
}

// NewItem normalizes in and validates the result.
// Keywords are lowercased; empty keywords and empty path labels are dropped.
func NewItem(in ItemInput) (*Item, error) {
	item := &Item{
		ID:          strings.TrimSpace(in.ID),
		Name:        strings.TrimSpace(in.Name),
		Brand:       strings.TrimSpace(in.Brand),
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price,
	}
	for _, label := range in.CategoryPath {
		if label = strings.TrimSpace(label); label != "" {
			item.CategoryPath = append(item.CategoryPath, label)
		}
	}
	for _, kw := range in.Keywords {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
			item.Keywords = append(item.Keywords, kw)
		}
	}
	if verr := validation.ValidateStruct(item); verr != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidItem, verr)
	}
	return item, nil
}

// LeafCategory returns the last label of the category path, or "" for a root item.
func (i *Item) LeafCategory() string {
	if len(i.CategoryPath) == 0 {
		return ""
	}
	return i.CategoryPath[len(i.CategoryPath)-1]
}

// ScoredItem is an item ranked against the current interests.
type ScoredItem struct {
	Item
	Score        float64  `json:"score"`
	MatchReasons []string `json:"match_reasons"`
}
