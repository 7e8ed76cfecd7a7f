// Package storage defines the action journal and its SQLite implementation.
package storage

import (
	"context"

	"github.com/hyperjump/treerec/internal/models"
)

// MemoryPath is the database path that keeps the journal in memory only.
const MemoryPath = ":memory:"

// ActionLog records user actions.
type ActionLog interface {
	// Append stores action and sets its ID (and Timestamp when zero).
	Append(ctx context.Context, action *models.Action) error
	// List returns actions newest first.
	List(ctx context.Context, offset, limit int) ([]*models.Action, error)
	// Count returns the total number of actions.
	Count(ctx context.Context) (int64, error)
	// CountByType returns the number of actions per type.
	CountByType(ctx context.Context) (map[models.ActionType]int64, error)
	Close() error
}
