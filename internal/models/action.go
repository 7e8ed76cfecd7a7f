package models

import "time"

// ActionType identifies the kind of user action.
type ActionType string

const (
	ActionSearch     ActionType = "SEARCH"
	ActionSocialPost ActionType = "SOCIAL_POST"
	ActionStreaming  ActionType = "STREAMING"
	ActionView       ActionType = "VIEW"
)

// Valid reports whether t is a known action type.
func (t ActionType) Valid() bool {
	switch t {
	case ActionSearch, ActionSocialPost, ActionStreaming, ActionView:
		return true
	}
	return false
}

// Action is one recorded user action.
type Action struct {
	ID        int64      `json:"id" db:"id"`
	Type      ActionType `json:"type" db:"type"`
	Content   string     `json:"content" db:"content"`
	Timestamp time.Time  `json:"timestamp" db:"timestamp"`
}

// ActionResult is returned by every state-changing session operation.
// Suggestions lists close indexed terms when a search found nothing.
type ActionResult struct {
	Action          *Action       `json:"action,omitempty"`
	Tokens          []string      `json:"tokens"`
	Results         []*Item       `json:"results,omitempty"`
	Synthesized     []*Item       `json:"synthesized,omitempty"`
	Suggestions     []string      `json:"suggestions,omitempty"`
	Recommendations []*ScoredItem `json:"recommendations"`
}
