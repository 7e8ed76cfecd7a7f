package cli

import (
	"context"

	"github.com/hyperjump/treerec/internal/models"
	"github.com/hyperjump/treerec/internal/session"
)

// Status is the shape of GET /api/v1/status.
type Status struct {
	Stats            session.Stats `json:"stats"`
	WatchDirectories []string      `json:"watch_directories,omitempty"`
}

// Backend runs CLI commands, either against a server or an in-process session.
type Backend interface {
	Search(ctx context.Context, query string) (*models.ActionResult, error)
	SocialPost(ctx context.Context, text string) (*models.ActionResult, error)
	Streaming(ctx context.Context, text string) (*models.ActionResult, error)
	View(ctx context.Context, id string) (*models.ActionResult, error)
	Recommendations(ctx context.Context, limit int) ([]*models.ScoredItem, error)
	Interests(ctx context.Context) ([]models.InterestEntry, error)
	Status(ctx context.Context) (*Status, error)
}

// Local runs commands against an in-process session.
type Local struct {
	Session *session.Session
}

// NewLocal wraps sess.
func NewLocal(sess *session.Session) *Local {
	return &Local{Session: sess}
}

func (l *Local) Search(ctx context.Context, query string) (*models.ActionResult, error) {
	return l.Session.Search(ctx, query)
}

func (l *Local) SocialPost(ctx context.Context, text string) (*models.ActionResult, error) {
	return l.Session.SocialPost(ctx, text)
}

func (l *Local) Streaming(ctx context.Context, text string) (*models.ActionResult, error) {
	return l.Session.Streaming(ctx, text)
}

func (l *Local) View(ctx context.Context, id string) (*models.ActionResult, error) {
	return l.Session.ViewItem(ctx, id)
}

func (l *Local) Recommendations(_ context.Context, limit int) ([]*models.ScoredItem, error) {
	return l.Session.Recommendations(limit), nil
}

func (l *Local) Interests(_ context.Context) ([]models.InterestEntry, error) {
	return l.Session.InterestEntries(), nil
}

func (l *Local) Status(ctx context.Context) (*Status, error) {
	st, err := l.Session.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return &Status{Stats: *st}, nil
}
