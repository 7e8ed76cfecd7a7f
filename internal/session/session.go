// Package session owns the interest store, search index and category tree of one user session
// and runs every user action against them.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hyperjump/treerec/internal/analysis"
	"github.com/hyperjump/treerec/internal/catalog"
	"github.com/hyperjump/treerec/internal/interest"
	"github.com/hyperjump/treerec/internal/keyword"
	"github.com/hyperjump/treerec/internal/metrics"
	"github.com/hyperjump/treerec/internal/models"
	"github.com/hyperjump/treerec/internal/ranking"
	"github.com/hyperjump/treerec/internal/storage"
	"github.com/hyperjump/treerec/internal/synth"
	"github.com/hyperjump/treerec/pkg/utils"
	"go.uber.org/zap"
)

var (
	// ErrItemNotFound is returned when an item ID is not in the catalog.
	ErrItemNotFound = errors.New("item not found")
	// ErrDuplicateItem is returned when an item ID is already in the catalog.
	ErrDuplicateItem = errors.New("duplicate item")
)

// Boosts are the interest weights added per action type.
type Boosts struct {
	Search    float64
	Social    float64
	Streaming float64
	View      float64
}

// DefaultBoosts returns the standard per-action boosts.
func DefaultBoosts() Boosts {
	return Boosts{Search: 2.0, Social: 1.0, Streaming: 1.5, View: 0.5}
}

// DefaultRecommendationLimit is used when Recommendations is called with limit <= 0.
const DefaultRecommendationLimit = 4

// Session is the single-user recommendation context. A mutex serializes every operation;
// the structures it owns are not synchronized themselves.
type Session struct {
	mu sync.Mutex

	interests *interest.Store
	index     keyword.Index
	tree      *catalog.Tree
	tokenizer *analysis.Tokenizer
	synth     *synth.Synthesizer
	ranker    *ranking.Ranker
	suggester *keyword.Suggester
	journal   storage.ActionLog

	boosts       Boosts
	defaultLimit int
	clock        utils.Clock
	logger       *zap.Logger

	interestOpts []interest.StoreOption
	synthOpts    []synth.SynthesizerOption

	recs []*models.ScoredItem
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithClock sets the time source for action timestamps and interest decay.
func WithClock(c utils.Clock) Option {
	return func(s *Session) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithTokenizer replaces the default tokenizer.
func WithTokenizer(t *analysis.Tokenizer) Option {
	return func(s *Session) {
		if t != nil {
			s.tokenizer = t
		}
	}
}

// WithRanker replaces the default ranker.
func WithRanker(r *ranking.Ranker) Option {
	return func(s *Session) {
		if r != nil {
			s.ranker = r
		}
	}
}

// WithBoosts sets the per-action interest boosts.
func WithBoosts(b Boosts) Option {
	return func(s *Session) { s.boosts = b }
}

// WithDefaultLimit sets the number of recommendations returned when no limit is given.
func WithDefaultLimit(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.defaultLimit = n
		}
	}
}

// WithInterestOptions passes options to the interest store.
func WithInterestOptions(opts ...interest.StoreOption) Option {
	return func(s *Session) { s.interestOpts = append(s.interestOpts, opts...) }
}

// WithSynthOptions passes options to the item synthesizer.
func WithSynthOptions(opts ...synth.SynthesizerOption) Option {
	return func(s *Session) { s.synthOpts = append(s.synthOpts, opts...) }
}

// New creates an empty session over index, recording actions into journal.
func New(index keyword.Index, journal storage.ActionLog, opts ...Option) *Session {
	s := &Session{
		index:        index,
		tree:         catalog.NewTree(),
		tokenizer:    analysis.NewTokenizer(),
		ranker:       ranking.NewRanker(),
		suggester:    keyword.NewSuggester(index),
		journal:      journal,
		boosts:       DefaultBoosts(),
		defaultLimit: DefaultRecommendationLimit,
		clock:        utils.RealClock{},
		recs:         []*models.ScoredItem{},
	}
	for _, opt := range opts {
		opt(s)
	}

	interestOpts := append([]interest.StoreOption{interest.WithClock(s.clock), interest.WithLogger(s.logger)}, s.interestOpts...)
	s.interests = interest.NewStore(interestOpts...)
	synthOpts := append([]synth.SynthesizerOption{synth.WithLogger(s.logger)}, s.synthOpts...)
	s.synth = synth.NewSynthesizer(index, s.tree, synthOpts...)
	return s
}

// Close releases the search index and the journal.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return errors.Join(s.index.Close(), s.journal.Close())
}

// Search records a search for query, boosts its tokens and the whole query, and returns the
// matching items. When nothing matches, an item is synthesized for the query and returned.
// A blank query is a no-op.
func (s *Session) Search(ctx context.Context, query string) (_ *models.ActionResult, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	term := strings.TrimSpace(query)
	if term == "" {
		return s.noop(), nil
	}

	action, err := s.record(ctx, models.ActionSearch, term)
	if err != nil {
		return nil, err
	}
	// boosts below stick even if a later step fails
	defer s.recomputeOnError(&err)
	tokens := s.tokenizer.Extract(term)
	s.boost(tokens, s.boosts.Search)
	s.boost([]string{strings.ToLower(term)}, s.boosts.Search)

	hits, err := s.index.Search(ctx, term)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	metrics.RecordSearch(len(hits) > 0)

	result := &models.ActionResult{Action: action, Tokens: tokens}
	if len(hits) == 0 {
		result.Suggestions = s.suggest(term)
		item, err := s.synthesize(ctx, term, synth.SourceSearch)
		if err != nil {
			return nil, err
		}
		hits = keyword.IDSet{item.ID: {}}
		result.Synthesized = []*models.Item{item}
	}
	for _, item := range s.tree.Items() {
		if hits.Contains(item.ID) {
			result.Results = append(result.Results, item)
		}
	}

	s.recompute()
	result.Recommendations = s.topLocked(0)
	return result, nil
}

// SocialPost records a social post, boosts its tokens and synthesizes an item for every
// token the catalog does not answer. A blank post is a no-op.
func (s *Session) SocialPost(ctx context.Context, text string) (*models.ActionResult, error) {
	return s.ingest(ctx, models.ActionSocialPost, text, text, s.boosts.Social, synth.SourceSocial)
}

// Streaming records watched content, boosts its tokens and synthesizes an item for every
// token the catalog does not answer. A blank text is a no-op.
func (s *Session) Streaming(ctx context.Context, text string) (*models.ActionResult, error) {
	return s.ingest(ctx, models.ActionStreaming, "Assistiu: "+strings.TrimSpace(text), text, s.boosts.Streaming, synth.SourceStreaming)
}

func (s *Session) ingest(ctx context.Context, typ models.ActionType, content, text string, boost float64, source synth.Source) (_ *models.ActionResult, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(text) == "" {
		return s.noop(), nil
	}
	action, err := s.record(ctx, typ, content)
	if err != nil {
		return nil, err
	}
	defer s.recomputeOnError(&err)
	tokens := s.tokenizer.Extract(text)
	s.boost(tokens, boost)

	result := &models.ActionResult{Action: action, Tokens: tokens}
	for _, token := range tokens {
		hits, err := s.index.Search(ctx, token)
		if err != nil {
			return nil, fmt.Errorf("search index: %w", err)
		}
		if len(hits) > 0 {
			continue
		}
		item, err := s.synthesize(ctx, token, source)
		if err != nil {
			return nil, err
		}
		result.Synthesized = append(result.Synthesized, item)
	}

	s.recompute()
	result.Recommendations = s.topLocked(0)
	return result, nil
}

// ViewItem records a view of item id and boosts its keywords, brand and leaf category.
func (s *Session) ViewItem(ctx context.Context, id string) (*models.ActionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.tree.Item(strings.TrimSpace(id))
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	action, err := s.record(ctx, models.ActionView, "Visualizou "+item.Name)
	if err != nil {
		return nil, err
	}

	words := append([]string{}, item.Keywords...)
	words = append(words, strings.ToLower(item.Brand))
	if leaf := item.LeafCategory(); leaf != "" {
		words = append(words, strings.ToLower(leaf))
	}
	s.boost(words, s.boosts.View)

	s.recompute()
	return &models.ActionResult{
		Action:          action,
		Tokens:          words,
		Results:         []*models.Item{item},
		Recommendations: s.topLocked(0),
	}, nil
}

// AddItem registers item into the catalog tree and the search index.
func (s *Session) AddItem(ctx context.Context, item *models.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.addLocked(ctx, item); err != nil {
		return err
	}
	s.recompute()
	return nil
}

// AddItems registers items, skipping IDs already in the catalog.
func (s *Session) AddItems(ctx context.Context, items []*models.Item) (added, skipped int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.recompute()

	for _, item := range items {
		err := s.addLocked(ctx, item)
		switch {
		case err == nil:
			added++
		case errors.Is(err, ErrDuplicateItem):
			skipped++
		default:
			return added, skipped, err
		}
	}
	return added, skipped, nil
}

// ImportResult summarizes a catalog file import.
type ImportResult struct {
	Path    string `json:"path"`
	Added   int    `json:"added"`
	Skipped int    `json:"skipped"`
}

// ImportFile loads a catalog file and registers its items.
func (s *Session) ImportFile(ctx context.Context, path string) (*ImportResult, error) {
	items, err := catalog.Load(path)
	if err != nil {
		metrics.RecordImport(err)
		return nil, fmt.Errorf("import %s: %w", path, err)
	}
	added, skipped, err := s.AddItems(ctx, items)
	metrics.RecordImport(err)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", path, err)
	}
	if s.logger != nil {
		s.logger.Info("catalog imported",
			zap.String("path", path),
			zap.Int("added", added),
			zap.Int("skipped", skipped))
	}
	return &ImportResult{Path: path, Added: added, Skipped: skipped}, nil
}

func (s *Session) addLocked(ctx context.Context, item *models.Item) error {
	if item == nil {
		return fmt.Errorf("%w: nil item", models.ErrInvalidItem)
	}
	if s.tree.Contains(item.ID) {
		return fmt.Errorf("%w: %s", ErrDuplicateItem, item.ID)
	}
	if err := s.index.Index(ctx, item); err != nil {
		return fmt.Errorf("index item %s: %w", item.ID, err)
	}
	s.tree.Insert(item)
	metrics.CatalogItems.Set(float64(s.tree.Len()))
	return nil
}

func (s *Session) noop() *models.ActionResult {
	return &models.ActionResult{Tokens: []string{}, Recommendations: s.topLocked(0)}
}

func (s *Session) record(ctx context.Context, typ models.ActionType, content string) (*models.Action, error) {
	action := &models.Action{Type: typ, Content: content, Timestamp: s.clock.Now()}
	if err := s.journal.Append(ctx, action); err != nil {
		return nil, fmt.Errorf("record action: %w", err)
	}
	metrics.RecordAction(string(typ))
	if s.logger != nil {
		s.logger.Debug("action recorded",
			zap.String("type", string(typ)),
			zap.String("content", content))
	}
	return action, nil
}

func (s *Session) boost(words []string, weight float64) {
	for _, w := range words {
		if s.interests.Insert(w, weight) {
			metrics.InterestInsertions.Inc()
		}
	}
}

func (s *Session) synthesize(ctx context.Context, term string, source synth.Source) (*models.Item, error) {
	item, err := s.synth.Synthesize(ctx, term, source)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("synthesis failed", zap.String("term", term), zap.Error(err))
		}
		return nil, fmt.Errorf("synthesize %q: %w", term, err)
	}
	metrics.RecordSynthesis(source.String())
	metrics.CatalogItems.Set(float64(s.tree.Len()))
	return item, nil
}

func (s *Session) suggest(term string) []string {
	suggestions, err := s.suggester.Suggest(term)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("suggestions failed", zap.String("term", term), zap.Error(err))
		}
		return nil
	}
	out := make([]string, 0, len(suggestions))
	for _, sg := range suggestions {
		out = append(out, sg.Term)
	}
	return out
}

// recomputeOnError keeps the ranking in step with the interests when an action fails
// after its boosts were applied.
func (s *Session) recomputeOnError(err *error) {
	if *err != nil {
		s.recompute()
	}
}

func (s *Session) recompute() {
	start := time.Now()
	s.recs = s.ranker.Rank(s.tree.Items(), s.interests.Interests())
	metrics.RecordRecommendation(time.Since(start))
}

func (s *Session) topLocked(limit int) []*models.ScoredItem {
	if limit <= 0 {
		limit = s.defaultLimit
	}
	top := ranking.Top(s.recs, limit)
	return append(make([]*models.ScoredItem, 0, len(top)), top...)
}
