package session

import (
	"context"
	"fmt"

	"github.com/hyperjump/treerec/internal/analysis"
	"github.com/hyperjump/treerec/internal/catalog"
	"github.com/hyperjump/treerec/internal/config"
	"github.com/hyperjump/treerec/internal/interest"
	"github.com/hyperjump/treerec/internal/keyword"
	"github.com/hyperjump/treerec/internal/storage"
	"github.com/hyperjump/treerec/internal/synth"
	"go.uber.org/zap"
)

// NewFromConfig builds a session from cfg: search backend, journal, tokenizer, boosts,
// decay and synthesis settings. The seed catalog and the configured catalog files are loaded.
func NewFromConfig(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts ...Option) (*Session, error) {
	index, err := keyword.NewIndex(cfg.Search.Backend)
	if err != nil {
		return nil, fmt.Errorf("failed to create search index: %w", err)
	}
	journal, err := storage.NewSQLiteActionLog(cfg.Storage.DatabasePath)
	if err != nil {
		_ = index.Close()
		return nil, fmt.Errorf("failed to open action journal: %w", err)
	}

	base := []Option{
		WithLogger(logger),
		WithTokenizer(analysis.NewTokenizer(analysis.WithStopWords(cfg.Tokenizer.ExtraStopWords...))),
		WithBoosts(Boosts{
			Search:    cfg.Interest.SearchBoost,
			Social:    cfg.Interest.SocialBoost,
			Streaming: cfg.Interest.StreamingBoost,
			View:      cfg.Interest.ViewBoost,
		}),
		WithDefaultLimit(cfg.Recommend.DefaultLimit),
		WithInterestOptions(interest.WithDecay(cfg.Interest.DecayRate, cfg.Interest.DecayAfter)),
		WithSynthOptions(
			synth.WithPriceRange(cfg.Synth.PriceMin, cfg.Synth.PriceSpread),
			synth.WithLatency(cfg.Synth.Latency),
		),
	}
	s := New(index, journal, append(base, opts...)...)

	if cfg.Catalog.SeedOrDefault() {
		items, err := catalog.Seed()
		if err != nil {
			_ = s.Close()
			return nil, err
		}
		if _, _, err := s.AddItems(ctx, items); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("failed to load seed catalog: %w", err)
		}
	}
	for _, path := range cfg.Catalog.Files {
		if _, err := s.ImportFile(ctx, path); err != nil {
			_ = s.Close()
			return nil, err
		}
	}
	if logger != nil {
		logger.Info("session ready",
			zap.String("backend", cfg.Search.Backend),
			zap.String("journal", cfg.Storage.DatabasePath),
			zap.Int("items", len(s.Items())))
	}
	return s, nil
}
