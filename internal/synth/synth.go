// Package synth creates catalog items for terms the catalog cannot answer.
package synth

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hyperjump/treerec/internal/catalog"
	"github.com/hyperjump/treerec/internal/keyword"
	"github.com/hyperjump/treerec/internal/models"
	"github.com/hyperjump/treerec/pkg/utils"
	"go.uber.org/zap"
)

// Source is what triggered a synthesis.
type Source int

const (
	SourceSearch Source = iota
	SourceSocial
	SourceStreaming
)

// String returns the source tag used as a keyword.
func (s Source) String() string {
	switch s {
	case SourceSearch:
		return "search"
	case SourceSocial:
		return "social"
	case SourceStreaming:
		return "streaming"
	default:
		return "unknown"
	}
}

// ParseSource parses a source tag.
func ParseSource(s string) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "search":
		return SourceSearch, nil
	case "social":
		return SourceSocial, nil
	case "streaming":
		return SourceStreaming, nil
	}
	return 0, fmt.Errorf("unknown source: %q", s)
}

func (s Source) category() string {
	switch s {
	case SourceSocial:
		return "Social Trends"
	case SourceStreaming:
		return "Streaming"
	default:
		return "Busca"
	}
}

const (
	// Brand is the brand of every synthesized item.
	Brand = "Genérica / Importada"
	// RootCategory is the first category label of every synthesized item.
	RootCategory = "Novidades"
	// NoveltyKeyword tags every synthesized item.
	NoveltyKeyword = "novidade"

	DefaultPriceMin    = 50
	DefaultPriceSpread = 500
)

var templates = []string{
	"Incrível [TERM] com design moderno e alta durabilidade, ideal para o dia a dia.",
	"A melhor opção de [TERM] do mercado, unindo custo-benefício e performance premium.",
	"[TERM] exclusivo, fabricado com materiais de primeira linha para satisfazer os mais exigentes.",
	"Descubra a qualidade deste [TERM], perfeito para quem busca inovação e estilo.",
	"[TERM] versátil e prático, recomendado por especialistas da área.",
	"Solução completa em [TERM], com tecnologia de ponta e garantia de satisfação.",
	"Aproveite a oferta deste [TERM] que está transformando a experiência dos usuários.",
}

// Templates returns the description templates. "[TERM]" marks the substitution point.
func Templates() []string {
	return append([]string(nil), templates...)
}

// Synthesizer builds items and registers them into the search index and category tree.
type Synthesizer struct {
	index       keyword.Index
	tree        *catalog.Tree
	rng         *rand.Rand
	newID       func() string
	priceMin    int
	priceSpread int
	latency     time.Duration
	logger      *zap.Logger
}

// SynthesizerOption configures a Synthesizer.
type SynthesizerOption func(*Synthesizer)

// WithRand sets the random source for templates and prices.
func WithRand(r *rand.Rand) SynthesizerOption {
	return func(s *Synthesizer) {
		if r != nil {
			s.rng = r
		}
	}
}

// WithIDGenerator replaces the UUID part of generated IDs.
func WithIDGenerator(fn func() string) SynthesizerOption {
	return func(s *Synthesizer) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithPriceRange sets the price to lo + [0, spread).
func WithPriceRange(lo, spread int) SynthesizerOption {
	return func(s *Synthesizer) {
		if lo >= 0 {
			s.priceMin = lo
		}
		if spread > 0 {
			s.priceSpread = spread
		}
	}
}

// WithLatency delays each synthesis by d, simulating a remote enrichment call.
func WithLatency(d time.Duration) SynthesizerOption {
	return func(s *Synthesizer) {
		if d >= 0 {
			s.latency = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) SynthesizerOption {
	return func(s *Synthesizer) { s.logger = l }
}

// NewSynthesizer creates a Synthesizer that registers into index and tree.
func NewSynthesizer(index keyword.Index, tree *catalog.Tree, opts ...SynthesizerOption) *Synthesizer {
	s := &Synthesizer{
		index:       index,
		tree:        tree,
		rng:         rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
		newID:       uuid.NewString,
		priceMin:    DefaultPriceMin,
		priceSpread: DefaultPriceSpread,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Synthesize creates an item for term, registers it and returns it.
// A blank term is a no-op and returns nil, nil.
func (s *Synthesizer) Synthesize(ctx context.Context, term string, source Source) (*models.Item, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, nil
	}
	if s.latency > 0 {
		timer := time.NewTimer(s.latency)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	display := utils.Capitalize(term)
	name := utils.UpperFirst(term)
	if source == SourceSocial {
		name += " (Trending)"
	}
	tmpl := templates[s.rng.IntN(len(templates))]

	item, err := models.NewItem(models.ItemInput{
		ID:           "dyn-" + s.newID(),
		Name:         name,
		Brand:        Brand,
		CategoryPath: []string{RootCategory, source.category(), term},
		Description:  strings.ReplaceAll(tmpl, "[TERM]", display),
		Keywords:     []string{strings.ToLower(term), source.String(), NoveltyKeyword},
		Price:        float64(s.priceMin + s.rng.IntN(s.priceSpread)),
	})
	if err != nil {
		return nil, fmt.Errorf("build synthesized item: %w", err)
	}

	if err := s.index.Index(ctx, item); err != nil {
		return nil, fmt.Errorf("index synthesized item: %w", err)
	}
	s.tree.Insert(item)

	if s.logger != nil {
		s.logger.Debug("synthesized item",
			zap.String("id", item.ID),
			zap.String("term", term),
			zap.String("source", source.String()))
	}
	return item, nil
}
