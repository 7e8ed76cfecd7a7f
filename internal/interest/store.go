// Package interest tracks a user's inferred interests in a weighted trie with time decay.
//
// Decay is applied lazily: a word's weight only decays when that word is boosted again,
// so weights returned by Interests may be stale for words that were not touched recently.
package interest

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/hyperjump/treerec/internal/analysis"
	"github.com/hyperjump/treerec/internal/models"
	"github.com/hyperjump/treerec/pkg/utils"
	"go.uber.org/zap"
)

const (
	DefaultDecayRate  = 0.95
	DefaultDecayAfter = time.Hour
)

type node struct {
	children    map[rune]*node
	terminal    bool
	weight      float64
	lastUpdated time.Time
}

func newNode() *node {
	return &node{children: make(map[rune]*node)}
}

// Store is a weighted-interest trie. It is not safe for concurrent use.
type Store struct {
	root       *node
	clock      utils.Clock
	decayRate  float64
	decayAfter time.Duration
	words      int
	insertions int
	logger     *zap.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithClock sets the time source used for decay.
func WithClock(c utils.Clock) StoreOption {
	return func(s *Store) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithDecay sets the per-hour decay rate and the idle time after which decay applies.
// Values outside (0,1] for rate or negative durations are ignored.
func WithDecay(rate float64, after time.Duration) StoreOption {
	return func(s *Store) {
		if rate > 0 && rate <= 1 {
			s.decayRate = rate
		}
		if after >= 0 {
			s.decayAfter = after
		}
	}
}

// WithLogger sets the logger for insert tracing.
func WithLogger(l *zap.Logger) StoreOption {
	return func(s *Store) { s.logger = l }
}

// NewStore returns an empty store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		root:       newNode(),
		clock:      utils.RealClock{},
		decayRate:  DefaultDecayRate,
		decayAfter: DefaultDecayAfter,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Insert boosts word by boost, decaying its previous weight first when it has been idle
// longer than the decay threshold. Empty words and negative, NaN or infinite boosts are ignored.
func (s *Store) Insert(word string, boost float64) bool {
	word = analysis.Normalize(word)
	if word == "" || boost < 0 || math.IsNaN(boost) || math.IsInf(boost, 0) {
		return false
	}

	cur := s.root
	for _, r := range word {
		next, ok := cur.children[r]
		if !ok {
			next = newNode()
			cur.children[r] = next
		}
		cur = next
	}

	now := s.clock.Now()
	if cur.terminal {
		if elapsed := now.Sub(cur.lastUpdated); elapsed > s.decayAfter {
			hours := elapsed.Hours()
			cur.weight = math.Max(0, cur.weight*math.Pow(s.decayRate, hours))
			if s.logger != nil {
				s.logger.Debug("interest decayed",
					zap.String("word", word),
					zap.Float64("hours", hours),
					zap.Float64("weight", cur.weight))
			}
		}
	} else {
		cur.terminal = true
		s.words++
	}
	cur.weight += boost
	cur.lastUpdated = now
	s.insertions++
	return true
}

// Interests returns every word with its stored weight. No decay is applied.
func (s *Store) Interests() map[string]float64 {
	out := make(map[string]float64, s.words)
	s.walk(s.root, nil, func(word string, n *node) {
		out[word] = n.weight
	})
	return out
}

// Entries returns the interests sorted by weight descending, then word.
func (s *Store) Entries() []models.InterestEntry {
	entries := make([]models.InterestEntry, 0, s.words)
	s.walk(s.root, nil, func(word string, n *node) {
		entries = append(entries, models.InterestEntry{Word: word, Weight: n.weight})
	})
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Weight != entries[j].Weight {
			return entries[i].Weight > entries[j].Weight
		}
		return entries[i].Word < entries[j].Word
	})
	return entries
}

// Weight returns the stored weight of word and whether it is present.
func (s *Store) Weight(word string) (float64, bool) {
	cur := s.root
	for _, r := range analysis.Normalize(word) {
		next, ok := cur.children[r]
		if !ok {
			return 0, false
		}
		cur = next
	}
	if cur == s.root || !cur.terminal {
		return 0, false
	}
	return cur.weight, true
}

// Len returns the number of distinct words.
func (s *Store) Len() int { return s.words }

// TotalInsertions returns the number of accepted Insert calls.
func (s *Store) TotalInsertions() int { return s.insertions }

// TreeData renders the trie. Terminal nodes are labelled "<rune> (<weight>)".
func (s *Store) TreeData() *models.TrieNodeData {
	return s.render("ROOT", s.root)
}

func (s *Store) render(name string, n *node) *models.TrieNodeData {
	out := &models.TrieNodeData{Name: name}
	if n.terminal {
		w := n.weight
		out.Value = &w
	}
	for _, r := range sortedRunes(n.children) {
		child := n.children[r]
		label := string(r)
		if child.terminal {
			label = fmt.Sprintf("%c (%.1f)", r, child.weight)
		}
		out.Children = append(out.Children, s.render(label, child))
	}
	return out
}

func (s *Store) walk(n *node, prefix []rune, fn func(string, *node)) {
	if n.terminal {
		fn(string(prefix), n)
	}
	for _, r := range sortedRunes(n.children) {
		s.walk(n.children[r], append(prefix, r), fn)
	}
}

func sortedRunes(m map[rune]*node) []rune {
	keys := make([]rune, 0, len(m))
	for r := range m {
		keys = append(keys, r)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
