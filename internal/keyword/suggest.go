package keyword

import (
	"sort"
	"unicode/utf8"

	"github.com/hyperjump/treerec/internal/analysis"
)

// Suggestion is an indexed term close to a query that matched nothing.
type Suggestion struct {
	Term      string `json:"term"`
	Distance  int    `json:"distance"`
	Frequency int    `json:"frequency"`
}

// Suggester proposes "did you mean" terms from an index's term dictionary.
// It never changes search results.
type Suggester struct {
	index          Index
	maxDistance    int
	maxSuggestions int
}

// SuggesterOption configures a Suggester.
type SuggesterOption func(*Suggester)

// WithMaxDistance sets the maximum edit distance for suggestions.
func WithMaxDistance(d int) SuggesterOption {
	return func(s *Suggester) {
		if d > 0 {
			s.maxDistance = d
		}
	}
}

// WithMaxSuggestions sets the maximum number of suggestions returned.
func WithMaxSuggestions(n int) SuggesterOption {
	return func(s *Suggester) {
		if n > 0 {
			s.maxSuggestions = n
		}
	}
}

// NewSuggester creates a Suggester over index.
func NewSuggester(index Index, opts ...SuggesterOption) *Suggester {
	s := &Suggester{index: index, maxDistance: 2, maxSuggestions: 3}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Suggest returns indexed terms within the edit distance of query, closest first,
// then most frequent, then lexical.
func (s *Suggester) Suggest(query string) ([]Suggestion, error) {
	query = analysis.Normalize(query)
	if query == "" {
		return nil, nil
	}
	terms, err := s.index.Terms()
	if err != nil {
		return nil, err
	}

	qLen := utf8.RuneCountInString(query)
	var out []Suggestion
	for term, freq := range terms {
		if term == query {
			continue
		}
		diff := utf8.RuneCountInString(term) - qLen
		if diff < 0 {
			diff = -diff
		}
		if diff > s.maxDistance {
			continue
		}
		if d := LevenshteinDistance(query, term); d <= s.maxDistance {
			out = append(out, Suggestion{Term: term, Distance: d, Frequency: freq})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		if out[i].Frequency != out[j].Frequency {
			return out[i].Frequency > out[j].Frequency
		}
		return out[i].Term < out[j].Term
	})
	if len(out) > s.maxSuggestions {
		out = out[:s.maxSuggestions]
	}
	return out, nil
}

// LevenshteinDistance returns the number of single-rune insertions, deletions or
// substitutions needed to turn a into b.
func LevenshteinDistance(a, b string) int {
	if a == b {
		return 0
	}
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	// two rows are enough
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}
