package benchmark

import (
	"context"
	"fmt"
	"testing"

	"github.com/hyperjump/treerec/internal/analysis"
	"github.com/hyperjump/treerec/internal/keyword"
	"github.com/hyperjump/treerec/internal/models"
	"github.com/hyperjump/treerec/internal/ranking"
)

func benchItems(n int) []*models.Item {
	items := make([]*models.Item, n)
	for i := range items {
		items[i] = &models.Item{
			ID:           fmt.Sprintf("b%05d", i),
			Name:         fmt.Sprintf("Produto %d", i),
			Brand:        fmt.Sprintf("marca%d", i%50),
			CategoryPath: []string{"Loja", fmt.Sprintf("Setor%d", i%20)},
			Keywords:     []string{fmt.Sprintf("kw%d", i%200), fmt.Sprintf("tag%d", i%37)},
		}
	}
	return items
}

func BenchmarkRank(b *testing.B) {
	items := benchItems(5000)
	interests := make(map[string]float64)
	for i := 0; i < 300; i++ {
		interests[fmt.Sprintf("kw%d", i)] = float64(i%7) + 0.5
	}
	r := ranking.NewRanker()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = ranking.Top(r.Rank(items, interests), 4)
	}
}

func BenchmarkIndexSearch(b *testing.B) {
	for _, backend := range []keyword.Backend{keyword.BackendTrie, keyword.BackendBleve} {
		b.Run(string(backend), func(b *testing.B) {
			idx, err := keyword.NewIndex(string(backend))
			if err != nil {
				b.Fatal(err)
			}
			defer idx.Close()
			ctx := context.Background()
			for _, item := range benchItems(2000) {
				if err := idx.Index(ctx, item); err != nil {
					b.Fatal(err)
				}
			}
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_, _ = idx.Search(ctx, "kw1")
			}
		})
	}
}

func BenchmarkTokenizerExtract(b *testing.B) {
	tok := analysis.NewTokenizer()
	text := "Acabei de assistir um documentário incrível sobre maratona e corrida de montanha no Chile"
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = tok.Extract(text)
	}
}
