package session

import (
	"context"
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/hyperjump/treerec/internal/catalog"
	"github.com/hyperjump/treerec/internal/config"
	"github.com/hyperjump/treerec/internal/keyword"
	"github.com/hyperjump/treerec/internal/models"
	"github.com/hyperjump/treerec/internal/storage"
	"github.com/hyperjump/treerec/internal/synth"
	"github.com/hyperjump/treerec/pkg/utils"
)

func newTestSession(t *testing.T, seed bool, opts ...Option) (*Session, *utils.ManualClock) {
	t.Helper()
	journal, err := storage.NewSQLiteActionLog(storage.MemoryPath)
	if err != nil {
		t.Fatal(err)
	}
	clock := utils.NewManualClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	n := 0
	s := New(keyword.NewTrieIndex(), journal, append([]Option{
		WithClock(clock),
		WithSynthOptions(
			synth.WithRand(rand.New(rand.NewPCG(7, 7))),
			synth.WithIDGenerator(func() string { n++; return strconv.Itoa(n) }),
		),
	}, opts...)...,
	)
	t.Cleanup(func() { _ = s.Close() })
	if seed {
		items, err := catalog.Seed()
		if err != nil {
			t.Fatal(err)
		}
		if _, _, err := s.AddItems(context.Background(), items); err != nil {
			t.Fatal(err)
		}
	}
	return s, clock
}

func itemIDs(items []*models.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestSession_EmptyInterestsNoRecommendations(t *testing.T) {
	s, _ := newTestSession(t, true)
	if got := s.Recommendations(10); len(got) != 0 {
		t.Errorf("Recommendations = %d items, want 0", len(got))
	}
}

func TestSession_SearchHit(t *testing.T) {
	s, _ := newTestSession(t, true)
	ctx := context.Background()

	res, err := s.Search(ctx, "  Corrida ")
	if err != nil {
		t.Fatal(err)
	}
	if got := itemIDs(res.Results); len(got) != 2 || got[0] != "p1" || got[1] != "p2" {
		t.Errorf("Results = %v, want [p1 p2]", got)
	}
	if len(res.Synthesized) != 0 {
		t.Errorf("unexpected synthesis: %v", res.Synthesized)
	}
	if res.Action == nil || res.Action.Type != models.ActionSearch || res.Action.Content != "Corrida" {
		t.Errorf("Action = %+v", res.Action)
	}
	if w := s.Interests()["corrida"]; w != 4 {
		t.Errorf("corrida weight = %v, want 4 (token + whole query)", w)
	}
	if len(res.Recommendations) == 0 || res.Recommendations[0].ID != "p1" {
		t.Errorf("Recommendations = %+v", res.Recommendations)
	}
}

func TestSession_SearchPrefix(t *testing.T) {
	s, _ := newTestSession(t, true)
	res, err := s.Search(context.Background(), "ele")
	if err != nil {
		t.Fatal(err)
	}
	// eletrônicos (p3 p4 p6) and eletro (p8)
	if got := itemIDs(res.Results); len(got) != 4 {
		t.Errorf("Results = %v", got)
	}
}

func TestSession_SearchMissSynthesizes(t *testing.T) {
	s, _ := newTestSession(t, true)
	ctx := context.Background()

	res, err := s.Search(ctx, "guitarra")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Synthesized) != 1 {
		t.Fatalf("Synthesized = %v", res.Synthesized)
	}
	item := res.Synthesized[0]
	if item.ID != "dyn-1" || item.CategoryPath[1] != "Busca" {
		t.Errorf("item = %+v", item)
	}
	if got := itemIDs(res.Results); len(got) != 1 || got[0] != "dyn-1" {
		t.Errorf("Results = %v", got)
	}

	again, err := s.Search(ctx, "guitarra")
	if err != nil {
		t.Fatal(err)
	}
	if len(again.Synthesized) != 0 || len(again.Results) != 1 {
		t.Errorf("second search should hit the synthesized item: %+v", again)
	}
	if _, err := s.Item("dyn-1"); err != nil {
		t.Errorf("Item(dyn-1): %v", err)
	}
	if recs := s.Recommendations(1); len(recs) != 1 || recs[0].ID != "dyn-1" {
		t.Errorf("Recommendations = %+v", recs)
	}
}

func TestSession_SearchMissSuggests(t *testing.T) {
	s, _ := newTestSession(t, true)
	res, err := s.Search(context.Background(), "yogaa")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Suggestions) == 0 || res.Suggestions[0] != "yoga" {
		t.Errorf("Suggestions = %v", res.Suggestions)
	}
}

func TestSession_BlankIsNoop(t *testing.T) {
	s, _ := newTestSession(t, true)
	ctx := context.Background()
	for name, fn := range map[string]func() (*models.ActionResult, error){
		"search":    func() (*models.ActionResult, error) { return s.Search(ctx, "  ") },
		"social":    func() (*models.ActionResult, error) { return s.SocialPost(ctx, "") },
		"streaming": func() (*models.ActionResult, error) { return s.Streaming(ctx, "\t") },
	} {
		res, err := fn()
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if res.Action != nil {
			t.Errorf("%s recorded an action", name)
		}
	}
	actions, err := s.Actions(ctx, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(actions) != 0 {
		t.Errorf("actions = %d, want 0", len(actions))
	}
	if len(s.Interests()) != 0 {
		t.Error("blank input changed interests")
	}
}

func TestSession_SocialPost(t *testing.T) {
	s, _ := newTestSession(t, true)
	ctx := context.Background()

	res, err := s.SocialPost(ctx, "Adorei o show de rock com a minha guitarra nova, nike!")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"rock", "guitarra", "nova", "nike"}
	if len(res.Tokens) != len(want) {
		t.Fatalf("Tokens = %v, want %v", res.Tokens, want)
	}
	if len(res.Synthesized) != 3 {
		t.Fatalf("Synthesized = %d items, want 3 (rock, guitarra, nova)", len(res.Synthesized))
	}
	for _, item := range res.Synthesized {
		if item.CategoryPath[1] != "Social Trends" {
			t.Errorf("category = %v", item.CategoryPath)
		}
	}
	if res.Synthesized[0].Name != "Rock (Trending)" {
		t.Errorf("name = %q", res.Synthesized[0].Name)
	}
	if w := s.Interests()["nike"]; w != 1 {
		t.Errorf("nike weight = %v, want 1", w)
	}
}

func TestSession_Streaming(t *testing.T) {
	s, _ := newTestSession(t, true)
	res, err := s.Streaming(context.Background(), "Review do novo drone")
	if err != nil {
		t.Fatal(err)
	}
	if res.Action.Type != models.ActionStreaming || res.Action.Content != "Assistiu: Review do novo drone" {
		t.Errorf("Action = %+v", res.Action)
	}
	if w := s.Interests()["drone"]; w != 1.5 {
		t.Errorf("drone weight = %v, want 1.5", w)
	}
	found := false
	for _, it := range res.Synthesized {
		if it.CategoryPath[1] == "Streaming" && it.Keywords[0] == "drone" {
			found = true
		}
	}
	if !found {
		t.Errorf("no streaming item for drone: %+v", res.Synthesized)
	}
}

func TestSession_ViewItem(t *testing.T) {
	s, _ := newTestSession(t, true)
	ctx := context.Background()

	res, err := s.ViewItem(ctx, "p5")
	if err != nil {
		t.Fatal(err)
	}
	if res.Action.Content != "Visualizou Tapete de Yoga Pro" {
		t.Errorf("content = %q", res.Action.Content)
	}
	interests := s.Interests()
	for _, w := range []string{"yoga", "tapete", "acessórios"} {
		if interests[w] != 0.5 {
			t.Errorf("%s weight = %v, want 0.5", w, interests[w])
		}
	}
	// keyword and brand both boost lululemon
	if interests["lululemon"] != 1.0 {
		t.Errorf("lululemon weight = %v, want 1.0", interests["lululemon"])
	}
	if _, ok := interests["esportes"]; ok {
		t.Error("only the leaf category should be boosted")
	}

	if _, err := s.ViewItem(ctx, "nope"); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("err = %v, want ErrItemNotFound", err)
	}
}

func TestSession_NikeCorridaScenario(t *testing.T) {
	s, _ := newTestSession(t, false)
	ctx := context.Background()
	item, err := models.NewItem(models.ItemInput{
		ID: "p1", Name: "Tênis", Brand: "Nike", Keywords: []string{"nike", "corrida"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.AddItem(ctx, item); err != nil {
		t.Fatal(err)
	}
	s.interests.Insert("nike", 2)
	s.interests.Insert("corrida", 1)
	s.mu.Lock()
	s.recompute()
	s.mu.Unlock()

	recs := s.Recommendations(0)
	if len(recs) != 1 || recs[0].Score != 3 {
		t.Fatalf("recs = %+v", recs)
	}
	if recs[0].MatchReasons[0] != "nike (2.0)" || recs[0].MatchReasons[1] != "corrida (1.0)" {
		t.Errorf("reasons = %v", recs[0].MatchReasons)
	}
}

func TestSession_DecayBetweenActions(t *testing.T) {
	s, clock := newTestSession(t, true)
	ctx := context.Background()
	if _, err := s.SocialPost(ctx, "yoga"); err != nil {
		t.Fatal(err)
	}
	clock.Advance(3 * time.Hour)
	if _, err := s.SocialPost(ctx, "yoga"); err != nil {
		t.Fatal(err)
	}
	want := 0.95*0.95*0.95 + 1
	if got := s.Interests()["yoga"]; got < want-1e-9 || got > want+1e-9 {
		t.Errorf("yoga = %v, want %v", got, want)
	}
}

func TestSession_AddItemDuplicate(t *testing.T) {
	s, _ := newTestSession(t, true)
	items, _ := catalog.Seed()
	if err := s.AddItem(context.Background(), items[0]); !errors.Is(err, ErrDuplicateItem) {
		t.Errorf("err = %v, want ErrDuplicateItem", err)
	}
	added, skipped, err := s.AddItems(context.Background(), items)
	if err != nil || added != 0 || skipped != 8 {
		t.Errorf("AddItems = %d, %d, %v", added, skipped, err)
	}
}

func TestSession_ImportFile(t *testing.T) {
	s, _ := newTestSession(t, true)
	path := filepath.Join(t.TempDir(), "extra.yaml")
	content := "items:\n  - id: g1\n    name: Guitarra\n    category_path: [Música]\n    keywords: [guitarra]\n  - id: p1\n    name: dup\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	res, err := s.ImportFile(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if res.Added != 1 || res.Skipped != 1 {
		t.Errorf("ImportFile = %+v", res)
	}
	if got := s.Browse([]string{"Música"}); len(got.Items) != 1 {
		t.Errorf("Browse(Música) = %+v", got)
	}
	if _, err := s.ImportFile(context.Background(), filepath.Join(t.TempDir(), "x.csv")); err == nil {
		t.Error("unsupported file should fail")
	}
}

func TestSession_Reads(t *testing.T) {
	s, _ := newTestSession(t, true)
	ctx := context.Background()
	if _, err := s.Search(ctx, "yoga"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.ViewItem(ctx, "p1"); err != nil {
		t.Fatal(err)
	}

	actions, err := s.Actions(ctx, 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(actions) != 2 || actions[0].Type != models.ActionView {
		t.Errorf("actions = %+v", actions)
	}

	entries := s.InterestEntries()
	if len(entries) == 0 || entries[0].Word != "yoga" {
		t.Errorf("entries = %+v", entries)
	}
	if root := s.InterestTree(); root.Name != "ROOT" || len(root.Children) == 0 {
		t.Errorf("InterestTree = %+v", root)
	}
	if root := s.CategoryTree(); root.Name != catalog.RootLabel || len(root.Children) != 3 {
		t.Errorf("CategoryTree children = %d", len(root.Children))
	}
	if got := s.Browse(nil); len(got.Children) != 3 || len(got.Items) != 8 {
		t.Errorf("Browse(root) = %d children, %d items", len(got.Children), len(got.Items))
	}
	if got := s.Browse([]string{"Nada"}); len(got.Items) != 0 || len(got.Children) != 0 {
		t.Errorf("Browse(missing) = %+v", got)
	}
	if len(s.Items()) != 8 {
		t.Errorf("Items = %d", len(s.Items()))
	}

	st, err := s.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if st.Items != 8 || st.IndexedItems != 8 || st.IndexBackend != "trie" || st.Actions != 2 {
		t.Errorf("Stats = %+v", st)
	}
	if st.ActionsByType[models.ActionSearch] != 1 {
		t.Errorf("ActionsByType = %v", st.ActionsByType)
	}
}

func TestNewFromConfig(t *testing.T) {
	for _, backend := range []string{"trie", "bleve"} {
		t.Run(backend, func(t *testing.T) {
			cfg := config.Default()
			cfg.Search.Backend = backend
			s, err := NewFromConfig(context.Background(), cfg, nil)
			if err != nil {
				t.Fatal(err)
			}
			defer s.Close()
			if len(s.Items()) != 8 {
				t.Errorf("items = %d, want seed of 8", len(s.Items()))
			}
			res, err := s.Search(context.Background(), "cancelamento")
			if err != nil {
				t.Fatal(err)
			}
			if got := itemIDs(res.Results); len(got) != 1 || got[0] != "p4" {
				t.Errorf("Results = %v", got)
			}
		})
	}

	t.Run("no seed", func(t *testing.T) {
		cfg := config.Default()
		f := false
		cfg.Catalog.Seed = &f
		s, err := NewFromConfig(context.Background(), cfg, nil)
		if err != nil {
			t.Fatal(err)
		}
		defer s.Close()
		if len(s.Items()) != 0 {
			t.Errorf("items = %d, want 0", len(s.Items()))
		}
	})

	t.Run("bad backend", func(t *testing.T) {
		cfg := config.Default()
		cfg.Search.Backend = "faiss"
		if _, err := NewFromConfig(context.Background(), cfg, nil); err == nil {
			t.Error("expected error")
		}
	})
}

func TestSession_FailedSynthesisStillRanks(t *testing.T) {
	tests := []struct {
		name   string
		act    func(*Session, context.Context) (*models.ActionResult, error)
		weight float64
	}{
		{"search", func(s *Session, ctx context.Context) (*models.ActionResult, error) {
			return s.Search(ctx, "nike xyzzy")
		}, 2},
		{"social post", func(s *Session, ctx context.Context) (*models.ActionResult, error) {
			return s.SocialPost(ctx, "nike xyzzy")
		}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestSession(t, true, WithSynthOptions(synth.WithLatency(time.Hour)))
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			if _, err := tt.act(s, ctx); !errors.Is(err, context.DeadlineExceeded) {
				t.Fatalf("err = %v, want deadline exceeded", err)
			}
			if w := s.Interests()["nike"]; w != tt.weight {
				t.Errorf("nike weight = %v, want %v", w, tt.weight)
			}
			recs := s.Recommendations(0)
			if len(recs) == 0 {
				t.Fatal("no recommendations after boosted interests")
			}
			for _, rec := range recs {
				if rec.Brand != "Nike" {
					t.Errorf("recommended %s (%s), want only Nike items", rec.ID, rec.Brand)
				}
			}
			actions, err := s.Actions(context.Background(), 0, 0)
			if err != nil {
				t.Fatal(err)
			}
			if len(actions) != 1 {
				t.Errorf("journal = %d actions, want 1", len(actions))
			}
		})
	}
}
