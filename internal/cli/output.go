// Package cli provides the TreeRec command-line backends and output formatting.
package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"github.com/hyperjump/treerec/internal/models"
	"github.com/hyperjump/treerec/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat validates s as an output format.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case OutputText, OutputJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text or json", s)
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteActionResult writes the outcome of a user action.
func WriteActionResult(w io.Writer, res *models.ActionResult, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, res)
	}
	if res.Action == nil {
		fmt.Fprintln(w, "Nothing to do: empty input.")
		return nil
	}
	fmt.Fprintf(w, "[%s] %s\n", res.Action.Type, res.Action.Content)
	if len(res.Tokens) > 0 {
		fmt.Fprintf(w, "Interests boosted: %s\n", strings.Join(res.Tokens, ", "))
	}
	if len(res.Suggestions) > 0 {
		fmt.Fprintf(w, "Did you mean: %s?\n", strings.Join(res.Suggestions, ", "))
	}
	if len(res.Synthesized) > 0 {
		fmt.Fprintln(w, "\n--- New items ---")
		for _, item := range res.Synthesized {
			writeItem(w, item)
		}
	}
	if len(res.Results) > 0 {
		fmt.Fprintf(w, "\n--- Results (%d) ---\n", len(res.Results))
		for _, item := range res.Results {
			writeItem(w, item)
		}
	}
	fmt.Fprintln(w)
	writeRecommendationsText(w, res.Recommendations)
	return nil
}

// WriteRecommendations writes a ranked list.
func WriteRecommendations(w io.Writer, recs []*models.ScoredItem, format OutputFormat) error {
	if format == OutputJSON {
		if recs == nil {
			recs = []*models.ScoredItem{}
		}
		return writeJSON(w, recs)
	}
	writeRecommendationsText(w, recs)
	return nil
}

func writeRecommendationsText(w io.Writer, recs []*models.ScoredItem) {
	if len(recs) == 0 {
		fmt.Fprintln(w, "No recommendations yet.")
		return
	}
	fmt.Fprintln(w, "--- Recommended for you ---")
	for i, rec := range recs {
		fmt.Fprintf(w, "%d. %s (%s) score %.1f\n", i+1, rec.Name, rec.Brand, rec.Score)
		if len(rec.MatchReasons) > 0 {
			fmt.Fprintf(w, "   because: %s\n", strings.Join(rec.MatchReasons, ", "))
		}
	}
}

func writeItem(w io.Writer, item *models.Item) {
	fmt.Fprintf(w, "%s  %s | %s | R$ %.2f\n", item.ID, item.Name, item.Brand, item.Price)
	if len(item.CategoryPath) > 0 {
		fmt.Fprintf(w, "    %s\n", strings.Join(item.CategoryPath, " > "))
	}
	if item.Description != "" {
		fmt.Fprintf(w, "    %s\n", utils.Truncate(item.Description, 80))
	}
}

// WriteInterests writes interest entries, heaviest first.
func WriteInterests(w io.Writer, entries []models.InterestEntry, format OutputFormat) error {
	if format == OutputJSON {
		if entries == nil {
			entries = []models.InterestEntry{}
		}
		return writeJSON(w, entries)
	}
	if len(entries) == 0 {
		fmt.Fprintln(w, "No interests yet.")
		return nil
	}
	for _, e := range entries {
		fmt.Fprintf(w, "%-24s %.2f\n", e.Word, e.Weight)
	}
	return nil
}

// WriteStatus writes session counters.
func WriteStatus(w io.Writer, st *Status, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, st)
	}
	s := st.Stats
	fmt.Fprintf(w, "items:               %d   # catalog size\n", s.Items)
	fmt.Fprintf(w, "indexed_items:       %d   # items in the search index\n", s.IndexedItems)
	fmt.Fprintf(w, "index_backend:       %s\n", s.IndexBackend)
	fmt.Fprintf(w, "interests:           %d   # distinct interest words\n", s.Interests)
	fmt.Fprintf(w, "interest_insertions: %d\n", s.InterestInsertions)
	fmt.Fprintf(w, "recommendations:     %d\n", s.Recommendations)
	fmt.Fprintf(w, "actions:             %d\n", s.Actions)
	for _, typ := range []models.ActionType{models.ActionSearch, models.ActionSocialPost, models.ActionStreaming, models.ActionView} {
		if n := s.ActionsByType[typ]; n > 0 {
			fmt.Fprintf(w, "  %-18s %d\n", strings.ToLower(string(typ))+":", n)
		}
	}
	if s.JournalBytes > 0 {
		fmt.Fprintf(w, "journal_bytes:       %d\n", s.JournalBytes)
	}
	if len(st.WatchDirectories) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "# watched drop folders")
		for _, d := range st.WatchDirectories {
			fmt.Fprintln(w, d)
		}
	}
	return nil
}
