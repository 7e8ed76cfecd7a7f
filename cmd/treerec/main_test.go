package main

import (
	"bytes"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/hyperjump/treerec/internal/config"
	"github.com/hyperjump/treerec/internal/models"
	"github.com/hyperjump/treerec/internal/server"
	"github.com/hyperjump/treerec/internal/session"
	"go.uber.org/zap"
)

func TestArgsReorder(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{
			name:     "flags after input are moved first",
			args:     []string{"tênis de corrida", "--output", "json"},
			expected: []string{"--output", "json", "tênis de corrida"},
		},
		{
			name:     "flags first returns unchanged",
			args:     []string{"--output", "json", "tênis"},
			expected: []string{"--output", "json", "tênis"},
		},
		{
			name:     "input only returns unchanged",
			args:     []string{"tênis"},
			expected: []string{"tênis"},
		},
		{
			name:     "empty args returns unchanged",
			args:     []string{},
			expected: []string{},
		},
		{
			name:     "multiple positionals then flags",
			args:     []string{"treino", "yoga", "--server", ""},
			expected: []string{"--server", "", "treino", "yoga"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := argsReorder(tt.args)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("argsReorder() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestJoinArgs(t *testing.T) {
	tests := []struct {
		args     []string
		expected string
	}{
		{[]string{"nike"}, "nike"},
		{[]string{"tênis", "de", "corrida"}, "tênis de corrida"},
		{[]string{"tênis de corrida"}, "tênis de corrida"},
		{[]string{}, ""},
		{[]string{"  ", "  "}, ""},
	}
	for _, tt := range tests {
		if got := joinArgs(tt.args); got != tt.expected {
			t.Errorf("joinArgs(%v) = %q, want %q", tt.args, got, tt.expected)
		}
	}
}

func runCmd(args ...string) (code int, stdout, stderr string) {
	var out, errOut bytes.Buffer
	code = run(args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestRun_VersionAndHelp(t *testing.T) {
	code, out, _ := runCmd("version")
	if code != 0 || !strings.Contains(out, "treerec version") {
		t.Errorf("version: code %d, out %q", code, out)
	}
	code, out, _ = runCmd("help")
	if code != 0 || !strings.Contains(out, "treerec search") {
		t.Errorf("help: code %d, out %q", code, out)
	}
	if code, _, errOut := runCmd("bogus"); code != 1 || !strings.Contains(errOut, "Unknown command") {
		t.Errorf("bogus: code %d, stderr %q", code, errOut)
	}
	if code, _, _ := runCmd(); code != 1 {
		t.Errorf("no args: code %d, want 1", code)
	}
}

func TestRun_InProcess(t *testing.T) {
	t.Chdir(t.TempDir())

	code, out, errOut := runCmd("search", "nike", "--server", "", "--output", "json")
	if code != 0 {
		t.Fatalf("search: code %d, stderr %q", code, errOut)
	}
	var res models.ActionResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("search output is not JSON: %v\n%s", err, out)
	}
	if len(res.Results) != 2 {
		t.Errorf("results: got %d, want 2", len(res.Results))
	}

	code, out, _ = runCmd("view", "--server", "", "p5")
	if code != 0 || !strings.Contains(out, "[VIEW] Visualizou Tapete de Yoga Pro") {
		t.Errorf("view: code %d, out %q", code, out)
	}

	code, out, _ = runCmd("recommend", "--server", "")
	if code != 0 || !strings.Contains(out, "No recommendations yet") {
		t.Errorf("recommend on fresh session: code %d, out %q", code, out)
	}
}

func TestRun_ActionUsageErrors(t *testing.T) {
	if code, _, _ := runCmd("search", "--server", ""); code != 1 {
		t.Errorf("missing query: code %d, want 1", code)
	}
	if code, _, errOut := runCmd("search", "nike", "--server", "", "--output", "xml"); code != 1 || !strings.Contains(errOut, "unknown output format") {
		t.Errorf("bad output: code %d, stderr %q", code, errOut)
	}
}

func TestRun_AgainstServer(t *testing.T) {
	sess, err := session.NewFromConfig(t.Context(), config.Default(), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer sess.Close()
	ts := httptest.NewServer(server.NewServer(sess, &config.ServerConfig{}, zap.NewNop()).Router())
	defer ts.Close()

	if code, _, errOut := runCmd("social", "treino de yoga", "--server", ts.URL); code != 0 {
		t.Fatalf("social: code %d, stderr %q", code, errOut)
	}
	code, out, _ := runCmd("interests", "--server", ts.URL)
	if code != 0 || !strings.Contains(out, "yoga") || !strings.Contains(out, "treino") {
		t.Errorf("interests: code %d, out %q", code, out)
	}
	code, out, _ = runCmd("recommend", "--server", ts.URL, "--limit", "1", "--output", "json")
	if code != 0 {
		t.Fatalf("recommend: code %d", code)
	}
	var recs []models.ScoredItem
	if err := json.Unmarshal([]byte(out), &recs); err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || recs[0].ID != "p5" {
		t.Errorf("recommend: got %+v", recs)
	}
	code, out, _ = runCmd("status", "--server", ts.URL, "--output", "json")
	var st struct {
		Stats session.Stats `json:"stats"`
	}
	if err := json.Unmarshal([]byte(out), &st); err != nil || code != 0 {
		t.Fatalf("status: code %d, err %v, out %q", code, err, out)
	}
	if st.Stats.Actions != 1 {
		t.Errorf("status actions: got %d, want 1", st.Stats.Actions)
	}
	if code, _, errOut := runCmd("view", "nope", "--server", ts.URL); code != 1 || !strings.Contains(errOut, "not found") {
		t.Errorf("view missing: code %d, stderr %q", code, errOut)
	}
}
