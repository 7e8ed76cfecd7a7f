package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return dir, path
}

func TestLoad(t *testing.T) {
	_, path := writeConfig(t, `
server:
  host: "127.0.0.1"
  port: 9000
search:
  backend: bleve
interest:
  decay_rate: 0.9
  decay_after: 30m
  view_boost: 0.25
synth:
  latency: 200ms
tokenizer:
  extra_stop_words: [promoção, oferta]
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Search.Backend != "bleve" {
		t.Errorf("backend = %q", cfg.Search.Backend)
	}
	if cfg.Interest.DecayRate != 0.9 || cfg.Interest.DecayAfter != 30*time.Minute {
		t.Errorf("interest = %+v", cfg.Interest)
	}
	if cfg.Interest.ViewBoost != 0.25 || cfg.Interest.SearchBoost != 2.0 {
		t.Errorf("boosts = %+v", cfg.Interest)
	}
	if cfg.Synth.Latency != 200*time.Millisecond {
		t.Errorf("latency = %v", cfg.Synth.Latency)
	}
	if want := []string{"promoção", "oferta"}; !reflect.DeepEqual(cfg.Tokenizer.ExtraStopWords, want) {
		t.Errorf("extra stop words = %v", cfg.Tokenizer.ExtraStopWords)
	}
	if cfg.Storage.DatabasePath != ":memory:" {
		t.Errorf("database_path should default to :memory:, got %q", cfg.Storage.DatabasePath)
	}
	if cfg.Debug {
		t.Error("debug should default to false when unset")
	}
	if !cfg.Catalog.SeedOrDefault() {
		t.Error("seed should default to true")
	}
}

func TestLoad_debugAndSeed(t *testing.T) {
	_, path := writeConfig(t, `
debug: true
catalog:
  seed: false
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Debug {
		t.Error("debug should be true when set in config")
	}
	if cfg.Catalog.SeedOrDefault() {
		t.Error("seed should be false when set in config")
	}
}

func TestLoad_expandPathDotSlashRelativeToConfigDir(t *testing.T) {
	dir, path := writeConfig(t, `
storage:
  database_path: "./data/actions.db"
catalog:
  files: ["./catalog/extra.yaml"]
watch:
  directories: ["./drop"]
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "data", "actions.db"); cfg.Storage.DatabasePath != want {
		t.Errorf("database_path = %s, want %s", cfg.Storage.DatabasePath, want)
	}
	if want := filepath.Join(dir, "catalog", "extra.yaml"); cfg.Catalog.Files[0] != want {
		t.Errorf("catalog file = %s, want %s", cfg.Catalog.Files[0], want)
	}
	if len(cfg.Watch.Directories) != 1 {
		t.Fatalf("watch directories: got %d", len(cfg.Watch.Directories))
	}
	if want := filepath.Join(dir, "drop"); cfg.Watch.Directories[0] != want {
		t.Errorf("watch directory = %s, want %s", cfg.Watch.Directories[0], want)
	}
	if !cfg.Watch.RecursiveOrDefault() {
		t.Error("recursive should default to true")
	}
}

func TestLoad_errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file should fail")
	}
	_, path := writeConfig(t, "server: [unclosed")
	if _, err := Load(path); err == nil {
		t.Error("invalid YAML should fail")
	}
	_, path = writeConfig(t, "interest:\n  decay_after: soon\n")
	if _, err := Load(path); err == nil {
		t.Error("invalid duration should fail")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if cfg.Server.Host != "localhost" || cfg.Server.Port != 8080 {
		t.Errorf("server defaults: %+v", cfg.Server)
	}
	if cfg.Search.Backend != "trie" {
		t.Errorf("backend default: %q", cfg.Search.Backend)
	}
	want := InterestConfig{
		DecayRate: 0.95, DecayAfter: time.Hour,
		SearchBoost: 2.0, SocialBoost: 1.0, StreamingBoost: 1.5, ViewBoost: 0.5,
	}
	if cfg.Interest != want {
		t.Errorf("interest defaults = %+v, want %+v", cfg.Interest, want)
	}
	if cfg.Synth.PriceMin != 50 || cfg.Synth.PriceSpread != 500 || cfg.Synth.Latency != 0 {
		t.Errorf("synth defaults = %+v", cfg.Synth)
	}
	if cfg.Recommend.DefaultLimit != 4 {
		t.Errorf("default limit: got %d", cfg.Recommend.DefaultLimit)
	}
	if want := []string{".yaml", ".yml", ".xlsx"}; !reflect.DeepEqual(cfg.Watch.Extensions, want) {
		t.Errorf("watch extensions: got %v", cfg.Watch.Extensions)
	}
	if cfg.Watch.Recursive != nil {
		t.Error("recursive should stay nil without directories")
	}
}

func TestApplyDefaults_WatchRecursiveWhenDirectoriesSet(t *testing.T) {
	cfg := &Config{Watch: WatchConfig{Directories: []string{"/tmp/drop"}}}
	ApplyDefaults(cfg)
	if cfg.Watch.Recursive == nil || !*cfg.Watch.Recursive {
		t.Error("recursive should default to true when directories are set")
	}
}

func TestWatchConfig_RecursiveOrDefault(t *testing.T) {
	t.Run("nil_returns_true", func(t *testing.T) {
		w := &WatchConfig{}
		if got := w.RecursiveOrDefault(); !got {
			t.Errorf("RecursiveOrDefault() = %v, want true", got)
		}
	})
	t.Run("false_returns_false", func(t *testing.T) {
		f := false
		w := &WatchConfig{Recursive: &f}
		if got := w.RecursiveOrDefault(); got {
			t.Errorf("RecursiveOrDefault() = %v, want false", got)
		}
	})
}

func TestResolve(t *testing.T) {
	t.Run("explicit path", func(t *testing.T) {
		_, path := writeConfig(t, "server:\n  port: 9100\n")
		cfg, used, err := Resolve(path)
		if err != nil {
			t.Fatal(err)
		}
		if used != path || cfg.Server.Port != 9100 {
			t.Errorf("Resolve = %+v from %q", cfg.Server, used)
		}
	})
	t.Run("explicit missing path fails", func(t *testing.T) {
		if _, _, err := Resolve(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
			t.Error("expected error")
		}
	})
	t.Run("local fallback", func(t *testing.T) {
		if _, err := os.Stat(DefaultPath); err == nil {
			t.Skip("system config present")
		}
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, LocalPath), []byte("server:\n  port: 9200\n"), 0600); err != nil {
			t.Fatal(err)
		}
		t.Chdir(dir)
		cfg, used, err := Resolve("")
		if err != nil {
			t.Fatal(err)
		}
		if used != LocalPath || cfg.Server.Port != 9200 {
			t.Errorf("Resolve = %+v from %q", cfg.Server, used)
		}
	})
	t.Run("built-in defaults", func(t *testing.T) {
		if _, err := os.Stat(DefaultPath); err == nil {
			t.Skip("system config present")
		}
		t.Chdir(t.TempDir())
		cfg, used, err := Resolve("")
		if err != nil {
			t.Fatal(err)
		}
		if used != "" || cfg.Server.Port != 8080 {
			t.Errorf("Resolve = %+v from %q", cfg.Server, used)
		}
	})
}
