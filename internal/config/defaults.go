package config

import "time"

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = ":memory:"
	}
	if cfg.Search.Backend == "" {
		cfg.Search.Backend = "trie"
	}
	if cfg.Interest.DecayRate == 0 {
		cfg.Interest.DecayRate = 0.95
	}
	if cfg.Interest.DecayAfter == 0 {
		cfg.Interest.DecayAfter = time.Hour
	}
	if cfg.Interest.SearchBoost == 0 {
		cfg.Interest.SearchBoost = 2.0
	}
	if cfg.Interest.SocialBoost == 0 {
		cfg.Interest.SocialBoost = 1.0
	}
	if cfg.Interest.StreamingBoost == 0 {
		cfg.Interest.StreamingBoost = 1.5
	}
	if cfg.Interest.ViewBoost == 0 {
		cfg.Interest.ViewBoost = 0.5
	}
	if cfg.Synth.PriceMin == 0 {
		cfg.Synth.PriceMin = 50
	}
	if cfg.Synth.PriceSpread == 0 {
		cfg.Synth.PriceSpread = 500
	}
	if cfg.Recommend.DefaultLimit == 0 {
		cfg.Recommend.DefaultLimit = 4
	}
	if cfg.Watch.Extensions == nil {
		cfg.Watch.Extensions = []string{".yaml", ".yml", ".xlsx"}
	}
	// Recursive defaults to true when unset (nil).
	if len(cfg.Watch.Directories) > 0 && cfg.Watch.Recursive == nil {
		t := true
		cfg.Watch.Recursive = &t
	}
}
