// internal/workers/notifications/match-stream/config.go
package matchstream

import (
	"time"

	"chatnil-workers/internal/common/config"
)

type Config struct {
	Interval     time.Duration
	Lookback     time.Duration
	LastCheckTTL time.Duration
	BatchLimit   int
	// ReplayWindow is how far back matches are replayed on connect. Zero
	// disables the replay.
	ReplayWindow time.Duration
	// QueryTimeout bounds each poll query.
	QueryTimeout time.Duration
	// MaxPages caps how many BatchLimit pages one tick reads.
	MaxPages int
}

func LoadConfig() *Config {
	return &Config{
		Interval:     10 * time.Second,
		Lookback:     60 * time.Second,
		LastCheckTTL: time.Hour,
		BatchLimit:   10,
		ReplayWindow: 7 * 24 * time.Hour,
		QueryTimeout: 5 * time.Second,
		MaxPages:     5,
	}
}

func ConfigFrom(p config.PollerConfig) *Config {
	cfg := LoadConfig()
	if p.Interval > 0 {
		cfg.Interval = p.PollInterval()
	}
	if p.Lookback > 0 {
		cfg.Lookback = time.Duration(p.Lookback) * time.Second
	}
	if p.LastCheckTTL > 0 {
		cfg.LastCheckTTL = time.Duration(p.LastCheckTTL) * time.Second
	}
	if p.BatchLimit > 0 {
		cfg.BatchLimit = p.BatchLimit
	}
	if p.MaxPages > 0 {
		cfg.MaxPages = p.MaxPages
	}
	return cfg
}
