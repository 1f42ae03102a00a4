// internal/workers/compliance/summarize-deals/config.go
package summarizedeals

import (
	"time"

	"chatnil-workers/internal/common/config"
	"chatnil-workers/internal/scoring"
)

type Config struct {
	// MockSeed fixes the synthetic breakdown for unscored deals. Zero seeds
	// from the clock.
	MockSeed     int64
	MockVariance int
	Weights      map[string]float64
	Timeout      time.Duration
}

func LoadConfig() *Config {
	return &Config{
		MockVariance: scoring.DefaultMockVariance,
		Timeout:      10 * time.Second,
	}
}

func ConfigFrom(s config.ScoringConfig, wcfg config.WorkerConfig) *Config {
	cfg := LoadConfig()
	cfg.MockSeed = s.MockSeed
	if s.MockVariance > 0 {
		cfg.MockVariance = s.MockVariance
	}
	cfg.Weights = s.ComplianceWeights
	if wcfg.Timeout > 0 {
		cfg.Timeout = config.GetDuration(wcfg.Timeout)
	}
	return cfg
}
