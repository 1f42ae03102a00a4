// internal/workers/compliance/score-deal/config.go
package scoredeal

import (
	"fmt"
	"strings"
	"time"

	"chatnil-workers/internal/common/config"
	"chatnil-workers/internal/scoring"
	"chatnil-workers/internal/scoring/compliance"
)

type Config struct {
	// Weights replaces the default weight table when non-empty. Keys match
	// dimension names case-insensitively.
	Weights map[string]float64
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{Timeout: 10 * time.Second}
}

func ConfigFrom(s config.ScoringConfig, wcfg config.WorkerConfig) *Config {
	cfg := LoadConfig()
	cfg.Weights = s.ComplianceWeights
	if wcfg.Timeout > 0 {
		cfg.Timeout = config.GetDuration(wcfg.Timeout)
	}
	return cfg
}

// ResolveWeights canonicalizes configured weight keys. Config files lowercase
// map keys, so "policyfit" resolves to policyFit. An empty table yields the
// defaults; unknown names are rejected.
func ResolveWeights(raw map[string]float64) (scoring.WeightTable, error) {
	if len(raw) == 0 {
		return compliance.DefaultWeights, nil
	}

	out := make(scoring.WeightTable, len(raw))
	for key, weight := range raw {
		name, ok := canonicalDimension(key)
		if !ok {
			return nil, fmt.Errorf("unknown compliance dimension %q", key)
		}
		if _, dup := out[name]; dup {
			return nil, fmt.Errorf("compliance dimension %q configured twice", name)
		}
		out[name] = weight
	}
	return out, nil
}

func canonicalDimension(key string) (string, bool) {
	key = strings.ReplaceAll(strings.TrimSpace(key), "_", "")
	for _, name := range compliance.DimensionOrder {
		if strings.EqualFold(name, key) {
			return name, true
		}
	}
	return "", false
}
