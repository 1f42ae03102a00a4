// internal/workers/data-access/query-scoring-data/config.go
package queryscoringdata

import (
	"time"

	"chatnil-workers/internal/common/config"
)

type Config struct {
	Timeout      time.Duration
	DefaultLimit int
	MaxLimit     int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:      30 * time.Second,
		DefaultLimit: 30,
		MaxLimit:     100,
	}
}

// ConfigFrom defaults the page size to the number of history rows kept per
// athlete.
func ConfigFrom(s config.ScoringConfig, wcfg config.WorkerConfig) *Config {
	cfg := LoadConfig()
	if s.HistoryKeep > 0 {
		cfg.DefaultLimit = s.HistoryKeep
	}
	if wcfg.Timeout > 0 {
		cfg.Timeout = config.GetDuration(wcfg.Timeout)
	}
	return cfg
}
