// internal/workers/matching/calculate-match-score/config.go
package calculatematchscore

import (
	"time"

	"chatnil-workers/internal/common/config"
)

type Config struct {
	CacheTTL time.Duration
	Timeout  time.Duration
}

func LoadConfig() *Config {
	return &Config{
		CacheTTL: 5 * time.Minute,
		Timeout:  30 * time.Second,
	}
}

func ConfigFrom(s config.ScoringConfig, wcfg config.WorkerConfig) *Config {
	cfg := LoadConfig()
	if s.ProfileCacheTTL > 0 {
		cfg.CacheTTL = time.Duration(s.ProfileCacheTTL) * time.Second
	}
	if wcfg.Timeout > 0 {
		cfg.Timeout = config.GetDuration(wcfg.Timeout)
	}
	return cfg
}
