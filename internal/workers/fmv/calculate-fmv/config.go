// internal/workers/fmv/calculate-fmv/config.go
package calculatefmv

import (
	"time"

	"chatnil-workers/internal/common/config"
)

type Config struct {
	// ComparablesRange is the +/- score window for comparable athletes.
	ComparablesRange int
	ComparablesLimit int
	Timeout          time.Duration
	SearchTimeout    time.Duration
}

func LoadConfig() *Config {
	return &Config{
		ComparablesRange: 10,
		ComparablesLimit: 5,
		Timeout:          15 * time.Second,
		SearchTimeout:    3 * time.Second,
	}
}

func ConfigFrom(s config.ScoringConfig, wcfg config.WorkerConfig) *Config {
	cfg := LoadConfig()
	if s.ComparablesRange > 0 {
		cfg.ComparablesRange = s.ComparablesRange
	}
	if s.ComparablesLimit > 0 {
		cfg.ComparablesLimit = s.ComparablesLimit
	}
	if wcfg.Timeout > 0 {
		cfg.Timeout = config.GetDuration(wcfg.Timeout)
	}
	return cfg
}
