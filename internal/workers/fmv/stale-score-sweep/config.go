// internal/workers/fmv/stale-score-sweep/config.go
package stalescoresweep

import (
	"time"

	"chatnil-workers/internal/common/config"
)

type Config struct {
	// Schedule is a six-field cron expression (seconds first).
	Schedule       string
	StaleAfterDays int
	// AvailableAfterDays is how long after a calculation the athlete is told a
	// fresh one is available.
	AvailableAfterDays int
	DailyLimit         int
	BatchLimit         int
	Timeout            time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Schedule:           "0 0 9 * * *",
		StaleAfterDays:     30,
		AvailableAfterDays: 7,
		DailyLimit:         3,
		BatchLimit:         200,
		Timeout:            5 * time.Minute,
	}
}

func ConfigFrom(s config.ScoringConfig, sched config.SchedulerConfig) *Config {
	cfg := LoadConfig()
	if sched.StaleCron != "" {
		cfg.Schedule = sched.StaleCron
	}
	if s.StaleAfterDays > 0 {
		cfg.StaleAfterDays = s.StaleAfterDays
	}
	if s.DailyRecalcLimit > 0 {
		cfg.DailyLimit = s.DailyRecalcLimit
	}
	return cfg
}
