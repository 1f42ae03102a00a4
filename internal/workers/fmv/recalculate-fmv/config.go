// internal/workers/fmv/recalculate-fmv/config.go
package recalculatefmv

import (
	"time"

	"chatnil-workers/internal/common/config"
	"chatnil-workers/internal/scoring/fmv"
)

type Config struct {
	DailyLimit      int
	HistoryKeep     int
	NotifyDelta     int
	PublicThreshold int
	// DecreaseNotice is the drop beyond which the result carries a decrease notice.
	DecreaseNotice int
	Timeout        time.Duration
	// NotifyTimeout bounds each fire-and-forget notification.
	NotifyTimeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		DailyLimit:      3,
		HistoryKeep:     30,
		NotifyDelta:     fmv.DefaultNotifyDelta,
		PublicThreshold: fmv.DefaultPublicSuggestionThreshold,
		DecreaseNotice:  5,
		Timeout:         30 * time.Second,
		NotifyTimeout:   10 * time.Second,
	}
}

// ConfigFrom applies the scoring section and worker timeout over the defaults.
func ConfigFrom(s config.ScoringConfig, wcfg config.WorkerConfig) *Config {
	cfg := LoadConfig()
	if s.DailyRecalcLimit > 0 {
		cfg.DailyLimit = s.DailyRecalcLimit
	}
	if s.HistoryKeep > 0 {
		cfg.HistoryKeep = s.HistoryKeep
	}
	if s.NotifyDelta > 0 {
		cfg.NotifyDelta = s.NotifyDelta
	}
	if s.PublicSuggestionThreshold > 0 {
		cfg.PublicThreshold = s.PublicSuggestionThreshold
	}
	if wcfg.Timeout > 0 {
		cfg.Timeout = config.GetDuration(wcfg.Timeout)
	}
	return cfg
}
