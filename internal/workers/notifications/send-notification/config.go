// internal/workers/notifications/send-notification/config.go
package sendnotification

import (
	"time"

	"chatnil-workers/internal/common/config"
)

type Config struct {
	EmailEnabled bool
	SMSEnabled   bool
	// SMSPriority is the lowest priority that also goes out by SMS.
	SMSPriority string
	Templates   map[string]Template
	Timeout     time.Duration
}

func LoadConfig() *Config {
	return &Config{
		SMSPriority: PriorityHigh,
		Timeout:     30 * time.Second,
	}
}

// ConfigFrom builds the dispatcher config from the notifications section.
// Configured templates replace the built-in ones per type.
func ConfigFrom(n config.NotificationConfig, wcfg config.WorkerConfig) *Config {
	cfg := LoadConfig()
	cfg.EmailEnabled = n.Email.Enabled
	cfg.SMSEnabled = n.SMS.Enabled
	if n.SMS.PriorityThreshold != "" {
		cfg.SMSPriority = n.SMS.PriorityThreshold
	}
	if wcfg.Timeout > 0 {
		cfg.Timeout = config.GetDuration(wcfg.Timeout)
	}
	if len(n.Templates) > 0 {
		cfg.Templates = make(map[string]Template, len(n.Templates))
		for typ, t := range n.Templates {
			cfg.Templates[typ] = Template{Title: t.Title, Body: t.Body, Priority: t.Priority}
		}
	}
	return cfg
}
