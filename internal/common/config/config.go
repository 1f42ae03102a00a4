// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig               `mapstructure:"app"`
	Camunda       CamundaConfig           `mapstructure:"camunda"`
	Database      DatabaseConfig          `mapstructure:"database"`
	Workers       map[string]WorkerConfig `mapstructure:"workers"`
	Logging       LoggingConfig           `mapstructure:"logging"`
	Notifications NotificationConfig      `mapstructure:"notifications"`
	Scoring       ScoringConfig           `mapstructure:"scoring"`
	Poller        PollerConfig            `mapstructure:"poller"`
	Scheduler     SchedulerConfig         `mapstructure:"scheduler"`
	Server        ServerConfig            `mapstructure:"server"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	// AthleteIndex holds public athlete FMV documents used for comparables.
	AthleteIndex string `mapstructure:"athlete_index"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"` // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"`
}

// --- Domain sections ---

// ScoringConfig holds the FMV recompute gate constants and engine overrides.
type ScoringConfig struct {
	DailyRecalcLimit          int   `mapstructure:"daily_recalc_limit"`
	HistoryKeep               int   `mapstructure:"history_keep"`
	NotifyDelta               int   `mapstructure:"notify_delta"`
	PublicSuggestionThreshold int   `mapstructure:"public_suggestion_threshold"`
	StaleAfterDays            int   `mapstructure:"stale_after_days"`
	ComparablesRange          int   `mapstructure:"comparables_range"`
	ComparablesLimit          int   `mapstructure:"comparables_limit"`
	MockSeed                  int64 `mapstructure:"mock_seed"`
	MockVariance              int   `mapstructure:"mock_variance"`
	// ComplianceWeights overrides the default compliance weight table. Empty
	// means defaults.
	ComplianceWeights map[string]float64 `mapstructure:"compliance_weights"`
	// ProfileCacheTTL is in seconds.
	ProfileCacheTTL int `mapstructure:"profile_cache_ttl"`
}

// PollerConfig drives the match notification poller.
type PollerConfig struct {
	Enabled      bool `mapstructure:"enabled"`
	Interval     int  `mapstructure:"interval"`       // milliseconds
	LastCheckTTL int  `mapstructure:"last_check_ttl"` // seconds
	BatchLimit   int  `mapstructure:"batch_limit"`
	MaxPages     int  `mapstructure:"max_pages"`
	// Lookback is how far back the first tick looks, in seconds.
	Lookback int `mapstructure:"lookback"`
}

type SchedulerConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	StaleCron string `mapstructure:"stale_cron"`
}

// ServerConfig is the admin HTTP surface: health, metrics and match streams.
type ServerConfig struct {
	Address         string `mapstructure:"address"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
}

// NotificationConfig holds settings for the send-notification worker.
type NotificationConfig struct {
	Email struct {
		Enabled   bool   `mapstructure:"enabled"`
		FromEmail string `mapstructure:"from_email"`
	} `mapstructure:"email"`
	SMS struct {
		Enabled           bool   `mapstructure:"enabled"`
		PriorityThreshold string `mapstructure:"priority_threshold"`
		SenderID          string `mapstructure:"sender_id"`
	} `mapstructure:"sms"`
	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
	// Templates maps a notification type to its title and body with
	// {{placeholder}} fields. Missing types use built-in text.
	Templates map[string]NotificationTemplate `mapstructure:"templates"`
}

type NotificationTemplate struct {
	Title    string `mapstructure:"title"`
	Body     string `mapstructure:"body"`
	Priority string `mapstructure:"priority"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// PollInterval returns the poller tick as a duration.
func (p PollerConfig) PollInterval() time.Duration {
	return GetDuration(p.Interval)
}
