// internal/workers/notifications/send-notification/models.go
package sendnotification

// Notification types.
const (
	TypeScoreIncrease        = "score_increase"
	TypeScoreDecrease        = "score_decrease"
	TypeShareScore           = "share_score"
	TypeStaleScore           = "stale_score"
	TypeRateLimit            = "rate_limit"
	TypeCalculationAvailable = "calculation_available"
	TypeNewMatch             = "new_match"
)

// Priorities.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Statuses
const (
	StatusSent     = "sent"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"
)

// Channels
const (
	ChannelInApp = "in_app"
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

// Notification is one message for one user. Data fills the template
// placeholders and is stored as the row's metadata. Priority defaults to the
// template's.
type Notification struct {
	UserID   string                 `json:"userId"`
	Type     string                 `json:"type"`
	Priority string                 `json:"priority,omitempty"`
	Data     map[string]interface{} `json:"data,omitempty"`
}

type Input struct {
	Notification
}

type Output struct {
	NotificationID string   `json:"notificationId"`
	Status         string   `json:"status"`
	Channels       []string `json:"channels"`
	Title          string   `json:"title"`
	Message        string   `json:"message"`
	SentAt         string   `json:"sentAt"`
}
