// internal/workers/notifications/send-notification/templates.go
package sendnotification

import (
	"fmt"
	"strings"
)

// Template is the text of one notification type. Title and Body may contain
// {{key}} placeholders.
type Template struct {
	Title    string
	Body     string
	Priority string
}

var defaultTemplates = map[string]Template{
	TypeScoreIncrease: {
		Title:    "Your FMV Score Increased by {{increase}} Points!",
		Body:     "Your score went from {{previous_score}} to {{current_score}}. Great progress!",
		Priority: PriorityHigh,
	},
	TypeScoreDecrease: {
		Title:    "Your FMV Score Decreased",
		Body:     "Your score changed from {{previous_score}} to {{current_score}}. Check your improvement suggestions for ways to increase it.",
		Priority: PriorityMedium,
	},
	TypeShareScore: {
		Title:    "Share Your Achievement!",
		Body:     "Your FMV score of {{fmv_score}} is in the {{fmv_tier}} tier! Making it public can help you attract more NIL opportunities.",
		Priority: PriorityMedium,
	},
	TypeStaleScore: {
		Title:    "Your FMV Score May Be Outdated",
		Body:     "Your score was last calculated {{days_since_calculation}} days ago. Recalculate to reflect your latest achievements and activities.",
		Priority: PriorityMedium,
	},
	TypeRateLimit: {
		Title:    "Daily Calculation Limit Reached",
		Body:     "You've used all {{max_calculations}} FMV calculations today. Your limit will reset at midnight UTC.",
		Priority: PriorityLow,
	},
	TypeCalculationAvailable: {
		Title:    "FMV Calculations Available",
		Body:     "You have {{remaining_calculations}} FMV calculations remaining today.",
		Priority: PriorityLow,
	},
	TypeNewMatch: {
		Title:    "New Match",
		Body:     "New match: {{name}} ({{match_score}}% match)",
		Priority: PriorityMedium,
	},
}

// DefaultTemplates returns a copy of the built-in templates.
func DefaultTemplates() map[string]Template {
	out := make(map[string]Template, len(defaultTemplates))
	for k, v := range defaultTemplates {
		out[k] = v
	}
	return out
}

func mergeTemplates(overrides map[string]Template) map[string]Template {
	out := DefaultTemplates()
	for typ, t := range overrides {
		base := out[typ]
		if t.Title != "" {
			base.Title = t.Title
		}
		if t.Body != "" {
			base.Body = t.Body
		}
		if t.Priority != "" {
			base.Priority = t.Priority
		}
		out[strings.ToLower(typ)] = base
	}
	return out
}

var priorityRank = map[string]int{
	PriorityLow:    1,
	PriorityMedium: 2,
	PriorityHigh:   3,
}

// atLeast reports whether priority is at or above threshold. Unknown
// priorities rank lowest.
func atLeast(priority, threshold string) bool {
	return priorityRank[priority] >= priorityRank[threshold] && priorityRank[priority] > 0
}

func renderTemplate(tmpl string, data map[string]interface{}) string {
	result := tmpl

	for k, v := range data {
		placeholder := "{{" + k + "}}"
		value := ""
		if s, ok := v.(string); ok {
			value = s
		} else if i, ok := v.(int); ok {
			value = fmt.Sprintf("%d", i)
		} else if f, ok := v.(float64); ok && f == float64(int64(f)) {
			value = fmt.Sprintf("%d", int64(f))
		} else if v != nil {
			value = fmt.Sprintf("%v", v)
		}
		result = strings.ReplaceAll(result, placeholder, value)
	}

	// Unfilled placeholders render as nothing.
	for {
		start := strings.Index(result, "{{")
		if start == -1 {
			break
		}
		end := strings.Index(result[start:], "}}")
		if end == -1 {
			break
		}
		end += start + 2
		result = result[:start] + result[end:]
	}

	return result
}
