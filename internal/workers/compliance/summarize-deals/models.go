// internal/workers/compliance/summarize-deals/models.go
package summarizedeals

import "chatnil-workers/internal/scoring/compliance"

// Input carries the deals to summarize. When Deals is omitted they are loaded
// for AthleteID.
type Input struct {
	AthleteID string            `json:"athleteId"`
	Deals     []compliance.Deal `json:"deals,omitempty"`
}

type Output struct {
	AthleteID string `json:"athleteId"`
	compliance.Summary
}
