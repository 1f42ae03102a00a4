// internal/workers/compliance/score-deal/models.go
package scoredeal

import (
	"time"

	"chatnil-workers/internal/scoring"
	"chatnil-workers/internal/scoring/compliance"
)

type Input struct {
	compliance.Input
}

type Output struct {
	DealID      string                             `json:"dealId"`
	AthleteID   string                             `json:"athleteId"`
	TotalScore  int                                `json:"totalScore"`
	Status      string                             `json:"status"`
	Dimensions  map[string]scoring.DimensionResult `json:"dimensions"`
	Order       []string                           `json:"order"`
	Issues      []scoring.Issue                    `json:"issues"`
	ReasonCodes []string                           `json:"reasonCodes"`
	Weights     scoring.WeightTable                `json:"weights"`
	Persisted   bool                               `json:"persisted"`
	ScoredAt    time.Time                          `json:"scoredAt"`
}
