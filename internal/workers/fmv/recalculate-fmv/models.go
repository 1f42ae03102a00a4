// internal/workers/fmv/recalculate-fmv/models.go
package recalculatefmv

import "chatnil-workers/internal/scoring/fmv"

type Input struct {
	AthleteID string      `json:"athleteId"`
	Profile   fmv.Profile `json:"profile"`
}

type Output struct {
	FMV  *fmv.Result `json:"fmv"`
	Meta Meta        `json:"meta"`
	// Notifications lists the notification types queued for delivery.
	Notifications []string `json:"notifications"`
	Notice        string   `json:"notice,omitempty"`
}

type Meta struct {
	IsRecalculation        bool   `json:"isRecalculation"`
	PreviousScore          *int   `json:"previousScore,omitempty"`
	PreviousTier           string `json:"previousTier,omitempty"`
	ScoreChange            int    `json:"scoreChange"`
	TierChanged            bool   `json:"tierChanged"`
	ShouldNotifyIncrease   bool   `json:"shouldNotifyIncrease"`
	ShouldEncourageSharing bool   `json:"shouldEncourageSharing"`
	CalculationCountToday  int    `json:"calculationCountToday"`
	RemainingToday         int    `json:"remainingCalculationsToday"`
	Persisted              bool   `json:"persisted"`
}
