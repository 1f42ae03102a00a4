// internal/workers/fmv/calculate-fmv/models.go
package calculatefmv

import (
	"chatnil-workers/internal/scoring/fmv"
	"chatnil-workers/internal/workers/fmv/store"
)

type Input struct {
	AthleteID string      `json:"athleteId"`
	Profile   fmv.Profile `json:"profile"`
	// IncludeComparables defaults to true when omitted.
	IncludeComparables *bool `json:"includeComparables,omitempty"`
}

type Output struct {
	FMV                  *fmv.Result        `json:"fmv"`
	Comparables          []store.Comparable `json:"comparables"`
	ComparablesAvailable bool               `json:"comparablesAvailable"`
}
