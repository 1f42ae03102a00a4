// internal/workers/matching/calculate-match-score/models.go
package calculatematchscore

import "chatnil-workers/internal/scoring/matching"

type Input struct {
	Agency    matching.Agency   `json:"agency"`
	AthleteID string            `json:"athleteId"`
	Athlete   *matching.Athlete `json:"athlete,omitempty"`
	// PersistMatch records the pair in agency_athlete_matches so subscribers
	// of the match stream see it.
	PersistMatch bool `json:"persistMatch"`
}

type Output struct {
	*matching.Result
	ProfileFound bool   `json:"profileFound"`
	MatchID      string `json:"matchId,omitempty"`
}
