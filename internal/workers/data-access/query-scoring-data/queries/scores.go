// internal/workers/data-access/query-scoring-data/queries/scores.go
package queries

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
)

type FMVHistoryEntry struct {
	Score        int       `db:"score" json:"score"`
	Trigger      string    `db:"trigger" json:"trigger"`
	CalculatedAt time.Time `db:"calculated_at" json:"calculatedAt"`
}

// FMVHistory feeds the score history chart, newest first.
func FMVHistory(ctx context.Context, db *sqlx.DB, p Params) (interface{}, int, error) {
	if err := requireParam("athleteId", p.AthleteID); err != nil {
		return nil, 0, err
	}
	rows := make([]FMVHistoryEntry, 0)
	err := db.SelectContext(ctx, &rows, `
		SELECT score, trigger, calculated_at
		FROM athlete_fmv_history
		WHERE athlete_id = $1
		ORDER BY calculated_at DESC
		LIMIT $2`, p.AthleteID, p.Limit)
	if err != nil {
		return nil, 0, err
	}
	return rows, len(rows), nil
}

type ComplianceScoreRow struct {
	DealID      string         `db:"deal_id" json:"dealId"`
	TotalScore  int            `db:"total_score" json:"totalScore"`
	Status      string         `db:"status" json:"status"`
	ReasonCodes types.JSONText `db:"reason_codes" json:"reasonCodes"`
	ScoredAt    time.Time      `db:"scored_at" json:"scoredAt"`
}

func ComplianceScores(ctx context.Context, db *sqlx.DB, p Params) (interface{}, int, error) {
	if err := requireParam("athleteId", p.AthleteID); err != nil {
		return nil, 0, err
	}
	rows := make([]ComplianceScoreRow, 0)
	err := db.SelectContext(ctx, &rows, `
		SELECT deal_id, total_score, status, reason_codes, scored_at
		FROM compliance_scores
		WHERE athlete_id = $1
		ORDER BY scored_at DESC
		LIMIT $2`, p.AthleteID, p.Limit)
	if err != nil {
		return nil, 0, err
	}
	return rows, len(rows), nil
}
