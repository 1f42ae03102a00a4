// internal/workers/data-access/query-scoring-data/queries/activity.go
package queries

import (
	"context"
	"time"

	"chatnil-workers/internal/scoring/matching"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
)

type AgencyMatch struct {
	ID        string    `db:"id" json:"matchId"`
	AthleteID string    `db:"athlete_id" json:"athleteId"`
	Score     int       `db:"match_score" json:"matchScore"`
	Tier      string    `db:"match_tier" json:"matchTier"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// AgencyMatches lists an agency's best matches. Legacy tier names are mapped
// onto the current tiers.
func AgencyMatches(ctx context.Context, db *sqlx.DB, p Params) (interface{}, int, error) {
	if err := requireParam("agencyId", p.AgencyID); err != nil {
		return nil, 0, err
	}
	rows := make([]AgencyMatch, 0)
	err := db.SelectContext(ctx, &rows, `
		SELECT id, athlete_id, match_score, match_tier, status, created_at
		FROM agency_athlete_matches
		WHERE agency_id = $1
		ORDER BY match_score DESC, created_at DESC
		LIMIT $2`, p.AgencyID, p.Limit)
	if err != nil {
		return nil, 0, err
	}
	for i := range rows {
		rows[i].Tier = matching.NormalizeTier(rows[i].Tier)
	}
	return rows, len(rows), nil
}

type Notification struct {
	ID        string         `db:"id" json:"id"`
	Type      string         `db:"type" json:"type"`
	Title     string         `db:"title" json:"title"`
	Message   string         `db:"message" json:"message"`
	Priority  string         `db:"priority" json:"priority"`
	Metadata  types.JSONText `db:"metadata" json:"metadata"`
	CreatedAt time.Time      `db:"created_at" json:"createdAt"`
}

func UnreadNotifications(ctx context.Context, db *sqlx.DB, p Params) (interface{}, int, error) {
	if err := requireParam("userId", p.UserID); err != nil {
		return nil, 0, err
	}
	rows := make([]Notification, 0)
	err := db.SelectContext(ctx, &rows, `
		SELECT id, type, title, message, priority, metadata, created_at
		FROM notifications
		WHERE user_id = $1 AND read = FALSE
		ORDER BY created_at DESC
		LIMIT $2`, p.UserID, p.Limit)
	if err != nil {
		return nil, 0, err
	}
	return rows, len(rows), nil
}
