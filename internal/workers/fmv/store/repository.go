// internal/workers/fmv/store/repository.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"chatnil-workers/internal/common/database"
	"chatnil-workers/internal/scoring/fmv"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// History triggers.
const (
	TriggerManual    = "manual_recalculation"
	TriggerScheduled = "scheduled"
)

// Previous is the stored FMV state an athlete had before a recalculation.
type Previous struct {
	Score             int           `db:"fmv_score"`
	Tier              string        `db:"fmv_tier"`
	LastNotifiedScore sql.NullInt64 `db:"last_notified_score"`
	IsPublicScore     bool          `db:"is_public_score"`
	LastCalculatedAt  time.Time     `db:"last_calculated_at"`
}

// LastNotified returns the last notified score or nil when none was recorded.
func (p *Previous) LastNotified() *int {
	if p == nil || !p.LastNotifiedScore.Valid {
		return nil
	}
	n := int(p.LastNotifiedScore.Int64)
	return &n
}

// StaleScore is an athlete whose score has not been recalculated recently.
type StaleScore struct {
	AthleteID        string    `db:"athlete_id"`
	Score            int       `db:"fmv_score"`
	Tier             string    `db:"fmv_tier"`
	LastCalculatedAt time.Time `db:"last_calculated_at"`
}

// Snapshot is everything written for one recalculation.
type Snapshot struct {
	Result            *fmv.Result
	Trigger           string
	CalculatedAt      time.Time
	LastNotifiedScore *int
	HistoryKeep       int
}

// Repository reads and writes athlete_fmv_data and athlete_fmv_history.
type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: sqlx.NewDb(db, "postgres")}
}

// Previous loads the stored FMV row, or nil for a first calculation.
func (r *Repository) Previous(ctx context.Context, athleteID string) (*Previous, error) {
	var p Previous
	err := r.db.GetContext(ctx, &p, `
		SELECT fmv_score, fmv_tier, last_notified_score, is_public_score, last_calculated_at
		FROM athlete_fmv_data WHERE athlete_id = $1`, athleteID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Save upserts the FMV row, appends a history entry and prunes history to the
// newest HistoryKeep entries, all in one transaction.
func (r *Repository) Save(ctx context.Context, s Snapshot) error {
	res := s.Result
	suggestions, err := json.Marshal(res.ImprovementSuggestions)
	if err != nil {
		return fmt.Errorf("encode suggestions: %w", err)
	}
	strengths, err := json.Marshal(res.Strengths)
	if err != nil {
		return fmt.Errorf("encode strengths: %w", err)
	}
	weaknesses, err := json.Marshal(res.Weaknesses)
	if err != nil {
		return fmt.Errorf("encode weaknesses: %w", err)
	}
	var lastNotified sql.NullInt64
	if s.LastNotifiedScore != nil {
		lastNotified = sql.NullInt64{Int64: int64(*s.LastNotifiedScore), Valid: true}
	}

	return database.WithTx(ctx, r.db.DB, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO athlete_fmv_data (
				athlete_id, fmv_score, fmv_tier, social_score, athletic_score, market_score, brand_score,
				percentile_rank, estimated_deal_value_low, estimated_deal_value_mid, estimated_deal_value_high,
				improvement_suggestions, strengths, weaknesses, is_public_score, last_notified_score,
				calculation_version, last_calculated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
			ON CONFLICT (athlete_id) DO UPDATE SET
				fmv_score = EXCLUDED.fmv_score,
				fmv_tier = EXCLUDED.fmv_tier,
				social_score = EXCLUDED.social_score,
				athletic_score = EXCLUDED.athletic_score,
				market_score = EXCLUDED.market_score,
				brand_score = EXCLUDED.brand_score,
				percentile_rank = EXCLUDED.percentile_rank,
				estimated_deal_value_low = EXCLUDED.estimated_deal_value_low,
				estimated_deal_value_mid = EXCLUDED.estimated_deal_value_mid,
				estimated_deal_value_high = EXCLUDED.estimated_deal_value_high,
				improvement_suggestions = EXCLUDED.improvement_suggestions,
				strengths = EXCLUDED.strengths,
				weaknesses = EXCLUDED.weaknesses,
				last_notified_score = EXCLUDED.last_notified_score,
				calculation_version = EXCLUDED.calculation_version,
				last_calculated_at = EXCLUDED.last_calculated_at`,
			res.AthleteID, res.FMVScore, res.FMVTier, res.SocialScore, res.AthleticScore, res.MarketScore, res.BrandScore,
			res.PercentileRank, res.EstimatedDealValueLow, res.EstimatedDealValueMid, res.EstimatedDealValueHigh,
			suggestions, strengths, weaknesses, res.IsPublicScore, lastNotified,
			res.CalculationVersion, s.CalculatedAt,
		); err != nil {
			return fmt.Errorf("upsert fmv row: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO athlete_fmv_history (id, athlete_id, score, trigger, calculated_at)
			VALUES ($1, $2, $3, $4, $5)`,
			uuid.New().String(), res.AthleteID, res.FMVScore, s.Trigger, s.CalculatedAt,
		); err != nil {
			return fmt.Errorf("insert history: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			DELETE FROM athlete_fmv_history
			WHERE athlete_id = $1 AND id NOT IN (
				SELECT id FROM athlete_fmv_history
				WHERE athlete_id = $1
				ORDER BY calculated_at DESC
				LIMIT $2
			)`,
			res.AthleteID, s.HistoryKeep,
		); err != nil {
			return fmt.Errorf("prune history: %w", err)
		}
		return nil
	})
}

// StaleScores lists athletes last calculated before cutoff that have not had a
// notification of notifyType since then.
func (r *Repository) StaleScores(ctx context.Context, cutoff time.Time, notifyType string, limit int) ([]StaleScore, error) {
	var out []StaleScore
	err := r.db.SelectContext(ctx, &out, `
		SELECT f.athlete_id, f.fmv_score, f.fmv_tier, f.last_calculated_at
		FROM athlete_fmv_data f
		WHERE f.last_calculated_at < $1
		  AND NOT EXISTS (
			SELECT 1 FROM notifications n
			WHERE n.user_id = f.athlete_id AND n.type = $2 AND n.created_at > f.last_calculated_at
		  )
		ORDER BY f.last_calculated_at ASC
		LIMIT $3`, cutoff, notifyType, limit)
	return out, err
}
