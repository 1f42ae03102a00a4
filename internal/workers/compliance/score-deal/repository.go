// internal/workers/compliance/score-deal/repository.go
package scoredeal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"chatnil-workers/internal/scoring/compliance"
)

// Repository writes compliance results.
type Repository interface {
	SaveScore(ctx context.Context, out *Output) error
	UpdateDealStatus(ctx context.Context, dealID, status string) error
}

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) SaveScore(ctx context.Context, out *Output) error {
	reasons, err := json.Marshal(out.ReasonCodes)
	if err != nil {
		return fmt.Errorf("encode reason codes: %w", err)
	}
	weights, err := json.Marshal(out.Weights)
	if err != nil {
		return fmt.Errorf("encode weights: %w", err)
	}

	d := out.Dimensions
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO compliance_scores (
			deal_id, athlete_id, policy_fit_score, document_score, fmv_score, tax_score,
			brand_safety_score, guardian_consent_score, total_score, status, reason_codes, weights, scored_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (deal_id) DO UPDATE SET
			athlete_id = EXCLUDED.athlete_id,
			policy_fit_score = EXCLUDED.policy_fit_score,
			document_score = EXCLUDED.document_score,
			fmv_score = EXCLUDED.fmv_score,
			tax_score = EXCLUDED.tax_score,
			brand_safety_score = EXCLUDED.brand_safety_score,
			guardian_consent_score = EXCLUDED.guardian_consent_score,
			total_score = EXCLUDED.total_score,
			status = EXCLUDED.status,
			reason_codes = EXCLUDED.reason_codes,
			weights = EXCLUDED.weights,
			scored_at = EXCLUDED.scored_at`,
		out.DealID, out.AthleteID,
		d[compliance.DimensionPolicyFit].Score,
		d[compliance.DimensionDocumentHygiene].Score,
		d[compliance.DimensionFMVVerification].Score,
		d[compliance.DimensionTaxReadiness].Score,
		d[compliance.DimensionBrandSafety].Score,
		d[compliance.DimensionGuardianConsent].Score,
		out.TotalScore, out.Status, reasons, weights, out.ScoredAt,
	)
	return err
}

func (r *PostgresRepository) UpdateDealStatus(ctx context.Context, dealID, status string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE nil_deals SET compliance_status = $1 WHERE id = $2`, status, dealID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
