// internal/workers/compliance/summarize-deals/repository.go
package summarizedeals

import (
	"context"
	"database/sql"

	"chatnil-workers/internal/scoring/compliance"

	"github.com/jmoiron/sqlx"
)

type DealLoader interface {
	DealsForAthlete(ctx context.Context, athleteID string) ([]compliance.Deal, error)
}

type dealRow struct {
	ID          string          `db:"id"`
	BrandName   sql.NullString  `db:"third_party_name"`
	DealType    sql.NullString  `db:"deal_type"`
	Value       sql.NullFloat64 `db:"compensation_amount"`
	StoredScore sql.NullInt64   `db:"total_score"`
}

// PostgresDealLoader reads an athlete's deals with their last stored
// compliance total.
type PostgresDealLoader struct {
	db *sqlx.DB
}

func NewPostgresDealLoader(db *sql.DB) *PostgresDealLoader {
	return &PostgresDealLoader{db: sqlx.NewDb(db, "postgres")}
}

func (l *PostgresDealLoader) DealsForAthlete(ctx context.Context, athleteID string) ([]compliance.Deal, error) {
	var rows []dealRow
	err := l.db.SelectContext(ctx, &rows, `
		SELECT d.id, d.third_party_name, d.deal_type, d.compensation_amount, s.total_score
		FROM nil_deals d
		LEFT JOIN compliance_scores s ON s.deal_id = d.id
		WHERE d.athlete_id = $1 AND d.status <> 'cancelled'
		ORDER BY d.created_at DESC`, athleteID)
	if err != nil {
		return nil, err
	}

	deals := make([]compliance.Deal, 0, len(rows))
	for _, r := range rows {
		d := compliance.Deal{
			ID:        r.ID,
			BrandName: r.BrandName.String,
			DealType:  r.DealType.String,
			Value:     r.Value.Float64,
		}
		if r.StoredScore.Valid {
			score := int(r.StoredScore.Int64)
			d.StoredScore = &score
		}
		deals = append(deals, d)
	}
	return deals, nil
}
