// internal/workers/notifications/match-stream/source.go
package matchstream

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
)

const subscriberQuery = `
	SELECT id, role, COALESCE(first_name, '') AS first_name, COALESCE(last_name, '') AS last_name
	FROM users
	WHERE id = $1`

// Agencies see athletes they have not saved yet.
const athleteMatchesFrom = `
	SELECT m.id, m.agency_id, m.athlete_id, m.match_score, m.match_tier, m.match_reasons, m.created_at,
	       COALESCE(u.first_name, '') AS first_name, COALESCE(u.last_name, '') AS last_name,
	       COALESCE(u.username, '') AS username
	FROM agency_athlete_matches m
	LEFT JOIN users u ON u.id = m.athlete_id
	WHERE m.agency_id = $1 AND m.created_at > $2
	  AND NOT EXISTS (
	      SELECT 1 FROM agency_athlete_lists l
	      WHERE l.agency_id = m.agency_id AND l.athlete_id = m.athlete_id)`

const campaignMatchesFrom = `
	SELECT m.id, m.agency_id, m.athlete_id, m.match_score, m.match_tier, m.match_reasons, m.created_at,
	       COALESCE(u.first_name, '') AS first_name, COALESCE(u.last_name, '') AS last_name,
	       COALESCE(u.username, '') AS username
	FROM agency_athlete_matches m
	LEFT JOIN users u ON u.id = m.agency_id
	WHERE m.athlete_id = $1 AND m.created_at > $2`

const (
	oldestFirst = "ASC"
	newestFirst = "DESC"
)

func matchesQuery(from, order string) string {
	return from + `
	ORDER BY m.created_at ` + order + `, m.id ` + order + `
	LIMIT $3`
}

type matchRow struct {
	ID        string         `db:"id"`
	AgencyID  string         `db:"agency_id"`
	AthleteID string         `db:"athlete_id"`
	Score     int            `db:"match_score"`
	Tier      string         `db:"match_tier"`
	Reasons   types.JSONText `db:"match_reasons"`
	CreatedAt time.Time      `db:"created_at"`
	FirstName string         `db:"first_name"`
	LastName  string         `db:"last_name"`
	Username  string         `db:"username"`
}

// PostgresMatchSource reads subscribers and their matches.
type PostgresMatchSource struct {
	db *sqlx.DB
}

func NewPostgresMatchSource(db *sql.DB) *PostgresMatchSource {
	return &PostgresMatchSource{db: sqlx.NewDb(db, "postgres")}
}

// Subscriber returns nil when the user does not exist.
func (s *PostgresMatchSource) Subscriber(ctx context.Context, userID string) (*Subscriber, error) {
	var sub Subscriber
	err := s.db.GetContext(ctx, &sub, subscriberQuery, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// Matches returns up to limit matches for sub created after since, oldest
// first, so a caller can page forward from the last one. Roles other than
// athlete, agency and brand have no matches.
func (s *PostgresMatchSource) Matches(ctx context.Context, sub Subscriber, since time.Time, limit int) ([]Match, error) {
	return s.matches(ctx, sub, since, limit, oldestFirst)
}

// Recent returns up to limit matches for sub created after since, newest first.
func (s *PostgresMatchSource) Recent(ctx context.Context, sub Subscriber, since time.Time, limit int) ([]Match, error) {
	return s.matches(ctx, sub, since, limit, newestFirst)
}

func (s *PostgresMatchSource) matches(ctx context.Context, sub Subscriber, since time.Time, limit int, order string) ([]Match, error) {
	var from string
	switch {
	case sub.SeesAthletes():
		from = athleteMatchesFrom
	case sub.Role == RoleAthlete:
		from = campaignMatchesFrom
	default:
		return nil, nil
	}

	var rows []matchRow
	if err := s.db.SelectContext(ctx, &rows, matchesQuery(from, order), sub.ID, since, limit); err != nil {
		return nil, err
	}

	out := make([]Match, 0, len(rows))
	for _, r := range rows {
		var reasons []string
		if len(r.Reasons) > 0 {
			// A malformed reasons column should not hide the match itself.
			_ = json.Unmarshal(r.Reasons, &reasons)
		}
		out = append(out, Match{
			ID:                  r.ID,
			AgencyID:            r.AgencyID,
			AthleteID:           r.AthleteID,
			Score:               r.Score,
			Tier:                r.Tier,
			Reasons:             reasons,
			CreatedAt:           r.CreatedAt,
			CounterpartName:     strings.TrimSpace(r.FirstName + " " + r.LastName),
			CounterpartUsername: r.Username,
		})
	}
	return out, nil
}
