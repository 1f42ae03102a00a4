// internal/workers/data-access/query-scoring-data/queries/registry.go

// Package queries is the whitelist of read queries the query-scoring-data
// worker may run. Each query is parameterized; nothing from job variables is
// ever spliced into SQL.
package queries

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

var (
	ErrMissingParam     = errors.New("missing required parameter")
	ErrUnknownQueryType = errors.New("unknown query type")
)

type QueryType string

const (
	QueryTypeFMVHistory          QueryType = "fmv_history"
	QueryTypeComplianceScores    QueryType = "compliance_scores"
	QueryTypeAgencyMatches       QueryType = "agency_matches"
	QueryTypeUnreadNotifications QueryType = "unread_notifications"
)

// Params carries every id a query may need. Limit is already bounded by the
// caller.
type Params struct {
	AthleteID string
	AgencyID  string
	UserID    string
	Limit     int
}

// QueryFunc returns the rows and their count.
type QueryFunc func(ctx context.Context, db *sqlx.DB, p Params) (interface{}, int, error)

var Registry = map[QueryType]QueryFunc{
	QueryTypeFMVHistory:          FMVHistory,
	QueryTypeComplianceScores:    ComplianceScores,
	QueryTypeAgencyMatches:       AgencyMatches,
	QueryTypeUnreadNotifications: UnreadNotifications,
}

// Types lists the registered query types.
func Types() []string {
	return []string{
		string(QueryTypeFMVHistory),
		string(QueryTypeComplianceScores),
		string(QueryTypeAgencyMatches),
		string(QueryTypeUnreadNotifications),
	}
}

// Execute runs queryType and reports its execution time in milliseconds.
func Execute(ctx context.Context, db *sqlx.DB, queryType QueryType, p Params) (interface{}, int, int64, error) {
	fn, exists := Registry[queryType]
	if !exists {
		return nil, 0, 0, fmt.Errorf("%w: %s", ErrUnknownQueryType, queryType)
	}
	start := time.Now()
	data, n, err := fn(ctx, db, p)
	if err != nil {
		return nil, 0, 0, err
	}
	return data, n, time.Since(start).Milliseconds(), nil
}

func requireParam(name, value string) error {
	if value == "" {
		return fmt.Errorf("%w: %s", ErrMissingParam, name)
	}
	return nil
}
