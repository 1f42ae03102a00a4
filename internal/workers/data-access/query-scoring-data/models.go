// internal/workers/data-access/query-scoring-data/models.go
package queryscoringdata

type Input struct {
	QueryType string `json:"queryType"`
	AthleteID string `json:"athleteId,omitempty"`
	AgencyID  string `json:"agencyId,omitempty"`
	UserID    string `json:"userId,omitempty"`
	Limit     int    `json:"limit,omitempty"`
}

type Output struct {
	Data               interface{} `json:"data"`
	RowCount           int         `json:"rowCount"`
	QueryExecutionTime int64       `json:"queryExecutionTime"` // milliseconds
}
