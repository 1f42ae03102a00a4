// internal/scoring/compliance/dashboard.go
package compliance

import (
	"chatnil-workers/internal/scoring"
)

// DefaultBaseScore is assumed for a deal that has never been scored.
const DefaultBaseScore = 85

// MockOffsets skew synthetic dimension scores the way real deals tend to land:
// paperwork lags, brand and consent checks usually pass.
var MockOffsets = map[string]int{
	DimensionPolicyFit:       5,
	DimensionDocumentHygiene: -10,
	DimensionFMVVerification: 0,
	DimensionTaxReadiness:    -5,
	DimensionBrandSafety:     10,
	DimensionGuardianConsent: 15,
}

// MockDimensionScores spreads a stored total across the six dimensions.
func MockDimensionScores(gen *scoring.MockGenerator, base int) map[string]int {
	return gen.Scores(base, MockOffsets, DimensionOrder)
}

// Deal is one deal on the dashboard. Input is used when present; otherwise the
// stored total (or DefaultBaseScore) is spread with the mock generator.
type Deal struct {
	ID          string  `json:"id"`
	BrandName   string  `json:"brandName"`
	Value       float64 `json:"value"`
	DealType    string  `json:"dealType"`
	StoredScore *int    `json:"storedScore,omitempty"`
	Input       *Input  `json:"input,omitempty"`
}

// DealSummary is a scored deal.
type DealSummary struct {
	ID           string                             `json:"id"`
	BrandName    string                             `json:"brandName"`
	Value        float64                            `json:"value"`
	DealType     string                             `json:"dealType"`
	OverallScore int                                `json:"overallScore"`
	Status       string                             `json:"status"`
	Dimensions   map[string]scoring.DimensionResult `json:"dimensions"`
	Issues       []scoring.Issue                    `json:"issues"`
	Reasons      []string                           `json:"reasons,omitempty"`
}

// RankSeverity maps at_risk deals to critical and attention_needed to warning.
func (d DealSummary) RankSeverity() string {
	switch d.Status {
	case scoring.StatusAtRisk:
		return scoring.SeverityCritical
	case scoring.StatusAttentionNeeded:
		return scoring.SeverityWarning
	}
	return scoring.SeverityInfo
}

func (d DealSummary) RankScore() int { return d.OverallScore }

// Summary is the protection overview across all of an athlete's deals.
type Summary struct {
	Deals                 []DealSummary `json:"deals"`
	DealsNeedingAttention []DealSummary `json:"dealsNeedingAttention"`
	ProtectedCount        int           `json:"protectedCount"`
	OverallScore          int           `json:"overallScore"`
	OverallStatus         string        `json:"overallStatus"`
	TotalEarnings         float64       `json:"totalEarnings"`
}

// Scorer scores deals for the dashboard.
type Scorer struct {
	engine *scoring.Engine
	mock   *scoring.MockGenerator
}

func NewScorer(engine *scoring.Engine, mock *scoring.MockGenerator) *Scorer {
	return &Scorer{engine: engine, mock: mock}
}

func (s *Scorer) Engine() *scoring.Engine { return s.engine }

// Score evaluates a deal from its real inputs.
func (s *Scorer) Score(in Input) *scoring.ScoreResult {
	return s.engine.Score(in.DealID, in.ScoreInput())
}

// ScoreDeal returns the dashboard view of one deal.
func (s *Scorer) ScoreDeal(d Deal) DealSummary {
	var result *scoring.ScoreResult
	var overall int

	if d.Input != nil {
		in := *d.Input
		if in.DealID == "" {
			in.DealID = d.ID
		}
		result = s.Score(in)
		overall = result.TotalScore
	} else {
		base := DefaultBaseScore
		if d.StoredScore != nil {
			base = scoring.Clamp(*d.StoredScore, 0, 100)
		}
		result = s.engine.FromScores(d.ID, MockDimensionScores(s.mock, base))
		// The stored total is authoritative; the breakdown is illustrative.
		overall = base
	}

	return DealSummary{
		ID:           d.ID,
		BrandName:    d.BrandName,
		Value:        d.Value,
		DealType:     d.DealType,
		OverallScore: overall,
		Status:       OverallStatus(overall),
		Dimensions:   result.Dimensions,
		Issues:       result.Issues,
		Reasons:      result.Reasons,
	}
}

// Summarize scores every deal, averages them and lists the deals below the
// protected band, worst first.
func (s *Scorer) Summarize(deals []Deal) Summary {
	summary := Summary{
		Deals:                 make([]DealSummary, 0, len(deals)),
		DealsNeedingAttention: make([]DealSummary, 0),
	}

	total := 0
	for _, d := range deals {
		ds := s.ScoreDeal(d)
		summary.Deals = append(summary.Deals, ds)
		summary.TotalEarnings += ds.Value
		total += ds.OverallScore
	}

	summary.OverallScore = 100
	if len(summary.Deals) > 0 {
		summary.OverallScore = scoring.RoundHalfUp(float64(total) / float64(len(summary.Deals)))
	}
	summary.OverallStatus = OverallStatus(summary.OverallScore)
	summary.DealsNeedingAttention = DealsNeedingAttention(summary.Deals)
	summary.ProtectedCount = len(summary.Deals) - len(summary.DealsNeedingAttention)

	return summary
}

// DealsNeedingAttention returns the deals that are not protected, at_risk before
// attention_needed and lower scores first.
func DealsNeedingAttention(deals []DealSummary) []DealSummary {
	out := make([]DealSummary, 0)
	for _, d := range deals {
		if d.Status != scoring.StatusProtected {
			out = append(out, d)
		}
	}
	scoring.SortBySeverity(out)
	return out
}
