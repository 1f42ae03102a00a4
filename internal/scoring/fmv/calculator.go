// internal/scoring/fmv/calculator.go
package fmv

import (
	"math"

	"chatnil-workers/internal/scoring"
)

// CalculationVersion is stored with every persisted result.
const CalculationVersion = "v1.0"

// Dimension names.
const (
	DimensionSocial   = "social"
	DimensionAthletic = "athletic"
	DimensionMarket   = "market"
	DimensionBrand    = "brand"
)

// FMV tiers.
const (
	TierElite      = "elite"
	TierHigh       = "high"
	TierMedium     = "medium"
	TierDeveloping = "developing"
	TierEmerging   = "emerging"
)

// TierBands classify the total FMV score.
var TierBands = []scoring.Band{
	{Label: TierElite, Min: 90},
	{Label: TierHigh, Min: 75},
	{Label: TierMedium, Min: 55},
	{Label: TierDeveloping, Min: 35},
	{Label: TierEmerging, Min: 0},
}

var tierClassifier = scoring.MustClassifier(TierBands...)

// Tier returns the FMV tier for a total score.
func Tier(score int) string {
	return tierClassifier.Classify(score)
}

// Weights mirror the point ceilings so the weighted total tracks the point sum.
var Weights = scoring.WeightTable{
	DimensionSocial:   0.30,
	DimensionAthletic: 0.30,
	DimensionMarket:   0.20,
	DimensionBrand:    0.20,
}

// NewEngine builds the FMV scoring engine.
func NewEngine() (*scoring.Engine, error) {
	return scoring.NewEngine(scoring.Config{
		Name: "fmv",
		Dimensions: []scoring.Dimension{
			{Name: DimensionSocial, Weight: Weights[DimensionSocial], Evaluate: pointsEvaluator(SocialPoints, MaxSocialPoints)},
			{Name: DimensionAthletic, Weight: Weights[DimensionAthletic], Evaluate: pointsEvaluator(AthleticPoints, MaxAthleticPoints)},
			{Name: DimensionMarket, Weight: Weights[DimensionMarket], Evaluate: pointsEvaluator(MarketPoints, MaxMarketPoints)},
			{Name: DimensionBrand, Weight: Weights[DimensionBrand], Evaluate: pointsEvaluator(BrandPoints, MaxBrandPoints)},
		},
		Tiers: tierClassifier,
	})
}

// Result is a full valuation of one athlete.
type Result struct {
	AthleteID              string                             `json:"athlete_id"`
	FMVScore               int                                `json:"fmv_score"`
	FMVTier                string                             `json:"fmv_tier"`
	SocialScore            int                                `json:"social_score"`
	AthleticScore          int                                `json:"athletic_score"`
	MarketScore            int                                `json:"market_score"`
	BrandScore             int                                `json:"brand_score"`
	Dimensions             map[string]scoring.DimensionResult `json:"dimensions"`
	PercentileRank         int                                `json:"percentile_rank"`
	DealEstimates          DealValueEstimates                 `json:"deal_estimates"`
	EstimatedDealValueLow  int                                `json:"estimated_deal_value_low"`
	EstimatedDealValueMid  int                                `json:"estimated_deal_value_mid"`
	EstimatedDealValueHigh int                                `json:"estimated_deal_value_high"`
	ImprovementSuggestions []Suggestion                       `json:"improvement_suggestions"`
	Strengths              []string                           `json:"strengths"`
	Weaknesses             []string                           `json:"weaknesses"`
	IsPublicScore          bool                               `json:"is_public_score"`
	CalculationVersion     string                             `json:"calculation_version"`
}

// Calculator values athlete profiles. It is safe for concurrent use.
type Calculator struct {
	engine *scoring.Engine
}

func NewCalculator() (*Calculator, error) {
	engine, err := NewEngine()
	if err != nil {
		return nil, err
	}
	return &Calculator{engine: engine}, nil
}

// Engine exposes the underlying scoring engine.
func (c *Calculator) Engine() *scoring.Engine { return c.engine }

// Calculate scores a profile and derives tier, percentile, deal estimates and
// the improvement report.
func (c *Calculator) Calculate(p Profile) *Result {
	in := p.Input()
	scored := c.engine.Score(p.AthleteID, in)

	points := Points{
		Social:   SocialPoints(in[DimensionSocial]),
		Athletic: AthleticPoints(in[DimensionAthletic]),
		Market:   MarketPoints(in[DimensionMarket]),
		Brand:    BrandPoints(in[DimensionBrand]),
	}

	estimates := EstimateDealValues(scored.TotalScore, p.TotalFollowers())

	return &Result{
		AthleteID:              p.AthleteID,
		FMVScore:               scored.TotalScore,
		FMVTier:                scored.Tier,
		SocialScore:            points.Social,
		AthleticScore:          points.Athletic,
		MarketScore:            points.Market,
		BrandScore:             points.Brand,
		Dimensions:             scored.Dimensions,
		PercentileRank:         PercentileRank(scored.TotalScore),
		DealEstimates:          estimates,
		EstimatedDealValueLow:  estimates.SponsoredPost.Low,
		EstimatedDealValueMid:  estimates.BrandAmbassador.Mid,
		EstimatedDealValueHigh: estimates.BrandAmbassador.High,
		ImprovementSuggestions: Suggestions(points, p),
		Strengths:              Strengths(points, p),
		Weaknesses:             Weaknesses(points, p),
		IsPublicScore:          p.IsPublicScore,
		CalculationVersion:     CalculationVersion,
	}
}

// Points holds the raw category points behind a result.
type Points struct {
	Social   int
	Athletic int
	Market   int
	Brand    int
}

func (p Points) Total() int { return p.Social + p.Athletic + p.Market + p.Brand }

var percentileCuts = []struct {
	min        int
	percentile int
}{
	{90, 99}, {85, 95}, {80, 90}, {75, 85}, {70, 75}, {65, 65},
	{60, 55}, {55, 45}, {50, 35}, {45, 25}, {40, 15},
}

// PercentileRank estimates where a score sits among athletes.
func PercentileRank(score int) int {
	for _, c := range percentileCuts {
		if score >= c.min {
			return c.percentile
		}
	}
	return 10
}

// ValueRange is a low/mid/high dollar estimate.
type ValueRange struct {
	Low  int `json:"low"`
	Mid  int `json:"mid"`
	High int `json:"high"`
}

type DealValueEstimates struct {
	SponsoredPost      ValueRange `json:"sponsored_post"`
	BrandAmbassador    ValueRange `json:"brand_ambassador"`
	EventAppearance    ValueRange `json:"event_appearance"`
	ProductEndorsement ValueRange `json:"product_endorsement"`
	ContentCreation    ValueRange `json:"content_creation"`
}

// National average deal values in USD.
var baseDealValues = DealValueEstimates{
	SponsoredPost:      ValueRange{Low: 100, Mid: 500, High: 2000},
	BrandAmbassador:    ValueRange{Low: 5000, Mid: 20000, High: 50000},
	EventAppearance:    ValueRange{Low: 500, Mid: 2000, High: 5000},
	ProductEndorsement: ValueRange{Low: 1000, Mid: 5000, High: 20000},
	ContentCreation:    ValueRange{Low: 250, Mid: 1500, High: 5000},
}

// EstimateDealValues scales the base values by
// (score/100) × log10(max(followers,100))/5.
func EstimateDealValues(score, totalFollowers int) DealValueEstimates {
	multiplier := float64(score) / 100 * math.Log10(math.Max(float64(totalFollowers), 100)) / 5
	scale := func(r ValueRange) ValueRange {
		return ValueRange{
			Low:  scoring.RoundHalfUp(float64(r.Low) * multiplier),
			Mid:  scoring.RoundHalfUp(float64(r.Mid) * multiplier),
			High: scoring.RoundHalfUp(float64(r.High) * multiplier),
		}
	}
	return DealValueEstimates{
		SponsoredPost:      scale(baseDealValues.SponsoredPost),
		BrandAmbassador:    scale(baseDealValues.BrandAmbassador),
		EventAppearance:    scale(baseDealValues.EventAppearance),
		ProductEndorsement: scale(baseDealValues.ProductEndorsement),
		ContentCreation:    scale(baseDealValues.ContentCreation),
	}
}

// Default notification thresholds.
const (
	DefaultNotifyDelta               = 5
	DefaultPublicSuggestionThreshold = 70
)

// ShouldNotifyScoreIncrease reports whether score rose by at least delta since
// the last notified score. The first calculation never notifies.
func ShouldNotifyScoreIncrease(score int, lastNotified *int, delta int) bool {
	if lastNotified == nil {
		return false
	}
	return score-*lastNotified >= delta
}

// ShouldEncouragePublicSharing reports whether a score is high enough to suggest
// making it public.
func ShouldEncouragePublicSharing(score, threshold int) bool {
	return score >= threshold
}
