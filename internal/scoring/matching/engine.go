// internal/scoring/matching/engine.go

// Package matching scores how well an athlete fits an agency's campaign
// across eleven weighted factors.
package matching

import (
	"strings"

	"chatnil-workers/internal/scoring"
)

// MaxHighlights is how many reasons are surfaced as highlights.
const MaxHighlights = 5

// Confidence levels.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

var tierClassifier = scoring.MustClassifier(scoring.MatchTierBands...)

// NewEngine builds the eleven-factor engine. Each factor's weight is its point
// ceiling over 100.
func NewEngine() (*scoring.Engine, error) {
	dims := make([]scoring.Dimension, 0, len(factors))
	for _, fc := range factors {
		dims = append(dims, scoring.Dimension{
			Name:     fc.Name,
			Weight:   fc.Max / 100,
			Evaluate: fc.evaluator(),
		})
	}
	return scoring.NewEngine(scoring.Config{
		Name:       "matching",
		Dimensions: dims,
		Tiers:      tierClassifier,
	})
}

// FactorNames lists the factors in scoring order.
func FactorNames() []string {
	out := make([]string, 0, len(factors))
	for _, fc := range factors {
		out = append(out, fc.Name)
	}
	return out
}

// Input builds the per-factor feature bundles for a pair. A nil athlete yields
// an empty input, which the engine scores as neutral on every factor.
func Input(agency Agency, athlete *Athlete) scoring.ScoreInput {
	if athlete == nil {
		return scoring.ScoreInput{}
	}

	a := *athlete
	interests := agency.Interests()
	followerMin, engagementMin := 0, 0.0
	if t := agency.TargetDemographics; t != nil {
		followerMin, engagementMin = t.FollowerMin, t.EngagementMin
	}
	onboarded := scoring.Features{"onboarded": a.OnboardingCompleted}

	prefs := scoring.Features{"has_preferences": a.NILPreferences != nil, "onboarded": a.OnboardingCompleted}
	if p := a.NILPreferences; p != nil {
		prefs["previous_deals"] = p.PreviousDealsCount
		prefs["interested"] = p.InterestedInNIL
	}

	return scoring.ScoreInput{
		FactorSportAlignment: {
			"sport":     a.PrimarySport,
			"interests": agency.CampaignInterests,
		},
		FactorGeographicMatch: {
			"state":  a.ResolvedState(),
			"school": a.SchoolName,
			"focus":  agency.GeographicFocus,
		},
		FactorSchoolDivision: {"division": a.ResolvedDivision()},
		FactorFollowerCount: {
			"followers":  a.TotalFollowers(),
			"target_min": followerMin,
		},
		FactorEngagementRate: {
			"engagement": a.EngagementRate(),
			"target_min": engagementMin,
		},
		FactorAudienceDemographics: onboarded,
		FactorHobbyOverlap: {
			"hobbies":   a.Hobbies,
			"interests": interests,
		},
		FactorBrandAffinity: {
			"affinity":  a.BrandAffinity,
			"company":   agency.CompanyName,
			"interests": interests,
			"onboarded": a.OnboardingCompleted,
		},
		FactorPastNILSuccess: prefs,
		FactorContentQuality: {
			"content_samples": a.ContentSamples,
			"onboarded":       a.OnboardingCompleted,
		},
		FactorResponseRate: onboarded,
	}
}

// Result is a scored agency/athlete pair.
type Result struct {
	AgencyID   string                             `json:"agency_id"`
	AthleteID  string                             `json:"athlete_id"`
	Score      int                                `json:"match_score"`
	Tier       string                             `json:"match_tier"`
	Confidence string                             `json:"confidence"`
	Breakdown  map[string]scoring.DimensionResult `json:"score_breakdown"`
	Reasons    []string                           `json:"match_reasons"`
	Highlights []string                           `json:"highlights"`
}

// Matcher scores pairs. It is safe for concurrent use.
type Matcher struct {
	engine *scoring.Engine
}

func NewMatcher() (*Matcher, error) {
	engine, err := NewEngine()
	if err != nil {
		return nil, err
	}
	return &Matcher{engine: engine}, nil
}

func (m *Matcher) Score(agency Agency, athlete *Athlete) *Result {
	subject := agency.ID
	athleteID := ""
	if athlete != nil {
		athleteID = athlete.ID
		subject = agency.ID + ":" + athlete.ID
	}

	scored := m.engine.Score(subject, Input(agency, athlete))
	reasons := scored.Reasons
	if reasons == nil {
		reasons = []string{}
	}

	return &Result{
		AgencyID:   agency.ID,
		AthleteID:  athleteID,
		Score:      scored.TotalScore,
		Tier:       scored.Tier,
		Confidence: Confidence(scored.TotalScore),
		Breakdown:  scored.Dimensions,
		Reasons:    reasons,
		Highlights: Highlights(reasons, MaxHighlights),
	}
}

// Tier classifies a match score.
func Tier(score int) string {
	return tierClassifier.Classify(score)
}

func Confidence(score int) string {
	switch {
	case score >= 80:
		return ConfidenceHigh
	case score >= 60:
		return ConfidenceMedium
	}
	return ConfidenceLow
}

var knownTiers = map[string]string{
	scoring.TierExcellent: scoring.TierExcellent,
	scoring.TierGood:      scoring.TierGood,
	scoring.TierFair:      scoring.TierFair,
	scoring.TierLow:       scoring.TierLow,
	"strong":              scoring.TierGood,
	"potential":           scoring.TierFair,
	"poor":                scoring.TierLow,
}

// NormalizeTier maps a stored tier, including legacy names on old match rows,
// onto the current tier set. Unknown and empty tiers are low.
func NormalizeTier(tier string) string {
	if mapped, ok := knownTiers[strings.ToLower(strings.TrimSpace(tier))]; ok {
		return mapped
	}
	return scoring.TierLow
}

// Highlights returns the first n reasons.
func Highlights(reasons []string, n int) []string {
	if n < 0 {
		n = 0
	}
	out := make([]string, 0, n)
	for i := 0; i < len(reasons) && i < n; i++ {
		out = append(out, reasons[i])
	}
	return out
}
