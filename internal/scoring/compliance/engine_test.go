// internal/scoring/compliance/engine_test.go
package compliance

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatnil-workers/internal/scoring"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestEngine(t *testing.T) *scoring.Engine {
	t.Helper()
	engine, err := NewEngine(nil)
	require.NoError(t, err)
	return engine
}

func createTestScorer(t *testing.T, seed int64) *Scorer {
	t.Helper()
	mock := scoring.NewMockGenerator(rand.New(rand.NewSource(seed)), scoring.DefaultMockVariance)
	return NewScorer(createTestEngine(t), mock)
}

func createCleanInput() Input {
	return Input{
		DealID:    "deal-clean",
		AthleteID: "athlete-1",
		DealValue: 300,
		PolicyFit: &PolicyFitInputs{
			HasSchoolApproval:    true,
			HasDisclosure:        true,
			IsThirdPartyVerified: true,
			PaymentSource:        PaymentBrand,
			Deliverables:         []string{"2 instagram posts"},
		},
		Documents: &DocumentInputs{HasContract: true, HasW9: true, HasDisclosureForm: true},
		FMV: &FMVInputs{
			AthleteFMVScore: 50,
			SocialFollowers: 10000,
			EngagementRate:  3,
			MarketSize:      "medium",
		},
		Tax: &TaxInputs{
			HasW9Submitted:            true,
			UnderstandsTaxObligations: true,
			Has1099Ready:              true,
			HasTaxProfessional:        true,
		},
		BrandSafety:     &BrandSafetyInputs{BrandCategory: "apparel"},
		GuardianConsent: &GuardianConsentInputs{AthleteAge: 20},
	}
}

func createPayForPlayInput() Input {
	return Input{
		DealID:    "deal-booster",
		AthleteID: "athlete-1",
		PolicyFit: &PolicyFitInputs{
			PaymentSource:            PaymentBooster,
			PaymentTiedToPerformance: true,
		},
		FMV: &FMVInputs{
			DealValue:       10000,
			AthleteFMVScore: 50,
			SocialFollowers: 10000,
			EngagementRate:  3,
			MarketSize:      "medium",
		},
	}
}

func intPtr(v int) *int { return &v }

// ==========================
// Configuration Tests
// ==========================

func TestNewEngine_WeightOverrides(t *testing.T) {
	_, err := NewEngine(scoring.WeightTable{
		DimensionPolicyFit:       0.25,
		DimensionDocumentHygiene: 0.25,
		DimensionFMVVerification: 0.15,
		DimensionTaxReadiness:    0.15,
		DimensionBrandSafety:     0.10,
		DimensionGuardianConsent: 0.10,
	})
	assert.NoError(t, err)

	_, err = NewEngine(scoring.WeightTable{DimensionPolicyFit: 1.0})
	assert.Error(t, err, "table missing dimensions must be rejected")

	_, err = NewEngine(scoring.WeightTable{
		DimensionPolicyFit:       0.30,
		DimensionDocumentHygiene: 0.30,
		DimensionFMVVerification: 0.15,
		DimensionTaxReadiness:    0.15,
		DimensionBrandSafety:     0.10,
		DimensionGuardianConsent: 0.10,
	})
	assert.Error(t, err)
}

// ==========================
// Core Functionality Tests
// ==========================

func TestEngine_DashboardExample(t *testing.T) {
	engine := createTestEngine(t)

	result := engine.FromScores("deal-9", map[string]int{
		DimensionPolicyFit:       85,
		DimensionDocumentHygiene: 60,
		DimensionFMVVerification: 90,
		DimensionTaxReadiness:    40,
		DimensionBrandSafety:     95,
		DimensionGuardianConsent: 70,
	})

	assert.Equal(t, 74, result.TotalScore)
	assert.Equal(t, scoring.StatusAttentionNeeded, result.Tier)
	require.Len(t, result.Issues, 2)

	docs := result.Issues[0]
	assert.Equal(t, "deal-9-docs-2", docs.ID)
	assert.Equal(t, DimensionDocumentHygiene, docs.Dimension)
	assert.Equal(t, scoring.SeverityWarning, docs.Severity)
	assert.Equal(t, "Contract incomplete", docs.Title)
	assert.Equal(t, "Review Contract", docs.ActionLabel)

	tax := result.Issues[1]
	assert.Equal(t, "deal-9-tax-1", tax.ID)
	assert.Equal(t, scoring.StatusCritical, result.Dimensions[DimensionTaxReadiness].Status)
	assert.Equal(t, scoring.SeverityWarning, tax.Severity)
}

func TestScorer_Score_CleanDeal(t *testing.T) {
	scorer := createTestScorer(t, 1)

	result := scorer.Score(createCleanInput())

	assert.Equal(t, 100, result.TotalScore)
	assert.Equal(t, scoring.StatusProtected, result.Tier)
	assert.Empty(t, result.Issues)
	assert.Empty(t, result.Reasons)
	for _, name := range DimensionOrder {
		assert.Equal(t, 100, result.Dimensions[name].Score, name)
	}
}

func TestScorer_Score_PayForPlay(t *testing.T) {
	scorer := createTestScorer(t, 1)

	result := scorer.Score(createPayForPlayInput())

	assert.Equal(t, 0, result.Dimensions[DimensionPolicyFit].Score)
	assert.Equal(t, 20, result.Dimensions[DimensionFMVVerification].Score)
	assert.Equal(t, scoring.DefaultNeutralScore, result.Dimensions[DimensionTaxReadiness].Score)
	assert.Equal(t, 31, result.TotalScore)
	assert.Equal(t, scoring.StatusAtRisk, result.Tier)

	assert.Contains(t, result.Reasons, ReasonPayForPlay)
	assert.Contains(t, result.Reasons, ReasonBoosterPayment)
	assert.Contains(t, result.Reasons, ReasonExtremeOverpayment)

	ids := make([]string, 0, len(result.Issues))
	for _, issue := range result.Issues {
		ids = append(ids, issue.ID)
	}
	assert.Equal(t, []string{"deal-booster-policy-1", "deal-booster-docs-2", "deal-booster-fmv-1"}, ids)
}

func TestOverallStatus(t *testing.T) {
	assert.Equal(t, scoring.StatusProtected, OverallStatus(80))
	assert.Equal(t, scoring.StatusAttentionNeeded, OverallStatus(79))
	assert.Equal(t, scoring.StatusAttentionNeeded, OverallStatus(50))
	assert.Equal(t, scoring.StatusAtRisk, OverallStatus(49))
}

// ==========================
// Dashboard Tests
// ==========================

func TestScorer_Summarize(t *testing.T) {
	scorer := createTestScorer(t, 42)
	payForPlay := createPayForPlayInput()

	summary := scorer.Summarize([]Deal{
		{ID: "d-45", Value: 500, StoredScore: intPtr(45)},
		{ID: "d-70", Value: 1000, StoredScore: intPtr(70)},
		{ID: "d-90", Value: 250, StoredScore: intPtr(90)},
		{ID: "d-live", Value: 10000, Input: &payForPlay},
		{ID: "d-new", Value: 50},
	})

	require.Len(t, summary.Deals, 5)
	assert.Equal(t, 85, summary.Deals[4].OverallScore)
	assert.Equal(t, 64, summary.OverallScore)
	assert.Equal(t, scoring.StatusAttentionNeeded, summary.OverallStatus)
	assert.Equal(t, 11800.0, summary.TotalEarnings)
	assert.Equal(t, 2, summary.ProtectedCount)

	ids := make([]string, 0, len(summary.DealsNeedingAttention))
	for _, d := range summary.DealsNeedingAttention {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []string{"d-live", "d-45", "d-70"}, ids)
}

func TestScorer_Summarize_NoDeals(t *testing.T) {
	summary := createTestScorer(t, 1).Summarize(nil)

	assert.Equal(t, 100, summary.OverallScore)
	assert.Equal(t, scoring.StatusProtected, summary.OverallStatus)
	assert.Empty(t, summary.DealsNeedingAttention)
	assert.NotNil(t, summary.Deals)
}

func TestScorer_ScoreDeal_MockIsSeeded(t *testing.T) {
	deal := Deal{ID: "d", StoredScore: intPtr(72)}

	a := createTestScorer(t, 7).ScoreDeal(deal)
	b := createTestScorer(t, 7).ScoreDeal(deal)

	assert.Equal(t, a, b)
	assert.Equal(t, 72, a.OverallScore)
	for _, name := range DimensionOrder {
		center := 72 + MockOffsets[name]
		score := a.Dimensions[name].Score
		assert.GreaterOrEqual(t, score, scoring.Clamp(center-scoring.DefaultMockVariance, 0, 100), name)
		assert.LessOrEqual(t, score, scoring.Clamp(center+scoring.DefaultMockVariance, 0, 100), name)
	}
}
