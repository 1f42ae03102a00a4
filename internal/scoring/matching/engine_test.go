// internal/scoring/matching/engine_test.go
package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatnil-workers/internal/scoring"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestMatcher(t *testing.T) *Matcher {
	t.Helper()
	m, err := NewMatcher()
	require.NoError(t, err)
	return m
}

func createTestAgency() Agency {
	return Agency{
		ID:                 "agency-1",
		CompanyName:        "Nike",
		CampaignInterests:  []string{"basketball", "fitness"},
		GeographicFocus:    []string{"KY"},
		BrandValues:        []string{"sneakers"},
		TargetDemographics: &TargetDemographics{FollowerMin: 5000, EngagementMin: 3},
	}
}

func createTestAthlete() *Athlete {
	return &Athlete{
		ID:           "athlete-1",
		PrimarySport: "basketball",
		SchoolName:   "University of Kentucky",
		SocialStats: map[string]SocialStat{
			"instagram": {Followers: 12000, EngagementRate: 4.5},
			"tiktok":    {Followers: 8000, EngagementRate: 3.5},
		},
		Hobbies:             []string{"Fitness", "gaming"},
		BrandAffinity:       []string{"Nike"},
		ContentSamples:      4,
		OnboardingCompleted: true,
		NILPreferences:      &NILPreferences{PreviousDealsCount: 2},
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestMatcher_Score_StrongFit(t *testing.T) {
	m := createTestMatcher(t)

	result := m.Score(createTestAgency(), createTestAthlete())

	assert.Equal(t, "agency-1", result.AgencyID)
	assert.Equal(t, "athlete-1", result.AthleteID)
	assert.Equal(t, 83, result.Score)
	assert.Equal(t, scoring.TierExcellent, result.Tier)
	assert.Equal(t, ConfidenceHigh, result.Confidence)

	assert.Equal(t, 100, result.Breakdown[FactorSportAlignment].Score)
	assert.Equal(t, 69, result.Breakdown[FactorEngagementRate].Score)
	assert.Equal(t, 33, result.Breakdown[FactorHobbyOverlap].Score)
	assert.Equal(t, 80, result.Breakdown[FactorResponseRate].Score)
	assert.InDelta(t, 0.15, result.Breakdown[FactorHobbyOverlap].Weight, 1e-9)

	assert.Equal(t, []string{
		"basketball athlete matches campaign focus",
		"Located in target region (KY)",
		"Division 1 athlete",
		"20.0K followers",
		"4.0% engagement rate",
		"Shared interests: Fitness",
		"Already follows Nike",
		"2 previous NIL deals",
		"4 content samples available",
	}, result.Reasons)
	assert.Equal(t, result.Reasons[:MaxHighlights], result.Highlights)
}

func TestMatcher_Score_SparseProfiles(t *testing.T) {
	m := createTestMatcher(t)

	result := m.Score(Agency{ID: "agency-2"}, &Athlete{ID: "athlete-2"})

	assert.Equal(t, 19, result.Score)
	assert.Equal(t, scoring.TierLow, result.Tier)
	assert.Equal(t, ConfidenceLow, result.Confidence)
	assert.Empty(t, result.Reasons)
	assert.NotNil(t, result.Reasons)
	assert.Empty(t, result.Highlights)
}

func TestMatcher_Score_NilAthleteIsNeutral(t *testing.T) {
	m := createTestMatcher(t)

	result := m.Score(createTestAgency(), nil)

	assert.Equal(t, 50, result.Score)
	assert.Equal(t, scoring.TierFair, result.Tier)
	assert.Empty(t, result.AthleteID)
	for _, name := range FactorNames() {
		assert.Equal(t, scoring.DefaultNeutralScore, result.Breakdown[name].Score, name)
	}
}

func TestMatcher_Score_Deterministic(t *testing.T) {
	m := createTestMatcher(t)
	agency, athlete := createTestAgency(), createTestAthlete()

	assert.Equal(t, m.Score(agency, athlete), m.Score(agency, athlete))
}

// ==========================
// Factor Tests
// ==========================

func TestFollowerCount(t *testing.T) {
	tests := []struct {
		name        string
		features    scoring.Features
		wantPoints  float64
		wantReasons int
	}{
		{"double target", scoring.Features{"followers": 10000, "target_min": 5000}, 10, 1},
		{"half again target", scoring.Features{"followers": 7500, "target_min": 5000}, 7.5, 1},
		{"below explicit target", scoring.Features{"followers": 2500, "target_min": 5000}, 2.5, 0},
		{"below default target", scoring.Features{"followers": 600, "target_min": 0}, 4.8, 1},
		{"tiny below default target", scoring.Features{"followers": 100, "target_min": 0}, 0.8, 0},
		{"no followers", scoring.Features{"followers": 0}, 2, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			points, reasons := followerCount(tt.features)
			assert.InDelta(t, tt.wantPoints, points, 1e-9)
			assert.Len(t, reasons, tt.wantReasons)
		})
	}
}

func TestEngagementRate(t *testing.T) {
	points, _ := engagementRate(scoring.Features{"engagement": 4.0, "target_min": 0})
	assert.InDelta(t, 15, points, 1e-9)

	points, _ = engagementRate(scoring.Features{"engagement": 1.0, "target_min": 4.0})
	assert.InDelta(t, 1.75, points, 1e-9)

	points, _ = engagementRate(scoring.Features{"engagement": 0})
	assert.InDelta(t, 3, points, 1e-9)
}

func TestHobbyOverlap(t *testing.T) {
	points, reasons := hobbyOverlap(scoring.Features{"hobbies": []string{"golf", "music", "art", "chess"}})
	assert.InDelta(t, 10, points, 1e-9)
	assert.Equal(t, []string{"Active interests: golf, music, art"}, reasons)

	points, _ = hobbyOverlap(scoring.Features{"hobbies": []string{"golf"}, "interests": []string{"outdoor"}})
	assert.InDelta(t, 4, points, 1e-9)

	points, _ = hobbyOverlap(scoring.Features{"hobbies": []string{}, "interests": []string{"outdoor"}})
	assert.InDelta(t, 0, points, 1e-9)
}

func TestBrandAffinity(t *testing.T) {
	points, _ := brandAffinity(scoring.Features{"affinity": []string{"Under Armour Sneakers"}, "company": "Nike", "interests": []string{"sneakers"}})
	assert.InDelta(t, 6, points, 1e-9)

	points, _ = brandAffinity(scoring.Features{"affinity": []string{"Adidas"}, "company": "Nike"})
	assert.InDelta(t, 4, points, 1e-9)

	points, _ = brandAffinity(scoring.Features{"onboarded": true})
	assert.InDelta(t, 3, points, 1e-9)
}

func TestPastNILSuccess(t *testing.T) {
	points, reasons := pastNILSuccess(scoring.Features{"has_preferences": true, "interested": true})
	assert.InDelta(t, 6, points, 1e-9)
	assert.Equal(t, []string{"Actively seeking NIL opportunities"}, reasons)

	points, reasons = pastNILSuccess(scoring.Features{"has_preferences": false, "onboarded": true})
	assert.InDelta(t, 5, points, 1e-9)
	assert.Equal(t, []string{"Verified athlete on platform"}, reasons)
}

// ==========================
// Helper Function Tests
// ==========================

func TestTierAndConfidence(t *testing.T) {
	assert.Equal(t, scoring.TierExcellent, Tier(80))
	assert.Equal(t, scoring.TierGood, Tier(79))
	assert.Equal(t, scoring.TierFair, Tier(40))
	assert.Equal(t, scoring.TierLow, Tier(39))

	assert.Equal(t, ConfidenceHigh, Confidence(80))
	assert.Equal(t, ConfidenceMedium, Confidence(60))
	assert.Equal(t, ConfidenceLow, Confidence(59))
}

func TestNormalizeTier(t *testing.T) {
	tests := []struct {
		name     string
		tier     string
		expected string
	}{
		{name: "current excellent", tier: "excellent", expected: scoring.TierExcellent},
		{name: "current good", tier: "good", expected: scoring.TierGood},
		{name: "current fair", tier: "fair", expected: scoring.TierFair},
		{name: "current low", tier: "low", expected: scoring.TierLow},
		{name: "legacy strong", tier: "strong", expected: scoring.TierGood},
		{name: "legacy potential with case and spaces", tier: " Potential ", expected: scoring.TierFair},
		{name: "legacy poor", tier: "poor", expected: scoring.TierLow},
		{name: "unknown tier", tier: "platinum", expected: scoring.TierLow},
		{name: "empty tier", tier: "", expected: scoring.TierLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeTier(tt.tier))
		})
	}
}

func TestHighlights(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, Highlights([]string{"a", "b", "c"}, 2))
	assert.Equal(t, []string{"a"}, Highlights([]string{"a"}, 5))
	assert.Empty(t, Highlights(nil, 5))
}

func TestAthlete_ResolvedState(t *testing.T) {
	assert.Equal(t, "KY", (&Athlete{SchoolName: "University of Louisville"}).ResolvedState())
	assert.Equal(t, "MO", (&Athlete{SchoolName: "Springfield Prep, MO"}).ResolvedState())
	assert.Equal(t, "TX", (&Athlete{State: "tx", SchoolName: "University of Kentucky"}).ResolvedState())
	assert.Equal(t, "", (&Athlete{SchoolName: "springfield prep"}).ResolvedState())
}

func TestAthlete_ResolvedDivision(t *testing.T) {
	assert.Equal(t, "D1", (&Athlete{SchoolName: "Georgia Tech"}).ResolvedDivision())
	assert.Equal(t, "D2", (&Athlete{Division: "Division II", SchoolName: "University of Somewhere"}).ResolvedDivision())
	assert.Equal(t, "Unknown", (&Athlete{SchoolName: "Springfield Prep"}).ResolvedDivision())
}
