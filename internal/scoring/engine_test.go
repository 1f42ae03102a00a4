// internal/scoring/engine_test.go
package scoring

import (
	"math"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

var dealDimensionOrder = []string{"policyFit", "documentHygiene", "fmvVerification", "taxReadiness", "brandSafety", "guardianConsent"}

func fixedEvaluator(score float64, reasons ...string) Evaluator {
	return func(Features) Evaluation {
		return Evaluation{Score: score, Reasons: reasons}
	}
}

// scoreFromFeatures reads "score" straight from the bundle.
func scoreFromFeatures(f Features) Evaluation {
	return Evaluation{Score: f.Float("score")}
}

func createTestConfig() Config {
	weights := []float64{0.30, 0.20, 0.15, 0.15, 0.10, 0.10}
	dims := make([]Dimension, 0, len(dealDimensionOrder))
	for i, name := range dealDimensionOrder {
		dims = append(dims, Dimension{Name: name, Weight: weights[i], Evaluate: scoreFromFeatures})
	}
	return Config{
		Name:       "test",
		Dimensions: dims,
		Tiers:      MustClassifier(ProtectionStatusBands...),
		Issues: IssueTemplates{
			"documentHygiene": {
				StatusWarning: {Key: "docs-2", Title: "Contract incomplete"},
			},
			"taxReadiness": {
				StatusCritical: {Key: "tax-1", Title: "W-9 not submitted"},
			},
		},
		Overrides: SeverityOverrides{
			"taxReadiness": {StatusCritical: SeverityWarning},
		},
	}
}

func createTestEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := NewEngine(createTestConfig())
	require.NoError(t, err)
	return engine
}

func scoresInput(scores map[string]int) ScoreInput {
	in := ScoreInput{}
	for name, s := range scores {
		in[name] = Features{"score": s}
	}
	return in
}

// ==========================
// Configuration Tests
// ==========================

func TestNewEngine_RejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{
			name:   "no dimensions",
			mutate: func(c *Config) { c.Dimensions = nil },
		},
		{
			name:   "missing tiers",
			mutate: func(c *Config) { c.Tiers = nil },
		},
		{
			name:   "weights do not sum to one",
			mutate: func(c *Config) { c.Dimensions[0].Weight = 0.40 },
		},
		{
			name:   "zero weight",
			mutate: func(c *Config) { c.Dimensions[5].Weight = 0; c.Dimensions[4].Weight = 0.20 },
		},
		{
			name:   "duplicate dimension",
			mutate: func(c *Config) { c.Dimensions[1].Name = c.Dimensions[0].Name },
		},
		{
			name:   "nil evaluator",
			mutate: func(c *Config) { c.Dimensions[2].Evaluate = nil },
		},
		{
			name: "templates for unknown dimension",
			mutate: func(c *Config) {
				c.Issues["unknown"] = map[string]IssueTemplate{StatusCritical: {Key: "x"}}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := createTestConfig()
			tt.mutate(&cfg)
			_, err := NewEngine(cfg)
			assert.Error(t, err)
		})
	}
}

func TestNewEngine_DescribesConfiguration(t *testing.T) {
	engine := createTestEngine(t)

	assert.Equal(t, "test", engine.Name())
	assert.Equal(t, dealDimensionOrder, engine.DimensionNames())
	assert.Len(t, engine.Weights(), len(dealDimensionOrder))
}

func TestNewEngine_AcceptsWeightsWithinEpsilon(t *testing.T) {
	cfg := createTestConfig()
	cfg.Dimensions[0].Weight = 0.3005
	_, err := NewEngine(cfg)
	assert.NoError(t, err)
}

// ==========================
// Core Functionality Tests
// ==========================

func TestEngine_Score_DealExample(t *testing.T) {
	engine := createTestEngine(t)

	result := engine.Score("deal-1", scoresInput(map[string]int{
		"policyFit":       85,
		"documentHygiene": 60,
		"fmvVerification": 90,
		"taxReadiness":    40,
		"brandSafety":     95,
		"guardianConsent": 70,
	}))

	// 25.5 + 12 + 13.5 + 6 + 9.5 + 7 = 73.5
	assert.Equal(t, 74, result.TotalScore)
	assert.Equal(t, StatusAttentionNeeded, result.Tier)
	assert.Equal(t, dealDimensionOrder, result.Order)

	assert.Equal(t, StatusGood, result.Dimensions["policyFit"].Status)
	assert.Equal(t, StatusWarning, result.Dimensions["documentHygiene"].Status)
	assert.Equal(t, StatusCritical, result.Dimensions["taxReadiness"].Status)
	assert.Equal(t, 0.30, result.Dimensions["policyFit"].Weight)

	require.Len(t, result.Issues, 2)
	assert.Equal(t, "deal-1-docs-2", result.Issues[0].ID)
	assert.Equal(t, SeverityWarning, result.Issues[0].Severity)
	assert.Equal(t, "deal-1-tax-1", result.Issues[1].ID)
	assert.Equal(t, SeverityWarning, result.Issues[1].Severity, "override downgrades critical tax issue")
}

func TestEngine_Score_EmptyBundleIsNeutral(t *testing.T) {
	engine := createTestEngine(t)

	result := engine.Score("s", ScoreInput{})

	for _, name := range dealDimensionOrder {
		assert.Equal(t, DefaultNeutralScore, result.Dimensions[name].Score, name)
		assert.Equal(t, StatusWarning, result.Dimensions[name].Status, name)
	}
	assert.Equal(t, 50, result.TotalScore)
	assert.Equal(t, StatusAttentionNeeded, result.Tier)
}

func TestEngine_Score_ClampsEvaluatorOutput(t *testing.T) {
	cfg := createTestConfig()
	cfg.Dimensions[0].Evaluate = fixedEvaluator(250)
	cfg.Dimensions[1].Evaluate = fixedEvaluator(-40)
	engine, err := NewEngine(cfg)
	require.NoError(t, err)

	in := scoresInput(map[string]int{"policyFit": 1, "documentHygiene": 1})
	result := engine.Score("s", in)

	assert.Equal(t, 100, result.Dimensions["policyFit"].Score)
	assert.Equal(t, 0, result.Dimensions["documentHygiene"].Score)
}

func TestEngine_Score_PanickingOrNaNEvaluatorIsNeutral(t *testing.T) {
	cfg := createTestConfig()
	cfg.Dimensions[0].Evaluate = func(Features) Evaluation { panic("boom") }
	cfg.Dimensions[1].Evaluate = fixedEvaluator(math.NaN())
	engine, err := NewEngine(cfg)
	require.NoError(t, err)

	result := engine.Score("s", scoresInput(map[string]int{"policyFit": 99, "documentHygiene": 99}))

	assert.Equal(t, DefaultNeutralScore, result.Dimensions["policyFit"].Score)
	assert.Equal(t, DefaultNeutralScore, result.Dimensions["documentHygiene"].Score)
}

func TestEngine_Score_CollectsReasonsInOrder(t *testing.T) {
	cfg := createTestConfig()
	cfg.Dimensions[0].Evaluate = fixedEvaluator(40, "PAY_FOR_PLAY")
	cfg.Dimensions[3].Evaluate = fixedEvaluator(60, "W9_MISSING")
	engine, err := NewEngine(cfg)
	require.NoError(t, err)

	in := scoresInput(map[string]int{"policyFit": 1, "taxReadiness": 1})
	result := engine.Score("s", in)

	assert.Equal(t, []string{"PAY_FOR_PLAY", "W9_MISSING"}, result.Reasons)
	assert.Equal(t, []string{"PAY_FOR_PLAY"}, result.Dimensions["policyFit"].Reasons)
}

func TestEngine_FromScores_MatchesScore(t *testing.T) {
	engine := createTestEngine(t)
	scores := map[string]int{
		"policyFit":       85,
		"documentHygiene": 60,
		"fmvVerification": 90,
		"taxReadiness":    40,
		"brandSafety":     95,
		"guardianConsent": 70,
	}

	a := engine.Score("deal-1", scoresInput(scores))
	b := engine.FromScores("deal-1", scores)

	assert.Equal(t, a.TotalScore, b.TotalScore)
	assert.Equal(t, a.Tier, b.Tier)
	assert.Equal(t, a.Issues, b.Issues)
}

func TestEngine_Score_Idempotent(t *testing.T) {
	engine := createTestEngine(t)
	in := scoresInput(map[string]int{"policyFit": 77, "brandSafety": 12})

	first := engine.Score("s", in)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, engine.Score("s", in))
	}
}

func TestEngine_Score_Concurrent(t *testing.T) {
	engine := createTestEngine(t)
	in := scoresInput(map[string]int{"policyFit": 81, "taxReadiness": 33})
	want := engine.Score("s", in).TotalScore

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, want, engine.Score("s", in).TotalScore)
		}()
	}
	wg.Wait()
}

func TestEngine_Score_TotalAlwaysInRange(t *testing.T) {
	engine := createTestEngine(t)
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 500; i++ {
		scores := map[string]int{}
		for _, name := range dealDimensionOrder {
			scores[name] = rng.Intn(141) - 20
		}
		result := engine.FromScores("s", scores)
		assert.GreaterOrEqual(t, result.TotalScore, 0)
		assert.LessOrEqual(t, result.TotalScore, 100)
		assert.Contains(t, engine.tiers.labels(), result.Tier)
	}
}

// ==========================
// Helper Function Tests
// ==========================

func TestRoundHalfUp(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{73.5, 74},
		{73.49, 73},
		{0.5, 1},
		{99.5, 100},
		{25.5 + 12 + 13.5 + 6 + 9.5 + 7, 74},
		{0, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, RoundHalfUp(tt.in), "RoundHalfUp(%v)", tt.in)
	}
}

func TestAggregate(t *testing.T) {
	results := map[string]DimensionResult{
		"a": {Score: 100, Weight: 0.5},
		"b": {Score: 51, Weight: 0.5},
	}
	assert.Equal(t, 76, Aggregate(results))
	assert.Equal(t, 0, Aggregate(nil))
}

func TestMockGenerator_Seeded(t *testing.T) {
	offsets := map[string]int{"policyFit": 5, "documentHygiene": -10, "brandSafety": 10}

	a := NewMockGenerator(rand.New(rand.NewSource(42)), DefaultMockVariance).Scores(70, offsets, dealDimensionOrder)
	b := NewMockGenerator(rand.New(rand.NewSource(42)), DefaultMockVariance).Scores(70, offsets, dealDimensionOrder)

	assert.Equal(t, a, b)
	require.Len(t, a, len(dealDimensionOrder))
	for _, name := range dealDimensionOrder {
		center := 70 + offsets[name]
		assert.GreaterOrEqual(t, a[name], center-DefaultMockVariance, name)
		assert.LessOrEqual(t, a[name], center+DefaultMockVariance, name)
	}
}

func TestMockGenerator_Clamps(t *testing.T) {
	gen := NewMockGenerator(rand.New(rand.NewSource(1)), 0)

	scores := gen.Scores(95, map[string]int{"high": 15, "low": -200}, []string{"high", "low"})

	assert.Equal(t, 100, scores["high"])
	assert.Equal(t, 0, scores["low"])
}
