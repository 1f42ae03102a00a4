// internal/workers/compliance/score-deal/handler_test.go
package scoredeal

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"chatnil-workers/internal/common/config"
	apperrors "chatnil-workers/internal/common/errors"
	"chatnil-workers/internal/common/logger"
	"chatnil-workers/internal/scoring"
	"chatnil-workers/internal/scoring/compliance"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

var testNow = time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)

func createTestConfig() *Config {
	return LoadConfig()
}

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func newTestHandler(t *testing.T, cfg *Config, repo Repository) *Handler {
	h, err := NewHandler(cfg, repo, logger.NewTestLogger(t))
	require.NoError(t, err)
	h.now = func() time.Time { return testNow }
	return h
}

const cleanDeal = `{
	"dealId": "deal-clean",
	"athleteId": "athlete-1",
	"dealValue": 300,
	"policyFitInputs": {
		"hasSchoolApproval": true, "hasDisclosure": true, "isThirdPartyVerified": true,
		"paymentSource": "brand", "deliverables": ["2 instagram posts"]
	},
	"documentInputs": {"hasContract": true, "hasW9": true, "hasDisclosureForm": true},
	"fmvInputs": {"athleteFMVScore": 50, "socialFollowers": 10000, "engagementRate": 3, "marketSize": "medium"},
	"taxInputs": {"hasW9Submitted": true, "understandsTaxObligations": true, "has1099Ready": true, "hasTaxProfessional": true},
	"brandSafetyInputs": {"brandCategory": "apparel"},
	"guardianConsentInputs": {"athleteAge": 20}
}`

const boosterDeal = `{
	"dealId": "deal-booster",
	"athleteId": "athlete-1",
	"policyFitInputs": {"paymentSource": "booster", "paymentTiedToPerformance": true},
	"fmvInputs": {"dealValue": 10000, "athleteFMVScore": 50, "socialFollowers": 10000, "engagementRate": 3, "marketSize": "medium"}
}`

type fakeRepo struct {
	saved     []*Output
	statuses  map[string]string
	saveErr   error
	statusErr error
}

func (f *fakeRepo) SaveScore(_ context.Context, out *Output) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, out)
	return nil
}

func (f *fakeRepo) UpdateDealStatus(_ context.Context, dealID, status string) error {
	if f.statusErr != nil {
		return f.statusErr
	}
	if f.statuses == nil {
		f.statuses = map[string]string{}
	}
	f.statuses[dealID] = status
	return nil
}

// ==========================
// Execute
// ==========================

func TestHandler_Execute(t *testing.T) {
	tests := []struct {
		name           string
		variables      string
		validateOutput func(t *testing.T, out *Output)
	}{
		{
			name:      "clean deal is protected",
			variables: cleanDeal,
			validateOutput: func(t *testing.T, out *Output) {
				assert.Equal(t, 100, out.TotalScore)
				assert.Equal(t, scoring.StatusProtected, out.Status)
				assert.Empty(t, out.Issues)
				assert.NotNil(t, out.ReasonCodes)
				assert.Empty(t, out.ReasonCodes)
			},
		},
		{
			name:      "booster pay for play is at risk",
			variables: boosterDeal,
			validateOutput: func(t *testing.T, out *Output) {
				assert.Equal(t, 31, out.TotalScore)
				assert.Equal(t, scoring.StatusAtRisk, out.Status)
				assert.Contains(t, out.ReasonCodes, compliance.ReasonPayForPlay)
				assert.Contains(t, out.ReasonCodes, compliance.ReasonBoosterPayment)
				assert.Contains(t, out.ReasonCodes, compliance.ReasonExtremeOverpayment)
				require.NotEmpty(t, out.Issues)
				assert.Equal(t, "deal-booster-policy-1", out.Issues[0].ID)
			},
		},
		{
			name:      "deal with no sections scores neutral",
			variables: `{"dealId":"deal-empty","athleteId":"athlete-1"}`,
			validateOutput: func(t *testing.T, out *Output) {
				assert.Equal(t, scoring.DefaultNeutralScore, out.TotalScore)
				assert.Equal(t, scoring.StatusAttentionNeeded, out.Status)
				assert.Equal(t, compliance.DimensionOrder, out.Order)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeRepo{}
			h := newTestHandler(t, createTestConfig(), repo)

			out, err := h.Execute(context.Background(), tt.variables)
			require.NoError(t, err)
			assert.True(t, out.Persisted)
			assert.Equal(t, testNow, out.ScoredAt)
			require.Len(t, repo.saved, 1)
			assert.Equal(t, out.Status, repo.statuses[out.DealID])
			tt.validateOutput(t, out)
		})
	}
}

func TestHandler_Execute_InvalidInput(t *testing.T) {
	tests := []struct {
		name      string
		variables string
	}{
		{name: "missing deal id", variables: `{"athleteId":"a1"}`},
		{name: "empty athlete id", variables: `{"dealId":"d1","athleteId":""}`},
		{name: "negative value", variables: `{"dealId":"d1","athleteId":"a1","dealValue":-5}`},
		{name: "section is not an object", variables: `{"dealId":"d1","athleteId":"a1","taxInputs":true}`},
	}

	h := newTestHandler(t, createTestConfig(), nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.Execute(context.Background(), tt.variables)
			require.Error(t, err)
			assert.Equal(t, apperrors.ErrCodeInvalidInput, apperrors.Normalize(err).Code)
		})
	}
}

func TestHandler_Execute_SaveFailureIsRetryable(t *testing.T) {
	h := newTestHandler(t, createTestConfig(), &fakeRepo{saveErr: errors.New("connection refused")})

	_, err := h.Execute(context.Background(), cleanDeal)
	require.Error(t, err)
	std := apperrors.Normalize(err)
	assert.Equal(t, apperrors.ErrCodeDatabaseInsertFailed, std.Code)
	assert.True(t, std.Retryable)
}

func TestHandler_Execute_StatusUpdateFailureIsNotFatal(t *testing.T) {
	repo := &fakeRepo{statusErr: sql.ErrNoRows}
	h := newTestHandler(t, createTestConfig(), repo)

	out, err := h.Execute(context.Background(), cleanDeal)
	require.NoError(t, err)
	assert.True(t, out.Persisted)
	assert.Len(t, repo.saved, 1)
}

func TestHandler_Execute_WithPostgres(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectExec(`INSERT INTO compliance_scores`).
		WithArgs("deal-booster", "athlete-1", 0, sqlmock.AnyArg(), 20, 50, sqlmock.AnyArg(), sqlmock.AnyArg(),
			31, scoring.StatusAtRisk, sqlmock.AnyArg(), sqlmock.AnyArg(), testNow).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE nil_deals SET compliance_status`).
		WithArgs(scoring.StatusAtRisk, "deal-booster").
		WillReturnResult(sqlmock.NewResult(0, 1))

	h := newTestHandler(t, createTestConfig(), NewPostgresRepository(db))
	out, err := h.Execute(context.Background(), boosterDeal)
	require.NoError(t, err)
	assert.True(t, out.Persisted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_UpdateDealStatus_UnknownDeal(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectExec(`UPDATE nil_deals`).WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewPostgresRepository(db).UpdateDealStatus(context.Background(), "missing", scoring.StatusProtected)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

// ==========================
// Weights
// ==========================

func TestResolveWeights(t *testing.T) {
	weights, err := ResolveWeights(nil)
	require.NoError(t, err)
	assert.Equal(t, compliance.DefaultWeights, weights)

	weights, err = ResolveWeights(map[string]float64{
		"policyfit":        0.25,
		"documenthygiene":  0.25,
		"FMVVERIFICATION":  0.15,
		"tax_readiness":    0.15,
		"brandSafety":      0.10,
		"guardian_consent": 0.10,
	})
	require.NoError(t, err)
	assert.Equal(t, 0.25, weights[compliance.DimensionPolicyFit])
	assert.Equal(t, 0.15, weights[compliance.DimensionTaxReadiness])
	assert.Equal(t, 0.10, weights[compliance.DimensionGuardianConsent])

	_, err = ResolveWeights(map[string]float64{"vibes": 1})
	assert.Error(t, err)

	_, err = ResolveWeights(map[string]float64{"policyfit": 0.5, "policy_fit": 0.5})
	assert.Error(t, err)
}

func TestNewHandler_InvalidWeights(t *testing.T) {
	tests := []struct {
		name    string
		weights map[string]float64
	}{
		{name: "unknown dimension", weights: map[string]float64{"vibes": 1}},
		{name: "missing dimensions", weights: map[string]float64{"policyfit": 1}},
		{
			name: "does not sum to one",
			weights: map[string]float64{
				"policyfit": 0.3, "documenthygiene": 0.3, "fmvverification": 0.15,
				"taxreadiness": 0.15, "brandsafety": 0.1, "guardianconsent": 0.1,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := createTestConfig()
			cfg.Weights = tt.weights
			_, err := NewHandler(cfg, nil, logger.NewTestLogger(t))
			require.Error(t, err)
			assert.Equal(t, apperrors.ErrCodeEngineConfigInvalid, apperrors.Normalize(err).Code)
		})
	}
}

func TestHandler_CustomWeightsChangeTotal(t *testing.T) {
	cfg := createTestConfig()
	cfg.Weights = map[string]float64{
		"policyfit": 0.5, "documenthygiene": 0.1, "fmvverification": 0.1,
		"taxreadiness": 0.1, "brandsafety": 0.1, "guardianconsent": 0.1,
	}
	h := newTestHandler(t, cfg, nil)

	out, err := h.Execute(context.Background(), boosterDeal)
	require.NoError(t, err)
	assert.False(t, out.Persisted)
	assert.Less(t, out.TotalScore, 31)
	assert.Equal(t, 0.5, out.Weights[compliance.DimensionPolicyFit])
}

func TestConfigFrom(t *testing.T) {
	cfg := ConfigFrom(config.ScoringConfig{ComplianceWeights: map[string]float64{"policyfit": 1}}, config.WorkerConfig{Timeout: 2000})
	assert.Equal(t, 2*time.Second, cfg.Timeout)
	assert.Len(t, cfg.Weights, 1)
}
