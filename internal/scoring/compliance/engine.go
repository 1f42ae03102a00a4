// internal/scoring/compliance/engine.go

// Package compliance scores an NIL deal on six weighted dimensions and derives
// the protection status and issues shown on the athlete dashboard.
package compliance

import (
	"chatnil-workers/internal/scoring"
)

// Dimension names, in issue order.
const (
	DimensionPolicyFit       = "policyFit"
	DimensionDocumentHygiene = "documentHygiene"
	DimensionFMVVerification = "fmvVerification"
	DimensionTaxReadiness    = "taxReadiness"
	DimensionBrandSafety     = "brandSafety"
	DimensionGuardianConsent = "guardianConsent"
)

// DimensionOrder is the fixed evaluation and issue order.
var DimensionOrder = []string{
	DimensionPolicyFit,
	DimensionDocumentHygiene,
	DimensionFMVVerification,
	DimensionTaxReadiness,
	DimensionBrandSafety,
	DimensionGuardianConsent,
}

// DefaultWeights is the production weight table.
var DefaultWeights = scoring.WeightTable{
	DimensionPolicyFit:       0.30,
	DimensionDocumentHygiene: 0.20,
	DimensionFMVVerification: 0.15,
	DimensionTaxReadiness:    0.15,
	DimensionBrandSafety:     0.10,
	DimensionGuardianConsent: 0.10,
}

// SeverityOverrides soften issues for dimensions whose failure is fixable
// paperwork rather than a compliance breach.
var SeverityOverrides = scoring.SeverityOverrides{
	DimensionTaxReadiness:    {scoring.StatusCritical: scoring.SeverityWarning},
	DimensionGuardianConsent: {scoring.StatusCritical: scoring.SeverityWarning},
}

var IssueTemplates = scoring.IssueTemplates{
	DimensionPolicyFit: {
		scoring.StatusCritical: {
			Key:         "policy-1",
			Title:       "School policy conflict",
			Description: "This deal may conflict with your school's NIL policy. Review required.",
			ActionLabel: "Review Policy",
		},
		scoring.StatusWarning: {
			Key:         "policy-2",
			Title:       "Policy review recommended",
			Description: "Double-check this deal against your school's guidelines.",
			ActionLabel: "Check Guidelines",
		},
	},
	DimensionDocumentHygiene: {
		scoring.StatusCritical: {
			Key:         "docs-1",
			Title:       "Missing contract",
			Description: "No signed contract uploaded. This is required for your protection.",
			ActionLabel: "Upload Contract",
		},
		scoring.StatusWarning: {
			Key:         "docs-2",
			Title:       "Contract incomplete",
			Description: "Your contract is missing key terms (payment schedule, termination).",
			ActionLabel: "Review Contract",
		},
	},
	DimensionFMVVerification: {
		scoring.StatusCritical: {
			Key:         "fmv-1",
			Title:       "Deal value looks unusual",
			Description: "The payment is significantly different from typical rates for this type of deal.",
			ActionLabel: "Get FMV Check",
		},
	},
	DimensionTaxReadiness: {
		scoring.StatusCritical: {
			Key:         "tax-1",
			Title:       "W-9 not submitted",
			Description: "You haven't submitted your W-9 to this brand yet.",
			ActionLabel: "Submit W-9",
		},
	},
	DimensionBrandSafety: {
		scoring.StatusCritical: {
			Key:         "brand-1",
			Title:       "Brand category concern",
			Description: "This brand may be in a restricted category for college athletes.",
			ActionLabel: "Review Brand",
		},
	},
	DimensionGuardianConsent: {
		scoring.StatusCritical: {
			Key:         "consent-1",
			Title:       "Parent approval pending",
			Description: "Your parent/guardian hasn't approved this deal yet.",
			ActionLabel: "Request Approval",
		},
	},
}

var evaluators = map[string]scoring.Evaluator{
	DimensionPolicyFit:       EvaluatePolicyFit,
	DimensionDocumentHygiene: EvaluateDocumentHygiene,
	DimensionFMVVerification: EvaluateFMVVerification,
	DimensionTaxReadiness:    EvaluateTaxReadiness,
	DimensionBrandSafety:     EvaluateBrandSafety,
	DimensionGuardianConsent: EvaluateGuardianConsent,
}

var protectionStatus = scoring.MustClassifier(scoring.ProtectionStatusBands...)

// NewEngine builds the compliance engine. A nil or empty weights table uses
// DefaultWeights; a table that omits a dimension or does not sum to 1.0 fails.
func NewEngine(weights scoring.WeightTable) (*scoring.Engine, error) {
	if len(weights) == 0 {
		weights = DefaultWeights
	}

	dims := make([]scoring.Dimension, 0, len(DimensionOrder))
	for _, name := range DimensionOrder {
		dims = append(dims, scoring.Dimension{
			Name:     name,
			Weight:   weights[name],
			Evaluate: evaluators[name],
		})
	}

	return scoring.NewEngine(scoring.Config{
		Name:       "compliance",
		Dimensions: dims,
		Tiers:      protectionStatus,
		Issues:     IssueTemplates,
		Overrides:  SeverityOverrides,
	})
}

// OverallStatus maps a total score to protected, attention_needed or at_risk.
func OverallStatus(score int) string {
	return protectionStatus.Classify(score)
}
