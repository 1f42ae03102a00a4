// internal/scoring/compliance/evaluators.go
package compliance

import (
	"math"
	"strings"

	"chatnil-workers/internal/scoring"
)

// Reason codes.
const (
	ReasonPendingSchoolApproval = "PENDING_SCHOOL_APPROVAL"
	ReasonMissingDisclosure     = "MISSING_DISCLOSURE"
	ReasonUnverifiedThirdParty  = "UNVERIFIED_THIRD_PARTY"
	ReasonBoosterPayment        = "BOOSTER_PAYMENT"
	ReasonCollectivePayment     = "COLLECTIVE_PAYMENT"
	ReasonUnknownPaymentSource  = "UNKNOWN_PAYMENT_SOURCE"
	ReasonNoDeliverables        = "NO_DELIVERABLES"
	ReasonPayForPlay            = "PAY_FOR_PLAY"
	ReasonEnrollmentInducement  = "ENROLLMENT_INDUCEMENT"
	ReasonNoContract            = "NO_CONTRACT"
	ReasonW9Missing             = "W9_MISSING"
	ReasonNoDisclosureForm      = "NO_DISCLOSURE_FORM"
	ReasonMissingDocuments      = "MISSING_DOCUMENTS"
	ReasonContractFlaggedTerms  = "CONTRACT_FLAGGED_TERMS"
	ReasonNoDealValue           = "NO_DEAL_VALUE"
	ReasonBelowMarket           = "BELOW_MARKET"
	ReasonAboveMarket           = "ABOVE_MARKET"
	ReasonExtremeOverpayment    = "EXTREME_OVERPAYMENT"
	ReasonTaxObligationsUnknown = "TAX_OBLIGATIONS_UNACKNOWLEDGED"
	ReasonProhibitedCategory    = "PROHIBITED_CATEGORY"
	ReasonRestrictedCategory    = "RESTRICTED_CATEGORY"
	ReasonConsentPending        = "CONSENT_PENDING"
	ReasonConsentDenied         = "CONSENT_DENIED"
	ReasonGuardianUnverified    = "GUARDIAN_UNVERIFIED"
)

// Payment sources.
const (
	PaymentBrand      = "brand"
	PaymentCollective = "collective"
	PaymentBooster    = "booster"
	PaymentUnknown    = "unknown"
)

// Guardian consent statuses.
const (
	ConsentNotRequired = "not_required"
	ConsentPending     = "pending"
	ConsentApproved    = "approved"
	ConsentDenied      = "denied"
)

var prohibitedCategories = map[string]bool{
	"alcohol":  true,
	"gambling": true,
	"cannabis": true,
	"tobacco":  true,
	"vaping":   true,
	"adult":    true,
	"firearms": true,
}

var restrictedCategories = map[string]bool{
	"energy_drinks":  true,
	"supplements":    true,
	"crypto":         true,
	"sports_betting": true,
}

var marketMultipliers = map[string]float64{
	"large":  1.5,
	"medium": 1.0,
	"small":  0.75,
}

type deductions struct {
	score   float64
	reasons []string
}

func (d *deductions) deduct(points float64, reason string) {
	d.score -= points
	if reason != "" {
		d.reasons = append(d.reasons, reason)
	}
}

func (d *deductions) evaluation() scoring.Evaluation {
	return scoring.Evaluation{Score: math.Max(0, d.score), Reasons: d.reasons}
}

// EvaluatePolicyFit starts at 100 and deducts for missing approvals and for
// payment structures that look like pay-for-play.
func EvaluatePolicyFit(f scoring.Features) scoring.Evaluation {
	d := &deductions{score: 100}

	if !f.Bool("has_school_approval") {
		d.deduct(20, ReasonPendingSchoolApproval)
	}
	if !f.Bool("has_disclosure") {
		d.deduct(20, ReasonMissingDisclosure)
	}
	if !f.Bool("is_third_party_verified") {
		d.deduct(10, ReasonUnverifiedThirdParty)
	}

	switch strings.ToLower(f.String("payment_source")) {
	case PaymentBrand:
	case PaymentBooster:
		d.deduct(40, ReasonBoosterPayment)
	case PaymentCollective:
		d.deduct(15, ReasonCollectivePayment)
	default:
		d.deduct(20, ReasonUnknownPaymentSource)
	}

	if !f.Bool("has_deliverables") {
		d.deduct(25, ReasonNoDeliverables)
	}
	if f.Bool("payment_tied_to_performance") {
		d.deduct(50, ReasonPayForPlay)
	}
	if f.Bool("payment_tied_to_enrollment") {
		d.deduct(60, ReasonEnrollmentInducement)
	}

	return d.evaluation()
}

func EvaluateDocumentHygiene(f scoring.Features) scoring.Evaluation {
	d := &deductions{score: 100}

	if !f.Bool("has_contract") {
		d.deduct(50, ReasonNoContract)
	}
	if !f.Bool("has_w9") {
		d.deduct(15, ReasonW9Missing)
	}
	if !f.Bool("has_disclosure_form") {
		d.deduct(15, ReasonNoDisclosureForm)
	}
	if missing := len(f.Strings("missing_documents")); missing > 0 {
		d.deduct(float64(10*missing), ReasonMissingDocuments)
	}
	if flagged := len(f.Strings("flagged_terms")); flagged > 0 {
		d.deduct(float64(5*flagged), ReasonContractFlaggedTerms)
	}

	return d.evaluation()
}

// ExpectedDealValue estimates what a deal for this athlete should pay:
// followers × $0.02 scaled by engagement, market and FMV score, floored at $100.
func ExpectedDealValue(followers, engagementRate, fmvScore float64, marketSize string) float64 {
	engagement := math.Max(0.5, math.Min(2, engagementRate/3))
	market, ok := marketMultipliers[strings.ToLower(marketSize)]
	if !ok {
		market = 1.0
	}
	return math.Max(100, followers*0.02*engagement*market*fmvScore/50)
}

// EvaluateFMVVerification compares the deal value with the expected value.
// Large overpayment is the primary pay-for-play signal.
func EvaluateFMVVerification(f scoring.Features) scoring.Evaluation {
	value := f.Float("deal_value")
	if value == 0 {
		return scoring.Evaluation{Score: 50, Reasons: []string{ReasonNoDealValue}}
	}

	expected := ExpectedDealValue(
		f.Float("social_followers"),
		f.Float("engagement_rate"),
		f.FloatOr("athlete_fmv_score", 50),
		f.String("market_size"),
	)
	ratio := value / expected

	switch {
	case ratio > 5:
		return scoring.Evaluation{Score: 20, Reasons: []string{ReasonExtremeOverpayment}}
	case ratio > 3:
		return scoring.Evaluation{Score: 50, Reasons: []string{ReasonAboveMarket}}
	case ratio > 2:
		return scoring.Evaluation{Score: 75, Reasons: []string{ReasonAboveMarket}}
	case ratio >= 0.5:
		return scoring.Evaluation{Score: 100}
	case ratio >= 0.25:
		return scoring.Evaluation{Score: 75, Reasons: []string{ReasonBelowMarket}}
	}
	return scoring.Evaluation{Score: 60, Reasons: []string{ReasonBelowMarket}}
}

// EvaluateTaxReadiness is additive: each completed step earns its share.
func EvaluateTaxReadiness(f scoring.Features) scoring.Evaluation {
	var score float64
	var reasons []string

	if f.Bool("has_w9_submitted") {
		score += 40
	} else {
		reasons = append(reasons, ReasonW9Missing)
	}
	if f.Bool("understands_tax_obligations") {
		score += 25
	} else {
		reasons = append(reasons, ReasonTaxObligationsUnknown)
	}
	if f.Bool("has_1099_ready") {
		score += 15
	}
	if f.Bool("has_tax_professional") {
		score += 20
	}

	return scoring.Evaluation{Score: score, Reasons: reasons}
}

func EvaluateBrandSafety(f scoring.Features) scoring.Evaluation {
	category := normalizeCategory(f.String("brand_category"))
	if category == "" {
		category = normalizeCategory(f.String("product_type"))
	}

	switch {
	case prohibitedCategories[category]:
		return scoring.Evaluation{Score: 0, Reasons: []string{ReasonProhibitedCategory}}
	case restrictedCategories[category]:
		if strings.EqualFold(f.String("athlete_level"), LevelHighSchool) {
			return scoring.Evaluation{Score: 40, Reasons: []string{ReasonRestrictedCategory}}
		}
		return scoring.Evaluation{Score: 70, Reasons: []string{ReasonRestrictedCategory}}
	}
	return scoring.Evaluation{Score: 100}
}

// EvaluateGuardianConsent only applies to minors. An unknown age on a college
// athlete is treated as an adult.
func EvaluateGuardianConsent(f scoring.Features) scoring.Evaluation {
	age := f.Int("athlete_age")
	status := strings.ToLower(f.String("consent_status"))

	if age >= 18 || status == ConsentNotRequired {
		return scoring.Evaluation{Score: 100}
	}
	if age == 0 && strings.EqualFold(f.String("athlete_level"), LevelCollege) {
		return scoring.Evaluation{Score: 100}
	}

	switch status {
	case ConsentApproved:
		if f.Bool("guardian_verified") {
			return scoring.Evaluation{Score: 100}
		}
		return scoring.Evaluation{Score: 80, Reasons: []string{ReasonGuardianUnverified}}
	case ConsentDenied:
		return scoring.Evaluation{Score: 0, Reasons: []string{ReasonConsentDenied}}
	}
	return scoring.Evaluation{Score: 40, Reasons: []string{ReasonConsentPending}}
}

func normalizeCategory(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "-", "_")
	return strings.ReplaceAll(s, " ", "_")
}
