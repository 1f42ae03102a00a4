// internal/scoring/compliance/input.go
package compliance

import (
	"chatnil-workers/internal/scoring"
)

// Athlete levels.
const (
	LevelHighSchool = "high_school"
	LevelCollege    = "college"
)

type PolicyFitInputs struct {
	HasSchoolApproval        bool     `json:"hasSchoolApproval"`
	HasDisclosure            bool     `json:"hasDisclosure"`
	IsThirdPartyVerified     bool     `json:"isThirdPartyVerified"`
	ThirdPartyName           string   `json:"thirdPartyName,omitempty"`
	PaymentSource            string   `json:"paymentSource"`
	HasDeliverables          bool     `json:"hasDeliverables"`
	Deliverables             []string `json:"deliverables,omitempty"`
	PaymentTiedToPerformance bool     `json:"paymentTiedToPerformance"`
	PaymentTiedToEnrollment  bool     `json:"paymentTiedToEnrollment"`
}

type DocumentInputs struct {
	HasContract       bool     `json:"hasContract"`
	HasW9             bool     `json:"hasW9"`
	HasDisclosureForm bool     `json:"hasDisclosureForm"`
	MissingDocuments  []string `json:"missingDocuments,omitempty"`
	FlaggedTerms      []string `json:"flaggedTerms,omitempty"`
}

type FMVInputs struct {
	DealValue       float64 `json:"dealValue"`
	AthleteFMVScore float64 `json:"athleteFMVScore"`
	SocialFollowers int     `json:"socialFollowers"`
	EngagementRate  float64 `json:"engagementRate"`
	Sport           string  `json:"sport,omitempty"`
	MarketSize      string  `json:"marketSize"`
}

type TaxInputs struct {
	HasW9Submitted            bool    `json:"hasW9Submitted"`
	UnderstandsTaxObligations bool    `json:"understandsTaxObligations"`
	Has1099Ready              bool    `json:"has1099Ready"`
	HasTaxProfessional        bool    `json:"hasTaxProfessional"`
	TotalNILEarningsYTD       float64 `json:"totalNILEarningsYTD"`
}

type BrandSafetyInputs struct {
	BrandCategory string `json:"brandCategory"`
	BrandName     string `json:"brandName,omitempty"`
	ProductType   string `json:"productType,omitempty"`
	AthleteLevel  string `json:"athleteLevel,omitempty"`
}

type GuardianConsentInputs struct {
	AthleteAge       int    `json:"athleteAge"`
	AthleteLevel     string `json:"athleteLevel,omitempty"`
	ConsentStatus    string `json:"consentStatus"`
	GuardianVerified bool   `json:"guardianVerified"`
}

// Input is everything known about a deal. A nil section leaves its dimension
// at the neutral score.
type Input struct {
	DealID          string                 `json:"dealId"`
	AthleteID       string                 `json:"athleteId"`
	BrandName       string                 `json:"brandName,omitempty"`
	DealValue       float64                `json:"dealValue"`
	DealCategory    string                 `json:"dealCategory,omitempty"`
	AthleteState    string                 `json:"athleteState,omitempty"`
	AthleteLevel    string                 `json:"athleteLevel,omitempty"`
	AthleteAge      int                    `json:"athleteAge,omitempty"`
	PolicyFit       *PolicyFitInputs       `json:"policyFitInputs,omitempty"`
	Documents       *DocumentInputs        `json:"documentInputs,omitempty"`
	FMV             *FMVInputs             `json:"fmvInputs,omitempty"`
	Tax             *TaxInputs             `json:"taxInputs,omitempty"`
	BrandSafety     *BrandSafetyInputs     `json:"brandSafetyInputs,omitempty"`
	GuardianConsent *GuardianConsentInputs `json:"guardianConsentInputs,omitempty"`
}

// ScoreInput converts the typed sections into engine feature bundles. Deal-level
// fields fill gaps in a section.
func (in Input) ScoreInput() scoring.ScoreInput {
	out := scoring.ScoreInput{}

	if p := in.PolicyFit; p != nil {
		out[DimensionPolicyFit] = scoring.Features{
			"has_school_approval":         p.HasSchoolApproval,
			"has_disclosure":              p.HasDisclosure,
			"is_third_party_verified":     p.IsThirdPartyVerified,
			"payment_source":              p.PaymentSource,
			"has_deliverables":            p.HasDeliverables || len(p.Deliverables) > 0,
			"payment_tied_to_performance": p.PaymentTiedToPerformance,
			"payment_tied_to_enrollment":  p.PaymentTiedToEnrollment,
		}
	}

	if d := in.Documents; d != nil {
		out[DimensionDocumentHygiene] = scoring.Features{
			"has_contract":        d.HasContract,
			"has_w9":              d.HasW9,
			"has_disclosure_form": d.HasDisclosureForm,
			"missing_documents":   d.MissingDocuments,
			"flagged_terms":       d.FlaggedTerms,
		}
	}

	if f := in.FMV; f != nil {
		value := f.DealValue
		if value == 0 {
			value = in.DealValue
		}
		out[DimensionFMVVerification] = scoring.Features{
			"deal_value":        value,
			"athlete_fmv_score": f.AthleteFMVScore,
			"social_followers":  f.SocialFollowers,
			"engagement_rate":   f.EngagementRate,
			"market_size":       f.MarketSize,
		}
	}

	if t := in.Tax; t != nil {
		out[DimensionTaxReadiness] = scoring.Features{
			"has_w9_submitted":            t.HasW9Submitted,
			"understands_tax_obligations": t.UnderstandsTaxObligations,
			"has_1099_ready":              t.Has1099Ready,
			"has_tax_professional":        t.HasTaxProfessional,
		}
	}

	if b := in.BrandSafety; b != nil {
		category := b.BrandCategory
		if category == "" {
			category = in.DealCategory
		}
		out[DimensionBrandSafety] = scoring.Features{
			"brand_category": category,
			"product_type":   b.ProductType,
			"athlete_level":  firstNonEmpty(b.AthleteLevel, in.AthleteLevel),
		}
	}

	if g := in.GuardianConsent; g != nil {
		age := g.AthleteAge
		if age == 0 {
			age = in.AthleteAge
		}
		out[DimensionGuardianConsent] = scoring.Features{
			"athlete_age":       age,
			"athlete_level":     firstNonEmpty(g.AthleteLevel, in.AthleteLevel),
			"consent_status":    g.ConsentStatus,
			"guardian_verified": g.GuardianVerified,
		}
	}

	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
