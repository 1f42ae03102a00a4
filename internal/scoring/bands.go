// internal/scoring/bands.go
package scoring

import "fmt"

// Band is a labelled score range. Min is inclusive; the band extends up to the
// next band's Min.
type Band struct {
	Label string
	Min   int
}

// Classifier maps a score to a band label. Bands are held in descending Min order.
type Classifier struct {
	bands []Band
}

// NewClassifier validates the band table. Bands must be listed highest first with
// strictly decreasing Min, and the lowest band must start at or below 0 so every
// score is covered.
func NewClassifier(bands ...Band) (*Classifier, error) {
	if len(bands) == 0 {
		return nil, fmt.Errorf("classifier needs at least one band")
	}

	seen := make(map[string]bool, len(bands))
	for i, b := range bands {
		if b.Label == "" {
			return nil, fmt.Errorf("band %d has no label", i)
		}
		if seen[b.Label] {
			return nil, fmt.Errorf("duplicate band label %q", b.Label)
		}
		seen[b.Label] = true
		if i > 0 && b.Min >= bands[i-1].Min {
			return nil, fmt.Errorf("band %q min %d must be below %q min %d", b.Label, b.Min, bands[i-1].Label, bands[i-1].Min)
		}
	}
	if last := bands[len(bands)-1]; last.Min > 0 {
		return nil, fmt.Errorf("lowest band %q must start at or below 0, got %d", last.Label, last.Min)
	}

	out := make([]Band, len(bands))
	copy(out, bands)
	return &Classifier{bands: out}, nil
}

// MustClassifier is NewClassifier for package-level presets.
func MustClassifier(bands ...Band) *Classifier {
	c, err := NewClassifier(bands...)
	if err != nil {
		panic(err)
	}
	return c
}

// Classify returns the label of the first band whose Min the score reaches.
func (c *Classifier) Classify(score int) string {
	for _, b := range c.bands {
		if score >= b.Min {
			return b.Label
		}
	}
	return c.bands[len(c.bands)-1].Label
}

// labels lists band labels from highest to lowest.
func (c *Classifier) labels() []string {
	out := make([]string, 0, len(c.bands))
	for _, b := range c.bands {
		out = append(out, b.Label)
	}
	return out
}

// Dimension statuses.
const (
	StatusGood     = "good"
	StatusWarning  = "warning"
	StatusCritical = "critical"
)

// Overall protection statuses.
const (
	StatusProtected       = "protected"
	StatusAttentionNeeded = "attention_needed"
	StatusAtRisk          = "at_risk"
)

// Match tiers.
const (
	TierExcellent = "excellent"
	TierGood      = "good"
	TierFair      = "fair"
	TierLow       = "low"
)

// Preset band tables. Callers that need different cutpoints build their own
// with NewClassifier.
var (
	DimensionStatusBands = []Band{
		{Label: StatusGood, Min: 80},
		{Label: StatusWarning, Min: 50},
		{Label: StatusCritical, Min: 0},
	}

	ProtectionStatusBands = []Band{
		{Label: StatusProtected, Min: 80},
		{Label: StatusAttentionNeeded, Min: 50},
		{Label: StatusAtRisk, Min: 0},
	}

	MatchTierBands = []Band{
		{Label: TierExcellent, Min: 80},
		{Label: TierGood, Min: 60},
		{Label: TierFair, Min: 40},
		{Label: TierLow, Min: 0},
	}
)

// DimensionStatus is the default per-dimension classifier.
var DimensionStatus = MustClassifier(DimensionStatusBands...)
