// internal/scoring/engine.go

// Package scoring implements a weighted multi-dimension scoring engine. An engine
// is configured once with named dimensions (weight and evaluator), a tier
// classifier for the total, a status classifier for each dimension and the
// issue tables, and then scores any number of subjects concurrently.
package scoring

import (
	"fmt"
	"math"
	"sort"
)

// DefaultNeutralScore is used for a dimension whose feature bundle is empty.
const DefaultNeutralScore = 50

// roundingSlack absorbs binary floating point error so that sums such as 73.5
// computed as 73.49999999999999 still round up.
const roundingSlack = 1e-9

// Evaluation is the raw output of an evaluator. Score is clamped to [0,100] and
// rounded by the engine.
type Evaluation struct {
	Score   float64
	Reasons []string
}

// Evaluator scores one dimension from its feature bundle. It must not depend on
// anything but its input.
type Evaluator func(f Features) Evaluation

// Dimension is one named axis of a score.
type Dimension struct {
	Name     string
	Weight   float64
	Evaluate Evaluator
}

// Config describes an engine instance.
type Config struct {
	Name       string
	Dimensions []Dimension
	// Tiers classifies the total score.
	Tiers *Classifier
	// Status classifies each dimension score. Defaults to DimensionStatus.
	Status    *Classifier
	Issues    IssueTemplates
	Overrides SeverityOverrides
	// NeutralScore replaces DefaultNeutralScore when non-zero.
	NeutralScore int
}

// DimensionResult is the scored state of one dimension.
type DimensionResult struct {
	Score   int      `json:"score"`
	Weight  float64  `json:"weight"`
	Status  string   `json:"status"`
	Reasons []string `json:"reasons,omitempty"`
}

// ScoreResult is the output of one scoring pass.
type ScoreResult struct {
	TotalScore int                        `json:"totalScore"`
	Tier       string                     `json:"tier"`
	Dimensions map[string]DimensionResult `json:"dimensions"`
	Order      []string                   `json:"order"`
	Issues     []Issue                    `json:"issues"`
	Reasons    []string                   `json:"reasons,omitempty"`
}

// Engine is an immutable, validated scoring configuration.
type Engine struct {
	name       string
	dimensions []Dimension
	weights    WeightTable
	tiers      *Classifier
	status     *Classifier
	issues     IssueTemplates
	overrides  SeverityOverrides
	neutral    int
}

// NewEngine validates cfg and returns an engine. Weight tables that do not sum
// to 1.0 are rejected here rather than at scoring time.
func NewEngine(cfg Config) (*Engine, error) {
	if len(cfg.Dimensions) == 0 {
		return nil, fmt.Errorf("engine %q: no dimensions configured", cfg.Name)
	}
	if cfg.Tiers == nil {
		return nil, fmt.Errorf("engine %q: tier classifier is required", cfg.Name)
	}

	weights := make(WeightTable, len(cfg.Dimensions))
	for i, d := range cfg.Dimensions {
		if d.Name == "" {
			return nil, fmt.Errorf("engine %q: dimension %d has no name", cfg.Name, i)
		}
		if _, dup := weights[d.Name]; dup {
			return nil, fmt.Errorf("engine %q: duplicate dimension %q", cfg.Name, d.Name)
		}
		if d.Evaluate == nil {
			return nil, fmt.Errorf("engine %q: dimension %q has no evaluator", cfg.Name, d.Name)
		}
		weights[d.Name] = d.Weight
	}
	if err := weights.Validate(); err != nil {
		return nil, fmt.Errorf("engine %q: %w", cfg.Name, err)
	}

	for name := range cfg.Issues {
		if _, ok := weights[name]; !ok {
			return nil, fmt.Errorf("engine %q: issue templates reference unknown dimension %q", cfg.Name, name)
		}
	}

	status := cfg.Status
	if status == nil {
		status = DimensionStatus
	}
	neutral := cfg.NeutralScore
	if neutral == 0 {
		neutral = DefaultNeutralScore
	}

	dims := make([]Dimension, len(cfg.Dimensions))
	copy(dims, cfg.Dimensions)

	return &Engine{
		name:       cfg.Name,
		dimensions: dims,
		weights:    weights,
		tiers:      cfg.Tiers,
		status:     status,
		issues:     cfg.Issues,
		overrides:  cfg.Overrides,
		neutral:    Clamp(neutral, 0, 100),
	}, nil
}

// Name returns the engine name.
func (e *Engine) Name() string { return e.name }

// Weights returns a copy of the weight table.
func (e *Engine) Weights() WeightTable {
	out := make(WeightTable, len(e.weights))
	for k, v := range e.weights {
		out[k] = v
	}
	return out
}

// DimensionNames lists dimensions in configured order.
func (e *Engine) DimensionNames() []string {
	out := make([]string, 0, len(e.dimensions))
	for _, d := range e.dimensions {
		out = append(out, d.Name)
	}
	return out
}

// Score runs every evaluator over in and assembles the result. subjectID only
// prefixes issue ids.
func (e *Engine) Score(subjectID string, in ScoreInput) *ScoreResult {
	scores := make(map[string]int, len(e.dimensions))
	reasons := make(map[string][]string, len(e.dimensions))
	for _, d := range e.dimensions {
		bundle := in[d.Name]
		if len(bundle) == 0 {
			scores[d.Name] = e.neutral
			continue
		}
		ev := e.evaluate(d, bundle)
		scores[d.Name] = RoundHalfUp(clampFloat(ev.Score, 0, 100))
		reasons[d.Name] = ev.Reasons
	}
	return e.assemble(subjectID, scores, reasons)
}

// FromScores builds a result from precomputed dimension scores. Missing
// dimensions take the neutral score.
func (e *Engine) FromScores(subjectID string, scores map[string]int) *ScoreResult {
	normalized := make(map[string]int, len(e.dimensions))
	for _, d := range e.dimensions {
		s, ok := scores[d.Name]
		if !ok {
			s = e.neutral
		}
		normalized[d.Name] = Clamp(s, 0, 100)
	}
	return e.assemble(subjectID, normalized, nil)
}

func (e *Engine) assemble(subjectID string, scores map[string]int, reasons map[string][]string) *ScoreResult {
	results := make(map[string]DimensionResult, len(e.dimensions))
	order := make([]string, 0, len(e.dimensions))
	var allReasons []string

	for _, d := range e.dimensions {
		s := scores[d.Name]
		results[d.Name] = DimensionResult{
			Score:   s,
			Weight:  d.Weight,
			Status:  e.status.Classify(s),
			Reasons: reasons[d.Name],
		}
		order = append(order, d.Name)
		allReasons = append(allReasons, reasons[d.Name]...)
	}

	total := Aggregate(results)
	return &ScoreResult{
		TotalScore: total,
		Tier:       e.tiers.Classify(total),
		Dimensions: results,
		Order:      order,
		Issues:     DeriveIssues(subjectID, order, results, e.issues, e.overrides),
		Reasons:    allReasons,
	}
}

func (e *Engine) evaluate(d Dimension, bundle Features) (ev Evaluation) {
	defer func() {
		if r := recover(); r != nil {
			ev = Evaluation{Score: float64(e.neutral)}
		}
	}()
	ev = d.Evaluate(bundle)
	if math.IsNaN(ev.Score) {
		ev.Score = float64(e.neutral)
	}
	return ev
}

// Aggregate returns round(Σ score×weight) clamped to [0,100].
func Aggregate(results map[string]DimensionResult) int {
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)

	var total float64
	for _, name := range names {
		r := results[name]
		total += float64(r.Score) * r.Weight
	}
	return Clamp(RoundHalfUp(total), 0, 100)
}

// RoundHalfUp rounds to the nearest integer with .5 going up.
func RoundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5 + roundingSlack))
}

// Clamp bounds n to [lo, hi].
func Clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

func clampFloat(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
