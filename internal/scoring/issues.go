// internal/scoring/issues.go
package scoring

import (
	"fmt"
	"sort"
)

// Issue severities.
const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
	SeverityInfo     = "info"
)

// Issue is a user-facing problem derived from a dimension's status.
type Issue struct {
	ID          string `json:"id"`
	Dimension   string `json:"dimension"`
	Severity    string `json:"severity"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ActionLabel string `json:"actionLabel"`
}

// IssueTemplate is the static text of an issue. Key becomes the id suffix, so a
// subject "deal-9" and key "policy-1" yield id "deal-9-policy-1".
type IssueTemplate struct {
	Key         string
	Title       string
	Description string
	ActionLabel string
}

// IssueTemplates holds, per dimension, the template emitted for each status.
// A status without a template produces no issue.
type IssueTemplates map[string]map[string]IssueTemplate

// SeverityOverrides replaces the severity for a dimension/status pair. Without an
// override the issue severity equals the dimension status.
type SeverityOverrides map[string]map[string]string

// Severity resolves the issue severity for a dimension in the given status.
func (o SeverityOverrides) Severity(dimension, status string) string {
	if byStatus, ok := o[dimension]; ok {
		if sev, ok := byStatus[status]; ok {
			return sev
		}
	}
	return status
}

// DeriveIssues walks results in the given order and emits one issue per
// dimension whose status has a template. Order is never re-sorted here.
func DeriveIssues(subjectID string, order []string, results map[string]DimensionResult, templates IssueTemplates, overrides SeverityOverrides) []Issue {
	issues := make([]Issue, 0)
	for _, name := range order {
		res, ok := results[name]
		if !ok || res.Status == StatusGood {
			continue
		}
		tmpl, ok := templates[name][res.Status]
		if !ok {
			continue
		}

		id := tmpl.Key
		if subjectID != "" {
			id = fmt.Sprintf("%s-%s", subjectID, tmpl.Key)
		}
		issues = append(issues, Issue{
			ID:          id,
			Dimension:   name,
			Severity:    overrides.Severity(name, res.Status),
			Title:       tmpl.Title,
			Description: tmpl.Description,
			ActionLabel: tmpl.ActionLabel,
		})
	}
	return issues
}

var severityRank = map[string]int{
	SeverityCritical: 0,
	SeverityWarning:  1,
	SeverityInfo:     2,
}

// Ranked is anything that can be ordered severity first, then by ascending score.
type Ranked interface {
	RankSeverity() string
	RankScore() int
}

// SortBySeverity orders items critical before warning before info, breaking
// ties by ascending score. The sort is stable.
func SortBySeverity[T Ranked](items []T) {
	sort.SliceStable(items, func(i, j int) bool {
		ri, rj := rank(items[i].RankSeverity()), rank(items[j].RankSeverity())
		if ri != rj {
			return ri < rj
		}
		return items[i].RankScore() < items[j].RankScore()
	})
}

func rank(severity string) int {
	if r, ok := severityRank[severity]; ok {
		return r
	}
	return len(severityRank)
}
