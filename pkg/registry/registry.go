// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"
)

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read activity registry: %w", err)
	}
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse activity registry %s: %w", path, err)
	}
	return &reg, nil
}

// Find returns the activity for taskType, or nil.
func (r *ActivityRegistry) Find(taskType string) *Activity {
	for i := range r.Activities {
		if r.Activities[i].TaskType == taskType {
			return &r.Activities[i]
		}
	}
	return nil
}

// Validate reports every malformed entry, not just the first.
func (r *ActivityRegistry) Validate() []error {
	var problems []error
	seenID := make(map[string]bool)
	seenTask := make(map[string]bool)

	for i, a := range r.Activities {
		label := a.ID
		if label == "" {
			label = fmt.Sprintf("activities[%d]", i)
		}
		if a.ID == "" || a.TaskType == "" || a.DisplayName == "" {
			problems = append(problems, fmt.Errorf("%s: id, taskType and displayName are required", label))
		}
		if seenID[a.ID] {
			problems = append(problems, fmt.Errorf("%s: duplicate id", label))
		}
		if a.TaskType != "" && seenTask[a.TaskType] {
			problems = append(problems, fmt.Errorf("%s: duplicate taskType %q", label, a.TaskType))
		}
		if !validStatuses[a.ImplementationStatus] {
			problems = append(problems, fmt.Errorf("%s: unknown implementationStatus %q", label, a.ImplementationStatus))
		}
		if a.Timeout != "" {
			if _, err := time.ParseDuration(a.Timeout); err != nil {
				problems = append(problems, fmt.Errorf("%s: bad timeout %q", label, a.Timeout))
			}
		}
		seenID[a.ID] = true
		seenTask[a.TaskType] = true
	}
	return problems
}

// Missing lists the task types that have no activity entry, sorted.
func (r *ActivityRegistry) Missing(taskTypes []string) []string {
	var missing []string
	for _, tt := range taskTypes {
		if r.Find(tt) == nil {
			missing = append(missing, tt)
		}
	}
	sort.Strings(missing)
	return missing
}
