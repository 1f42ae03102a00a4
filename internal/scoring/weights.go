// internal/scoring/weights.go
package scoring

import (
	"fmt"
	"math"
	"sort"
)

// WeightEpsilon is the tolerance allowed when checking that a weight table sums to 1.0.
const WeightEpsilon = 0.001

// WeightTable maps a dimension name to its share of the total score.
type WeightTable map[string]float64

// Validate checks that every weight lies in (0,1] and that the table sums to 1.0.
func (w WeightTable) Validate() error {
	if len(w) == 0 {
		return fmt.Errorf("weight table is empty")
	}

	names := make([]string, 0, len(w))
	for name := range w {
		names = append(names, name)
	}
	sort.Strings(names)

	var sum float64
	for _, name := range names {
		weight := w[name]
		if math.IsNaN(weight) || weight <= 0 || weight > 1 {
			return fmt.Errorf("weight %q must be in (0,1], got %v", name, weight)
		}
		sum += weight
	}

	if math.Abs(sum-1.0) > WeightEpsilon {
		return fmt.Errorf("weights must sum to 1.0, got %.4f", sum)
	}
	return nil
}

