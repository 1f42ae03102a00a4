// internal/scoring/mock.go
package scoring

import "math/rand"

// DefaultMockVariance is the spread applied around each synthetic dimension score.
const DefaultMockVariance = 15

// MockGenerator produces synthetic dimension scores near a base total. It is
// used to fill dashboards for subjects that have no real feature data yet.
// The random source is injected so runs can be reproduced.
type MockGenerator struct {
	rng      *rand.Rand
	variance int
}

func NewMockGenerator(rng *rand.Rand, variance int) *MockGenerator {
	if variance < 0 {
		variance = 0
	}
	return &MockGenerator{rng: rng, variance: variance}
}

// Scores returns clamp(base + offset + jitter) for every name in order, where
// jitter is drawn uniformly from [-variance, variance].
func (g *MockGenerator) Scores(base int, offsets map[string]int, order []string) map[string]int {
	out := make(map[string]int, len(order))
	for _, name := range order {
		jitter := 0
		if g.variance > 0 {
			jitter = g.rng.Intn(2*g.variance+1) - g.variance
		}
		out[name] = Clamp(base+offsets[name]+jitter, 0, 100)
	}
	return out
}
