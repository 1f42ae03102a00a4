// internal/scoring/fmv/points.go
package fmv

import (
	"strings"

	"chatnil-workers/internal/scoring"
)

// Point ceilings per category. The four ceilings add up to 100.
const (
	MaxSocialPoints   = 30
	MaxAthleticPoints = 30
	MaxMarketPoints   = 20
	MaxBrandPoints    = 20
)

// Sport tier values; higher tiers see more NIL opportunities.
var sportTiers = map[string]int{
	"football":   10,
	"basketball": 10,
	"baseball":   9,
	"softball":   9,
	"soccer":     8,
	"volleyball": 7,
	"hockey":     7,
	"track":      6,
	"wrestling":  6,
	"gymnastics": 6,
	"swimming":   5,
	"lacrosse":   5,
	"golf":       4,
	"tennis":     4,
}

const defaultSportTier = 3

var positionValues = map[string]int{
	"qb":             5,
	"quarterback":    5,
	"rb":             4,
	"running back":   4,
	"wr":             4,
	"wide receiver":  4,
	"te":             3,
	"tight end":      3,
	"pg":             5,
	"point guard":    5,
	"sg":             4,
	"shooting guard": 4,
	"sf":             3,
	"small forward":  3,
	"pitcher":        5,
	"catcher":        4,
	"shortstop":      4,
}

const defaultPositionValue = 2

var stateNILMaturity = map[string]int{
	"CA": 8, "FL": 8, "TX": 8, "NY": 8, "GA": 8,
	"KY": 5, "OH": 5, "IN": 5, "TN": 5, "IL": 5, "PA": 5, "NC": 5, "MI": 5, "AZ": 5, "VA": 5,
}

const defaultStateMaturity = 2

func SportTier(sport string) int {
	if v, ok := sportTiers[strings.ToLower(strings.TrimSpace(sport))]; ok {
		return v
	}
	return defaultSportTier
}

func PositionValue(position string) int {
	if v, ok := positionValues[strings.ToLower(strings.TrimSpace(position))]; ok {
		return v
	}
	return defaultPositionValue
}

// SocialPoints scores followers (0-12), engagement (0-10), platform count
// (0-4) and verified accounts (0-4).
func SocialPoints(f scoring.Features) int {
	points := 0

	followers := f.Int("total_followers")
	switch {
	case followers >= 100000:
		points += 12
	case followers >= 50000:
		points += 10
	case followers >= 25000:
		points += 8
	case followers >= 10000:
		points += 6
	case followers >= 5000:
		points += 4
	case followers >= 1000:
		points += 2
	}

	platforms := f.Int("platform_count")
	if platforms > 0 {
		engagement := f.Float("avg_engagement")
		switch {
		case engagement >= 8:
			points += 10
		case engagement >= 6:
			points += 8
		case engagement >= 4:
			points += 6
		case engagement >= 3:
			points += 4
		case engagement >= 2:
			points += 2
		}
	}

	points += min(platforms, 4)
	points += min(f.Int("verified_count")*2, 4)

	return min(points, MaxSocialPoints)
}

// AthleticPoints scores sport tier (0-10), position (0-5), best national
// ranking (0-10) and division (1-5).
func AthleticPoints(f scoring.Features) int {
	points := SportTier(f.String("sport")) + PositionValue(f.String("position"))

	if best := f.Int("best_ranking"); best > 0 {
		switch {
		case best <= 50:
			points += 10
		case best <= 100:
			points += 8
		case best <= 300:
			points += 6
		case best <= 500:
			points += 4
		case best <= 1000:
			points += 2
		}
	}

	switch f.String("division") {
	case LevelD1:
		points += 5
	case LevelD2:
		points += 3
	case LevelD3, LevelNAIA, LevelJUCO:
		points += 2
	default:
		points += 1
	}

	return min(points, MaxAthleticPoints)
}

// MarketPoints scores state NIL maturity (2-8), market size (2-7) and school
// tier (1-5).
func MarketPoints(f scoring.Features) int {
	points := defaultStateMaturity
	if v, ok := stateNILMaturity[strings.ToUpper(f.String("state"))]; ok {
		points = v
	}

	switch f.String("market_size") {
	case MarketLarge:
		points += 7
	case MarketMedium:
		points += 4
	default:
		points += 2
	}

	switch f.String("division") {
	case LevelD1:
		points += 5
	case LevelD2:
		points += 3
	default:
		points += 1
	}

	return min(points, MaxMarketPoints)
}

// BrandPoints scores active deals (0-8), lifetime earnings (0-6), completion
// rate (0-3) and content samples (0-3).
func BrandPoints(f scoring.Features) int {
	points := min(f.Int("active_deals")*2, 8)

	earnings := f.Float("total_earnings")
	switch {
	case earnings >= 50000:
		points += 6
	case earnings >= 25000:
		points += 5
	case earnings >= 10000:
		points += 4
	case earnings >= 5000:
		points += 3
	case earnings >= 1000:
		points += 2
	case earnings > 0:
		points += 1
	}

	if total := f.Int("total_deals"); total > 0 {
		rate := float64(f.Int("completed_deals")) / float64(total)
		switch {
		case rate >= 0.9:
			points += 3
		case rate >= 0.7:
			points += 2
		case rate >= 0.5:
			points += 1
		}
	}

	samples := f.Int("content_samples")
	switch {
	case samples >= 5:
		points += 3
	case samples >= 3:
		points += 2
	case samples >= 1:
		points += 1
	}

	return min(points, MaxBrandPoints)
}

// pointsEvaluator turns a points function into a 0-100 dimension evaluator.
func pointsEvaluator(points func(scoring.Features) int, ceiling int) scoring.Evaluator {
	return func(f scoring.Features) scoring.Evaluation {
		return scoring.Evaluation{Score: float64(points(f)) * 100 / float64(ceiling)}
	}
}
