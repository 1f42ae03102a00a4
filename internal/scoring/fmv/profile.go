// internal/scoring/fmv/profile.go
package fmv

import (
	"strings"

	"chatnil-workers/internal/scoring"
)

// SocialStat is one social platform account.
type SocialStat struct {
	Platform       string  `json:"platform"`
	Followers      int     `json:"followers"`
	EngagementRate float64 `json:"engagement_rate"`
	Verified       bool    `json:"verified"`
}

// Deal is an NIL deal as far as valuation cares.
type Deal struct {
	Status             string  `json:"status"`
	CompensationAmount float64 `json:"compensation_amount"`
}

// Ranking is an external recruiting ranking. OverallRanking of 0 means unranked.
type Ranking struct {
	Source         string `json:"source,omitempty"`
	OverallRanking int    `json:"overall_ranking"`
}

// Profile is everything the calculator reads about an athlete. State, Division
// and MarketSize are inferred from SchoolName when empty.
type Profile struct {
	AthleteID      string       `json:"athlete_id"`
	PrimarySport   string       `json:"primary_sport"`
	Position       string       `json:"position"`
	SchoolName     string       `json:"school_name"`
	State          string       `json:"state,omitempty"`
	Division       string       `json:"division,omitempty"`
	MarketSize     string       `json:"market_size,omitempty"`
	ContentSamples int          `json:"content_samples"`
	SocialStats    []SocialStat `json:"social_stats"`
	Deals          []Deal       `json:"nil_deals"`
	Rankings       []Ranking    `json:"external_rankings"`
	IsPublicScore  bool         `json:"is_public_score"`
}

func (p Profile) TotalFollowers() int {
	total := 0
	for _, s := range p.SocialStats {
		if s.Followers > 0 {
			total += s.Followers
		}
	}
	return total
}

// AvgEngagement is the mean engagement rate across platforms, 0 with none.
func (p Profile) AvgEngagement() float64 {
	if len(p.SocialStats) == 0 {
		return 0
	}
	var sum float64
	for _, s := range p.SocialStats {
		if s.EngagementRate > 0 {
			sum += s.EngagementRate
		}
	}
	return sum / float64(len(p.SocialStats))
}

func (p Profile) VerifiedCount() int {
	n := 0
	for _, s := range p.SocialStats {
		if s.Verified {
			n++
		}
	}
	return n
}

// BestRanking returns the lowest positive overall ranking, or 0 when unranked.
func (p Profile) BestRanking() int {
	best := 0
	for _, r := range p.Rankings {
		if r.OverallRanking <= 0 {
			continue
		}
		if best == 0 || r.OverallRanking < best {
			best = r.OverallRanking
		}
	}
	return best
}

func (p Profile) ResolvedState() string {
	if s := strings.TrimSpace(p.State); s != "" {
		return strings.ToUpper(s)
	}
	return ExtractState(p.SchoolName)
}

func (p Profile) ResolvedDivision() string {
	if d := strings.TrimSpace(p.Division); d != "" {
		return ExtractSchoolLevel(d)
	}
	return ExtractSchoolLevel(p.SchoolName)
}

func (p Profile) ResolvedMarketSize() string {
	switch strings.ToLower(strings.TrimSpace(p.MarketSize)) {
	case MarketLarge:
		return MarketLarge
	case MarketMedium:
		return MarketMedium
	case MarketSmall:
		return MarketSmall
	}
	return EstimateSchoolMarketSize(p.SchoolName)
}

func (p Profile) dealCounts() (active, completed int, earnings float64) {
	for _, d := range p.Deals {
		switch strings.ToLower(d.Status) {
		case "active":
			active++
		case "completed":
			completed++
		}
		if d.CompensationAmount > 0 {
			earnings += d.CompensationAmount
		}
	}
	return active, completed, earnings
}

// Input flattens the profile into per-dimension feature bundles.
func (p Profile) Input() scoring.ScoreInput {
	active, completed, earnings := p.dealCounts()
	return scoring.ScoreInput{
		DimensionSocial: {
			"total_followers": p.TotalFollowers(),
			"avg_engagement":  p.AvgEngagement(),
			"platform_count":  len(p.SocialStats),
			"verified_count":  p.VerifiedCount(),
		},
		DimensionAthletic: {
			"sport":        p.PrimarySport,
			"position":     p.Position,
			"best_ranking": p.BestRanking(),
			"division":     p.ResolvedDivision(),
		},
		DimensionMarket: {
			"state":       p.ResolvedState(),
			"market_size": p.ResolvedMarketSize(),
			"division":    p.ResolvedDivision(),
		},
		DimensionBrand: {
			"active_deals":    active,
			"completed_deals": completed,
			"total_deals":     len(p.Deals),
			"total_earnings":  earnings,
			"content_samples": p.ContentSamples,
		},
	}
}
