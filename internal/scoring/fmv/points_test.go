// internal/scoring/fmv/points_test.go
package fmv

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"chatnil-workers/internal/scoring"
)

func TestSocialPoints(t *testing.T) {
	tests := []struct {
		name     string
		features scoring.Features
		want     int
	}{
		{"nothing", scoring.Features{}, 0},
		{"small following", scoring.Features{"total_followers": 1500, "avg_engagement": 2.1, "platform_count": 1}, 2 + 2 + 1},
		{"engagement ignored without platforms", scoring.Features{"avg_engagement": 9.0}, 0},
		{"capped", scoring.Features{"total_followers": 500000, "avg_engagement": 12.0, "platform_count": 6, "verified_count": 3}, 30},
		{"string numbers from json", scoring.Features{"total_followers": "25000", "avg_engagement": "4", "platform_count": 2}, 8 + 6 + 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SocialPoints(tt.features))
		})
	}
}

func TestAthleticPoints(t *testing.T) {
	tests := []struct {
		name     string
		features scoring.Features
		want     int
	}{
		{"defaults", scoring.Features{}, 3 + 2 + 1},
		{"basketball point guard ranked 40 d1", scoring.Features{"sport": "Basketball", "position": "Point Guard", "best_ranking": 40, "division": LevelD1}, 30},
		{"tennis juco ranked 900", scoring.Features{"sport": "tennis", "best_ranking": 900, "division": LevelJUCO}, 4 + 2 + 2 + 2},
		{"unranked beyond 1000", scoring.Features{"sport": "soccer", "best_ranking": 5000, "division": LevelD2}, 8 + 2 + 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AthleticPoints(tt.features))
		})
	}
}

func TestMarketPoints(t *testing.T) {
	assert.Equal(t, 20, MarketPoints(scoring.Features{"state": "tx", "market_size": MarketLarge, "division": LevelD1}))
	assert.Equal(t, 5+4+3, MarketPoints(scoring.Features{"state": "KY", "market_size": MarketMedium, "division": LevelD2}))
	assert.Equal(t, 2+2+1, MarketPoints(scoring.Features{}))
}

func TestBrandPoints(t *testing.T) {
	tests := []struct {
		name     string
		features scoring.Features
		want     int
	}{
		{"none", scoring.Features{}, 0},
		{"one small deal", scoring.Features{"active_deals": 1, "total_deals": 1, "total_earnings": 250.0, "content_samples": 1}, 2 + 1 + 1},
		{"completed portfolio", scoring.Features{"total_deals": 10, "completed_deals": 9, "total_earnings": 60000.0, "content_samples": 7}, 6 + 3 + 3},
		{"capped", scoring.Features{"active_deals": 6, "total_deals": 6, "completed_deals": 6, "total_earnings": 90000.0, "content_samples": 9}, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BrandPoints(tt.features))
		})
	}
}

func TestSchoolInference(t *testing.T) {
	assert.Equal(t, "KY", ExtractState("University of Kentucky"))
	assert.Equal(t, "NC", ExtractState("North Carolina State"))
	assert.Equal(t, "VA", ExtractState("West Virginia University"))
	assert.Equal(t, StateOther, ExtractState("Gonzaga"))

	assert.Equal(t, LevelD1, ExtractSchoolLevel("Ohio State University"))
	assert.Equal(t, LevelD2, ExtractSchoolLevel("Division II"))
	assert.Equal(t, LevelD3, ExtractSchoolLevel("Division III"))
	assert.Equal(t, LevelNAIA, ExtractSchoolLevel("naia"))
	assert.Equal(t, LevelHighSchool, ExtractSchoolLevel("Lexington High School"))
	assert.Equal(t, LevelUnknown, ExtractSchoolLevel("Gonzaga"))
	assert.Equal(t, LevelUnknown, ExtractSchoolLevel(""))

	assert.Equal(t, MarketLarge, EstimateSchoolMarketSize("University of Miami"))
	assert.Equal(t, MarketMedium, EstimateSchoolMarketSize("Nashville Christian"))
	assert.Equal(t, MarketMedium, EstimateSchoolMarketSize("Kansas State University"))
	assert.Equal(t, MarketSmall, EstimateSchoolMarketSize("Gonzaga"))
}
