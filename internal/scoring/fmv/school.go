// internal/scoring/fmv/school.go
package fmv

import "strings"

// School levels.
const (
	LevelD1         = "D1"
	LevelD2         = "D2"
	LevelD3         = "D3"
	LevelNAIA       = "NAIA"
	LevelJUCO       = "JUCO"
	LevelHighSchool = "High School"
	LevelUnknown    = "Unknown"
)

// Market sizes.
const (
	MarketLarge  = "large"
	MarketMedium = "medium"
	MarketSmall  = "small"
)

// StateOther is returned when no state can be read from a school name.
const StateOther = "OTHER"

type stateName struct {
	name string
	code string
}

// Multi-word names come first so "north carolina" is not read as another state.
var stateNames = []stateName{
	{"north carolina", "NC"},
	{"new york", "NY"},
	{"kentucky", "KY"},
	{"ohio", "OH"},
	{"indiana", "IN"},
	{"tennessee", "TN"},
	{"california", "CA"},
	{"texas", "TX"},
	{"florida", "FL"},
	{"illinois", "IL"},
	{"pennsylvania", "PA"},
	{"michigan", "MI"},
	{"georgia", "GA"},
	{"arizona", "AZ"},
	{"virginia", "VA"},
}

var (
	largeCities  = []string{"los angeles", "new york", "chicago", "houston", "phoenix", "philadelphia", "san diego", "dallas", "san francisco", "boston", "atlanta", "miami"}
	mediumCities = []string{"columbus", "indianapolis", "nashville", "austin", "denver", "seattle", "detroit", "minneapolis", "charlotte", "portland"}
)

// ExtractState returns the two-letter state code named in a school name, e.g.
// "University of Kentucky" is KY.
func ExtractState(schoolName string) string {
	lower := strings.ToLower(schoolName)
	for _, s := range stateNames {
		if strings.Contains(lower, s.name) {
			return s.code
		}
	}
	return StateOther
}

// ExtractSchoolLevel guesses the competitive level from a school name or an
// explicit division string. Names containing university, state or college
// default to D1.
func ExtractSchoolLevel(schoolName string) string {
	lower := strings.ToLower(strings.TrimSpace(schoolName))
	switch {
	case lower == "":
		return LevelUnknown
	case containsAny(lower, "d1", "division 1"):
		return LevelD1
	case containsAny(lower, "d2", "division 2"):
		return LevelD2
	case containsAny(lower, "d3", "division 3", "division iii"):
		return LevelD3
	case strings.Contains(lower, "division ii"):
		return LevelD2
	case strings.Contains(lower, "division i"):
		return LevelD1
	case strings.Contains(lower, "naia"):
		return LevelNAIA
	case containsAny(lower, "juco", "junior college"):
		return LevelJUCO
	case containsAny(lower, "high school", "hs"):
		return LevelHighSchool
	case containsAny(lower, "university", "state", "college"):
		return LevelD1
	}
	return LevelUnknown
}

func EstimateSchoolMarketSize(schoolName string) string {
	lower := strings.ToLower(schoolName)
	switch {
	case containsAny(lower, largeCities...):
		return MarketLarge
	case containsAny(lower, mediumCities...):
		return MarketMedium
	case strings.Contains(lower, "university") && strings.Contains(lower, "state"):
		return MarketMedium
	}
	return MarketSmall
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
