// internal/scoring/matching/profile.go
package matching

import (
	"regexp"
	"strings"
)

// TargetDemographics are an agency's optional audience minimums.
type TargetDemographics struct {
	FollowerMin   int     `json:"follower_min,omitempty"`
	EngagementMin float64 `json:"engagement_min,omitempty"`
}

type Agency struct {
	ID                 string              `json:"id"`
	CompanyName        string              `json:"company_name"`
	CampaignInterests  []string            `json:"campaign_interests"`
	GeographicFocus    []string            `json:"geographic_focus"`
	BrandValues        []string            `json:"brand_values"`
	TargetDemographics *TargetDemographics `json:"target_demographics,omitempty"`
}

// Interests is campaign interests followed by brand values.
func (a Agency) Interests() []string {
	out := make([]string, 0, len(a.CampaignInterests)+len(a.BrandValues))
	out = append(out, a.CampaignInterests...)
	return append(out, a.BrandValues...)
}

type SocialStat struct {
	Followers      int     `json:"followers"`
	EngagementRate float64 `json:"engagement_rate"`
}

type NILPreferences struct {
	PreviousDealsCount int  `json:"previous_deals_count"`
	InterestedInNIL    bool `json:"interested_in_nil"`
}

// Athlete is the matchable view of an athlete profile. SocialStats is keyed by
// platform name.
type Athlete struct {
	ID                  string                `json:"id"`
	PrimarySport        string                `json:"primary_sport"`
	SchoolName          string                `json:"school_name"`
	State               string                `json:"state,omitempty"`
	Division            string                `json:"division,omitempty"`
	SocialStats         map[string]SocialStat `json:"social_media_stats"`
	Hobbies             []string              `json:"hobbies"`
	BrandAffinity       []string              `json:"brand_affinity"`
	ContentSamples      int                   `json:"content_samples"`
	OnboardingCompleted bool                  `json:"onboarding_completed"`
	NILPreferences      *NILPreferences       `json:"nil_preferences,omitempty"`
}

var (
	followerPlatforms   = []string{"instagram", "tiktok", "twitter", "youtube", "facebook"}
	engagementPlatforms = []string{"instagram", "tiktok", "twitter", "youtube"}
)

func (a Athlete) TotalFollowers() int {
	total := 0
	for _, p := range followerPlatforms {
		if s, ok := a.SocialStats[p]; ok && s.Followers > 0 {
			total += s.Followers
		}
	}
	return total
}

// EngagementRate averages the platforms that report a rate.
func (a Athlete) EngagementRate() float64 {
	var sum float64
	count := 0
	for _, p := range engagementPlatforms {
		if s, ok := a.SocialStats[p]; ok && s.EngagementRate > 0 {
			sum += s.EngagementRate
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

type statePattern struct {
	code     string
	patterns []string
}

var statePatterns = []statePattern{
	{"KY", []string{"Kentucky", "Louisville", "Lexington"}},
	{"TN", []string{"Tennessee", "Vanderbilt", "Memphis"}},
	{"OH", []string{"Ohio State", "Cincinnati", "Cleveland"}},
	{"IN", []string{"Indiana", "Purdue", "Notre Dame"}},
	{"IL", []string{"Illinois", "Northwestern", "Chicago"}},
	{"CA", []string{"California", "USC", "UCLA", "Stanford", "Berkeley"}},
	{"TX", []string{"Texas", "Houston", "Dallas", "Austin"}},
	{"FL", []string{"Florida", "Miami", "Tampa"}},
	{"NY", []string{"New York", "Syracuse", "Cornell"}},
	{"PA", []string{"Pennsylvania", "Penn State", "Pittsburgh"}},
	{"MI", []string{"Michigan", "Detroit"}},
	{"NC", []string{"North Carolina", "Duke", "Carolina"}},
	{"GA", []string{"Georgia", "Atlanta"}},
}

var stateAbbrev = regexp.MustCompile(`\b([A-Z]{2})\b`)

// ResolvedState returns the explicit state, a state recognised in the school
// name, or a two-letter abbreviation found in it.
func (a Athlete) ResolvedState() string {
	if s := strings.TrimSpace(a.State); s != "" {
		return strings.ToUpper(s)
	}
	for _, sp := range statePatterns {
		for _, p := range sp.patterns {
			if strings.Contains(a.SchoolName, p) {
				return sp.code
			}
		}
	}
	if m := stateAbbrev.FindStringSubmatch(a.SchoolName); m != nil {
		return m[1]
	}
	return ""
}

var d1Keywords = []string{
	"State University", "University of", "Tech", "College",
	"Kentucky", "Tennessee", "Ohio State", "Michigan", "Texas",
	"Florida", "California", "Alabama", "Georgia", "Penn State",
}

// ResolvedDivision returns D1, D2, D3 or Unknown.
func (a Athlete) ResolvedDivision() string {
	switch strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(a.Division), " ", "")) {
	case "D1", "DIVISION1", "DIVISIONI":
		return "D1"
	case "D2", "DIVISION2", "DIVISIONII":
		return "D2"
	case "D3", "DIVISION3", "DIVISIONIII":
		return "D3"
	}
	for _, k := range d1Keywords {
		if strings.Contains(a.SchoolName, k) {
			return "D1"
		}
	}
	return "Unknown"
}
