// internal/scoring/fmv/insights.go
package fmv

import (
	"fmt"
	"sort"
	"strconv"
)

const maxInsights = 5

// Suggestion priorities.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

var priorityOrder = map[string]int{PriorityHigh: 0, PriorityMedium: 1, PriorityLow: 2}

// Suggestion is one actionable way to raise the score.
type Suggestion struct {
	Area     string `json:"area"`
	Current  string `json:"current"`
	Target   string `json:"target"`
	Action   string `json:"action"`
	Impact   string `json:"impact"`
	Priority string `json:"priority"`
}

// Suggestions returns up to five suggestions, high priority first.
func Suggestions(pts Points, p Profile) []Suggestion {
	out := make([]Suggestion, 0)
	platforms := len(p.SocialStats)

	if pts.Social < 20 {
		followers := p.TotalFollowers()
		if followers < 5000 {
			out = append(out, Suggestion{
				Area:     DimensionSocial,
				Current:  formatCount(followers) + " followers",
				Target:   "5,000 followers",
				Action:   "Post 3-4x per week, use trending hashtags, collaborate with other athletes, and engage with your audience consistently.",
				Impact:   "+4 points",
				Priority: PriorityHigh,
			})
		} else if followers < 10000 {
			out = append(out, Suggestion{
				Area:     DimensionSocial,
				Current:  formatCount(followers) + " followers",
				Target:   "10,000 followers",
				Action:   "Increase posting frequency, create more video content, and cross-promote on multiple platforms.",
				Impact:   "+2 points",
				Priority: PriorityHigh,
			})
		}

		if platforms == 0 {
			out = append(out, Suggestion{
				Area:     DimensionSocial,
				Current:  "No social media platforms added",
				Target:   "Add 3+ platforms",
				Action:   "Add your Instagram, TikTok, and Twitter accounts to your profile with verified follower counts.",
				Impact:   "+3 points",
				Priority: PriorityHigh,
			})
		} else if platforms < 3 {
			label := "platforms"
			if platforms == 1 {
				label = "platform"
			}
			out = append(out, Suggestion{
				Area:     DimensionSocial,
				Current:  fmt.Sprintf("%d %s", platforms, label),
				Target:   "3+ platforms",
				Action:   "Expand to additional social media platforms like TikTok, YouTube, or Twitter to diversify your reach.",
				Impact:   fmt.Sprintf("+%d points", 3-platforms),
				Priority: PriorityMedium,
			})
		}

		if platforms > 0 {
			if avg := p.AvgEngagement(); avg < 4 {
				out = append(out, Suggestion{
					Area:     DimensionSocial,
					Current:  fmt.Sprintf("%.1f%% engagement rate", avg),
					Target:   "4%+ engagement rate",
					Action:   "Ask questions in captions, respond to comments, create interactive content (polls, Q&As), and post when your audience is most active.",
					Impact:   "+4 points",
					Priority: PriorityMedium,
				})
			}
		}
	}

	if pts.Brand < 12 {
		if len(p.Deals) == 0 {
			out = append(out, Suggestion{
				Area:     DimensionBrand,
				Current:  "No NIL deals",
				Target:   "Complete your first NIL deal",
				Action:   "Reach out to local businesses, offer social media posts for $100-500, and use our matchmaking tool to find opportunities.",
				Impact:   "+2 points",
				Priority: PriorityHigh,
			})
		}
		if p.ContentSamples < 3 {
			out = append(out, Suggestion{
				Area:     DimensionBrand,
				Current:  fmt.Sprintf("%d content samples", p.ContentSamples),
				Target:   "5+ content samples",
				Action:   "Add your best social media posts, videos, and sponsored content to your portfolio to showcase your content quality.",
				Impact:   "+3 points",
				Priority: PriorityMedium,
			})
		}
	}

	if pts.Athletic < 20 && len(p.Rankings) == 0 {
		out = append(out, Suggestion{
			Area:     DimensionAthletic,
			Current:  "No national rankings",
			Target:   "Get ranked by recruiting services",
			Action:   "Create profiles on 247Sports, Rivals, and On3. Submit highlight videos and reach out to recruiting analysts.",
			Impact:   "+8 points",
			Priority: PriorityLow,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return priorityOrder[out[i].Priority] < priorityOrder[out[j].Priority]
	})
	if len(out) > maxInsights {
		out = out[:maxInsights]
	}
	return out
}

// Strengths lists up to five things the athlete already does well.
func Strengths(pts Points, p Profile) []string {
	out := make([]string, 0)

	if pts.Social >= 20 {
		if followers := p.TotalFollowers(); followers >= 10000 {
			out = append(out, fmt.Sprintf("Strong social media presence (%.1fK followers)", float64(followers)/1000))
		}
		if len(p.SocialStats) > 0 {
			if avg := p.AvgEngagement(); avg >= 4 {
				out = append(out, fmt.Sprintf("High engagement rate (%.1f%%)", avg))
			}
		}
	}

	if pts.Athletic >= 20 {
		if p.PrimarySport != "" && SportTier(p.PrimarySport) >= 9 {
			out = append(out, fmt.Sprintf("Premium sport (%s)", p.PrimarySport))
		}
		if p.Position != "" && PositionValue(p.Position) >= 4 {
			out = append(out, fmt.Sprintf("High-value position (%s)", p.Position))
		}
	}

	if pts.Market >= 15 {
		out = append(out, "Strong local NIL market")
	}
	if pts.Brand >= 15 {
		out = append(out, "Active NIL deal portfolio")
	}

	if len(out) > maxInsights {
		out = out[:maxInsights]
	}
	return out
}

// Weaknesses lists up to five gaps.
func Weaknesses(pts Points, p Profile) []string {
	out := make([]string, 0)
	if pts.Social < 15 {
		out = append(out, "Limited social media presence")
	}
	if len(p.SocialStats) < 2 {
		out = append(out, "Low platform diversity")
	}
	if pts.Athletic < 15 {
		out = append(out, "No national rankings")
	}
	if pts.Market < 10 {
		out = append(out, "Small market area")
	}
	if pts.Brand < 10 {
		out = append(out, "No NIL deal experience")
	}
	return out
}

// formatCount renders n with thousands separators.
func formatCount(n int) string {
	s := strconv.Itoa(n)
	if n < 0 {
		return "-" + formatCount(-n)
	}
	if len(s) <= 3 {
		return s
	}
	lead := len(s) % 3
	if lead == 0 {
		lead = 3
	}
	out := s[:lead]
	for i := lead; i < len(s); i += 3 {
		out += "," + s[i:i+3]
	}
	return out
}
