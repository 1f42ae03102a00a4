// internal/scoring/matching/factors.go
package matching

import (
	"fmt"
	"math"
	"strings"

	"chatnil-workers/internal/scoring"
)

// Factor names.
const (
	FactorSportAlignment       = "sport_alignment"
	FactorGeographicMatch      = "geographic_match"
	FactorSchoolDivision       = "school_division"
	FactorFollowerCount        = "follower_count"
	FactorEngagementRate       = "engagement_rate"
	FactorAudienceDemographics = "audience_demographics"
	FactorHobbyOverlap         = "hobby_overlap"
	FactorBrandAffinity        = "brand_affinity"
	FactorPastNILSuccess       = "past_nil_success"
	FactorContentQuality       = "content_quality"
	FactorResponseRate         = "response_rate"
)

const (
	defaultFollowerTarget   = 1000
	defaultEngagementTarget = 2.0
)

// factor scores a pair in points out of Max. Weight is Max/100.
type factor struct {
	Name   string
	Max    float64
	Points func(f scoring.Features) (float64, []string)
}

var factors = []factor{
	{FactorSportAlignment, 10, sportAlignment},
	{FactorGeographicMatch, 10, geographicMatch},
	{FactorSchoolDivision, 5, schoolDivision},
	{FactorFollowerCount, 10, followerCount},
	{FactorEngagementRate, 15, engagementRate},
	{FactorAudienceDemographics, 5, onboardedPoints(4, 3)},
	{FactorHobbyOverlap, 15, hobbyOverlap},
	{FactorBrandAffinity, 10, brandAffinity},
	{FactorPastNILSuccess, 10, pastNILSuccess},
	{FactorContentQuality, 5, contentQuality},
	{FactorResponseRate, 5, onboardedPoints(4, 3)},
}

func (fc factor) evaluator() scoring.Evaluator {
	return func(f scoring.Features) scoring.Evaluation {
		points, reasons := fc.Points(f)
		points = math.Max(0, math.Min(fc.Max, points))
		return scoring.Evaluation{Score: points / fc.Max * 100, Reasons: reasons}
	}
}

func sportAlignment(f scoring.Features) (float64, []string) {
	sport := f.String("sport")
	interests := f.Strings("interests")

	switch {
	case len(interests) == 0:
		if sport != "" {
			return 8, []string{fmt.Sprintf("%s athlete", sport)}
		}
		return 0, nil
	case sport != "" && containsFold(interests, sport):
		return 10, []string{fmt.Sprintf("%s athlete matches campaign focus", sport)}
	case sport != "":
		return 5, []string{fmt.Sprintf("%s athlete available", sport)}
	}
	return 0, nil
}

func geographicMatch(f scoring.Features) (float64, []string) {
	state := f.String("state")
	focus := f.Strings("focus")

	switch {
	case len(focus) == 0:
		if state != "" {
			return 7, []string{fmt.Sprintf("Based in %s", state)}
		}
		if f.String("school") != "" {
			return 5, nil
		}
		return 0, nil
	case state != "" && containsFold(focus, state):
		return 10, []string{fmt.Sprintf("Located in target region (%s)", state)}
	case state != "":
		return 4, nil
	}
	return 0, nil
}

func schoolDivision(f scoring.Features) (float64, []string) {
	switch f.String("division") {
	case "D1":
		return 5, []string{"Division 1 athlete"}
	case "D2":
		return 3, nil
	case "D3":
		return 2, nil
	}
	return 0, nil
}

func followerCount(f scoring.Features) (float64, []string) {
	followers := f.Float("followers")
	target := f.Float("target_min")
	hasTarget := target > 0
	if !hasTarget {
		target = defaultFollowerTarget
	}

	switch {
	case followers >= target:
		ratio := followers / target
		points := 10.0
		if ratio < 2 {
			points = 5 + (ratio-1)*5
		}
		return points, []string{fmt.Sprintf("%s followers", formatNumber(followers))}
	case followers > 0:
		partialMax := 8.0
		if hasTarget {
			partialMax = 5
		}
		var reasons []string
		if followers >= 500 && !hasTarget {
			reasons = append(reasons, fmt.Sprintf("%s followers", formatNumber(followers)))
		}
		return math.Min(partialMax, followers/target*partialMax), reasons
	}
	return 2, nil
}

func engagementRate(f scoring.Features) (float64, []string) {
	rate := f.Float("engagement")
	target := f.Float("target_min")
	hasTarget := target > 0
	if !hasTarget {
		target = defaultEngagementTarget
	}

	switch {
	case rate >= target:
		ratio := rate / target
		points := 15.0
		if ratio < 2 {
			points = 8 + (ratio-1)*7
		}
		return points, []string{fmt.Sprintf("%.1f%% engagement rate", rate)}
	case rate > 0:
		partialMax := 10.0
		if hasTarget {
			partialMax = 7
		}
		return math.Min(partialMax, rate/target*partialMax), nil
	}
	return 3, nil
}

func hobbyOverlap(f scoring.Features) (float64, []string) {
	hobbies := f.Strings("hobbies")
	interests := f.Strings("interests")

	if len(interests) == 0 {
		if len(hobbies) == 0 {
			return 5, nil
		}
		return math.Min(10, 5+float64(len(hobbies))*2),
			[]string{"Active interests: " + strings.Join(firstN(hobbies, 3), ", ")}
	}

	var shared []string
	for _, h := range hobbies {
		for _, i := range interests {
			if overlaps(h, i) {
				shared = append(shared, h)
				break
			}
		}
	}
	switch {
	case len(shared) > 0:
		return math.Min(15, float64(len(shared))*5),
			[]string{"Shared interests: " + strings.Join(firstN(shared, 3), ", ")}
	case len(hobbies) > 0:
		return 4, nil
	}
	return 0, nil
}

func brandAffinity(f scoring.Features) (float64, []string) {
	affinity := f.Strings("affinity")
	company := f.String("company")
	interests := f.Strings("interests")

	if company != "" && containsFold(affinity, company) {
		return 10, []string{fmt.Sprintf("Already follows %s", company)}
	}
	if len(affinity) > 0 {
		for _, brand := range affinity {
			for _, interest := range interests {
				if interest != "" && strings.Contains(strings.ToLower(brand), strings.ToLower(interest)) {
					return 6, []string{"Interested in similar brands"}
				}
			}
		}
		return 4, nil
	}
	if f.Bool("onboarded") {
		return 3, nil
	}
	return 0, nil
}

func pastNILSuccess(f scoring.Features) (float64, []string) {
	if f.Bool("has_preferences") {
		if deals := f.Int("previous_deals"); deals > 0 {
			return 10, []string{fmt.Sprintf("%d previous NIL deals", deals)}
		}
		if f.Bool("interested") {
			return 6, []string{"Actively seeking NIL opportunities"}
		}
		return 4, nil
	}
	if f.Bool("onboarded") {
		return 5, []string{"Verified athlete on platform"}
	}
	return 3, nil
}

func contentQuality(f scoring.Features) (float64, []string) {
	samples := f.Int("content_samples")
	switch {
	case samples >= 3:
		return 5, []string{fmt.Sprintf("%d content samples available", samples)}
	case samples > 0:
		return 3, nil
	case f.Bool("onboarded"):
		return 2, nil
	}
	return 0, nil
}

func onboardedPoints(onboarded, otherwise float64) func(scoring.Features) (float64, []string) {
	return func(f scoring.Features) (float64, []string) {
		if f.Bool("onboarded") {
			return onboarded, nil
		}
		return otherwise, nil
	}
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(s)) {
			return true
		}
	}
	return false
}

func overlaps(a, b string) bool {
	a, b = strings.ToLower(a), strings.ToLower(b)
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func firstN(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func formatNumber(n float64) string {
	switch {
	case n >= 1000000:
		return fmt.Sprintf("%.1fM", n/1000000)
	case n >= 1000:
		return fmt.Sprintf("%.1fK", n/1000)
	}
	return fmt.Sprintf("%d", int(n))
}
