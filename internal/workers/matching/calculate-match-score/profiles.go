// internal/workers/matching/calculate-match-score/profiles.go
package calculatematchscore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"chatnil-workers/internal/common/logger"
	"chatnil-workers/internal/scoring/matching"

	"github.com/redis/go-redis/v9"
)

// ProfileCacheKey is the Redis key for a cached athlete profile.
func ProfileCacheKey(athleteID string) string {
	return "athlete:profile:" + athleteID
}

// ProfileStore loads athletes from Redis, falling back to Postgres and
// refilling the cache. A missing athlete is (nil, nil).
type ProfileStore struct {
	db     *sql.DB
	redis  redis.Cmdable
	ttl    time.Duration
	logger logger.Logger
}

func NewProfileStore(db *sql.DB, rdb redis.Cmdable, ttl time.Duration, log logger.Logger) *ProfileStore {
	return &ProfileStore{db: db, redis: rdb, ttl: ttl, logger: log}
}

type storedSocialStat struct {
	Platform       string  `json:"platform"`
	Followers      int     `json:"followers"`
	EngagementRate float64 `json:"engagement_rate"`
}

func (s *ProfileStore) Athlete(ctx context.Context, athleteID string) (*matching.Athlete, error) {
	cacheKey := ProfileCacheKey(athleteID)
	if s.redis != nil {
		val, err := s.redis.Get(ctx, cacheKey).Result()
		switch {
		case err == nil:
			var athlete matching.Athlete
			if err := json.Unmarshal([]byte(val), &athlete); err == nil {
				return &athlete, nil
			}
		case !errors.Is(err, redis.Nil):
			s.logger.Warn("profile cache unavailable", map[string]interface{}{
				"athleteId": athleteID,
				"error":     err,
			})
		}
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(primary_sport, ''), COALESCE(school_name, ''), COALESCE(state, ''), COALESCE(division, ''),
		       hobbies, brand_affinity, social_stats, nil_preferences,
		       jsonb_array_length(content_types), onboarded
		FROM athlete_profiles WHERE athlete_id = $1`, athleteID)

	athlete := matching.Athlete{ID: athleteID}
	var hobbies, affinity, social, prefs []byte
	err := row.Scan(&athlete.PrimarySport, &athlete.SchoolName, &athlete.State, &athlete.Division,
		&hobbies, &affinity, &social, &prefs,
		&athlete.ContentSamples, &athlete.OnboardingCompleted)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(hobbies, &athlete.Hobbies); err != nil {
		athlete.Hobbies = []string{}
	}
	if err := json.Unmarshal(affinity, &athlete.BrandAffinity); err != nil {
		athlete.BrandAffinity = []string{}
	}
	var stats []storedSocialStat
	if err := json.Unmarshal(social, &stats); err == nil {
		athlete.SocialStats = make(map[string]matching.SocialStat, len(stats))
		for _, st := range stats {
			athlete.SocialStats[st.Platform] = matching.SocialStat{Followers: st.Followers, EngagementRate: st.EngagementRate}
		}
	}
	var p matching.NILPreferences
	if len(prefs) > 0 && string(prefs) != "{}" && json.Unmarshal(prefs, &p) == nil {
		athlete.NILPreferences = &p
	}

	if s.redis != nil {
		data, _ := json.Marshal(athlete)
		if err := s.redis.Set(ctx, cacheKey, data, s.ttl).Err(); err != nil {
			s.logger.Warn("failed to cache profile", map[string]interface{}{
				"athleteId": athleteID,
				"error":     err,
			})
		}
	}
	return &athlete, nil
}
