// internal/workers/notifications/match-stream/models.go

// Package matchstream pushes new agency/athlete matches to a subscriber over
// server-sent events. Each connection runs its own poller against Postgres and
// remembers the last check per subscriber in Redis.
package matchstream

import (
	"fmt"
	"strings"
	"time"

	"chatnil-workers/internal/scoring/matching"
)

// Subscriber roles.
const (
	RoleAthlete = "athlete"
	RoleAgency  = "agency"
	RoleBrand   = "brand"
)

// Event names written to the stream.
const (
	EventConnected = "connected"
	EventNewMatch  = "new_match"
	EventHeartbeat = "heartbeat"
	EventError     = "error"
)

// Match notification kinds.
const (
	TypeCampaignMatch = "campaign_match"
	TypeAthleteMatch  = "athlete_match"
)

type Subscriber struct {
	ID        string `db:"id"`
	Role      string `db:"role"`
	FirstName string `db:"first_name"`
	LastName  string `db:"last_name"`
}

// SeesAthletes reports whether the subscriber is notified about athletes
// rather than agencies.
func (s Subscriber) SeesAthletes() bool {
	return s.Role == RoleAgency || s.Role == RoleBrand
}

// Match is one agency_athlete_matches row joined with the name of the party
// the subscriber is being told about.
type Match struct {
	ID                  string
	AgencyID            string
	AthleteID           string
	Score               int
	Tier                string
	Reasons             []string
	CreatedAt           time.Time
	CounterpartName     string
	CounterpartUsername string
}

// Event is one SSE frame.
type Event struct {
	Name string
	Data interface{}
}

type ConnectedPayload struct {
	UserID  string `json:"userId"`
	Role    string `json:"role"`
	Message string `json:"message"`
}

type HeartbeatPayload struct {
	Timestamp time.Time `json:"timestamp"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

type MatchPayload struct {
	Type            string    `json:"type"`
	MatchID         string    `json:"matchId"`
	AthleteID       string    `json:"athleteId,omitempty"`
	AthleteUsername string    `json:"athleteUsername,omitempty"`
	AthleteName     string    `json:"athleteName,omitempty"`
	AgencyID        string    `json:"agencyId,omitempty"`
	CampaignName    string    `json:"campaignName,omitempty"`
	MatchScore      int       `json:"matchScore"`
	MatchTier       string    `json:"matchTier"`
	MatchReasons    []string  `json:"matchReasons"`
	Message         string    `json:"message"`
	Timestamp       time.Time `json:"timestamp"`
}

// StreamTier maps a stored tier to one the client knows. Anything unknown is low.
func StreamTier(tier string) string {
	return matching.NormalizeTier(tier)
}

// NewMatchEvent builds the new_match frame for sub. Replayed matches (sent on
// connect) get a slightly different message from live ones.
func NewMatchEvent(sub Subscriber, m Match, replay bool) Event {
	reasons := m.Reasons
	if reasons == nil {
		reasons = []string{}
	}
	p := MatchPayload{
		MatchID:      m.ID,
		MatchScore:   m.Score,
		MatchTier:    StreamTier(m.Tier),
		MatchReasons: reasons,
		Timestamp:    m.CreatedAt,
	}

	if sub.SeesAthletes() {
		name := displayName(m.CounterpartName, "New Athlete")
		p.Type = TypeAthleteMatch
		p.AthleteID = m.AthleteID
		p.AthleteUsername = m.CounterpartUsername
		p.AthleteName = name
		if replay {
			p.Message = fmt.Sprintf("Athlete match: %s (%d%% match)", name, m.Score)
		} else {
			p.Message = fmt.Sprintf("New athlete match: %s (%d%% match)", name, m.Score)
		}
	} else {
		name := displayName(m.CounterpartName, "Agency")
		p.Type = TypeCampaignMatch
		p.AgencyID = m.AgencyID
		p.CampaignName = name
		if replay {
			p.Message = fmt.Sprintf("Match from %s (%d%% match)", name, m.Score)
		} else {
			p.Message = fmt.Sprintf("New match from %s (%d%% match)", name, m.Score)
		}
	}
	return Event{Name: EventNewMatch, Data: p}
}

func displayName(name, fallback string) string {
	if n := strings.TrimSpace(name); n != "" {
		return n
	}
	return fallback
}
