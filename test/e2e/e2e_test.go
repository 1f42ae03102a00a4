//go:build e2e

// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatnil-workers/internal/common/config"
	"chatnil-workers/internal/common/database"
	"chatnil-workers/internal/common/logger"
	"chatnil-workers/internal/migrations"
	"chatnil-workers/internal/scoring/fmv"
	"chatnil-workers/internal/scoring/matching"

	scoredeal "chatnil-workers/internal/workers/compliance/score-deal"
	queryscoringdata "chatnil-workers/internal/workers/data-access/query-scoring-data"
	"chatnil-workers/internal/workers/data-access/query-scoring-data/queries"
	recalculatefmv "chatnil-workers/internal/workers/fmv/recalculate-fmv"
	"chatnil-workers/internal/workers/fmv/store"
	calculatematchscore "chatnil-workers/internal/workers/matching/calculate-match-score"
	matchstream "chatnil-workers/internal/workers/notifications/match-stream"
	sendnotification "chatnil-workers/internal/workers/notifications/send-notification"
)

var zeebeClient zbc.Client

// env is every live dependency the workers need.
type env struct {
	cfg *config.Config
	pg  *database.PostgresClient
	es  *database.ElasticsearchClient
	rdb *database.RedisClient
	log logger.Logger
}

func TestMain(m *testing.M) {
	var err error
	zeebeClient, err = zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         "localhost:26500",
		UsePlaintextConnection: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create zeebe client: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()

	zeebeClient.Close()
	os.Exit(code)
}

func TestFullE2E(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	e := connectAll(ctx, t)
	require.NoError(t, migrations.Up(ctx, e.pg.DB, e.log))

	athleteID, agencyID := seedUsers(ctx, t, e.pg.DB)

	t.Run("send-notification", func(t *testing.T) { testSendNotification(ctx, t, e, athleteID) })
	t.Run("recalculate-fmv", func(t *testing.T) { testRecalculateFMV(ctx, t, e, athleteID) })
	t.Run("score-deal-compliance", func(t *testing.T) { testScoreDeal(ctx, t, e, athleteID) })
	t.Run("calculate-match-score", func(t *testing.T) { testMatchAndStream(ctx, t, e, agencyID, athleteID) })
	t.Run("query-scoring-data", func(t *testing.T) { testQueryScoringData(ctx, t, e, athleteID) })
}

// ==========================
// Connectivity and seed data
// ==========================

func connectAll(ctx context.Context, t *testing.T) *env {
	cfg, err := config.Load()
	require.NoError(t, err)

	cfg.Database.Postgres.Host = "localhost"
	cfg.Database.Redis.Address = "localhost:6379"
	cfg.Database.Elasticsearch.Addresses = []string{"http://localhost:9200"}

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err, "postgres connection failed")
	t.Cleanup(func() { pg.Close() })
	require.NoError(t, pg.Ping(ctx), "postgres ping failed")

	rdb, err := database.NewRedis(cfg.Database.Redis)
	require.NoError(t, err, "redis client creation failed")
	t.Cleanup(func() { rdb.Close() })
	require.NoError(t, rdb.Ping(ctx), "redis ping failed")

	es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	require.NoError(t, err, "elasticsearch client creation failed")
	require.NoError(t, es.Ping(ctx), "elasticsearch ping failed")

	_, err = zeebeClient.NewTopologyCommand().Send(ctx)
	require.NoError(t, err, "zeebe topology request failed")

	return &env{cfg: cfg, pg: pg, es: es, rdb: rdb, log: logger.NewTestLogger(t)}
}

func seedUsers(ctx context.Context, t *testing.T, db *sql.DB) (athleteID, agencyID string) {
	athleteID = "e2e-athlete-" + uuid.NewString()[:8]
	agencyID = "e2e-agency-" + uuid.NewString()[:8]

	_, err := db.ExecContext(ctx, `
		INSERT INTO users (id, role, first_name, last_name, username, email)
		VALUES ($1, 'athlete', 'Jordan', 'Reyes', $2, $3),
		       ($4, 'agency', 'Peak', 'Sports', $5, $6)`,
		athleteID, athleteID, athleteID+"@example.com",
		agencyID, agencyID, agencyID+"@example.com")
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, `
		INSERT INTO athlete_profiles (athlete_id, primary_sport, position, school_name, state, hobbies, brand_affinity)
		VALUES ($1, 'Basketball', 'Guard', 'Kentucky', 'KY', '["gaming"]', '["apparel"]')`, athleteID)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, `
		INSERT INTO nil_deals (id, athlete_id, third_party_name, deal_type, compensation_amount)
		VALUES ($1, $2, 'Local Apparel', 'social_media', 300)`, "deal-"+athleteID, athleteID)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Exec(`DELETE FROM users WHERE id IN ($1, $2)`, athleteID, agencyID)
	})
	return athleteID, agencyID
}

// ==========================
// Worker tests
// ==========================

func newDispatcher(e *env) *sendnotification.Dispatcher {
	cfg := sendnotification.ConfigFrom(e.cfg.Notifications, config.GetWorkerConfig(e.cfg, sendnotification.TaskType))
	return sendnotification.NewDispatcher(cfg, e.pg.DB, nil, nil, e.log)
}

func testSendNotification(ctx context.Context, t *testing.T, e *env, athleteID string) {
	cfg := sendnotification.ConfigFrom(e.cfg.Notifications, config.GetWorkerConfig(e.cfg, sendnotification.TaskType))
	h := sendnotification.NewHandler(cfg, newDispatcher(e), e.log)

	out, err := h.Execute(ctx, fmt.Sprintf(`{"userId": %q, "type": "share_score", "data": {"score": 74}}`, athleteID))
	require.NoError(t, err)
	assert.Equal(t, sendnotification.StatusSent, out.Status)
	assert.Contains(t, out.Channels, sendnotification.ChannelInApp)
}

func testRecalculateFMV(ctx context.Context, t *testing.T, e *env, athleteID string) {
	calculator, err := fmv.NewCalculator()
	require.NoError(t, err)

	wcfg := config.GetWorkerConfig(e.cfg, recalculatefmv.TaskType)
	h := recalculatefmv.NewHandler(recalculatefmv.ConfigFrom(e.cfg.Scoring, wcfg), calculator,
		store.NewDailyCounter(e.rdb.Client), store.NewRepository(e.pg.DB),
		store.NewComparablesIndex(e.es.Client, e.cfg.Database.Elasticsearch.AthleteIndex),
		newDispatcher(e), e.log)
	defer h.Wait()

	input := &recalculatefmv.Input{
		AthleteID: athleteID,
		Profile: fmv.Profile{
			AthleteID:    athleteID,
			PrimarySport: "Basketball",
			Position:     "Guard",
			SchoolName:   "Kentucky",
			State:        "KY",
			SocialStats: []fmv.SocialStat{
				{Platform: "instagram", Followers: 48000, EngagementRate: 4.2, Verified: true},
				{Platform: "tiktok", Followers: 91000, EngagementRate: 6.8},
			},
		},
	}

	first, err := h.Execute(ctx, input)
	require.NoError(t, err)
	assert.False(t, first.Meta.IsRecalculation)
	assert.True(t, first.Meta.Persisted)
	assert.Equal(t, 1, first.Meta.CalculationCountToday)

	second, err := h.Execute(ctx, input)
	require.NoError(t, err)
	assert.True(t, second.Meta.IsRecalculation)
	require.NotNil(t, second.Meta.PreviousScore)
	assert.Equal(t, first.FMV.Score, *second.Meta.PreviousScore)
}

func testScoreDeal(ctx context.Context, t *testing.T, e *env, athleteID string) {
	wcfg := config.GetWorkerConfig(e.cfg, scoredeal.TaskType)
	h, err := scoredeal.NewHandler(scoredeal.ConfigFrom(e.cfg.Scoring, wcfg),
		scoredeal.NewPostgresRepository(e.pg.DB), e.log)
	require.NoError(t, err)

	out, err := h.Execute(ctx, fmt.Sprintf(`{
		"dealId": %q,
		"athleteId": %q,
		"dealValue": 300,
		"policyFitInputs": {"hasSchoolApproval": true, "hasDisclosure": true, "paymentSource": "brand"},
		"documentInputs": {"hasContract": true, "hasW9": true},
		"taxInputs": {"hasW9Submitted": true},
		"brandSafetyInputs": {"brandCategory": "apparel"},
		"guardianConsentInputs": {"athleteAge": 20}
	}`, "deal-"+athleteID, athleteID))
	require.NoError(t, err)
	assert.True(t, out.Persisted)
	assert.NotEmpty(t, out.Status)
}

func testMatchAndStream(ctx context.Context, t *testing.T, e *env, agencyID, athleteID string) {
	matcher, err := matching.NewMatcher()
	require.NoError(t, err)

	wcfg := config.GetWorkerConfig(e.cfg, calculatematchscore.TaskType)
	cfg := calculatematchscore.ConfigFrom(e.cfg.Scoring, wcfg)
	profiles := calculatematchscore.NewProfileStore(e.pg.DB, e.rdb.Client, cfg.CacheTTL, e.log)
	h := calculatematchscore.NewHandler(cfg, matcher, profiles, e.pg.DB, e.log)

	out, err := h.Execute(ctx, &calculatematchscore.Input{
		Agency: matching.Agency{
			ID:                agencyID,
			CompanyName:       "Peak Sports",
			CampaignInterests: []string{"apparel", "gaming"},
			GeographicFocus:   []string{"KY"},
		},
		AthleteID:    athleteID,
		PersistMatch: true,
	})
	require.NoError(t, err)
	assert.True(t, out.ProfileFound)
	require.NotEmpty(t, out.MatchID)

	source := matchstream.NewPostgresMatchSource(e.pg.DB)
	sub, err := source.Subscriber(ctx, agencyID)
	require.NoError(t, err)
	require.NotNil(t, sub)

	matches, err := source.Matches(ctx, *sub, time.Now().Add(-time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, athleteID, matches[0].AthleteID)
}

func testQueryScoringData(ctx context.Context, t *testing.T, e *env, athleteID string) {
	wcfg := config.GetWorkerConfig(e.cfg, queryscoringdata.TaskType)
	h := queryscoringdata.NewHandler(queryscoringdata.ConfigFrom(e.cfg.Scoring, wcfg), e.pg.DB, e.log)

	out, err := h.Execute(ctx, fmt.Sprintf(`{"queryType": "fmv_history", "athleteId": %q}`, athleteID))
	require.NoError(t, err)
	history := out.Data.([]queries.FMVHistoryEntry)
	assert.Len(t, history, 2)

	out, err = h.Execute(ctx, fmt.Sprintf(`{"queryType": "unread_notifications", "userId": %q}`, athleteID))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, out.RowCount, 1)
}
