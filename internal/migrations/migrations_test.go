// internal/migrations/migrations_test.go
package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"chatnil-workers/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFiles_Ordered(t *testing.T) {
	files, err := Files()
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, "00001_athlete_fmv.sql", files[0])
	assert.Equal(t, "00003_matches_notifications.sql", files[2])
}

func TestFiles_HaveUpAndDown(t *testing.T) {
	files, err := Files()
	require.NoError(t, err)

	for _, name := range files {
		t.Run(name, func(t *testing.T) {
			data, err := fs.ReadFile(embedded, dir+"/"+name)
			require.NoError(t, err)
			body := string(data)
			up := strings.Index(body, "-- +goose Up")
			down := strings.Index(body, "-- +goose Down")
			assert.GreaterOrEqual(t, up, 0)
			assert.Greater(t, down, up)
		})
	}
}

func TestSchema_CoversWorkerTables(t *testing.T) {
	var all strings.Builder
	files, err := Files()
	require.NoError(t, err)
	for _, name := range files {
		data, err := fs.ReadFile(embedded, dir+"/"+name)
		require.NoError(t, err)
		all.Write(data)
	}

	for _, table := range []string{
		"athlete_fmv_data", "athlete_fmv_history", "athlete_profiles",
		"compliance_scores", "nil_deals", "agency_athlete_matches", "agency_athlete_lists", "notifications",
	} {
		assert.Contains(t, all.String(), "CREATE TABLE IF NOT EXISTS "+table, table)
	}
}

func TestGooseLogger(t *testing.T) {
	l := gooseLogger{log: logger.NewTestLogger(t)}
	l.Printf("OK   %s\n", "00001_athlete_fmv.sql")
	l.Fatalf("failed: %v", "boom")
}
