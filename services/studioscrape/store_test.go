package studioscrape

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"studioscrape/lib/telemetry"
	"studioscrape/services/studioscrape/db"

	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	sqlite, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	_, err = sqlite.Exec(db.Schema)
	require.NoError(t, err)
	return sqlite
}

func TestStorePushRun(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:studioscrape")
	defer cleanup()

	store := NewStore(openTestDB(t))
	ctx := context.Background()

	started := time.Date(2022, time.July, 1, 9, 0, 0, 0, time.UTC)
	err := store.PushRun(ctx, PushRunRequest{
		RunID:      "run-1",
		StartedAt:  started,
		FinishedAt: started.Add(5 * time.Minute),
		Dates:      year2022(),
		Projects:   sampleProjects(0),
		Comments:   sampleComments(0),
	})
	require.NoError(t, err)

	runs, err := store.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Equal(t, "run-1", runs[0].RunID)
	require.Equal(t, started.Unix(), runs[0].StartedAt.Unix())
	require.Equal(t, int64(len(sampleProjects(0))), runs[0].Projects)
	require.Equal(t, int64(len(sampleComments(0))), runs[0].Comments)
}

func TestStoreRunsOrder(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:studioscrape")
	defer cleanup()

	store := NewStore(openTestDB(t))
	ctx := context.Background()

	base := time.Date(2022, time.July, 1, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"older", "newer"} {
		err := store.PushRun(ctx, PushRunRequest{
			RunID:      id,
			StartedAt:  base.Add(time.Duration(i) * time.Hour),
			FinishedAt: base.Add(time.Duration(i)*time.Hour + time.Minute),
			Dates:      DefaultDateRange(),
		})
		require.NoError(t, err)
	}

	runs, err := store.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	require.Equal(t, "newer", runs[0].RunID)
	require.Equal(t, "older", runs[1].RunID)
	require.Zero(t, runs[0].Projects)
	require.Zero(t, runs[0].Comments)
}
