package studioscrape

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"studioscrape/lib/scrapers/scratch"
	"studioscrape/lib/telemetry"
	"studioscrape/services/studioscrape/db"

	"github.com/stretchr/testify/require"
)

func runFixture() fakeScraper {
	return fakeScraper{
		studios: map[int64][]int64{
			50: {111},
			60: {222, 333},
		},
		meta: map[int64]scratch.ProjectMeta{
			111: meta("bob", "Cat Game", "", "fun"),
			222: meta("alice", "Dog Game", "press space", ""),
			333: meta("dave", "Fish Game", "", ""),
		},
		comments: map[int64][]scratch.Comment{
			111: {{Username: "carol", Comment: "hey @bob", Timestamp: "2022-03-01T00:00:00Z"}},
			222: {{Username: "erin", Comment: "cool", Timestamp: "2022-06-01T12:30:00Z"}},
			333: {},
		},
	}
}

func TestRun(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:studioscrape")
	defer cleanup()

	dir := t.TempDir()
	fake := runFixture()

	summary, err := Run(context.Background(), RunOptions{
		Studios:    []int64{50, 60},
		OutputDir:  dir,
		Dates:      year2022(),
		NewScraper: func() (Scraper, error) { return fake, nil },
	})
	require.NoError(t, err)

	require.Len(t, summary.Results, 2)
	require.NoError(t, summary.Results[0].Err)
	require.NoError(t, summary.Results[1].Err)
	require.Equal(t, 1, summary.Results[0].Projects)
	require.Equal(t, 2, summary.Results[1].Projects)
	require.Equal(t, 3, summary.Projects)
	require.Equal(t, 2, summary.Comments)

	projects, err := ReadProjectsCSV(CombinedProjectsPath(dir))
	require.NoError(t, err)
	require.Len(t, projects, 3)
	// studio order, then enumeration order
	require.Equal(t, int64(111), projects[0].ProjectID)
	require.Equal(t, 0, projects[0].Studio)
	require.Equal(t, int64(222), projects[1].ProjectID)
	require.Equal(t, 1, projects[1].Studio)
	require.Equal(t, int64(333), projects[2].ProjectID)
}

func TestRunStudioFailure(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:studioscrape")
	defer cleanup()

	dir := t.TempDir()
	fake := runFixture()

	// studio 70 is unknown to the fake, its enumeration fails and its
	// pipeline dies without writing files
	summary, err := Run(context.Background(), RunOptions{
		Studios:    []int64{50, 70},
		OutputDir:  dir,
		Dates:      year2022(),
		NewScraper: func() (Scraper, error) { return fake, nil },
	})
	require.NoError(t, err)

	require.NoError(t, summary.Results[0].Err)
	require.Error(t, summary.Results[1].Err)

	_, err = os.Stat(StudioProjectsPath(dir, 1))
	require.True(t, os.IsNotExist(err))

	projects, err := ReadProjectsCSV(CombinedProjectsPath(dir))
	require.NoError(t, err)
	require.Len(t, projects, 1)
}

func TestRunWithArchive(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:studioscrape")
	defer cleanup()

	sqlite, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	defer sqlite.Close()
	_, err = sqlite.Exec(db.Schema)
	require.NoError(t, err)

	dir := t.TempDir()
	fake := runFixture()

	summary, err := Run(context.Background(), RunOptions{
		Studios:    []int64{50, 60},
		OutputDir:  dir,
		Dates:      year2022(),
		NewScraper: func() (Scraper, error) { return fake, nil },
		Archive:    NewStore(sqlite),
	})
	require.NoError(t, err)
	require.NotEmpty(t, summary.RunID)

	store := NewStore(sqlite)
	runs, err := store.Runs(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Equal(t, summary.RunID, runs[0].RunID)
	require.Equal(t, int64(3), runs[0].Projects)
	require.Equal(t, int64(2), runs[0].Comments)
}
