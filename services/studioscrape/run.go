package studioscrape

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"studioscrape/lib/scrapers/scratch"

	"github.com/mazen160/go-random"
)

type RunOptions struct {
	// platform studio ids, in configured order; the position in this
	// slice becomes the studio column in the output
	Studios   []int64
	OutputDir string
	// zero value means the default 1900..2100 window
	Dates DateRange
	// NewScraper builds the client a worker owns, one per studio so no
	// client is shared across goroutines. Defaults to a fresh scratch
	// client.
	NewScraper func() (Scraper, error)
	// when set, the consolidated tables are also pushed into the
	// archive database under a fresh run id
	Archive *Store
}

type StudioResult struct {
	Studio   int
	StudioID int64
	Projects int
	Comments int
	Err      error
}

type Summary struct {
	RunID   string
	Results []StudioResult
	// consolidated row counts
	Projects int
	Comments int
}

// Run scrapes every configured studio in parallel, one worker per
// studio, then consolidates the per-studio files. A studio whose
// enumeration fails is reported in its StudioResult and skipped at
// consolidation; sibling studios are unaffected.
func Run(ctx context.Context, opts RunOptions) (Summary, error) {
	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()

	if opts.Dates.Start.IsZero() && opts.Dates.End.IsZero() {
		opts.Dates = DefaultDateRange()
	}
	if opts.NewScraper == nil {
		opts.NewScraper = func() (Scraper, error) {
			return scratch.NewClient(scratch.ClientOptions{})
		}
	}

	startedAt := time.Now()
	results := make([]StudioResult, len(opts.Studios))

	var wg sync.WaitGroup
	for i, studioID := range opts.Studios {
		wg.Add(1)
		go func(studio int, studioID int64) {
			defer wg.Done()
			results[studio] = runStudio(ctx, opts, studio, studioID)
		}(i, studioID)
	}
	wg.Wait()

	projects, comments, err := Combine(ctx, opts.OutputDir, len(opts.Studios))
	if err != nil {
		return Summary{Results: results}, err
	}

	summary := Summary{
		Results:  results,
		Projects: len(projects),
		Comments: len(comments),
	}

	if opts.Archive != nil {
		runID, err := random.String(8)
		if err != nil {
			return summary, err
		}
		summary.RunID = runID

		err = opts.Archive.PushRun(ctx, PushRunRequest{
			RunID:      runID,
			StartedAt:  startedAt,
			FinishedAt: time.Now(),
			Dates:      opts.Dates,
			Projects:   projects,
			Comments:   comments,
		})
		if err != nil {
			return summary, err
		}
		slog.InfoContext(ctx, "archived run", "run_id", runID)
	}

	return summary, nil
}

func runStudio(ctx context.Context, opts RunOptions, studio int, studioID int64) StudioResult {
	result := StudioResult{Studio: studio, StudioID: studioID}

	client, err := opts.NewScraper()
	if err != nil {
		result.Err = err
		return result
	}

	projects, err := ExtractProjects(ctx, client, studioID, studio)
	if err != nil {
		slog.ErrorContext(
			ctx, "studio pipeline failed",
			"studio", studio,
			"studio_id", studioID,
			"err", err,
		)
		result.Err = err
		return result
	}
	err = WriteProjectsCSV(StudioProjectsPath(opts.OutputDir, studio), projects)
	if err != nil {
		result.Err = err
		return result
	}
	result.Projects = len(projects)

	comments := ExtractComments(ctx, client, projects, studio, opts.Dates)
	err = WriteCommentsCSV(StudioCommentsPath(opts.OutputDir, studio), comments)
	if err != nil {
		result.Err = err
		return result
	}
	result.Comments = len(comments)

	return result
}
