package studioscrape

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

// Store archives scrape runs into a sqlite-compatible database so
// past runs stay queryable after the csv files get overwritten.
type Store struct {
	db *sql.DB
}

func NewStore(database *sql.DB) *Store {
	return &Store{db: database}
}

type PushRunRequest struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Dates      DateRange
	Projects   []ProjectRecord
	Comments   []CommentRecord
}

// PushRun inserts a run row plus all of its project and comment rows
// in one transaction.
func (s *Store) PushRun(ctx context.Context, req PushRunRequest) error {
	ctx, span := tracer.Start(ctx, "store:PushRun")
	defer span.End()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO scrape_runs (id, started_at, finished_at, start_date, end_date)
		VALUES (?, ?, ?, ?, ?)`,
		req.RunID,
		req.StartedAt.Unix(),
		req.FinishedAt.Unix(),
		req.Dates.Start.Format(time.DateOnly),
		req.Dates.End.Format(time.DateOnly),
	)
	if err != nil {
		return err
	}

	for _, p := range req.Projects {
		_, err = tx.ExecContext(
			ctx,
			`INSERT INTO scraped_projects
			(run_id, project_author, project_id, studio, title, instructions, notes_and_credits)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			req.RunID,
			p.Author,
			p.ProjectID,
			p.Studio,
			p.Title,
			p.Instructions,
			p.NotesAndCredits,
		)
		if err != nil {
			return err
		}
	}

	for _, c := range req.Comments {
		_, err = tx.ExecContext(
			ctx,
			`INSERT INTO scraped_comments
			(run_id, commenter, reply_to, comment, project_author, project_title,
			project_instructions, project_notes_and_credits, studio, project_id, timestamp)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			req.RunID,
			c.Commenter,
			c.ReplyTo,
			c.Comment,
			c.ProjectAuthor,
			c.ProjectTitle,
			c.ProjectInstructions,
			c.ProjectNotesAndCredits,
			c.Studio,
			c.ProjectID,
			c.Timestamp.Format(time.DateOnly),
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

type RunInfo struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Projects   int64
	Comments   int64
}

// Runs lists archived runs, newest first.
func (s *Store) Runs(ctx context.Context) ([]RunInfo, error) {
	ctx, span := tracer.Start(ctx, "store:Runs")
	defer span.End()

	rows, err := s.db.QueryContext(ctx, `
		SELECT
			r.id,
			r.started_at,
			r.finished_at,
			(SELECT count(*) FROM scraped_projects p WHERE p.run_id = r.id),
			(SELECT count(*) FROM scraped_comments c WHERE c.run_id = r.id)
		FROM scrape_runs r
		ORDER BY r.started_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunInfo
	for rows.Next() {
		var run RunInfo
		var startedAt, finishedAt int64
		err = rows.Scan(&run.RunID, &startedAt, &finishedAt, &run.Projects, &run.Comments)
		if err != nil {
			return nil, err
		}
		run.StartedAt = time.Unix(startedAt, 0)
		run.FinishedAt = time.Unix(finishedAt, 0)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
