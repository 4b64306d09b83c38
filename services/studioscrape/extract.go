package studioscrape

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"studioscrape/lib/scrapers/scratch"
)

// Scraper is the slice of the scratch client the extractors need.
type Scraper interface {
	ProjectsInStudio(ctx context.Context, studioID int64) ([]int64, error)
	ProjectMeta(ctx context.Context, projectID int64) (scratch.ProjectMeta, error)
	ProjectComments(ctx context.Context, projectID int64) ([]scratch.Comment, error)
}

// FailurePlaceholder fills every descriptive field of a row synthesized
// for a failed fetch. All failed rows look the same, they mark the
// failure in the output without dropping the row.
const FailurePlaceholder = "scrape_failed"

// timestamp of a synthesized failure comment, far enough in the past
// that any real date restriction excludes it while the default range
// keeps it visible
const failureTimestamp = "1901-01-01T00:00:00Z"

const commentTimeLayout = "2006-01-02T15:04:05Z"

var mentionPattern = regexp.MustCompile(`@.+?\b`)

// collapses every whitespace run (spaces, tabs, newlines) to a single
// space and trims the ends
func normalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func normalizeOrNA(s string) string {
	n := normalizeText(s)
	if n == "" {
		return "NA"
	}
	return n
}

func orNA(s string) string {
	if s == "" {
		return "NA"
	}
	return s
}

// DateRange is an inclusive calendar-date window.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// DefaultDateRange spans 1900 through 2100, wide enough to keep every
// real comment.
func DefaultDateRange() DateRange {
	return DateRange{
		Start: time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (r DateRange) Contains(day time.Time) bool {
	return !day.Before(r.Start) && !day.After(r.End)
}

// ExtractProjects enumerates a studio's projects and fetches metadata
// for each of them. Enumeration failure is fatal for the studio. A
// failed metadata fetch produces a placeholder row instead of dropping
// the project, so the output always has one row per enumerated id, in
// enumeration order.
func ExtractProjects(ctx context.Context, client Scraper, studioID int64, studioIndex int) ([]ProjectRecord, error) {
	ctx, span := tracer.Start(ctx, "ExtractProjects")
	defer span.End()

	slog.InfoContext(ctx, "scraping studio", "studio_id", studioID, "studio", studioIndex)

	ids, err := client.ProjectsInStudio(ctx, studioID)
	if err != nil {
		return nil, fmt.Errorf("list projects in studio %d: %w", studioID, err)
	}
	slog.InfoContext(ctx, "found project ids", "count", len(ids), "studio", studioIndex)

	records := make([]ProjectRecord, 0, len(ids))
	for _, id := range ids {
		meta, err := client.ProjectMeta(ctx, id)
		if err != nil {
			slog.ErrorContext(
				ctx, "unable to scrape project",
				"project_id", id,
				"studio", studioIndex,
				"err", err,
			)
			meta = scratch.ProjectMeta{
				Title:        FailurePlaceholder,
				Instructions: FailurePlaceholder,
				Description:  FailurePlaceholder,
			}
			meta.Author.Username = FailurePlaceholder
		}

		records = append(records, ProjectRecord{
			Author:          meta.Author.Username,
			ProjectID:       id,
			Studio:          studioIndex,
			Title:           normalizeOrNA(meta.Title),
			Instructions:    normalizeOrNA(meta.Instructions),
			NotesAndCredits: normalizeOrNA(meta.Description),
		})
	}

	slog.InfoContext(ctx, "finished scraping projects", "studio", studioIndex)
	return records, nil
}

// ExtractComments fetches every comment of every project in the table
// and keeps those whose calendar date falls inside `dates` (inclusive
// on both ends). A failed comment fetch produces one placeholder
// comment dated 1901 instead of aborting. Rows follow project order,
// then the platform's comment order within a project.
func ExtractComments(ctx context.Context, client Scraper, projects []ProjectRecord, studioIndex int, dates DateRange) []CommentRecord {
	ctx, span := tracer.Start(ctx, "ExtractComments")
	defer span.End()

	slog.InfoContext(ctx, "scraping comments", "projects", len(projects), "studio", studioIndex)

	var records []CommentRecord
	for _, project := range projects {
		comments, err := client.ProjectComments(ctx, project.ProjectID)
		if err != nil {
			slog.ErrorContext(
				ctx, "unable to scrape comments",
				"project_id", project.ProjectID,
				"studio", studioIndex,
				"err", err,
			)
			comments = []scratch.Comment{{
				Username:  FailurePlaceholder,
				Comment:   FailurePlaceholder,
				Timestamp: failureTimestamp,
			}}
		}

		for _, comment := range comments {
			ts, err := time.Parse(commentTimeLayout, comment.Timestamp)
			if err != nil {
				slog.WarnContext(
					ctx, "skipping comment with malformed timestamp",
					"project_id", project.ProjectID,
					"timestamp", comment.Timestamp,
				)
				continue
			}
			day := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
			if !dates.Contains(day) {
				continue
			}

			records = append(records, CommentRecord{
				Commenter:              comment.Username,
				ReplyTo:                replyTarget(comment),
				Comment:                normalizeText(comment.Comment),
				ProjectAuthor:          orNA(project.Author),
				ProjectTitle:           orNA(project.Title),
				ProjectInstructions:    orNA(project.Instructions),
				ProjectNotesAndCredits: orNA(project.NotesAndCredits),
				Studio:                 studioCell(project.Studio),
				ProjectID:              project.ProjectID,
				Timestamp:              day,
			})
		}
	}

	slog.InfoContext(ctx, "scraped all comments", "count", len(records), "studio", studioIndex)
	return records
}

func studioCell(studio int) string {
	if studio == NoStudio {
		return "NA"
	}
	return strconv.Itoa(studio)
}

// replyTarget pulls the first "@"-mention out of the comment's
// serialized record. The search covers the whole record with the
// username field first, so a mention-shaped token in the commenter's
// own username wins over one in the body.
func replyTarget(comment scratch.Comment) string {
	serialized := fmt.Sprintf(
		"{username: %s, comment: %s, timestamp: %s}",
		comment.Username, comment.Comment, comment.Timestamp,
	)
	match := mentionPattern.FindString(serialized)
	if match == "" {
		return "NA"
	}
	return match[1:]
}
