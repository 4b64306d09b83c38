package studioscrape

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const projectsDirName = "scraped_projects"
const commentsDirName = "scraped_comments"

func StudioProjectsPath(outputDir string, studio int) string {
	return filepath.Join(outputDir, projectsDirName, fmt.Sprintf("studio_%d.csv", studio))
}

func StudioCommentsPath(outputDir string, studio int) string {
	return filepath.Join(outputDir, commentsDirName, fmt.Sprintf("studio_%d.csv", studio))
}

func CombinedProjectsPath(outputDir string) string {
	return filepath.Join(outputDir, projectsDirName, "allProjects.csv")
}

func CombinedCommentsPath(outputDir string) string {
	return filepath.Join(outputDir, commentsDirName, "commentsAllStudios.csv")
}

func writeCSV(path string, header []string, rows [][]string) error {
	err := os.MkdirAll(filepath.Dir(path), 0755)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	err = w.Write(header)
	if err != nil {
		return err
	}
	// WriteAll flushes before returning
	return w.WriteAll(rows)
}

func readCSV(path string, header []string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	got, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read %s header: %w", path, err)
	}
	if len(got) != len(header) {
		return nil, fmt.Errorf("%s: expected %d columns, got %d", path, len(header), len(got))
	}
	for i := range header {
		if got[i] != header[i] {
			return nil, fmt.Errorf("%s: expected column %q, got %q", path, header[i], got[i])
		}
	}
	return r.ReadAll()
}

func WriteProjectsCSV(path string, records []ProjectRecord) error {
	rows := make([][]string, len(records))
	for i, p := range records {
		rows[i] = []string{
			p.Author,
			strconv.FormatInt(p.ProjectID, 10),
			strconv.Itoa(p.Studio),
			p.Title,
			p.Instructions,
			p.NotesAndCredits,
		}
	}
	return writeCSV(path, ProjectColumns, rows)
}

func ReadProjectsCSV(path string) ([]ProjectRecord, error) {
	rows, err := readCSV(path, ProjectColumns)
	if err != nil {
		return nil, err
	}

	records := make([]ProjectRecord, len(rows))
	for i, row := range rows {
		projectID, err := strconv.ParseInt(row[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: bad project_id %q", path, i, row[1])
		}
		studio, err := strconv.Atoi(row[2])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: bad studio %q", path, i, row[2])
		}
		records[i] = ProjectRecord{
			Author:          row[0],
			ProjectID:       projectID,
			Studio:          studio,
			Title:           row[3],
			Instructions:    row[4],
			NotesAndCredits: row[5],
		}
	}
	return records, nil
}

func WriteCommentsCSV(path string, records []CommentRecord) error {
	rows := make([][]string, len(records))
	for i, c := range records {
		rows[i] = []string{
			c.Commenter,
			c.ReplyTo,
			c.Comment,
			c.ProjectAuthor,
			c.ProjectTitle,
			c.ProjectInstructions,
			c.ProjectNotesAndCredits,
			c.Studio,
			strconv.FormatInt(c.ProjectID, 10),
			c.Timestamp.Format(time.DateOnly),
		}
	}
	return writeCSV(path, CommentColumns, rows)
}

func ReadCommentsCSV(path string) ([]CommentRecord, error) {
	rows, err := readCSV(path, CommentColumns)
	if err != nil {
		return nil, err
	}

	records := make([]CommentRecord, len(rows))
	for i, row := range rows {
		projectID, err := strconv.ParseInt(row[8], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: bad project_id %q", path, i, row[8])
		}
		day, err := time.Parse(time.DateOnly, row[9])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: bad timestamp %q", path, i, row[9])
		}
		records[i] = CommentRecord{
			Commenter:              row[0],
			ReplyTo:                row[1],
			Comment:                row[2],
			ProjectAuthor:          row[3],
			ProjectTitle:           row[4],
			ProjectInstructions:    row[5],
			ProjectNotesAndCredits: row[6],
			Studio:                 row[7],
			ProjectID:              projectID,
			Timestamp:              day,
		}
	}
	return records, nil
}

// Combine reads every per-studio file back in studio-index order and
// concatenates them into the two consolidated files. A studio whose
// pipeline died before writing leaves no file; it is skipped with a
// warning instead of failing the run. Returns the combined tables.
func Combine(ctx context.Context, outputDir string, studios int) ([]ProjectRecord, []CommentRecord, error) {
	ctx, span := tracer.Start(ctx, "Combine")
	defer span.End()

	var allProjects []ProjectRecord
	var allComments []CommentRecord

	for i := 0; i < studios; i++ {
		projects, err := ReadProjectsCSV(StudioProjectsPath(outputDir, i))
		if os.IsNotExist(err) {
			slog.WarnContext(ctx, "no project file for studio, skipping", "studio", i)
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		allProjects = append(allProjects, projects...)

		comments, err := ReadCommentsCSV(StudioCommentsPath(outputDir, i))
		if os.IsNotExist(err) {
			slog.WarnContext(ctx, "no comment file for studio, skipping", "studio", i)
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		allComments = append(allComments, comments...)
	}

	err := WriteProjectsCSV(CombinedProjectsPath(outputDir), allProjects)
	if err != nil {
		return nil, nil, err
	}
	err = WriteCommentsCSV(CombinedCommentsPath(outputDir), allComments)
	if err != nil {
		return nil, nil, err
	}

	return allProjects, allComments, nil
}
