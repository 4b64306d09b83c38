package studioscrape

import "time"

// column headers of the project csv, in output order
var ProjectColumns = []string{
	"project_author",
	"project_id",
	"studio",
	"title",
	"instructions",
	"notes_and_credits",
}

// column headers of the comment csv, in output order
var CommentColumns = []string{
	"commenter",
	"reply_to",
	"comment",
	"project_author",
	"project_title",
	"project_instructions",
	"project_notes_and_credits",
	"studio",
	"project_id",
	"timestamp",
}

// Studio value of a project row that did not come out of a studio
// listing, e.g. one built from a bare id list.
const NoStudio = -1

// ProjectRecord is one row of a studio's project table. Studio is the
// 0-based index of the studio in the configured list, not the platform
// studio id. Descriptive fields are whitespace-normalized and never
// empty ("NA" when the platform had nothing), except on rows built by
// ProjectsFromIDs where empty means the column is absent.
type ProjectRecord struct {
	Author          string
	ProjectID       int64
	Studio          int
	Title           string
	Instructions    string
	NotesAndCredits string
}

// ProjectsFromIDs builds a minimal project table from bare project
// ids. Comment extraction over such a table falls back to "NA" for
// every descriptive cell.
func ProjectsFromIDs(ids []int64) []ProjectRecord {
	records := make([]ProjectRecord, len(ids))
	for i, id := range ids {
		records[i] = ProjectRecord{ProjectID: id, Studio: NoStudio}
	}
	return records
}

// CommentRecord is one row of a comment table. The owning project's
// descriptive fields are copied in (denormalized) so the csv stands on
// its own. Timestamp holds the comment's calendar date, time of day
// discarded.
type CommentRecord struct {
	Commenter              string
	ReplyTo                string
	Comment                string
	ProjectAuthor          string
	ProjectTitle           string
	ProjectInstructions    string
	ProjectNotesAndCredits string
	Studio                 string
	ProjectID              int64
	Timestamp              time.Time
}
