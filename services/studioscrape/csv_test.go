package studioscrape

import (
	"context"
	"testing"
	"time"

	"studioscrape/lib/telemetry"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func sampleProjects(studio int) []ProjectRecord {
	return []ProjectRecord{
		{
			Author:          "bob",
			ProjectID:       int64(1000 + studio),
			Studio:          studio,
			Title:           "Cat Game",
			Instructions:    "NA",
			NotesAndCredits: "fun",
		},
		{
			Author:          "alice",
			ProjectID:       int64(2000 + studio),
			Studio:          studio,
			Title:           "Dog Game",
			Instructions:    "press space",
			NotesAndCredits: "NA",
		},
	}
}

func sampleComments(studio int) []CommentRecord {
	return []CommentRecord{{
		Commenter:              "carol",
		ReplyTo:                "bob",
		Comment:                "hey @bob, \"nice\" one",
		ProjectAuthor:          "bob",
		ProjectTitle:           "Cat Game",
		ProjectInstructions:    "NA",
		ProjectNotesAndCredits: "fun",
		Studio:                 "0",
		ProjectID:              int64(1000 + studio),
		Timestamp:              time.Date(2022, 3, 1, 0, 0, 0, 0, time.UTC),
	}}
}

func TestProjectsCSVRoundTrip(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:studioscrape")
	defer cleanup()

	dir := t.TempDir()
	path := StudioProjectsPath(dir, 0)

	written := sampleProjects(0)
	require.NoError(t, WriteProjectsCSV(path, written))

	read, err := ReadProjectsCSV(path)
	require.NoError(t, err)
	if diff := cmp.Diff(written, read); diff != "" {
		t.Fatalf("project csv round trip (-want +got):\n%s", diff)
	}
}

func TestCommentsCSVRoundTrip(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:studioscrape")
	defer cleanup()

	dir := t.TempDir()
	path := StudioCommentsPath(dir, 0)

	written := sampleComments(0)
	require.NoError(t, WriteCommentsCSV(path, written))

	read, err := ReadCommentsCSV(path)
	require.NoError(t, err)
	if diff := cmp.Diff(written, read); diff != "" {
		t.Fatalf("comment csv round trip (-want +got):\n%s", diff)
	}
}

func TestCombine(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:studioscrape")
	defer cleanup()

	dir := t.TempDir()
	for studio := 0; studio < 2; studio++ {
		require.NoError(t, WriteProjectsCSV(StudioProjectsPath(dir, studio), sampleProjects(studio)))
		require.NoError(t, WriteCommentsCSV(StudioCommentsPath(dir, studio), sampleComments(studio)))
	}

	projects, comments, err := Combine(context.Background(), dir, 2)
	require.NoError(t, err)

	// concatenation in studio-index order, nothing deduplicated
	expectedProjects := append(sampleProjects(0), sampleProjects(1)...)
	if diff := cmp.Diff(expectedProjects, projects); diff != "" {
		t.Fatalf("combined projects (-want +got):\n%s", diff)
	}
	expectedComments := append(sampleComments(0), sampleComments(1)...)
	if diff := cmp.Diff(expectedComments, comments); diff != "" {
		t.Fatalf("combined comments (-want +got):\n%s", diff)
	}

	// the consolidated files re-read to the same tables
	reread, err := ReadProjectsCSV(CombinedProjectsPath(dir))
	require.NoError(t, err)
	if diff := cmp.Diff(projects, reread); diff != "" {
		t.Fatalf("consolidated project file (-want +got):\n%s", diff)
	}
	rereadComments, err := ReadCommentsCSV(CombinedCommentsPath(dir))
	require.NoError(t, err)
	if diff := cmp.Diff(comments, rereadComments); diff != "" {
		t.Fatalf("consolidated comment file (-want +got):\n%s", diff)
	}
}

func TestCombineMissingStudio(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:studioscrape")
	defer cleanup()

	dir := t.TempDir()
	// studio 1 died before writing anything
	require.NoError(t, WriteProjectsCSV(StudioProjectsPath(dir, 0), sampleProjects(0)))
	require.NoError(t, WriteCommentsCSV(StudioCommentsPath(dir, 0), sampleComments(0)))
	require.NoError(t, WriteProjectsCSV(StudioProjectsPath(dir, 2), sampleProjects(2)))
	require.NoError(t, WriteCommentsCSV(StudioCommentsPath(dir, 2), sampleComments(2)))

	projects, comments, err := Combine(context.Background(), dir, 3)
	require.NoError(t, err)
	require.Len(t, projects, 4)
	require.Len(t, comments, 2)
}
