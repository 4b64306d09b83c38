package scratch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"studioscrape/lib/telemetry"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(ClientOptions{
		ApiBaseUrl:  server.URL,
		SiteBaseUrl: server.URL,
	})
	require.NoError(t, err)
	return client
}

func TestProjectsInStudio(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/scratch")
	defer cleanup()

	mux := http.NewServeMux()
	mux.HandleFunc("/studios/77/projects/", func(w http.ResponseWriter, r *http.Request) {
		offset := r.URL.Query().Get("offset")

		type project struct {
			ID int64 `json:"id"`
		}
		var page []project
		switch offset {
		case "0":
			for i := int64(1); i <= projectPageSize; i++ {
				page = append(page, project{ID: i * 100})
			}
		case "40":
			page = []project{{ID: 9999}}
		default:
			t.Errorf("unexpected offset %q", offset)
		}
		json.NewEncoder(w).Encode(page)
	})
	client := newTestClient(t, mux)

	ids, err := client.ProjectsInStudio(context.Background(), 77)
	require.NoError(t, err)
	require.Len(t, ids, projectPageSize+1)
	require.Equal(t, int64(100), ids[0])
	require.Equal(t, int64(9999), ids[len(ids)-1])
}

func TestProjectsInStudioError(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/scratch")
	defer cleanup()

	mux := http.NewServeMux()
	mux.HandleFunc("/studios/77/projects/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	client := newTestClient(t, mux)

	_, err := client.ProjectsInStudio(context.Background(), 77)
	require.Error(t, err)
}

func TestProjectMeta(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/scratch")
	defer cleanup()

	mux := http.NewServeMux()
	mux.HandleFunc("/projects/111", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"id": 111,
			"title": "  Cat   Game ",
			"instructions": "",
			"description": "fun",
			"author": {"username": "bob"}
		}`)
	})
	client := newTestClient(t, mux)

	meta, err := client.ProjectMeta(context.Background(), 111)
	require.NoError(t, err)
	require.Equal(t, "bob", meta.Author.Username)
	require.Equal(t, "  Cat   Game ", meta.Title)
	require.Equal(t, "", meta.Instructions)
	require.Equal(t, "fun", meta.Description)
}

const commentsPageHtml = `
<ul class="top-level-reply">
	<li>
		<div class="comment" data-comment-id="1">
			<div class="name"><a href="/users/carol/">carol</a></div>
			<div class="content">
				hey @bob
				check this
			</div>
			<span class="time" title="2022-03-01T00:00:00Z">1 year ago</span>
		</div>
		<ul class="reply">
			<li>
				<div class="comment" data-comment-id="2">
					<div class="name"><a href="/users/bob/">bob</a></div>
					<div class="content">thanks!</div>
					<span class="time" title="2022-03-02T10:30:00Z">1 year ago</span>
				</div>
			</li>
		</ul>
	</li>
</ul>`

func TestProjectComments(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/scratch")
	defer cleanup()

	mux := http.NewServeMux()
	mux.HandleFunc("/site-api/comments/project/111/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			fmt.Fprint(w, commentsPageHtml)
			return
		}
		// pages past the end render an empty fragment
		fmt.Fprint(w, `<ul class="top-level-reply"></ul>`)
	})
	client := newTestClient(t, mux)

	comments, err := client.ProjectComments(context.Background(), 111)
	require.NoError(t, err)
	require.Len(t, comments, 2)

	require.Equal(t, "carol", comments[0].Username)
	require.Contains(t, comments[0].Comment, "hey @bob")
	require.Equal(t, "2022-03-01T00:00:00Z", comments[0].Timestamp)

	require.Equal(t, "bob", comments[1].Username)
	require.Equal(t, "thanks!", comments[1].Comment)
	require.Equal(t, "2022-03-02T10:30:00Z", comments[1].Timestamp)
}
