package scratch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"studioscrape/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

const DefaultApiBaseUrl = "https://api.scratch.mit.edu"
const DefaultSiteBaseUrl = "https://scratch.mit.edu"

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

// studio project listings are served 40 at a time
const projectPageSize = 40

type ClientOptions struct {
	// base url of the REST api, defaults to the public scratch api
	ApiBaseUrl string
	// base url of the website (site-api html endpoints), defaults to
	// the public scratch site
	SiteBaseUrl string
}

// Client talks to the scratch REST api for studio/project metadata and
// to the site-api html endpoints for comment threads. Clients hold no
// login state, every endpoint used here is public.
type Client struct {
	api  *resty.Client
	site *resty.Client
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.ApiBaseUrl == "" {
		opts.ApiBaseUrl = DefaultApiBaseUrl
	}
	if opts.SiteBaseUrl == "" {
		opts.SiteBaseUrl = DefaultSiteBaseUrl
	}
	siteUrl, err := url.Parse(opts.SiteBaseUrl)
	if err != nil {
		return nil, err
	}

	api := resty.New()
	api.SetBaseURL(opts.ApiBaseUrl)
	api.SetHeader("user-agent", userAgent)
	api.SetTimeout(time.Second * 30)
	telemetry.InstrumentResty(api, "scrapers/scratch/api")

	site := resty.New()
	site.SetBaseURL(opts.SiteBaseUrl)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	site.SetCookieJar(jar)
	site.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(site.GetClient().Transport)
	site.SetHeader("user-agent", userAgent)
	site.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(siteUrl.Hostname()))
	site.SetTimeout(time.Second * 30)
	telemetry.InstrumentResty(site, "scrapers/scratch/site")

	return &Client{api: api, site: site}, nil
}

type ProjectMeta struct {
	Author struct {
		Username string `json:"username"`
	} `json:"author"`
	Title        string `json:"title"`
	Instructions string `json:"instructions"`
	Description  string `json:"description"`
}

// Comment is one comment as the site serves it. Timestamp is kept as
// the raw "%Y-%m-%dT%H:%M:%SZ" string, parsing it is the caller's
// concern.
type Comment struct {
	Username  string
	Comment   string
	Timestamp string
}

// ProjectsInStudio pages through a studio's project listing and
// returns all project ids in enumeration order.
func (c *Client) ProjectsInStudio(ctx context.Context, studioID int64) ([]int64, error) {
	ctx, span := tracer.Start(ctx, "client:ProjectsInStudio")
	defer span.End()

	var ids []int64
	for offset := 0; ; offset += projectPageSize {
		res, err := c.api.R().
			SetContext(ctx).
			SetQueryParam("limit", strconv.Itoa(projectPageSize)).
			SetQueryParam("offset", strconv.Itoa(offset)).
			Get(fmt.Sprintf("/studios/%d/projects/", studioID))
		if err != nil {
			return nil, err
		}
		if res.StatusCode() != 200 {
			return nil, fmt.Errorf("list studio %d projects: unexpected status %d", studioID, res.StatusCode())
		}

		var page []struct {
			ID int64 `json:"id"`
		}
		err = json.Unmarshal(res.Body(), &page)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}
		for _, p := range page {
			ids = append(ids, p.ID)
		}
		if len(page) < projectPageSize {
			break
		}
	}

	return ids, nil
}

// ProjectMeta fetches a single project's metadata from the REST api.
func (c *Client) ProjectMeta(ctx context.Context, projectID int64) (ProjectMeta, error) {
	ctx, span := tracer.Start(ctx, "client:ProjectMeta")
	defer span.End()

	res, err := c.api.R().
		SetContext(ctx).
		Get(fmt.Sprintf("/projects/%d", projectID))
	if err != nil {
		return ProjectMeta{}, err
	}
	if res.StatusCode() != 200 {
		return ProjectMeta{}, fmt.Errorf("fetch project %d: unexpected status %d", projectID, res.StatusCode())
	}

	var meta ProjectMeta
	err = json.Unmarshal(res.Body(), &meta)
	if err != nil {
		return ProjectMeta{}, err
	}
	return meta, nil
}

// ProjectComments pages through the site-api comment fragments for a
// project and returns every comment, replies included, in the order the
// site renders them. The comment api is html-only, there is no json
// endpoint for it.
func (c *Client) ProjectComments(ctx context.Context, projectID int64) ([]Comment, error) {
	ctx, span := tracer.Start(ctx, "client:ProjectComments")
	defer span.End()

	var comments []Comment
	for page := 1; ; page++ {
		res, err := c.site.R().
			SetContext(ctx).
			SetQueryParam("page", strconv.Itoa(page)).
			Get(fmt.Sprintf("/site-api/comments/project/%d/", projectID))
		if err != nil {
			return nil, err
		}
		if res.StatusCode() != 200 {
			return nil, fmt.Errorf("fetch project %d comments page %d: unexpected status %d", projectID, page, res.StatusCode())
		}

		pageComments, err := parseCommentsPage(res.Body())
		if err != nil {
			return nil, err
		}
		if len(pageComments) == 0 {
			break
		}
		comments = append(comments, pageComments...)
	}

	return comments, nil
}

func parseCommentsPage(body []byte) ([]Comment, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}

	var comments []Comment
	doc.Find("div.comment").Each(func(_ int, div *goquery.Selection) {
		comments = append(comments, Comment{
			Username:  strings.TrimSpace(div.Find("div.name a").First().Text()),
			Comment:   div.Find("div.content").First().Text(),
			Timestamp: div.Find("span.time").First().AttrOr("title", ""),
		})
	})
	return comments, nil
}
