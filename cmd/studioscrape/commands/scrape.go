package commands

import (
	"errors"
	"log/slog"
	"os"
	"time"

	"studioscrape/lib/configutil"
	configsqlite "studioscrape/lib/configutil/sqlite"
	"studioscrape/lib/restyutil"
	"studioscrape/lib/scrapers/scratch"
	"studioscrape/lib/serviceutil"
	"studioscrape/lib/telemetry"
	"studioscrape/services/studioscrape"
	"studioscrape/services/studioscrape/db"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

type Config struct {
	Studios   []int64            `json:"studios"`
	StartDate string             `json:"start_date"`
	EndDate   string             `json:"end_date"`
	OutputDir string             `json:"output_dir"`
	Archive   configsqlite.Struct `json:"archive"`
}

var scrapeDb *string

func init() {
	scrapeDb = scrapeCmd.Flags().String("db", "", "Archive results to this sqlite database, overrides the config.")
	rootCmd.AddCommand(scrapeCmd)
}

func parseDates(cfg Config) (studioscrape.DateRange, error) {
	dates := studioscrape.DefaultDateRange()
	var err error
	if cfg.StartDate != "" {
		dates.Start, err = time.Parse(time.DateOnly, cfg.StartDate)
		if err != nil {
			return dates, err
		}
	}
	if cfg.EndDate != "" {
		dates.End, err = time.Parse(time.DateOnly, cfg.EndDate)
		if err != nil {
			return dates, err
		}
	}
	return dates, nil
}

func newScratchClient() (studioscrape.Scraper, error) {
	client, err := scratch.NewClient(scratch.ClientOptions{})
	if err != nil {
		return nil, err
	}
	if *verbose {
		client.SetRestyInstrumentOutput(restyutil.NewFilesystemOutput(".dev/resty/studioscrape"))
	}
	return client, nil
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrapes every studio in the config and writes per-studio and consolidated csv files.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := configutil.ReadConfig[Config]("config.json5")
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}
		if len(cfg.Studios) == 0 {
			serviceutil.Fatal("invalid config", errors.New("the studios list is empty"))
		}

		dates, err := parseDates(cfg)
		if err != nil {
			serviceutil.Fatal("failed to parse date range", err)
		}

		opts := studioscrape.RunOptions{
			Studios:    cfg.Studios,
			OutputDir:  cfg.OutputDir,
			Dates:      dates,
			NewScraper: newScratchClient,
		}

		if *scrapeDb != "" {
			cfg.Archive = configsqlite.Struct{File: *scrapeDb}
		}
		if cfg.Archive != (configsqlite.Struct{}) {
			archive, err := cfg.Archive.OpenDB(db.Schema)
			if err != nil {
				serviceutil.Fatal("failed to open archive db", err)
			}
			defer archive.Close()
			opts.Archive = studioscrape.NewStore(archive)
		}

		telemetry.InstrumentPerfStats(cmd.Context())

		slog.Info(
			"scraping studios",
			"studios", len(cfg.Studios),
			"start_date", dates.Start.Format(time.DateOnly),
			"end_date", dates.End.Format(time.DateOnly),
		)

		t1 := time.Now()
		summary, err := studioscrape.Run(cmd.Context(), opts)
		if err != nil {
			serviceutil.Fatal("failed to scrape studios", err)
		}
		t2 := time.Now()

		renderSummary(summary)
		slog.Info(
			"scraping time",
			"seconds", t2.Sub(t1).Seconds(),
			"projects", summary.Projects,
			"comments", summary.Comments,
		)
	},
}

func renderSummary(summary studioscrape.Summary) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Studio", "Studio ID", "Projects", "Comments", "Status"})

	for _, res := range summary.Results {
		status := "ok"
		if res.Err != nil {
			status = res.Err.Error()
		}
		t.AppendRow(table.Row{res.Studio, res.StudioID, res.Projects, res.Comments, status})
	}

	t.SetStyle(table.StyleRounded)
	t.Render()
}
