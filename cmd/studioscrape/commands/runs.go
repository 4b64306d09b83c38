package commands

import (
	"os"
	"time"

	"studioscrape/lib/configutil"
	"studioscrape/lib/serviceutil"
	"studioscrape/services/studioscrape"
	"studioscrape/services/studioscrape/db"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(runsCmd)
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Prints the scrape runs stored in the archive database, newest first.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := configutil.ReadConfig[Config]("config.json5")
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}

		archive, err := cfg.Archive.OpenDB(db.Schema)
		if err != nil {
			serviceutil.Fatal("failed to open archive db", err)
		}
		defer archive.Close()

		runs, err := studioscrape.NewStore(archive).Runs(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to list runs", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Run", "Started", "Duration", "Projects", "Comments"})

		for _, run := range runs {
			t.AppendRow(table.Row{
				run.RunID,
				run.StartedAt.Format(time.DateTime),
				run.FinishedAt.Sub(run.StartedAt).Round(time.Second).String(),
				run.Projects,
				run.Comments,
			})
		}

		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
