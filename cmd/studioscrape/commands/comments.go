package commands

import (
	"log/slog"
	"strconv"

	"studioscrape/lib/serviceutil"
	"studioscrape/services/studioscrape"

	"github.com/spf13/cobra"
)

var commentsOut *string

func init() {
	commentsOut = commentsCmd.Flags().String("out", "comments.csv", "The csv file to write comments to.")
	rootCmd.AddCommand(commentsCmd)
}

var commentsCmd = &cobra.Command{
	Use:   "comments <project id>...",
	Short: "Scrapes the comment threads of specific projects, no studio needed.",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ids := make([]int64, len(args))
		for i, arg := range args {
			var err error
			ids[i], err = strconv.ParseInt(arg, 10, 64)
			if err != nil {
				serviceutil.Fatal("invalid project id", err)
			}
		}

		client, err := newScratchClient()
		if err != nil {
			serviceutil.Fatal("failed to initialize client", err)
		}

		records := studioscrape.ExtractComments(
			cmd.Context(),
			client,
			studioscrape.ProjectsFromIDs(ids),
			studioscrape.NoStudio,
			studioscrape.DefaultDateRange(),
		)
		err = studioscrape.WriteCommentsCSV(*commentsOut, records)
		if err != nil {
			serviceutil.Fatal("failed to write comments csv", err)
		}

		slog.Info("wrote comments", "file", *commentsOut, "count", len(records))
	},
}
