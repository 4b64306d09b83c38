package commands

import (
	"log/slog"

	"studioscrape/lib/configutil"
	"studioscrape/lib/serviceutil"
	"studioscrape/services/studioscrape"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(combineCmd)
}

var combineCmd = &cobra.Command{
	Use:   "combine",
	Short: "Rebuilds the consolidated csv files from existing per-studio files.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := configutil.ReadConfig[Config]("config.json5")
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}

		projects, comments, err := studioscrape.Combine(
			cmd.Context(), cfg.OutputDir, len(cfg.Studios),
		)
		if err != nil {
			serviceutil.Fatal("failed to consolidate csv files", err)
		}

		slog.Info(
			"consolidated csv files",
			"projects", len(projects),
			"comments", len(comments),
		)
	},
}
