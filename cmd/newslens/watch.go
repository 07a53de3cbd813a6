package main

import (
	"github.com/spf13/cobra"

	"newslens/internal/domain"
	"newslens/internal/usecase"
)

func watchCmd() *cobra.Command {
	var (
		cronSpec    string
		limit       int
		concurrency int
		screenshots bool
	)

	cmd := &cobra.Command{
		Use:   "watch [query]",
		Short: "Re-run a search on a schedule and report new articles",
		Long: "Runs the search immediately and then on the cron schedule until\n" +
			"interrupted. With an archive configured, each run is persisted and\n" +
			"only articles unseen in earlier runs are reported.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			defer application.Close()

			query := ""
			if len(args) > 0 {
				query = args[0]
			}

			out := cmd.OutOrStdout()
			report := func(result domain.SearchResult, fresh []domain.Article) {
				renderWatchRun(out, result, fresh)
			}

			logger.Info("watch started", "query", query)
			return application.RunWatch(cmd.Context(), cronSpec, usecase.SearchRequest{
				Query:       query,
				Limit:       limit,
				Concurrency: concurrency,
				Screenshots: screenshots,
			}, report)
		},
	}

	cmd.Flags().StringVar(&cronSpec, "cron", "", "cron expression overriding the configured schedule")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of articles per run")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "decode group size (0 picks a default)")
	cmd.Flags().BoolVar(&screenshots, "screenshots", false, "capture a screenshot per resolved article")
	return cmd
}
