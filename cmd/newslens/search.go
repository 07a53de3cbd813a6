package main

import (
	"github.com/spf13/cobra"

	"newslens/internal/usecase"
)

func searchCmd() *cobra.Command {
	var (
		limit       int
		concurrency int
		screenshots bool
		save        bool
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search Google News and resolve the article links",
		Long: "Fetches feed entries for the query (top headlines when the query is\n" +
			"omitted), resolves each obfuscated link to its real URL, and prints\n" +
			"the deduplicated, domain-annotated result.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, _, err := setup(cmd)
			if err != nil {
				return err
			}
			defer application.Close()

			query := ""
			if len(args) > 0 {
				query = args[0]
			}

			result, err := application.RunSearch(cmd.Context(), usecase.SearchRequest{
				Query:       query,
				Limit:       limit,
				Concurrency: concurrency,
				Screenshots: screenshots,
				Save:        save,
			})
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), searchPayloadFrom(result))
			}
			renderSearchResult(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of articles to return")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "decode group size (0 picks a default)")
	cmd.Flags().BoolVar(&screenshots, "screenshots", false, "capture a screenshot per resolved article")
	cmd.Flags().BoolVar(&save, "save", false, "archive the run in Postgres")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit the result as JSON")
	return cmd
}
