package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func decodeCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "decode <link>",
		Short: "Resolve one obfuscated Google News link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, _, err := setup(cmd)
			if err != nil {
				return err
			}
			defer application.Close()

			article, err := application.DecodeLink(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), articlePayloadFrom(article))
			}
			fmt.Fprintln(cmd.OutOrStdout(), article.ResolvedURL)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "emit the result as JSON")
	return cmd
}
