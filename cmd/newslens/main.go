package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"newslens/internal/app"
	"newslens/internal/config"
	"newslens/internal/logging"
)

var version = "dev"

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "newslens",
		Short: "Resolve Google News links into their real source URLs",
		Long: "newslens searches the Google News feed, decodes the obfuscated\n" +
			"article links it returns, and prints a deduplicated list annotated\n" +
			"with each article's publisher domain.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	root.PersistentFlags().String("config", "", "path to a YAML config file")
	root.PersistentFlags().Bool("debug", false, "enable debug logging")

	root.AddCommand(
		searchCmd(),
		decodeCmd(),
		watchCmd(),
		versionCmd(),
	)
	return root
}

// setup loads configuration, builds the logger, and wires the application.
// Logs go to stderr so stdout stays clean for command output.
func setup(cmd *cobra.Command) (*app.Application, *slog.Logger, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	debug, _ := cmd.Flags().GetBool("debug")

	cfg := config.Load(cfgPath)
	level := cfg.Logging.Level
	if debug {
		level = "debug"
	}
	logger := logging.New(os.Stderr, level)

	application, err := app.New(cmd.Context(), cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return application, logger, nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "newslens %s\n", version)
		},
	}
}
