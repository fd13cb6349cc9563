// Package cmd defines the CLI for the exhibitor-scraper executable.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// newRootCmd creates the root command. Running it performs one scrape.
func newRootCmd() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "exhibitor-scraper",
		Short: "Scrape exhibitor contacts from a trade-fair listing page.",
		Long: `exhibitor-scraper checks robots.txt, fetches a single exhibitor listing
page, extracts name, description, country, website, email and phone from every
exhibitor block, and appends the records to a local database.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScrape(cmd.Context(), cfgFile)
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, toml or json)")

	return cmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "exhibitor-scraper: %v\n", err)
		os.Exit(1)
	}
}
