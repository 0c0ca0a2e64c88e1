package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lorettarehm/audhd.ai/internal/config"
)

// options holds the persistent flags shared by every command.
type options struct {
	api     string
	key     string
	timeout time.Duration
	debug   bool
	cfg     *config.ClientConfig
}

func newRootCmd(cfg *config.ClientConfig) *cobra.Command {
	opts := &options{cfg: cfg}
	root := &cobra.Command{
		Use:           "journalctl",
		Short:         "CLI client for the journal service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.api, "api", "a", cfg.APIURL, "Journal service base URL")
	root.PersistentFlags().StringVarP(&opts.key, "key", "k", cfg.APIKey, "API key (defaults to JOURNAL_API_KEY)")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", cfg.HTTPTimeout(), "Per-request timeout")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", cfg.Debug, "Log HTTP traffic to stderr")

	root.AddCommand(
		newListCmd(opts),
		newNewCmd(opts),
		newShowCmd(opts),
		newSayCmd(opts),
		newSpeakCmd(opts),
		newAgentCmd(opts),
		newRmCmd(opts),
		newExportCmd(opts),
		newStatsCmd(opts),
		newProfileCmd(opts),
	)
	return root
}

func main() {
	cfg, err := config.NewClient()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd(cfg).ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
