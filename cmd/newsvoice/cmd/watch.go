package cmd

import (
	"github.com/spf13/cobra"

	"github.com/LJTian/NewsVoice/internal/auth"
	"github.com/LJTian/NewsVoice/internal/collector"
	"github.com/LJTian/NewsVoice/internal/notify"
	"github.com/LJTian/NewsVoice/internal/poller"
	"github.com/LJTian/NewsVoice/internal/tui"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live news view",
	Long: `Shows the latest news by category and keeps it fresh.

The view polls every 30 minutes (every 5 minutes around midnight). When the
service publishes newer data a banner appears; press r to load it.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if _, err := requireLogin(ctx, auth.PolicyNews...); err != nil {
		return err
	}

	toasts := notify.NewCenter()
	p := poller.New(collector.NewNewsClient(backendURL), poller.Options{
		Clock: poller.SystemClock(cfg.Location()),
		OnNewContent: func(string) {
			toasts.Show("New news available", notify.Info, 0)
		},
	})

	return tui.Run(tui.Options{
		Context: ctx,
		Poller:  p,
		Toasts:  toasts,
	})
}
