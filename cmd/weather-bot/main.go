package main

import (
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "weather-bot",
		Short:        "Telegram bot that answers with current weather and 5-day forecasts",
		Version:      version,
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd(), newPollCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Receive updates through a webhook served over HTTP",
		Long: "Serve starts the HTTP server with the Telegram webhook route. When WEBHOOK_URL\n" +
			"is set, the webhook is registered with Telegram on startup.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			return a.run(cmd.Context(), modeWebhook)
		},
	}
}

func newPollCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "poll",
		Short: "Receive updates by long polling getUpdates",
		Long: "Poll removes any registered webhook and long-polls Telegram for updates.\n" +
			"The HTTP server still runs for the health endpoint.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			return a.run(cmd.Context(), modePoll)
		},
	}
}
