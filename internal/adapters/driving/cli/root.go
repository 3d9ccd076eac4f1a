// Package cli provides the waiverdesk command-line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/waiverdesk/internal/logger"
)

var (
	version = "dev"
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "waiverdesk",
	Short: "Digital waiver signing for clubs and events",
	Long: `waiverdesk runs a small web application where club admins publish events
with a liability waiver and participants sign it online.

Start the server with 'waiverdesk serve'. Settings are read from
~/.waiverdesk/config.toml and WAIVERDESK_* environment variables.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.waiverdesk/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version reported by 'waiverdesk version'.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}
