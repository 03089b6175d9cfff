// Package cmd holds the progressd command tree.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "progressd",
		Short: "Streams simulated job progress to browsers over Server-Sent Events.",
		Long: `progressd serves a small htmx page. Submitting its form runs a simulated
long job whose progress is pushed to every open tab of the same browser
session over Server-Sent Events.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (env vars with PROGRESS_ prefix override it)")
	cmd.AddCommand(newServeCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
