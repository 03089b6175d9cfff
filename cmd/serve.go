package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JakeFAU/realtime-progress/internal/config"
	"github.com/JakeFAU/realtime-progress/internal/server"
)

// runServer is replaced in tests.
var runServer = func(cmd *cobra.Command, cfg *config.Config) error {
	app, err := server.Build(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("build app: %w", err)
	}
	return app.Run(cmd.Context())
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server until SIGINT or SIGTERM.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return runServer(cmd, &cfg)
		},
	}
}
