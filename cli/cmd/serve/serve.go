package serve

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/rexcellence/jarvis/cli/cmd"
	"github.com/rexcellence/jarvis/engine/infra/server"
	"github.com/rexcellence/jarvis/pkg/logger"
	"github.com/rexcellence/jarvis/pkg/version"
)

const productionEnvironment = "production"

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	c := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"start"},
		Short:   "Start the webhook server",
		Args:    cobra.NoArgs,
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(cobraCmd, handleServe, args,
				cmd.FlagBinding{Flag: "host", Path: "server.host"},
				cmd.FlagBinding{Flag: "port", Path: "server.port"},
				cmd.FlagBinding{Flag: "metrics", Path: "monitoring.enabled"},
			)
		},
	}
	c.Flags().String("host", "", "Address to bind")
	c.Flags().Int("port", 0, "Port to listen on")
	c.Flags().Bool("metrics", false, "Expose Prometheus metrics")
	return c
}

func handleServe(ctx context.Context, _ *cobra.Command, executor *cmd.CommandExecutor, _ []string) error {
	cfg := executor.Config()
	if cfg.Runtime.Environment == productionEnvironment {
		gin.SetMode(gin.ReleaseMode)
	}
	logger.FromContext(ctx).Info("Starting Jarvis server",
		"version", version.Get().Version,
		"environment", cfg.Runtime.Environment,
	)
	srv, err := server.NewServer(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	return srv.Run()
}
