package cli

import (
	"github.com/spf13/cobra"

	"github.com/rexcellence/jarvis/cli/cmd"
	"github.com/rexcellence/jarvis/cli/cmd/classify"
	"github.com/rexcellence/jarvis/cli/cmd/config"
	"github.com/rexcellence/jarvis/cli/cmd/serve"
	"github.com/rexcellence/jarvis/cli/cmd/version"
	"github.com/rexcellence/jarvis/pkg/logger"
)

func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "jarvis",
		Short:         "Turn chat messages into task plans for the automation engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String(cmd.FlagConfig, "", "Path to a YAML configuration file")
	logger.RegisterFlags(root)

	root.AddCommand(
		serve.NewServeCommand(),
		classify.NewClassifyCommand(),
		config.NewConfigCommand(),
		version.NewVersionCommand(),
	)
	return root
}
