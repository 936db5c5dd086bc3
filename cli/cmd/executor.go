package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rexcellence/jarvis/pkg/config"
	"github.com/rexcellence/jarvis/pkg/logger"
)

const FlagConfig = "config"

// CommandExecutor holds what every command needs: the resolved configuration
// and the service that tracked where each value came from.
type CommandExecutor struct {
	cfg     *config.Config
	service config.Service
}

// HandlerFunc defines the signature for command handlers.
type HandlerFunc func(ctx context.Context, cmd *cobra.Command, executor *CommandExecutor, args []string) error

// FlagBinding maps a command flag onto a configuration path.
type FlagBinding struct {
	Flag string
	Path string
}

// NewCommandExecutor sets up logging and loads configuration from defaults,
// the optional YAML file, the environment and the bound flags, in that order.
func NewCommandExecutor(cmd *cobra.Command, bindings ...FlagBinding) (*CommandExecutor, error) {
	level, logJSON, logSource, err := logger.GetLoggerConfig(cmd)
	if err != nil {
		return nil, err
	}
	sources := []config.Source{}
	path, err := cmd.Flags().GetString(FlagConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	if path != "" {
		if _, statErr := os.Stat(path); statErr != nil {
			return nil, fmt.Errorf("config file %s: %w", path, statErr)
		}
		sources = append(sources, config.NewYAMLProvider(path))
	}
	sources = append(sources, config.NewEnvProvider())
	flagValues, err := collectFlags(cmd, bindings)
	if err != nil {
		return nil, err
	}
	if len(flagValues) > 0 {
		sources = append(sources, config.NewCLIProvider(flagValues))
	}
	service := config.NewService()
	cfg, err := service.Load(cmd.Context(), sources...)
	if err != nil {
		return nil, err
	}
	if !cmd.Flags().Changed("log-level") {
		level = cfg.Runtime.LogLevel
	}
	logger.SetupLogger(level, logJSON, logSource)
	return &CommandExecutor{cfg: cfg, service: service}, nil
}

func collectFlags(cmd *cobra.Command, bindings []FlagBinding) (map[string]any, error) {
	values := make(map[string]any)
	for _, b := range bindings {
		f := cmd.Flags().Lookup(b.Flag)
		if f == nil {
			return nil, fmt.Errorf("unknown flag binding %q", b.Flag)
		}
		if f.Changed {
			values[b.Path] = f.Value.String()
		}
	}
	return values, nil
}

// Config returns the resolved configuration.
func (e *CommandExecutor) Config() *config.Config {
	return e.cfg
}

// Source reports which source provided a configuration key.
func (e *CommandExecutor) Source(key string) config.SourceType {
	return e.service.GetSource(key)
}

// ExecuteCommand is a convenience function that combines executor creation and execution.
func ExecuteCommand(cmd *cobra.Command, handler HandlerFunc, args []string, bindings ...FlagBinding) error {
	executor, err := NewCommandExecutor(cmd, bindings...)
	if err != nil {
		return HandleCommonErrors(cmd, err)
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logger.ContextWithLogger(ctx, logger.GetDefault())
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	return HandleCommonErrors(cmd, handler(ctx, cmd, executor, args))
}

// HandleCommonErrors reports err on the command's error stream.
func HandleCommonErrors(cmd *cobra.Command, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, context.Canceled):
		err = fmt.Errorf("operation was canceled: %w", err)
	case errors.Is(err, context.DeadlineExceeded):
		err = fmt.Errorf("operation timed out: %w", err)
	}
	cmd.PrintErrln("Error:", err)
	return err
}
