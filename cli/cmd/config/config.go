package config

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rexcellence/jarvis/cli/cmd"
	"github.com/rexcellence/jarvis/pkg/config"
	"github.com/rexcellence/jarvis/pkg/logger"
)

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "config",
		Short: "Configuration inspection",
	}
	c.AddCommand(
		NewConfigShowCommand(),
		NewConfigValidateCommand(),
	)
	return c
}

// NewConfigShowCommand creates the config show subcommand
func NewConfigShowCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "show",
		Short: "Show the resolved configuration with secrets redacted",
		Args:  cobra.NoArgs,
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(cobraCmd, handleConfigShow, args)
		},
	}
	c.Flags().StringP("format", "f", "table", "Output format (json, yaml, table)")
	c.Flags().Bool("sources", false, "Show which source provided each value")
	return c
}

func handleConfigShow(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, _ []string) error {
	logger.FromContext(ctx).Debug("executing config show command")
	format, err := cobraCmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	showSources, err := cobraCmd.Flags().GetBool("sources")
	if err != nil {
		return fmt.Errorf("failed to get sources flag: %w", err)
	}
	var sources map[string]config.SourceType
	if showSources {
		sources = make(map[string]config.SourceType)
		for key := range flattenConfig(executor.Config()) {
			sources[key] = executor.Source(key)
		}
	}
	return formatConfigOutput(cobraCmd.OutOrStdout(), executor.Config(), sources, format)
}

// NewConfigValidateCommand creates the config validate subcommand. Loading
// already validates, so reaching the handler means the configuration is valid.
func NewConfigValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration and list missing dependencies",
		Args:  cobra.NoArgs,
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(cobraCmd, handleConfigValidate, args)
		},
	}
}

func handleConfigValidate(_ context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, _ []string) error {
	out := cobraCmd.OutOrStdout()
	fmt.Fprintln(out, "✅ Configuration is valid")
	for _, w := range executor.Config().Warnings() {
		fmt.Fprintln(out, "⚠️ ", w)
	}
	return nil
}

// formatConfigOutput formats and outputs configuration based on requested format
func formatConfigOutput(w io.Writer, cfg *config.Config, sources map[string]config.SourceType, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(document(cfg, sources))
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(document(cfg, sources))
	case "table":
		return outputTable(w, cfg, sources)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func document(cfg *config.Config, sources map[string]config.SourceType) map[string]any {
	doc := map[string]any{"config": flattenConfig(cfg)}
	if len(sources) > 0 {
		doc["sources"] = sources
	}
	return doc
}

func outputTable(w io.Writer, cfg *config.Config, sources map[string]config.SourceType) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	flat := flattenConfig(cfg)
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if sources != nil {
		fmt.Fprintln(tw, "KEY\tVALUE\tSOURCE")
		fmt.Fprintln(tw, "---\t-----\t------")
	} else {
		fmt.Fprintln(tw, "KEY\tVALUE")
		fmt.Fprintln(tw, "---\t-----")
	}
	for _, key := range keys {
		if sources != nil {
			fmt.Fprintf(tw, "%s\t%v\t%s\n", key, flat[key], sources[key])
			continue
		}
		fmt.Fprintf(tw, "%s\t%v\n", key, flat[key])
	}
	return tw.Flush()
}

// flattenConfig returns the configuration keyed by dotted path with secrets
// redacted and durations rendered as strings.
func flattenConfig(cfg *config.Config) map[string]any {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(cfg, "koanf"), nil); err != nil {
		return map[string]any{}
	}
	flat := k.All()
	for key, value := range flat {
		switch v := value.(type) {
		case config.SensitiveString:
			flat[key] = v.String()
		case time.Duration:
			flat[key] = v.String()
		}
	}
	return flat
}
