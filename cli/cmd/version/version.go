package version

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rexcellence/jarvis/pkg/version"
)

// NewVersionCommand prints build information.
func NewVersionCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cobraCmd *cobra.Command, _ []string) error {
			info := version.Get()
			asJSON, err := cobraCmd.Flags().GetBool("json")
			if err != nil {
				return err
			}
			if !asJSON {
				_, err = fmt.Fprintln(cobraCmd.OutOrStdout(), info.String())
				return err
			}
			enc := json.NewEncoder(cobraCmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(info)
		},
	}
	c.Flags().Bool("json", false, "Print as JSON")
	return c
}
