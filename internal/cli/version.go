// internal/cli/version.go
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the aptc release
const Version = "0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "aptc version %s\n", Version)
		fmt.Fprintln(cmd.OutOrStdout(), "APT package cache query tool")
	},
}
