// internal/cli/policy.go
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arc-language/aptcache/pkg/pkgcache"
)

var policyCmd = &cobra.Command{
	Use:   "policy [package...]",
	Short: "Show installed and candidate versions",
	Long: `Show the installed version, the candidate version and the version table
of each package, like apt-cache policy.

Examples:
  aptc policy apt
  aptc policy libc6:i386
  aptc policy --root=/srv/chroot/bookworm bash`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPolicy,
}

func runPolicy(cmd *cobra.Command, args []string) error {
	f, err := openCache(cmd)
	if err != nil {
		return err
	}
	defer f.Close()

	out := cmd.OutOrStdout()
	for _, name := range args {
		it := f.GetPkgCache().FindPkg(name)
		if it.End() {
			fmt.Fprintf(cmd.ErrOrStderr(), "N: Unable to locate package %s\n", name)
			continue
		}
		fmt.Fprint(out, pkgcache.FormatPolicy(f.GetDepCache(), it))
	}
	return nil
}
