// internal/cli/show.go
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arc-language/aptcache/pkg/pkgcache"
)

var showCmd = &cobra.Command{
	Use:   "show [package...]",
	Short: "Describe packages",
	Long:  `Print the state, version table and dependency summary of packages.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	f, err := openCache(cmd)
	if err != nil {
		return err
	}
	defer f.Close()

	out := cmd.OutOrStdout()
	missing := 0
	for _, name := range args {
		it := f.GetPkgCache().FindPkg(name)
		if it.End() {
			fmt.Fprintf(cmd.ErrOrStderr(), "N: Unable to locate package %s\n", name)
			missing++
			continue
		}
		fmt.Fprintln(out, pkgcache.PrettyPkg(f.GetDepCache(), it))
	}

	if missing == len(args) {
		return fmt.Errorf("no packages found")
	}
	return nil
}
