// internal/cli/stats.go
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	f, err := openCache(cmd)
	if err != nil {
		return err
	}
	defer f.Close()

	c := f.GetPkgCache()
	dep := f.GetDepCache()

	normal, virtual, installed := 0, 0, 0
	for it := c.PkgBegin(); !it.End(); it.Next() {
		if len(it.VersionList()) == 0 {
			virtual++
		} else {
			normal++
		}
		if it.CurrentVer() != nil {
			installed++
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, headingStyle.Render(f.System()))
	fmt.Fprintf(out, "Total package names: %d\n", c.PackageCount())
	fmt.Fprintf(out, "  Normal packages: %d\n", normal)
	fmt.Fprintf(out, "  Pure virtual packages: %d\n", virtual)
	fmt.Fprintf(out, "  Installed packages: %d\n", installed)
	fmt.Fprintf(out, "  Broken packages: %d\n", dep.BrokenCount())
	fmt.Fprintf(out, "Total distinct versions: %d\n", c.VersionCount())
	verified := 0
	for _, file := range c.Files() {
		if file.Verified {
			verified++
		}
	}
	fmt.Fprintf(out, "Total package files: %d (%d verified against Release)\n", len(c.Files()), verified)
	for _, file := range c.Files() {
		fmt.Fprintf(out, "  %s\n", file)
		if info := file.ReleaseInfo(); info != "" {
			fmt.Fprintf(out, "     release %s\n", info)
		}
	}
	return nil
}
