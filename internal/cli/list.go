// internal/cli/list.go
package cli

import (
	"fmt"
	"path"

	"github.com/spf13/cobra"
)

var (
	listInstalled  bool
	listUpgradable bool
	listArch       string
)

var listCmd = &cobra.Command{
	Use:   "list [pattern]",
	Short: "List packages",
	Long:  `List packages in the cache, optionally filtered by a shell glob on the name.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runList,
}

func init() {
	listCmd.Flags().BoolVar(&listInstalled, "installed", false, "only installed packages")
	listCmd.Flags().BoolVar(&listUpgradable, "upgradable", false, "only packages with a newer candidate")
	listCmd.Flags().StringVar(&listArch, "arch", "", "only packages of this architecture")
}

func runList(cmd *cobra.Command, args []string) error {
	pattern := "*"
	if len(args) == 1 {
		pattern = args[0]
	}
	if _, err := path.Match(pattern, ""); err != nil {
		return fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}

	f, err := openCache(cmd)
	if err != nil {
		return err
	}
	defer f.Close()

	dep := f.GetDepCache()
	out := cmd.OutOrStdout()
	for it := f.GetPkgCache().PkgBegin(); !it.End(); it.Next() {
		if ok, _ := path.Match(pattern, it.Name()); !ok {
			continue
		}
		if listArch != "" && it.Arch() != listArch {
			continue
		}
		st := dep.State(it)
		if listInstalled && st.Current == nil {
			continue
		}
		if listUpgradable && !st.Upgradable() {
			continue
		}
		if st.Candidate == nil && st.Current == nil {
			// Virtual
			continue
		}

		line := fmt.Sprintf("%s/%s %s", it.Name(), it.Arch(), st.CandVersion)
		switch {
		case st.Upgradable():
			line += fmt.Sprintf(" [installed,upgradable from: %s]", it.CurVersion())
		case st.Current != nil:
			line += " [installed]"
		}
		fmt.Fprintln(out, line)
	}
	return nil
}
