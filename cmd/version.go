package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/pathwise/internal/catalog"
)

// version is set via -ldflags at build time.
var version = "(devel)"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the program and embedded catalog versions",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		fmt.Fprintln(w, "pathwise", version)
		cat, err := catalog.Default()
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "catalog", cat.Version())
		return nil
	},
}
