package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the question and course catalog",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List streams with their question and course counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		cat, err := loadCatalog(cfg.Catalog.Dir)
		if err != nil {
			return fmt.Errorf("load catalog: %w", err)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "Catalog version %s\n\n", cat.Version())
		fmt.Fprintln(w, "STREAM\tNAME\tQUESTIONS\tCOURSES")
		for _, s := range cat.Streams() {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", s.ID, s.Name,
				len(cat.Questions(s.ID)), len(cat.CourseProfiles(s.ID)))
		}
		return w.Flush()
	},
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate [dir]",
	Short: "Validate catalog files against the schema and cross-references",
	Long: "Validate a catalog directory laid out as catalog.yaml plus streams/*.yaml. " +
		"Without a directory the embedded catalog is checked.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := ""
		if len(args) == 1 {
			dir = args[0]
		}
		cat, err := loadCatalog(dir)
		if err != nil {
			return err
		}
		src := dir
		if src == "" {
			src = "embedded catalog"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: OK (version %s, %d streams)\n", src, cat.Version(), len(cat.Streams()))
		return nil
	},
}

func init() {
	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogValidateCmd)
}
