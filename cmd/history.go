package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/abhisek/pathwise/internal/app"
	"github.com/abhisek/pathwise/internal/screens/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse a learner's past attempts",
	Long: "Browse past attempts in the terminal UI. Completed attempts open their " +
		"results; unfinished ones can be continued. --json prints the list instead.",
	RunE: func(cmd *cobra.Command, args []string) error {
		identity, err := identityFromFlags(cmd)
		if err != nil {
			return err
		}
		asJSON, _ := cmd.Flags().GetBool("json")

		d, err := buildDeps(cmd, !asJSON)
		if err != nil {
			return err
		}
		defer d.Close()

		if asJSON {
			list, err := d.engine.ListAttempts(cmd.Context(), identity, history.Limit)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(list)
		}

		out, err := app.Run(cmd.Context(), app.Options{
			Engine:   d.engine,
			Catalog:  d.catalog,
			Identity: identity,
			History:  true,
		})
		if err != nil {
			return err
		}
		reportOutcome(cmd, out)
		return nil
	},
}

func init() {
	historyCmd.Flags().String("user", "", "Registered learner id")
	historyCmd.Flags().String("device", "", "Anonymous device id")
	historyCmd.MarkFlagsMutuallyExclusive("user", "device")
	historyCmd.Flags().Bool("json", false, "Print attempts as JSON instead of opening the UI")
}
