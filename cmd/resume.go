package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/pathwise/internal/app"
)

var resumeCmd = &cobra.Command{
	Use:   "resume <attempt-id>",
	Short: "Resume a paused assessment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildDeps(cmd, true)
		if err != nil {
			return err
		}
		defer d.Close()

		out, err := app.Run(cmd.Context(), app.Options{
			Engine:    d.engine,
			Catalog:   d.catalog,
			AttemptID: args[0],
		})
		if err != nil {
			return err
		}
		reportOutcome(cmd, out)
		return nil
	},
}
