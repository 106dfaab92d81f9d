package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/pathwise/internal/app"
)

var takeCmd = &cobra.Command{
	Use:   "take",
	Short: "Start a new assessment in the terminal UI",
	Long: "Start a new assessment. Without --stream a stream picker is shown. " +
		"Press p to pause; resume later with `pathwise resume <attempt-id>`.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTake(cmd)
	},
}

func init() {
	addIdentityFlags(takeCmd)
}

// runTake starts a new attempt for the identity on the command line.
func runTake(cmd *cobra.Command) error {
	identity, err := identityFromFlags(cmd)
	if err != nil {
		return err
	}

	d, err := buildDeps(cmd, true)
	if err != nil {
		return err
	}
	defer d.Close()

	stream := streamFromFlags(cmd)
	if stream != "" {
		if _, ok := d.catalog.Stream(stream); !ok {
			return fmt.Errorf("unknown stream %q (see `pathwise catalog list`)", stream)
		}
	}

	out, err := app.Run(cmd.Context(), app.Options{
		Engine:              d.engine,
		Catalog:             d.catalog,
		Identity:            identity,
		Stream:              stream,
		QuestionsPerAttempt: d.cfg.Assessment.QuestionsPerAttempt,
	})
	if err != nil {
		return err
	}
	reportOutcome(cmd, out)
	return nil
}

// reportOutcome tells the learner how to get back to their attempt.
func reportOutcome(cmd *cobra.Command, out app.Outcome) {
	w := cmd.OutOrStdout()
	switch {
	case out.Completed:
		fmt.Fprintf(w, "Assessment complete. View it again with: pathwise result %s\n", out.AttemptID)
	case out.Paused:
		fmt.Fprintf(w, "Assessment paused. Continue with: pathwise resume %s\n", out.AttemptID)
	}
}
