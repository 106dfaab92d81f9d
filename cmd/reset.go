package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget which questions a learner has seen in a stream",
	RunE: func(cmd *cobra.Command, args []string) error {
		identity, err := identityFromFlags(cmd)
		if err != nil {
			return err
		}
		stream := streamFromFlags(cmd)
		if stream == "" {
			return fmt.Errorf("--stream is required")
		}

		d, err := buildDeps(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		if _, ok := d.catalog.Stream(stream); !ok {
			return fmt.Errorf("unknown stream %q", stream)
		}
		if err := d.engine.ResetSeen(cmd.Context(), identity, stream); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Cleared seen questions for %s in %s.\n", identity, stream)
		return nil
	},
}

func init() {
	addIdentityFlags(resetCmd)
}
