package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/pathwise/internal/catalog"
	"github.com/abhisek/pathwise/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "pathwise",
	Short: "Scenario-based stream assessment and course recommendations",
	Long: "Pathwise asks scenario questions for a subject stream, builds a trait profile " +
		"from the answers and ranks courses that fit it.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTake(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a pathwise.yaml config file")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides db.path and PATHWISE_DB)")
	addIdentityFlags(rootCmd)

	rootCmd.AddCommand(takeCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(resultCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(versionCmd)
}

// addIdentityFlags registers --user, --device and --stream on cmd.
func addIdentityFlags(cmd *cobra.Command) {
	cmd.Flags().String("user", "", "Registered learner id (durable history)")
	cmd.Flags().String("device", "", "Anonymous device id")
	cmd.Flags().String("stream", "", "Stream to assess, e.g. pcm or commerce")
	cmd.MarkFlagsMutuallyExclusive("user", "device")
}

// identityFromFlags reads exactly one of --user and --device.
func identityFromFlags(cmd *cobra.Command) (store.Identity, error) {
	user, _ := cmd.Flags().GetString("user")
	device, _ := cmd.Flags().GetString("device")

	var id store.Identity
	switch {
	case user != "":
		id = store.Identity{Kind: store.KindUser, ID: user}
	case device != "":
		id = store.Identity{Kind: store.KindDevice, ID: device}
	default:
		return id, fmt.Errorf("one of --user or --device is required")
	}
	return id, id.Validate()
}

func streamFromFlags(cmd *cobra.Command) catalog.StreamID {
	s, _ := cmd.Flags().GetString("stream")
	return catalog.StreamID(s)
}
