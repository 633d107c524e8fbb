package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// removeCmd disables the medication and cancels its base reminder. The row is
// kept for compliance history; outstanding snoozes expire on their own.
var removeCmd = &cobra.Command{
	Use:   "remove <medication-id>",
	Short: "Disable a medication and cancel its reminder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, dbh, _, err := openEngine()
		if err != nil {
			return err
		}
		defer dbh.Close()

		if err := eng.Cancel(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Removed %s\n", args[0])
		return nil
	},
}
