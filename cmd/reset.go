package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// resetCmd runs the day-boundary reset once, by hand. The daemon runs the
// same job after every local midnight; invoking it again here is harmless.
var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Mark yesterday's unanswered doses as missed",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, dbh, _, err := openEngine()
		if err != nil {
			return err
		}
		defer dbh.Close()

		if err := eng.RunDailyReset(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("Daily reset complete")
		return nil
	},
}
