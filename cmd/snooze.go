package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var snoozeMinutes int

var snoozeCmd = &cobra.Command{
	Use:   "snooze <medication-id>",
	Short: "Push the current reminder back by a few minutes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, dbh, _, err := openEngine()
		if err != nil {
			return err
		}
		defer dbh.Close()

		fireAt, err := eng.Snooze(cmd.Context(), args[0], snoozeMinutes)
		if err != nil {
			return err
		}
		fmt.Printf("Snoozed %s until %s\n", args[0], fireAt.Format("15:04"))
		return nil
	},
}

func init() {
	snoozeCmd.Flags().IntVarP(&snoozeMinutes, "minutes", "m", 0, "Snooze offset in minutes (0 = config default)")
}
