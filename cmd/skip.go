package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mkalvani/dosett/internal/model"
)

var skipCmd = &cobra.Command{
	Use:   "skip <medication-id>",
	Short: "Record a dose as deliberately skipped",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, dbh, _, err := openEngine()
		if err != nil {
			return err
		}
		defer dbh.Close()

		if err := eng.RecordDose(cmd.Context(), args[0], model.StatusSkipped); err != nil {
			return err
		}
		fmt.Printf("Recorded %s as skipped\n", args[0])
		return nil
	},
}
