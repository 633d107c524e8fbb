package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mkalvani/dosett/internal/model"
)

var takeLate bool

var takeCmd = &cobra.Command{
	Use:   "take <medication-id>",
	Short: "Record a dose as taken",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, dbh, _, err := openEngine()
		if err != nil {
			return err
		}
		defer dbh.Close()

		status := model.StatusTaken
		if takeLate {
			status = model.StatusLate
		}
		if err := eng.RecordDose(cmd.Context(), args[0], status); err != nil {
			return err
		}
		fmt.Printf("Recorded %s as %s at %s\n", args[0], status, time.Now().Format(time.Kitchen))
		return nil
	},
}

func init() {
	takeCmd.Flags().BoolVar(&takeLate, "late", false, "Record the dose as taken late")
}
