package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mkalvani/dosett/internal/recur"
	"github.com/mkalvani/dosett/internal/utils"
)

var (
	listFormat  string
	listNoColor bool
	listAll     bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List medications and upcoming doses",
	Long: `Examples:
	dosett list                      # enabled medications
	dosett list --all                # include disabled
	dosett list --format json        # machine readable`,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, dbh, _, err := openEngine()
		if err != nil {
			return err
		}
		defer dbh.Close()

		meds, err := dbh.ListMedications(!listAll)
		if err != nil {
			return err
		}

		rows := make([]utils.MedicationRow, 0, len(meds))
		for _, med := range meds {
			row := utils.MedicationRow{
				ID:      med.ID,
				Name:    med.Name,
				Dosage:  med.Dosage,
				Time:    fmt.Sprintf("%02d:%02d", med.Hour, med.Minute),
				Rule:    med.Rule.String(),
				Lead:    med.LeadMinutes,
				Enabled: med.Enabled,
			}
			if med.LeadMinutes > 0 {
				lh, lm := recur.LeadTime(med.Hour, med.Minute, med.LeadMinutes)
				row.Remind = fmt.Sprintf("%02d:%02d", lh, lm)
			}
			if med.Enabled {
				row.NextDose = eng.NextDose(med)
			}
			if rec, err := dbh.LatestCompliance(med.ID); err == nil && rec != nil {
				row.Status = string(rec.Status)
			}
			rows = append(rows, row)
		}

		renderer := utils.NewRenderer(utils.OutputFormat(listFormat), !listNoColor)
		out, err := renderer.RenderMedications(rows)
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	},
}

func init() {
	listCmd.Flags().StringVar(&listFormat, "format", "default", "Output format: default, json, quiet")
	listCmd.Flags().BoolVar(&listNoColor, "no-color", false, "Disable colored output")
	listCmd.Flags().BoolVarP(&listAll, "all", "a", false, "Include disabled medications")
}
