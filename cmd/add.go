package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mkalvani/dosett/internal/model"
)

var (
	addID     string
	addName   string
	addDose   string
	addTime   string
	addRepeat string
	addLead   int
)

// addCmd creates or updates a medication schedule and arms its reminder.
// Saving the same id again replaces the schedule and re-registers the base
// reminder; the previous one is cancelled first.
var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add or update a medication",
	Long: `Examples:
	dosett add --name Metformin --dose 500mg --time 08:00
	dosett add --name Atorvastatin --time 21:30 --every weekly:Tue
	dosett add --name "B12 shot" --time 09:00 --every monthly:1 --lead 30`,
	RunE: func(cmd *cobra.Command, args []string) error {
		hour, minute, err := model.ParseTimeOfDay(addTime)
		if err != nil {
			return err
		}
		rule, err := model.ParseRule(addRepeat)
		if err != nil {
			return err
		}

		eng, dbh, cfg, err := openEngine()
		if err != nil {
			return err
		}
		defer dbh.Close()

		lead := addLead
		if lead < 0 {
			lead = cfg.Reminder.LeadMinutes
		}
		id := addID
		if id == "" {
			id = slugify(addName)
		}
		med := model.MedicationSchedule{
			ID:          id,
			Name:        addName,
			Dosage:      addDose,
			Hour:        hour,
			Minute:      minute,
			Rule:        rule,
			LeadMinutes: lead,
			Enabled:     cfg.Reminder.Enabled,
		}

		fireAt, warning, err := eng.RegisterOrUpdate(cmd.Context(), med)
		if err != nil {
			return err
		}
		fmt.Printf("Saved %s; next reminder %s\n", med.ID, fireAt.Format("Mon Jan 2 15:04"))
		if warning != "" {
			fmt.Println("warning: " + warning)
		}
		return nil
	},
}

func slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, " ", "-")
	return strings.ReplaceAll(s, "|", "")
}

func init() {
	addCmd.Flags().StringVar(&addID, "id", "", "Stable medication id (defaults to a slug of the name)")
	addCmd.Flags().StringVarP(&addName, "name", "n", "", "Medication name")
	addCmd.Flags().StringVarP(&addDose, "dose", "d", "", "Dosage text, e.g. 500mg")
	addCmd.Flags().StringVarP(&addTime, "time", "t", "", "Dose time of day, HH:MM")
	addCmd.Flags().StringVarP(&addRepeat, "every", "e", "daily", "Recurrence: daily, weekly:<Mon..Sun>, monthly:<1..31>")
	addCmd.Flags().IntVarP(&addLead, "lead", "l", -1, "Reminder lead time in minutes (-1 = config default)")
	_ = addCmd.MarkFlagRequired("name")
	_ = addCmd.MarkFlagRequired("time")
}
