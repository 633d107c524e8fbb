package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mkalvani/dosett/internal/schedule"
)

var rearmInterval time.Duration

// startCmd runs the reminder daemon: it arms every enabled medication,
// registers the background jobs and delivers notifications until terminated.
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Run the reminder daemon",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := slog.Default()

		eng, dbh, cfg, err := openEngine()
		if err != nil {
			return err
		}
		defer dbh.Close()

		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		// one-time advisory; scheduling proceeds best-effort without a grant
		if err := eng.RequestPermission(ctx); err != nil {
			log.Warn("notifications may not be delivered", "err", err)
		}

		if occ, err := eng.CheckMissedOnResume(ctx); err != nil {
			log.Warn("missed-dose check", "err", err)
		} else if occ != nil {
			fmt.Printf("Missed dose: %s was due %s\n", occ.MedicationID, occ.At.Format("Mon Jan 2 15:04"))
		}

		scheduled, issues := eng.ScheduleAll(ctx)
		for _, issue := range issues {
			fmt.Fprintf(os.Stderr, "warning: could not schedule %s: %v\n", issue.MedicationID, issue.Err)
		}
		log.Info("daemon running", "scheduled", scheduled)

		if err := eng.NotifyDailySummary(ctx); err != nil {
			log.Warn("daily summary", "err", err)
		}

		runner := schedule.NewRunner(log)
		reset := runner.Register("daily-reset", eng.RunDailyReset)
		runner.Register("rearm", eng.RearmExpiredOneShots)

		// catch up on a day boundary that passed while the daemon was down
		reset.Invoke(ctx)

		go runner.RunDaily(ctx, "daily-reset", cfg.Location())
		go runner.RunEvery(ctx, "rearm", rearmInterval)

		<-ctx.Done()
		log.Info("daemon stopped")
		return nil
	},
}

func init() {
	startCmd.Flags().DurationVar(&rearmInterval, "rearm-interval", time.Hour, "How often fired one-shot reminders are re-armed")
}
