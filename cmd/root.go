package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mkalvani/dosett/internal/config"
	"github.com/mkalvani/dosett/internal/db"
	"github.com/mkalvani/dosett/internal/engine"
	"github.com/mkalvani/dosett/internal/notify"
	"github.com/mkalvani/dosett/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "dosett",
	Short: "Medication reminders & dose tracking",
}

func Execute() error {
	rootCmd.Version = version.GetVersionInfo()
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(addCmd, listCmd, takeCmd, skipCmd, snoozeCmd, removeCmd, startCmd, resetCmd)
}

// openEngine wires storage, the desktop notifier and the engine for one
// command invocation. The caller closes the returned database.
func openEngine() (*engine.Engine, *db.DB, config.Config, error) {
	cfg, _ := config.Load()
	dbh, err := db.Open()
	if err != nil {
		return nil, nil, cfg, err
	}
	eng, err := engine.New(dbh, notify.NewDesktop(), cfg, slog.Default())
	if err != nil {
		_ = dbh.Close()
		return nil, nil, cfg, err
	}
	return eng, dbh, cfg, nil
}
