package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type ReminderConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	LeadMinutes   int    `mapstructure:"lead_minutes"`   // fire N minutes before dose time
	SnoozeMinutes int    `mapstructure:"snooze_minutes"` // default snooze offset
	Timezone      string `mapstructure:"timezone"`       // e.g. "Asia/Kolkata" (optional)
}

type NotifyConfig struct {
	Capability string `mapstructure:"capability"` // "calendar" or "interval"
}

type Config struct {
	Reminder ReminderConfig `mapstructure:"reminder"`
	Notify   NotifyConfig   `mapstructure:"notify"`
}

func Default() Config {
	return Config{
		Reminder: ReminderConfig{
			Enabled:       true,
			LeadMinutes:   0,
			SnoozeMinutes: 10,
			Timezone:      "",
		},
		Notify: NotifyConfig{
			Capability: "interval",
		},
	}
}

func xdgConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".config", "dosett")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the config once at startup. Callers pass the result down by
// value; there is no process-global configuration state.
func Load() (Config, error) {
	cfg := Default()

	path, err := xdgConfigPath()
	if err != nil {
		return cfg, err
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(path)

	// defaults
	v.SetDefault("reminder.enabled", cfg.Reminder.Enabled)
	v.SetDefault("reminder.lead_minutes", cfg.Reminder.LeadMinutes)
	v.SetDefault("reminder.snooze_minutes", cfg.Reminder.SnoozeMinutes)
	v.SetDefault("reminder.timezone", cfg.Reminder.Timezone)
	v.SetDefault("notify.capability", cfg.Notify.Capability)

	_ = v.ReadInConfig() // ok if missing
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("config unmarshal: %w", err)
	}

	cfg.Notify.Capability = strings.ToLower(strings.TrimSpace(cfg.Notify.Capability))
	if cfg.Reminder.LeadMinutes < 0 {
		cfg.Reminder.LeadMinutes = 0
	}
	if cfg.Reminder.SnoozeMinutes <= 0 {
		cfg.Reminder.SnoozeMinutes = Default().Reminder.SnoozeMinutes
	}
	return cfg, nil
}

func (c Config) Location() *time.Location {
	if tz := strings.TrimSpace(c.Reminder.Timezone); tz != "" {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
	}
	return time.Local
}
