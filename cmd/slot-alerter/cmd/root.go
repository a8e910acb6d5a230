// Package cmd implements the CLI commands for slot-alerter.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/globalentry/slot-alerter/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "slot-alerter",
	Short: "Watch Global Entry interview locations for open appointment slots",
	Long: "slot-alerter polls the Trusted Traveler Program scheduler API for open\n" +
		"Global Entry interview slots at configured enrollment centers and pushes\n" +
		"an alert the moment a new slot appears.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path (optional)")
	rootCmd.PersistentFlags().
		StringP("locations", "l", "", "comma-separated location IDs to watch")
	rootCmd.PersistentFlags().
		StringP("notifier", "n", "", "notification backend (ntfy, discord, noop)")
	rootCmd.PersistentFlags().
		StringP("topic", "t", "", "ntfy topic to publish alerts to")
	rootCmd.PersistentFlags().
		DurationP("interval", "i", 0, "check interval (e.g. 15m)")

	cobra.CheckErr(viper.BindPFlag("locations", rootCmd.PersistentFlags().Lookup("locations")))
	cobra.CheckErr(viper.BindPFlag("notifier", rootCmd.PersistentFlags().Lookup("notifier")))
	cobra.CheckErr(viper.BindPFlag("topic", rootCmd.PersistentFlags().Lookup("topic")))
	cobra.CheckErr(viper.BindPFlag("interval", rootCmd.PersistentFlags().Lookup("interval")))

	viper.SetEnvPrefix("SLOT_ALERTER")
	viper.AutomaticEnv()

	rootCmd.AddCommand(versionCommand())
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig loads the YAML config (if any) and layers CLI flag overrides on
// top. Flags win over both the file and the flat environment variables.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if v := viper.GetString("locations"); v != "" {
		ids, err := config.ParseLocationIDs(v)
		if err != nil {
			return nil, err
		}
		cfg.Locations = ids
	}
	if v := viper.GetString("notifier"); v != "" {
		cfg.Notifications.Backend = v
	}
	if v := viper.GetString("topic"); v != "" {
		cfg.Notifications.Ntfy.Topic = v
	}
	if v := viper.GetDuration("interval"); v > 0 {
		cfg.Schedule.CheckInterval = v
	}

	return cfg, nil
}
