package cmd

import (
	"github.com/ZamarianPatrick/plantwatch-backend/cmd/seed"
	"github.com/ZamarianPatrick/plantwatch-backend/cmd/serve"
	"github.com/ZamarianPatrick/plantwatch-backend/cmd/simulate"
	"github.com/ZamarianPatrick/plantwatch-backend/conf"
	"github.com/ZamarianPatrick/plantwatch-backend/logging"
	"github.com/spf13/cobra"
)

// RootCommand creates the plantwatch command tree. Settings are loaded once
// before any subcommand runs.
func RootCommand(version string) *cobra.Command {
	settings := &conf.Settings{}
	var configFile string

	rootCmd := &cobra.Command{
		Use:          "plantwatch",
		Short:        "Plant telemetry backend",
		Version:      version,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to the config file (default ./config.yaml)")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		loaded, err := conf.Load(configFile)
		if err != nil {
			return err
		}
		*settings = *loaded

		logging.Init(logging.Config{
			Level:  settings.Logging.Level,
			Format: settings.Logging.Format,
		})
		return nil
	}

	rootCmd.AddCommand(
		serve.Command(settings, version),
		seed.Command(settings),
		simulate.Command(),
	)
	return rootCmd
}
