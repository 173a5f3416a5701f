package cmd

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "courtwatch",
	Short: "Watch a padel venue's booking calendar for free courts",
	Long: `courtwatch scrapes the venue's booking calendar on a schedule, keeps the
latest snapshot of available slots, and notifies subscribers when a slot
opens up near the day and hour they asked for.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// A missing .env is fine; the environment and config file still apply.
		_ = godotenv.Load()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default ./config.yaml)")
}
