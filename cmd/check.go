package cmd

import (
	"log"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var checkMaxDays int

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run one availability check against the booking calendar",
	Long: `Check opens the venue's calendar in headless Chrome, reads up to
--days consecutive days, replaces the stored snapshot of available slots
and, when enabled, broadcasts the evening slots.

Examples:
  # Check the default five days
  ./courtwatch check

  # Only look at today and tomorrow
  ./courtwatch check --days 2`,
	Run: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().IntVarP(&checkMaxDays, "days", "d", 0, "Number of days to read (default from config)")
}

func runCheck(cmd *cobra.Command, args []string) {
	ctx, cancel := signalContext()
	defer cancel()

	a := mustApp(ctx)
	defer a.close()

	if checkMaxDays > 0 {
		a.cfg.Scraper.MaxDays = checkMaxDays
	}

	monitor, err := a.monitor()
	if err != nil {
		a.logger.Error("failed to set up monitor", zap.Error(err))
		a.close()
		os.Exit(1)
	}

	stats, err := monitor.CheckAvailability(ctx)
	if err != nil {
		if ctx.Err() != nil {
			log.Println("Check cancelled")
		}
		a.logger.Error("availability check failed", zap.Error(err))
		a.close()
		os.Exit(1)
	}

	if stats.EarlyStop {
		a.logger.Warn("calendar read was partial", zap.Int("days_visited", stats.DaysVisited), zap.Int("days_requested", stats.DaysRequested))
	}
}
