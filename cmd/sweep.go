package cmd

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Reconcile subscriptions against the current snapshot once",
	Long: `Sweep removes subscriptions whose day has passed and notifies every
remaining subscriber whose day and hour match an available slot.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()

		a := mustApp(ctx)
		defer a.close()

		reconciler, err := a.reconciler()
		if err != nil {
			a.logger.Error("failed to set up reconciler", zap.Error(err))
			a.close()
			os.Exit(1)
		}

		stats, err := reconciler.Sweep(ctx, time.Now())
		if err != nil {
			a.logger.Error("sweep failed", zap.Error(err))
			a.close()
			os.Exit(1)
		}
		if stats.Failed > 0 {
			a.close()
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}
