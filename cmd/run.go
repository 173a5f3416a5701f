package cmd

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jjenkins/courtwatch/internal/scheduler"
)

var (
	runWithBot    bool
	runWithServer bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the periodic check and sweep, plus the bot and web server",
	Long: `Run schedules the availability check (schedule.check_interval) and the
subscription sweep (schedule.sweep_interval) as independent jobs, and by
default also serves the web UI and the Telegram bot in the same process.

Examples:
  # Everything in one process
  ./courtwatch run

  # Only the background jobs
  ./courtwatch run --bot=false --server=false`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()

		a := mustApp(ctx)
		defer a.close()

		if err := runAll(ctx, cancel, a); err != nil {
			a.logger.Error("run failed", zap.Error(err))
			a.close()
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVar(&runWithBot, "bot", true, "Also run the Telegram bot")
	runCmd.Flags().BoolVar(&runWithServer, "server", true, "Also serve the web UI and API")
}

func runAll(ctx context.Context, cancel context.CancelFunc, a *app) error {
	monitor, err := a.monitor()
	if err != nil {
		return err
	}
	reconciler, err := a.reconciler()
	if err != nil {
		return err
	}

	sched := scheduler.New(a.logger)
	if err := sched.Every("check", a.cfg.Schedule.CheckInterval, func(ctx context.Context) error {
		_, err := monitor.CheckAvailability(ctx)
		return err
	}); err != nil {
		return err
	}
	if err := sched.Every("sweep", a.cfg.Schedule.SweepInterval, func(ctx context.Context) error {
		_, err := reconciler.Sweep(ctx, time.Now())
		return err
	}); err != nil {
		return err
	}

	var wg sync.WaitGroup
	errc := make(chan error, 2)
	start := func(name string, fn func(context.Context, *app) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(ctx, a); err != nil {
				a.logger.Error("component stopped", zap.String("component", name), zap.Error(err))
				errc <- err
				cancel()
			}
		}()
	}
	if runWithServer {
		start("server", serve)
	}
	if runWithBot && a.cfg.Telegram.Token == "" {
		a.logger.Warn("telegram.token is not set, not starting the bot")
	} else if runWithBot {
		start("bot", runBot)
	}

	sched.Run(ctx)
	wg.Wait()

	select {
	case err := <-errc:
		return err
	default:
		return nil
	}
}
