package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jjenkins/courtwatch/internal/bot"
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the Telegram bot",
	Long:  `Run the Telegram bot that answers /check, /subscribe and the other chat commands.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()

		a := mustApp(ctx)
		defer a.close()

		if err := runBot(ctx, a); err != nil {
			a.logger.Error("bot stopped", zap.Error(err))
			a.close()
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(botCmd)
}

func runBot(ctx context.Context, a *app) error {
	api, err := a.telegramBot()
	if err != nil {
		return err
	}
	dispatcher, err := a.notifier()
	if err != nil {
		return err
	}

	commands := bot.NewCommands(a.availability, a.subscriptions, a.metrics, a.loc, a.logger)
	return bot.New(api, commands, dispatcher, a.cfg.Telegram.PollTimeout, a.logger).Run(ctx)
}
