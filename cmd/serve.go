package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jjenkins/courtwatch/internal/handlers"
)

var port string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the availability web server",
	Long:  `Start the web server with the availability page and the JSON API for slots and subscriptions.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()

		a := mustApp(ctx)
		defer a.close()

		if err := serve(ctx, a); err != nil {
			a.logger.Error("server stopped", zap.Error(err))
			a.close()
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&port, "port", "p", "", "Port to run the server on (default from config)")
}

func newServer(a *app) *fiber.App {
	server := fiber.New(fiber.Config{
		AppName:               "courtwatch",
		DisableStartupMessage: true,
	})

	server.Use(logger.New())

	handlers.Register(server, handlers.Deps{
		Availability:  a.availability,
		Subscriptions: a.subscriptions,
		Metrics:       a.metrics,
		Location:      a.loc,
		Logger:        a.logger,
	})
	return server
}

// serve listens until ctx is cancelled
func serve(ctx context.Context, a *app) error {
	listen := port
	if listen == "" {
		listen = strconv.Itoa(a.cfg.Server.Port)
	}

	server := newServer(a)
	errc := make(chan error, 1)
	go func() {
		a.logger.Info("starting server", zap.String("port", listen))
		errc <- server.Listen(":" + listen)
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
		return server.Shutdown()
	}
}
