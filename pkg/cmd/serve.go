package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yeisme/docshelf/pkg/app"
	"github.com/yeisme/docshelf/pkg/configs"
	"github.com/yeisme/docshelf/pkg/log"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "start the http server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := app.New(ctx, configs.GetConfig())
		if err != nil {
			return err
		}

		defer func() {
			if err := a.Close(); err != nil {
				log.Logger().Error().Err(err).Msg("close app")
			}
		}()

		return a.Run(ctx)
	},
}

// registerServeCommands 注册 serve 命令.
func registerServeCommands() {
	rootCmd.AddCommand(serveCmd)
}
