package cli

import (
	"os/signal"
	"syscall"

	"github.com/devlastu/pingstat/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	var listenAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the statistics HTTP server",
		Long: `Start the REST API server.

Exposes /user_stats, /game_stats and /initialize. The server shuts
down gracefully on SIGINT or SIGTERM.`,
		Example: `  pingstat serve
  pingstat serve --listen :9090`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			app, err := loadApp()
			if err != nil {
				return err
			}

			if listenAddr != "" {
				app.Config.Server.ListenAddr = listenAddr
			}

			if err := app.InitStore(ctx); err != nil {
				return ErrDatabase("failed to open database", err)
			}

			defer func() {
				if err := app.Close(); err != nil {
					app.Logger.Error("failed to close app", zap.Error(err))
				}
			}()

			srv := server.New(app.Config, app.Aggregator, app.Loader, app.Logger)
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&listenAddr, "listen", "", "listen address (overrides config)")

	return cmd
}
