package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/NandiniGupta213/crm/internal/server"
	"github.com/spf13/cobra"
)

func newServeCmd(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Auth == nil {
				return errors.New("serve needs a JWT secret (set CRM_JWT_SECRET)")
			}
			if addr == "" {
				addr = app.Config.Server.Addr
			}

			srv, err := server.New(server.Options{
				Services: app.Services,
				Auth:     app.Auth,
				Logger:   app.Logger,
				Metrics:  app.Metrics,
				Health:   app.DB.PingContext,
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start(addr, app.Config.Server.ReadTimeout, app.Config.Server.WriteTimeout)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			app.Logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), app.Config.Server.ShutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}
