package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/doeshing/reelai/internal/app"
)

// NewServeCommand creates the serve command.
func NewServeCommand(containerFn ContainerFunc) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := containerFn(cmd.Context())
			if err != nil {
				return err
			}
			if addr != "" {
				container.Config.Server.Addr = addr
			}
			return runServer(cmd.Context(), container)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
	return cmd
}

// runServer blocks until ctx is cancelled, normally by SIGINT or SIGTERM.
func runServer(ctx context.Context, container *app.Container) error {
	container.Logger.Info("starting reelai", map[string]interface{}{
		"addr":      container.Config.Server.Addr,
		"providers": container.Config.ProviderNames(),
		"backend":   container.Config.Cache.Backend,
	})

	err := container.Supervisor(app.DefaultSupervisorConfig()).Serve(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	container.Logger.Info("reelai stopped", nil)
	return nil
}
