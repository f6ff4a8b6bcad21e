// Package cli wires the reelai command tree.
package cli

import (
	"context"
	"sync"

	"github.com/spf13/cobra"

	"github.com/doeshing/reelai/internal/app"
	"github.com/doeshing/reelai/internal/infrastructure/cli/commands"
	"github.com/doeshing/reelai/internal/infrastructure/config"
)

// Options holds CLI-level configuration.
type Options struct {
	ConfigPath string
	Verbose    bool
}

// NewRootCmd wires the cobra root command. The container is built lazily so
// config commands work even when the configuration does not load.
func NewRootCmd(opts Options) *cobra.Command {
	var (
		once      sync.Once
		container *app.Container
		buildErr  error
	)
	containerFn := func(ctx context.Context) (*app.Container, error) {
		once.Do(func() {
			container, buildErr = app.BuildContainer(ctx, app.Options{
				ConfigPath: opts.ConfigPath,
				Verbose:    opts.Verbose,
			})
		})
		return container, buildErr
	}
	loaderFn := func() *config.Loader {
		return config.NewLoader(opts.ConfigPath)
	}

	root := &cobra.Command{
		Use:   "reelai",
		Short: "reelai - AI-assisted movie and TV recommendations",
		Long: "reelai answers mood, free-text and blend queries through a chain of AI providers\n" +
			"with cached results, and serves them over an HTTP API.",
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if container != nil {
				return container.Close()
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.ConfigPath, "config", opts.ConfigPath, "Config file (default ~/.reelai/config.yaml)")
	root.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", opts.Verbose, "Enable debug logging")

	root.AddCommand(
		commands.NewServeCommand(containerFn),
		commands.NewMoodCommand(containerFn),
		commands.NewDiscoverCommand(containerFn),
		commands.NewBlendCommand(containerFn),
		commands.NewMoodsCommand(containerFn),
		commands.NewCacheCommand(containerFn),
		commands.NewDoctorCommand(containerFn),
		commands.NewConfigCommand(loaderFn),
		commands.NewVersionCommand(),
	)
	return root
}
