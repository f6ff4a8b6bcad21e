package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	configinfra "github.com/doeshing/reelai/internal/infrastructure/config"
)

// LoaderFunc returns the config loader for the current --config flag.
type LoaderFunc func() *configinfra.Loader

// NewConfigCommand creates the config command with all subcommands.
// These commands never build the container, so they work with a broken config.
func NewConfigCommand(loaderFn LoaderFunc) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect reelai configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfiguration(cmd, cmd.OutOrStdout(), loaderFn(), OutputText)
		},
	}

	configCmd.AddCommand(
		newConfigShowCommand(loaderFn),
		newConfigInitCommand(loaderFn),
		newConfigPathCommand(loaderFn),
	)

	return configCmd
}

// newConfigShowCommand creates the 'config show' subcommand
func newConfigShowCommand(loaderFn LoaderFunc) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration (defaults, file and env merged)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfiguration(cmd, cmd.OutOrStdout(), loaderFn(), output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "yaml", "Output format (yaml|json)")
	return cmd
}

// newConfigInitCommand creates the 'config init' subcommand
func newConfigInitCommand(loaderFn LoaderFunc) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			loader := loaderFn()
			if loader == nil {
				return fmt.Errorf(ErrConfigLoaderUnavailable)
			}
			path, err := loader.WriteDefault(force)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), MsgConfigWritten, path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}

// newConfigPathCommand creates the 'config path' subcommand
func newConfigPathCommand(loaderFn LoaderFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			loader := loaderFn()
			if loader == nil {
				return fmt.Errorf(ErrConfigLoaderUnavailable)
			}
			fmt.Fprintln(cmd.OutOrStdout(), loader.Path())
			return nil
		},
	}
}

// showConfiguration prints the merged configuration.
func showConfiguration(cmd *cobra.Command, out io.Writer, loader *configinfra.Loader, output string) error {
	if loader == nil {
		return fmt.Errorf(ErrConfigLoaderUnavailable)
	}
	cfg, err := loader.Load(cmd.Context())
	if err != nil {
		return err
	}
	if output == OutputJSON {
		return renderJSON(out, cfg)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	fmt.Fprint(out, string(data))
	return nil
}
