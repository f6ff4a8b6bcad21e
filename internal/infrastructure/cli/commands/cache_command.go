package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/doeshing/reelai/internal/app"
	"github.com/doeshing/reelai/internal/domain"
)

// NewCacheCommand creates the cache command with all subcommands
func NewCacheCommand(containerFn ContainerFunc) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or invalidate cached recommendations",
	}

	cacheCmd.AddCommand(
		newCacheGetCommand(containerFn),
		newCacheDeleteCommand(containerFn),
	)

	return cacheCmd
}

// newCacheGetCommand creates the 'cache get' subcommand
func newCacheGetCommand(containerFn ContainerFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Show a cached entry, e.g. mood:cozy:recommendations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := containerFn(cmd.Context())
			if err != nil {
				return err
			}
			return showCacheEntry(cmd, cmd.OutOrStdout(), container, args[0])
		},
	}
}

// newCacheDeleteCommand creates the 'cache delete' subcommand
func newCacheDeleteCommand(containerFn ContainerFunc) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <key>",
		Aliases: []string{"rm"},
		Short:   "Invalidate a cached entry",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := containerFn(cmd.Context())
			if err != nil {
				return err
			}
			if container.Recommend == nil {
				return fmt.Errorf(ErrCacheStoreUnavailable)
			}
			if err := container.Recommend.Invalidate(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), MsgCacheDeleted)
			return nil
		},
	}
}

// showCacheEntry prints the stored entry with its remaining lifetime.
func showCacheEntry(cmd *cobra.Command, out io.Writer, container *app.Container, key string) error {
	if container.Recommend == nil {
		return fmt.Errorf(ErrCacheStoreUnavailable)
	}
	entry, found, err := container.Recommend.Peek(cmd.Context(), key)
	if err != nil {
		return fmt.Errorf("failed to read cache entry: %w", err)
	}
	if !found {
		fmt.Fprintln(out, MsgCacheMiss)
		return nil
	}
	remaining := time.Until(entry.ExpiresAt()).Round(time.Second)
	fmt.Fprintf(out, "Key:      %s\n", entry.Key)
	fmt.Fprintf(out, "Stored:   %s\n", entry.StoredAt.Format(domain.TimestampFormat))
	fmt.Fprintf(out, "Expires:  %s (in %s)\n", entry.ExpiresAt().Format(domain.TimestampFormat), remaining)
	fmt.Fprintln(out, "Value:")
	return renderJSON(out, entry.Value)
}
