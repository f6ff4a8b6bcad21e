package commands

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/doeshing/reelai/internal/application/recommend"
)

// NewMoodCommand creates the mood command.
func NewMoodCommand(containerFn ContainerFunc) *cobra.Command {
	var output string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "mood <slug>",
		Short: "Recommend titles for a curated mood",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withTimeout(cmd.Context(), timeout)
			defer cancel()
			container, err := containerFn(ctx)
			if err != nil {
				return err
			}
			stop := startSpinner(cmd.ErrOrStderr(), "Finding titles for "+args[0])
			result, err := container.Recommend.Mood(ctx, args[0])
			stop()
			if err != nil {
				return err
			}
			return renderResult(cmd.OutOrStdout(), result, output)
		},
	}
	addOutputFlags(cmd, &output, &timeout)
	return cmd
}

// NewDiscoverCommand creates the discover command.
func NewDiscoverCommand(containerFn ContainerFunc) *cobra.Command {
	var output, mediaType string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "discover <prompt>",
		Short: "Recommend titles for a free-text description",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withTimeout(cmd.Context(), timeout)
			defer cancel()
			container, err := containerFn(ctx)
			if err != nil {
				return err
			}
			stop := startSpinner(cmd.ErrOrStderr(), "Asking providers")
			result, err := container.Recommend.Discover(ctx, recommend.DiscoverRequest{
				Prompt:    strings.Join(args, " "),
				MediaType: mediaType,
			})
			stop()
			if err != nil {
				return err
			}
			return renderResult(cmd.OutOrStdout(), result, output)
		},
	}
	cmd.Flags().StringVarP(&mediaType, "type", "t", "all", "Media type (all|movie|tv|anime)")
	addOutputFlags(cmd, &output, &timeout)
	return cmd
}

// NewBlendCommand creates the blend command.
func NewBlendCommand(containerFn ContainerFunc) *cobra.Command {
	var output, mediaType string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "blend <title> <title> [title...]",
		Short: "Recommend titles that combine the appeal of several titles",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withTimeout(cmd.Context(), timeout)
			defer cancel()
			container, err := containerFn(ctx)
			if err != nil {
				return err
			}
			stop := startSpinner(cmd.ErrOrStderr(), "Blending "+strings.Join(args, " + "))
			result, err := container.Recommend.Blend(ctx, recommend.BlendRequest{
				Titles:    args,
				MediaType: mediaType,
			})
			stop()
			if err != nil {
				return err
			}
			return renderResult(cmd.OutOrStdout(), result, output)
		},
	}
	cmd.Flags().StringVarP(&mediaType, "type", "t", "all", "Media type (all|movie|tv|anime)")
	addOutputFlags(cmd, &output, &timeout)
	return cmd
}

// NewMoodsCommand lists the mood catalog.
func NewMoodsCommand(containerFn ContainerFunc) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "moods",
		Short: "List available moods",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := containerFn(cmd.Context())
			if err != nil {
				return err
			}
			return renderMoods(cmd.OutOrStdout(), container.Recommend.Moods(), output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", OutputText, "Output format (text|json)")
	return cmd
}

func addOutputFlags(cmd *cobra.Command, output *string, timeout *time.Duration) {
	cmd.Flags().StringVarP(output, "output", "o", OutputText, "Output format (text|json)")
	cmd.Flags().DurationVar(timeout, "timeout", 90*time.Second, "Give up after this long")
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
