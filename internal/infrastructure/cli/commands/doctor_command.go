package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/doeshing/reelai/internal/app"
	"github.com/doeshing/reelai/internal/domain"
)

// NewDoctorCommand creates the doctor command
func NewDoctorCommand(containerFn ContainerFunc) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose configuration, cache and providers",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := containerFn(cmd.Context())
			if err != nil {
				return err
			}
			return runDoctorDiagnostics(cmd, cmd.OutOrStdout(), container, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", OutputText, "Output format (text|json)")
	return cmd
}

// runDoctorDiagnostics runs environment diagnostics
func runDoctorDiagnostics(cmd *cobra.Command, out io.Writer, container *app.Container, output string) error {
	if container.DoctorService == nil {
		return fmt.Errorf(ErrDoctorServiceUnavailable)
	}

	report, err := container.DoctorService.Run(cmd.Context())

	// Display report even if there were errors
	if output == OutputJSON {
		if jsonErr := renderJSON(out, report); jsonErr != nil {
			return jsonErr
		}
	} else {
		renderDoctorReport(out, report)
	}

	if err != nil {
		return fmt.Errorf("diagnostics completed with errors: %w", err)
	}
	if report.Status() == domain.HealthError {
		return fmt.Errorf("diagnostics found errors")
	}
	return nil
}
