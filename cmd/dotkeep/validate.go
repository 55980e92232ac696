package main

import (
	"github.com/spf13/cobra"

	"github.com/arthur-debert/dotkeep/pkg/errors"
	"github.com/arthur-debert/dotkeep/pkg/system"
	"github.com/arthur-debert/dotkeep/pkg/validate"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the dotkeep directory for problems",
	Long: `Run read-only health checks: registry documents, duplicate source
paths, layer placement, structured file formats and package-manager
availability. Exits non-zero when any error-severity finding is
recorded; warnings and infos do not fail the command.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		renderer, err := a.renderer()
		if err != nil {
			return err
		}

		report := validate.NewRunner(a.fs, a.paths, a.resolver, a.cfg, system.NewRunner()).Run()
		if err := renderer.ValidationReport(report); err != nil {
			return err
		}
		if report.HasErrors() {
			return errors.Newf(errors.ErrInvalidInput, "%d validation error(s)", report.Errors())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
