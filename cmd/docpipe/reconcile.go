package main

import (
	"github.com/spf13/cobra"

	"github.com/docpipeops/docpipe/docpipe/config"
	pm "github.com/docpipeops/docpipe/docpipe/packagemanager"
	"github.com/docpipeops/docpipe/docpipe/reconciler"
)

func newReconcileCmd() *cobra.Command {
	var (
		undesired  []string
		desired    string
		constraint string
	)

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Bring the host's OCR-backend packages to the expected state",
		Long: `reconcile removes conflicting OCR backends (best-effort), installs the
desired backend, and verifies the removal. Verification failures are
advisory and leave the exit code at 0; only an installation failure makes
the command fail.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			undesiredSpecs := cfg.Reconcile.UndesiredSpecs()
			if len(undesired) > 0 {
				undesiredSpecs = make([]pm.PackageSpec, 0, len(undesired))
				for _, name := range undesired {
					undesiredSpecs = append(undesiredSpecs, pm.PackageSpec{Name: name})
				}
			}

			desiredSpec := cfg.Reconcile.DesiredSpec()
			if desired != "" {
				desiredSpec = pm.PackageSpec{Name: desired, VersionConstraint: constraint}
			} else if constraint != "" {
				desiredSpec.VersionConstraint = constraint
			}

			return runReconcile(cmd, cfg, undesiredSpecs, desiredSpec)
		},
	}

	cmd.Flags().StringSliceVar(&undesired, "remove", nil, "Package names to ensure absent (default from config)")
	cmd.Flags().StringVar(&desired, "install", "", "Package name to ensure present (default from config)")
	cmd.Flags().StringVar(&constraint, "constraint", "", "Version constraint for the installed package, e.g. '>=1.3.0'")

	return cmd
}

func runReconcile(cmd *cobra.Command, cfg *config.Config, undesired []pm.PackageSpec, desired pm.PackageSpec) error {
	cmdMgr, err := buildCommandManager(cfg)
	if err != nil {
		return err
	}
	manager, err := buildPackageManager(cfg, cmdMgr)
	if err != nil {
		return err
	}

	r := reconciler.New(manager, logger)
	_, err = r.Reconcile(cmd.Context(), undesired, desired)
	return err
}
