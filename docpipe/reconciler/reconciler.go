// Package reconciler brings a host's OCR-backend package set to a known-good
// configuration: undesired backends removed best-effort, the desired backend
// installed, the outcome verified and reported. It runs once at deploy time;
// nothing else in the pipeline depends on it at runtime.
package reconciler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	pm "github.com/docpipeops/docpipe/docpipe/packagemanager"
)

// RemovalOutcome is the tri-state result of an ensure-absent attempt.
type RemovalOutcome string

const (
	OutcomeRemoved       RemovalOutcome = "removed"
	OutcomeAlreadyAbsent RemovalOutcome = "already-absent"
	OutcomeFailedIgnored RemovalOutcome = "failed-but-ignored"
)

// Result collects everything a single reconciliation run did. It is built
// once per run, reported, and discarded.
type Result struct {
	// Removed holds packages that were present and successfully uninstalled.
	Removed []string

	// AbsentOnRemoval holds packages whose removal was attempted but that
	// were not installed to begin with.
	AbsentOnRemoval []string

	// FailedRemovals holds packages whose removal failed for a reason other
	// than absence. Removal is best-effort, so these do not fail the run.
	FailedRemovals []string

	Installed        pm.PackageSpec
	InstallSucceeded bool
	InstallErr       error

	// VerificationPassed reports whether the primary undesired package is
	// gone after the run. Advisory only.
	VerificationPassed bool
}

// Outcome returns the tri-state removal outcome recorded for a package name.
func (r *Result) Outcome(name string) RemovalOutcome {
	for _, n := range r.Removed {
		if n == name {
			return OutcomeRemoved
		}
	}
	for _, n := range r.AbsentOnRemoval {
		if n == name {
			return OutcomeAlreadyAbsent
		}
	}
	return OutcomeFailedIgnored
}

// Reconciler runs the three-step reconciliation procedure over a package
// manager capability. Out receives the human-readable status lines; the
// final line carries a fixed "OK:" or "WARN:" prefix so deploy tooling can
// grep for the outcome.
type Reconciler struct {
	PackageManager pm.PackageManager
	Logger         *logrus.Logger
	Out            io.Writer
}

func New(manager pm.PackageManager, logger *logrus.Logger) *Reconciler {
	return &Reconciler{
		PackageManager: manager,
		Logger:         logger,
		Out:            os.Stdout,
	}
}

// Reconcile removes every undesired package best-effort, installs the
// desired package, and verifies that the primary undesired package is gone.
// The returned error is non-nil only when installation failed; removal
// failures and verification mismatches are recorded on the Result and
// reported as warnings. The caller decides whether an installation failure
// is fatal.
func (r *Reconciler) Reconcile(ctx context.Context, undesired []pm.PackageSpec, desired pm.PackageSpec) (*Result, error) {
	result := &Result{Installed: desired}

	for _, pkg := range undesired {
		fmt.Fprintf(r.out(), "Removing %s...\n", pkg.Name)
		err := r.PackageManager.Uninstall(ctx, pkg.Name)
		switch {
		case err == nil:
			result.Removed = append(result.Removed, pkg.Name)
		case errors.Is(err, pm.ErrNotInstalled):
			result.AbsentOnRemoval = append(result.AbsentOnRemoval, pkg.Name)
			r.logger().Infof("%s was not installed, nothing to remove", pkg.Name)
		default:
			result.FailedRemovals = append(result.FailedRemovals, pkg.Name)
			r.logger().Warnf("could not remove %s, continuing: %v", pkg.Name, err)
		}
	}

	fmt.Fprintf(r.out(), "Ensuring %s is installed...\n", desired.Requirement())
	if err := r.PackageManager.Install(ctx, desired); err != nil {
		result.InstallErr = fmt.Errorf("installing %s: %w", desired.Requirement(), err)
		r.logger().Errorf("installation of %s failed: %v", desired.Requirement(), err)
	} else {
		result.InstallSucceeded = true
	}

	r.verify(ctx, undesired, result)
	r.summarize(undesired, result)

	return result, result.InstallErr
}

// verify checks that the primary (first) undesired package is no longer
// detectable. Any mismatch or query error is advisory.
func (r *Reconciler) verify(ctx context.Context, undesired []pm.PackageSpec, result *Result) {
	if len(undesired) == 0 {
		result.VerificationPassed = true
		return
	}

	primary := undesired[0].Name
	fmt.Fprintf(r.out(), "Verifying removal of %s...\n", primary)

	present, err := r.PackageManager.IsInstalled(ctx, primary)
	if err != nil {
		r.logger().Warnf("could not verify removal of %s: %v", primary, err)
		result.VerificationPassed = false
		return
	}

	result.VerificationPassed = !present
}

func (r *Reconciler) summarize(undesired []pm.PackageSpec, result *Result) {
	if result.VerificationPassed {
		fmt.Fprintf(r.out(), "OK: reconciliation complete; %s is the active OCR backend\n", result.Installed.Name)
		return
	}

	primary := ""
	if len(undesired) > 0 {
		primary = undesired[0].Name
	}
	fmt.Fprintf(r.out(), "WARN: reconciliation complete but %s is still detected\n", primary)
}

func (r *Reconciler) out() io.Writer {
	if r.Out != nil {
		return r.Out
	}
	return os.Stdout
}

func (r *Reconciler) logger() *logrus.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return logrus.StandardLogger()
}
