package packagemanager

import (
	"context"
	"fmt"
	"strings"

	cm "github.com/docpipeops/docpipe/docpipe/commandmanager"
)

// PipPackageManager manages Python packages through pip.
type PipPackageManager struct {
	CommandManager cm.CommandManager

	// Binary overrides the pip executable, defaulting to "pip".
	Binary string

	// Sudo escalates install/uninstall for system-wide site-packages.
	Sudo bool
}

func (ppm *PipPackageManager) binary() string {
	if ppm.Binary != "" {
		return ppm.Binary
	}
	return "pip"
}

func (ppm *PipPackageManager) IsInstalled(ctx context.Context, name string) (bool, error) {
	output, err := ppm.CommandManager.Run(ctx, cm.CommandConfig{
		Command: ppm.binary(),
		Args:    []string{"show", name},
	})
	if notFound(output) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("querying %s: %w", name, err)
	}
	return strings.Contains(output.STDOUT, "Name:"), nil
}

func (ppm *PipPackageManager) InstalledVersion(ctx context.Context, name string) (string, error) {
	output, err := ppm.CommandManager.Run(ctx, cm.CommandConfig{
		Command: ppm.binary(),
		Args:    []string{"show", name},
	})
	if notFound(output) {
		return "", ErrNotInstalled
	}
	if err != nil {
		return "", fmt.Errorf("querying %s: %w", name, err)
	}

	for _, line := range strings.Split(output.STDOUT, "\n") {
		if v, ok := strings.CutPrefix(line, "Version:"); ok {
			return strings.TrimSpace(v), nil
		}
	}
	return "", fmt.Errorf("no version in pip show output for %s", name)
}

func (ppm *PipPackageManager) Install(ctx context.Context, spec PackageSpec) error {
	output, err := ppm.CommandManager.Run(ctx, cm.CommandConfig{
		Command: ppm.binary(),
		Sudo:    ppm.Sudo,
		Env:     []string{"PIP_DISABLE_PIP_VERSION_CHECK=1"},
		Args:    []string{"install", spec.Requirement()},
	})
	if err != nil {
		return fmt.Errorf("installing %s: %w (%s)", spec.Requirement(), err, strings.TrimSpace(output.STDERR))
	}
	return nil
}

func (ppm *PipPackageManager) Uninstall(ctx context.Context, name string) error {
	output, err := ppm.CommandManager.Run(ctx, cm.CommandConfig{
		Command: ppm.binary(),
		Sudo:    ppm.Sudo,
		Args:    []string{"uninstall", "-y", name},
	})
	if skippedAsNotInstalled(output, name) {
		return ErrNotInstalled
	}
	if err != nil {
		return fmt.Errorf("uninstalling %s: %w (%s)", name, err, strings.TrimSpace(output.STDERR))
	}
	return nil
}

// notFound recognizes pip's "Package(s) not found" diagnostic, which pip
// emits on stderr with a non-zero exit code. The full phrase is matched
// so a shell's "pip: command not found" still surfaces as an error.
func notFound(output cm.CommandResult) bool {
	return strings.Contains(output.STDERR, "Package(s) not found") ||
		strings.Contains(output.STDOUT, "Package(s) not found")
}

// skippedAsNotInstalled recognizes pip's tolerant uninstall path: recent pip
// prints "Skipping <pkg> as it is not installed." and exits 0.
func skippedAsNotInstalled(output cm.CommandResult, name string) bool {
	combined := output.STDOUT + output.STDERR
	return strings.Contains(combined, "as it is not installed") ||
		strings.Contains(combined, "not installed: "+name)
}
