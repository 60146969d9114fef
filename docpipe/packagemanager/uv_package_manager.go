package packagemanager

import (
	"context"
	"fmt"
	"strings"

	cm "github.com/docpipeops/docpipe/docpipe/commandmanager"
)

// UvPackageManager manages Python packages through uv's pip-compatible
// interface.
type UvPackageManager struct {
	CommandManager cm.CommandManager
}

func (upm *UvPackageManager) IsInstalled(ctx context.Context, name string) (bool, error) {
	output, err := upm.CommandManager.Run(ctx, cm.CommandConfig{
		Command: "uv",
		Args:    []string{"pip", "show", name},
	})
	if notFound(output) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("querying %s: %w", name, err)
	}
	return strings.Contains(output.STDOUT, "Name:"), nil
}

func (upm *UvPackageManager) InstalledVersion(ctx context.Context, name string) (string, error) {
	output, err := upm.CommandManager.Run(ctx, cm.CommandConfig{
		Command: "uv",
		Args:    []string{"pip", "show", name},
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
	return "", fmt.Errorf("no version in uv pip show output for %s", name)
}

func (upm *UvPackageManager) Install(ctx context.Context, spec PackageSpec) error {
	output, err := upm.CommandManager.Run(ctx, cm.CommandConfig{
		Command: "uv",
		Args:    []string{"pip", "install", spec.Requirement()},
	})
	if err != nil {
		return fmt.Errorf("installing %s: %w (%s)", spec.Requirement(), err, strings.TrimSpace(output.STDERR))
	}
	return nil
}

func (upm *UvPackageManager) Uninstall(ctx context.Context, name string) error {
	output, err := upm.CommandManager.Run(ctx, cm.CommandConfig{
		Command: "uv",
		Args:    []string{"pip", "uninstall", name},
	})
	if skippedAsNotInstalled(output, name) {
		return ErrNotInstalled
	}
	if err != nil {
		return fmt.Errorf("uninstalling %s: %w (%s)", name, err, strings.TrimSpace(output.STDERR))
	}
	return nil
}
