package packagemanager

import (
	"context"
	"errors"
)

// ErrNotInstalled reports that an uninstall target was not present. Callers
// that treat removal as "ensure absent" check for it with errors.Is and
// carry on.
var ErrNotInstalled = errors.New("package is not installed")

// PackageSpec names a package together with an optional version constraint,
// e.g. {Name: "rapidocr-onnxruntime", VersionConstraint: ">=1.3.0"}.
type PackageSpec struct {
	Name              string
	VersionConstraint string
}

// Requirement renders the spec in requirement syntax understood by the
// installer, e.g. "rapidocr-onnxruntime>=1.3.0".
func (s PackageSpec) Requirement() string {
	return s.Name + s.VersionConstraint
}

// PackageManager is the narrow capability the reconciler depends on. It is
// implemented over real installers (pip, uv) and faked in tests.
type PackageManager interface {
	IsInstalled(ctx context.Context, name string) (bool, error)
	InstalledVersion(ctx context.Context, name string) (string, error)
	Install(ctx context.Context, spec PackageSpec) error

	// Uninstall removes a package. It returns ErrNotInstalled when the
	// package was not present to begin with.
	Uninstall(ctx context.Context, name string) error
}
