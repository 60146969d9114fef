package reconciler

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	pm "github.com/docpipeops/docpipe/docpipe/packagemanager"
)

// FakePackageManager is a stateful in-memory installer. Installed maps
// package name to version.
type FakePackageManager struct {
	Installed map[string]string

	UninstallErrs map[string]error
	InstallErr    error
	QueryErr      error
}

func NewFakePackageManager(installed map[string]string) *FakePackageManager {
	if installed == nil {
		installed = map[string]string{}
	}
	return &FakePackageManager{Installed: installed}
}

func (f *FakePackageManager) IsInstalled(ctx context.Context, name string) (bool, error) {
	if f.QueryErr != nil {
		return false, f.QueryErr
	}
	_, ok := f.Installed[name]
	return ok, nil
}

func (f *FakePackageManager) InstalledVersion(ctx context.Context, name string) (string, error) {
	v, ok := f.Installed[name]
	if !ok {
		return "", pm.ErrNotInstalled
	}
	return v, nil
}

func (f *FakePackageManager) Install(ctx context.Context, spec pm.PackageSpec) error {
	if f.InstallErr != nil {
		return f.InstallErr
	}
	if _, ok := f.Installed[spec.Name]; !ok {
		f.Installed[spec.Name] = "1.7.0"
	}
	return nil
}

func (f *FakePackageManager) Uninstall(ctx context.Context, name string) error {
	if err := f.UninstallErrs[name]; err != nil {
		return err
	}
	if _, ok := f.Installed[name]; !ok {
		return pm.ErrNotInstalled
	}
	delete(f.Installed, name)
	return nil
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	return logger
}

func newReconciler(fake *FakePackageManager, out *bytes.Buffer) *Reconciler {
	r := New(fake, quietLogger())
	r.Out = out
	return r
}

var (
	undesired = []pm.PackageSpec{{Name: "pkgX"}}
	desired   = pm.PackageSpec{Name: "pkgY", VersionConstraint: ">=1.7.0"}
)

func TestReconcileRemovesPresentPackage(t *testing.T) {
	fake := NewFakePackageManager(map[string]string{"pkgX": "2.0.1"})
	var out bytes.Buffer

	result, err := newReconciler(fake, &out).Reconcile(context.Background(), undesired, desired)

	assert.NoError(t, err)
	assert.Equal(t, []string{"pkgX"}, result.Removed)
	assert.Empty(t, result.AbsentOnRemoval)
	assert.True(t, result.InstallSucceeded)
	assert.True(t, result.VerificationPassed)
	assert.Equal(t, OutcomeRemoved, result.Outcome("pkgX"))

	installed, _ := fake.IsInstalled(context.Background(), "pkgX")
	assert.False(t, installed)
	installed, _ = fake.IsInstalled(context.Background(), "pkgY")
	assert.True(t, installed)
}

func TestReconcileToleratesAbsentPackage(t *testing.T) {
	fake := NewFakePackageManager(map[string]string{"pkgY": "1.8.0"})
	var out bytes.Buffer

	result, err := newReconciler(fake, &out).Reconcile(context.Background(), undesired, desired)

	assert.NoError(t, err)
	assert.Empty(t, result.Removed)
	assert.Equal(t, []string{"pkgX"}, result.AbsentOnRemoval)
	assert.True(t, result.InstallSucceeded)
	assert.True(t, result.VerificationPassed)
	assert.Equal(t, OutcomeAlreadyAbsent, result.Outcome("pkgX"))

	// Already installed at a satisfying version: final state unchanged.
	version, err := fake.InstalledVersion(context.Background(), "pkgY")
	assert.NoError(t, err)
	assert.Equal(t, "1.8.0", version)
}

func TestReconcileIdempotent(t *testing.T) {
	fake := NewFakePackageManager(map[string]string{"pkgX": "2.0.1"})

	var first bytes.Buffer
	r := newReconciler(fake, &first)
	result, err := r.Reconcile(context.Background(), undesired, desired)
	assert.NoError(t, err)
	assert.True(t, result.VerificationPassed)

	var second bytes.Buffer
	r.Out = &second
	result, err = r.Reconcile(context.Background(), undesired, desired)
	assert.NoError(t, err)
	assert.Equal(t, []string{"pkgX"}, result.AbsentOnRemoval)
	assert.True(t, result.VerificationPassed)

	installed, _ := fake.IsInstalled(context.Background(), "pkgX")
	assert.False(t, installed)
	installed, _ = fake.IsInstalled(context.Background(), "pkgY")
	assert.True(t, installed)
}

func TestReconcileInstallFailure(t *testing.T) {
	fake := NewFakePackageManager(nil)
	fake.InstallErr = errors.New("no matching distribution found")
	var out bytes.Buffer

	result, err := newReconciler(fake, &out).Reconcile(context.Background(), undesired, desired)

	assert.Error(t, err)
	assert.False(t, result.InstallSucceeded)
	assert.ErrorContains(t, result.InstallErr, "no matching distribution")
	// Verification still runs and reports independently.
	assert.True(t, result.VerificationPassed)
	// Removal outcome is unaffected by the install failure.
	assert.Equal(t, []string{"pkgX"}, result.AbsentOnRemoval)
}

func TestReconcileToleratesRemovalFailure(t *testing.T) {
	fake := NewFakePackageManager(map[string]string{"pkgX": "2.0.1"})
	fake.UninstallErrs = map[string]error{"pkgX": errors.New("permission denied")}
	var out bytes.Buffer

	result, err := newReconciler(fake, &out).Reconcile(context.Background(), undesired, desired)

	// Removal is best-effort: the run completes, installation still happens.
	assert.NoError(t, err)
	assert.Equal(t, []string{"pkgX"}, result.FailedRemovals)
	assert.True(t, result.InstallSucceeded)
	assert.Equal(t, OutcomeFailedIgnored, result.Outcome("pkgX"))

	// The package is still there, so verification flags it.
	assert.False(t, result.VerificationPassed)
	assert.Contains(t, out.String(), "WARN: reconciliation complete but pkgX is still detected")
}

func TestReconcileVerificationQueryError(t *testing.T) {
	fake := NewFakePackageManager(map[string]string{"pkgX": "2.0.1"})
	var out bytes.Buffer
	r := newReconciler(fake, &out)

	fake.QueryErr = errors.New("pip metadata corrupted")
	result, err := r.Reconcile(context.Background(), undesired, desired)

	// A verification query error is advisory, never fatal.
	assert.NoError(t, err)
	assert.False(t, result.VerificationPassed)
	assert.Contains(t, out.String(), "WARN:")
}

func TestReconcileMultipleUndesired(t *testing.T) {
	fake := NewFakePackageManager(map[string]string{"pkgX": "2.0.1", "pkgZ": "0.4.0"})
	var out bytes.Buffer

	multi := []pm.PackageSpec{{Name: "pkgX"}, {Name: "pkgZ"}, {Name: "pkgW"}}
	result, err := newReconciler(fake, &out).Reconcile(context.Background(), multi, desired)

	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{"pkgX", "pkgZ"}, result.Removed)
	assert.Equal(t, []string{"pkgW"}, result.AbsentOnRemoval)
	assert.True(t, result.VerificationPassed)
}

func TestReconcileNoUndesired(t *testing.T) {
	fake := NewFakePackageManager(nil)
	var out bytes.Buffer

	result, err := newReconciler(fake, &out).Reconcile(context.Background(), nil, desired)

	assert.NoError(t, err)
	assert.True(t, result.VerificationPassed)
	assert.Contains(t, out.String(), "OK:")
}

func TestReconcileStatusLines(t *testing.T) {
	fake := NewFakePackageManager(map[string]string{"pkgX": "2.0.1"})
	var out bytes.Buffer

	_, err := newReconciler(fake, &out).Reconcile(context.Background(), undesired, desired)
	assert.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	assert.Equal(t, []string{
		"Removing pkgX...",
		"Ensuring pkgY>=1.7.0 is installed...",
		"Verifying removal of pkgX...",
		"OK: reconciliation complete; pkgY is the active OCR backend",
	}, lines)
}
