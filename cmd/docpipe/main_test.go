package main

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/docpipeops/docpipe/docpipe/commandmanager"
	"github.com/docpipeops/docpipe/docpipe/config"
	"github.com/docpipeops/docpipe/docpipe/converter"
	"github.com/docpipeops/docpipe/docpipe/packagemanager"
)

func TestBuildPackageManager(t *testing.T) {
	cfg := config.Default()

	manager, err := buildPackageManager(cfg, nil)
	assert.NoError(t, err)
	assert.IsType(t, &packagemanager.PipPackageManager{}, manager)

	cfg.Reconcile.Installer = "uv"
	manager, err = buildPackageManager(cfg, nil)
	assert.NoError(t, err)
	assert.IsType(t, &packagemanager.UvPackageManager{}, manager)

	cfg.Reconcile.Installer = "conda"
	_, err = buildPackageManager(cfg, nil)
	assert.ErrorContains(t, err, "unknown installer")
}

func TestRootCmdSubcommands(t *testing.T) {
	root := newRootCmd()

	var names []string
	for _, sub := range root.Commands() {
		names = append(names, sub.Name())
	}

	for _, want := range []string{"reconcile", "convert", "compare", "export", "run", "analyze", "serve", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestBuildRunnerConvertsLocally(t *testing.T) {
	cfg := config.Default()
	cfg.Remote.Hostname = "ocr-worker-1"
	cfg.Remote.User = "deploy"

	runner := buildRunner(cfg)

	// the converter exchanges files with the local filesystem, so it must
	// not follow [remote]
	dc, ok := runner.OCRConverter.(*converter.DoclingConverter)
	if assert.True(t, ok) {
		ucm, ok := dc.CommandManager.(*commandmanager.UnixCommandManager)
		if assert.True(t, ok) {
			assert.Empty(t, ucm.Hostname)
		}
	}
}

func TestBuildAnalyzerRunsLocally(t *testing.T) {
	cfg := config.Default()
	cfg.Remote.Hostname = "ocr-worker-1"

	a := buildAnalyzer(cfg)
	assert.Equal(t, "llm-caller", a.Binary)
	assert.Equal(t, "openai:gpt-4-turbo", a.Model)

	ucm, ok := a.CommandManager.(*commandmanager.UnixCommandManager)
	if assert.True(t, ok) {
		assert.Empty(t, ucm.Hostname)
	}
}

func TestConfigFlagExplicitness(t *testing.T) {
	cfgExplicit = false

	root := newRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"version"})
	assert.NoError(t, root.Execute())
	assert.False(t, cfgExplicit)

	// passing --config with the default value still counts as explicit, so
	// a missing docpipe.ini becomes an error instead of silent defaults
	root = newRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"version", "--config", "docpipe.ini"})
	assert.NoError(t, root.Execute())
	assert.True(t, cfgExplicit)
}
