// Package config loads the docpipe configuration file. Every value has a
// working default so the tool runs with no file at all.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/ini.v1"

	pm "github.com/docpipeops/docpipe/docpipe/packagemanager"
)

type OutputConfig struct {
	Dir string `ini:"dir"`
}

// ReconcileConfig declares the desired OCR-backend package state.
type ReconcileConfig struct {
	// Undesired lists the package names to ensure absent, comma separated.
	Undesired string `ini:"undesired"`

	Desired    string `ini:"desired"`
	Constraint string `ini:"constraint"`

	// Installer selects the package tool: "pip" or "uv".
	Installer string `ini:"installer"`
	PipBinary string `ini:"pip_binary"`
	Sudo      bool   `ini:"sudo"`
}

type ConverterConfig struct {
	Binary string `ini:"binary"`
}

// RemoteConfig targets reconciliation at a remote deploy host over SSH.
// Conversion and analysis always run locally because they exchange files
// with the local filesystem. Empty hostname means local execution.
type RemoteConfig struct {
	Hostname string `ini:"hostname"`
	User     string `ini:"user"`
}

// AnalyzeConfig drives the optional LLM analysis step. The API key is
// never read from the file; it comes from the OPENAI_API_KEY environment
// variable or the --api-key flag.
type AnalyzeConfig struct {
	Binary             string `ini:"binary"`
	Model              string `ini:"model"`
	FormatTemplate     string `ini:"format_template"`
	ComplianceTemplate string `ini:"compliance_template"`
}

type ServeConfig struct {
	Listen string `ini:"listen"`
}

type Config struct {
	Output    OutputConfig    `ini:"output"`
	Reconcile ReconcileConfig `ini:"reconcile"`
	Converter ConverterConfig `ini:"converter"`
	Remote    RemoteConfig    `ini:"remote"`
	Analyze   AnalyzeConfig   `ini:"analyze"`
	Serve     ServeConfig     `ini:"serve"`
}

// Default returns the built-in configuration: reconcile away easyocr in
// favor of rapidocr-onnxruntime, convert with docling, write under
// ./outputs.
func Default() *Config {
	return &Config{
		Output: OutputConfig{Dir: "outputs"},
		Reconcile: ReconcileConfig{
			Undesired:  "easyocr",
			Desired:    "rapidocr-onnxruntime",
			Constraint: ">=1.3.0",
			Installer:  "pip",
		},
		Converter: ConverterConfig{Binary: "docling"},
		Analyze: AnalyzeConfig{
			Binary:             "llm-caller",
			Model:              "openai:gpt-4-turbo",
			FormatTemplate:     "document-format",
			ComplianceTemplate: "compliance-analysis",
		},
		Serve: ServeConfig{Listen: ":8080"},
	}
}

// Load reads an INI file over the defaults. A missing path is not an error
// when it was not explicitly requested.
func Load(path string, explicit bool) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err != nil {
		if explicit {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
		return cfg, nil
	}

	file, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := file.MapTo(cfg); err != nil {
		return nil, fmt.Errorf("mapping %s: %w", path, err)
	}

	return cfg, nil
}

// UndesiredSpecs parses the comma-separated undesired list into package
// specs.
func (rc ReconcileConfig) UndesiredSpecs() []pm.PackageSpec {
	var specs []pm.PackageSpec
	for _, name := range strings.Split(rc.Undesired, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		specs = append(specs, pm.PackageSpec{Name: name})
	}
	return specs
}

// DesiredSpec returns the desired package with its version constraint.
func (rc ReconcileConfig) DesiredSpec() pm.PackageSpec {
	return pm.PackageSpec{Name: rc.Desired, VersionConstraint: rc.Constraint}
}
