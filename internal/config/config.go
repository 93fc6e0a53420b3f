// Package config defines the certificate run configuration and its loading.
//
// Conventions:
// - New returns a Config holding every default.
// - Load layers a YAML file and CERTIFY_* environment variables on top.
// - Errors are wrapped with this package's sentinels.
package config

import "github.com/okian/certify/internal/domain/merge"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogPath is the activity log file; it is truncated on every run.
	LogPath string `koanf:"log_path"`

	// InputPath is the roster file.
	InputPath string `koanf:"input_path"`

	// TemplatePath is the document template.
	TemplatePath string `koanf:"template_path"`

	// OutputDir receives one document per qualifying employee.
	OutputDir string `koanf:"output_dir"`

	// OutputExt is the extension of rendered documents.
	OutputExt string `koanf:"output_ext"`

	// Delimiter separates roster columns.
	Delimiter string `koanf:"delimiter"`

	// StrictScores rejects roster lines whose scores are not integers
	// instead of scoring them as zero.
	StrictScores bool `koanf:"strict_scores"`

	// EmailDomain is appended to the given name to build the Email field.
	EmailDomain string `koanf:"email_domain"`

	// Phone is printed on every document.
	Phone string `koanf:"phone"`

	// DistinctionBody and StandardBody override the message texts.
	DistinctionBody string `koanf:"distinction_body"`
	StandardBody    string `koanf:"standard_body"`

	// MetricsFile, when set, receives Prometheus metrics after the run.
	MetricsFile string `koanf:"metrics_file"`

	// PauseOnExit waits for Enter before the process exits.
	PauseOnExit bool `koanf:"pause_on_exit"`
}

// New creates a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:     "info",
		LogPath:      "application.log",
		InputPath:    "Data.csv",
		TemplatePath: "Template.tmpl",
		OutputDir:    "Output",
		OutputExt:    ".txt",
		Delimiter:    ",",
		StrictScores: true,
		EmailDomain:  merge.DefaultEmailDomain,
		Phone:        merge.DefaultPhone,
	}
}

// Validate checks the fields a run cannot start without.
func (c *Config) Validate() error {
	switch {
	case c.InputPath == "":
		return invalid("input_path must not be empty")
	case c.TemplatePath == "":
		return invalid("template_path must not be empty")
	case c.OutputDir == "":
		return invalid("output_dir must not be empty")
	case c.Delimiter == "":
		return invalid("delimiter must not be empty")
	}
	return nil
}
