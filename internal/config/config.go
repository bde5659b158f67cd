// Package config loads codeparser settings from defaults, an optional YAML
// file, CODEPARSER_* environment variables and command-line flags.
package config

import (
	"codeparser/internal/parser"
	"codeparser/internal/scanner"
)

// Config is the full set of codeparser settings.
type Config struct {
	Scan    ScanConfig    `mapstructure:"scan" yaml:"scan"`
	Output  OutputConfig  `mapstructure:"output" yaml:"output"`
	Extract ExtractConfig `mapstructure:"extract" yaml:"extract"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
}

// ScanConfig controls directory discovery and the worker pool.
type ScanConfig struct {
	Root        string   `mapstructure:"root" yaml:"root"`
	Include     []string `mapstructure:"include" yaml:"include"`
	Exclude     []string `mapstructure:"exclude" yaml:"exclude"`
	ExcludeDirs []string `mapstructure:"exclude_dirs" yaml:"exclude_dirs"`
	Gitignore   bool     `mapstructure:"gitignore" yaml:"gitignore"`
	Workers     int      `mapstructure:"workers" yaml:"workers"`
	OnReadError string   `mapstructure:"on_read_error" yaml:"on_read_error"`
}

// OutputConfig selects where and how the document is written. An empty path
// or "-" means stdout.
type OutputConfig struct {
	Path   string `mapstructure:"path" yaml:"path"`
	Format string `mapstructure:"format" yaml:"format"`
}

type ExtractConfig struct {
	MaxDepth int `mapstructure:"max_depth" yaml:"max_depth"`
}

type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Scan: ScanConfig{
			Root:        ".",
			Include:     append([]string(nil), scanner.DefaultInclude...),
			Exclude:     []string{},
			ExcludeDirs: append([]string(nil), scanner.DefaultExcludeDirs...),
			Gitignore:   true,
			Workers:     scanner.NumWorkers,
			OnReadError: string(scanner.SkipOnError),
		},
		Output: OutputConfig{
			Path:   "",
			Format: "json",
		},
		Extract: ExtractConfig{
			MaxDepth: parser.DefaultMaxDepth,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ScannerOptions maps the scan section onto scanner options.
func (c *Config) ScannerOptions() scanner.Options {
	return scanner.Options{
		Include:     c.Scan.Include,
		Exclude:     c.Scan.Exclude,
		ExcludeDirs: c.Scan.ExcludeDirs,
		Gitignore:   c.Scan.Gitignore,
		Workers:     c.Scan.Workers,
		OnReadError: scanner.ReadErrorPolicy(c.Scan.OnReadError),
	}
}
