package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeparser/internal/scanner"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NoError(t, Validate(cfg))

	assert.Equal(t, ".", cfg.Scan.Root)
	assert.Equal(t, []string{"**/*.py"}, cfg.Scan.Include)
	assert.Equal(t, scanner.NumWorkers, cfg.Scan.Workers)
	assert.Equal(t, "skip", cfg.Scan.OnReadError)
	assert.True(t, cfg.Scan.Gitignore)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, 4096, cfg.Extract.MaxDepth)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadWithoutConfigFileUsesDefaults(t *testing.T) {
	t.Parallel()

	l := NewLoader(t.TempDir(), t.TempDir())
	cfg, err := l.Load()
	require.NoError(t, err)
	want := Default()
	assert.Equal(t, want.Scan.Include, cfg.Scan.Include)
	assert.Equal(t, want.Scan.ExcludeDirs, cfg.Scan.ExcludeDirs)
	assert.Empty(t, cfg.Scan.Exclude)
	assert.Equal(t, want.Scan.Workers, cfg.Scan.Workers)
	assert.Equal(t, want.Output, cfg.Output)
	assert.Equal(t, want.Extract, cfg.Extract)
	assert.Equal(t, want.Log, cfg.Log)
	assert.Empty(t, l.ConfigFileUsed())
}

func TestLoadFromWorkDir(t *testing.T) {
	t.Parallel()

	work := t.TempDir()
	writeFile(t, filepath.Join(work, ".codeparser.yaml"), `
scan:
  include: ["**/*.py", "**/*.js"]
  workers: 8
output:
  format: yaml
`)

	l := NewLoader(work, t.TempDir())
	cfg, err := l.Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"**/*.py", "**/*.js"}, cfg.Scan.Include)
	assert.Equal(t, 8, cfg.Scan.Workers)
	assert.Equal(t, "yaml", cfg.Output.Format)
	assert.Equal(t, "skip", cfg.Scan.OnReadError)
	assert.Equal(t, filepath.Join(work, ".codeparser.yaml"), l.ConfigFileUsed())
}

func TestWorkDirWinsOverHome(t *testing.T) {
	t.Parallel()

	work, home := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(home, ".codeparser", "config.yaml"), "scan:\n  workers: 2\nlog:\n  level: debug\n")

	cfg, err := NewLoader(work, home).Load()
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Scan.Workers)
	assert.Equal(t, "debug", cfg.Log.Level)

	writeFile(t, filepath.Join(work, ".codeparser.yaml"), "scan:\n  workers: 3\n")
	cfg, err = NewLoader(work, home).Load()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Scan.Workers)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestExplicitConfigFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "custom.yaml")
	writeFile(t, path, "extract:\n  max_depth: 64\n")

	l := NewLoader("", "")
	l.SetConfigFile(path)
	cfg, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Extract.MaxDepth)

	l.SetConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	_, err = l.Load()
	assert.Error(t, err)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	work := t.TempDir()
	writeFile(t, filepath.Join(work, ".codeparser.yaml"), "scan:\n  workers: 8\noutput:\n  format: yaml\n")
	t.Setenv("CODEPARSER_SCAN_WORKERS", "16")
	t.Setenv("CODEPARSER_SCAN_ON_READ_ERROR", "abort")

	cfg, err := NewLoader(work, "").Load()
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.Scan.Workers)
	assert.Equal(t, "abort", cfg.Scan.OnReadError)
	assert.Equal(t, "yaml", cfg.Output.Format)
}

func TestFlagsOverrideEnvironmentOnlyWhenSet(t *testing.T) {
	t.Setenv("CODEPARSER_OUTPUT_FORMAT", "yaml")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("format", "json", "")
	flags.Int("workers", 4, "")
	require.NoError(t, flags.Parse([]string{"--workers", "6"}))

	l := NewLoader(t.TempDir(), "")
	l.BindFlag("output.format", flags.Lookup("format"))
	l.BindFlag("scan.workers", flags.Lookup("workers"))

	cfg, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, "yaml", cfg.Output.Format)
	assert.Equal(t, 6, cfg.Scan.Workers)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	t.Parallel()

	work := t.TempDir()
	writeFile(t, filepath.Join(work, ".codeparser.yaml"), "scan: [unterminated\n")
	_, err := NewLoader(work, "").Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"zero workers", func(c *Config) { c.Scan.Workers = 0 }, ErrInvalidWorkers},
		{"zero depth", func(c *Config) { c.Extract.MaxDepth = 0 }, ErrInvalidMaxDepth},
		{"blank include", func(c *Config) { c.Scan.Include = []string{" "} }, ErrEmptyPattern},
		{"unknown policy", func(c *Config) { c.Scan.OnReadError = "retry" }, nil},
		{"unknown format", func(c *Config) { c.Output.Format = "xml" }, nil},
		{"unknown level", func(c *Config) { c.Log.Level = "loud" }, nil},
		{"empty root", func(c *Config) { c.Scan.Root = "" }, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tt.mutate(cfg)
			err := Validate(cfg)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Scan.Workers = -1
	cfg.Extract.MaxDepth = -1

	err := Validate(cfg)
	assert.ErrorIs(t, err, ErrInvalidWorkers)
	assert.ErrorIs(t, err, ErrInvalidMaxDepth)
}

func TestScannerOptions(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Scan.OnReadError = "abort"
	opts := cfg.ScannerOptions()
	assert.Equal(t, scanner.AbortOnError, opts.OnReadError)
	assert.Equal(t, cfg.Scan.Include, opts.Include)
	assert.True(t, opts.Gitignore)
}
