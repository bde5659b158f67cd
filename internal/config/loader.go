package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. CODEPARSER_SCAN_WORKERS.
const EnvPrefix = "CODEPARSER"

// Loader resolves configuration with the following priority (highest first):
//  1. flags bound with BindFlag that were set on the command line
//  2. environment variables (CODEPARSER_*)
//  3. config file (explicit, ./.codeparser.yaml or ~/.codeparser/config.yaml)
//  4. defaults
type Loader struct {
	workDir    string
	homeDir    string
	configFile string
	flags      map[string]*pflag.Flag
	used       string
}

// NewLoader returns a loader that searches workDir and homeDir for config
// files. Either may be empty to skip that location.
func NewLoader(workDir, homeDir string) *Loader {
	return &Loader{
		workDir: workDir,
		homeDir: homeDir,
		flags:   make(map[string]*pflag.Flag),
	}
}

// SetConfigFile forces a specific config file. It must exist.
func (l *Loader) SetConfigFile(path string) {
	l.configFile = path
}

// BindFlag ties a config key to a command-line flag. The flag only wins when
// it was set explicitly.
func (l *Loader) BindFlag(key string, flag *pflag.Flag) {
	if flag != nil {
		l.flags[key] = flag
	}
}

// ConfigFileUsed returns the file read by the last Load, or "".
func (l *Loader) ConfigFileUsed() string {
	return l.used
}

// Load reads and validates the configuration.
func (l *Loader) Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	for key, flag := range l.flags {
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, fmt.Errorf("bind flag %s: %w", flag.Name, err)
		}
	}

	path, err := l.findConfigFile()
	if err != nil {
		return nil, err
	}
	l.used = path
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (l *Loader) findConfigFile() (string, error) {
	if l.configFile != "" {
		if _, err := os.Stat(l.configFile); err != nil {
			return "", fmt.Errorf("config file: %w", err)
		}
		return l.configFile, nil
	}

	var candidates []string
	if l.workDir != "" {
		candidates = append(candidates,
			filepath.Join(l.workDir, ".codeparser.yaml"),
			filepath.Join(l.workDir, ".codeparser.yml"),
		)
	}
	if l.homeDir != "" {
		candidates = append(candidates,
			filepath.Join(l.homeDir, ".codeparser", "config.yaml"),
			filepath.Join(l.homeDir, ".codeparser", "config.yml"),
		)
	}
	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", nil
}

// setDefaults registers every key so AutomaticEnv can see it during Unmarshal.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("scan.root", defaults.Scan.Root)
	v.SetDefault("scan.include", defaults.Scan.Include)
	v.SetDefault("scan.exclude", defaults.Scan.Exclude)
	v.SetDefault("scan.exclude_dirs", defaults.Scan.ExcludeDirs)
	v.SetDefault("scan.gitignore", defaults.Scan.Gitignore)
	v.SetDefault("scan.workers", defaults.Scan.Workers)
	v.SetDefault("scan.on_read_error", defaults.Scan.OnReadError)

	v.SetDefault("output.path", defaults.Output.Path)
	v.SetDefault("output.format", defaults.Output.Format)

	v.SetDefault("extract.max_depth", defaults.Extract.MaxDepth)

	v.SetDefault("log.level", defaults.Log.Level)
}

// LoadFromEnvironment loads configuration relative to the working directory
// and the user's home directory.
func LoadFromEnvironment(configFile string) (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	// Without a home directory only the working directory is searched.
	home, _ := os.UserHomeDir()

	l := NewLoader(wd, home)
	l.SetConfigFile(configFile)
	return l.Load()
}
