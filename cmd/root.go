package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"codeparser/internal/config"
	"codeparser/internal/parser"
)

// Build metadata, set from main.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

var (
	cfgFile string
	cfg     *config.Config
)

// flagKeys maps config keys to the flag names that may override them. Only
// flags defined on the running command are bound.
var flagKeys = map[string]string{
	"log.level":          "log-level",
	"scan.root":          "dir",
	"scan.include":       "include",
	"scan.exclude":       "exclude",
	"scan.gitignore":     "gitignore",
	"scan.workers":       "workers",
	"scan.on_read_error": "on-read-error",
	"output.path":        "out",
	"output.format":      "format",
	"extract.max_depth":  "max-depth",
}

var rootCmd = &cobra.Command{
	Use:   "codeparser",
	Short: "Extract function and class declarations from source trees",
	Long: "A CLI tool that parses Python and JavaScript sources with tree-sitter and exports " +
		"the function and class declarations it finds as JSON or YAML.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
		home, _ := os.UserHomeDir()

		loader := config.NewLoader(wd, home)
		loader.SetConfigFile(cfgFile)
		for key, name := range flagKeys {
			loader.BindFlag(key, cmd.Flags().Lookup(name))
		}

		loaded, err := loader.Load()
		if err != nil {
			return err
		}
		cfg = loaded

		setupLogging(cfg.Log.Level)
		if used := loader.ConfigFileUsed(); used != "" {
			log.Debug().Str("path", used).Msg("loaded config file")
		}
		return nil
	},
}

func setupLogging(level string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()
}

// newRegistry builds the default extractors with the configured depth limit.
func newRegistry() (*parser.Registry, error) {
	return parser.NewDefaultRegistry(parser.WithMaxDepth(cfg.Extract.MaxDepth))
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default ./.codeparser.yaml or ~/.codeparser/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (trace, debug, info, warn, error)")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(outlineCmd)
	rootCmd.AddCommand(lspCmd)
	rootCmd.AddCommand(languagesCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command. Interrupts cancel the running command's
// context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}
