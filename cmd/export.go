package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/x/term"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"codeparser/internal/export"
	"codeparser/internal/scanner"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Parse every source file under a directory and write the declaration document",
	RunE: func(cmd *cobra.Command, args []string) error {
		quiet, _ := cmd.Flags().GetBool("quiet")

		format, err := export.ParseFormat(cfg.Output.Format)
		if err != nil {
			return err
		}
		registry, err := newRegistry()
		if err != nil {
			return err
		}

		opts := cfg.ScannerOptions()
		opts.Logger = &log.Logger

		// Discovery runs once up front so the bar knows its total.
		probe, err := scanner.New(registry, opts)
		if err != nil {
			return err
		}
		files, err := probe.Discover(cfg.Scan.Root)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "→ Found %d source files under %s\n", len(files), cfg.Scan.Root)

		var bar *progressbar.ProgressBar
		if !quiet && term.IsTerminal(os.Stderr.Fd()) {
			bar = progressbar.NewOptions(len(files),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionSetDescription("Parsing files"),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionShowIts(),
				progressbar.OptionSetItsString("files/s"),
				progressbar.OptionThrottle(65*time.Millisecond),
				progressbar.OptionOnCompletion(func() {
					fmt.Fprintln(os.Stderr)
				}),
			)
			opts.Progress = func(string) {
				_ = bar.Add(1)
			}
		}

		s, err := scanner.New(registry, opts)
		if err != nil {
			return err
		}
		result, err := s.Scan(cmd.Context(), cfg.Scan.Root)
		if bar != nil {
			_ = bar.Finish()
		}
		if err != nil {
			return err
		}

		if err := export.Write(cfg.Output.Path, result.Files, format); err != nil {
			return err
		}

		functions, classes := 0, 0
		for _, pf := range result.Files {
			functions += len(pf.Functions)
			classes += len(pf.Classes)
		}
		fmt.Fprintf(os.Stderr, "✓ Parsed %d files: %d functions, %d classes\n", len(result.Files), functions, classes)
		for _, sk := range result.Skipped {
			fmt.Fprintf(os.Stderr, "⚠ Skipped %s: %s\n", sk.Path, sk.Reason)
		}
		if !export.IsStdout(cfg.Output.Path) {
			fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", cfg.Output.Path)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().String("dir", ".", "Project root directory")
	exportCmd.Flags().StringP("out", "o", "", "Output file (default stdout)")
	exportCmd.Flags().String("format", "json", "Output format: json or yaml")
	exportCmd.Flags().StringSlice("include", nil, "Glob patterns of files to parse (default **/*.py)")
	exportCmd.Flags().StringSlice("exclude", nil, "Glob patterns of files to skip")
	exportCmd.Flags().Bool("gitignore", true, "Honor the root .gitignore")
	exportCmd.Flags().Int("workers", scanner.NumWorkers, "Number of files parsed concurrently")
	exportCmd.Flags().String("on-read-error", string(scanner.SkipOnError), "What to do when a file cannot be read: skip or abort")
	exportCmd.Flags().Int("max-depth", 0, "Maximum syntax tree depth")
	exportCmd.Flags().BoolP("quiet", "q", false, "Disable the progress bar")
}
