package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"codeparser/internal/export"
	"codeparser/internal/models"
	"codeparser/internal/outline"
	"codeparser/internal/parser"
)

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Parse a single file and print its declarations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pf, err := parseOne(cmd, args[0])
		if err != nil {
			return err
		}
		format, err := export.ParseFormat(cfg.Output.Format)
		if err != nil {
			return err
		}
		return export.EncodeFile(os.Stdout, pf, format)
	},
}

var outlineCmd = &cobra.Command{
	Use:   "outline <file>",
	Short: "Print the declaration nesting of a single file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pf, err := parseOne(cmd, args[0])
		if err != nil {
			return err
		}
		o, err := outline.Build(pf)
		if err != nil {
			return err
		}
		return o.Render(os.Stdout)
	},
}

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List the languages with a registered extractor",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := newRegistry()
		if err != nil {
			return err
		}
		for _, tag := range registry.Languages() {
			fmt.Println(tag)
		}
		return nil
	},
}

// parseOne extracts path with the extractor named by --language, or the one
// its extension identifies.
func parseOne(cmd *cobra.Command, path string) (*models.ParsedFile, error) {
	registry, err := newRegistry()
	if err != nil {
		return nil, err
	}

	tag := parser.Identify(path)
	if name, _ := cmd.Flags().GetString("language"); name != "" {
		tag = parser.Tag(strings.ToLower(name))
	}
	extractor, err := registry.Lookup(tag)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	code, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return extractor.Extract(cmd.Context(), path, code)
}

func init() {
	parseCmd.Flags().String("language", "", "Language tag overriding extension detection (python, javascript, go)")
	parseCmd.Flags().String("format", "json", "Output format: json or yaml")
	parseCmd.Flags().Int("max-depth", 0, "Maximum syntax tree depth")
	outlineCmd.Flags().String("language", "", "Language tag overriding extension detection (python, javascript, go)")
}
