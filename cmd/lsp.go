package cmd

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"codeparser/internal/lsp"
)

var lspCmd = &cobra.Command{
	Use:   "lsp",
	Short: "Start the language server shell over stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := newRegistry()
		if err != nil {
			return err
		}
		shell := lsp.NewShell(registry, log.Logger.With().Str("component", "lsp").Logger())
		log.Info().Msg("lsp listening on stdio")
		return lsp.Serve(cmd.Context(), shell, os.Stdin, os.Stdout)
	},
}
