// Package lsp is a minimal language-server shell. It declares no
// capabilities; opening a document resolves and logs its language and, when
// an extractor is registered, a summary of its declarations.
package lsp

import (
	"context"
	"net/url"
	"strings"

	"github.com/charmbracelet/x/powernap/pkg/lsp/protocol"
	"github.com/rs/zerolog"

	"codeparser/internal/parser"
)

// Shell implements Handler on top of a parser registry.
type Shell struct {
	registry *parser.Registry
	logger   zerolog.Logger
}

// NewShell returns a Shell that logs through logger.
func NewShell(registry *parser.Registry, logger zerolog.Logger) *Shell {
	return &Shell{
		registry: registry,
		logger:   logger,
	}
}

func (s *Shell) OnInitialize(ctx context.Context, params *protocol.InitializeParams) (*protocol.InitializeResult, error) {
	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{},
	}, nil
}

func (s *Shell) OnInitialized(ctx context.Context) {
	s.logger.Info().Msg("lsp initialized")
}

func (s *Shell) OnShutdown(ctx context.Context) error {
	s.logger.Info().Msg("lsp shutting down")
	return nil
}

func (s *Shell) OnDocumentOpen(ctx context.Context, params *protocol.DidOpenTextDocumentParams) {
	path := uriToPath(string(params.TextDocument.URI))
	lang := parser.Identify(path)
	s.logger.Info().Str("path", path).Str("language", string(lang)).Msg("document opened")

	extractor, ok := s.registry.ForLanguage(lang)
	if !ok {
		return
	}
	pf, err := extractor.Extract(ctx, path, []byte(params.TextDocument.Text))
	if err != nil {
		s.logger.Warn().Err(err).Str("path", path).Msg("extraction failed")
		return
	}
	s.logger.Debug().
		Str("path", path).
		Int("functions", len(pf.Functions)).
		Int("classes", len(pf.Classes)).
		Msg("document declarations")
}

// uriToPath strips the file scheme from a document URI. Other schemes are
// returned unchanged.
func uriToPath(uri string) string {
	if !strings.HasPrefix(uri, "file://") {
		return uri
	}
	u, err := url.Parse(uri)
	if err != nil {
		return strings.TrimPrefix(uri, "file://")
	}
	return u.Path
}
