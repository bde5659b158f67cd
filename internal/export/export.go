// Package export encodes parsed files as JSON or YAML documents.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"codeparser/internal/models"
)

// Format selects the document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ErrUnknownFormat is returned for unsupported format names.
var ErrUnknownFormat = errors.New("unknown output format")

// ParseFormat accepts "json", "yaml" or "yml" in any case. The empty string
// selects JSON.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// Encode writes files as one ordered document.
func Encode(w io.Writer, files []*models.ParsedFile, format Format) error {
	if files == nil {
		files = []*models.ParsedFile{}
	}
	return encode(w, files, format)
}

// EncodeFile writes a single parsed file as a document of its own.
func EncodeFile(w io.Writer, pf *models.ParsedFile, format Format) error {
	return encode(w, pf, format)
}

func encode(w io.Writer, v any, format Format) error {
	switch format {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// IsStdout reports whether path means standard output.
func IsStdout(path string) bool {
	return path == "" || path == "-"
}

// Write encodes files to path, or to stdout when IsStdout(path).
func Write(path string, files []*models.ParsedFile, format Format) error {
	if IsStdout(path) {
		return Encode(os.Stdout, files, format)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	if err := Encode(f, files, format); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
