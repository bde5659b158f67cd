package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"codeparser/internal/export"
	"codeparser/internal/scanner"
)

var (
	ErrInvalidWorkers  = errors.New("invalid worker count")
	ErrInvalidMaxDepth = errors.New("invalid max depth")
	ErrEmptyPattern    = errors.New("empty glob pattern")
)

// Validate checks every section and reports all problems at once.
func Validate(cfg *Config) error {
	var errs []error

	if strings.TrimSpace(cfg.Scan.Root) == "" {
		errs = append(errs, errors.New("scan.root is required"))
	}
	for _, p := range append(append([]string{}, cfg.Scan.Include...), cfg.Scan.Exclude...) {
		if strings.TrimSpace(p) == "" {
			errs = append(errs, fmt.Errorf("%w in scan.include or scan.exclude", ErrEmptyPattern))
			break
		}
	}
	if cfg.Scan.Workers < 1 {
		errs = append(errs, fmt.Errorf("%w: scan.workers must be positive, got %d", ErrInvalidWorkers, cfg.Scan.Workers))
	}
	if _, err := scanner.ParsePolicy(cfg.Scan.OnReadError); err != nil {
		errs = append(errs, fmt.Errorf("scan.on_read_error: %w", err))
	}

	if _, err := export.ParseFormat(cfg.Output.Format); err != nil {
		errs = append(errs, fmt.Errorf("output.format: %w", err))
	}

	if cfg.Extract.MaxDepth < 1 {
		errs = append(errs, fmt.Errorf("%w: extract.max_depth must be positive, got %d", ErrInvalidMaxDepth, cfg.Extract.MaxDepth))
	}

	if _, err := zerolog.ParseLevel(strings.ToLower(cfg.Log.Level)); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}

	return errors.Join(errs...)
}
