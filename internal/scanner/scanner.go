// Package scanner finds source files under a directory and extracts them
// concurrently through a parser registry.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"codeparser/internal/models"
	"codeparser/internal/parser"
)

// NumWorkers is the default number of files extracted in parallel.
const NumWorkers = 4

var (
	ErrRootNotFound = errors.New("root path does not exist")
	ErrRootNotDir   = errors.New("root path is not a directory")
	ErrNoFiles      = errors.New("no source files found")
)

// ReadErrorPolicy decides what a failing file does to the batch.
type ReadErrorPolicy string

const (
	// SkipOnError records the failure in Result.Skipped and continues.
	SkipOnError ReadErrorPolicy = "skip"
	// AbortOnError stops the batch and returns the first failure.
	AbortOnError ReadErrorPolicy = "abort"
)

// ParsePolicy validates a policy name. The empty string selects SkipOnError.
func ParsePolicy(name string) (ReadErrorPolicy, error) {
	switch ReadErrorPolicy(name) {
	case "", SkipOnError:
		return SkipOnError, nil
	case AbortOnError:
		return AbortOnError, nil
	default:
		return "", fmt.Errorf("unknown read error policy %q (want %q or %q)", name, SkipOnError, AbortOnError)
	}
}

// Options configures a Scanner.
type Options struct {
	// Include selects files by slash-separated glob relative to the root.
	// Empty means DefaultInclude.
	Include []string
	Exclude []string
	// ExcludeDirs are directory names skipped at any depth. Nil means
	// DefaultExcludeDirs.
	ExcludeDirs []string
	// Gitignore applies the root .gitignore as extra exclusions.
	Gitignore   bool
	Workers     int
	OnReadError ReadErrorPolicy
	// Progress is called once per processed file from worker goroutines.
	Progress func(path string)
	// Logger defaults to the global zerolog logger.
	Logger *zerolog.Logger
}

// Skipped describes a discovered file that produced no result.
type Skipped struct {
	Path   string `json:"path" yaml:"path"`
	Reason string `json:"reason" yaml:"reason"`
}

// Result is the outcome of one Scan. Files are in discovery order.
type Result struct {
	Root    string
	Files   []*models.ParsedFile
	Skipped []Skipped
}

// Scanner discovers source files under a root and extracts each through the
// registry.
type Scanner struct {
	registry  *parser.Registry
	discovery *discovery
	workers   int
	policy    ReadErrorPolicy
	progress  func(string)
	logger    zerolog.Logger
	readFile  func(string) ([]byte, error)
}

// New validates opts and builds a Scanner.
func New(registry *parser.Registry, opts Options) (*Scanner, error) {
	if registry == nil {
		return nil, errors.New("scanner requires a parser registry")
	}

	includePatterns := opts.Include
	if len(includePatterns) == 0 {
		includePatterns = DefaultInclude
	}
	include, err := compilePatterns(includePatterns)
	if err != nil {
		return nil, fmt.Errorf("invalid include pattern: %w", err)
	}
	exclude, err := compilePatterns(opts.Exclude)
	if err != nil {
		return nil, fmt.Errorf("invalid exclude pattern: %w", err)
	}

	dirs := opts.ExcludeDirs
	if dirs == nil {
		dirs = DefaultExcludeDirs
	}
	excludedDirs := make(map[string]bool, len(dirs))
	for _, d := range dirs {
		excludedDirs[d] = true
	}

	policy, err := ParsePolicy(string(opts.OnReadError))
	if err != nil {
		return nil, err
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = NumWorkers
	}

	logger := log.Logger
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	return &Scanner{
		registry: registry,
		discovery: &discovery{
			include:      include,
			exclude:      exclude,
			excludedDirs: excludedDirs,
			gitignore:    opts.Gitignore,
		},
		workers:  workers,
		policy:   policy,
		progress: opts.Progress,
		logger:   logger,
		readFile: os.ReadFile,
	}, nil
}

// Discover validates root and lists the files a Scan would process.
func (s *Scanner) Discover(root string) ([]string, error) {
	root = filepath.Clean(root)
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRootNotFound, root)
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrRootNotDir, root)
	}

	files, err := s.discovery.walk(root)
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w under %s", ErrNoFiles, root)
	}
	return files, nil
}

type outcome struct {
	file    *models.ParsedFile
	skipped *Skipped
}

// Scan extracts every discovered file. Root and empty-set failures abort
// before any extraction runs; per-file failures follow the read error policy.
func (s *Scanner) Scan(ctx context.Context, root string) (*Result, error) {
	files, err := s.Discover(root)
	if err != nil {
		return nil, err
	}
	s.logger.Debug().Str("root", root).Int("files", len(files)).Msg("discovered source files")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	outcomes := make([]outcome, len(files))
	jobs := make(chan int, len(files))
	for i := range files {
		jobs <- i
	}
	close(jobs)

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	workers := s.workers
	if workers > len(files) {
		workers = len(files)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if ctx.Err() != nil {
					return
				}
				out, err := s.processFile(ctx, files[i])
				if err != nil {
					errOnce.Do(func() {
						firstErr = err
						cancel()
					})
					return
				}
				outcomes[i] = out
				if s.progress != nil {
					s.progress(files[i])
				}
			}
		}()
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &Result{Root: root, Files: make([]*models.ParsedFile, 0, len(files))}
	for _, out := range outcomes {
		switch {
		case out.file != nil:
			result.Files = append(result.Files, out.file)
		case out.skipped != nil:
			result.Skipped = append(result.Skipped, *out.skipped)
		}
	}
	return result, nil
}

// processFile returns an error only when the batch must stop.
func (s *Scanner) processFile(ctx context.Context, path string) (outcome, error) {
	extractor, tag, ok := s.registry.ForPath(path)
	if !ok {
		s.logger.Warn().Str("path", path).Str("language", string(tag)).Msg("skipping unsupported file")
		return outcome{skipped: &Skipped{Path: path, Reason: fmt.Sprintf("%s: %s", parser.ErrUnsupportedLanguage, tag)}}, nil
	}

	code, err := s.readFile(path)
	if err != nil {
		return s.fail(path, fmt.Errorf("read %s: %w", path, err))
	}

	pf, err := extractor.Extract(ctx, path, code)
	if err != nil {
		if ctx.Err() != nil {
			return outcome{}, ctx.Err()
		}
		return s.fail(path, fmt.Errorf("extract %s: %w", path, err))
	}

	s.logger.Debug().
		Str("path", path).
		Int("functions", len(pf.Functions)).
		Int("classes", len(pf.Classes)).
		Msg("extracted declarations")
	return outcome{file: pf}, nil
}

func (s *Scanner) fail(path string, err error) (outcome, error) {
	if s.policy == AbortOnError {
		return outcome{}, err
	}
	s.logger.Warn().Err(err).Str("path", path).Msg("skipping file")
	return outcome{skipped: &Skipped{Path: path, Reason: err.Error()}}, nil
}
