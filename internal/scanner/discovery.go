package scanner

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// DefaultExcludeDirs are directory names never descended into.
var DefaultExcludeDirs = []string{
	".git",
	"node_modules",
	"vendor",
	"dist",
	"build",
	".next",
	"__pycache__",
	".venv",
}

// DefaultInclude selects Python sources.
var DefaultInclude = []string{"**/*.py"}

type compiledPattern struct {
	pattern string
	globs   []glob.Glob
}

func (cp compiledPattern) match(relPath string) bool {
	for _, g := range cp.globs {
		if g.Match(relPath) {
			return true
		}
	}
	return false
}

// compilePattern compiles a slash-separated glob. Patterns starting with
// "**/" also match at the root, so "**/*.py" selects "main.py".
func compilePattern(pattern string) (compiledPattern, error) {
	cp := compiledPattern{pattern: pattern}
	variants := []string{pattern}
	if strings.HasPrefix(pattern, "**/") {
		variants = append(variants, strings.TrimPrefix(pattern, "**/"))
	}
	for _, v := range variants {
		g, err := glob.Compile(v, '/')
		if err != nil {
			return compiledPattern{}, err
		}
		cp.globs = append(cp.globs, g)
	}
	return cp, nil
}

func compilePatterns(patterns []string) ([]compiledPattern, error) {
	out := make([]compiledPattern, 0, len(patterns))
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		cp, err := compilePattern(p)
		if err != nil {
			return nil, err
		}
		out = append(out, cp)
	}
	return out, nil
}

func matchesAny(relPath string, patterns []compiledPattern) bool {
	for _, cp := range patterns {
		if cp.match(relPath) {
			return true
		}
	}
	return false
}

type discovery struct {
	include      []compiledPattern
	exclude      []compiledPattern
	excludedDirs map[string]bool
	gitignore    bool
}

// walk returns the files under root selected by the include patterns, in
// lexical order.
func (d *discovery) walk(root string) ([]string, error) {
	exclude := d.exclude
	if d.gitignore {
		ignored, err := compilePatterns(gitIgnoreGlobs(loadGitIgnorePatterns(root)))
		if err != nil {
			return nil, err
		}
		exclude = append(append([]compiledPattern{}, exclude...), ignored...)
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, relErr := filepath.Rel(root, path)
		if relErr != nil {
			relPath = path
		}
		relPath = filepath.ToSlash(relPath)

		if entry.IsDir() {
			if relPath == "." {
				return nil
			}
			if d.excludedDirs[entry.Name()] || matchesAny(relPath, exclude) {
				return filepath.SkipDir
			}
			return nil
		}

		if matchesAny(relPath, exclude) {
			return nil
		}
		if matchesAny(relPath, d.include) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// loadGitIgnorePatterns reads the root-level .gitignore (if present) and
// returns its non-empty, non-comment, non-negated lines.
func loadGitIgnorePatterns(rootPath string) []string {
	data, err := os.ReadFile(filepath.Join(rootPath, ".gitignore"))
	if err != nil {
		return nil
	}

	var patterns []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns
}

// gitIgnoreGlobs translates a minimal subset of .gitignore semantics into
// root-relative globs: a pattern without an inner slash matches at any depth,
// and every pattern also excludes everything beneath a matching directory.
func gitIgnoreGlobs(patterns []string) []string {
	var globs []string
	for _, p := range patterns {
		p = filepath.ToSlash(p)
		p = strings.TrimSuffix(p, "/")
		anchored := strings.HasPrefix(p, "/")
		p = strings.TrimPrefix(p, "/")
		if p == "" {
			continue
		}
		if anchored || strings.Contains(p, "/") {
			globs = append(globs, p, p+"/**")
			continue
		}
		globs = append(globs, "**/"+p, "**/"+p+"/**")
	}
	return globs
}
