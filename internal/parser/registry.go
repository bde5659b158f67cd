package parser

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrUnsupportedLanguage is returned by Lookup when no extractor is bound.
	ErrUnsupportedLanguage = errors.New("unsupported language")
	// ErrDuplicateLanguage is returned when two extractors claim one tag.
	ErrDuplicateLanguage = errors.New("language registered twice")
)

// Registry maps language tags to extractors. It is built once at startup
// and only read afterwards, so lookups need no locking.
type Registry struct {
	extractors map[Tag]*Extractor
}

// NewRegistry binds each extractor under its language tag.
func NewRegistry(extractors ...*Extractor) (*Registry, error) {
	r := &Registry{
		extractors: make(map[Tag]*Extractor, len(extractors)),
	}
	for _, e := range extractors {
		if e == nil {
			continue
		}
		lang := e.Language()
		if lang == "" || lang == TagUnknown {
			return nil, fmt.Errorf("cannot register extractor for %q", lang)
		}
		if _, exists := r.extractors[lang]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateLanguage, lang)
		}
		r.extractors[lang] = e
	}
	return r, nil
}

// NewDefaultRegistry creates a registry with every built-in grammar.
func NewDefaultRegistry(opts ...Option) (*Registry, error) {
	return NewRegistry(
		NewPythonExtractor(opts...),
		NewJavaScriptExtractor(opts...),
		NewGoExtractor(opts...),
	)
}

// ForLanguage returns the extractor bound to tag. The boolean is false when
// the language is not registered.
func (r *Registry) ForLanguage(tag Tag) (*Extractor, bool) {
	e, ok := r.extractors[tag]
	return e, ok
}

// ForPath identifies the language of path and returns its extractor.
func (r *Registry) ForPath(path string) (*Extractor, Tag, bool) {
	tag := Identify(path)
	e, ok := r.ForLanguage(tag)
	return e, tag, ok
}

// Lookup is ForLanguage for callers that want an error.
func (r *Registry) Lookup(tag Tag) (*Extractor, error) {
	e, ok := r.ForLanguage(tag)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, tag)
	}
	return e, nil
}

// Languages returns the registered tags in sorted order.
func (r *Registry) Languages() []Tag {
	tags := make([]Tag, 0, len(r.extractors))
	for tag := range r.extractors {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}
