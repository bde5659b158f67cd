package parser

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	golang "github.com/tree-sitter/tree-sitter-go/bindings/go"
	javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

// Grammar describes which node kinds of a language count as declarations.
type Grammar struct {
	Language      Tag
	FunctionKinds []string
	ClassKinds    []string
	// NameField is the field holding the declaration's identifier.
	NameField string
}

// PythonGrammar matches def and class statements.
var PythonGrammar = Grammar{
	Language:      TagPython,
	FunctionKinds: []string{"function_definition"},
	ClassKinds:    []string{"class_definition"},
	NameField:     "name",
}

// JavaScriptGrammar matches function, generator and method declarations.
var JavaScriptGrammar = Grammar{
	Language:      TagJavaScript,
	FunctionKinds: []string{"function_declaration", "generator_function_declaration", "method_definition"},
	ClassKinds:    []string{"class_declaration"},
	NameField:     "name",
}

// GoGrammar treats functions and methods as functions and type specs as
// classes.
var GoGrammar = Grammar{
	Language:      TagGo,
	FunctionKinds: []string{"function_declaration", "method_declaration"},
	ClassKinds:    []string{"type_spec"},
	NameField:     "name",
}

// NewPythonExtractor returns an extractor bound to tree-sitter-python.
func NewPythonExtractor(opts ...Option) *Extractor {
	lang := sitter.NewLanguage(python.Language())
	return NewExtractor(PythonGrammar, newTreeSitterProvider(lang, TagPython), opts...)
}

// NewJavaScriptExtractor returns an extractor bound to tree-sitter-javascript.
func NewJavaScriptExtractor(opts ...Option) *Extractor {
	lang := sitter.NewLanguage(javascript.Language())
	return NewExtractor(JavaScriptGrammar, newTreeSitterProvider(lang, TagJavaScript), opts...)
}

// NewGoExtractor returns an extractor bound to tree-sitter-go.
func NewGoExtractor(opts ...Option) *Extractor {
	lang := sitter.NewLanguage(golang.Language())
	return NewExtractor(GoGrammar, newTreeSitterProvider(lang, TagGo), opts...)
}
