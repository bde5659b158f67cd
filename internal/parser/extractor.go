package parser

import (
	"context"
	"errors"
	"fmt"

	"codeparser/internal/models"
)

// DefaultMaxDepth bounds traversal of pathologically deep trees.
const DefaultMaxDepth = 4096

// cancelCheckInterval is how many nodes are visited between context checks.
const cancelCheckInterval = 1024

// ErrMaxDepthExceeded is returned when a tree nests deeper than the
// extractor's limit.
var ErrMaxDepthExceeded = errors.New("syntax tree exceeds maximum depth")

// Option configures an Extractor.
type Option func(*Extractor)

// WithMaxDepth overrides DefaultMaxDepth. Non-positive values are ignored.
func WithMaxDepth(depth int) Option {
	return func(e *Extractor) {
		if depth > 0 {
			e.maxDepth = depth
		}
	}
}

// WithFileIDs replaces the random file identifier source.
func WithFileIDs(next func() string) Option {
	return func(e *Extractor) {
		if next != nil {
			e.newFileID = next
		}
	}
}

// Extractor walks syntax trees of one language and emits function and class
// declarations. It keeps no state between calls and is safe for concurrent
// use as long as its Provider is.
type Extractor struct {
	grammar       Grammar
	provider      Provider
	functionKinds map[string]struct{}
	classKinds    map[string]struct{}
	maxDepth      int
	newFileID     func() string
}

// NewExtractor binds a grammar description to a syntax tree provider.
func NewExtractor(grammar Grammar, provider Provider, opts ...Option) *Extractor {
	e := &Extractor{
		grammar:       grammar,
		provider:      provider,
		functionKinds: kindSet(grammar.FunctionKinds),
		classKinds:    kindSet(grammar.ClassKinds),
		maxDepth:      DefaultMaxDepth,
		newFileID:     models.NewFileID,
	}
	if e.grammar.NameField == "" {
		e.grammar.NameField = "name"
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Language returns the tag of the grammar this extractor is bound to.
func (e *Extractor) Language() Tag {
	return e.grammar.Language
}

// Extract parses source with the bound provider and extracts its
// declarations. The tree is released before Extract returns.
func (e *Extractor) Extract(ctx context.Context, filePath string, source []byte) (*models.ParsedFile, error) {
	tree, err := e.provider.Parse(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filePath, err)
	}
	defer tree.Close()

	return e.ExtractTree(ctx, filePath, tree)
}

type frame struct {
	node  Node
	depth int
	scope []string
}

// ExtractTree walks an already parsed tree in pre-order. Declarations of
// each kind are returned flat, in the order their nodes are first visited.
// Declaration nodes without a name are skipped but their children are still
// visited. The tree is only read.
func (e *Extractor) ExtractTree(ctx context.Context, filePath string, tree Tree) (*models.ParsedFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &models.ParsedFile{
		ID:        e.newFileID(),
		FilePath:  filePath,
		Language:  string(e.grammar.Language),
		Functions: []models.FunctionDeclaration{},
		Classes:   []models.ClassDeclaration{},
	}

	root := tree.Root()
	if root == nil {
		return result, nil
	}

	stack := []frame{{node: root}}
	visited := 0
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if current.depth > e.maxDepth {
			return nil, fmt.Errorf("%w (%d) in %s", ErrMaxDepthExceeded, e.maxDepth, filePath)
		}
		visited++
		if visited%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		scope := current.scope
		if kind, ok := e.declarationKind(current.node.Kind()); ok {
			if decl, named := e.declaration(result.ID, kind, current.node, current.scope); named {
				switch kind {
				case models.KindFunction:
					result.Functions = append(result.Functions, models.FunctionDeclaration(decl))
				case models.KindClass:
					result.Classes = append(result.Classes, models.ClassDeclaration(decl))
				}
				scope = nestScope(current.scope, decl.Name)
			}
		}

		// Push in reverse so the leftmost child is visited first.
		children := current.node.Children()
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, frame{node: children[i], depth: current.depth + 1, scope: scope})
		}
	}

	return result, nil
}

func (e *Extractor) declarationKind(nodeKind string) (models.Kind, bool) {
	if _, ok := e.functionKinds[nodeKind]; ok {
		return models.KindFunction, true
	}
	if _, ok := e.classKinds[nodeKind]; ok {
		return models.KindClass, true
	}
	return "", false
}

// declaration builds the record for a declaration node. It reports false
// when the node has no usable name.
func (e *Extractor) declaration(fileID string, kind models.Kind, node Node, scope []string) (models.Declaration, bool) {
	nameNode, ok := node.ChildByFieldName(e.grammar.NameField)
	if !ok {
		return models.Declaration{}, false
	}
	name := string(nameNode.Text())
	if name == "" {
		return models.Declaration{}, false
	}

	start, end := node.StartPoint(), node.EndPoint()
	startLine := int(start.Row) + 1
	endLine := int(end.Row) + 1
	if endLine < startLine {
		endLine = startLine
	}

	return models.Declaration{
		ID:        models.DeclarationID(fileID, kind, models.QualifiedPath(scope, name), startLine, int(start.Column)),
		Name:      name,
		FileID:    fileID,
		StartLine: startLine,
		EndLine:   endLine,
	}, true
}

func nestScope(scope []string, name string) []string {
	nested := make([]string, len(scope)+1)
	copy(nested, scope)
	nested[len(scope)] = name
	return nested
}

func kindSet(kinds []string) map[string]struct{} {
	set := make(map[string]struct{}, len(kinds))
	for _, k := range kinds {
		set[k] = struct{}{}
	}
	return set
}
