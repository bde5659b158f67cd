// Package parser turns source text into function and class declaration
// records. Syntax trees come from a Provider; extractors are looked up in a
// Registry by language tag.
package parser

import "context"

// Point is a 0-based row/column position in the source.
type Point struct {
	Row    uint
	Column uint
}

// Node is the narrow view of a syntax tree node the extractor relies on.
type Node interface {
	// Kind is the grammar's node type, e.g. "function_definition".
	Kind() string
	// ChildByFieldName returns the child bound to the named grammar field.
	ChildByFieldName(name string) (Node, bool)
	// Children returns the direct children in source order.
	Children() []Node
	StartPoint() Point
	EndPoint() Point
	// Text returns the raw source bytes covered by the node.
	Text() []byte
}

// Tree is a parsed syntax tree. Nodes obtained from a tree must not be used
// after Close.
type Tree interface {
	Root() Node
	Close()
}

// Provider turns source text into a syntax tree for one grammar.
type Provider interface {
	Parse(ctx context.Context, source []byte) (Tree, error)
}
