package parser

import (
	"context"
	"errors"
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// ErrParseFailed is returned when tree-sitter produces no tree.
var ErrParseFailed = errors.New("tree-sitter parse failed")

// treeSitterProvider implements Provider with an official tree-sitter grammar.
type treeSitterProvider struct {
	language *sitter.Language
	lang     Tag
}

func newTreeSitterProvider(language *sitter.Language, lang Tag) *treeSitterProvider {
	return &treeSitterProvider{
		language: language,
		lang:     lang,
	}
}

// Parse builds a fresh tree. A parser is created per call so concurrent
// callers never share parser or tree state.
func (p *treeSitterProvider) Parse(ctx context.Context, source []byte) (Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	parser := sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(p.language); err != nil {
		return nil, fmt.Errorf("set %s grammar: %w", p.lang, err)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("%w: %s", ErrParseFailed, p.lang)
	}
	return &treeSitterTree{tree: tree, source: source}, nil
}

type treeSitterTree struct {
	tree   *sitter.Tree
	source []byte
}

func (t *treeSitterTree) Root() Node {
	return treeSitterNode{node: t.tree.RootNode(), source: t.source}
}

func (t *treeSitterTree) Close() {
	t.tree.Close()
}

type treeSitterNode struct {
	node   *sitter.Node
	source []byte
}

func (n treeSitterNode) Kind() string {
	return n.node.Kind()
}

func (n treeSitterNode) ChildByFieldName(name string) (Node, bool) {
	child := n.node.ChildByFieldName(name)
	if child == nil {
		return nil, false
	}
	return treeSitterNode{node: child, source: n.source}, true
}

func (n treeSitterNode) Children() []Node {
	count := n.node.ChildCount()
	children := make([]Node, 0, count)
	for i := uint(0); i < count; i++ {
		child := n.node.Child(i)
		if child == nil {
			continue
		}
		children = append(children, treeSitterNode{node: child, source: n.source})
	}
	return children
}

func (n treeSitterNode) StartPoint() Point {
	p := n.node.StartPosition()
	return Point{Row: p.Row, Column: p.Column}
}

func (n treeSitterNode) EndPoint() Point {
	p := n.node.EndPosition()
	return Point{Row: p.Row, Column: p.Column}
}

func (n treeSitterNode) Text() []byte {
	start, end := n.node.StartByte(), n.node.EndByte()
	if end > uint(len(n.source)) || start > end {
		return nil
	}
	return n.source[start:end]
}
