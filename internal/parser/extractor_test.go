package parser

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeparser/internal/models"
)

type fakeNode struct {
	kind     string
	name     *fakeNode
	children []*fakeNode
	start    Point
	end      Point
	text     string
}

func (n *fakeNode) Kind() string { return n.kind }

func (n *fakeNode) ChildByFieldName(name string) (Node, bool) {
	if name != "name" || n.name == nil {
		return nil, false
	}
	return n.name, true
}

func (n *fakeNode) Children() []Node {
	out := make([]Node, len(n.children))
	for i, c := range n.children {
		out[i] = c
	}
	return out
}

func (n *fakeNode) StartPoint() Point { return n.start }
func (n *fakeNode) EndPoint() Point   { return n.end }
func (n *fakeNode) Text() []byte      { return []byte(n.text) }

type fakeTree struct {
	root   *fakeNode
	closed bool
}

func (t *fakeTree) Root() Node {
	if t.root == nil {
		return nil
	}
	return t.root
}

func (t *fakeTree) Close() { t.closed = true }

type fakeProvider struct {
	tree *fakeTree
	err  error
}

func (p *fakeProvider) Parse(ctx context.Context, source []byte) (Tree, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.tree, nil
}

var fakeGrammar = Grammar{
	Language:      "fake",
	FunctionKinds: []string{"func"},
	ClassKinds:    []string{"class"},
}

func decl(kind, name string, startRow, endRow uint, children ...*fakeNode) *fakeNode {
	n := &fakeNode{
		kind:     kind,
		children: children,
		start:    Point{Row: startRow},
		end:      Point{Row: endRow},
	}
	if name != "" {
		n.name = &fakeNode{kind: "identifier", text: name, start: n.start, end: n.start}
	}
	return n
}

func module(children ...*fakeNode) *fakeNode {
	return &fakeNode{kind: "module", children: children}
}

func extractFake(t *testing.T, root *fakeNode, opts ...Option) (*models.ParsedFile, error) {
	t.Helper()
	tree := &fakeTree{root: root}
	e := NewExtractor(fakeGrammar, &fakeProvider{tree: tree}, opts...)
	pf, err := e.Extract(context.Background(), "fake.src", nil)
	assert.True(t, tree.closed, "tree must be closed after extraction")
	return pf, err
}

func TestExtractTreeOrdering(t *testing.T) {
	t.Parallel()

	root := module(
		decl("class", "Widget", 0, 8,
			decl("func", "first", 1, 2),
			decl("func", "second", 3, 4,
				decl("func", "closure", 4, 4),
			),
			decl("func", "third", 5, 8),
		),
		decl("func", "after", 10, 12),
		decl("class", "Later", 13, 14),
	)

	pf, err := extractFake(t, root)
	require.NoError(t, err)
	requireWellFormed(t, pf)

	assert.Equal(t, []string{"Widget", "Later"}, classNames(pf))
	assert.Equal(t, []string{"first", "second", "closure", "third", "after"}, functionNames(pf))
	assert.Equal(t, "fake", pf.Language)
}

func TestExtractTreeLineNumbersAreOneBased(t *testing.T) {
	t.Parallel()

	pf, err := extractFake(t, module(decl("func", "f", 0, 2)))
	require.NoError(t, err)
	require.Len(t, pf.Functions, 1)
	assert.Equal(t, 1, pf.Functions[0].StartLine)
	assert.Equal(t, 3, pf.Functions[0].EndLine)
}

func TestExtractTreeMissingNameStillRecurses(t *testing.T) {
	t.Parallel()

	anonymous := decl("func", "", 0, 5, decl("func", "inner", 1, 2))
	emptyName := decl("class", "", 6, 7)
	emptyName.name = &fakeNode{kind: "identifier", text: ""}

	pf, err := extractFake(t, module(anonymous, emptyName))
	require.NoError(t, err)
	assert.Equal(t, []string{"inner"}, functionNames(pf))
	assert.Empty(t, pf.Classes)
}

func TestExtractTreeWithoutDeclarations(t *testing.T) {
	t.Parallel()

	pf, err := extractFake(t, module(&fakeNode{kind: "expression_statement"}))
	require.NoError(t, err)
	assert.Equal(t, []models.FunctionDeclaration{}, pf.Functions)
	assert.Equal(t, []models.ClassDeclaration{}, pf.Classes)

	pf, err = extractFake(t, nil)
	require.NoError(t, err)
	assert.Empty(t, pf.Functions)
}

func TestExtractTreeIDsDistinguishScopes(t *testing.T) {
	t.Parallel()

	root := module(
		decl("func", "foo", 0, 3, decl("func", "foo", 1, 2)),
		decl("class", "foo", 4, 5),
		decl("func", "foo", 6, 7),
	)

	pf, err := extractFake(t, root)
	require.NoError(t, err)
	requireWellFormed(t, pf)
	require.Len(t, pf.Functions, 3)

	want := models.DeclarationID(pf.ID, models.KindFunction, "foo.foo", 2, 0)
	assert.Equal(t, want, pf.Functions[1].ID)
}

func TestExtractTreeMaxDepth(t *testing.T) {
	t.Parallel()

	deep := &fakeNode{kind: "leaf"}
	for i := 0; i < 10; i++ {
		deep = &fakeNode{kind: "block", children: []*fakeNode{deep}}
	}

	_, err := extractFake(t, deep, WithMaxDepth(5))
	assert.ErrorIs(t, err, ErrMaxDepthExceeded)

	_, err = extractFake(t, deep, WithMaxDepth(10))
	assert.NoError(t, err)
}

func TestExtractFixedFileID(t *testing.T) {
	t.Parallel()

	pf, err := extractFake(t, module(decl("func", "f", 0, 0)), WithFileIDs(func() string { return "file-1" }))
	require.NoError(t, err)
	assert.Equal(t, "file-1", pf.ID)
	assert.Equal(t, "file-1", pf.Functions[0].FileID)
}

func TestExtractProviderError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	e := NewExtractor(fakeGrammar, &fakeProvider{err: boom})
	_, err := e.Extract(context.Background(), "broken.src", []byte("x"))
	assert.ErrorIs(t, err, boom)
}

func TestExtractCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := NewExtractor(fakeGrammar, &fakeProvider{tree: &fakeTree{root: module()}})
	_, err := e.Extract(ctx, "fake.src", nil)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = NewPythonExtractor().Extract(ctx, "sample.py", []byte(pythonSample))
	assert.ErrorIs(t, err, context.Canceled)
}
