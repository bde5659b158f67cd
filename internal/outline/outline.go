// Package outline reconstructs declaration nesting from line ranges. Records
// carry no parent links; a declaration's parent is the innermost other
// declaration whose range encloses it.
package outline

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dominikbraun/graph"

	"codeparser/internal/models"
)

// Outline is the containment forest of one parsed file.
type Outline struct {
	graph graph.Graph[string, models.KindedDeclaration]
	order map[string]int
	roots []string
}

// Build orders the declarations of pf by position and links each one to its
// innermost enclosing declaration. On identical ranges a class encloses a
// function, otherwise extraction order decides.
func Build(pf *models.ParsedFile) (*Outline, error) {
	decls := pf.Declarations()
	sort.SliceStable(decls, func(i, j int) bool {
		a, b := decls[i], decls[j]
		if a.StartLine != b.StartLine {
			return a.StartLine < b.StartLine
		}
		if a.EndLine != b.EndLine {
			return a.EndLine > b.EndLine
		}
		return a.Kind == models.KindClass && b.Kind != models.KindClass
	})

	g := graph.New(func(d models.KindedDeclaration) string { return d.ID }, graph.Directed(), graph.Acyclic())
	o := &Outline{graph: g, order: make(map[string]int, len(decls))}

	var open []models.KindedDeclaration
	for i, d := range decls {
		if err := g.AddVertex(d); err != nil {
			return nil, fmt.Errorf("add %s %s: %w", d.Kind, d.Name, err)
		}
		o.order[d.ID] = i

		for len(open) > 0 && !open[len(open)-1].Contains(d.Declaration) {
			open = open[:len(open)-1]
		}
		if len(open) == 0 {
			o.roots = append(o.roots, d.ID)
		} else if err := g.AddEdge(open[len(open)-1].ID, d.ID); err != nil {
			return nil, fmt.Errorf("link %s: %w", d.Name, err)
		}
		open = append(open, d)
	}
	return o, nil
}

// Roots returns the top-level declarations in source order.
func (o *Outline) Roots() []models.KindedDeclaration {
	return o.vertices(o.roots)
}

// Children returns the declarations directly enclosed by id, in source order.
func (o *Outline) Children(id string) ([]models.KindedDeclaration, error) {
	adjacency, err := o.graph.AdjacencyMap()
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(adjacency[id]))
	for child := range adjacency[id] {
		ids = append(ids, child)
	}
	sort.Slice(ids, func(i, j int) bool { return o.order[ids[i]] < o.order[ids[j]] })
	return o.vertices(ids), nil
}

// Parent returns the innermost declaration enclosing id. The boolean is false
// for top-level declarations.
func (o *Outline) Parent(id string) (models.KindedDeclaration, bool, error) {
	predecessors, err := o.graph.PredecessorMap()
	if err != nil {
		return models.KindedDeclaration{}, false, err
	}
	for parent := range predecessors[id] {
		d, err := o.graph.Vertex(parent)
		if err != nil {
			return models.KindedDeclaration{}, false, err
		}
		return d, true, nil
	}
	return models.KindedDeclaration{}, false, nil
}

func (o *Outline) vertices(ids []string) []models.KindedDeclaration {
	out := make([]models.KindedDeclaration, 0, len(ids))
	for _, id := range ids {
		if d, err := o.graph.Vertex(id); err == nil {
			out = append(out, d)
		}
	}
	return out
}

// Render writes the forest as an indented tree, one declaration per line.
func (o *Outline) Render(w io.Writer) error {
	var walk func(decls []models.KindedDeclaration, depth int) error
	walk = func(decls []models.KindedDeclaration, depth int) error {
		for _, d := range decls {
			if _, err := fmt.Fprintf(w, "%s%s %s (%d-%d)\n", strings.Repeat("  ", depth), d.Kind, d.Name, d.StartLine, d.EndLine); err != nil {
				return err
			}
			children, err := o.Children(d.ID)
			if err != nil {
				return err
			}
			if err := walk(children, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(o.Roots(), 0)
}
