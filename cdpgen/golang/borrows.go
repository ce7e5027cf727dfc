package golang

import (
	"github.com/probelab/cdp/cdpgen/definition"
)

// ComputeBorrows decides which generated named types can reference string
// data from the message buffer they were decoded from. A named type borrows
// when some reachable field eventually is a string: a directed graph is
// built with one node per named type plus a distinguished string node;
// string fields add string → enclosing edges, references add target →
// enclosing edges, and arrays and anonymous nested objects recurse under the
// same enclosing identity. Everything reachable from the string node
// borrows.
//
// A bare self-reference adds no edge; it is the emitter's signal to indirect
// the field instead.
func ComputeBorrows(def *definition.Definition) map[QualifiedName]bool {
	g := newBorrowGraph()

	for i := range def.Domains {
		domain := &def.Domains[i]
		for j := range domain.Commands {
			g.addMethod(domain.Name, &domain.Commands[j])
		}
		for j := range domain.Events {
			g.addMethod(domain.Name, &domain.Events[j])
		}
		for j := range domain.TypeDefs {
			td := &domain.TypeDefs[j]
			g.addType(domain.Name, TypeName(td.Name), td.Type)
		}
	}

	return g.reachable()
}

type borrowGraph struct {
	// edges[from] lists the named types that depend on from.
	edges map[QualifiedName][]QualifiedName
	// fromString lists the named types that directly contain a string.
	fromString []QualifiedName
}

func newBorrowGraph() *borrowGraph {
	return &borrowGraph{edges: make(map[QualifiedName][]QualifiedName)}
}

func (g *borrowGraph) addMethod(domain string, m *definition.Method) {
	parent := TypeName(m.Name)
	for i := range m.Parameters {
		g.addType(domain, parent, m.Parameters[i].Type)
	}
	for i := range m.Returns {
		g.addType(domain, parent, m.Returns[i].Type)
	}
}

// addType records the edges contributed by one type expression. parent is
// the canonical name of the nearest enclosing named type; arrays and inline
// objects do not introduce a new identity.
func (g *borrowGraph) addType(domain, parent string, ty definition.Type) {
	enclosing := QualifiedName{Domain: TypeName(domain), Name: parent}
	switch t := ty.(type) {
	case definition.String:
		g.fromString = append(g.fromString, enclosing)
	case definition.Reference:
		if TypeName(t.Target) == parent {
			return
		}
		target := ResolveReference(domain, t.Target)
		g.edges[target] = append(g.edges[target], enclosing)
	case definition.Array:
		g.addType(domain, parent, t.Item.Type)
	case definition.Object:
		for i := range t.Fields {
			g.addType(domain, parent, t.Fields[i].Type)
		}
	}
}

func (g *borrowGraph) reachable() map[QualifiedName]bool {
	borrows := make(map[QualifiedName]bool)
	var visit func(QualifiedName)
	visit = func(n QualifiedName) {
		if borrows[n] {
			return
		}
		borrows[n] = true
		for _, next := range g.edges[n] {
			visit(next)
		}
	}
	for _, n := range g.fromString {
		visit(n)
	}
	return borrows
}
