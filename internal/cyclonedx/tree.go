package cyclonedx

import (
	"slices"

	"github.com/StinkyLord/sbomconv/internal/normalize"
	"github.com/StinkyLord/sbomconv/sbom"
)

// nesting is the containment forest rendered as nested components. Every
// node has at most one parent; order lists node IDs breadth-first so parents
// always come before their children.
type nesting struct {
	parent   map[string]string
	children map[string][]string
	roots    []string
	order    []string
}

// buildNesting turns CONTAINS and CONTAINED_BY edges into a forest. A node
// contained by several parents is nested under the smallest parent ID; a
// containment cycle is broken at its smallest member. Every containment edge
// the forest cannot show is recorded as dropped.
func buildNesting(doc *sbom.Document, rec *normalize.Recorder) *nesting {
	t := &nesting{
		parent:   map[string]string{},
		children: map[string][]string{},
	}

	type link struct{ from, to string }
	var links []link
	for _, e := range doc.Edges() {
		switch e.Type {
		case sbom.RelContains:
			links = append(links, link{e.From, e.To})
		case sbom.RelContainedBy:
			links = append(links, link{e.To, e.From})
		}
	}
	for _, l := range links {
		if l.from == l.to {
			rec.Drop(normalize.EdgeField(sbom.RelContains), l.from+" -> "+l.to, "a component cannot contain itself")
			continue
		}
		if p, ok := t.parent[l.to]; !ok || l.from < p {
			t.parent[l.to] = l.from
		}
	}
	for _, l := range links {
		if l.from != l.to && t.parent[l.to] != l.from {
			rec.Dropf(normalize.EdgeField(sbom.RelContains), l.from+" -> "+l.to, "component is already nested under %s", t.parent[l.to])
		}
	}
	for child, p := range t.parent {
		t.children[p] = append(t.children[p], child)
	}
	for p := range t.children {
		slices.Sort(t.children[p])
	}

	ids := make([]string, 0, len(doc.Nodes()))
	for _, n := range doc.SortedNodes() {
		ids = append(ids, n.ID)
		if _, nested := t.parent[n.ID]; !nested {
			t.roots = append(t.roots, n.ID)
		}
	}

	visited := make(map[string]bool, len(ids))
	t.walk(t.roots, visited)

	// Whatever the walk missed hangs off a cycle. Cut each cycle at its
	// smallest unvisited member and walk again.
	for _, id := range ids {
		if visited[id] {
			continue
		}
		rec.Dropf(normalize.EdgeField(sbom.RelContains), t.parent[id]+" -> "+id, "containment cycle broken at %s", id)
		p := t.parent[id]
		t.children[p] = slices.DeleteFunc(t.children[p], func(c string) bool { return c == id })
		delete(t.parent, id)
		t.roots = append(t.roots, id)
		t.walk([]string{id}, visited)
	}
	slices.Sort(t.roots)
	return t
}

// walk expands the forest breadth-first from start, appending to order.
func (t *nesting) walk(start []string, visited map[string]bool) {
	queue := slices.Clone(start)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if visited[id] {
			continue
		}
		visited[id] = true
		t.order = append(t.order, id)
		for _, c := range t.children[id] {
			if !visited[c] {
				queue = append(queue, c)
			}
		}
	}
}
