package sbom

import (
	"fmt"
	"slices"
	"strings"
)

// ensure lazily allocates the metadata and node list.
func (d *Document) ensure() {
	if d.Metadata == nil {
		d.Metadata = &Metadata{}
	}
	if d.NodeList == nil {
		d.NodeList = &NodeList{}
	}
}

// Reindex rebuilds the ID index. Appends to Nodes are picked up on their
// own; call Reindex after replacing or removing entries in place.
func (l *NodeList) Reindex() {
	l.index = make(map[string]int, len(l.Nodes))
	for i, n := range l.Nodes {
		if n == nil {
			continue
		}
		if _, dup := l.index[n.ID]; !dup {
			l.index[n.ID] = i
		}
	}
	l.indexed = len(l.Nodes)
}

// lookup finds a node by ID. The index is rebuilt when Nodes grew behind its
// back or when the indexed position no longer holds a node with that ID.
func (l *NodeList) lookup(id string) (*Node, bool) {
	if l.index == nil || l.indexed != len(l.Nodes) {
		l.Reindex()
	}
	pos, ok := l.index[id]
	if ok && (l.Nodes[pos] == nil || l.Nodes[pos].ID != id) {
		l.Reindex()
		pos, ok = l.index[id]
	}
	if !ok {
		return nil, false
	}
	return l.Nodes[pos], true
}

// Node returns the node with the given ID.
func (d *Document) Node(id string) (*Node, bool) {
	if d.NodeList == nil {
		return nil, false
	}
	return d.NodeList.lookup(id)
}

// Nodes returns the document nodes in insertion order.
func (d *Document) Nodes() []*Node {
	if d.NodeList == nil {
		return nil
	}
	return d.NodeList.Nodes
}

// Edges returns the document edges in insertion order.
func (d *Document) Edges() []*Edge {
	if d.NodeList == nil {
		return nil
	}
	return d.NodeList.Edges
}

// RootElements returns the IDs the document describes.
func (d *Document) RootElements() []string {
	if d.NodeList == nil {
		return nil
	}
	return d.NodeList.RootElements
}

// AddNode appends a node, rejecting empty and duplicate IDs.
func (d *Document) AddNode(n *Node) error {
	if n == nil || n.ID == "" {
		return E(KindValidation, "AddNode", nil, "node ID must not be empty")
	}
	d.ensure()
	if _, dup := d.NodeList.lookup(n.ID); dup {
		return E(KindValidation, "AddNode", nil, "duplicate node ID %q", n.ID)
	}
	if n.Type == "" {
		n.Type = NodeTypePackage
	}
	d.NodeList.Nodes = append(d.NodeList.Nodes, n)
	d.NodeList.index[n.ID] = len(d.NodeList.Nodes) - 1
	d.NodeList.indexed = len(d.NodeList.Nodes)
	return nil
}

// AddEdge appends an edge whose endpoints must already be nodes of d.
func (d *Document) AddEdge(e *Edge) error {
	if e == nil {
		return E(KindValidation, "AddEdge", nil, "edge must not be nil")
	}
	d.ensure()
	var missing []string
	if _, ok := d.NodeList.lookup(e.From); !ok {
		missing = append(missing, fmt.Sprintf("from %q", e.From))
	}
	if _, ok := d.NodeList.lookup(e.To); !ok {
		missing = append(missing, fmt.Sprintf("to %q", e.To))
	}
	if len(missing) > 0 {
		return E(KindValidation, "AddEdge", nil, "%s edge references unknown node (%s)", e.Type, strings.Join(missing, ", "))
	}
	if e.Type == "" {
		e.Type = RelOther
	}
	d.NodeList.Edges = append(d.NodeList.Edges, e)
	return nil
}

// AddRootElement marks an existing node as described by the document.
func (d *Document) AddRootElement(id string) error {
	d.ensure()
	if _, ok := d.NodeList.lookup(id); !ok {
		return E(KindValidation, "AddRootElement", nil, "unknown node %q", id)
	}
	if !slices.Contains(d.NodeList.RootElements, id) {
		d.NodeList.RootElements = append(d.NodeList.RootElements, id)
	}
	return nil
}

// AddAuthor appends an author to the metadata.
func (m *Metadata) AddAuthor(p *Person) error {
	if p == nil || strings.TrimSpace(p.Name) == "" {
		return E(KindValidation, "AddAuthor", nil, "author name must not be empty")
	}
	if p.Kind == "" {
		p.Kind = PersonKindPerson
	}
	m.Authors = append(m.Authors, p)
	return nil
}

// AddTool appends a tool to the metadata.
func (m *Metadata) AddTool(t *Tool) error {
	if t == nil || strings.TrimSpace(t.Name) == "" {
		return E(KindValidation, "AddTool", nil, "tool name must not be empty")
	}
	m.Tools = append(m.Tools, t)
	return nil
}

// Validate checks every document invariant in one pass and reports all
// violations together.
func (d *Document) Validate() error {
	var details []string
	seen := map[string]int{}
	for i, n := range d.Nodes() {
		switch {
		case n == nil:
			details = append(details, fmt.Sprintf("node #%d is nil", i))
			continue
		case n.ID == "":
			details = append(details, fmt.Sprintf("node #%d has an empty ID", i))
			continue
		}
		seen[n.ID]++
		if seen[n.ID] == 2 {
			details = append(details, fmt.Sprintf("duplicate node ID %q", n.ID))
		}
	}
	for i, e := range d.Edges() {
		if e == nil {
			details = append(details, fmt.Sprintf("edge #%d is nil", i))
			continue
		}
		if seen[e.From] == 0 {
			details = append(details, fmt.Sprintf("%s edge #%d: dangling source %q", e.Type, i, e.From))
		}
		if seen[e.To] == 0 {
			details = append(details, fmt.Sprintf("%s edge #%d: dangling target %q", e.Type, i, e.To))
		}
	}
	for _, id := range d.RootElements() {
		if seen[id] == 0 {
			details = append(details, fmt.Sprintf("root element %q is not a node", id))
		}
	}
	if len(details) == 0 {
		return nil
	}
	return &Error{
		Kind:    KindValidation,
		Message: fmt.Sprintf("%d invariant violation(s)", len(details)),
		Details: details,
	}
}

// SortedNodes returns the nodes ordered by ID without touching the document.
func (d *Document) SortedNodes() []*Node {
	nodes := slices.Clone(d.Nodes())
	slices.SortStableFunc(nodes, func(a, b *Node) int {
		return strings.Compare(a.ID, b.ID)
	})
	return nodes
}
