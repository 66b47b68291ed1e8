// Package deptree renders the dependency edges of a Document as an
// npm-style tree: every node carries its full subtree of children inline so
// the tree can be printed at any depth.
package deptree

import (
	"slices"

	"github.com/StinkyLord/sbomconv/sbom"
)

// Dependency types of a TreeNode.
const (
	Root       = "root"
	Direct     = "direct"
	Transitive = "transitive"
)

// TreeNode is a single node in the recursive dependency tree. Cycle marks a
// node already present on the path from its root; it is emitted as a leaf.
// Missing marks an edge target with no node in the document.
//
// Example:
//
//	app@1 -> children: [A@1 -> children: [B@1]]
type TreeNode struct {
	ID             string      `json:"id"`
	Name           string      `json:"name,omitempty"`
	Version        string      `json:"version,omitempty"`
	PURL           string      `json:"purl,omitempty"`
	DependencyType string      `json:"dependencyType"`
	Cycle          bool        `json:"cycle,omitempty"`
	Missing        bool        `json:"missing,omitempty"`
	Children       []*TreeNode `json:"children,omitempty"`
}

// Label is the node's display name: name@version, falling back to the ID.
func (n *TreeNode) Label() string {
	name := n.Name
	if name == "" {
		name = n.ID
	}
	if n.Version != "" {
		name += "@" + n.Version
	}
	return name
}

// workItem holds a pending node to be expanded along with the set of ancestor
// IDs on the path from the root to this node.
type workItem struct {
	id        string
	node      *TreeNode
	ancestors map[string]bool
}

// Build returns the dependency forest of doc. DEPENDS_ON edges and reversed
// DEPENDENCY_OF edges are followed. The roots are the document's root
// elements, or when it declares none, every node nothing depends on.
//
// The tree is built level by level from a queue rather than by recursion, so
// deep graphs cannot overflow the stack. Children are sorted by ID.
func Build(doc *sbom.Document) []*TreeNode {
	deps := map[string][]string{}
	dependedOn := map[string]bool{}
	for _, e := range doc.Edges() {
		from, to := e.From, e.To
		switch e.Type {
		case sbom.RelDependsOn:
		case sbom.RelDependencyOf:
			from, to = to, from
		default:
			continue
		}
		if !slices.Contains(deps[from], to) {
			deps[from] = append(deps[from], to)
		}
		dependedOn[to] = true
	}

	rootIDs := slices.Clone(doc.RootElements())
	if len(rootIDs) == 0 {
		for _, n := range doc.Nodes() {
			if !dependedOn[n.ID] {
				rootIDs = append(rootIDs, n.ID)
			}
		}
	}
	slices.Sort(rootIDs)
	rootIDs = slices.Compact(rootIDs)

	newNode := func(id, depType string) *TreeNode {
		n, ok := doc.Node(id)
		if !ok {
			return &TreeNode{ID: id, DependencyType: depType, Missing: true}
		}
		purl := n.Identifiers[sbom.IdentifierPURL]
		return &TreeNode{ID: id, Name: n.Name, Version: n.Version, PURL: purl, DependencyType: depType}
	}

	roots := make([]*TreeNode, 0, len(rootIDs))
	queue := make([]workItem, 0, len(rootIDs))
	for _, id := range rootIDs {
		node := newNode(id, Root)
		roots = append(roots, node)
		// Each root gets its own ancestor set so sibling paths are independent.
		queue = append(queue, workItem{id: id, node: node, ancestors: map[string]bool{id: true}})
	}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		depType := Transitive
		if item.node.DependencyType == Root {
			depType = Direct
		}

		children := slices.Clone(deps[item.id])
		slices.Sort(children)
		for _, childID := range children {
			child := newNode(childID, depType)
			item.node.Children = append(item.node.Children, child)
			if child.Missing {
				continue
			}
			if item.ancestors[childID] {
				child.Cycle = true
				continue
			}

			ancestors := make(map[string]bool, len(item.ancestors)+1)
			for k := range item.ancestors {
				ancestors[k] = true
			}
			ancestors[childID] = true
			queue = append(queue, workItem{id: childID, node: child, ancestors: ancestors})
		}
	}
	return roots
}
