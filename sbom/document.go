// Package sbom defines the neutral, graph-based Document model shared by every
// reader and writer, and the error taxonomy of the conversion engine.
package sbom

import (
	"strings"
	"time"
)

// Document is the root of one software inventory.
type Document struct {
	Metadata *Metadata `json:"metadata,omitempty"`
	NodeList *NodeList `json:"node_list,omitempty"`
}

// Metadata describes the document itself.
type Metadata struct {
	ID                 string     `json:"id,omitempty"`
	Name               string     `json:"name,omitempty"`
	Comment            string     `json:"comment,omitempty"`
	Namespace          string     `json:"namespace,omitempty"`
	Date               *time.Time `json:"date,omitempty"`
	LicenseListVersion string     `json:"license_list_version,omitempty"`
	Authors            []*Person  `json:"authors,omitempty"`
	Tools              []*Tool    `json:"tools,omitempty"`
}

// Person is an author, supplier or originator.
type Person struct {
	Name  string     `json:"name"`
	Email string     `json:"email,omitempty"`
	URL   string     `json:"url,omitempty"`
	Kind  PersonKind `json:"kind,omitempty"`
}

// IsOrg reports whether the person is an organization.
func (p *Person) IsOrg() bool {
	return p.Kind == PersonKindOrganization
}

// Tool is a program that took part in producing the document.
type Tool struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
	Vendor  string `json:"vendor,omitempty"`
}

// NodeList owns the nodes and edges of a Document.
//
// Nodes keeps insertion order; lookups by ID go through an index of
// positions. Callers may append to Nodes directly and defer validation
// until write time. An entry replaced in place is noticed when its old ID is
// looked up; its new ID is only found after Reindex.
type NodeList struct {
	Nodes        []*Node  `json:"nodes,omitempty"`
	Edges        []*Edge  `json:"edges,omitempty"`
	RootElements []string `json:"root_elements,omitempty"`

	index   map[string]int
	indexed int
}

// Node is one inventory item.
type Node struct {
	ID                 string                    `json:"id"`
	Type               NodeType                  `json:"type,omitempty"`
	Name               string                    `json:"name,omitempty"`
	Version            string                    `json:"version,omitempty"`
	Licenses           []string                  `json:"licenses,omitempty"`
	LicenseConcluded   string                    `json:"license_concluded,omitempty"`
	LicenseComments    string                    `json:"license_comments,omitempty"`
	Copyright          string                    `json:"copyright,omitempty"`
	Description        string                    `json:"description,omitempty"`
	Summary            string                    `json:"summary,omitempty"`
	Comment            string                    `json:"comment,omitempty"`
	PrimaryPurpose     []Purpose                 `json:"primary_purpose,omitempty"`
	Hashes             map[HashAlgorithm]string  `json:"hashes,omitempty"`
	Identifiers        map[IdentifierType]string `json:"identifiers,omitempty"`
	URLHome            string                    `json:"url_home,omitempty"`
	URLDownload        string                    `json:"url_download,omitempty"`
	ExternalReferences []*ExternalReference      `json:"external_references,omitempty"`
	Suppliers          []*Person                 `json:"suppliers,omitempty"`
	Originators        []*Person                 `json:"originators,omitempty"`
	Properties         []*Property               `json:"properties,omitempty"`
}

// ExternalReference points at a resource related to a node.
type ExternalReference struct {
	URL       string `json:"url"`
	Type      string `json:"type,omitempty"`
	Comment   string `json:"comment,omitempty"`
	Authority string `json:"authority,omitempty"`
}

// Property is a free-form name/value pair. Readers keep fields they do not
// map onto the model here.
type Property struct {
	Name  string `json:"name"`
	Value string `json:"value,omitempty"`
}

// Edge is a directed, typed relationship between two nodes.
type Edge struct {
	Type RelationshipType `json:"type"`
	From string           `json:"from"`
	To   string           `json:"to"`
}

// NewDocument returns an empty document ready for mutation.
func NewDocument() *Document {
	return &Document{
		Metadata: &Metadata{},
		NodeList: &NodeList{},
	}
}

// NewNode returns a node with the given ID and type.
func NewNode(id string, t NodeType) *Node {
	return &Node{ID: id, Type: t}
}

// IsFile reports whether the node describes a file. Nodes without a type are
// packages.
func (n *Node) IsFile() bool {
	return n.Type == NodeTypeFile
}

// SetHash records a digest, lower-casing the hex value.
func (n *Node) SetHash(algo HashAlgorithm, digest string) {
	if n.Hashes == nil {
		n.Hashes = map[HashAlgorithm]string{}
	}
	n.Hashes[algo] = strings.ToLower(digest)
}

// SetIdentifier records a software identifier of the given scheme.
func (n *Node) SetIdentifier(t IdentifierType, value string) {
	if n.Identifiers == nil {
		n.Identifiers = map[IdentifierType]string{}
	}
	n.Identifiers[t] = value
}

// HashAlgorithms returns the node's algorithms in canonical order.
func (n *Node) HashAlgorithms() []HashAlgorithm {
	out := make([]HashAlgorithm, 0, len(n.Hashes))
	for _, a := range HashAlgorithms {
		if _, ok := n.Hashes[a]; ok {
			out = append(out, a)
		}
	}
	return out
}

// Now returns the document date, or fallback when none is set.
func (m *Metadata) Now(fallback time.Time) time.Time {
	if m != nil && m.Date != nil {
		return m.Date.UTC()
	}
	return fallback.UTC()
}
