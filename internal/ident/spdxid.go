// Package ident derives the identifiers a writer needs but the Document model
// does not carry in wire form: SPDXIDs, document namespaces, CycloneDX serial
// numbers and bom-refs.
package ident

import (
	"strconv"
	"strings"

	"github.com/StinkyLord/sbomconv/sbom"
)

const (
	// SPDXPrefix starts every SPDX element identifier.
	SPDXPrefix = "SPDXRef-"
	// DocumentID is the SPDXID of the document element itself.
	DocumentID = SPDXPrefix + "DOCUMENT"
	// DefaultNamespace is the documentNamespace used when the metadata does
	// not name one.
	DefaultNamespace = "https://spdx.org/spdxdocs/"
)

// Policy controls how node IDs become SPDXIDs.
type Policy uint8

const (
	// Sanitize rewrites characters SPDX does not allow in an idstring.
	Sanitize Policy = iota
	// Preserve only adds the SPDXRef- prefix.
	Preserve
)

// ParsePolicy resolves a policy name as used in configuration.
func ParsePolicy(name string) (Policy, bool) {
	switch strings.ToLower(name) {
	case "", "sanitize":
		return Sanitize, true
	case "preserve":
		return Preserve, true
	}
	return Sanitize, false
}

func (p Policy) String() string {
	if p == Preserve {
		return "preserve"
	}
	return "sanitize"
}

// SPDXIDs maps every node ID to a unique SPDXID. Collisions are broken with
// -2, -3, ... suffixes in node order, so the mapping only depends on the
// node sequence. The document's own ID is never handed out.
func SPDXIDs(nodes []*sbom.Node, policy Policy) map[string]string {
	out := make(map[string]string, len(nodes))
	taken := map[string]bool{DocumentID: true}
	for _, n := range nodes {
		if _, done := out[n.ID]; done {
			continue
		}
		id := SPDXPrefix + idstring(n.ID, policy)
		id = Disambiguate(id, taken)
		taken[id] = true
		out[n.ID] = id
	}
	return out
}

// NodeID is the node ID a reader derives from an SPDXID.
func NodeID(spdxID string) string {
	return strings.TrimPrefix(spdxID, SPDXPrefix)
}

// Altered reports whether reading spdxID back would not yield nodeID.
func Altered(nodeID, spdxID string) bool {
	return NodeID(spdxID) != nodeID
}

func idstring(id string, policy Policy) string {
	id = strings.TrimPrefix(id, SPDXPrefix)
	if policy == Preserve {
		if id == "" {
			return "node"
		}
		return id
	}
	var b strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	if b.Len() == 0 {
		return "node"
	}
	return b.String()
}

// Disambiguate returns id, or id with the first free numeric suffix when id
// is already taken. It does not mark the result as taken.
func Disambiguate(id string, taken map[string]bool) string {
	if !taken[id] {
		return id
	}
	for i := 2; ; i++ {
		c := id + "-" + strconv.Itoa(i)
		if !taken[c] {
			return c
		}
	}
}

// Namespace returns the document namespace for meta.
func Namespace(meta *sbom.Metadata) string {
	if meta != nil && strings.TrimSpace(meta.Namespace) != "" {
		return meta.Namespace
	}
	return DefaultNamespace
}
