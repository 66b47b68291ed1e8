package ident

import (
	"cmp"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/StinkyLord/sbomconv/sbom"
)

const urnPrefix = "urn:uuid:"

// serialSpace scopes the name-based UUIDs this package generates.
var serialSpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/StinkyLord/sbomconv"))

// SerialNumber returns the CycloneDX serialNumber for doc. A metadata ID that
// already is a urn:uuid is kept. Otherwise the number is a version 5 UUID
// over the canonical encoding of the document with its date and ID removed
// and its nodes and edges sorted, so equal inventories always get equal
// serial numbers.
func SerialNumber(doc *sbom.Document) (string, error) {
	if doc.Metadata != nil && IsSerialNumber(doc.Metadata.ID) {
		return doc.Metadata.ID, nil
	}
	seed := doc.Clone()
	seed.Metadata.Date = nil
	seed.Metadata.ID = ""
	seed.NodeList.Nodes = seed.SortedNodes()
	slices.SortStableFunc(seed.NodeList.Edges, func(a, b *sbom.Edge) int {
		return cmp.Or(
			strings.Compare(a.From, b.From),
			strings.Compare(string(a.Type), string(b.Type)),
			strings.Compare(a.To, b.To),
		)
	})

	data, err := sbom.Marshal(seed)
	if err != nil {
		return "", err
	}
	return urnPrefix + uuid.NewSHA1(serialSpace, data).String(), nil
}

// IsSerialNumber reports whether s is a urn:uuid with a parseable UUID.
func IsSerialNumber(s string) bool {
	rest, ok := strings.CutPrefix(s, urnPrefix)
	if !ok {
		return false
	}
	_, err := uuid.Parse(rest)
	return err == nil
}

// ComponentID derives a bom-ref for a component that has none: its purl,
// else name@version, else the bare name, else "component". The result is
// disambiguated against taken, which it marks.
func ComponentID(purl, name, version string, taken map[string]bool) string {
	var id string
	switch {
	case purl != "":
		id = purl
	case name != "" && version != "":
		id = name + "@" + version
	case name != "":
		id = name
	default:
		id = "component"
	}
	id = Disambiguate(id, taken)
	taken[id] = true
	return id
}
