package normalize

import (
	"github.com/StinkyLord/sbomconv/sbom"
)

// Support says how a format represents a model field.
type Support uint8

const (
	// Supported fields survive a write and read back unchanged.
	Supported Support = iota
	// Approximated fields are carried in a neighbouring construct (an
	// extension property, the first element of a list, a reversed edge).
	Approximated
	// Dropped fields have no representation and are lost on write.
	Dropped
)

func (s Support) String() string {
	switch s {
	case Supported:
		return "supported"
	case Approximated:
		return "approximated"
	default:
		return "dropped"
	}
}

// Field is a dotted key naming a model field, e.g. "file.version" or
// "edge.CONTAINS".
type Field string

const (
	MetadataID                 Field = "metadata.id"
	MetadataName               Field = "metadata.name"
	MetadataComment            Field = "metadata.comment"
	MetadataNamespace          Field = "metadata.namespace"
	MetadataLicenseListVersion Field = "metadata.license_list_version"
	MetadataAuthors            Field = "metadata.authors"
	MetadataTools              Field = "metadata.tools"
	MetadataToolVendor         Field = "metadata.tools.vendor"
	MetadataRootElementsExtra  Field = "metadata.root_elements.extra"
)

// Per-node fields; NodeField prefixes them with "package." or "file.".
const (
	Version            = "version"
	Licenses           = "licenses"
	LicenseConcluded   = "license_concluded"
	LicenseComments    = "license_comments"
	Copyright          = "copyright"
	Description        = "description"
	Summary            = "summary"
	Comment            = "comment"
	PrimaryPurpose     = "primary_purpose"
	ExtraPurposes      = "primary_purpose.extra"
	Identifiers        = "identifiers"
	URLHome            = "url_home"
	URLDownload        = "url_download"
	ExternalReferences = "external_references"
	Suppliers          = "suppliers"
	ExtraSuppliers     = "suppliers.extra"
	Originators        = "originators"
	ExtraOriginators   = "originators.extra"
	Properties         = "properties"
)

var nodeFields = []string{
	Version, Licenses, LicenseConcluded, LicenseComments, Copyright,
	Description, Summary, Comment, PrimaryPurpose, ExtraPurposes, Identifiers,
	URLHome, URLDownload, ExternalReferences, Suppliers, ExtraSuppliers,
	Originators, ExtraOriginators, Properties,
}

// NodeField returns the key of a per-node field for the node's type.
func NodeField(n *sbom.Node, name string) Field {
	if n.IsFile() {
		return Field("file." + name)
	}
	return Field("package." + name)
}

// HashField returns the key for a hash algorithm.
func HashField(algo sbom.HashAlgorithm) Field {
	return Field("hash." + string(algo))
}

// EdgeField returns the key for a relationship type.
func EdgeField(t sbom.RelationshipType) Field {
	return Field("edge." + string(t))
}

// Table is one format version's field coverage. Fields missing from the
// table are Supported.
type Table struct {
	Format  Format
	Version string
	Fields  map[Field]Support
}

// Support reports how the table's format represents f.
func (t *Table) Support(f Field) Support {
	if s, ok := t.Fields[f]; ok {
		return s
	}
	return Supported
}

// SPDX23 is the coverage of SPDX 2.3 JSON.
var SPDX23 = &Table{
	Format:  SPDX,
	Version: "SPDX-2.3",
	Fields: merge(
		map[Field]Support{
			MetadataID:         Dropped,
			MetadataAuthors:    Dropped,
			MetadataToolVendor: Dropped,
		},
		perType("package", map[string]Support{
			ExtraPurposes:    Dropped,
			ExtraSuppliers:   Dropped,
			ExtraOriginators: Dropped,
			Properties:       Dropped,
		}),
		perType("file", map[string]Support{
			Version:            Dropped,
			Description:        Dropped,
			Summary:            Dropped,
			PrimaryPurpose:     Dropped,
			ExtraPurposes:      Dropped,
			Identifiers:        Dropped,
			URLHome:            Dropped,
			URLDownload:        Dropped,
			ExternalReferences: Dropped,
			Suppliers:          Dropped,
			ExtraSuppliers:     Dropped,
			Originators:        Dropped,
			ExtraOriginators:   Dropped,
			Properties:         Dropped,
		}),
	),
}

// CycloneDXTable is the coverage of CycloneDX JSON 1.4 to 1.6.
var CycloneDXTable = &Table{
	Format:  CycloneDX,
	Version: "1.4-1.6",
	Fields: merge(
		map[Field]Support{
			MetadataID:                 Approximated,
			MetadataName:               Approximated,
			MetadataComment:            Approximated,
			MetadataNamespace:          Dropped,
			MetadataLicenseListVersion: Dropped,
			MetadataRootElementsExtra:  Dropped,

			HashField(sbom.HashMD2):     Dropped,
			HashField(sbom.HashMD4):     Dropped,
			HashField(sbom.HashMD6):     Dropped,
			HashField(sbom.HashSHA224):  Dropped,
			HashField(sbom.HashADLER32): Dropped,
		},
		edgeSupport(),
		perType("package", cdxNodeSupport()),
		perType("file", cdxNodeSupport()),
	),
}

func cdxNodeSupport() map[string]Support {
	return map[string]Support{
		LicenseConcluded: Approximated,
		LicenseComments:  Approximated,
		Summary:          Approximated,
		Comment:          Approximated,
		PrimaryPurpose:   Approximated,
		ExtraPurposes:    Dropped,
		Identifiers:      Approximated,
		URLHome:          Approximated,
		URLDownload:      Approximated,
		ExtraSuppliers:   Dropped,
		Originators:      Approximated,
	}
}

// CycloneDX only carries dependency edges and containment; the rest of the
// SPDX vocabulary is lost.
func edgeSupport() map[Field]Support {
	out := map[Field]Support{}
	for _, t := range sbom.RelationshipTypes {
		switch t {
		case sbom.RelDependsOn:
			out[EdgeField(t)] = Supported
		case sbom.RelDependencyOf, sbom.RelContains, sbom.RelContainedBy:
			out[EdgeField(t)] = Approximated
		default:
			out[EdgeField(t)] = Dropped
		}
	}
	return out
}

func perType(prefix string, fields map[string]Support) map[Field]Support {
	out := make(map[Field]Support, len(fields))
	for name, s := range fields {
		out[Field(prefix+"."+name)] = s
	}
	return out
}

func merge(parts ...map[Field]Support) map[Field]Support {
	out := map[Field]Support{}
	for _, p := range parts {
		for k, v := range p {
			out[k] = v
		}
	}
	return out
}

// TableFor returns the coverage table of a format.
func TableFor(f Format) *Table {
	if f == CycloneDX {
		return CycloneDXTable
	}
	return SPDX23
}

// AllFields lists every key a table can answer for, in a stable order; used
// to print coverage.
func AllFields() []Field {
	out := []Field{
		MetadataID, MetadataName, MetadataComment, MetadataNamespace,
		MetadataLicenseListVersion, MetadataAuthors, MetadataTools, MetadataToolVendor,
		MetadataRootElementsExtra,
	}
	for _, prefix := range []string{"package", "file"} {
		for _, name := range nodeFields {
			out = append(out, Field(prefix+"."+name))
		}
	}
	for _, a := range sbom.HashAlgorithms {
		out = append(out, HashField(a))
	}
	for _, t := range sbom.RelationshipTypes {
		out = append(out, EdgeField(t))
	}
	return out
}
