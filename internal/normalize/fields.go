package normalize

import (
	"strings"

	"github.com/StinkyLord/sbomconv/sbom"
)

// Use is one populated field occurrence.
type Use struct {
	Field   Field
	Subject string
}

// Populated lists every populated field of doc in document order: metadata
// first, then each node, then each edge.
func Populated(doc *sbom.Document) []Use {
	var out []Use
	if m := doc.Metadata; m != nil {
		meta := func(f Field, set bool) {
			if set {
				out = append(out, Use{Field: f, Subject: "document"})
			}
		}
		meta(MetadataID, m.ID != "")
		meta(MetadataName, m.Name != "")
		meta(MetadataComment, m.Comment != "")
		meta(MetadataNamespace, m.Namespace != "")
		meta(MetadataLicenseListVersion, m.LicenseListVersion != "")
		meta(MetadataAuthors, len(m.Authors) > 0)
		meta(MetadataTools, len(m.Tools) > 0)
		vendor := false
		for _, t := range m.Tools {
			vendor = vendor || t.Vendor != ""
		}
		meta(MetadataToolVendor, vendor)
	}
	if roots := doc.RootElements(); len(roots) > 1 {
		out = append(out, Use{Field: MetadataRootElementsExtra, Subject: strings.Join(roots[1:], ", ")})
	}

	for _, n := range doc.Nodes() {
		use := func(name string, set bool) {
			if set {
				out = append(out, Use{Field: NodeField(n, name), Subject: n.ID})
			}
		}
		use(Version, n.Version != "")
		use(Licenses, len(n.Licenses) > 0)
		use(LicenseConcluded, n.LicenseConcluded != "")
		use(LicenseComments, n.LicenseComments != "")
		use(Copyright, n.Copyright != "")
		use(Description, n.Description != "")
		use(Summary, n.Summary != "")
		use(Comment, n.Comment != "")
		use(PrimaryPurpose, len(n.PrimaryPurpose) > 0)
		use(ExtraPurposes, len(n.PrimaryPurpose) > 1)
		use(Identifiers, len(n.Identifiers) > 0)
		use(URLHome, n.URLHome != "")
		use(URLDownload, n.URLDownload != "")
		use(ExternalReferences, len(n.ExternalReferences) > 0)
		use(Suppliers, len(n.Suppliers) > 0)
		use(ExtraSuppliers, len(n.Suppliers) > 1)
		use(Originators, len(n.Originators) > 0)
		use(ExtraOriginators, len(n.Originators) > 1)
		use(Properties, len(n.Properties) > 0)
		for _, algo := range n.HashAlgorithms() {
			out = append(out, Use{Field: HashField(algo), Subject: n.ID})
		}
	}

	for _, e := range doc.Edges() {
		out = append(out, Use{Field: EdgeField(e.Type), Subject: e.From + " -> " + e.To})
	}
	return out
}
