package normalize

import (
	"slices"
	"strings"

	cdx "github.com/CycloneDX/cyclonedx-go"

	"github.com/StinkyLord/sbomconv/sbom"
)

// Extension properties the engine owns on CycloneDX components and metadata.
const (
	PropPrefix           = "sbomconv:"
	PropLicenseConcluded = "sbomconv:license:concluded"
	PropLicenseFolded    = "sbomconv:license:concluded:folded"
	PropLicenseComments  = "sbomconv:license:comments"
	PropSummary          = "sbomconv:summary"
	PropComment          = "sbomconv:comment"
	PropPurpose          = "sbomconv:purpose"
	PropIdentifierPrefix = "sbomconv:identifier:"
	PropDocumentName     = "sbomconv:document:name"
	PropDocumentComment  = "sbomconv:document:comment"
)

// IsLicenseID reports whether s is a single license identifier rather than a
// compound expression.
func IsLicenseID(s string) bool {
	return s != "" && !strings.ContainsAny(s, " ()\t")
}

// ToCycloneDX renders the declared licenses and the concluded license of a
// node as a CycloneDX license list plus the engine properties that let a
// reader separate the two again.
//
// CycloneDX has no concluded-license field. The concluded expression is
// folded into the list when it is not already declared, and always recorded
// in PropLicenseConcluded.
func ToCycloneDX(n *sbom.Node) (*cdx.Licenses, []cdx.Property) {
	members := slices.Clone(n.Licenses)
	var props []cdx.Property

	if c := strings.TrimSpace(n.LicenseConcluded); c != "" && !sbom.IsUnset(c) {
		props = append(props, cdx.Property{Name: PropLicenseConcluded, Value: c})
		if !slices.Contains(members, c) {
			members = append(members, c)
			props = append(props, cdx.Property{Name: PropLicenseFolded, Value: "true"})
		}
	}
	if n.LicenseComments != "" {
		props = append(props, cdx.Property{Name: PropLicenseComments, Value: n.LicenseComments})
	}
	if len(members) == 0 {
		return nil, props
	}

	// The schema forbids mixing license objects and an expression, so one
	// compound member turns the whole list into a single expression.
	simple := true
	for _, m := range members {
		simple = simple && IsLicenseID(m)
	}
	var out cdx.Licenses
	if !simple {
		out = append(out, cdx.LicenseChoice{Expression: sbom.JoinLicenses(members)})
		return &out, props
	}
	for _, m := range members {
		lic := &cdx.License{ID: m}
		if strings.HasPrefix(m, "LicenseRef-") {
			lic = &cdx.License{Name: m}
		}
		out = append(out, cdx.LicenseChoice{License: lic})
	}
	return &out, props
}

// FromCycloneDX is the inverse of ToCycloneDX. props holds the component
// properties by name.
func FromCycloneDX(licenses *cdx.Licenses, props map[string]string) (declared []string, concluded string) {
	if licenses != nil {
		for _, choice := range *licenses {
			switch {
			case choice.Expression != "":
				declared = append(declared, sbom.SplitLicenses(choice.Expression)...)
			case choice.License != nil && choice.License.ID != "":
				declared = append(declared, choice.License.ID)
			case choice.License != nil && choice.License.Name != "":
				declared = append(declared, choice.License.Name)
			}
		}
	}
	concluded = props[PropLicenseConcluded]
	if concluded != "" && props[PropLicenseFolded] == "true" {
		if i := lastIndex(declared, concluded); i >= 0 {
			declared = slices.Delete(declared, i, i+1)
		}
	}
	if len(declared) == 0 {
		declared = nil
	}
	return declared, concluded
}

func lastIndex(list []string, s string) int {
	for i := len(list) - 1; i >= 0; i-- {
		if list[i] == s {
			return i
		}
	}
	return -1
}
