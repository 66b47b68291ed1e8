package cyclonedx

import (
	"strings"

	cdx "github.com/CycloneDX/cyclonedx-go"

	"github.com/StinkyLord/sbomconv/sbom"
)

// Comment markers on the external references that carry Node.URLHome and
// Node.URLDownload.
const (
	markerURLHome     = "sbomconv:url_home"
	markerURLDownload = "sbomconv:url_download"
)

const componentTypeFile = cdx.ComponentType("file")

var purposeTypes = map[sbom.Purpose]cdx.ComponentType{
	sbom.PurposeApplication:     "application",
	sbom.PurposeFramework:       "framework",
	sbom.PurposeLibrary:         "library",
	sbom.PurposeContainer:       "container",
	sbom.PurposeOperatingSystem: "operating-system",
	sbom.PurposeDevice:          "device",
	sbom.PurposeFirmware:        "firmware",
	sbom.PurposeData:            "data",
}

// typePurposes maps component types back; types without an entry read as
// LIBRARY.
var typePurposes = map[cdx.ComponentType]sbom.Purpose{
	"application":      sbom.PurposeApplication,
	"framework":        sbom.PurposeFramework,
	"library":          sbom.PurposeLibrary,
	"container":        sbom.PurposeContainer,
	"platform":         sbom.PurposeContainer,
	"operating-system": sbom.PurposeOperatingSystem,
	"device":           sbom.PurposeDevice,
	"device-driver":    sbom.PurposeDevice,
	"firmware":         sbom.PurposeFirmware,
	"data":             sbom.PurposeData,
}

// componentType picks the component type of n and reports whether reading
// the type back yields n's purpose exactly.
func componentType(n *sbom.Node, spec cdx.SpecVersion) (cdx.ComponentType, bool) {
	var first sbom.Purpose
	if len(n.PrimaryPurpose) > 0 {
		first = n.PrimaryPurpose[0]
	}
	if n.IsFile() {
		return componentTypeFile, first == ""
	}
	if first == "" {
		return "library", true
	}
	t, ok := purposeTypes[first]
	if !ok || (first == sbom.PurposeData && spec < cdx.SpecVersion1_5) {
		return "library", false
	}
	return t, true
}

func purposeOf(t cdx.ComponentType) sbom.Purpose {
	if p, ok := typePurposes[t]; ok {
		return p
	}
	return sbom.PurposeLibrary
}

// externalReferenceTypes are the reference types CycloneDX 1.4 to 1.6 define.
var externalReferenceTypes = map[string]bool{
	"vcs": true, "issue-tracker": true, "website": true, "advisories": true,
	"bom": true, "mailing-list": true, "social": true, "chat": true,
	"documentation": true, "support": true, "distribution": true,
	"distribution-intake": true, "license": true, "build-meta": true,
	"build-system": true, "release-notes": true, "security-contact": true,
	"model-card": true, "log": true, "configuration": true, "evidence": true,
	"formulation": true, "attestation": true, "threat-model": true,
	"adversary-model": true, "risk-assessment": true, "vulnerability-assertion": true,
	"exploitability-statement": true, "pentest-report": true,
	"static-analysis-report": true, "dynamic-analysis-report": true,
	"runtime-analysis-report": true, "component-analysis-report": true,
	"maturity-report": true, "certification-report": true,
	"codified-infrastructure": true, "quality-metrics": true, "poam": true,
	"source-distribution": true, "electronic-signature": true,
	"digital-signature": true, "rfc-9116": true, "other": true,
}

func referenceType(t string) cdx.ExternalReferenceType {
	if externalReferenceTypes[t] {
		return cdx.ExternalReferenceType(t)
	}
	return cdx.ExternalReferenceType("other")
}

// formatContacts renders originators as a component author string. Commas
// inside a name are escaped so the list splits back into the same people.
func formatContacts(people []*sbom.Person) string {
	parts := make([]string, 0, len(people))
	for _, p := range people {
		s := strings.ReplaceAll(p.Name, ",", `\,`)
		if p.Email != "" {
			s += " <" + p.Email + ">"
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ", ")
}

// parseContacts is the inverse of formatContacts.
func parseContacts(s string) []*sbom.Person {
	var out []*sbom.Person
	for _, part := range splitContacts(s) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		p := &sbom.Person{Kind: sbom.PersonKindPerson}
		if open := strings.Index(part, "<"); open >= 0 && strings.HasSuffix(part, ">") {
			p.Email = strings.TrimSpace(part[open+1 : len(part)-1])
			part = strings.TrimSpace(part[:open])
		}
		p.Name = part
		out = append(out, p)
	}
	return out
}

// splitContacts splits s on commas not preceded by a backslash and removes
// the escapes.
func splitContacts(s string) []string {
	var (
		out []string
		cur strings.Builder
	)
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '\\' && i+1 < len(s) && s[i+1] == ',':
			cur.WriteByte(',')
			i++
		case s[i] == ',':
			out = append(out, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(s[i])
		}
	}
	return append(out, cur.String())
}

func toEntity(p *sbom.Person) *cdx.OrganizationalEntity {
	e := &cdx.OrganizationalEntity{Name: p.Name}
	if p.URL != "" {
		e.URL = &[]string{p.URL}
	}
	if p.Email != "" {
		e.Contact = &[]cdx.OrganizationalContact{{Email: p.Email}}
	}
	return e
}

func fromEntity(e *cdx.OrganizationalEntity) *sbom.Person {
	p := &sbom.Person{Name: e.Name, Kind: sbom.PersonKindOrganization}
	if e.URL != nil && len(*e.URL) > 0 {
		p.URL = (*e.URL)[0]
	}
	if e.Contact != nil && len(*e.Contact) > 0 {
		p.Email = (*e.Contact)[0].Email
		if p.Name == "" {
			p.Name = (*e.Contact)[0].Name
		}
	}
	if p.Name == "" {
		return nil
	}
	return p
}
