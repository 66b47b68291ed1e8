package cyclonedx

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	cdx "github.com/CycloneDX/cyclonedx-go"

	"github.com/StinkyLord/sbomconv/internal/ident"
	"github.com/StinkyLord/sbomconv/internal/normalize"
	"github.com/StinkyLord/sbomconv/sbom"
)

// Reader parses CycloneDX JSON into Documents.
type Reader struct {
	opts Options
}

// NewReader returns a Reader using opts. Strict mode does not apply to reads.
func NewReader(opts Options) *Reader {
	return &Reader{opts: opts}
}

// header holds the discriminator fields checked before the full decode.
type header struct {
	BOMFormat   string `json:"bomFormat"`
	SpecVersion string `json:"specVersion"`
}

// Read parses data. bomFormat must be CycloneDX and specVersion one of 1.4,
// 1.5 or 1.6.
func (r *Reader) Read(data []byte) (*sbom.Document, error) {
	const op = "cyclonedx.Read"
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, sbom.E(sbom.KindParse, op, nil, "empty input")
	}
	var h header
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, sbom.E(sbom.KindParse, op, err, "input is not a CycloneDX JSON document")
	}
	if h.BOMFormat != cdx.BOMFormat {
		return nil, sbom.E(sbom.KindParse, op, nil, "bomFormat %q is not %s", h.BOMFormat, cdx.BOMFormat)
	}
	if h.SpecVersion == "" {
		return nil, sbom.E(sbom.KindParse, op, nil, "specVersion is missing")
	}
	if _, ok := ParseSpecVersion(h.SpecVersion); !ok {
		return nil, sbom.E(sbom.KindUnsupportedVersion, op, nil, "specVersion %q is not supported", h.SpecVersion)
	}

	bom := new(cdx.BOM)
	if err := cdx.NewBOMDecoder(bytes.NewReader(data), cdx.BOMFileFormatJSON).Decode(bom); err != nil {
		return nil, sbom.E(sbom.KindParse, op, err, "malformed CycloneDX document")
	}

	rd := &reading{
		rec:   normalize.NewReadRecorder(normalize.CycloneDXTable, r.opts.Options),
		doc:   sbom.NewDocument(),
		taken: map[string]bool{},
	}
	rd.reserve(bom)
	rd.metadata(bom)

	var queue []pending
	if bom.Metadata != nil && bom.Metadata.Component != nil {
		queue = append(queue, pending{c: bom.Metadata.Component, root: true})
	}
	if bom.Components != nil {
		for i := range *bom.Components {
			queue = append(queue, pending{c: &(*bom.Components)[i]})
		}
	}
	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]
		id, err := rd.component(item)
		if err != nil {
			return nil, sbom.E(sbom.KindParse, op, err, "component %q", item.c.Name)
		}
		if item.c.Components != nil {
			for i := range *item.c.Components {
				queue = append(queue, pending{c: &(*item.c.Components)[i], parent: id})
			}
		}
	}

	if bom.Dependencies != nil {
		for _, dep := range *bom.Dependencies {
			rd.dependency(dep)
		}
	}
	return rd.doc, nil
}

type pending struct {
	c      *cdx.Component
	parent string
	root   bool
}

// reading is the state of one Read call.
type reading struct {
	rec   *normalize.Recorder
	doc   *sbom.Document
	taken map[string]bool
}

// reserve marks every explicit bom-ref as taken so generated IDs never
// collide with a ref declared later in the document.
func (rd *reading) reserve(bom *cdx.BOM) {
	var walk func(cs *[]cdx.Component)
	walk = func(cs *[]cdx.Component) {
		if cs == nil {
			return
		}
		for _, c := range *cs {
			if c.BOMRef != "" {
				rd.taken[c.BOMRef] = true
			}
			walk(c.Components)
		}
	}
	if bom.Metadata != nil && bom.Metadata.Component != nil {
		walk(&[]cdx.Component{*bom.Metadata.Component})
	}
	walk(bom.Components)
}

func (rd *reading) metadata(bom *cdx.BOM) {
	m := rd.doc.Metadata
	m.ID = bom.SerialNumber
	md := bom.Metadata
	if md == nil {
		return
	}
	if md.Timestamp != "" {
		if t, err := time.Parse(time.RFC3339, md.Timestamp); err == nil {
			t = t.UTC()
			m.Date = &t
		} else {
			rd.rec.Dropf("metadata.date", "document", "timestamp %q is not an RFC 3339 timestamp", md.Timestamp)
		}
	}
	if md.Tools != nil {
		if md.Tools.Tools != nil {
			for _, t := range *md.Tools.Tools {
				rd.tool(&sbom.Tool{Name: t.Name, Version: t.Version, Vendor: t.Vendor})
			}
		}
		if md.Tools.Components != nil {
			for _, c := range *md.Tools.Components {
				vendor := c.Group
				if vendor == "" && c.Supplier != nil {
					vendor = c.Supplier.Name
				}
				rd.tool(&sbom.Tool{Name: c.Name, Version: c.Version, Vendor: vendor})
			}
		}
	}
	if md.Authors != nil {
		for _, a := range *md.Authors {
			if err := m.AddAuthor(&sbom.Person{Name: a.Name, Email: a.Email}); err != nil {
				rd.rec.Drop(normalize.MetadataAuthors, "document", "author without a name")
			}
		}
	}
	if md.Properties != nil {
		for _, p := range *md.Properties {
			switch p.Name {
			case normalize.PropDocumentName:
				m.Name = p.Value
			case normalize.PropDocumentComment:
				m.Comment = p.Value
			}
		}
	}
}

func (rd *reading) tool(t *sbom.Tool) {
	if t.Name == ident.EngineName {
		return
	}
	_ = rd.doc.Metadata.AddTool(t)
}

// component adds the node for item and its containment edge, and returns the
// node ID.
func (rd *reading) component(item pending) (string, error) {
	c := item.c
	id := c.BOMRef
	if id == "" {
		id = ident.ComponentID(c.PackageURL, c.Name, c.Version, rd.taken)
	}
	n := rd.toNode(id, c)
	if err := rd.doc.AddNode(n); err != nil {
		return "", err
	}
	if item.root {
		_ = rd.doc.AddRootElement(id)
	}
	if item.parent != "" {
		_ = rd.doc.AddEdge(&sbom.Edge{Type: sbom.RelContains, From: item.parent, To: id})
	}
	return id, nil
}

func (rd *reading) toNode(id string, c *cdx.Component) *sbom.Node {
	n := sbom.NewNode(id, sbom.NodeTypePackage)
	if c.Type == componentTypeFile {
		n.Type = sbom.NodeTypeFile
	} else {
		n.PrimaryPurpose = []sbom.Purpose{purposeOf(c.Type)}
	}
	n.Name = c.Name
	n.Version = c.Version
	n.Description = c.Description
	n.Copyright = c.Copyright
	n.Originators = parseContacts(c.Author)
	if c.Supplier != nil {
		if p := fromEntity(c.Supplier); p != nil {
			n.Suppliers = []*sbom.Person{p}
		}
	}
	if c.PackageURL != "" {
		n.SetIdentifier(sbom.IdentifierPURL, c.PackageURL)
	}
	if c.CPE != "" {
		if strings.HasPrefix(c.CPE, "cpe:2.3:") {
			n.SetIdentifier(sbom.IdentifierCPE23, c.CPE)
		} else {
			n.SetIdentifier(sbom.IdentifierCPE22, c.CPE)
		}
	}

	if c.Hashes != nil {
		for _, h := range *c.Hashes {
			algo, ok := normalize.ParseHash(normalize.CycloneDX, string(h.Algorithm))
			if !ok {
				rd.rec.Dropf(normalize.Field("hash."+string(h.Algorithm)), id, "unknown hash algorithm %q", h.Algorithm)
				continue
			}
			n.SetHash(algo, h.Value)
		}
	}

	if c.ExternalReferences != nil {
		for _, r := range *c.ExternalReferences {
			switch r.Comment {
			case markerURLHome:
				n.URLHome = r.URL
			case markerURLDownload:
				n.URLDownload = r.URL
			default:
				n.ExternalReferences = append(n.ExternalReferences, &sbom.ExternalReference{
					URL:     r.URL,
					Type:    string(r.Type),
					Comment: r.Comment,
				})
			}
		}
	}

	owned := map[string]string{}
	if c.Properties != nil {
		for _, p := range *c.Properties {
			if strings.HasPrefix(p.Name, normalize.PropPrefix) {
				owned[p.Name] = p.Value
				continue
			}
			n.Properties = append(n.Properties, &sbom.Property{Name: p.Name, Value: p.Value})
		}
	}
	n.Licenses, n.LicenseConcluded = normalize.FromCycloneDX(c.Licenses, owned)
	n.LicenseComments = owned[normalize.PropLicenseComments]
	n.Summary = owned[normalize.PropSummary]
	n.Comment = owned[normalize.PropComment]
	if v, ok := owned[normalize.PropPurpose]; ok {
		var p sbom.Purpose
		if err := p.UnmarshalText([]byte(v)); err == nil {
			n.PrimaryPurpose = []sbom.Purpose{p}
		} else {
			rd.rec.Dropf(normalize.NodeField(n, normalize.PrimaryPurpose), id, "unknown purpose %q", v)
		}
	}
	for _, t := range []sbom.IdentifierType{sbom.IdentifierCPE22, sbom.IdentifierGitoid} {
		if v := owned[normalize.PropIdentifierPrefix+string(t)]; v != "" {
			n.SetIdentifier(t, v)
		}
	}
	return n
}

func (rd *reading) dependency(dep cdx.Dependency) {
	if _, ok := rd.doc.Node(dep.Ref); !ok {
		rd.rec.Dropf(normalize.EdgeField(sbom.RelDependsOn), dep.Ref, "dependency ref is not a component")
		return
	}
	if dep.Dependencies == nil {
		return
	}
	for _, to := range *dep.Dependencies {
		if _, ok := rd.doc.Node(to); !ok {
			rd.rec.Dropf(normalize.EdgeField(sbom.RelDependsOn), dep.Ref+" -> "+to, "dependsOn target is not a component")
			continue
		}
		_ = rd.doc.AddEdge(&sbom.Edge{Type: sbom.RelDependsOn, From: dep.Ref, To: to})
	}
}
