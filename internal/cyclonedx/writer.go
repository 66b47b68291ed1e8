// Package cyclonedx reads and writes CycloneDX JSON BOMs, specification
// versions 1.4 to 1.6.
package cyclonedx

import (
	"bytes"
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	cdx "github.com/CycloneDX/cyclonedx-go"

	"github.com/StinkyLord/sbomconv/internal/ident"
	"github.com/StinkyLord/sbomconv/internal/normalize"
	"github.com/StinkyLord/sbomconv/sbom"
)

// DefaultSpecVersion is written when Options.SpecVersion is unset.
const DefaultSpecVersion = cdx.SpecVersion1_5

var specVersions = []cdx.SpecVersion{cdx.SpecVersion1_4, cdx.SpecVersion1_5, cdx.SpecVersion1_6}

// ParseSpecVersion resolves "1.4", "1.5" or "1.6".
func ParseSpecVersion(s string) (cdx.SpecVersion, bool) {
	for _, v := range specVersions {
		if v.String() == s {
			return v, true
		}
	}
	return 0, false
}

// Options configure a Reader or Writer.
type Options struct {
	normalize.Options

	// SpecVersion is the version a Writer emits.
	SpecVersion cdx.SpecVersion

	// Now supplies the timestamp when the metadata has none.
	Now func() time.Time
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

func (o Options) spec() cdx.SpecVersion {
	if slices.Contains(specVersions, o.SpecVersion) {
		return o.SpecVersion
	}
	return DefaultSpecVersion
}

// Writer renders Documents as CycloneDX JSON.
type Writer struct {
	opts Options
}

// NewWriter returns a Writer using opts.
func NewWriter(opts Options) *Writer {
	return &Writer{opts: opts}
}

// Write validates doc and renders it. The first root element becomes
// metadata.component, containment becomes component nesting and dependency
// edges become the dependencies graph.
func (w *Writer) Write(doc *sbom.Document) ([]byte, error) {
	const op = "cyclonedx.Write"
	if doc == nil {
		return nil, sbom.E(sbom.KindValidation, op, nil, "document is nil")
	}
	if err := doc.Validate(); err != nil {
		return nil, sbom.WithOp(err, op)
	}
	meta := doc.Metadata
	if meta == nil {
		meta = &sbom.Metadata{}
	}
	spec := w.opts.spec()

	rec := normalize.NewWriteRecorder(normalize.CycloneDXTable, w.opts.Options)
	rec.Audit(doc)

	serial, err := ident.SerialNumber(doc)
	if err != nil {
		return nil, sbom.WithOp(err, op)
	}

	bom := &cdx.BOM{
		JSONSchema:   fmt.Sprintf("http://cyclonedx.org/schema/bom-%s.schema.json", spec),
		BOMFormat:    cdx.BOMFormat,
		SpecVersion:  spec,
		SerialNumber: serial,
		Version:      1,
		Metadata:     metadata(meta, spec, w.opts.now()),
	}

	tree := buildNesting(doc, rec)
	primary := ""
	if roots := doc.RootElements(); len(roots) > 0 {
		primary = roots[0]
		if p, nested := tree.parent[primary]; nested {
			rec.Dropf(normalize.EdgeField(sbom.RelContains), p+" -> "+primary, "%s is the BOM subject and cannot be nested", primary)
			tree.children[p] = slices.DeleteFunc(tree.children[p], func(c string) bool { return c == primary })
			delete(tree.parent, primary)
		}
	}

	built := make(map[string]*cdx.Component, len(doc.Nodes()))
	for i := len(tree.order) - 1; i >= 0; i-- {
		id := tree.order[i]
		n, _ := doc.Node(id)
		c := toComponent(n, spec, rec)
		if kids := tree.children[id]; len(kids) > 0 {
			nested := make([]cdx.Component, 0, len(kids))
			for _, k := range kids {
				nested = append(nested, *built[k])
			}
			c.Components = &nested
		}
		built[id] = c
	}
	if primary != "" {
		bom.Metadata.Component = built[primary]
	}

	var components []cdx.Component
	for _, id := range tree.roots {
		if id != primary {
			components = append(components, *built[id])
		}
	}
	if len(components) > 0 {
		bom.Components = &components
	}
	if deps := dependencies(doc); len(deps) > 0 {
		bom.Dependencies = &deps
	}

	if err := rec.Err(op); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := cdx.NewBOMEncoder(&buf, cdx.BOMFileFormatJSON).SetPretty(true).Encode(bom); err != nil {
		return nil, sbom.E(sbom.KindValidation, op, err, "BOM cannot be encoded")
	}
	return buf.Bytes(), nil
}

func metadata(m *sbom.Metadata, spec cdx.SpecVersion, now time.Time) *cdx.Metadata {
	out := &cdx.Metadata{
		Timestamp: m.Now(now).Format(time.RFC3339),
	}

	type tool struct{ vendor, name, version string }
	tools := []tool{{"StinkyLord", ident.EngineName, ident.EngineVersion}}
	for _, t := range m.Tools {
		tools = append(tools, tool{t.Vendor, t.Name, t.Version})
	}
	if spec < cdx.SpecVersion1_5 {
		legacy := make([]cdx.Tool, 0, len(tools))
		for _, t := range tools {
			legacy = append(legacy, cdx.Tool{Vendor: t.vendor, Name: t.name, Version: t.version})
		}
		out.Tools = &cdx.ToolsChoice{Tools: &legacy}
	} else {
		comps := make([]cdx.Component, 0, len(tools))
		for _, t := range tools {
			comps = append(comps, cdx.Component{Type: "application", Group: t.vendor, Name: t.name, Version: t.version})
		}
		out.Tools = &cdx.ToolsChoice{Components: &comps}
	}

	if len(m.Authors) > 0 {
		authors := make([]cdx.OrganizationalContact, 0, len(m.Authors))
		for _, a := range m.Authors {
			authors = append(authors, cdx.OrganizationalContact{Name: a.Name, Email: a.Email})
		}
		out.Authors = &authors
	}

	var props []cdx.Property
	if m.Name != "" {
		props = append(props, cdx.Property{Name: normalize.PropDocumentName, Value: m.Name})
	}
	if m.Comment != "" {
		props = append(props, cdx.Property{Name: normalize.PropDocumentComment, Value: m.Comment})
	}
	if len(props) > 0 {
		out.Properties = &props
	}
	return out
}

func toComponent(n *sbom.Node, spec cdx.SpecVersion, rec *normalize.Recorder) *cdx.Component {
	c := &cdx.Component{
		BOMRef:      n.ID,
		Name:        n.Name,
		Version:     n.Version,
		Description: n.Description,
		Copyright:   n.Copyright,
		Author:      formatContacts(n.Originators),
		PackageURL:  n.Identifiers[sbom.IdentifierPURL],
	}

	var props []cdx.Property
	t, exact := componentType(n, spec)
	c.Type = t
	if !exact && len(n.PrimaryPurpose) > 0 {
		props = append(props, cdx.Property{Name: normalize.PropPurpose, Value: string(n.PrimaryPurpose[0])})
	}

	if len(n.Suppliers) > 0 {
		c.Supplier = toEntity(n.Suppliers[0])
	}

	if hashes := componentHashes(n); len(hashes) > 0 {
		c.Hashes = &hashes
	}

	lics, licProps := normalize.ToCycloneDX(n)
	c.Licenses = lics
	props = append(props, licProps...)

	cpe23, cpe22 := n.Identifiers[sbom.IdentifierCPE23], n.Identifiers[sbom.IdentifierCPE22]
	c.CPE = cmp.Or(cpe23, cpe22)
	if cpe23 != "" && cpe22 != "" {
		props = append(props, cdx.Property{Name: normalize.PropIdentifierPrefix + string(sbom.IdentifierCPE22), Value: cpe22})
	}
	if g := n.Identifiers[sbom.IdentifierGitoid]; g != "" {
		props = append(props, cdx.Property{Name: normalize.PropIdentifierPrefix + string(sbom.IdentifierGitoid), Value: g})
	}

	var refs []cdx.ExternalReference
	if n.URLHome != "" {
		refs = append(refs, cdx.ExternalReference{URL: n.URLHome, Type: "website", Comment: markerURLHome})
	}
	if n.URLDownload != "" {
		refs = append(refs, cdx.ExternalReference{URL: n.URLDownload, Type: "distribution", Comment: markerURLDownload})
	}
	for _, r := range n.ExternalReferences {
		if !externalReferenceTypes[r.Type] && r.Type != "" {
			rec.Dropf(normalize.NodeField(n, normalize.ExternalReferences), n.ID, "reference type %q written as other", r.Type)
		}
		refs = append(refs, cdx.ExternalReference{URL: r.URL, Type: referenceType(r.Type), Comment: r.Comment})
	}
	if len(refs) > 0 {
		c.ExternalReferences = &refs
	}

	if n.Summary != "" {
		props = append(props, cdx.Property{Name: normalize.PropSummary, Value: n.Summary})
	}
	if n.Comment != "" {
		props = append(props, cdx.Property{Name: normalize.PropComment, Value: n.Comment})
	}
	for _, p := range n.Properties {
		props = append(props, cdx.Property{Name: p.Name, Value: p.Value})
	}
	if len(props) > 0 {
		c.Properties = &props
	}
	return c
}

// componentHashes lists the hashes CycloneDX can carry, sorted by their
// emitted algorithm name.
func componentHashes(n *sbom.Node) []cdx.Hash {
	var out []cdx.Hash
	for _, algo := range n.HashAlgorithms() {
		name, ok := normalize.HashName(normalize.CycloneDX, algo)
		if !ok {
			continue
		}
		out = append(out, cdx.Hash{Algorithm: cdx.HashAlgorithm(name), Value: n.Hashes[algo]})
	}
	slices.SortFunc(out, func(a, b cdx.Hash) int {
		return strings.Compare(string(a.Algorithm), string(b.Algorithm))
	})
	return out
}

// dependencies collects DEPENDS_ON edges, and DEPENDENCY_OF edges reversed,
// into the dependency graph sorted by ref.
func dependencies(doc *sbom.Document) []cdx.Dependency {
	on := map[string][]string{}
	for _, e := range doc.Edges() {
		switch e.Type {
		case sbom.RelDependsOn:
			on[e.From] = append(on[e.From], e.To)
		case sbom.RelDependencyOf:
			on[e.To] = append(on[e.To], e.From)
		}
	}
	refs := make([]string, 0, len(on))
	for ref := range on {
		refs = append(refs, ref)
	}
	slices.Sort(refs)

	out := make([]cdx.Dependency, 0, len(refs))
	for _, ref := range refs {
		targets := slices.Compact(slices.Sorted(slices.Values(on[ref])))
		out = append(out, cdx.Dependency{Ref: ref, Dependencies: &targets})
	}
	return out
}
