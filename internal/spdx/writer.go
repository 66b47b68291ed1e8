// Package spdx reads and writes SPDX 2.3 JSON documents on top of the
// tools-golang v2_3 model.
package spdx

import (
	"bytes"
	"cmp"
	"slices"
	"strings"
	"time"

	spdxjson "github.com/spdx/tools-golang/json"
	"github.com/spdx/tools-golang/spdx/v2/common"
	"github.com/spdx/tools-golang/spdx/v2/v2_3"

	"github.com/StinkyLord/sbomconv/internal/ident"
	"github.com/StinkyLord/sbomconv/internal/normalize"
	"github.com/StinkyLord/sbomconv/sbom"
)

// Options configure a Reader or Writer.
type Options struct {
	normalize.Options

	// IDPolicy decides how node IDs become SPDXIDs.
	IDPolicy ident.Policy

	// Now supplies the creation time when the metadata has none.
	Now func() time.Time
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// Writer renders Documents as SPDX 2.3 JSON.
type Writer struct {
	opts Options
}

// NewWriter returns a Writer using opts.
func NewWriter(opts Options) *Writer {
	return &Writer{opts: opts}
}

// Write validates doc and renders it. In strict mode every populated field
// SPDX cannot carry fails the write with one UnsupportedFeatureError.
func (w *Writer) Write(doc *sbom.Document) ([]byte, error) {
	const op = "spdx.Write"
	if doc == nil {
		return nil, sbom.E(sbom.KindValidation, op, nil, "document is nil")
	}
	if err := doc.Validate(); err != nil {
		return nil, sbom.WithOp(err, op)
	}

	rec := normalize.NewWriteRecorder(normalize.SPDX23, w.opts.Options)
	rec.Audit(doc)

	meta := doc.Metadata
	if meta == nil {
		meta = &sbom.Metadata{}
	}
	created := meta.Now(w.opts.now()).Format(time.RFC3339)
	ids := ident.SPDXIDs(doc.Nodes(), w.opts.IDPolicy)

	out := &v2_3.Document{
		SPDXVersion:       Version,
		DataLicense:       DataLicense,
		SPDXIdentifier:    documentElement,
		DocumentName:      meta.Name,
		DocumentNamespace: ident.Namespace(meta),
		CreationInfo: &v2_3.CreationInfo{
			Created:            created,
			Creators:           creators(meta),
			LicenseListVersion: cmp.Or(meta.LicenseListVersion, DefaultLicenseListVersion),
			CreatorComment:     meta.Comment,
		},
	}

	engine := engineCreator()
	for _, n := range doc.Nodes() {
		id := ids[n.ID]
		var notes []v2_3.Annotation
		if ident.Altered(n.ID, id) {
			notes = append(notes, v2_3.Annotation{
				Annotator:         common.Annotator{AnnotatorType: engine.CreatorType, Annotator: engine.Creator},
				AnnotationDate:    created,
				AnnotationType:    "OTHER",
				AnnotationComment: annotationNodeID + n.ID,
			})
		}
		if n.IsFile() {
			f := toFile(n, id)
			f.Annotations = notes
			out.Files = append(out.Files, f)
			continue
		}
		p := toPackage(n, id, rec)
		p.Annotations = notes
		out.Packages = append(out.Packages, p)
	}
	slices.SortFunc(out.Packages, func(a, b *v2_3.Package) int {
		return strings.Compare(string(a.PackageSPDXIdentifier), string(b.PackageSPDXIdentifier))
	})
	slices.SortFunc(out.Files, func(a, b *v2_3.File) int {
		return strings.Compare(string(a.FileSPDXIdentifier), string(b.FileSPDXIdentifier))
	})

	for _, root := range doc.RootElements() {
		out.Relationships = append(out.Relationships, relationship(ident.DocumentID, sbom.RelDescribes, ids[root]))
	}
	for _, e := range doc.Edges() {
		out.Relationships = append(out.Relationships, relationship(ids[e.From], e.Type, ids[e.To]))
	}
	slices.SortFunc(out.Relationships, func(a, b *v2_3.Relationship) int {
		return cmp.Or(
			strings.Compare(render(a.RefA), render(b.RefA)),
			strings.Compare(a.Relationship, b.Relationship),
			strings.Compare(render(a.RefB), render(b.RefB)),
		)
	})
	out.Relationships = slices.CompactFunc(out.Relationships, func(a, b *v2_3.Relationship) bool {
		return render(a.RefA) == render(b.RefA) && a.Relationship == b.Relationship && render(a.RefB) == render(b.RefB)
	})

	if err := rec.Err(op); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := spdxjson.Write(out, &buf, spdxjson.Indent("  "), spdxjson.EscapeHTML(false)); err != nil {
		return nil, sbom.E(sbom.KindValidation, op, err, "document cannot be encoded")
	}
	return buf.Bytes(), nil
}

// element converts a full "SPDXRef-x" ID into the element ID tools-golang
// stores without its prefix.
func element(spdxID string) common.ElementID {
	return common.ElementID(ident.NodeID(spdxID))
}

func relationship(from string, t sbom.RelationshipType, to string) *v2_3.Relationship {
	return &v2_3.Relationship{
		RefA:         common.MakeDocElementID("", string(element(from))),
		RefB:         common.MakeDocElementID("", string(element(to))),
		Relationship: string(t),
	}
}

// render spells a relationship endpoint the way it appears in JSON.
func render(id common.DocElementID) string {
	switch {
	case id.SpecialID != "":
		return id.SpecialID
	case id.DocumentRefID != "":
		return "DocumentRef-" + id.DocumentRefID + ":" + ident.SPDXPrefix + string(id.ElementRefID)
	}
	return ident.SPDXPrefix + string(id.ElementRefID)
}

// creators lists the engine first, then every tool. Authors are not creators
// in this mapping.
func creators(m *sbom.Metadata) []common.Creator {
	out := []common.Creator{engineCreator()}
	for _, t := range m.Tools {
		c := formatTool(t)
		if !slices.Contains(out, c) {
			out = append(out, c)
		}
	}
	return out
}

func toPackage(n *sbom.Node, id string, rec *normalize.Recorder) *v2_3.Package {
	p := &v2_3.Package{
		PackageSPDXIdentifier:     element(id),
		PackageName:               n.Name,
		PackageVersion:            n.Version,
		PackageDownloadLocation:   cmp.Or(n.URLDownload, sbom.NoAssertion),
		FilesAnalyzed:             false,
		PackageChecksums:          checksums(n),
		PackageHomePage:           n.URLHome,
		PackageLicenseConcluded:   n.LicenseConcluded,
		PackageLicenseDeclared:    n.LicenseDeclared(),
		PackageLicenseComments:    n.LicenseComments,
		PackageCopyrightText:      n.Copyright,
		PackageSummary:            n.Summary,
		PackageDescription:        n.Description,
		PackageComment:            n.Comment,
		PackageExternalReferences: externalRefs(n),
	}
	if len(n.Suppliers) > 0 {
		p.PackageSupplier = toSupplier(n.Suppliers[0])
	}
	if len(n.Originators) > 0 {
		p.PackageOriginator = toOriginator(n.Originators[0])
	}
	if len(n.PrimaryPurpose) > 0 {
		purpose, ok := packagePurpose(n.PrimaryPurpose[0])
		if !ok {
			rec.Dropf(normalize.NodeField(n, normalize.PrimaryPurpose), n.ID, "purpose %s has no SPDX 2.3 equivalent, written as OTHER", n.PrimaryPurpose[0])
		}
		p.PrimaryPackagePurpose = purpose
	}
	return p
}

func toFile(n *sbom.Node, id string) *v2_3.File {
	return &v2_3.File{
		FileSPDXIdentifier: element(id),
		FileName:           cmp.Or(n.Name, n.ID),
		Checksums:          checksums(n),
		LicenseConcluded:   n.LicenseConcluded,
		LicenseInfoInFiles: slices.Clone(n.Licenses),
		LicenseComments:    n.LicenseComments,
		FileCopyrightText:  n.Copyright,
		FileComment:        n.Comment,
	}
}

func checksums(n *sbom.Node) []common.Checksum {
	var out []common.Checksum
	for _, algo := range n.HashAlgorithms() {
		name, ok := normalize.HashName(normalize.SPDX, algo)
		if !ok {
			continue
		}
		out = append(out, common.Checksum{Algorithm: common.ChecksumAlgorithm(name), Value: n.Hashes[algo]})
	}
	slices.SortFunc(out, func(a, b common.Checksum) int { return strings.Compare(string(a.Algorithm), string(b.Algorithm)) })
	return out
}

func externalRefs(n *sbom.Node) []*v2_3.PackageExternalReference {
	var out []*v2_3.PackageExternalReference
	add := func(category, typ, locator string) {
		out = append(out, &v2_3.PackageExternalReference{Category: category, RefType: typ, Locator: locator})
	}
	if v := n.Identifiers[sbom.IdentifierPURL]; v != "" {
		add(categoryPackageManager, refPurl, v)
	}
	if v := n.Identifiers[sbom.IdentifierCPE23]; v != "" {
		add(categorySecurity, refCPE23, v)
	}
	if v := n.Identifiers[sbom.IdentifierCPE22]; v != "" {
		add(categorySecurity, refCPE22, v)
	}
	if v := n.Identifiers[sbom.IdentifierGitoid]; v != "" {
		add(categoryPersistentID, refGitoid, v)
	}
	for _, r := range n.ExternalReferences {
		category := categoryOther
		if isCategory(r.Authority) {
			category = r.Authority
		}
		out = append(out, &v2_3.PackageExternalReference{
			Category:           category,
			RefType:            cmp.Or(r.Type, "other"),
			Locator:            r.URL,
			ExternalRefComment: r.Comment,
		})
	}
	slices.SortFunc(out, func(a, b *v2_3.PackageExternalReference) int {
		return cmp.Or(
			strings.Compare(a.Category, b.Category),
			strings.Compare(a.RefType, b.RefType),
			strings.Compare(a.Locator, b.Locator),
		)
	})
	return out
}

func isCategory(s string) bool {
	switch s {
	case categoryPackageManager, categorySecurity, categoryPersistentID, categoryOther:
		return true
	}
	return false
}

// packagePurpose spells p the way primaryPackagePurpose does. DATA has no
// SPDX 2.3 value.
func packagePurpose(p sbom.Purpose) (string, bool) {
	switch p {
	case sbom.PurposeData:
		return string(sbom.PurposeOther), false
	case sbom.PurposeOperatingSystem:
		return "OPERATING-SYSTEM", true
	}
	return string(p), true
}
