package spdx

import (
	"bytes"
	"encoding/json"
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

// Reader parses SPDX 2.3 JSON into Documents.
type Reader struct {
	opts Options
}

// NewReader returns a Reader using opts. Strict mode does not apply to reads.
func NewReader(opts Options) *Reader {
	return &Reader{opts: opts}
}

// header holds the fields checked before the full decode, so version and
// identity problems get their own error kinds.
type header struct {
	SPDXVersion string `json:"spdxVersion"`
	SPDXID      string `json:"SPDXID"`
}

// Read parses data. Fields the model has no place for are dropped and
// recorded; malformed input fails with a ParseError and an spdxVersion other
// than SPDX-2.3 with an UnsupportedVersionError.
func (r *Reader) Read(data []byte) (*sbom.Document, error) {
	const op = "spdx.Read"
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, sbom.E(sbom.KindParse, op, nil, "empty input")
	}
	var h header
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, sbom.E(sbom.KindParse, op, err, "input is not an SPDX JSON document")
	}
	switch {
	case h.SPDXVersion == "":
		return nil, sbom.E(sbom.KindParse, op, nil, "spdxVersion is missing")
	case h.SPDXVersion != Version:
		return nil, sbom.E(sbom.KindUnsupportedVersion, op, nil, "spdxVersion %q is not supported", h.SPDXVersion)
	case h.SPDXID == "":
		return nil, sbom.E(sbom.KindParse, op, nil, "document SPDXID is missing")
	}

	var in v2_3.Document
	if err := spdxjson.ReadInto(bytes.NewReader(data), &in); err != nil {
		return nil, sbom.E(sbom.KindParse, op, err, "malformed SPDX document")
	}

	rd := &reading{
		rec: normalize.NewReadRecorder(normalize.SPDX23, r.opts.Options),
		doc: sbom.NewDocument(),
		ids: map[string]string{},
	}
	rd.metadata(&in)
	for i, p := range in.Packages {
		if p == nil || p.PackageSPDXIdentifier == "" {
			return nil, sbom.E(sbom.KindParse, op, nil, "package #%d has no SPDXID", i)
		}
		id := fullID(p.PackageSPDXIdentifier)
		if err := rd.add(id, rd.fromPackage(id, p), p.Annotations); err != nil {
			return nil, sbom.E(sbom.KindParse, op, err, "package %s", id)
		}
	}
	for i, f := range in.Files {
		if f == nil || f.FileSPDXIdentifier == "" {
			return nil, sbom.E(sbom.KindParse, op, nil, "file #%d has no SPDXID", i)
		}
		id := fullID(f.FileSPDXIdentifier)
		if err := rd.add(id, rd.fromFile(id, f), f.Annotations); err != nil {
			return nil, sbom.E(sbom.KindParse, op, err, "file %s", id)
		}
	}

	docID := fullID(in.SPDXIdentifier)
	for _, rel := range in.Relationships {
		if rel != nil {
			rd.relationship(docID, rel)
		}
	}
	return rd.doc, nil
}

// fullID restores the SPDXRef- prefix tools-golang strips on input.
func fullID(e common.ElementID) string {
	return ident.SPDXPrefix + ident.NodeID(string(e))
}

// reading is the state of one Read call.
type reading struct {
	rec *normalize.Recorder
	doc *sbom.Document
	// ids maps SPDXIDs to node IDs.
	ids map[string]string
}

func (rd *reading) metadata(in *v2_3.Document) {
	m := rd.doc.Metadata
	m.Name = in.DocumentName
	if in.DocumentNamespace != ident.DefaultNamespace {
		m.Namespace = in.DocumentNamespace
	}
	m.Comment = in.DocumentComment
	ci := in.CreationInfo
	if ci == nil {
		return
	}
	if ci.CreatorComment != "" {
		m.Comment = ci.CreatorComment
	}
	m.LicenseListVersion = ci.LicenseListVersion
	if ci.Created != "" {
		if t, err := time.Parse(time.RFC3339, ci.Created); err == nil {
			t = t.UTC()
			m.Date = &t
		} else {
			rd.rec.Dropf("metadata.date", "document", "created %q is not an RFC 3339 timestamp", ci.Created)
		}
	}
	for _, c := range ci.Creators {
		if c.CreatorType == typeTool {
			t := parseTool(c.Creator)
			if t.Name == "" || isEngine(t) {
				continue
			}
			_ = m.AddTool(t)
			continue
		}
		if p := parsePerson(c.CreatorType, c.Creator); p != nil {
			_ = m.AddAuthor(p)
			continue
		}
		rd.rec.Dropf(normalize.MetadataAuthors, "document", "creator %q is not a Tool, Person or Organization", c.CreatorType+": "+c.Creator)
	}
}

// add registers a node, restoring its original ID from an engine annotation.
func (rd *reading) add(spdxID string, n *sbom.Node, notes []v2_3.Annotation) error {
	n.ID = ident.NodeID(spdxID)
	for _, a := range notes {
		if orig, ok := strings.CutPrefix(a.AnnotationComment, annotationNodeID); ok && orig != "" {
			n.ID = orig
		}
	}
	if err := rd.doc.AddNode(n); err != nil {
		return err
	}
	rd.ids[spdxID] = n.ID
	return nil
}

func (rd *reading) fromPackage(spdxID string, p *v2_3.Package) *sbom.Node {
	n := sbom.NewNode("", sbom.NodeTypePackage)
	n.Name = p.PackageName
	n.Version = p.PackageVersion
	n.LicenseConcluded = value(p.PackageLicenseConcluded)
	n.Licenses = sbom.SplitLicenses(p.PackageLicenseDeclared)
	n.LicenseComments = p.PackageLicenseComments
	n.Copyright = value(p.PackageCopyrightText)
	n.Summary = p.PackageSummary
	n.Description = p.PackageDescription
	n.Comment = p.PackageComment
	n.URLHome = value(p.PackageHomePage)
	n.URLDownload = value(p.PackageDownloadLocation)
	if s := p.PackageSupplier; s != nil {
		if person := parsePerson(s.SupplierType, s.Supplier); person != nil {
			n.Suppliers = append(n.Suppliers, person)
		}
	}
	if o := p.PackageOriginator; o != nil {
		if person := parsePerson(o.OriginatorType, o.Originator); person != nil {
			n.Originators = append(n.Originators, person)
		}
	}
	if p.PrimaryPackagePurpose != "" {
		purpose := sbom.Purpose(strings.ReplaceAll(p.PrimaryPackagePurpose, "-", "_"))
		var check sbom.Purpose
		if err := check.UnmarshalText([]byte(purpose)); err == nil {
			n.PrimaryPurpose = []sbom.Purpose{purpose}
		} else {
			rd.rec.Dropf(normalize.NodeField(n, normalize.PrimaryPurpose), spdxID, "unknown primaryPackagePurpose %q", p.PrimaryPackagePurpose)
		}
	}
	rd.checksums(n, spdxID, p.PackageChecksums)
	for _, ref := range p.PackageExternalReferences {
		if ref != nil {
			rd.externalRef(n, ref)
		}
	}
	return n
}

func (rd *reading) fromFile(spdxID string, f *v2_3.File) *sbom.Node {
	n := sbom.NewNode("", sbom.NodeTypeFile)
	n.Name = f.FileName
	n.LicenseConcluded = value(f.LicenseConcluded)
	for _, l := range f.LicenseInfoInFiles {
		if !sbom.IsUnset(l) {
			n.Licenses = append(n.Licenses, l)
		}
	}
	n.LicenseComments = f.LicenseComments
	n.Copyright = value(f.FileCopyrightText)
	n.Comment = f.FileComment
	rd.checksums(n, spdxID, f.Checksums)
	return n
}

func (rd *reading) checksums(n *sbom.Node, subject string, sums []common.Checksum) {
	for _, c := range sums {
		name := string(c.Algorithm)
		algo, ok := normalize.ParseHash(normalize.SPDX, name)
		if !ok {
			rd.rec.Dropf(normalize.Field("hash."+name), subject, "unknown checksum algorithm %q", name)
			continue
		}
		n.SetHash(algo, c.Value)
	}
}

func (rd *reading) externalRef(n *sbom.Node, ref *v2_3.PackageExternalReference) {
	category := strings.ReplaceAll(ref.Category, "_", "-")
	switch {
	case category == categoryPackageManager && ref.RefType == refPurl:
		n.SetIdentifier(sbom.IdentifierPURL, ref.Locator)
	case category == categorySecurity && ref.RefType == refCPE23:
		n.SetIdentifier(sbom.IdentifierCPE23, ref.Locator)
	case category == categorySecurity && ref.RefType == refCPE22:
		n.SetIdentifier(sbom.IdentifierCPE22, ref.Locator)
	case category == categoryPersistentID && ref.RefType == refGitoid:
		n.SetIdentifier(sbom.IdentifierGitoid, ref.Locator)
	default:
		r := &sbom.ExternalReference{URL: ref.Locator, Type: ref.RefType, Comment: ref.ExternalRefComment}
		if category != categoryOther {
			r.Authority = category
		}
		if r.Type == "other" {
			r.Type = ""
		}
		n.ExternalReferences = append(n.ExternalReferences, r)
	}
}

// root marks a described element. documentDescribes and DESCRIBES
// relationships may name the same element twice; AddRootElement keeps one.
func (rd *reading) root(spdxID string) {
	id, ok := rd.ids[spdxID]
	if !ok {
		rd.rec.Dropf(normalize.EdgeField(sbom.RelDescribes), spdxID, "described element is not in the document")
		return
	}
	_ = rd.doc.AddRootElement(id)
}

func (rd *reading) relationship(docID string, rel *v2_3.Relationship) {
	from, to := render(rel.RefA), render(rel.RefB)
	t := sbom.RelationshipType(rel.Relationship)
	if !slices.Contains(sbom.RelationshipTypes, t) {
		rd.rec.Dropf(normalize.EdgeField(t), from+" -> "+to, "unknown relationship type")
		return
	}
	switch {
	case from == docID && t == sbom.RelDescribes:
		rd.root(to)
		return
	case to == docID && t == sbom.RelDescribedBy:
		rd.root(from)
		return
	}
	fromID, okFrom := rd.ids[from]
	toID, okTo := rd.ids[to]
	if !okFrom || !okTo {
		rd.rec.Dropf(normalize.EdgeField(t), from+" -> "+to, "relationship references an element outside the document")
		return
	}
	_ = rd.doc.AddEdge(&sbom.Edge{Type: t, From: fromID, To: toID})
}

// value reads a license, text or location field, treating NOASSERTION and
// NONE as unset.
func value(s string) string {
	if sbom.IsUnset(strings.TrimSpace(s)) {
		return ""
	}
	return s
}
