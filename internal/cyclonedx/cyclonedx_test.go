package cyclonedx

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	cdx "github.com/CycloneDX/cyclonedx-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StinkyLord/sbomconv/internal/normalize"
	"github.com/StinkyLord/sbomconv/sbom"
)

var fixedTime = time.Date(2023, 1, 2, 3, 4, 5, 0, time.UTC)

func testOptions(diags *[]normalize.Diagnostic) Options {
	return Options{
		Options: normalize.Options{
			Policy: normalize.DropSilently,
			OnDrop: func(d normalize.Diagnostic) {
				if diags != nil {
					*diags = append(*diags, d)
				}
			},
		},
		Now: func() time.Time { return fixedTime },
	}
}

func fieldsOf(diags []normalize.Diagnostic) []normalize.Field {
	out := make([]normalize.Field, 0, len(diags))
	for _, d := range diags {
		out = append(out, d.Field)
	}
	return out
}

func makeTestDocument(t *testing.T) *sbom.Document {
	t.Helper()
	doc := sbom.NewDocument()
	require.NoError(t, doc.Metadata.AddAuthor(&sbom.Person{Name: "John Doe"}))
	require.NoError(t, doc.Metadata.AddTool(&sbom.Tool{Name: "ACME SBOM Tool", Version: "1.0", Vendor: "ACME Corporation"}))

	app := sbom.NewNode("pkg:generic/my-software@v1.0.0", sbom.NodeTypePackage)
	app.PrimaryPurpose = []sbom.Purpose{sbom.PurposeApplication}
	app.Name = "My Software Name"
	app.Version = "v1.0.0"
	app.Licenses = []string{"Apache-2.0"}
	app.LicenseConcluded = "Apache-2.0"
	app.LicenseComments = "Apache License"
	require.NoError(t, doc.AddNode(app))

	lib := sbom.NewNode("File--usr-lib-libsoftware.so", sbom.NodeTypeFile)
	lib.Name = "/usr/lib/libsoftware.so"
	lib.Version = "1"
	lib.Copyright = "Copyright 2023 The ACME Corporation"
	lib.Description = "Software Lib"
	lib.SetHash(sbom.HashSHA512, "cccc")
	lib.SetHash(sbom.HashSHA1, "AAAA")
	lib.SetHash(sbom.HashSHA256, "bbbb")
	require.NoError(t, doc.AddNode(lib))

	bin := sbom.NewNode("File--usr-bin-software", sbom.NodeTypeFile)
	bin.Name = "/usr/bin/software"
	bin.Version = "1.0"
	bin.SetHash(sbom.HashSHA1, "dddd")
	require.NoError(t, doc.AddNode(bin))
	return doc
}

func decode(t *testing.T, data []byte) *cdx.BOM {
	t.Helper()
	bom := new(cdx.BOM)
	require.NoError(t, json.Unmarshal(data, bom))
	return bom
}

func addNodes(t *testing.T, doc *sbom.Document, ids ...string) {
	t.Helper()
	for _, id := range ids {
		n := sbom.NewNode(id, sbom.NodeTypePackage)
		n.Name = id
		require.NoError(t, doc.AddNode(n))
	}
}

func addEdge(t *testing.T, doc *sbom.Document, from string, rel sbom.RelationshipType, to string) {
	t.Helper()
	require.NoError(t, doc.AddEdge(&sbom.Edge{Type: rel, From: from, To: to}))
}

func TestWriteManualDocument(t *testing.T) {
	var diags []normalize.Diagnostic
	out, err := NewWriter(testOptions(&diags)).Write(makeTestDocument(t))
	require.NoError(t, err)
	assert.Empty(t, diags)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(out, &raw))
	assert.Equal(t, "CycloneDX", raw["bomFormat"])
	assert.Equal(t, "1.5", raw["specVersion"])

	bom := decode(t, out)
	assert.True(t, strings.HasPrefix(bom.SerialNumber, "urn:uuid:"))
	require.NotNil(t, bom.Metadata)
	assert.Equal(t, "2023-01-02T03:04:05Z", bom.Metadata.Timestamp)
	assert.Nil(t, bom.Metadata.Component)
	require.NotNil(t, bom.Metadata.Authors)
	assert.Equal(t, "John Doe", (*bom.Metadata.Authors)[0].Name)

	require.NotNil(t, bom.Metadata.Tools)
	require.NotNil(t, bom.Metadata.Tools.Components)
	tools := *bom.Metadata.Tools.Components
	require.Len(t, tools, 2)
	assert.Equal(t, "sbomconv", tools[0].Name)
	assert.Equal(t, "ACME SBOM Tool", tools[1].Name)
	assert.Equal(t, "ACME Corporation", tools[1].Group)

	require.NotNil(t, bom.Components)
	comps := *bom.Components
	require.Len(t, comps, 3)
	assert.Equal(t, "File--usr-bin-software", comps[0].BOMRef)
	assert.Equal(t, "File--usr-lib-libsoftware.so", comps[1].BOMRef)
	assert.Equal(t, "pkg:generic/my-software@v1.0.0", comps[2].BOMRef)

	lib := comps[1]
	assert.Equal(t, cdx.ComponentType("file"), lib.Type)
	assert.Equal(t, "Software Lib", lib.Description)
	require.NotNil(t, lib.Hashes)
	assert.Equal(t, []cdx.Hash{
		{Algorithm: "SHA-1", Value: "aaaa"},
		{Algorithm: "SHA-256", Value: "bbbb"},
		{Algorithm: "SHA-512", Value: "cccc"},
	}, *lib.Hashes)

	app := comps[2]
	assert.Equal(t, cdx.ComponentTypeApplication, app.Type)
	// a purl-shaped ID is only a bom-ref; purl comes from identifiers alone
	assert.Empty(t, app.PackageURL)
	require.NotNil(t, app.Licenses)
	require.Len(t, *app.Licenses, 1)
	assert.Equal(t, "Apache-2.0", (*app.Licenses)[0].License.ID)
	require.NotNil(t, app.Properties)
	assert.Equal(t, []cdx.Property{
		{Name: normalize.PropLicenseConcluded, Value: "Apache-2.0"},
		{Name: normalize.PropLicenseComments, Value: "Apache License"},
	}, *app.Properties)

	assert.Nil(t, bom.Dependencies)
}

func TestWriteSpecVersions(t *testing.T) {
	for _, v := range []cdx.SpecVersion{cdx.SpecVersion1_4, cdx.SpecVersion1_5, cdx.SpecVersion1_6} {
		t.Run(v.String(), func(t *testing.T) {
			opts := testOptions(nil)
			opts.SpecVersion = v
			out, err := NewWriter(opts).Write(makeTestDocument(t))
			require.NoError(t, err)

			var raw struct {
				SpecVersion string `json:"specVersion"`
				Metadata    struct {
					Tools json.RawMessage `json:"tools"`
				} `json:"metadata"`
			}
			require.NoError(t, json.Unmarshal(out, &raw))
			assert.Equal(t, v.String(), raw.SpecVersion)

			if v == cdx.SpecVersion1_4 {
				var legacy []map[string]any
				require.NoError(t, json.Unmarshal(raw.Metadata.Tools, &legacy))
				require.Len(t, legacy, 2)
				assert.Equal(t, "sbomconv", legacy[0]["name"])
				assert.Equal(t, "ACME Corporation", legacy[1]["vendor"])
			} else {
				var modern struct {
					Components []map[string]any `json:"components"`
				}
				require.NoError(t, json.Unmarshal(raw.Metadata.Tools, &modern))
				require.Len(t, modern.Components, 2)
				assert.Equal(t, "sbomconv", modern.Components[0]["name"])
			}

			// Every version reads back with the engine tool filtered out.
			doc, err := NewReader(testOptions(nil)).Read(out)
			require.NoError(t, err)
			require.Len(t, doc.Metadata.Tools, 1)
			assert.Equal(t, sbom.Tool{Name: "ACME SBOM Tool", Version: "1.0", Vendor: "ACME Corporation"}, *doc.Metadata.Tools[0])
		})
	}
}

func TestParseSpecVersion(t *testing.T) {
	v, ok := ParseSpecVersion("1.6")
	assert.True(t, ok)
	assert.Equal(t, cdx.SpecVersion1_6, v)

	for _, s := range []string{"", "1.3", "2.0", "v1.5"} {
		_, ok := ParseSpecVersion(s)
		assert.False(t, ok, s)
	}
}

func TestWriteNesting(t *testing.T) {
	doc := sbom.NewDocument()
	addNodes(t, doc, "a", "b", "c", "d")
	addEdge(t, doc, "a", sbom.RelContains, "b")
	addEdge(t, doc, "c", sbom.RelContainedBy, "b")
	addEdge(t, doc, "d", sbom.RelContains, "c")
	require.NoError(t, doc.AddRootElement("a"))

	var diags []normalize.Diagnostic
	out, err := NewWriter(testOptions(&diags)).Write(doc)
	require.NoError(t, err)

	bom := decode(t, out)
	subject := bom.Metadata.Component
	require.NotNil(t, subject)
	assert.Equal(t, "a", subject.BOMRef)
	require.NotNil(t, subject.Components)
	require.Len(t, *subject.Components, 1)
	b := (*subject.Components)[0]
	assert.Equal(t, "b", b.BOMRef)
	require.NotNil(t, b.Components)
	require.Len(t, *b.Components, 1)
	assert.Equal(t, "c", (*b.Components)[0].BOMRef)

	require.NotNil(t, bom.Components)
	require.Len(t, *bom.Components, 1)
	assert.Equal(t, "d", (*bom.Components)[0].BOMRef)
	assert.Nil(t, (*bom.Components)[0].Components)

	require.Len(t, diags, 1)
	assert.Equal(t, normalize.EdgeField(sbom.RelContains), diags[0].Field)
	assert.Equal(t, "d -> c", diags[0].Subject)

	// Containment comes back as CONTAINS edges from the chosen parents.
	got, err := NewReader(testOptions(nil)).Read(out)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, got.RootElements())
	assert.ElementsMatch(t, []sbom.Edge{
		{Type: sbom.RelContains, From: "a", To: "b"},
		{Type: sbom.RelContains, From: "b", To: "c"},
	}, derefEdges(got.Edges()))
}

func TestWriteExtraRootElements(t *testing.T) {
	doc := sbom.NewDocument()
	addNodes(t, doc, "a", "b", "c")
	require.NoError(t, doc.AddRootElement("a"))
	require.NoError(t, doc.AddRootElement("c"))

	var diags []normalize.Diagnostic
	out, err := NewWriter(testOptions(&diags)).Write(doc)
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Equal(t, normalize.MetadataRootElementsExtra, diags[0].Field)
	assert.Equal(t, "c", diags[0].Subject)

	bom := decode(t, out)
	assert.Equal(t, "a", bom.Metadata.Component.BOMRef)
	require.NotNil(t, bom.Components)
	var refs []string
	for _, c := range *bom.Components {
		refs = append(refs, c.BOMRef)
	}
	assert.ElementsMatch(t, []string{"b", "c"}, refs)

	opts := testOptions(nil)
	opts.Strict = true
	_, err = NewWriter(opts).Write(doc)
	require.Error(t, err)
	assert.True(t, errors.Is(err, sbom.ErrUnsupportedFeature))
	assert.ErrorContains(t, err, string(normalize.MetadataRootElementsExtra))
}

func TestWriteNestedSubjectIsLifted(t *testing.T) {
	doc := sbom.NewDocument()
	addNodes(t, doc, "outer", "subject")
	addEdge(t, doc, "outer", sbom.RelContains, "subject")
	require.NoError(t, doc.AddRootElement("subject"))

	var diags []normalize.Diagnostic
	out, err := NewWriter(testOptions(&diags)).Write(doc)
	require.NoError(t, err)

	bom := decode(t, out)
	require.NotNil(t, bom.Metadata.Component)
	assert.Equal(t, "subject", bom.Metadata.Component.BOMRef)
	require.NotNil(t, bom.Components)
	require.Len(t, *bom.Components, 1)
	assert.Equal(t, "outer", (*bom.Components)[0].BOMRef)
	assert.Nil(t, (*bom.Components)[0].Components)
	assert.Equal(t, []normalize.Field{normalize.EdgeField(sbom.RelContains)}, fieldsOf(diags))
}

func TestWriteBreaksContainmentCycles(t *testing.T) {
	doc := sbom.NewDocument()
	addNodes(t, doc, "a", "b")
	addEdge(t, doc, "a", sbom.RelContains, "b")
	addEdge(t, doc, "b", sbom.RelContains, "a")

	var diags []normalize.Diagnostic
	out, err := NewWriter(testOptions(&diags)).Write(doc)
	require.NoError(t, err)

	bom := decode(t, out)
	require.NotNil(t, bom.Components)
	require.Len(t, *bom.Components, 1)
	a := (*bom.Components)[0]
	assert.Equal(t, "a", a.BOMRef)
	require.NotNil(t, a.Components)
	assert.Equal(t, "b", (*a.Components)[0].BOMRef)

	require.Len(t, diags, 1)
	assert.Equal(t, "b -> a", diags[0].Subject)
}

func TestWriteDependencies(t *testing.T) {
	doc := sbom.NewDocument()
	addNodes(t, doc, "a", "b", "c", "d")
	addEdge(t, doc, "a", sbom.RelDependsOn, "c")
	addEdge(t, doc, "a", sbom.RelDependsOn, "b")
	addEdge(t, doc, "c", sbom.RelDependencyOf, "d")
	addEdge(t, doc, "b", sbom.RelDependencyOf, "a")
	addEdge(t, doc, "a", sbom.RelStaticLink, "d")

	var diags []normalize.Diagnostic
	out, err := NewWriter(testOptions(&diags)).Write(doc)
	require.NoError(t, err)

	bom := decode(t, out)
	require.NotNil(t, bom.Dependencies)
	assert.Equal(t, []cdx.Dependency{
		{Ref: "a", Dependencies: &[]string{"b", "c"}},
		{Ref: "d", Dependencies: &[]string{"c"}},
	}, *bom.Dependencies)
	assert.Equal(t, []normalize.Field{normalize.EdgeField(sbom.RelStaticLink)}, fieldsOf(diags))
}

func TestWriteDropsUnsupportedHashes(t *testing.T) {
	doc := sbom.NewDocument()
	n := sbom.NewNode("lib", sbom.NodeTypePackage)
	n.Name = "lib"
	n.SetHash(sbom.HashSHA224, "aa")
	n.SetHash(sbom.HashSHA256, "bb")
	require.NoError(t, doc.AddNode(n))

	var diags []normalize.Diagnostic
	out, err := NewWriter(testOptions(&diags)).Write(doc)
	require.NoError(t, err)

	bom := decode(t, out)
	c := (*bom.Components)[0]
	require.NotNil(t, c.Hashes)
	assert.Equal(t, []cdx.Hash{{Algorithm: "SHA-256", Value: "bb"}}, *c.Hashes)
	assert.Equal(t, []normalize.Field{"hash.SHA224"}, fieldsOf(diags))

	opts := testOptions(nil)
	opts.Strict = true
	_, err = NewWriter(opts).Write(doc)
	require.Error(t, err)
	assert.True(t, errors.Is(err, sbom.ErrUnsupportedFeature))
}

func TestWriteRejectsInvalidDocument(t *testing.T) {
	doc := sbom.NewDocument()
	addNodes(t, doc, "a")
	doc.NodeList.Edges = append(doc.NodeList.Edges, &sbom.Edge{Type: sbom.RelDependsOn, From: "a", To: "ghost"})

	_, err := NewWriter(testOptions(nil)).Write(doc)
	require.Error(t, err)
	assert.Equal(t, sbom.KindValidation, sbom.KindOf(err))
	var e *sbom.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, "cyclonedx.Write", e.Op)

	_, err = NewWriter(testOptions(nil)).Write(nil)
	assert.Equal(t, sbom.KindValidation, sbom.KindOf(err))
}

func TestSerialNumberIsDeterministic(t *testing.T) {
	first, err := NewWriter(testOptions(nil)).Write(makeTestDocument(t))
	require.NoError(t, err)

	reordered := makeTestDocument(t)
	nodes := reordered.NodeList.Nodes
	nodes[0], nodes[2] = nodes[2], nodes[0]
	opts := testOptions(nil)
	opts.Now = func() time.Time { return fixedTime.Add(time.Hour) }
	second, err := NewWriter(opts).Write(reordered)
	require.NoError(t, err)

	assert.Equal(t, decode(t, first).SerialNumber, decode(t, second).SerialNumber)

	again, err := NewWriter(testOptions(nil)).Write(makeTestDocument(t))
	require.NoError(t, err)
	assert.Equal(t, string(first), string(again))
}

func TestLicenseFoldRoundTrip(t *testing.T) {
	doc := sbom.NewDocument()
	n := sbom.NewNode("lib", sbom.NodeTypePackage)
	n.Name = "lib"
	n.Licenses = []string{"MIT"}
	n.LicenseConcluded = "Apache-2.0"
	require.NoError(t, doc.AddNode(n))

	out, err := NewWriter(testOptions(nil)).Write(doc)
	require.NoError(t, err)

	c := (*decode(t, out).Components)[0]
	require.NotNil(t, c.Licenses)
	require.Len(t, *c.Licenses, 2)
	assert.Equal(t, "MIT", (*c.Licenses)[0].License.ID)
	assert.Equal(t, "Apache-2.0", (*c.Licenses)[1].License.ID)

	got, err := NewReader(testOptions(nil)).Read(out)
	require.NoError(t, err)
	back, ok := got.Node("lib")
	require.True(t, ok)
	assert.Equal(t, []string{"MIT"}, back.Licenses)
	assert.Equal(t, "Apache-2.0", back.LicenseConcluded)
}

func TestRoundTripKeepsFields(t *testing.T) {
	doc := sbom.NewDocument()
	doc.Metadata.Name = "acme-release"
	doc.Metadata.Comment = "nightly"
	require.NoError(t, doc.Metadata.AddAuthor(&sbom.Person{Name: "Jane", Email: "jane@example.com"}))
	require.NoError(t, doc.Metadata.AddTool(&sbom.Tool{Name: "syft", Version: "1.0.0", Vendor: "anchore"}))

	n := sbom.NewNode("pkg:golang/acme/x@1.2.3", sbom.NodeTypePackage)
	n.Name = "x"
	n.Version = "1.2.3"
	n.PrimaryPurpose = []sbom.Purpose{sbom.PurposeFramework}
	n.Description = "the x framework"
	n.Summary = "x"
	n.Comment = "vendored"
	n.Copyright = "Copyright ACME"
	n.Licenses = []string{"MIT", "Apache-2.0"}
	n.LicenseConcluded = "MIT"
	n.SetHash(sbom.HashSHA256, "ABCD")
	n.SetHash(sbom.HashBLAKE3, "ef01")
	n.SetIdentifier(sbom.IdentifierPURL, "pkg:golang/acme/x@1.2.3")
	n.SetIdentifier(sbom.IdentifierCPE23, "cpe:2.3:a:acme:x:1.2.3:*:*:*:*:*:*:*")
	n.SetIdentifier(sbom.IdentifierCPE22, "cpe:/a:acme:x:1.2.3")
	n.SetIdentifier(sbom.IdentifierGitoid, "gitoid:blob:sha1:261eeb9e9f8b2b4b0d119366dda99c6fd7d35c64")
	n.URLHome = "https://acme.example"
	n.URLDownload = "https://acme.example/x.tgz"
	n.ExternalReferences = []*sbom.ExternalReference{{URL: "https://github.com/acme/x", Type: "vcs"}}
	n.Suppliers = []*sbom.Person{{Name: "ACME", Email: "oss@acme.example", URL: "https://acme.example", Kind: sbom.PersonKindOrganization}}
	n.Originators = []*sbom.Person{{Name: "Ann", Email: "ann@acme.example", Kind: sbom.PersonKindPerson}, {Name: "Bob", Kind: sbom.PersonKindPerson}}
	n.Properties = []*sbom.Property{{Name: "build", Value: "release"}}
	require.NoError(t, doc.AddNode(n))

	file := sbom.NewNode("main.go", sbom.NodeTypeFile)
	file.Name = "main.go"
	file.SetHash(sbom.HashSHA1, "1234")
	require.NoError(t, doc.AddNode(file))
	addEdge(t, doc, n.ID, sbom.RelContains, file.ID)
	require.NoError(t, doc.AddRootElement(n.ID))

	var diags []normalize.Diagnostic
	out, err := NewWriter(testOptions(&diags)).Write(doc)
	require.NoError(t, err)
	assert.Empty(t, diags)

	got, err := NewReader(testOptions(nil)).Read(out)
	require.NoError(t, err)

	assert.Equal(t, "acme-release", got.Metadata.Name)
	assert.Equal(t, "nightly", got.Metadata.Comment)
	assert.True(t, strings.HasPrefix(got.Metadata.ID, "urn:uuid:"))
	require.NotNil(t, got.Metadata.Date)
	assert.True(t, fixedTime.Equal(*got.Metadata.Date))
	assert.Equal(t, doc.Metadata.Authors, got.Metadata.Authors)
	assert.Equal(t, doc.Metadata.Tools, got.Metadata.Tools)

	assert.Equal(t, []string{n.ID}, got.RootElements())
	back, ok := got.Node(n.ID)
	require.True(t, ok)
	assert.Equal(t, n, back)

	backFile, ok := got.Node("main.go")
	require.True(t, ok)
	assert.Equal(t, sbom.NodeTypeFile, backFile.Type)
	assert.Empty(t, backFile.PrimaryPurpose)
	assert.Equal(t, map[sbom.HashAlgorithm]string{sbom.HashSHA1: "1234"}, backFile.Hashes)
	assert.Equal(t, []sbom.Edge{{Type: sbom.RelContains, From: n.ID, To: "main.go"}}, derefEdges(got.Edges()))
}

func TestPurposeProperty(t *testing.T) {
	doc := sbom.NewDocument()
	src := sbom.NewNode("src", sbom.NodeTypePackage)
	src.Name = "src"
	src.PrimaryPurpose = []sbom.Purpose{sbom.PurposeSource}
	data := sbom.NewNode("data", sbom.NodeTypePackage)
	data.Name = "data"
	data.PrimaryPurpose = []sbom.Purpose{sbom.PurposeData}
	require.NoError(t, doc.AddNode(src))
	require.NoError(t, doc.AddNode(data))

	opts := testOptions(nil)
	opts.SpecVersion = cdx.SpecVersion1_4
	out, err := NewWriter(opts).Write(doc)
	require.NoError(t, err)

	for _, c := range *decode(t, out).Components {
		assert.Equal(t, cdx.ComponentTypeLibrary, c.Type, c.BOMRef)
		require.NotNil(t, c.Properties, c.BOMRef)
		assert.Equal(t, normalize.PropPurpose, (*c.Properties)[0].Name)
	}

	got, err := NewReader(testOptions(nil)).Read(out)
	require.NoError(t, err)
	back, _ := got.Node("src")
	assert.Equal(t, []sbom.Purpose{sbom.PurposeSource}, back.PrimaryPurpose)
	back, _ = got.Node("data")
	assert.Equal(t, []sbom.Purpose{sbom.PurposeData}, back.PrimaryPurpose)
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kind  sbom.Kind
	}{
		{"empty", "", sbom.KindParse},
		{"not json", "{", sbom.KindParse},
		{"spdx document", `{"spdxVersion": "SPDX-2.3", "SPDXID": "SPDXRef-DOCUMENT"}`, sbom.KindParse},
		{"wrong bomFormat", `{"bomFormat": "SPDX", "specVersion": "1.5"}`, sbom.KindParse},
		{"missing specVersion", `{"bomFormat": "CycloneDX"}`, sbom.KindParse},
		{"old specVersion", `{"bomFormat": "CycloneDX", "specVersion": "1.3"}`, sbom.KindUnsupportedVersion},
		{"future specVersion", `{"bomFormat": "CycloneDX", "specVersion": "2.0"}`, sbom.KindUnsupportedVersion},
		{"duplicate bom-ref", `{"bomFormat": "CycloneDX", "specVersion": "1.5", "components": [
			{"bom-ref": "x", "type": "library", "name": "x"},
			{"bom-ref": "x", "type": "library", "name": "y"}]}`, sbom.KindParse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewReader(testOptions(nil)).Read([]byte(tt.input))
			require.Error(t, err)
			assert.Equal(t, tt.kind, sbom.KindOf(err))
		})
	}
}

const foreignBOM = `{
	"bomFormat": "CycloneDX",
	"specVersion": "1.6",
	"serialNumber": "urn:uuid:3e671687-395b-41f5-a30f-a58921a69b79",
	"version": 1,
	"metadata": {
		"timestamp": "2024-05-06T07:08:09Z",
		"tools": {"components": [{"type": "application", "group": "anchore", "name": "syft", "version": "1.0.0"}]},
		"authors": [{"name": "Jane", "email": "jane@example.com"}],
		"component": {
			"bom-ref": "app", "type": "application", "name": "app", "version": "2.0",
			"components": [{"type": "library", "name": "inner", "version": "0.1", "purl": "pkg:npm/inner@0.1"}]
		}
	},
	"components": [{
		"bom-ref": "lib", "type": "library", "name": "lib",
		"supplier": {"name": "Lib Corp", "url": ["https://lib.example"]},
		"author": "Ann <ann@lib.example>, Bob",
		"hashes": [{"alg": "SHA-256", "content": "ABCD"}, {"alg": "CRC32", "content": "1234"}],
		"licenses": [{"expression": "MIT OR Apache-2.0"}],
		"cpe": "cpe:2.3:a:lib:lib:1:*:*:*:*:*:*:*",
		"externalReferences": [{"url": "https://github.com/lib/lib", "type": "vcs"}],
		"properties": [{"name": "cdx:npm:package:development", "value": "true"}]
	}, {
		"type": "platform", "name": "k8s"
	}],
	"dependencies": [
		{"ref": "app", "dependsOn": ["lib", "pkg:npm/inner@0.1", "ghost"]},
		{"ref": "missing", "dependsOn": ["lib"]}
	]
}`

func TestReadForeignDocument(t *testing.T) {
	var diags []normalize.Diagnostic
	doc, err := NewReader(testOptions(&diags)).Read([]byte(foreignBOM))
	require.NoError(t, err)

	m := doc.Metadata
	assert.Equal(t, "urn:uuid:3e671687-395b-41f5-a30f-a58921a69b79", m.ID)
	require.NotNil(t, m.Date)
	assert.Equal(t, time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC), *m.Date)
	assert.Equal(t, []*sbom.Tool{{Name: "syft", Version: "1.0.0", Vendor: "anchore"}}, m.Tools)
	assert.Equal(t, []*sbom.Person{{Name: "Jane", Email: "jane@example.com", Kind: sbom.PersonKindPerson}}, m.Authors)

	assert.Equal(t, []string{"app"}, doc.RootElements())
	var ids []string
	for _, n := range doc.Nodes() {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []string{"app", "lib", "k8s", "pkg:npm/inner@0.1"}, ids)

	lib, ok := doc.Node("lib")
	require.True(t, ok)
	assert.Equal(t, []sbom.Purpose{sbom.PurposeLibrary}, lib.PrimaryPurpose)
	assert.Equal(t, map[sbom.HashAlgorithm]string{sbom.HashSHA256: "abcd"}, lib.Hashes)
	assert.Equal(t, []string{"MIT OR Apache-2.0"}, lib.Licenses)
	assert.Empty(t, lib.LicenseConcluded)
	assert.Equal(t, "cpe:2.3:a:lib:lib:1:*:*:*:*:*:*:*", lib.Identifiers[sbom.IdentifierCPE23])
	assert.Equal(t, []*sbom.Person{{Name: "Lib Corp", URL: "https://lib.example", Kind: sbom.PersonKindOrganization}}, lib.Suppliers)
	assert.Equal(t, []*sbom.Person{
		{Name: "Ann", Email: "ann@lib.example", Kind: sbom.PersonKindPerson},
		{Name: "Bob", Kind: sbom.PersonKindPerson},
	}, lib.Originators)
	assert.Equal(t, []*sbom.ExternalReference{{URL: "https://github.com/lib/lib", Type: "vcs"}}, lib.ExternalReferences)
	assert.Equal(t, []*sbom.Property{{Name: "cdx:npm:package:development", Value: "true"}}, lib.Properties)

	k8s, ok := doc.Node("k8s")
	require.True(t, ok)
	assert.Equal(t, []sbom.Purpose{sbom.PurposeContainer}, k8s.PrimaryPurpose)

	assert.ElementsMatch(t, []sbom.Edge{
		{Type: sbom.RelContains, From: "app", To: "pkg:npm/inner@0.1"},
		{Type: sbom.RelDependsOn, From: "app", To: "lib"},
		{Type: sbom.RelDependsOn, From: "app", To: "pkg:npm/inner@0.1"},
	}, derefEdges(doc.Edges()))

	assert.ElementsMatch(t, []normalize.Field{
		"hash.CRC32",
		normalize.EdgeField(sbom.RelDependsOn),
		normalize.EdgeField(sbom.RelDependsOn),
	}, fieldsOf(diags))
}

func TestReadGeneratesMissingRefs(t *testing.T) {
	input := `{"bomFormat": "CycloneDX", "specVersion": "1.4", "components": [
		{"type": "library", "name": "x", "version": "1"},
		{"bom-ref": "x@1", "type": "library", "name": "other"},
		{"type": "library"}
	]}`
	doc, err := NewReader(testOptions(nil)).Read([]byte(input))
	require.NoError(t, err)

	var ids []string
	for _, n := range doc.Nodes() {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []string{"x@1-2", "x@1", "component"}, ids)
}

func TestContacts(t *testing.T) {
	people := []*sbom.Person{{Name: "Ann", Email: "ann@example.com"}, {Name: "Bob"}}
	s := formatContacts(people)
	assert.Equal(t, "Ann <ann@example.com>, Bob", s)

	back := parseContacts(s)
	require.Len(t, back, 2)
	assert.Equal(t, "ann@example.com", back[0].Email)
	assert.Equal(t, "Bob", back[1].Name)
	assert.Nil(t, parseContacts(""))

	company := []*sbom.Person{{Name: "ACME, Inc.", Email: "oss@acme.example", Kind: sbom.PersonKindPerson}, {Name: "Bob", Kind: sbom.PersonKindPerson}}
	s = formatContacts(company)
	assert.Equal(t, `ACME\, Inc. <oss@acme.example>, Bob`, s)
	assert.Equal(t, company, parseContacts(s))
}

func derefEdges(edges []*sbom.Edge) []sbom.Edge {
	out := make([]sbom.Edge, 0, len(edges))
	for _, e := range edges {
		out = append(out, *e)
	}
	return out
}
