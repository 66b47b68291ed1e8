package deptree

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StinkyLord/sbomconv/sbom"
)

func makeDoc(t *testing.T, ids []string, edges [][3]string) *sbom.Document {
	t.Helper()
	doc := sbom.NewDocument()
	for _, id := range ids {
		n := sbom.NewNode(id, sbom.NodeTypePackage)
		n.Name = id
		n.Version = "1"
		require.NoError(t, doc.AddNode(n))
	}
	for _, e := range edges {
		doc.NodeList.Edges = append(doc.NodeList.Edges, &sbom.Edge{Type: sbom.RelationshipType(e[0]), From: e[1], To: e[2]})
	}
	return doc
}

// shape flattens a tree into "label/type" lines indented by depth.
func shape(nodes []*TreeNode, depth int, out []string) []string {
	for _, n := range nodes {
		line := strings.Repeat("  ", depth) + n.Label() + "/" + n.DependencyType
		if n.Cycle {
			line += " (cycle)"
		}
		if n.Missing {
			line += " (missing)"
		}
		out = append(out, line)
		out = shape(n.Children, depth+1, out)
	}
	return out
}

func TestBuildFromRootElements(t *testing.T) {
	doc := makeDoc(t, []string{"app", "a", "b", "c"}, [][3]string{
		{"DEPENDS_ON", "app", "b"},
		{"DEPENDS_ON", "app", "a"},
		{"DEPENDS_ON", "a", "c"},
		{"DEPENDENCY_OF", "c", "b"},
		{"CONTAINS", "app", "c"},
	})
	require.NoError(t, doc.AddRootElement("app"))

	assert.Equal(t, []string{
		"app@1/root",
		"  a@1/direct",
		"    c@1/transitive",
		"  b@1/direct",
		"    c@1/transitive",
	}, shape(Build(doc), 0, nil))
}

func TestBuildWithoutRootElements(t *testing.T) {
	doc := makeDoc(t, []string{"x", "y", "lib"}, [][3]string{
		{"DEPENDS_ON", "y", "lib"},
		{"DEPENDS_ON", "x", "lib"},
	})
	roots := Build(doc)
	require.Len(t, roots, 2)
	assert.Equal(t, "x", roots[0].ID)
	assert.Equal(t, "y", roots[1].ID)
	assert.Equal(t, Direct, roots[1].Children[0].DependencyType)
}

func TestBuildBreaksCycles(t *testing.T) {
	doc := makeDoc(t, []string{"app", "a", "b"}, [][3]string{
		{"DEPENDS_ON", "app", "a"},
		{"DEPENDS_ON", "a", "b"},
		{"DEPENDS_ON", "b", "a"},
		{"DEPENDS_ON", "b", "gone"},
	})
	require.NoError(t, doc.AddRootElement("app"))

	assert.Equal(t, []string{
		"app@1/root",
		"  a@1/direct",
		"    b@1/transitive",
		"      a@1/transitive (cycle)",
		"      gone/transitive (missing)",
	}, shape(Build(doc), 0, nil))
}

func TestBuildSetsPURL(t *testing.T) {
	doc := sbom.NewDocument()
	n := sbom.NewNode("n", sbom.NodeTypePackage)
	n.SetIdentifier(sbom.IdentifierPURL, "pkg:npm/n@2")
	require.NoError(t, doc.AddNode(n))

	roots := Build(doc)
	require.Len(t, roots, 1)
	assert.Equal(t, "pkg:npm/n@2", roots[0].PURL)
	assert.Equal(t, "n", roots[0].Label())
}
