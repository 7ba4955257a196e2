package xmlnode

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDropsNamespacesAndPrefixes(t *testing.T) {
	input := `<?xml version="1.0"?>
<pmf:metadata xmlns:pmf="http://sourceforge.net/projects/microbialmodelingexchange/files/PMF-ML">
  <pmf:dataSource xmlns:xlink="http://www.w3.org/1999/xlink" xlink:href="d1.numl"/>
  <pmf:primaryModel> p1.sbml </pmf:primaryModel>
</pmf:metadata>`

	node, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, "metadata", node.Name)
	assert.Empty(t, node.Attrs)
	require.Len(t, node.Children, 2)

	href, ok := node.Child("dataSource").Attr("href")
	require.True(t, ok)
	assert.Equal(t, "d1.numl", href)
	assert.Equal(t, "p1.sbml", node.Child("primaryModel").Text)
}

func TestEncodeParseRoundTrip(t *testing.T) {
	root := New("pmfMetadata").Append(
		NewText("modelType", "TWO_STEP_TERTIARY_MODEL"),
		NewText("masterFile", "t1.sbml"),
		New("extra").SetAttr("a", "1").SetAttr("b", "x<y"),
	)
	data, err := root.Bytes()
	require.NoError(t, err)

	parsed, err := ParseBytes(data)
	require.NoError(t, err)
	assert.Equal(t, root, parsed)
}

func TestParseEmptyInput(t *testing.T) {
	_, err := Parse(strings.NewReader("   "))
	require.ErrorIs(t, err, ErrEmptyDocument)
}

func TestRemoveChildrenAndEnsureChild(t *testing.T) {
	root := New("metadata").Append(NewText("primaryModel", "a"), New("other"), NewText("primaryModel", "b"))

	assert.Equal(t, 2, root.RemoveChildren("primaryModel"))
	require.Len(t, root.Children, 1)
	assert.Equal(t, "other", root.Children[0].Name)

	created := root.EnsureChild("dataSource")
	assert.Same(t, created, root.EnsureChild("dataSource"))
	assert.Len(t, root.Children, 2)
}

func TestCloneDeepCopies(t *testing.T) {
	root := New("a").SetAttr("k", "v").Append(New("b").Append(NewText("c", "text")))
	clone := root.Clone()
	require.Equal(t, root, clone)

	clone.Children[0].Children[0].Text = "changed"
	clone.SetAttr("k", "other")
	assert.Equal(t, "text", root.Children[0].Children[0].Text)
	v, _ := root.Attr("k")
	assert.Equal(t, "v", v)
}
