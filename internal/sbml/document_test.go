package sbml

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/pmfarchive/internal/xmlnode"
)

func sampleDocument() *Document {
	doc := NewDocument("salmonella_growth")
	doc.Model.Name = "Salmonella growth in broth"
	doc.Model.Compartments = []Compartment{{ID: "broth", Name: "Broth"}}
	doc.Model.Species = []Species{{ID: "salmonella", Name: "Salmonella", Compartment: "broth", Units: "log10_count_per_g"}}
	doc.Model.Parameters = []Parameter{
		{ID: "mumax", Value: 0.0345, Units: "per_h", Constant: true},
		{ID: "lag", Value: 1.25e-3},
	}
	annotation := xmlnode.New(AnnotationTag)
	annotation.EnsureChild("metadata").Append(xmlnode.New("dataSource").SetAttr("file", "d1.numl"))
	doc.Model.Annotation = annotation
	doc.ExternalModels = []ExternalModelDefinition{{ID: "emd0", Source: "s1.sbml"}}
	return doc
}

func TestWriteReadRoundTrip(t *testing.T) {
	doc := sampleDocument()
	data, err := Marshal(doc)
	require.NoError(t, err)

	parsed, err := ReadBytes(data)
	require.NoError(t, err)
	assert.Equal(t, doc, parsed)
}

func TestReadRejectsDocumentWithoutModel(t *testing.T) {
	_, err := Read(strings.NewReader(`<sbml xmlns="` + Namespace + `" level="3" version="1"></sbml>`))
	require.ErrorIs(t, err, ErrMissingModel)
}

func TestReadRejectsGarbage(t *testing.T) {
	_, err := Read(strings.NewReader("not xml at all <"))
	require.Error(t, err)
}

func TestReadAcceptsPrefixedCompElements(t *testing.T) {
	input := `<?xml version="1.0"?>
<sbml xmlns="http://www.sbml.org/sbml/level3/version1/core"
      xmlns:comp="http://www.sbml.org/sbml/level3/version1/comp/version1" level="3" version="1">
  <model id="tertiary"/>
  <comp:listOfExternalModelDefinitions>
    <comp:externalModelDefinition comp:id="emd0" comp:source="s1.sbml"/>
  </comp:listOfExternalModelDefinitions>
</sbml>`
	doc, err := Read(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, doc.ExternalModels, 1)
	assert.Equal(t, "s1.sbml", doc.ExternalModels[0].Source)
	assert.False(t, doc.HasSpecies())
}

func TestWriteRequiresModel(t *testing.T) {
	_, err := Marshal(&Document{Level: 3, Version: 1})
	require.ErrorIs(t, err, ErrMissingModel)
}

func TestCloneIsIndependent(t *testing.T) {
	doc := sampleDocument()
	clone := doc.Clone()
	require.Equal(t, doc, clone)

	clone.Model.Species[0].ID = "listeria"
	clone.Model.Annotation.Child("metadata").Children[0].SetAttr("file", "other.numl")
	clone.ExternalModels[0].Source = "s2.sbml"

	assert.Equal(t, "salmonella", doc.Model.Species[0].ID)
	file, _ := doc.Model.Annotation.Child("metadata").Children[0].Attr("file")
	assert.Equal(t, "d1.numl", file)
	assert.Equal(t, "s1.sbml", doc.ExternalModels[0].Source)
}
