package numl

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func growthCurve() *Document {
	doc := NewDocument()
	doc.OntologyTerms = []OntologyTerm{
		{ID: "time", Term: "time", SourceTermID: "UO:0000010", OntologyURI: "http://purl.obolibrary.org/obo/uo.owl"},
		{ID: "conc", Term: "concentration", SourceTermID: "SBO:0000196", OntologyURI: "http://www.ebi.ac.uk/sbo/"},
	}
	doc.ResultComponents = []ResultComponent{{
		ID:   "exp1",
		Name: "Listeria in milk, 7C",
		Description: []AtomicDescription{
			{Name: "Time", OntologyTerm: "time", ValueType: "double"},
			{Name: "Concentration", OntologyTerm: "conc", ValueType: "double"},
		},
		Tuples: []Tuple{{0, 3.1}, {24, 4.25}, {48, 6.5}},
	}}
	return doc
}

func TestWriteReadRoundTrip(t *testing.T) {
	doc := growthCurve()
	data, err := Marshal(doc)
	require.NoError(t, err)

	parsed, err := ReadBytes(data)
	require.NoError(t, err)
	assert.Equal(t, doc, parsed)
}

func TestValidateRejectsRaggedTuples(t *testing.T) {
	doc := growthCurve()
	doc.ResultComponents[0].Tuples = append(doc.ResultComponents[0].Tuples, Tuple{72})

	err := doc.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tuple 3")

	_, err = Marshal(doc)
	require.Error(t, err)
}

func TestReadRejectsEmptyDocument(t *testing.T) {
	_, err := Read(strings.NewReader(`<numl level="1" version="1"/>`))
	require.ErrorIs(t, err, ErrNoResults)
}

func TestReadRejectsWrongRoot(t *testing.T) {
	_, err := Read(strings.NewReader(`<sbml level="3" version="1"/>`))
	require.Error(t, err)
}
